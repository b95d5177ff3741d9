package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"starreview/internal/logging"
	"starreview/internal/metrics"
	"starreview/internal/notifications"
	"starreview/internal/pipeline"
	"starreview/internal/preflight"
	"starreview/internal/store"
	"starreview/internal/transcription"
	"starreview/internal/workflow"
)

type analyzeOutcome struct {
	videoID int64
	title   string
	result  pipeline.Result
	err     error
	elapsed time.Duration
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var workers int
	var reclaim bool
	var metricsBind string
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "analyze <video-id>...",
		Short: "Run AI analysis on one or more registered videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseVideoIDs(args)
			if err != nil {
				return err
			}
			var mode transcription.Mode
			if modeFlag != "" {
				if mode, err = transcription.ParseMode(modeFlag); err != nil {
					return err
				}
			}
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.log()

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			titles := make(map[int64]string, len(ids))
			for _, id := range ids {
				video, err := st.GetVideo(cmd.Context(), id)
				if err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("video %d not found", id)
					}
					return err
				}
				titles[id] = video.Title
			}

			if !skipPreflight {
				if results := preflight.RunAll(cmd.Context(), cfg); !preflight.Passed(results) {
					for _, r := range results {
						if !r.Passed {
							return fmt.Errorf("preflight %s failed: %s (run `starreview doctor` for details)", r.Name, r.Detail)
						}
					}
				}
			}

			bind := cfg.Metrics.Bind
			if cmd.Flags().Changed("metrics") {
				bind = metricsBind
			}
			if bind != "" {
				srv, err := metrics.Start(bind, logger)
				if err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						logger.Warn("metrics shutdown failed", logging.Error(err))
					}
				}()
				fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on http://%s/metrics\n", srv.Addr())
			}

			deps, err := workflow.BuildDependencies(cfg, logger)
			if err != nil {
				return err
			}
			notifier := notifications.NewService(cfg)
			runner, err := workflow.NewRunner(cfg, st, deps, logger, workflow.WithNotifier(notifier))
			if err != nil {
				return err
			}

			batchStart := time.Now()
			outcomes := runAnalyses(cmd.Context(), runner, ids, titles, workflow.Options{Mode: mode, Reclaim: reclaim}, workers)
			fmt.Fprintln(cmd.OutOrStdout(), renderAnalyzeOutcomes(outcomes))

			failed := 0
			for _, o := range outcomes {
				if o.err != nil {
					failed++
				}
			}
			if len(outcomes) > 1 {
				if err := notifier.NotifyBatchCompleted(context.WithoutCancel(cmd.Context()), len(outcomes)-failed, failed, time.Since(batchStart)); err != nil {
					logger.Warn("batch notification failed", logging.Error(err))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d analyses failed", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "Analysis mode: enhanced or local (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of videos analyzed concurrently")
	cmd.Flags().BoolVar(&reclaim, "reclaim", false, "Take over videos left in processing by a runner that exited")
	cmd.Flags().StringVar(&metricsBind, "metrics", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory and API checks before starting")
	return cmd
}

// runAnalyses runs every video with at most workers in flight. Failures are
// collected per video; one failure never cancels the others.
func runAnalyses(ctx context.Context, runner *workflow.Runner, ids []int64, titles map[int64]string, opts workflow.Options, workers int) []analyzeOutcome {
	outcomes := make([]analyzeOutcome, len(ids))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			start := time.Now()
			result, err := runner.Run(ctx, id, opts)
			outcomes[i] = analyzeOutcome{
				videoID: id,
				title:   titles[id],
				result:  result,
				err:     err,
				elapsed: time.Since(start),
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func renderAnalyzeOutcomes(outcomes []analyzeOutcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := "analyzed"
		detail := string(o.result.Method)
		if o.err != nil {
			status = "failed"
			detail = o.err.Error()
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.videoID, 10),
			o.title,
			status,
			strconv.Itoa(len(o.result.Annotations)),
			strconv.Itoa(o.result.FramesExtracted),
			o.elapsed.Round(time.Second).String(),
			detail,
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Status", "Annotations", "Frames", "Elapsed", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}
