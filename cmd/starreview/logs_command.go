package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"starreview/internal/logging"
	"starreview/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines   int
		follow  bool
		videoID int64
		grep    []string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines",
		Long:  "Show the tail of the starreview log file. Use --video to narrow output to one video's runs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines < 0 {
				return fmt.Errorf("--lines must be zero or greater")
			}
			if cmd.Flags().Changed("video") && videoID <= 0 {
				return fmt.Errorf("--video must be a positive id")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logging.LogPath(cfg)
			if path == "" {
				return errors.New("file logging is disabled; set paths.log_dir")
			}

			var match func(string) bool
			if videoID > 0 {
				match = logs.MatchVideo(videoID)
			}
			match = logs.All(match, logs.MatchAny(grep...))

			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Match: match})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(result.Lines) == 0 {
					fmt.Fprintf(out, "No log lines in %s\n", path)
				}
				return nil
			}

			offset := result.Offset
			for {
				next, err := logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   5 * time.Second,
					Match:  match,
				})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				for _, line := range next.Lines {
					fmt.Fprintln(out, line)
				}
				offset = next.Offset
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().Int64Var(&videoID, "video", 0, "Only show lines for this video id")
	cmd.Flags().StringSliceVar(&grep, "grep", nil, "Only show lines containing any of these terms")
	return cmd
}
