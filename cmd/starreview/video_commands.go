package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"starreview/internal/config"
	"starreview/internal/logging"
	"starreview/internal/media/ffprobe"
	"starreview/internal/practice"
	"starreview/internal/store"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Register and list session videos",
	}
	videoCmd.AddCommand(newVideoAddCommand(ctx))
	videoCmd.AddCommand(newVideoListCommand(ctx))
	return videoCmd
}

func newVideoAddCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var titleFlag string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a video file for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := practice.ParseCategory(categoryFlag)
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if path, err = filepath.Abs(path); err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("inspect video %q: %w", path, err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", path)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// Duration is best effort here; the runner probes again before
			// analysis when it is still unknown.
			var duration float64
			if probe, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), path); err == nil {
				duration = probe.DurationSeconds()
			} else {
				ctx.log().Debug("duration probe failed", logging.String("path", path), logging.Error(err))
			}

			return ctx.withStore(func(st *store.Store) error {
				video, err := st.AddVideo(cmd.Context(), store.NewVideo{
					Path:     path,
					Title:    titleFlag,
					Category: category,
					Duration: duration,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added video %d: %s (%s, %s)\n",
					video.ID, video.Title, video.Category, formatDuration(video.DurationSeconds))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Teaching category: discrete_trial, pivotal_response, functional_routines")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Display title (default derived from the file name)")
	return cmd
}

func newVideoListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]store.VideoStatus, 0, len(statusFlags))
			for _, s := range statusFlags {
				statuses = append(statuses, store.VideoStatus(s))
			}
			return ctx.withStore(func(st *store.Store) error {
				videos, err := st.ListVideos(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, videos)
				}
				out := cmd.OutOrStdout()
				if len(videos) == 0 {
					fmt.Fprintln(out, "No videos registered")
					return nil
				}
				rows := make([][]string, 0, len(videos))
				for _, v := range videos {
					rows = append(rows, []string{
						strconv.FormatInt(v.ID, 10),
						v.Title,
						string(v.Category),
						string(v.Status),
						fmt.Sprintf("%d%%", v.ProgressPercent),
						formatDuration(v.DurationSeconds),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Category", "Status", "Progress", "Duration"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statusFlags, "status", nil, "Filter by status (uploaded, processing, analyzed, failed)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
