package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"starreview/internal/store"
	"starreview/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status [video-id]",
		Short: "Show analysis progress for a video, or a summary of all videos",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				if len(args) == 0 {
					return printStatusSummary(cmd, st, jsonOutput)
				}
				id, err := parseVideoID(args[0])
				if err != nil {
					return err
				}
				report, err := workflow.Status(cmd.Context(), st, id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, report)
				}
				printStatusReport(cmd, report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printStatusReport(cmd *cobra.Command, report workflow.StatusReport) {
	p := newStatusPrinter(cmd.OutOrStdout())

	p.section(fmt.Sprintf("Video %d: %s", report.VideoID, report.Title))
	progress := fmt.Sprintf("%d%%", report.ProgressPercent)
	if stage := strings.TrimSpace(report.ProgressStage); stage != "" {
		progress += " " + stage
	}
	p.line("Status", videoStatusKind(report.Status), string(report.Status))
	p.line("Progress", statusInfo, progress)

	transcriptKind := statusInfo
	if report.HasTranscript {
		transcriptKind = statusOK
	}
	p.line("Transcript", transcriptKind, yesNo(report.HasTranscript))
	p.line("AI annotations", statusInfo, fmt.Sprintf("%d", report.AIAnnotationCount))
	if report.ErrorMessage != "" {
		p.line("Error", statusError, report.ErrorMessage)
	}
}

func printStatusSummary(cmd *cobra.Command, st *store.Store, jsonOutput bool) error {
	counts, err := st.CountByStatus(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, counts)
	}
	p := newStatusPrinter(cmd.OutOrStdout())
	p.section("Videos")
	for _, status := range []store.VideoStatus{store.VideoUploaded, store.VideoProcessing, store.VideoAnalyzed, store.VideoFailed} {
		p.line(string(status), videoStatusKind(status), fmt.Sprintf("%d", counts[status]))
	}
	return nil
}
