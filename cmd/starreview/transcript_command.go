package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"starreview/internal/store"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	transcriptCmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect stored transcripts",
	}
	transcriptCmd.AddCommand(newTranscriptShowCommand(ctx))
	return transcriptCmd
}

func newTranscriptShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var segments bool

	cmd := &cobra.Command{
		Use:   "show <video-id>",
		Short: "Print the transcript of an analyzed video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				transcript, err := st.GetTranscript(cmd.Context(), id)
				if err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("video %d has no transcript; run `starreview analyze %d` first", id, id)
					}
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, transcript)
				}
				out := cmd.OutOrStdout()
				if !segments {
					fmt.Fprintln(out, transcript.Result.Text)
					return nil
				}
				for _, seg := range transcript.Result.Segments {
					fmt.Fprintf(out, "[%s - %s] %s\n", formatTimestamp(seg.Start), formatTimestamp(seg.End), seg.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&segments, "segments", false, "Print timed segments instead of the plain text")
	return cmd
}
