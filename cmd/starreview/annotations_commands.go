package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"starreview/internal/store"
)

func newAnnotationsCommand(ctx *commandContext) *cobra.Command {
	annotationsCmd := &cobra.Command{
		Use:   "annotations",
		Short: "List and add timeline annotations",
	}
	annotationsCmd.AddCommand(newAnnotationsListCommand(ctx))
	annotationsCmd.AddCommand(newAnnotationsAddCommand(ctx))
	return annotationsCmd
}

func newAnnotationsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list <video-id>",
		Short: "List annotations for a video in timeline order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				if _, err := st.GetVideo(cmd.Context(), id); err != nil {
					return err
				}
				annotations, err := st.ListAnnotations(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, annotations)
				}
				out := cmd.OutOrStdout()
				if len(annotations) == 0 {
					fmt.Fprintln(out, "No annotations")
					return nil
				}
				fmt.Fprintln(out, renderAnnotations(annotations))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderAnnotations(annotations []store.Annotation) string {
	rows := make([][]string, 0, len(annotations))
	for _, a := range annotations {
		polarity := "-"
		if a.Positive {
			polarity = "+"
		}
		source := a.Source
		if source == "" {
			source = "manual"
		}
		rows = append(rows, []string{
			formatTimestamp(a.StartTime),
			polarity,
			source,
			string(a.Status),
			a.PracticeTitle,
			a.Comment,
		})
	}
	return renderTable(
		[]string{"Time", "+/-", "Source", "Status", "Practice", "Comment"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func newAnnotationsAddCommand(ctx *commandContext) *cobra.Command {
	var at float64
	var comment string
	var positive bool
	var practiceID int64

	cmd := &cobra.Command{
		Use:   "add <video-id>",
		Short: "Add a manual annotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("at") {
				return errors.New("--at is required")
			}
			return ctx.withStore(func(st *store.Store) error {
				ann, err := st.AddManualAnnotation(cmd.Context(), id, store.ManualAnnotation{
					StartTime:  at,
					Comment:    comment,
					Positive:   positive,
					PracticeID: practiceID,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added annotation %s at %s\n",
					strconv.FormatInt(ann.ID, 10), formatTimestamp(ann.StartTime))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "Start time in seconds")
	cmd.Flags().StringVar(&comment, "comment", "", "Annotation text")
	cmd.Flags().BoolVar(&positive, "positive", false, "Mark as a strength rather than an area for improvement")
	cmd.Flags().Int64Var(&practiceID, "practice", 0, "Practice id to link")
	return cmd
}
