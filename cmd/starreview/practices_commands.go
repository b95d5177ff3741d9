package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"starreview/internal/practice"
	"starreview/internal/store"
)

func newPracticesCommand(ctx *commandContext) *cobra.Command {
	practicesCmd := &cobra.Command{
		Use:   "practices",
		Short: "Manage the practice catalog",
	}
	practicesCmd.AddCommand(newPracticesImportCommand(ctx))
	practicesCmd.AddCommand(newPracticesListCommand(ctx))
	return practicesCmd
}

func newPracticesImportCommand(ctx *commandContext) *cobra.Command {
	var useDefault bool

	cmd := &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Import practices from a YAML file or the built-in catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var catalog practice.Catalog
			switch {
			case useDefault && len(args) > 0:
				return errors.New("pass either a file or --default, not both")
			case useDefault:
				catalog = practice.Default()
			case len(args) == 1:
				loaded, err := practice.LoadFile(args[0])
				if err != nil {
					return err
				}
				catalog = loaded
			default:
				return errors.New("a catalog file or --default is required")
			}

			return ctx.withStore(func(st *store.Store) error {
				count, err := st.UpsertPractices(cmd.Context(), catalog)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d practices\n", count)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&useDefault, "default", false, "Import the built-in catalog")
	return cmd
}

func newPracticesListCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List practices in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := practice.ParseCategory(categoryFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				catalog, err := st.ListPractices(cmd.Context(), category)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, catalog)
				}
				out := cmd.OutOrStdout()
				if len(catalog) == 0 {
					fmt.Fprintln(out, "Catalog is empty; run `starreview practices import --default`")
					return nil
				}
				rows := make([][]string, 0, len(catalog))
				for _, item := range catalog {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						string(item.Category),
						item.Title,
						string(item.Polarity),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Category", "Title", "Polarity"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Only list practices in this category")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
