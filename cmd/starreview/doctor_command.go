package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"starreview/internal/deps"
	"starreview/internal/preflight"
	"starreview/internal/store"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check media tools, directories, hosted APIs, and the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := newStatusPrinter(cmd.OutOrStdout())
			healthy := true

			p.section("Dependencies")
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind := statusOK
				detail := status.Path
				switch {
				case !status.Available && status.Optional:
					kind, detail = statusWarn, status.Detail+" (optional)"
				case !status.Available:
					kind, detail = statusError, status.Detail
					healthy = false
				default:
					if version, err := deps.Version(cmd.Context(), status.Path); err == nil && status.Name != "uvx" {
						detail = version
					}
				}
				p.line(status.Name, kind, detail)
			}

			p.blank()
			p.section("Directories and services")
			checks := []preflight.Result{
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				preflight.CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
				preflight.CheckOpenAIFromConfig(cmd.Context(), cfg),
				preflight.CheckLLMFromConfig(cmd.Context(), cfg),
			}
			for _, r := range checks {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					healthy = false
				}
				p.line(r.Name, kind, r.Detail)
			}
			if topic := cfg.Notifications.NtfyTopic; topic != "" {
				p.line("Notifications", statusInfo, topic)
			} else {
				p.line("Notifications", statusInfo, "Disabled (no ntfy_topic)")
			}

			p.blank()
			p.section("Database")
			err = ctx.withStore(func(st *store.Store) error {
				health, err := st.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				p.line("Path", statusInfo, health.DBPath)
				p.line("Schema version", statusInfo, fmt.Sprintf("%d", health.SchemaVersion))
				p.line("Videos", statusInfo, fmt.Sprintf("%d", health.VideoCount))
				integrity := statusOK
				if !health.IntegrityCheck {
					integrity = statusError
					healthy = false
				}
				p.line("Integrity", integrity, yesNo(health.IntegrityCheck))
				if health.Error != "" {
					p.line("Error", statusError, health.Error)
					healthy = false
				}
				practices, err := st.ListPractices(cmd.Context(), "")
				if err != nil {
					return err
				}
				catalogKind, catalogDetail := statusOK, fmt.Sprintf("%d practices", len(practices))
				if len(practices) == 0 {
					catalogKind, catalogDetail = statusWarn, "empty; the built-in catalog is used until you import one"
				}
				p.line("Catalog", catalogKind, catalogDetail)
				return nil
			})
			if err != nil {
				p.line("Store", statusError, err.Error())
				healthy = false
			}

			if !healthy {
				return errors.New("one or more required checks failed")
			}
			return nil
		},
	}
}
