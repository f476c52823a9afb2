package cli

import (
	"github.com/spf13/cobra"

	"salesdw/internal/prepare"
)

// run is prepare + load in one invocation, matching the common "rerun the
// whole batch" recovery path: the loader's clear-then-reload makes repeating
// it safe.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: prepare then load",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := prepare.Run(ctx, cfg.Data.RawDir, cfg.Data.PreparedDir); err != nil {
				return err
			}
			return runLoad(ctx)
		},
	}
}
