package cli

import (
	"github.com/spf13/cobra"

	"salesdw/internal/prepare"
)

func newPrepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Clean raw entity CSVs into prepared CSVs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := prepare.Run(cmd.Context(), cfg.Data.RawDir, cfg.Data.PreparedDir)
			return err
		},
	}
}
