package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesdw/internal/logging"
	"salesdw/internal/star"
	"salesdw/internal/storage"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify warehouse row counts and referential integrity (read-only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
			if err != nil {
				return err
			}
			defer repo.Close()

			report, err := star.Verify(ctx, repo)
			if err != nil {
				return err
			}

			for _, check := range report.Tables {
				logging.Info().
					Str("table", check.Table).
					Int64("rows", check.Rows).
					Int64("unresolved_refs", check.MissingRefs).
					Bool("pass", check.Pass).
					Msg("verified")
			}
			if !report.Pass() {
				return fmt.Errorf("verification failed: fact rows reference missing dimension members")
			}
			return nil
		},
	}
}
