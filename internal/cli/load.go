package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"salesdw/internal/logging"
	"salesdw/internal/prepare"
	"salesdw/internal/star"
	"salesdw/internal/storage"
	"salesdw/internal/table"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load prepared CSVs into the star-schema warehouse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd.Context())
		},
	}
}

func runLoad(ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
	if err != nil {
		return err
	}
	defer repo.Close()

	customers, products, sales, err := readPrepared(cfg.Data.PreparedDir)
	if err != nil {
		return err
	}

	sum, err := star.NewLoader(repo).Run(ctx, customers, products, sales)
	if err != nil {
		return err
	}

	for _, check := range sum.Report.Tables {
		logging.Info().
			Str("table", check.Table).
			Int64("rows", check.Rows).
			Int64("inserted", sum.Inserted[check.Table]).
			Int64("backfilled", sum.Backfilled[check.Table]).
			Bool("pass", check.Pass).
			Msg("table loaded")
	}
	if !sum.Report.Pass() {
		logging.Warn().Msg("verification reported unresolved references; load is committed")
	}
	return nil
}

func readPrepared(dir string) (customers, products, sales table.Table, err error) {
	read := func(entity string) (table.Table, error) {
		t, err := table.ReadCSVFile(filepath.Join(dir, prepare.PreparedFileName(entity)))
		if err != nil {
			return table.Table{}, fmt.Errorf("read prepared %s (run `salesdw prepare` first?): %w", entity, err)
		}
		return t, nil
	}

	if customers, err = read("customers"); err != nil {
		return
	}
	if products, err = read("products"); err != nil {
		return
	}
	sales, err = read("sales")
	return
}
