package cli

import (
	"github.com/spf13/cobra"

	"salesdw/internal/seed"
)

func newSeedCmd() *cobra.Command {
	opts := seed.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate raw CSV fixtures with injected data quality defects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("customers") {
				opts.Customers = cfg.Seed.Customers
			}
			if !flags.Changed("products") {
				opts.Products = cfg.Seed.Products
			}
			if !flags.Changed("sales") {
				opts.Sales = cfg.Seed.Sales
			}
			if !flags.Changed("random-seed") {
				opts.Seed = cfg.Seed.RandomSeed
			}
			return seed.Run(cmd.Context(), cfg.Data.RawDir, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Customers, "customers", opts.Customers, "customer rows to generate")
	cmd.Flags().IntVar(&opts.Products, "products", opts.Products, "product rows to generate")
	cmd.Flags().IntVar(&opts.Sales, "sales", opts.Sales, "sale rows to generate")
	cmd.Flags().Uint64Var(&opts.Seed, "random-seed", opts.Seed, "random seed (0 = nondeterministic)")
	return cmd
}
