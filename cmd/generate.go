package main

import (
	"fmt"

	"github.com/okian/storefront/internal/adapters/catalog"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		count  int
		out    string
		seed   uint64
		sparse bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random catalog snapshot",
		Example: `  storefront generate --count 1000 --out products.json
  storefront generate --count 100000 --out products.lz4 --sparse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []catalog.GenerateOption{catalog.WithSparseFields(sparse)}
			if seed != 0 {
				opts = append(opts, catalog.WithSeed(seed))
			}
			products, err := catalog.Generate(count, opts...)
			if err != nil {
				return err
			}
			if err := catalog.Save(out, products); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d products to %s\n", len(products), out)
			return err
		},
	}
	cmd.Flags().IntVar(&count, "count", 100, "number of products")
	cmd.Flags().StringVar(&out, "out", "catalog.json", "output file (.json, .msgpack, .lz4)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible output (0 picks a random seed)")
	cmd.Flags().BoolVar(&sparse, "sparse", false, "leave price or category out of a few records")
	return cmd
}
