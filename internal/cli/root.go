// Package cli implements eklactl, an offline browser for the marketplace
// catalog.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joao-fontenele/ekla-marketplace/internal/catalog"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	Catalog string // dataset file; empty means the built-in one
}

var ValidFormats = []string{"text", "json"}

func (o *RootOptions) load() (*catalog.Catalog, error) {
	ds, err := catalog.LoadDatasetFile(o.Catalog)
	if err != nil {
		return nil, err
	}
	return catalog.New(ds), nil
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "eklactl",
		Short:         "Browse the Ekla marketplace catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "catalog YAML file (defaults to the built-in dataset)")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewArtisansCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))

	return cmd
}
