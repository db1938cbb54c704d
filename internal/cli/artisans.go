package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joao-fontenele/ekla-marketplace/internal/catalog"
)

func NewArtisansCommand(root *RootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "artisans",
		Short: "List artisans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.load()
			if err != nil {
				return err
			}
			artisans := catalog.SearchArtisans(cat.Artisans(), search)

			return render(root, cmd.OutOrStdout(), artisans, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tRATING\tSPECIALTIES")
				for _, a := range artisans {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n",
						a.ID, a.Name, a.Location, a.Rating, strings.Join(a.Specialties, ", "))
				}
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "match name, bio, location or specialty")
	return cmd
}

func NewCategoriesCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with product counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.load()
			if err != nil {
				return err
			}
			categories := cat.Categories()

			return render(root, cmd.OutOrStdout(), categories, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "SLUG\tNAME\tPRODUCTS")
				for _, c := range categories {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Slug, c.Name, c.ProductsCount)
				}
			})
		},
	}
}
