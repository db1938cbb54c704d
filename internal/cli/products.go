package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joao-fontenele/ekla-marketplace/internal/catalog"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

type productsOptions struct {
	search     string
	categories []string
	minPrice   string
	maxPrice   string
	inStock    bool
	sort       string
	desc       bool
}

// query expresses the flags the way the storefront receives them, so both
// share one parser.
func (o productsOptions) query() url.Values {
	q := url.Values{}
	if o.search != "" {
		q.Set("search", o.search)
	}
	for _, c := range o.categories {
		q.Add("category", c)
	}
	if o.minPrice != "" {
		q.Set("min_price", o.minPrice)
	}
	if o.maxPrice != "" {
		q.Set("max_price", o.maxPrice)
	}
	if o.inStock {
		q.Set("in_stock", strconv.FormatBool(true))
	}
	return q
}

func NewProductsCommand(root *RootOptions) *cobra.Command {
	opts := productsOptions{}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.load()
			if err != nil {
				return err
			}

			filter, err := catalog.FilterFromQuery(opts.query(), catalog.DefaultPriceRange)
			if err != nil {
				return err
			}
			products := catalog.FilterProducts(cat.Products(), filter)

			if opts.sort != "" {
				field, err := catalog.ParseSortField(opts.sort)
				if err != nil {
					return err
				}
				state := catalog.SortState{Field: field, Direction: catalog.Ascending}
				if opts.desc {
					state.Direction = catalog.Descending
				}
				products = catalog.SortProducts(products, state)
			}

			return render(root, cmd.OutOrStdout(), products, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tARTISAN")
				for _, p := range products {
					fmt.Fprintf(tw, "%s\t%s\t%s\t$%s\t%s\t%s\n",
						p.ID, p.Name, p.Category, p.Price.StringFixed(2), stockLabel(p), p.ArtisanName)
				}
				fmt.Fprintf(tw, "\n%d products\n", len(products))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "match name, description or artisan")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "category slug (repeatable)")
	cmd.Flags().StringVar(&opts.minPrice, "min-price", "", "lowest price")
	cmd.Flags().StringVar(&opts.maxPrice, "max-price", "", "highest price")
	cmd.Flags().BoolVar(&opts.inStock, "in-stock", false, "only products with stock")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort by name|category|price|stock")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")

	return cmd
}

func stockLabel(p domain.Product) string {
	if !p.InStock() {
		return "out of stock"
	}
	return strconv.Itoa(p.Stock)
}
