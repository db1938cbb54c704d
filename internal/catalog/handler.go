package catalog

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

const featuredCount = 4

type Handler struct {
	loader *Loader
	logger *slog.Logger
}

func NewHandler(loader *Loader, logger *slog.Logger) *Handler {
	return &Handler{
		loader: loader,
		logger: logger,
	}
}

type productListResponse struct {
	Title         string           `json:"title"`
	Products      []domain.Product `json:"products"`
	Total         int              `json:"total"`
	Categories    []string         `json:"categories"`
	Selected      []string         `json:"selected_categories"`
	PriceBounds   PriceRange       `json:"price_bounds"`
	Price         PriceRange       `json:"price"`
	InStock       bool             `json:"in_stock"`
	FiltersActive bool             `json:"filters_active"`
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query(), DefaultPriceRange)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	products, err := h.loader.Products().Await(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	bounds := h.loader.Catalog().PriceBounds()
	visible := FilterProducts(products, filter)
	h.logger.Info("products listed", "count", len(visible), "search", filter.Query)
	h.writeJSON(w, http.StatusOK, productListResponse{
		Title:         listTitle(filter),
		Products:      visible,
		Total:         len(visible),
		Categories:    h.loader.Catalog().CategoryNames(),
		Selected:      filter.Categories,
		PriceBounds:   bounds,
		Price:         filter.Price,
		InStock:       filter.InStock,
		FiltersActive: filter.Active(bounds),
	})
}

func listTitle(f ProductFilter) string {
	switch {
	case f.Query != "":
		return fmt.Sprintf("Search Results for %q", f.Query)
	case len(f.Categories) == 1:
		return CategoryLabel(f.Categories[0]) + " Products"
	default:
		return "All Products"
	}
}

type productDetailResponse struct {
	Product    domain.Product   `json:"product"`
	StockLabel string           `json:"stock_label"`
	Related    []domain.Product `json:"related"`
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	product, err := h.loader.Product(id).Await(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("product retrieved", "product_id", product.ID)
	h.writeJSON(w, http.StatusOK, productDetailResponse{
		Product:    product,
		StockLabel: product.StockLabel(),
		Related:    h.loader.Catalog().RelatedProducts(product),
	})
}

func (h *Handler) HandleListArtisans(w http.ResponseWriter, r *http.Request) {
	artisans, err := h.loader.Artisans().Await(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	visible := SearchArtisans(artisans, r.URL.Query().Get("search"))
	h.logger.Info("artisans listed", "count", len(visible))
	h.writeJSON(w, http.StatusOK, visible)
}

type artisanDetailResponse struct {
	Artisan  domain.Artisan   `json:"artisan"`
	Products []domain.Product `json:"products"`
	Related  []domain.Artisan `json:"related"`
}

func (h *Handler) HandleGetArtisan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing artisan id")
		return
	}

	artisan, err := h.loader.Artisan(id).Await(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	c := h.loader.Catalog()
	h.logger.Info("artisan retrieved", "artisan_id", artisan.ID)
	h.writeJSON(w, http.StatusOK, artisanDetailResponse{
		Artisan:  artisan,
		Products: c.ProductsByArtisan(artisan.ID),
		Related:  c.RelatedArtisans(artisan),
	})
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.loader.Catalog().Categories())
}

type homeResponse struct {
	FeaturedProducts []domain.Product  `json:"featured_products"`
	FeaturedArtisans []domain.Artisan  `json:"featured_artisans"`
	Categories       []domain.Category `json:"categories"`
}

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	c := h.loader.Catalog()
	products, artisans := c.Featured(featuredCount)
	h.writeJSON(w, http.StatusOK, homeResponse{
		FeaturedProducts: products,
		FeaturedArtisans: artisans,
		Categories:       c.Categories(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	api.WriteJSON(w, h.logger, status, data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	api.WriteError(w, h.logger, status, message)
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	api.WriteFailure(w, r, h.logger, err)
}
