package storefront

import (
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/ekla-marketplace/internal/admin"
	"github.com/joao-fontenele/ekla-marketplace/internal/cart"
	"github.com/joao-fontenele/ekla-marketplace/internal/catalog"
	"github.com/joao-fontenele/ekla-marketplace/internal/checkout"
	"github.com/joao-fontenele/ekla-marketplace/internal/dashboard"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
	"github.com/joao-fontenele/ekla-marketplace/internal/telemetry"
)

type Handlers struct {
	Catalog   *catalog.Handler
	Session   *session.Handler
	Cart      *cart.Handler
	Checkout  *checkout.Handler
	Orders    *orders.Handler
	Dashboard *dashboard.Handler
	Admin     *admin.Handler
}

// Router builds the storefront handler. Every /api/ route runs inside the
// session middleware; metrics and health checks do not get a session.
// metrics may be nil.
func (a *App) Router(metrics http.Handler) http.Handler {
	h := a.Handlers
	route := telemetry.WithHTTPRoute
	adminOnly := a.Sessions.RequireRole(domain.RoleAdmin)

	api := http.NewServeMux()

	api.HandleFunc("GET /api/home", route(h.Catalog.HandleHome))
	api.HandleFunc("GET /api/products", route(h.Catalog.HandleListProducts))
	api.HandleFunc("GET /api/products/{id}", route(h.Catalog.HandleGetProduct))
	api.HandleFunc("GET /api/artisans", route(h.Catalog.HandleListArtisans))
	api.HandleFunc("GET /api/artisans/{id}", route(h.Catalog.HandleGetArtisan))
	api.HandleFunc("GET /api/categories", route(h.Catalog.HandleListCategories))

	api.HandleFunc("POST /api/session/login", route(h.Session.HandleLogin))
	api.HandleFunc("POST /api/session/register", route(h.Session.HandleRegister))
	api.HandleFunc("POST /api/session/register/artisan", route(h.Session.HandleRegisterArtisan))
	api.HandleFunc("POST /api/session/logout", route(h.Session.HandleLogout))
	api.HandleFunc("GET /api/session/me", route(h.Session.HandleMe))

	api.HandleFunc("GET /api/cart", route(h.Cart.HandleGet))
	api.HandleFunc("DELETE /api/cart", route(h.Cart.HandleClear))
	api.HandleFunc("GET /api/cart/summary", route(h.Cart.HandleSummary))
	api.HandleFunc("POST /api/cart/items", route(h.Cart.HandleAddItem))
	api.HandleFunc("PUT /api/cart/items/{productId}", route(h.Cart.HandleSetQuantity))
	api.HandleFunc("DELETE /api/cart/items/{productId}", route(h.Cart.HandleRemoveItem))

	api.HandleFunc("POST /api/checkout", route(h.Checkout.HandlePlaceOrder))
	api.HandleFunc("GET /api/checkout/prefill", route(h.Checkout.HandlePrefill))

	api.HandleFunc("GET /api/orders/{id}", route(h.Orders.HandleGet))
	api.HandleFunc("GET /api/profile", route(h.Dashboard.HandleProfile))

	api.HandleFunc("GET /api/dashboard", route(h.Dashboard.HandleOverview))
	api.HandleFunc("GET /api/dashboard/products", route(h.Dashboard.HandleProducts))
	api.HandleFunc("GET /api/dashboard/orders", route(h.Dashboard.HandleOrders))
	api.HandleFunc("PATCH /api/dashboard/orders/{id}/status", route(h.Dashboard.HandleUpdateStatus))

	api.HandleFunc("GET /api/admin/overview", route(h.Admin.HandleOverview))
	api.HandleFunc("GET /api/admin/users", route(h.Admin.HandleUsers))
	api.HandleFunc("GET /api/admin/categories", route(h.Admin.HandleListCategories))
	api.HandleFunc("POST /api/admin/categories", route(h.Admin.HandleCreateCategory))
	api.HandleFunc("PUT /api/admin/categories/{slug}", route(h.Admin.HandleUpdateCategory))
	api.HandleFunc("DELETE /api/admin/categories/{slug}", route(h.Admin.HandleDeleteCategory))
	api.HandleFunc("GET /api/admin/orders", route(adminOnly(h.Orders.HandleList)))
	api.HandleFunc("PATCH /api/admin/orders/{id}/status", route(adminOnly(h.Orders.HandleUpdateStatus)))

	root := http.NewServeMux()
	root.Handle("/api/", a.Sessions.Middleware(api))
	root.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	if metrics != nil {
		root.Handle("GET /metrics", metrics)
	}

	return otelhttp.NewHandler(root, "storefront",
		otelhttp.WithSpanNameFormatter(telemetry.SpanName),
	)
}
