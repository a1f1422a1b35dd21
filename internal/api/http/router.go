package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/domain"
)

// OwnerLookups resolve the owning user of each owned resource.
type OwnerLookups struct {
	Users    auth.OwnerLookup
	Products auth.OwnerLookup
	Carts    auth.OwnerLookup
	Orders   auth.OwnerLookup
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Users         *handlers.UsersHandler
	Categories    *handlers.CategoriesHandler
	Products      *handlers.ProductsHandler
	Carts         *handlers.CartsHandler
	Orders        *handlers.OrdersHandler
	Search        *handlers.SearchHandler
	Authenticator *auth.Authenticator
	Owners        OwnerLookups
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes. Each protected route composes its own
// pipeline: the authentication gate first, then the authorization checks.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	gate := auth.Compose(cfg.Authenticator.Authenticate)
	admin := gate.With(auth.RequireAdmin())
	anyRole := gate.With(auth.RequireRole(auth.NewRoleSet(domain.RoleAdmin, domain.RoleUser)))
	owns := func(resource string, lookup auth.OwnerLookup) auth.Pipeline {
		return gate.With(auth.RequireOwnership(resource, lookup, "id"))
	}

	api := app.Group("/api")

	api.Post("/auth/login", cfg.Auth.Login)

	users := api.Group("/users")
	users.Post("/", cfg.Users.Register)
	users.Get("/", admin.Then(cfg.Users.List))
	users.Get("/:id", admin.Then(cfg.Users.Get))
	users.Put("/:id", owns("User", cfg.Owners.Users).Then(cfg.Users.Update))
	users.Delete("/:id", admin.Then(cfg.Users.Delete))

	categories := api.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Post("/", admin.Then(cfg.Categories.Create))
	categories.Put("/:id", admin.Then(cfg.Categories.Update))
	categories.Delete("/:id", admin.Then(cfg.Categories.Delete))

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", anyRole.Then(cfg.Products.Create))
	products.Put("/:id", owns("Product", cfg.Owners.Products).Then(cfg.Products.Update))
	products.Delete("/:id", owns("Product", cfg.Owners.Products).Then(cfg.Products.Delete))

	carts := api.Group("/carts")
	carts.Get("/", admin.Then(cfg.Carts.List))
	carts.Post("/", gate.Then(cfg.Carts.Create))
	carts.Get("/:id", owns("Cart", cfg.Owners.Carts).Then(cfg.Carts.Get))
	carts.Put("/:id", owns("Cart", cfg.Owners.Carts).Then(cfg.Carts.Update))
	carts.Delete("/:id", owns("Cart", cfg.Owners.Carts).Then(cfg.Carts.Delete))

	orders := api.Group("/orders")
	orders.Get("/", admin.Then(cfg.Orders.List))
	orders.Post("/", gate.Then(cfg.Orders.Create))
	orders.Get("/:id", owns("Order", cfg.Owners.Orders).Then(cfg.Orders.Get))
	orders.Put("/:id", admin.Then(cfg.Orders.UpdateStatus))
	orders.Delete("/:id", admin.Then(cfg.Orders.Delete))

	api.Get("/search/:collection/:term", gate.Then(cfg.Search.Search))
}
