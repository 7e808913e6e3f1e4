package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"mirmaia/pos/domain"
	"mirmaia/pos/internal/auth"
	"mirmaia/pos/internal/catalog"
	"mirmaia/pos/internal/inventory"
	"mirmaia/pos/internal/orders"
	"mirmaia/pos/internal/recipe"
	"mirmaia/pos/internal/reports"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db        *sqlx.DB
	tokens    *auth.Tokens
	users     *auth.Users
	catalog   *catalog.Store
	inventory *inventory.Store
	recipes   *recipe.Store
	orders    *orders.Coordinator
	reports   *reports.Service
	origins   []string
	logger    *zap.Logger
}

// Deps lists the services the HTTP layer exposes.
type Deps struct {
	DB          *sqlx.DB
	Tokens      *auth.Tokens
	Users       *auth.Users
	Catalog     *catalog.Store
	Inventory   *inventory.Store
	Recipes     *recipe.Store
	Orders      *orders.Coordinator
	Reports     *reports.Service
	CORSOrigins []string
	Logger      *zap.Logger
}

// New constructs a Handler.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		db:        d.DB,
		tokens:    d.Tokens,
		users:     d.Users,
		catalog:   d.Catalog,
		inventory: d.Inventory,
		recipes:   d.Recipes,
		orders:    d.Orders,
		reports:   d.Reports,
		origins:   origins,
		logger:    logger,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(zapLoggerMiddleware(h.logger))

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Post("/auth/login", h.login)

		r.Group(func(pr chi.Router) {
			pr.Use(h.authMiddleware)

			pr.Get("/auth/verify", h.verify)
			pr.Post("/auth/change-password", h.changePassword)

			pr.Route("/users", func(r chi.Router) {
				r.Use(h.requireRole(domain.RoleAdmin))
				r.Get("/", h.listUsers)
				r.Post("/", h.register)
				r.Patch("/{id}/active", h.setUserActive)
			})
			pr.With(h.requireRole(domain.RoleAdmin)).Post("/auth/register", h.register)

			pr.Route("/categories", func(r chi.Router) {
				r.Get("/", h.listCategories)
				r.With(h.requireRole(domain.RoleAdmin)).Post("/", h.createCategory)
				r.With(h.requireRole(domain.RoleAdmin)).Put("/{id}", h.updateCategory)
				r.With(h.requireRole(domain.RoleAdmin)).Delete("/{id}", h.deleteCategory)
			})

			pr.Route("/products", func(r chi.Router) {
				r.Get("/", h.listProducts)
				r.Get("/category/{id}", h.listProductsByCategory)
				r.Get("/{id}", h.getProduct)
				r.With(h.requireRole(domain.RoleAdmin)).Post("/", h.createProduct)
				r.With(h.requireRole(domain.RoleAdmin)).Put("/{id}", h.updateProduct)
				r.With(h.requireRole(domain.RoleAdmin)).Delete("/{id}", h.deleteProduct)
			})

			pr.Route("/tables", func(r chi.Router) {
				r.Get("/", h.listTables)
				r.With(h.requireRole(domain.RoleAdmin)).Post("/", h.createTable)
				r.With(h.requireRole(domain.RoleAdmin)).Put("/{id}", h.updateTable)
				r.With(h.requireRole(domain.RoleAdmin)).Delete("/{id}", h.deleteTable)
			})

			pr.Route("/inventory-items", func(r chi.Router) {
				r.Get("/", h.listInventory)
				r.Get("/low-stock", h.lowStock)
				r.Get("/deduction-log", h.deductionLog)
				r.Get("/{id}", h.getInventoryItem)
				r.Group(func(r chi.Router) {
					r.Use(h.requireRole(domain.RoleAdmin))
					r.Post("/", h.createInventoryItem)
					r.Put("/{id}", h.updateInventoryItem)
					r.Delete("/{id}", h.deleteInventoryItem)
					r.Post("/{id}/adjust", h.adjustInventory)
				})
			})

			pr.Route("/product-inventory-usage", func(r chi.Router) {
				r.Get("/", h.listRecipeLinks)
				r.Get("/product/{id}", h.productRecipe)
				r.With(h.requireRole(domain.RoleAdmin)).Post("/", h.setRecipeLink)
				r.With(h.requireRole(domain.RoleAdmin)).Delete("/{id}", h.deleteRecipeLink)
			})

			pr.Route("/orders", func(r chi.Router) {
				r.Post("/", h.createOrder)
				r.Get("/", h.listOrders)
				r.Get("/{id}", h.getOrder)
			})

			pr.Route("/reports", func(r chi.Router) {
				r.Get("/daily", h.dailyReport)
				r.Get("/monthly", h.monthlyReport)
				r.Get("/by-category", h.categoryReport)
			})

			pr.Route("/daily-closure", func(r chi.Router) {
				r.Get("/today-summary", h.todaySummary)
				r.Post("/close", h.closeDay)
				r.Get("/", h.listClosures)
				r.Get("/{id}", h.getClosure)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
