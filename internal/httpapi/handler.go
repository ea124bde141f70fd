package httpapi

import (
	"context"
	"net/http"

	"enterprise-portal/internal/auth"
	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/session"
	"enterprise-portal/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Catalogue interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id string) (models.MenuItem, error)
	Create(ctx context.Context, input catalogue.NewItem) (models.MenuItem, error)
	Update(ctx context.Context, id string, patch catalogue.Patch) (models.MenuItem, error)
	Delete(ctx context.Context, id string) (bool, error)
	Reorder(ctx context.Context, ids []string) error
}

type Exchanger interface {
	AcquireEmbed(ctx context.Context, cfg models.PowerBIConfig) (models.EmbedDescriptor, error)
}

type Options struct {
	Sessions        *session.Manager
	Tokens          *session.Tokens
	Catalogue       Catalogue
	Exchanger       Exchanger
	Renderer        view.EmbedRenderer
	Metrics         *Metrics
	RateLimiter     *RateLimiter
	Logger          *zap.Logger
	CookieSecure    bool
	CORSOrigins     []string
	DemoCredentials []auth.DemoCredential
}

type Handler struct {
	sessions     *session.Manager
	tokens       *session.Tokens
	catalogue    Catalogue
	exchanger    Exchanger
	renderer     view.EmbedRenderer
	metrics      *Metrics
	limiter      *RateLimiter
	logger       *zap.Logger
	cookieSecure bool
	corsOrigins  []string
	demo         []auth.DemoCredential
}

func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = view.BrowserRenderer{}
	}
	return &Handler{
		sessions:     opts.Sessions,
		tokens:       opts.Tokens,
		catalogue:    opts.Catalogue,
		exchanger:    opts.Exchanger,
		renderer:     renderer,
		metrics:      opts.Metrics,
		limiter:      opts.RateLimiter,
		logger:       logger,
		cookieSecure: opts.CookieSecure,
		corsOrigins:  opts.CORSOrigins,
		demo:         opts.DemoCredentials,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(LoggingMiddleware(h.logger))
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}
	if h.limiter != nil {
		r.Use(h.limiter.Middleware)
	}
	if len(h.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-CSRF-Token"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(h.resolveSession)

	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.With(h.requireUserFlat).Post("/powerbi/embed", h.handleEmbed)
		r.With(h.requireUserFlat).Get("/menu/{id}/embed", h.handleItemEmbed)

		r.Group(func(r chi.Router) {
			r.Use(requireJSON)
			r.Post("/auth/login", h.handleLogin)
			r.Post("/auth/logout", h.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(h.requireUser)
				r.Get("/auth/me", h.handleMe)

				r.Get("/session", h.handleSession)
				r.Post("/session/select", h.handleSelect)
				r.Post("/session/admin", h.handleOpenAdmin)
				r.Post("/session/home", h.handleHome)

				r.Get("/menu", h.handleListMenu)

				r.Route("/admin/menu", func(r chi.Router) {
					r.Use(h.requireAdmin)
					r.Get("/", h.handleAdminList)
					r.Post("/", h.handleCreateItem)
					r.Post("/reorder", h.handleReorder)
					r.Get("/{id}", h.handleGetItem)
					r.Put("/{id}", h.handleUpdateItem)
					r.Delete("/{id}", h.handleDeleteItem)
				})
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.ensureCSRFToken)
		r.Use(h.requireCSRF)
		r.Get("/", h.handleIndex)
		r.Post("/login", h.handleLoginForm)
		r.Post("/logout", h.handleLogoutForm)

		r.Group(func(r chi.Router) {
			r.Use(h.requirePageUser)
			r.Get("/items/{id}", h.handleItemPage)
			r.Get("/admin", h.handleAdminPage)
			r.Post("/admin/items", h.handleCreateItemForm)
			r.Post("/admin/items/reorder", h.handleReorderForm)
			r.Post("/admin/items/{id}", h.handleUpdateItemForm)
			r.Post("/admin/items/{id}/delete", h.handleDeleteItemForm)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
