package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/megaflix/internal/api/handler"
	"github.com/hszk-dev/megaflix/internal/api/middleware"
	"github.com/hszk-dev/megaflix/internal/infrastructure/cache"
	"github.com/hszk-dev/megaflix/internal/usecase"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Logger *slog.Logger

	Catalog usecase.CatalogService
	Library usecase.LibraryService
	Auth    usecase.AuthService

	Cache     *cache.ResponseCache
	CacheTTLs handler.CacheTTLs

	Relay   handler.Relayer
	Targets handler.StreamTargets

	// StreamLimiter throttles /stream routes per client IP. Nil disables it.
	StreamLimiter middleware.RateLimiter
	// ClientIPs decides which address a stream request counts against.
	// Nil keys on the peer address and ignores X-Forwarded-For.
	ClientIPs     *middleware.ClientIPResolver
}

// NewRouter builds the HTTP routing table.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog := handler.NewCatalogHandler(deps.Catalog, deps.Cache, deps.CacheTTLs, logger)
	library := handler.NewLibraryHandler(deps.Library, logger)
	auth := handler.NewAuthHandler(deps.Auth, logger)
	stream := handler.NewStreamHandler(deps.Relay, deps.Targets)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.NewHealthHandler(deps.Cache).Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/discover", catalog.Discover)
		r.Get("/discover/genre", catalog.DiscoverByGenre)
		r.Get("/search", catalog.Search)
		r.Get("/genres", catalog.Genres)
		r.Get("/movie/{id}", catalog.Movie)
		r.Get("/tv/{id}", catalog.TV)
		r.Get("/tv/{id}/season/{season}", catalog.Season)
		r.Get("/person/{id}", catalog.Person)

		r.Route("/auth", func(r chi.Router) {
			r.Use(chimw.Timeout(30 * time.Second))
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(deps.Auth, logger))
			r.Get("/my-list", library.Watchlist)
			r.Post("/my-list", library.ToggleWatchlist)
			r.Get("/history", library.History)
			r.Post("/history", library.SaveProgress)
		})
	})

	r.Route("/stream", func(r chi.Router) {
		if deps.StreamLimiter != nil {
			r.Use(middleware.RateLimit(deps.StreamLimiter, deps.ClientIPs))
		}
		r.Get("/movie/{tmdbID}", stream.Movie)
		r.Get("/series/{tmdbID}", stream.Series)
	})

	return r
}
