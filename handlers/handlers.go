// Package handlers exposes the archive catalog over HTTP with fiber.
package handlers

import (
	"reflect"
	"time"

	"archive-browser/cache"
	"archive-browser/database"
	"archive-browser/logger"
	"archive-browser/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const ServiceName = "archive-browser"

// Options wires a Handler. History and Gatherer are optional.
type Options struct {
	Cache    *cache.Cache
	Provider storage.Provider
	History  *database.ScanHistory
	Gatherer prometheus.Gatherer
	Logger   logger.Logger
	Version  string
	// ClearInterval is the minimum spacing between manual cache clears.
	// Zero disables the limit.
	ClearInterval time.Duration
}

type Handler struct {
	cache    *cache.Cache
	provider storage.Provider
	history  *database.ScanHistory
	gatherer prometheus.Gatherer
	log      logger.Logger
	version  string

	validate     *validator.Validate
	clearLimiter *rate.Limiter
}

func New(opts Options) *Handler {
	limit := rate.Inf
	if opts.ClearInterval > 0 {
		limit = rate.Every(opts.ClearInterval)
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})

	return &Handler{
		cache:        opts.Cache,
		provider:     opts.Provider,
		history:      opts.History,
		gatherer:     opts.Gatherer,
		log:          opts.Logger.With(logger.String("component", "http")),
		version:      opts.Version,
		validate:     validate,
		clearLimiter: rate.NewLimiter(limit, 1),
	}
}

// SetupRoutes configures the API routes for the application.
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/health", h.Health)
	if h.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	urls := api.Group("/urls")
	urls.Get("/", h.ListURLs)
	urls.Get("/:id", h.GetURL)

	snapshots := api.Group("/snapshots")
	snapshots.Get("/:id", h.GetSnapshot)
	snapshots.Get("/:id/artifacts/:artifact", h.GetArtifact)

	cacheRoutes := api.Group("/cache")
	cacheRoutes.Get("/stats", h.CacheStats)
	cacheRoutes.Post("/clear", h.ClearCache)

	api.Get("/scans", h.ListScans)
}

// Health reports liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": ServiceName,
		"version": h.version,
	})
}
