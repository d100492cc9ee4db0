package handlers

import (
	"archive-browser/database"
	"archive-browser/logger"

	"github.com/gofiber/fiber/v2"
)

// CacheStats reports the cache state without refreshing it.
func (h *Handler) CacheStats(c *fiber.Ctx) error {
	return c.JSON(h.cache.Stats())
}

// ClearCache empties the cache. Calls are rate limited.
func (h *Handler) ClearCache(c *fiber.Ctx) error {
	if !h.clearLimiter.Allow() {
		return errorJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Cache was cleared recently, try again shortly")
	}
	h.cache.Clear()
	h.log.Info("Cache cleared on request", logger.String("request_id", requestID(c)))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cache cleared",
	})
}

type scansQuery struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// ListScans returns recent scan history when it is enabled.
func (h *Handler) ListScans(c *fiber.Ctx) error {
	if h.history == nil {
		return notFound(c, "Scan history is disabled")
	}

	q := scansQuery{Limit: database.DefaultRecentLimit}
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := h.validate.Struct(q); err != nil {
		return badRequest(c, validationMessage(err))
	}

	records, err := h.history.Recent(c.UserContext(), q.Limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
	})
}
