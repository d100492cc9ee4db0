package handlers

import (
	"archive-browser/listing"
	"archive-browser/models"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type listQuery struct {
	Page  int    `query:"page" validate:"min=1"`
	Limit int    `query:"limit" validate:"min=1,max=100"`
	Sort  string `query:"sort" validate:"oneof=url last_captured snapshot_count"`
}

// ListURLs returns one page of archived resources.
func (h *Handler) ListURLs(c *fiber.Ctx) error {
	q := listQuery{Page: 1, Limit: listing.DefaultLimit, Sort: string(listing.SortByURL)}
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters")
	}
	if err := h.validate.Struct(q); err != nil {
		return badRequest(c, validationMessage(err))
	}

	key, err := listing.ParseSortKey(q.Sort)
	if err != nil {
		return h.fail(c, err)
	}
	catalog, err := h.cache.Get(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	page, err := listing.List(catalog, key, q.Page, q.Limit)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(models.PaginatedResponse[models.URLSummary]{
		Success:    true,
		Data:       lo.Map(page.Items, func(r *models.Resource, _ int) models.URLSummary { return models.NewURLSummary(r) }),
		Pagination: page.Meta,
	})
}

// GetURL returns a resource with all of its captures.
func (h *Handler) GetURL(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "URL ID cannot be empty")
	}

	resource, err := h.cache.Resource(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if resource == nil {
		return notFound(c, "Archived URL '"+id+"' not found")
	}

	return c.JSON(models.ResourceDetail{
		URLSummary: models.NewURLSummary(resource),
		Snapshots:  lo.Map(resource.Captures, func(cp *models.Capture, _ int) models.CaptureDetail { return models.NewCaptureDetail(cp) }),
	})
}
