package handlers

import (
	"archive-browser/models"

	"github.com/gofiber/fiber/v2"
)

// GetSnapshot returns one capture.
func (h *Handler) GetSnapshot(c *fiber.Ctx) error {
	id := c.Params("id")
	capture, err := h.cache.Capture(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if capture == nil {
		return notFound(c, "Snapshot '"+id+"' not found")
	}
	return c.JSON(models.NewCaptureDetail(capture))
}

// GetArtifact streams one artifact file of a capture.
func (h *Handler) GetArtifact(c *fiber.Ctx) error {
	id := c.Params("id")
	kind, ok := models.ParseArtifactKind(c.Params("artifact"))
	if !ok {
		return notFound(c, "Unknown artifact '"+c.Params("artifact")+"'")
	}

	stream, err := h.provider.ArtifactStream(c.UserContext(), id, kind)
	if err != nil {
		return h.fail(c, err)
	}
	if stream == nil {
		return notFound(c, "Artifact '"+string(kind)+"' not found for snapshot '"+id+"'")
	}

	c.Set(fiber.HeaderContentType, kind.ContentType())
	return c.SendStream(stream)
}
