package server

import (
	"errors"

	"inkboard/internal/models"
	"inkboard/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// TriggerIngestion handles POST /api/admin/ingest. Unlike the lazy warm-up,
// this path runs the cycle synchronously and reports persistence failures to
// the caller.
func (s *Server) TriggerIngestion(c *fiber.Ctx) error {
	if !s.requireAdmin(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Forbidden: Admin role required"))
	}

	if s.ingestor == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(errors.New("ingestion not configured")))
	}

	observability.IngestionRuns.WithLabelValues("admin").Inc()
	added, err := s.ingestor.IngestAll(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"message": "Content ingestion triggered successfully",
		"added":   added,
	})
}

// UpdatePostStatus handles PATCH /api/admin/posts/:id/status, the content
// moderation path. Posts are only ever re-published or marked removed.
func (s *Server) UpdatePostStatus(c *fiber.Ctx) error {
	if !s.requireAdmin(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Forbidden: Admin role required"))
	}

	var req struct {
		Status models.PostStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Status != models.StatusPublished && req.Status != models.StatusRemoved {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Status must be PUBLISHED or REMOVED"))
	}

	id := c.Params("id")
	post, err := s.posts.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(post)
}
