package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkboard/internal/middleware"
	"inkboard/internal/models"
	"inkboard/internal/observability"
	"inkboard/internal/store"

	"github.com/gofiber/fiber/v2"
)

// feedResponse is the feed page payload. HasMore is always true: when the
// filtered catalog runs out the feed cycles, so callers must rely on HasMore
// instead of waiting for an empty page.
type feedResponse struct {
	Posts   []models.Post `json:"posts"`
	HasMore bool          `json:"hasMore"`
}

// GetFeed handles GET /api/feed?page=N
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.Context()

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := s.config.FeedPageSize

	s.maybeWarmUp()

	all, err := s.posts.GetAll(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	valid := make([]models.Post, 0, len(all))
	for i := range all {
		if feedEligible(&all[i]) {
			valid = append(valid, all[i])
		}
	}

	start := (page - 1) * perPage
	end := start + perPage

	var paged []models.Post
	switch {
	case start < len(valid):
		if end > len(valid) {
			end = len(valid)
		}
		paged = valid[start:end]
	case len(valid) > 0:
		// Past the end of the catalog: loop the first page with synthetic
		// cycle ids so the feed stays endless in low-content conditions.
		first := valid
		if len(first) > perPage {
			first = first[:perPage]
		}
		paged = make([]models.Post, len(first))
		for i, p := range first {
			p.ID = fmt.Sprintf("%s%s%d", p.ID, store.CycleMarker, page)
			paged[i] = p
		}
	default:
		paged = []models.Post{}
	}

	return c.JSON(feedResponse{Posts: paged, HasMore: true})
}

// maybeWarmUp triggers one ingestion cycle per process lifetime on first feed
// read. It runs asynchronously so it never blocks the triggering request, and
// swallows failures (logged only): ingestion problems must not surface to
// ordinary readers.
func (s *Server) maybeWarmUp() {
	if s.ingestor == nil || !s.warmedUp.CompareAndSwap(false, true) {
		return
	}

	observability.IngestionRuns.WithLabelValues("warmup").Inc()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		added, err := s.ingestor.IngestAll(ctx)
		if err != nil {
			middleware.Logger.Error("warm-up ingestion failed", slog.String("error", err.Error()))
			return
		}
		middleware.Logger.Info("warm-up ingestion complete", slog.Int("added", added))
	}()
}
