package server

import (
	"crypto/subtle"
	"strings"

	"inkboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// requireAdmin enforces the shared-secret bearer credential on admin routes.
// This is a placeholder guard, not a real authorization scheme: real role
// checks belong to the external auth provider once sessions are wired in.
func (s *Server) requireAdmin(c *fiber.Ctx) bool {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.config.AdminToken)) == 1
}

// feedEligible reports whether a post can be served on the feed: published,
// able to open a real detail page (flat id, renderable body) and not from a
// provider whose articles only link offsite.
func feedEligible(p *models.Post) bool {
	if p.Status != models.StatusPublished {
		return false
	}
	if p.Source == models.SourceGuardian {
		return false
	}
	if strings.Contains(p.ID, "/") {
		return false
	}
	return p.HasContent()
}
