package server

import (
	"errors"
	"strings"
	"time"

	"inkboard/internal/ingest"
	"inkboard/internal/models"
	"inkboard/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Title       string                  `json:"title"`
		Subtitle    string                  `json:"subtitle"`
		Content     string                  `json:"content"`
		CoverURL    string                  `json:"cover_image_url"`
		CoverAspect models.CoverAspectRatio `json:"cover_aspect_ratio"`
		Tags        []string                `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" || req.Content == "" || req.CoverURL == "" || len(req.Tags) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing required fields"))
	}

	aspect := req.CoverAspect
	if aspect == "" {
		aspect = models.Ratio4x3
	}
	if !models.ValidAspectRatio(aspect) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid cover aspect ratio"))
	}

	tags := make([]models.Tag, 0, len(req.Tags))
	for _, name := range req.Tags {
		tag := models.NewTag(name)
		if tag.Name == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Tags must not be blank"))
		}
		tags = append(tags, tag)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	author := store.DemoAuthor()

	post := models.Post{
		ID:              "user-" + uuid.NewString(),
		AuthorID:        author.ID,
		Author:          author,
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Content:         req.Content,
		CoverImageURL:   req.CoverURL,
		CoverAspect:     aspect,
		Status:          models.StatusPublished,
		ReadTimeMinutes: ingest.ReadTimeFromHTML(req.Content),
		Tags:            tags,
		CreatedAt:       now,
		PublishedAt:     now,
	}

	if _, err := s.posts.UpsertMany(ctx, []models.Post{post}); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id := c.Params("id")

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(post)
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	ctx := c.Context()

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}
	needle := strings.ToLower(q)
	page := parsePagination(c, 20)

	all, err := s.posts.GetAll(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	matched := make([]models.Post, 0)
	for i := range all {
		p := &all[i]
		if p.Status != models.StatusPublished {
			continue
		}
		if postMatches(p, needle) {
			matched = append(matched, *p)
		}
	}

	return c.JSON(slicePage(matched, page))
}

// GetTagPosts handles GET /api/tags/:name/posts
func (s *Server) GetTagPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	name := c.Params("name")
	page := parsePagination(c, 20)

	all, err := s.posts.GetAll(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	matched := make([]models.Post, 0)
	for i := range all {
		if all[i].Status == models.StatusPublished && all[i].HasTag(name) {
			matched = append(matched, all[i])
		}
	}

	return c.JSON(slicePage(matched, page))
}

// GetSourcePosts handles GET /api/sources/:name/posts
func (s *Server) GetSourcePosts(c *fiber.Ctx) error {
	ctx := c.Context()
	name := models.PostSource(strings.ToLower(c.Params("name")))
	page := parsePagination(c, 20)

	all, err := s.posts.GetAll(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	matched := make([]models.Post, 0)
	for i := range all {
		if all[i].Status == models.StatusPublished && all[i].Source == name {
			matched = append(matched, all[i])
		}
	}

	return c.JSON(slicePage(matched, page))
}

func postMatches(p *models.Post, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Subtitle), needle) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(t.Name, needle) {
			return true
		}
	}
	return false
}

func slicePage(posts []models.Post, page Pagination) []models.Post {
	if page.Offset >= len(posts) {
		return []models.Post{}
	}
	end := page.Offset + page.Limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[page.Offset:end]
}
