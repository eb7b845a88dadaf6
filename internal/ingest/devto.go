package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"inkboard/internal/models"
)

const devtoCoverFallback = "https://images.unsplash.com/photo-1555066931-4365d14bab8c?w=600&q=80"

// devtoArticle is the subset of the dev.to articles payload the adapter maps.
type devtoArticle struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	BodyHTML           string   `json:"body_html"`
	BodyMarkdown       string   `json:"body_markdown"`
	CoverImage         string   `json:"cover_image"`
	URL                string   `json:"url"`
	PublishedAt        string   `json:"published_at"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
	TagList            []string `json:"tag_list"`
	User               struct {
		Name string `json:"name"`
	} `json:"user"`
}

// DevtoAdapter ingests top articles from the dev.to developer-blog API.
type DevtoAdapter struct {
	baseURL   string
	client    *http.Client
	estimator EngagementEstimator
}

// NewDevtoAdapter creates a DevtoAdapter against the given base URL.
func NewDevtoAdapter(baseURL string, timeout time.Duration, estimator EngagementEstimator) *DevtoAdapter {
	return &DevtoAdapter{
		baseURL:   baseURL,
		client:    newHTTPClient(timeout),
		estimator: estimator,
	}
}

func (a *DevtoAdapter) Name() models.PostSource {
	return models.SourceDevto
}

// Fetch pulls one bounded page of top articles and maps them into posts.
func (a *DevtoAdapter) Fetch(ctx context.Context) ([]models.Post, error) {
	endpoint := a.baseURL + "/api/articles?per_page=30&top=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("devto: upstream returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var articles []devtoArticle
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("devto: decode articles: %w", err)
	}

	posts := make([]models.Post, 0, len(articles))
	for _, art := range articles {
		post := a.mapArticle(&art)
		if !post.HasContent() {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *DevtoAdapter) mapArticle(art *devtoArticle) models.Post {
	content := art.BodyHTML
	if content == "" {
		content = art.BodyMarkdown
	}

	cover := art.CoverImage
	if cover == "" {
		cover = devtoCoverFallback
	}

	readTime := art.ReadingTimeMinutes
	if readTime <= 0 {
		length := len(art.Description)
		if length == 0 {
			length = 500
		}
		readTime = readTimeChars(length, 200, 1)
	}

	byline := art.User.Name
	if byline == "" {
		byline = "Dev.to Publisher"
	}
	author := SourceAuthor(byline)

	tags := make([]models.Tag, 0, len(art.TagList))
	for _, t := range art.TagList {
		tags = append(tags, models.NewTag(t))
	}
	if len(tags) == 0 {
		tags = []models.Tag{models.NewTag("devto")}
	}

	eng := a.estimator.Estimate(0.2)
	return models.Post{
		ID:              fmt.Sprintf("devto-%d", art.ID),
		AuthorID:        "source-devto",
		Author:          author,
		Title:           art.Title,
		Subtitle:        art.Description,
		Content:         content,
		CoverImageURL:   cover,
		CoverAspect:     models.Ratio16x9,
		Status:          models.StatusPublished,
		ReadTimeMinutes: readTime,
		EngagementScore: 100,
		LikeCount:       eng.LikeCount,
		CommentCount:    eng.CommentCount,
		ShareCount:      0,
		IsTrending:      eng.IsTrending,
		Tags:            tags,
		CreatedAt:       art.PublishedAt,
		PublishedAt:     art.PublishedAt,
		SourceURL:       art.URL,
		Source:          models.SourceDevto,
	}
}
