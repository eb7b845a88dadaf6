package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"inkboard/internal/models"
)

const guardianCoverFallback = "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=600&q=80"

type guardianResult struct {
	ID                 string `json:"id"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	WebPublicationDate string `json:"webPublicationDate"`
	SectionName        string `json:"sectionName"`
	Fields             struct {
		Headline  string `json:"headline"`
		Body      string `json:"body"`
		Thumbnail string `json:"thumbnail"`
		Byline    string `json:"byline"`
		TrailText string `json:"trailText"`
	} `json:"fields"`
}

type guardianResponse struct {
	Response struct {
		Results []guardianResult `json:"results"`
	} `json:"response"`
}

// GuardianAdapter ingests the newest articles from the Guardian content API.
// Guardian ids are hierarchical paths, which is why the store flattens path
// separators out of ids. Disabled by default; the feed filters the source out
// because its articles link offsite rather than opening a detail page.
type GuardianAdapter struct {
	baseURL   string
	client    *http.Client
	estimator EngagementEstimator
}

// NewGuardianAdapter creates a GuardianAdapter against the given base URL.
func NewGuardianAdapter(baseURL string, timeout time.Duration, estimator EngagementEstimator) *GuardianAdapter {
	return &GuardianAdapter{
		baseURL:   baseURL,
		client:    newHTTPClient(timeout),
		estimator: estimator,
	}
}

func (a *GuardianAdapter) Name() models.PostSource {
	return models.SourceGuardian
}

func (a *GuardianAdapter) Fetch(ctx context.Context) ([]models.Post, error) {
	endpoint := a.baseURL + "/search?show-fields=body,thumbnail,byline,trailText&api-key=test&page-size=30&order-by=newest"
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
		return nil, fmt.Errorf("guardian: upstream returned %d", resp.StatusCode)
	}

	var decoded guardianResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("guardian: decode search: %w", err)
	}

	posts := make([]models.Post, 0, len(decoded.Response.Results))
	for _, res := range decoded.Response.Results {
		post := a.mapResult(&res)
		if !post.HasContent() {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *GuardianAdapter) mapResult(res *guardianResult) models.Post {
	title := res.Fields.Headline
	if title == "" {
		title = res.WebTitle
	}

	cover := res.Fields.Thumbnail
	if cover == "" {
		cover = guardianCoverFallback
	}

	byline := res.Fields.Byline
	if byline == "" {
		byline = "The Guardian Writer"
	}

	length := len(res.Fields.Body)
	if length == 0 {
		length = 1000
	}

	eng := a.estimator.Estimate(0.2)
	return models.Post{
		ID:              "guardian-" + strings.ReplaceAll(res.ID, "/", "-"),
		AuthorID:        "source-guardian",
		Author:          SourceAuthor(byline),
		Title:           title,
		Subtitle:        res.Fields.TrailText,
		Content:         res.Fields.Body,
		CoverImageURL:   cover,
		CoverAspect:     models.Ratio4x3,
		Status:          models.StatusPublished,
		ReadTimeMinutes: readTimeChars(length, 1000, 2),
		EngagementScore: 100,
		LikeCount:       eng.LikeCount,
		CommentCount:    eng.CommentCount,
		ShareCount:      0,
		IsTrending:      eng.IsTrending,
		Tags:            []models.Tag{models.NewTag(res.SectionName)},
		CreatedAt:       res.WebPublicationDate,
		PublishedAt:     res.WebPublicationDate,
		SourceURL:       res.WebURL,
		Source:          models.SourceGuardian,
	}
}
