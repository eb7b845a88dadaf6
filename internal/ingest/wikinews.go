package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"inkboard/internal/middleware"
	"inkboard/internal/models"
	"inkboard/internal/observability"
)

const (
	wikinewsCoverFallback = "https://images.unsplash.com/photo-1523240795612-9a054b0db644?w=600&q=80"

	// The listing returns up to 25 new mainspace pages; only the first 12
	// get their article HTML resolved, to keep the secondary fan-out bounded.
	wikinewsListLimit  = 25
	wikinewsFetchLimit = 12
)

var imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]+src="([^"]+)"`)

type wikinewsChange struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	PageID    int    `json:"pageid"`
	User      string `json:"user"`
}

type wikinewsListing struct {
	Query struct {
		RecentChanges []wikinewsChange `json:"recentchanges"`
	} `json:"query"`
}

// WikinewsAdapter ingests newly created articles from the wiki-style news API.
// It is the only two-phase adapter: a listing call followed by a concurrent
// per-article HTML fetch with per-item failure isolation.
type WikinewsAdapter struct {
	apiURL    string
	baseURL   string
	client    *http.Client
	estimator EngagementEstimator
}

// NewWikinewsAdapter creates a WikinewsAdapter. apiURL is the action API
// endpoint; baseURL hosts the REST HTML and canonical wiki paths.
func NewWikinewsAdapter(apiURL, baseURL string, timeout time.Duration, estimator EngagementEstimator) *WikinewsAdapter {
	return &WikinewsAdapter{
		apiURL:    apiURL,
		baseURL:   baseURL,
		client:    newHTTPClient(timeout),
		estimator: estimator,
	}
}

func (a *WikinewsAdapter) Name() models.PostSource {
	return models.SourceWikinews
}

func (a *WikinewsAdapter) Fetch(ctx context.Context) ([]models.Post, error) {
	changes, err := a.listRecent(ctx)
	if err != nil {
		return nil, err
	}

	// Drop non-article pages (titles with a namespace prefix).
	articles := make([]wikinewsChange, 0, len(changes))
	for _, c := range changes {
		if c.Title == "" || strings.Contains(c.Title, ":") {
			continue
		}
		articles = append(articles, c)
	}
	if len(articles) > wikinewsFetchLimit {
		articles = articles[:wikinewsFetchLimit]
	}

	// Secondary fan-out: resolve article HTML concurrently. A failed item is
	// dropped, not retried, and never fails the batch.
	htmls := make([]string, len(articles))
	var wg sync.WaitGroup
	for i := range articles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			html, err := a.fetchArticleHTML(ctx, articles[i].Title)
			if err != nil {
				observability.AdapterItemsDropped.WithLabelValues(string(a.Name()), "secondary_fetch").Inc()
				middleware.Logger.WarnContext(ctx, "wikinews article fetch failed",
					"title", articles[i].Title, "error", err.Error())
				return
			}
			htmls[i] = html
		}(i)
	}
	wg.Wait()

	posts := make([]models.Post, 0, len(articles))
	for i := range articles {
		if strings.TrimSpace(htmls[i]) == "" {
			continue
		}
		posts = append(posts, a.mapArticle(&articles[i], htmls[i]))
	}
	return posts, nil
}

func (a *WikinewsAdapter) listRecent(ctx context.Context) ([]wikinewsChange, error) {
	params := url.Values{
		"action":      {"query"},
		"list":        {"recentchanges"},
		"rcnamespace": {"0"},
		"rctype":      {"new"},
		"rclimit":     {fmt.Sprint(wikinewsListLimit)},
		"rcprop":      {"title|timestamp|ids|user"},
		"rcshow":      {"!bot"},
		"format":      {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("wikinews: listing returned %d", resp.StatusCode)
	}

	var listing wikinewsListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("wikinews: decode listing: %w", err)
	}
	return listing.Query.RecentChanges, nil
}

func (a *WikinewsAdapter) fetchArticleHTML(ctx context.Context, title string) (string, error) {
	slug := titleSlug(title)
	endpoint := a.baseURL + "/api/rest_v1/page/html/" + url.PathEscape(slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("wikinews: article returned %d", resp.StatusCode)
	}

	// Article pages can be large; 2MB comfortably covers any real article.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (a *WikinewsAdapter) mapArticle(change *wikinewsChange, html string) models.Post {
	slug := titleSlug(change.Title)

	cover := wikinewsCoverFallback
	if m := imgSrcPattern.FindStringSubmatch(html); m != nil {
		cover = m[1]
	}

	canonicalURL := a.baseURL + "/wiki/" + url.PathEscape(slug)

	byline := "Wikinews"
	if change.User != "" {
		byline = "Wikinews contributor: " + change.User
	}
	author := SourceAuthor(byline)

	id := slug
	if change.PageID != 0 {
		id = fmt.Sprint(change.PageID)
	}

	eng := a.estimator.Estimate(0.15)
	return models.Post{
		ID:              "wikinews-" + id,
		AuthorID:        author.ID,
		Author:          author,
		Title:           change.Title,
		Content:         html,
		CoverImageURL:   cover,
		CoverAspect:     models.Ratio16x9,
		Status:          models.StatusPublished,
		ReadTimeMinutes: readTimeChars(len(html), 4000, 2),
		EngagementScore: 100,
		LikeCount:       eng.LikeCount,
		CommentCount:    eng.CommentCount,
		ShareCount:      0,
		IsTrending:      eng.IsTrending,
		Tags:            []models.Tag{models.NewTag("wikinews")},
		CreatedAt:       change.Timestamp,
		PublishedAt:     change.Timestamp,
		SourceURL:       canonicalURL,
		Source:          models.SourceWikinews,
	}
}

// titleSlug converts a page title into its URL slug (spaces to underscores).
func titleSlug(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}
