package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"inkboard/internal/models"
)

const hashnodeCoverFallback = "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=600&q=80"

// hashnodeFeedQuery requests the featured feed from the GraphQL blogging
// platform. One request, bounded page size, no pagination cursor.
const hashnodeFeedQuery = `
query {
  feed(first: 30, filter: { type: FEATURED }) {
    edges {
      node {
        id
        title
        brief
        content { html }
        coverImage { url }
        author { name username profilePicture }
        tags { name }
        url
        readTimeInMinutes
        publishedAt
      }
    }
  }
}`

type hashnodeNode struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Brief   string `json:"brief"`
	Content struct {
		HTML string `json:"html"`
	} `json:"content"`
	CoverImage struct {
		URL string `json:"url"`
	} `json:"coverImage"`
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
	Tags []struct {
		Name string `json:"name"`
	} `json:"tags"`
	URL               string `json:"url"`
	ReadTimeInMinutes int    `json:"readTimeInMinutes"`
	PublishedAt       string `json:"publishedAt"`
}

type hashnodeResponse struct {
	Data struct {
		Feed struct {
			Edges []struct {
				Node hashnodeNode `json:"node"`
			} `json:"edges"`
		} `json:"feed"`
	} `json:"data"`
}

// HashnodeAdapter ingests the featured feed of the Hashnode GraphQL platform.
type HashnodeAdapter struct {
	endpoint  string
	client    *http.Client
	estimator EngagementEstimator
}

// NewHashnodeAdapter creates a HashnodeAdapter against the given GraphQL endpoint.
func NewHashnodeAdapter(endpoint string, timeout time.Duration, estimator EngagementEstimator) *HashnodeAdapter {
	return &HashnodeAdapter{
		endpoint:  endpoint,
		client:    newHTTPClient(timeout),
		estimator: estimator,
	}
}

func (a *HashnodeAdapter) Name() models.PostSource {
	return models.SourceHashnode
}

func (a *HashnodeAdapter) Fetch(ctx context.Context) ([]models.Post, error) {
	payload, err := json.Marshal(map[string]string{"query": hashnodeFeedQuery})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("hashnode: upstream returned %d", resp.StatusCode)
	}

	var decoded hashnodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("hashnode: decode feed: %w", err)
	}

	posts := make([]models.Post, 0, len(decoded.Data.Feed.Edges))
	for _, edge := range decoded.Data.Feed.Edges {
		post := a.mapNode(&edge.Node)
		if !post.HasContent() {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (a *HashnodeAdapter) mapNode(node *hashnodeNode) models.Post {
	id := node.ID
	if id == "" {
		// No native id: fall back to a short random slug, the same
		// shape the upstream ids take.
		id = randomSlug(9)
	}

	cover := node.CoverImage.URL
	if cover == "" {
		cover = hashnodeCoverFallback
	}

	readTime := node.ReadTimeInMinutes
	if readTime <= 0 {
		readTime = 5
	}

	byline := node.Author.Name
	if byline == "" {
		byline = "Hashnode Publisher"
	}

	tags := make([]models.Tag, 0, len(node.Tags))
	for _, t := range node.Tags {
		tags = append(tags, models.NewTag(t.Name))
	}
	if len(tags) == 0 {
		tags = []models.Tag{models.NewTag("hashnode")}
	}

	eng := a.estimator.Estimate(0.2)
	return models.Post{
		ID:              "hashnode-" + id,
		AuthorID:        "source-hashnode",
		Author:          SourceAuthor(byline),
		Title:           node.Title,
		Subtitle:        node.Brief,
		Content:         node.Content.HTML,
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
		CreatedAt:       node.PublishedAt,
		PublishedAt:     node.PublishedAt,
		SourceURL:       node.URL,
		Source:          models.SourceHashnode,
	}
}

const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSlug(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(slugAlphabet[rand.Intn(len(slugAlphabet))])
	}
	return b.String()
}
