package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guardianFixture = `{
  "response": {
    "results": [
      {
        "id": "world/2026/aug/05/summit-concludes",
        "webTitle": "Summit concludes",
        "webUrl": "https://www.theguardian.com/world/2026/aug/05/summit-concludes",
        "webPublicationDate": "2026-08-05T12:00:00Z",
        "sectionName": "World",
        "fields": {
          "headline": "Global summit concludes with joint statement",
          "body": "<p>Delegates agreed on a framework.</p>",
          "thumbnail": "https://media.guim.co.uk/summit.jpg",
          "byline": "Erin Park",
          "trailText": "A framework emerges after marathon talks."
        }
      },
      {
        "id": "sport/2026/aug/05/final-score",
        "webTitle": "Final score",
        "webUrl": "https://www.theguardian.com/sport/2026/aug/05/final-score",
        "webPublicationDate": "2026-08-05T14:00:00Z",
        "sectionName": "Sport",
        "fields": {"body": "<p>Short match report.</p>"}
      },
      {
        "id": "culture/2026/aug/05/teaser",
        "webTitle": "Teaser only",
        "webUrl": "https://www.theguardian.com/culture/2026/aug/05/teaser",
        "sectionName": "Culture",
        "fields": {}
      }
    ]
  }
}`

func TestGuardianAdapterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "newest", q.Get("order-by"))
		assert.Equal(t, "30", q.Get("page-size"))
		assert.Contains(t, q.Get("show-fields"), "body")
		_, _ = w.Write([]byte(guardianFixture))
	}))
	defer srv.Close()

	adapter := NewGuardianAdapter(srv.URL, 5*time.Second, fixedEstimator())
	assert.Equal(t, models.SourceGuardian, adapter.Name())

	posts, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	// The bodiless result is excluded.
	require.Len(t, posts, 2)

	full := posts[0]
	assert.Equal(t, "guardian-world-2026-aug-05-summit-concludes", full.ID, "path separators flattened")
	assert.Equal(t, "Global summit concludes with joint statement", full.Title, "headline wins over webTitle")
	assert.Equal(t, "A framework emerges after marathon talks.", full.Subtitle)
	assert.Equal(t, "https://media.guim.co.uk/summit.jpg", full.CoverImageURL)
	assert.Equal(t, models.Ratio4x3, full.CoverAspect)
	assert.Equal(t, "Erin Park", full.Author.DisplayName)
	assert.Equal(t, []models.Tag{models.NewTag("world")}, full.Tags)
	assert.Equal(t, "https://www.theguardian.com/world/2026/aug/05/summit-concludes", full.SourceURL)
	assert.Equal(t, models.SourceGuardian, full.Source)
	assert.Equal(t, 2, full.ReadTimeMinutes)

	sparse := posts[1]
	assert.Equal(t, "Final score", sparse.Title)
	assert.Equal(t, guardianCoverFallback, sparse.CoverImageURL)
	assert.Equal(t, "The Guardian Writer", sparse.Author.DisplayName)
}

func TestGuardianAdapterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	adapter := NewGuardianAdapter(srv.URL, 5*time.Second, fixedEstimator())
	_, err := adapter.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
