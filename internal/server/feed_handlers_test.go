package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFeed(t *testing.T, resp *http.Response) feedResponse {
	t.Helper()
	var body feedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetFeedFirstPage(t *testing.T) {
	ta := newTestApp(t, seedN(10), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeFeed(t, resp)
	require.Len(t, body.Posts, 4, "page size from config")
	assert.Equal(t, "seed-01", body.Posts[0].ID)
	assert.True(t, body.HasMore)
}

func TestGetFeedSecondPage(t *testing.T) {
	ta := newTestApp(t, seedN(10), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed?page=2", nil))
	body := decodeFeed(t, resp)
	require.Len(t, body.Posts, 4)
	assert.Equal(t, "seed-05", body.Posts[0].ID)
	assert.True(t, body.HasMore)
}

func TestGetFeedPartialLastPage(t *testing.T) {
	ta := newTestApp(t, seedN(10), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed?page=3", nil))
	body := decodeFeed(t, resp)
	require.Len(t, body.Posts, 2)
	assert.True(t, body.HasMore, "hasMore stays true even on a short page")
}

func TestGetFeedCyclesPastCatalogEnd(t *testing.T) {
	ta := newTestApp(t, seedN(6), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed?page=5", nil))
	body := decodeFeed(t, resp)
	require.Len(t, body.Posts, 4, "first page re-served")
	assert.Equal(t, "seed-01-cycle-5", body.Posts[0].ID)
	assert.Equal(t, "seed-02-cycle-5", body.Posts[1].ID)
	assert.True(t, body.HasMore)
}

func TestGetFeedCycleIDsResolveOnDetailPage(t *testing.T) {
	ta := newTestApp(t, seedN(2), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/seed-01-cycle-7", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var post models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.Equal(t, "seed-01", post.ID)
}

func TestGetFeedInvalidPageDefaultsToFirst(t *testing.T) {
	ta := newTestApp(t, seedN(6), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed?page=-3", nil))
	body := decodeFeed(t, resp)
	require.NotEmpty(t, body.Posts)
	assert.Equal(t, "seed-01", body.Posts[0].ID)
}

func TestGetFeedFiltersIneligiblePosts(t *testing.T) {
	removed := feedPost("removed-1")
	removed.Status = models.StatusRemoved

	guardian := feedPost("guardian-1")
	guardian.Source = models.SourceGuardian

	pathID := feedPost("world/2026/story")

	empty := feedPost("empty-1")
	empty.Content = "   "

	ok := feedPost("ok-1")

	ta := newTestApp(t, []models.Post{removed, guardian, pathID, empty, ok}, nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	body := decodeFeed(t, resp)
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "ok-1", body.Posts[0].ID)
}

func TestGetFeedEmptyCatalog(t *testing.T) {
	ta := newTestApp(t, nil, nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed?page=3", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeFeed(t, resp)
	assert.Empty(t, body.Posts)
	assert.True(t, body.HasMore)
}

func TestGetFeedWarmUpRunsOnce(t *testing.T) {
	done := make(chan struct{}, 2)
	ingestor := &ingestorStub{ingestAllFn: func(context.Context) (int, error) {
		done <- struct{}{}
		return 0, nil
	}}

	ta := newTestApp(t, seedN(2), ingestor)
	ta.server.warmedUp.Store(false)

	doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed", nil))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("warm-up ingestion never ran")
	}

	select {
	case <-done:
		t.Fatal("warm-up ingestion ran more than once")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestGetFeedWarmUpFailureDoesNotAffectResponse(t *testing.T) {
	ingestor := &ingestorStub{ingestAllFn: func(context.Context) (int, error) {
		return 0, context.DeadlineExceeded
	}}

	ta := newTestApp(t, seedN(2), ingestor)
	ta.server.warmedUp.Store(false)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
