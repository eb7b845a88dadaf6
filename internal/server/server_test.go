package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkboard/internal/config"
	"inkboard/internal/models"
	"inkboard/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "test-admin-token"

// ingestorStub is a stub for Ingestor.
type ingestorStub struct {
	ingestAllFn func(context.Context) (int, error)
	calls       int
}

func (s *ingestorStub) IngestAll(ctx context.Context) (int, error) {
	s.calls++
	if s.ingestAllFn != nil {
		return s.ingestAllFn(ctx)
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:         "8480",
		Env:          "test",
		DataDir:      "unused",
		AdminToken:   testAdminToken,
		FeedPageSize: 4,
	}
}

type testApp struct {
	app    *fiber.App
	server *Server
	store  *store.FileStore
}

// newTestApp wires a Server over a temp-dir file store with the given seed
// and an inert ingestor, routes registered but no middleware stack.
func newTestApp(t *testing.T, seed []models.Post, ingestor Ingestor) *testApp {
	t.Helper()

	fs := store.NewFileStore(t.TempDir(), seed)
	srv := NewServerWithDeps(testConfig(), fs, ingestor, nil)
	// Warm-up is exercised explicitly where a test wants it.
	srv.warmedUp.Store(true)

	app := fiber.New()
	srv.SetupRoutes(app)
	return &testApp{app: app, server: srv, store: fs}
}

func feedPost(id string) models.Post {
	return models.Post{
		ID:            id,
		Title:         "title " + id,
		Content:       "<p>body</p>",
		CoverImageURL: "https://example.com/" + id + ".jpg",
		CoverAspect:   models.Ratio4x3,
		Status:        models.StatusPublished,
		Tags:          []models.Tag{models.NewTag("go")},
	}
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLivenessCheck(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadinessCheck(t *testing.T) {
	ta := newTestApp(t, []models.Post{feedPost("seed-1")}, nil)
	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func seedN(n int) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, feedPost(fmt.Sprintf("seed-%02d", i+1)))
	}
	return posts
}
