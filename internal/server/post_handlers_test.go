package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodePosts(t *testing.T, resp *http.Response) []models.Post {
	t.Helper()
	var posts []models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	return posts
}

func TestCreatePost(t *testing.T) {
	ta := newTestApp(t, nil, nil)

	resp := doRequest(t, ta.app, jsonRequest(http.MethodPost, "/api/posts", `{
		"title": "My First Post",
		"subtitle": "A subtitle",
		"content": "<p>Hello world, this is the body.</p>",
		"cover_image_url": "https://example.com/cover.jpg",
		"cover_aspect_ratio": "16:9",
		"tags": ["Go", "Testing"]
	}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	post := body.Post
	assert.True(t, strings.HasPrefix(post.ID, "user-"))
	assert.Equal(t, "My First Post", post.Title)
	assert.Equal(t, models.Ratio16x9, post.CoverAspect)
	assert.Equal(t, models.StatusPublished, post.Status)
	assert.Equal(t, 1, post.ReadTimeMinutes)
	assert.Equal(t, []models.Tag{models.NewTag("go"), models.NewTag("testing")}, post.Tags)
	assert.NotEmpty(t, post.CreatedAt)
	assert.Empty(t, post.Source, "authored posts are native")
	assert.NotEmpty(t, post.Author.DisplayName)

	// The post is durably stored and resolvable.
	stored, err := ta.store.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, stored.Title)
}

func TestCreatePostDefaultsAspectRatio(t *testing.T) {
	ta := newTestApp(t, nil, nil)

	resp := doRequest(t, ta.app, jsonRequest(http.MethodPost, "/api/posts", `{
		"title": "T", "content": "<p>c</p>", "cover_image_url": "https://x/c.jpg", "tags": ["a"]
	}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.Ratio4x3, body.Post.CoverAspect)
}

func TestCreatePostValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"content": "c", "cover_image_url": "u", "tags": ["a"]}`},
		{"missing content", `{"title": "t", "cover_image_url": "u", "tags": ["a"]}`},
		{"missing cover", `{"title": "t", "content": "c", "tags": ["a"]}`},
		{"empty tags", `{"title": "t", "content": "c", "cover_image_url": "u", "tags": []}`},
		{"blank tag", `{"title": "t", "content": "c", "cover_image_url": "u", "tags": ["  "]}`},
		{"bad aspect", `{"title": "t", "content": "c", "cover_image_url": "u", "cover_aspect_ratio": "5:7", "tags": ["a"]}`},
		{"malformed json", `{"title": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t, nil, nil)
			resp := doRequest(t, ta.app, jsonRequest(http.MethodPost, "/api/posts", tc.body))
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			// Nothing was stored.
			posts, err := ta.store.GetAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, posts)
		})
	}
}

func TestGetPost(t *testing.T) {
	ta := newTestApp(t, seedN(3), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/seed-02", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var post models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.Equal(t, "seed-02", post.ID)
}

func TestGetPostNotFound(t *testing.T) {
	ta := newTestApp(t, seedN(3), nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/nope", nil))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestSearchPosts(t *testing.T) {
	alpha := feedPost("p-1")
	alpha.Title = "Introduction to Goroutines"
	beta := feedPost("p-2")
	beta.Title = "Cooking pasta"
	beta.Subtitle = "with goroutine sauce"
	gamma := feedPost("p-3")
	gamma.Title = "Unrelated"
	gamma.Tags = []models.Tag{models.NewTag("goroutines")}
	hidden := feedPost("p-4")
	hidden.Title = "Goroutines but removed"
	hidden.Status = models.StatusRemoved

	ta := newTestApp(t, []models.Post{alpha, beta, gamma, hidden}, nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/search?q=GOROUTINE", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	posts := decodePosts(t, resp)
	require.Len(t, posts, 3, "title, subtitle and tag matches; removed excluded")
}

func TestSearchPostsRequiresQuery(t *testing.T) {
	ta := newTestApp(t, nil, nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/search", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/search?q=%20%20", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchPostsPagination(t *testing.T) {
	seed := seedN(10) // titles all share the "title" prefix
	ta := newTestApp(t, seed, nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/search?q=title&limit=3&offset=8", nil))
	posts := decodePosts(t, resp)
	assert.Len(t, posts, 2)

	resp = doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/posts/search?q=title&offset=50", nil))
	posts = decodePosts(t, resp)
	assert.Empty(t, posts)
}

func TestGetTagPosts(t *testing.T) {
	tagged := feedPost("p-1")
	tagged.Tags = []models.Tag{models.NewTag("Databases")}
	other := feedPost("p-2")

	ta := newTestApp(t, []models.Post{tagged, other}, nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/tags/databases/posts", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	posts := decodePosts(t, resp)
	require.Len(t, posts, 1)
	assert.Equal(t, "p-1", posts[0].ID)
}

func TestGetSourcePosts(t *testing.T) {
	devto := feedPost("devto-1")
	devto.Source = models.SourceDevto
	devto.SourceURL = "https://dev.to/a/1"
	native := feedPost("native-1")

	ta := newTestApp(t, []models.Post{devto, native}, nil)

	resp := doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/sources/DEVTO/posts", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	posts := decodePosts(t, resp)
	require.Len(t, posts, 1)
	assert.Equal(t, "devto-1", posts[0].ID)

	resp = doRequest(t, ta.app, httptest.NewRequest(http.MethodGet, "/api/sources/hashnode/posts", nil))
	posts = decodePosts(t, resp)
	assert.Empty(t, posts)
}
