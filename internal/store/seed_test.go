package store

import (
	"testing"

	"inkboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPostsAreStable(t *testing.T) {
	a := SeedPosts()
	b := SeedPosts()
	assert.Equal(t, a, b)
}

func TestSeedPostsShape(t *testing.T) {
	posts := SeedPosts()
	require.Len(t, posts, 12)

	seen := make(map[string]bool)
	for _, p := range posts {
		assert.False(t, seen[p.ID], "duplicate seed id %s", p.ID)
		seen[p.ID] = true

		assert.Empty(t, p.Source, "seed posts are native")
		assert.Empty(t, p.SourceURL)
		assert.Equal(t, models.StatusPublished, p.Status)
		assert.True(t, models.ValidAspectRatio(p.CoverAspect))
		assert.True(t, p.HasContent())
		assert.GreaterOrEqual(t, p.ReadTimeMinutes, 1)
		assert.NotEmpty(t, p.Tags)
		assert.NotEmpty(t, p.Author.DisplayName)
	}
}

func TestDemoAuthorIsStable(t *testing.T) {
	a := DemoAuthor()
	b := DemoAuthor()
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.ID)
}
