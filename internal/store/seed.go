package store

import (
	"fmt"
	"math"
	"strings"
	"time"

	"inkboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// seedRandSource fixes the faker stream so the baseline collection is
// identical across processes. The seed data is the durable store's
// empty-state fallback, so it has to be stable.
const seedRandSource = 1839

var aspectCycle = []models.CoverAspectRatio{
	models.Ratio3x4, models.Ratio4x3, models.Ratio1x1,
	models.Ratio16x9, models.Ratio2x3, models.Ratio9x16,
}

// SeedPosts builds the fixed baseline post collection used when no durable
// store exists yet. All seed posts are native (no source stamp).
func SeedPosts() []models.Post {
	faker := gofakeit.New(seedRandSource)
	authors := seedUsers(faker)

	base := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	posts := make([]models.Post, 0, 12)
	for i := 0; i < 12; i++ {
		author := authors[i%len(authors)]
		content := seedBody(faker)
		created := base.Add(-time.Duration(i) * 27 * time.Hour).Format(time.RFC3339)

		title := strings.TrimSuffix(faker.Sentence(5), ".")
		posts = append(posts, models.Post{
			ID:              fmt.Sprintf("seed-%02d", i+1),
			AuthorID:        author.ID,
			Author:          author,
			Title:           title,
			Subtitle:        faker.Sentence(9),
			Content:         content,
			CoverImageURL:   fmt.Sprintf("https://picsum.photos/seed/inkboard-%02d/800/600", i+1),
			CoverAspect:     aspectCycle[i%len(aspectCycle)],
			Status:          models.StatusPublished,
			ReadTimeMinutes: readTimeWords(content),
			EngagementScore: 40 + 5*i,
			LikeCount:       faker.Number(3, 240),
			CommentCount:    faker.Number(0, 30),
			ShareCount:      faker.Number(0, 12),
			IsTrending:      i < 2,
			Tags: []models.Tag{
				models.NewTag(faker.HackerNoun()),
				models.NewTag(faker.BuzzWord()),
			},
			CreatedAt:   created,
			PublishedAt: created,
		})
	}
	return posts
}

// DemoAuthor is the stand-in account attributed to locally composed posts
// until real session identity is wired through the auth provider.
func DemoAuthor() models.User {
	faker := gofakeit.New(seedRandSource)
	users := seedUsers(faker)
	return users[2]
}

func seedUsers(faker *gofakeit.Faker) []models.User {
	users := make([]models.User, 0, 4)
	for i := 0; i < 4; i++ {
		name := faker.Name()
		username := strings.ToLower(faker.Username())
		users = append(users, models.User{
			ID:             fmt.Sprintf("seed-user-%d", i+1),
			Email:          fmt.Sprintf("%s@inkboard.eu", username),
			Username:       username,
			DisplayName:    name,
			Bio:            faker.Sentence(8),
			AvatarURL:      fmt.Sprintf("https://i.pravatar.cc/150?u=seed-user-%d", i+1),
			Role:           "USER",
			IsVerified:     i == 0,
			IsSuspended:    false,
			CreatedAt:      time.Date(2024, time.November, 12, 0, 0, 0, 0, time.UTC),
			FollowerCount:  faker.Number(10, 900),
			FollowingCount: faker.Number(5, 300),
			TotalLikes:     faker.Number(0, 4000),
			PostCount:      3,
		})
	}
	return users
}

func seedBody(faker *gofakeit.Faker) string {
	var b strings.Builder
	for p := 0; p < 4; p++ {
		b.WriteString("<p>")
		b.WriteString(faker.Paragraph(1, 4, 14, " "))
		b.WriteString("</p>")
	}
	return b.String()
}

// readTimeWords estimates minutes at ~200 words/minute with a floor of 1.
func readTimeWords(html string) int {
	words := len(strings.Fields(stripTags(html)))
	return int(math.Max(1, math.Ceil(float64(words)/200)))
}

func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
