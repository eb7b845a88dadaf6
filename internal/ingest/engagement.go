package ingest

import (
	"math/rand"
	"sync"
)

// Engagement is the placeholder engagement data stamped onto ingested posts.
// External providers expose no like/comment data, so these numbers stand in
// for a real engagement pipeline.
type Engagement struct {
	LikeCount    int
	CommentCount int
	IsTrending   bool
}

// EngagementEstimator produces engagement placeholders for an ingested post.
// trendingOdds is the probability the post is flagged trending, which varies
// per source. Identity and dedup fields never depend on the estimator, so a
// nondeterministic implementation is safe in production while tests inject a
// fixed one.
type EngagementEstimator interface {
	Estimate(trendingOdds float64) Engagement
}

// RandomEstimator seeds like and comment counts uniformly, matching the
// catalog's demo scale (0-499 likes, 0-49 comments).
type RandomEstimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomEstimator creates a RandomEstimator with the given seed source.
func NewRandomEstimator(seed int64) *RandomEstimator {
	return &RandomEstimator{rng: rand.New(rand.NewSource(seed))}
}

func (e *RandomEstimator) Estimate(trendingOdds float64) Engagement {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Engagement{
		LikeCount:    e.rng.Intn(500),
		CommentCount: e.rng.Intn(50),
		IsTrending:   e.rng.Float64() < trendingOdds,
	}
}

// FixedEstimator returns the same engagement for every post. Used in tests so
// mapped posts are fully deterministic.
type FixedEstimator struct {
	Value Engagement
}

func (e FixedEstimator) Estimate(float64) Engagement {
	return e.Value
}
