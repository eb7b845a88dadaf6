// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"strings"
	"time"
)

// ErrPostNotFound is returned by store lookups when no post matches.
// Absence is a normal outcome, not a failure; handlers map it to 404.
var ErrPostNotFound = errors.New("post not found")

// PostStatus is the moderation lifecycle state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusPublished PostStatus = "PUBLISHED"
	StatusRemoved   PostStatus = "REMOVED"
)

// PostSource identifies the external provider an ingested post came from.
// Native posts carry an empty source.
type PostSource string

const (
	SourceDevto    PostSource = "devto"
	SourceHashnode PostSource = "hashnode"
	SourceGuardian PostSource = "guardian"
	SourceWikinews PostSource = "wikinews"
)

// CoverAspectRatio is one of the six fixed cover ratios the feed layout supports.
type CoverAspectRatio string

const (
	Ratio3x4  CoverAspectRatio = "3:4"
	Ratio2x3  CoverAspectRatio = "2:3"
	Ratio9x16 CoverAspectRatio = "9:16"
	Ratio4x3  CoverAspectRatio = "4:3"
	Ratio16x9 CoverAspectRatio = "16:9"
	Ratio1x1  CoverAspectRatio = "1:1"
)

// ValidAspectRatio reports whether r is one of the supported cover ratios.
func ValidAspectRatio(r CoverAspectRatio) bool {
	switch r {
	case Ratio3x4, Ratio2x3, Ratio9x16, Ratio4x3, Ratio16x9, Ratio1x1:
		return true
	}
	return false
}

// User is the author subset attached to posts. For ingested content it is a
// synthesized pseudo-account keyed by the source byline, never a registered user.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Role           string    `json:"role"`
	IsVerified     bool      `json:"is_verified"`
	IsSuspended    bool      `json:"is_suspended"`
	CreatedAt      time.Time `json:"created_at"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	TotalLikes     int       `json:"total_likes"`
	PostCount      int       `json:"post_count"`
}

// Tag is a denormalized content tag. Name is the unique key (lowercase, trimmed).
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

// NewTag builds a tag from a raw name, normalizing it to the lowercase
// trimmed form used as the tag's identity.
func NewTag(name string) Tag {
	clean := strings.ToLower(strings.TrimSpace(name))
	return Tag{ID: clean, Name: clean, PostCount: 1}
}

// Post is the unified content entity shared by the feed, search, detail pages
// and the ingestion pipeline. Ingested posts are namespaced by source
// ("<source>-<native id>") and always carry a SourceURL; native posts carry
// neither Source nor SourceURL.
type Post struct {
	ID              string           `json:"id"`
	AuthorID        string           `json:"author_id"`
	Author          User             `json:"author"`
	Title           string           `json:"title"`
	Subtitle        string           `json:"subtitle,omitempty"`
	Content         string           `json:"content,omitempty"`
	CoverImageURL   string           `json:"cover_image_url"`
	CoverAspect     CoverAspectRatio `json:"cover_aspect_ratio"`
	Status          PostStatus       `json:"status"`
	ReadTimeMinutes int              `json:"read_time_minutes"`
	EngagementScore int              `json:"engagement_score"`
	LikeCount       int              `json:"like_count"`
	CommentCount    int              `json:"comment_count"`
	ShareCount      int              `json:"share_count"`
	IsTrending      bool             `json:"is_trending"`
	IsLiked         bool             `json:"is_liked,omitempty"`
	Tags            []Tag            `json:"tags"`
	CreatedAt       string           `json:"created_at"`
	PublishedAt     string           `json:"published_at,omitempty"`
	SourceURL       string           `json:"source_url,omitempty"`
	Source          PostSource       `json:"source,omitempty"`
}

// Ingested reports whether the post came from an external provider.
func (p *Post) Ingested() bool {
	return p.Source != ""
}

// HasContent reports whether the post body has any renderable content.
func (p *Post) HasContent() bool {
	return strings.TrimSpace(p.Content) != ""
}

// HasTag reports whether the post carries a tag with the given normalized name.
func (p *Post) HasTag(name string) bool {
	clean := strings.ToLower(strings.TrimSpace(name))
	for _, t := range p.Tags {
		if t.Name == clean {
			return true
		}
	}
	return false
}
