// Package store implements the durable post collection shared by the feed,
// search, detail pages and the ingestion pipeline.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"inkboard/internal/cache"
	"inkboard/internal/middleware"
	"inkboard/internal/models"
	"inkboard/internal/observability"
)

// postsFileName is the single structured file holding the full post collection.
const postsFileName = "posts.json"

// CycleMarker is the synthetic id suffix marker used by the feed to loop a
// short catalog endlessly ("<id>-cycle-<page>").
const CycleMarker = "-cycle-"

// PostStore is the single source of truth for posts.
type PostStore interface {
	// GetAll returns every post currently known. Reads never mutate state.
	GetAll(ctx context.Context) ([]models.Post, error)
	// UpsertMany inserts candidates not already present (by source URL or
	// normalized id) at the front of the collection and returns the number
	// actually inserted.
	UpsertMany(ctx context.Context, posts []models.Post) (int, error)
	// FindByID resolves a post id, tolerating cycle suffixes and
	// path-separator variants. Returns models.ErrPostNotFound on a miss.
	FindByID(ctx context.Context, id string) (*models.Post, error)
	// UpdateStatus transitions a post's moderation status. Posts are never
	// physically deleted, only marked REMOVED.
	UpdateStatus(ctx context.Context, id string, status models.PostStatus) (*models.Post, error)
}

// NormalizeID flattens hierarchical external identifiers into the store's flat
// identity space: path separators become hyphens.
func NormalizeID(id string) string {
	return strings.ReplaceAll(id, "/", "-")
}

// StripCycleSuffix removes a feed cycling suffix ("x-cycle-3" -> "x").
func StripCycleSuffix(id string) string {
	if idx := strings.Index(id, CycleMarker); idx != -1 {
		return id[:idx]
	}
	return id
}

// FileStore is a file-backed PostStore. The durable collection lives in a
// single JSON file; when the file is absent the store serves a fixed seed
// collection instead. Writers are serialized so the duplicate check and the
// durable write form one logical step.
type FileStore struct {
	path string
	seed []models.Post

	mu sync.Mutex // serializes UpsertMany read-modify-write cycles
}

var _ PostStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dataDir with the given seed
// collection as the empty-state fallback.
func NewFileStore(dataDir string, seed []models.Post) *FileStore {
	return &FileStore{
		path: filepath.Join(dataDir, postsFileName),
		seed: seed,
	}
}

// GetAll returns all posts, trying the Redis collection cache first, then the
// durable file, then the seed collection.
func (s *FileStore) GetAll(ctx context.Context) ([]models.Post, error) {
	if posts, ok := cache.GetPostCollection(ctx); ok {
		return posts, nil
	}

	posts, ok := s.readCollection(ctx)
	if !ok {
		posts = s.seedCopy()
	}
	cache.SetPostCollection(ctx, posts)
	return posts, nil
}

// UpsertMany implements the dedup-and-prepend contract. Candidates are skipped
// when any existing post matches their non-empty source URL or their
// normalized id; survivors are inserted at the front, so the most recently
// upserted batch is frontmost in any raw listing.
func (s *FileStore) UpsertMany(ctx context.Context, posts []models.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.readCollection(ctx)
	if !ok {
		existing = s.seedCopy()
	}

	added := 0
	for _, post := range posts {
		candidate := post
		candidate.ID = NormalizeID(candidate.ID)

		if collectionContains(existing, &candidate) {
			continue
		}
		existing = append([]models.Post{candidate}, existing...)
		added++
		observability.PostsIngested.WithLabelValues(sourceLabel(&candidate)).Inc()
	}

	if err := s.writeCollection(existing); err != nil {
		return 0, err
	}
	cache.InvalidatePostCollection(ctx)
	return added, nil
}

// FindByID strips any cycle suffix, normalizes the id, and scans the
// collection applying the same normalization to stored ids.
func (s *FileStore) FindByID(ctx context.Context, id string) (*models.Post, error) {
	normalized := NormalizeID(StripCycleSuffix(id))

	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if NormalizeID(all[i].ID) == normalized {
			post := all[i]
			return &post, nil
		}
	}
	return nil, models.ErrPostNotFound
}

// UpdateStatus rewrites a single post's status under the writer lock, using
// the same id resolution as FindByID.
func (s *FileStore) UpdateStatus(ctx context.Context, id string, status models.PostStatus) (*models.Post, error) {
	normalized := NormalizeID(StripCycleSuffix(id))

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.readCollection(ctx)
	if !ok {
		existing = s.seedCopy()
	}

	for i := range existing {
		if NormalizeID(existing[i].ID) != normalized {
			continue
		}
		existing[i].Status = status
		if err := s.writeCollection(existing); err != nil {
			return nil, err
		}
		cache.InvalidatePostCollection(ctx)
		post := existing[i]
		return &post, nil
	}
	return nil, models.ErrPostNotFound
}

// collectionContains reports whether any existing post matches the candidate
// by non-empty source URL or by normalized id. The two keys are checked
// against every record, so they may match different existing posts.
func collectionContains(existing []models.Post, candidate *models.Post) bool {
	for i := range existing {
		if candidate.SourceURL != "" && existing[i].SourceURL == candidate.SourceURL {
			return true
		}
		if NormalizeID(existing[i].ID) == candidate.ID {
			return true
		}
	}
	return false
}

func sourceLabel(p *models.Post) string {
	if p.Source == "" {
		return "native"
	}
	return string(p.Source)
}

func (s *FileStore) seedCopy() []models.Post {
	out := make([]models.Post, len(s.seed))
	copy(out, s.seed)
	return out
}

// readCollection loads the durable file. Absence or a malformed payload is not
// an error; it signals "use seed data".
func (s *FileStore) readCollection(ctx context.Context) ([]models.Post, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			middleware.Logger.WarnContext(ctx, "post collection unreadable",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var posts []models.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		middleware.Logger.WarnContext(ctx, "post collection corrupt, falling back to seed",
			slog.String("path", s.path), slog.String("error", err.Error()))
		return nil, false
	}
	if len(posts) == 0 {
		return nil, false
	}
	return posts, true
}

// writeCollection persists the full collection with write-then-rename so a
// concurrent reader never observes a partially written file.
func (s *FileStore) writeCollection(posts []models.Post) error {
	start := time.Now()
	defer func() {
		observability.StoreWriteLatency.Observe(time.Since(start).Seconds())
	}()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "posts-*.json.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(posts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
