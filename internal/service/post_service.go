package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-blog-admin/internal/data"
	"go-blog-admin/internal/logger"
)

// PostStore defines the storage operations the post service needs.
type PostStore interface {
	CreatePost(ctx context.Context, post *data.Post, categoryIDs []int64) (int64, error)
	UpdatePost(ctx context.Context, post *data.Post, categoryIDs []int64) error
	DeletePost(ctx context.Context, id int64) error
	GetPostView(ctx context.Context, id int64) (*data.PostView, error)
	ListPostViews(ctx context.Context) ([]*data.PostView, error)
}

// Cache is a key/value store with expiry and explicit invalidation.
// Invalidations advance the generation; SetIfGeneration refuses values
// loaded under an older one.
type Cache interface {
	Get(key string) ([]byte, error)
	Generation() uint64
	SetIfGeneration(key string, value []byte, ttl time.Duration, gen uint64) (bool, error)
	Delete(keys ...string) error
	DeletePrefix(prefix string) error
}

// PostServicer defines the interface for interacting with posts.
type PostServicer interface {
	ListPosts(ctx context.Context) ([]*data.PostView, error)
	GetPost(ctx context.Context, id int64) (*data.PostView, error)
	CreatePost(ctx context.Context, in PostInput) (int64, error)
	UpdatePost(ctx context.Context, id int64, in PostInput) (*data.PostView, error)
	DeletePost(ctx context.Context, id int64) error
}

const (
	postListKey     = "posts:list"
	postKeyPrefix   = "posts:"
	categoryListKey = "categories:list"
)

func postKey(id int64) string {
	return fmt.Sprintf("%s%d", postKeyPrefix, id)
}

// Options tunes the services.
type Options struct {
	// WriteTimeout bounds each write; zero means no extra deadline.
	WriteTimeout time.Duration
	// CacheTTL is how long projections stay cached.
	CacheTTL time.Duration
}

// PostService provides business logic for managing posts.
type PostService struct {
	store    PostStore
	cache    Cache
	renderer *contentRenderer
	opts     Options
	log      logger.Logger
}

// NewPostService creates a new PostService.
func NewPostService(store PostStore, cache Cache, opts Options, log logger.Logger) *PostService {
	return &PostService{
		store:    store,
		cache:    cache,
		renderer: newContentRenderer(),
		opts:     opts,
		log:      log,
	}
}

// ListPosts returns every post, newest first, with categories and rendered content.
func (s *PostService) ListPosts(ctx context.Context) ([]*data.PostView, error) {
	gen := s.cache.Generation()
	var views []*data.PostView
	if readCache(s.cache, s.log, postListKey, &views) {
		return views, nil
	}

	views, err := s.store.ListPostViews(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		if err := s.render(v); err != nil {
			return nil, err
		}
	}
	writeCache(s.cache, s.log, postListKey, views, s.opts.CacheTTL, gen)
	return views, nil
}

// GetPost returns a single post with categories and rendered content.
func (s *PostService) GetPost(ctx context.Context, id int64) (*data.PostView, error) {
	gen := s.cache.Generation()
	var view *data.PostView
	if readCache(s.cache, s.log, postKey(id), &view) && view != nil {
		return view, nil
	}

	view, err := s.store.GetPostView(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.render(view); err != nil {
		return nil, err
	}
	writeCache(s.cache, s.log, postKey(id), view, s.opts.CacheTTL, gen)
	return view, nil
}

// CreatePost validates the input, stores the post and attaches its categories.
func (s *PostService) CreatePost(ctx context.Context, in PostInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	post := &data.Post{
		Title:              in.Title,
		Content:            in.Content,
		ThumbnailReference: in.ThumbnailReference,
	}
	id, err := s.store.CreatePost(ctx, post, in.Categories)
	if err != nil {
		return 0, err
	}
	s.log.With(map[string]interface{}{"post_id": id, "categories": len(in.Categories)}).Debug("Post categories synced")
	invalidate(s.cache, s.log, postListKey)
	return id, nil
}

// UpdatePost replaces a post's scalar fields and its whole category set.
func (s *PostService) UpdatePost(ctx context.Context, id int64, in PostInput) (*data.PostView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	wctx, cancel := s.writeContext(ctx)
	defer cancel()

	post := &data.Post{
		ID:                 id,
		Title:              in.Title,
		Content:            in.Content,
		ThumbnailReference: in.ThumbnailReference,
	}
	if err := s.store.UpdatePost(wctx, post, in.Categories); err != nil {
		return nil, err
	}
	s.log.With(map[string]interface{}{"post_id": id, "categories": len(in.Categories)}).Debug("Post categories synced")
	invalidate(s.cache, s.log, postListKey, postKey(id))

	view, err := s.store.GetPostView(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.render(view); err != nil {
		return nil, err
	}
	return view, nil
}

// DeletePost removes a post together with its category associations.
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	invalidate(s.cache, s.log, postListKey, postKey(id))
	return nil
}

func (s *PostService) render(view *data.PostView) error {
	html, err := s.renderer.HTML(view.Content)
	if err != nil {
		return fmt.Errorf("failed to render post %d: %w", view.ID, err)
	}
	view.ContentHTML = html
	return nil
}

func (s *PostService) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withWriteTimeout(ctx, s.opts.WriteTimeout)
}

func withWriteTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// readCache decodes a cached value into dest. Cache failures are logged and
// treated as misses.
func readCache(c Cache, log logger.Logger, key string, dest interface{}) bool {
	raw, err := c.Get(key)
	if err != nil {
		log.Error(err, fmt.Sprintf("Cache read failed for %s", key))
		return false
	}
	if raw == nil {
		log.Debug("Cache miss for " + key)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Error(err, fmt.Sprintf("Discarding undecodable cache entry %s", key))
		invalidate(c, log, key)
		return false
	}
	return true
}

// writeCache stores value unless the cache was invalidated after gen was
// taken, in which case value may predate the invalidating write.
func writeCache(c Cache, log logger.Logger, key string, value interface{}, ttl time.Duration, gen uint64) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Error(err, fmt.Sprintf("Failed to encode cache entry %s", key))
		return
	}
	stored, err := c.SetIfGeneration(key, raw, ttl, gen)
	if err != nil {
		log.Error(err, fmt.Sprintf("Cache write failed for %s", key))
		return
	}
	if !stored {
		log.Debug("Skipped cache write for " + key + " after concurrent invalidation")
	}
}

func invalidate(c Cache, log logger.Logger, keys ...string) {
	if err := c.Delete(keys...); err != nil {
		log.Error(err, fmt.Sprintf("Cache invalidation failed for %v", keys))
	}
}
