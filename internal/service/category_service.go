package service

import (
	"context"
	"fmt"

	"go-blog-admin/internal/data"
	"go-blog-admin/internal/logger"
)

// CategoryStore defines the storage operations the category service needs.
type CategoryStore interface {
	CreateCategory(ctx context.Context, name string) (*data.Category, error)
	GetCategory(ctx context.Context, id int64) (*data.Category, error)
	ListCategories(ctx context.Context) ([]*data.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) (*data.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryServicer defines the interface for interacting with categories.
type CategoryServicer interface {
	ListCategories(ctx context.Context) ([]*data.Category, error)
	GetCategory(ctx context.Context, id int64) (*data.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*data.Category, error)
	RenameCategory(ctx context.Context, id int64, in CategoryInput) (*data.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryService provides business logic for managing categories.
type CategoryService struct {
	store CategoryStore
	cache Cache
	opts  Options
	log   logger.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store CategoryStore, cache Cache, opts Options, log logger.Logger) *CategoryService {
	return &CategoryService{store: store, cache: cache, opts: opts, log: log}
}

// ListCategories returns every category, newest first.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*data.Category, error) {
	gen := s.cache.Generation()
	var categories []*data.Category
	if readCache(s.cache, s.log, categoryListKey, &categories) {
		return categories, nil
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	writeCache(s.cache, s.log, categoryListKey, categories, s.opts.CacheTTL, gen)
	return categories, nil
}

// GetCategory returns a single category.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (*data.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// CreateCategory validates and stores a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*data.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := withWriteTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	category, err := s.store.CreateCategory(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	invalidate(s.cache, s.log, categoryListKey)
	return category, nil
}

// RenameCategory changes a category's name. Post views embed category names,
// so every cached post is dropped as well.
func (s *CategoryService) RenameCategory(ctx context.Context, id int64, in CategoryInput) (*data.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := withWriteTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	category, err := s.store.RenameCategory(ctx, id, in.Name)
	if err != nil {
		return nil, err
	}
	s.invalidateAll()
	return category, nil
}

// DeleteCategory removes a category and detaches it from every post.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	ctx, cancel := withWriteTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateAll()
	return nil
}

func (s *CategoryService) invalidateAll() {
	invalidate(s.cache, s.log, categoryListKey)
	if err := s.cache.DeletePrefix(postKeyPrefix); err != nil {
		s.log.Error(err, fmt.Sprintf("Cache invalidation failed for prefix %s", postKeyPrefix))
	}
}
