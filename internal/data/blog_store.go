package data

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// BlogStore groups the post and category repositories with the Synchronizer
// and runs the multi-table writes in single transactions.
type BlogStore struct {
	db         *sqlx.DB
	Posts      *PostRepository
	Categories *CategoryRepository
	Sync       *Synchronizer
}

// NewBlogStore creates a BlogStore on db.
func NewBlogStore(db *sqlx.DB) *BlogStore {
	return &BlogStore{
		db:         db,
		Posts:      NewPostRepository(db),
		Categories: NewCategoryRepository(db),
		Sync:       NewSynchronizer(db),
	}
}

// CreatePost inserts a post and attaches categoryIDs to it in one transaction.
func (s *BlogStore) CreatePost(ctx context.Context, post *Post, categoryIDs []int64) (int64, error) {
	var id int64
	err := runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		if id, err = s.Posts.WithTx(tx).Create(ctx, post); err != nil {
			return err
		}
		return s.Sync.SyncTx(ctx, tx, id, categoryIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdatePost writes the post's scalar fields and replaces its category set
// in one transaction.
func (s *BlogStore) UpdatePost(ctx context.Context, post *Post, categoryIDs []int64) error {
	return runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		posts := s.Posts.WithTx(tx)
		existing, err := posts.GetByID(ctx, post.ID)
		if err != nil {
			return err
		}
		post.CreatedAt = existing.CreatedAt
		if err := posts.Update(ctx, post); err != nil {
			return err
		}
		return s.Sync.SyncTx(ctx, tx, post.ID, categoryIDs)
	})
}

// DeletePost removes a post and all of its associations.
func (s *BlogStore) DeletePost(ctx context.Context, id int64) error {
	return runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.Sync.DetachPost(ctx, tx, id); err != nil {
			return err
		}
		return s.Posts.WithTx(tx).Delete(ctx, id)
	})
}

// DeleteCategory removes a category and cascades the removal to every post
// that carried it.
func (s *BlogStore) DeleteCategory(ctx context.Context, id int64) error {
	return runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.Sync.DetachCategory(ctx, tx, id); err != nil {
			return err
		}
		return s.Categories.WithTx(tx).Delete(ctx, id)
	})
}

// GetPostView loads one post with its categories.
func (s *BlogStore) GetPostView(ctx context.Context, id int64) (*PostView, error) {
	post, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.Posts.AssociatedCategories(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	view := ProjectPost(*post, rows)
	return &view, nil
}

// ListPostViews loads every post, newest first, with its categories. The
// associations are fetched in one query rather than once per post.
func (s *BlogStore) ListPostViews(ctx context.Context) ([]*PostView, error) {
	posts, err := s.Posts.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Posts.AssociatedCategories(ctx, nil)
	if err != nil {
		return nil, err
	}
	return ProjectPosts(posts, rows), nil
}

// CreateCategory inserts a new category.
func (s *BlogStore) CreateCategory(ctx context.Context, name string) (*Category, error) {
	return s.Categories.Create(ctx, name)
}

// GetCategory loads one category.
func (s *BlogStore) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.Categories.GetByID(ctx, id)
}

// ListCategories loads every category, newest first.
func (s *BlogStore) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.Categories.GetAll(ctx)
}

// RenameCategory changes a category's name.
func (s *BlogStore) RenameCategory(ctx context.Context, id int64, name string) (*Category, error) {
	return s.Categories.Rename(ctx, id, name)
}
