package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostRepository handles database operations for posts. It never touches
// post_categories; associations belong to the Synchronizer.
type PostRepository struct {
	db queryer
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PostRepository) WithTx(tx *sqlx.Tx) *PostRepository {
	return &PostRepository{db: tx}
}

const postColumns = `id, title, content, thumbnail_reference, created_at, updated_at`

// Create inserts a new post, filling in its ID and timestamps.
// MySQL has no RETURNING clause, so the ID comes from LastInsertId.
func (r *PostRepository) Create(ctx context.Context, post *Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt, post.UpdatedAt = now, now

	query := `INSERT INTO posts (title, content, thumbnail_reference, created_at, updated_at)
		VALUES (:title, :content, :thumbnail_reference, :created_at, :updated_at)`
	res, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create post query: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read post id: %w", err)
	}
	post.ID = id
	return id, nil
}

// GetByID retrieves a single post from the database by its ID.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by id: %w", classify(err))
	}
	return &post, nil
}

// GetAll retrieves all posts, newest first.
func (r *PostRepository) GetAll(ctx context.Context) ([]*Post, error) {
	posts := []*Post{}
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", classify(err))
	}
	return posts, nil
}

// Update writes the scalar fields of an existing post.
func (r *PostRepository) Update(ctx context.Context, post *Post) error {
	post.UpdatedAt = time.Now().UTC()
	query := `UPDATE posts SET title = :title, content = :content, thumbnail_reference = :thumbnail_reference, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", classify(err))
	}
	return expectOneRow(res, "post", post.ID)
}

// Delete removes a post from the database by its ID.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", classify(err))
	}
	return expectOneRow(res, "post", id)
}

// LockForUpdate confirms the post exists. On MySQL it also row-locks the post
// until the surrounding transaction ends, which serializes concurrent syncs
// of the same post. SQLite transactions are already exclusive.
func (r *PostRepository) LockForUpdate(ctx context.Context, id int64) error {
	query := `SELECT id FROM posts WHERE id = ?`
	if r.db.DriverName() == DriverMySQL {
		query += ` FOR UPDATE`
	}
	var found int64
	if err := r.db.GetContext(ctx, &found, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to lock post: %w", classify(err))
	}
	return nil
}

// AssociatedCategories fetches the resolved category rows for the given posts
// in one query. A nil slice of ids means every post.
func (r *PostRepository) AssociatedCategories(ctx context.Context, postIDs []int64) ([]AssociatedCategory, error) {
	query := `SELECT pc.post_id, pc.category_id, c.name
		FROM post_categories pc
		JOIN categories c ON c.id = pc.category_id`
	var args []interface{}
	if postIDs != nil {
		if len(postIDs) == 0 {
			return nil, nil
		}
		var err error
		query, args, err = sqlx.In(query+` WHERE pc.post_id IN (?)`, postIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to build association query: %w", err)
		}
		query = r.db.Rebind(query)
	}
	query += ` ORDER BY pc.post_id, pc.category_id`

	var rows []AssociatedCategory
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get post categories: %w", classify(err))
	}
	return rows, nil
}
