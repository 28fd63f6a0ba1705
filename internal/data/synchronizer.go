package data

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

// Synchronizer is the only writer of the post_categories join table.
//
// Sync replaces a post's whole category set: it deletes every existing row
// for the post and inserts one row per requested id, all inside a single
// transaction. Callers always send the complete set, never a delta, so no
// diffing against the previous state is done.
type Synchronizer struct {
	db         *sqlx.DB
	posts      *PostRepository
	categories *CategoryRepository
}

// NewSynchronizer creates a Synchronizer working on db.
func NewSynchronizer(db *sqlx.DB) *Synchronizer {
	return &Synchronizer{
		db:         db,
		posts:      NewPostRepository(db),
		categories: NewCategoryRepository(db),
	}
}

// Sync leaves exactly categoryIDs associated with the post, atomically.
func (s *Synchronizer) Sync(ctx context.Context, postID int64, categoryIDs []int64) error {
	return runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.SyncTx(ctx, tx, postID, categoryIDs)
	})
}

// SyncTx performs Sync inside a transaction owned by the caller. Any error
// it returns leaves tx in a state the caller must roll back.
func (s *Synchronizer) SyncTx(ctx context.Context, tx *sqlx.Tx, postID int64, categoryIDs []int64) error {
	if err := s.posts.WithTx(tx).LockForUpdate(ctx, postID); err != nil {
		return err
	}

	ids := NormalizeIDs(categoryIDs)
	missing, err := s.categories.WithTx(tx).MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &UnknownCategoryError{IDs: missing}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = ?`, postID); err != nil {
		return syncFailure(postID, err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)`, postID, id); err != nil {
			if isForeignKeyViolation(err) {
				// A category vanished between validation and insert.
				return &SyncError{PostID: postID, Err: &UnknownCategoryError{IDs: []int64{id}}}
			}
			return syncFailure(postID, err)
		}
	}
	return nil
}

// DetachPost removes every association of a post.
func (s *Synchronizer) DetachPost(ctx context.Context, tx *sqlx.Tx, postID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("failed to detach post %d: %w", postID, classify(err))
	}
	return nil
}

// DetachCategory removes a category from every post that carries it.
func (s *Synchronizer) DetachCategory(ctx context.Context, tx *sqlx.Tx, categoryID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("failed to detach category %d: %w", categoryID, classify(err))
	}
	return nil
}

// NormalizeIDs returns the distinct ids in ascending order. The result is
// never nil.
func NormalizeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// syncFailure wraps a write error. Deadline and connectivity failures keep
// their own sentinel so the caller can tell them apart.
func syncFailure(postID int64, err error) error {
	err = classify(err)
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return &SyncError{PostID: postID, Err: err}
}

// runInTx runs fn in a transaction, committing on success and rolling back
// on error or panic.
func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}
	return nil
}
