//go:build integration

package data

import (
	"context"
	"testing"

	"go-blog-admin/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a new in-memory SQLite database with the real
// migrations applied. The pool holds a single connection, so the database
// lives exactly as long as the returned handle.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := NewDB(config.DBConfig{Driver: DriverSQLite3, DSN: "file::memory:?_foreign_keys=on"})
	require.NoError(t, err, "failed to connect to sqlite test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, ApplyMigrations(db), "failed to apply migrations")
	return db
}

func mustCreateCategory(t *testing.T, repo *CategoryRepository, name string) int64 {
	t.Helper()
	c, err := repo.Create(context.Background(), name)
	require.NoError(t, err)
	return c.ID
}

func mustCreatePost(t *testing.T, repo *PostRepository, title string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &Post{Title: title, Content: "content"})
	require.NoError(t, err)
	return id
}

// associatedIDs reads the join table directly.
func associatedIDs(t *testing.T, db *sqlx.DB, postID int64) []int64 {
	t.Helper()
	ids := []int64{}
	err := db.Select(&ids, `SELECT category_id FROM post_categories WHERE post_id = ? ORDER BY category_id`, postID)
	require.NoError(t, err)
	return ids
}
