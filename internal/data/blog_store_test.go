//go:build integration

package data

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBlogStore_CreateUpdateScenario(t *testing.T) {
	db := setupTestDB(t)
	store := NewBlogStore(db)
	ctx := context.Background()

	goID := mustCreateCategory(t, store.Categories, "Go")
	rustID := mustCreateCategory(t, store.Categories, "Rust")

	postID, err := store.CreatePost(ctx, &Post{Title: "T", Content: "C"}, []int64{rustID, goID})
	require.NoError(t, err)

	view, err := store.GetPostView(ctx, postID)
	require.NoError(t, err)
	want := []CategoryRef{{ID: goID, Name: "Go"}, {ID: rustID, Name: "Rust"}}
	if diff := cmp.Diff(want, view.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, store.UpdatePost(ctx, &Post{ID: postID, Title: "T", Content: "C"}, []int64{rustID}))

	view, err = store.GetPostView(ctx, postID)
	require.NoError(t, err)
	if diff := cmp.Diff([]CategoryRef{{ID: rustID, Name: "Rust"}}, view.Categories); diff != "" {
		t.Errorf("categories mismatch after update (-want +got):\n%s", diff)
	}
	require.False(t, view.CreatedAt.IsZero())
}

func TestBlogStore_CreatePostWithUnknownCategoryCreatesNothing(t *testing.T) {
	db := setupTestDB(t)
	store := NewBlogStore(db)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, &Post{Title: "T", Content: "C"}, []int64{42})
	require.ErrorIs(t, err, ErrUnknownCategory)

	posts, err := store.Posts.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, posts, "post insert must roll back with the failed sync")
}

func TestBlogStore_UpdateMissingPost(t *testing.T) {
	store := NewBlogStore(setupTestDB(t))

	err := store.UpdatePost(context.Background(), &Post{ID: 999, Title: "T"}, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBlogStore_DeletePostCascades(t *testing.T) {
	db := setupTestDB(t)
	store := NewBlogStore(db)
	ctx := context.Background()

	catID := mustCreateCategory(t, store.Categories, "Go")
	postID, err := store.CreatePost(ctx, &Post{Title: "T"}, []int64{catID})
	require.NoError(t, err)

	require.NoError(t, store.DeletePost(ctx, postID))
	require.Empty(t, associatedIDs(t, db, postID))
	require.ErrorIs(t, store.DeletePost(ctx, postID), ErrNotFound)
}

func TestBlogStore_DeleteCategoryCascadesToPostViews(t *testing.T) {
	db := setupTestDB(t)
	store := NewBlogStore(db)
	ctx := context.Background()

	goID := mustCreateCategory(t, store.Categories, "Go")
	rustID := mustCreateCategory(t, store.Categories, "Rust")
	p1, err := store.CreatePost(ctx, &Post{Title: "one"}, []int64{goID, rustID})
	require.NoError(t, err)
	p2, err := store.CreatePost(ctx, &Post{Title: "two"}, []int64{goID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, goID))

	views, err := store.ListPostViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	got := map[int64][]CategoryRef{}
	for _, v := range views {
		got[v.ID] = v.Categories
	}
	want := map[int64][]CategoryRef{
		p1: {{ID: rustID, Name: "Rust"}},
		p2: {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("post views mismatch (-want +got):\n%s", diff)
	}
	require.ErrorIs(t, store.DeleteCategory(ctx, goID), ErrNotFound)
}

func TestBlogStore_ListPostViewsNewestFirst(t *testing.T) {
	store := NewBlogStore(setupTestDB(t))
	ctx := context.Background()

	older, err := store.CreatePost(ctx, &Post{Title: "older"}, nil)
	require.NoError(t, err)
	newer, err := store.CreatePost(ctx, &Post{Title: "newer"}, nil)
	require.NoError(t, err)

	views, err := store.ListPostViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, newer, views[0].ID)
	require.Equal(t, older, views[1].ID)
	require.NotNil(t, views[0].Categories)
}
