package data

import (
	"time"
)

// Post represents a single blog post in the database.
type Post struct {
	ID                 int64     `db:"id" json:"id"`
	Title              string    `db:"title" json:"title"`
	Content            string    `db:"content" json:"content"`
	ThumbnailReference string    `db:"thumbnail_reference" json:"thumbnailReference"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

// Category is a named label that can be attached to posts.
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PostCategory is one row of the post_categories join table.
type PostCategory struct {
	PostID     int64 `db:"post_id"`
	CategoryID int64 `db:"category_id"`
}

// AssociatedCategory is a join row together with the category it resolves to.
type AssociatedCategory struct {
	PostCategory
	Name string `db:"name"`
}

// CategoryRef is the short category form embedded in a PostView.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PostView is the API-facing post: scalar fields plus resolved categories.
type PostView struct {
	Post
	ContentHTML string        `json:"contentHtml,omitempty"`
	Categories  []CategoryRef `json:"categories"`
}
