package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go-blog-admin/internal/data"
)

const (
	maxTitleLength     = 255
	maxNameLength      = 255
	maxThumbnailLength = 1024
)

// PostInput is the payload for creating or replacing a post. Categories is
// the complete category set the post should end up with.
type PostInput struct {
	Title              string  `json:"title"`
	Content            string  `json:"content"`
	ThumbnailReference string  `json:"thumbnailReference"`
	Categories         []int64 `json:"categories"`
}

// Validate trims the text fields in place and reports the first problem.
func (in *PostInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.ThumbnailReference = strings.TrimSpace(in.ThumbnailReference)

	switch {
	case in.Title == "":
		return invalid("title is required")
	case utf8.RuneCountInString(in.Title) > maxTitleLength:
		return invalid("title must be at most %d characters", maxTitleLength)
	case strings.TrimSpace(in.Content) == "":
		return invalid("content is required")
	case len(in.ThumbnailReference) > maxThumbnailLength:
		return invalid("thumbnailReference must be at most %d bytes", maxThumbnailLength)
	}
	for _, id := range in.Categories {
		if id <= 0 {
			return invalid("category id %d is not valid", id)
		}
	}
	return nil
}

// CategoryInput is the payload for creating or renaming a category.
type CategoryInput struct {
	Name string `json:"name"`
}

// Validate trims the name in place and checks it.
func (in *CategoryInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return invalid("name is required")
	case utf8.RuneCountInString(in.Name) > maxNameLength:
		return invalid("name must be at most %d characters", maxNameLength)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", data.ErrInvalidInput, fmt.Sprintf(format, args...))
}
