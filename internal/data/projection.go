package data

import "sort"

// ProjectPost combines a post with its resolved categories. Rows that belong
// to other posts are ignored, duplicates are collapsed and categories are
// ordered by ascending id. Categories is never nil so it encodes as [].
func ProjectPost(post Post, rows []AssociatedCategory) PostView {
	seen := make(map[int64]struct{})
	refs := make([]CategoryRef, 0)
	for _, row := range rows {
		if row.PostID != post.ID {
			continue
		}
		if _, ok := seen[row.CategoryID]; ok {
			continue
		}
		seen[row.CategoryID] = struct{}{}
		refs = append(refs, CategoryRef{ID: row.CategoryID, Name: row.Name})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return PostView{Post: post, Categories: refs}
}

// ProjectPosts applies ProjectPost to every post after a single bulk fetch,
// keeping the order of posts.
func ProjectPosts(posts []*Post, rows []AssociatedCategory) []*PostView {
	byPost := make(map[int64][]AssociatedCategory, len(posts))
	for _, row := range rows {
		byPost[row.PostID] = append(byPost[row.PostID], row)
	}
	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		view := ProjectPost(*p, byPost[p.ID])
		views = append(views, &view)
	}
	return views
}
