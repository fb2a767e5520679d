package models

// EmptyPost returns the placeholder shown when no post is selected
func EmptyPost() Post {
	return Post{Title: "", Body: "", Comments: []Comment{}}
}

// FindPost returns the post with the given ID, or the placeholder when
// id is empty or no post matches.
func FindPost(posts []Post, id string) Post {
	if id == "" {
		return EmptyPost()
	}
	for _, post := range posts {
		if post.ID == id {
			if post.Comments == nil {
				post.Comments = []Comment{}
			}
			return post
		}
	}
	return EmptyPost()
}

// HasComments reports whether the post carries at least one comment
func (p Post) HasComments() bool {
	return len(p.Comments) > 0
}

// AppendComment returns a copy of the post with comment added at the end.
// The receiver's comment slice is never modified.
func (p Post) AppendComment(comment Comment) Post {
	comments := make([]Comment, 0, len(p.Comments)+1)
	comments = append(comments, p.Comments...)
	p.Comments = append(comments, comment)
	return p
}

// WithoutOptimisticComment returns a copy of the post without its last
// provisional comment. Server-assigned comments are left in place.
func (p Post) WithoutOptimisticComment() Post {
	for i := len(p.Comments) - 1; i >= 0; i-- {
		if !p.Comments[i].IsOptimistic() {
			continue
		}
		comments := make([]Comment, 0, len(p.Comments)-1)
		comments = append(comments, p.Comments[:i]...)
		p.Comments = append(comments, p.Comments[i+1:]...)
		return p
	}
	return p
}
