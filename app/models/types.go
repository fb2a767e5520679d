package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Post represents a blog post with its comments, as served by the GraphQL backend.
type Post struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Comments []Comment `json:"comments"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID      string `json:"_id"`
	Content string `json:"content"`
	Author  Author `json:"author"`
}

// Author is the name/email identity of a comment's writer.
type Author struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddCommentArgs holds the variables of the addComment mutation.
// PostID and AuthorEmail are non-null in the schema.
type AddCommentArgs struct {
	PostID      string `json:"postId" validate:"required"`
	Content     string `json:"content"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail" validate:"required"`
}
