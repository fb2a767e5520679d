package models

import "fmt"

// Optimistic placeholder identifiers, replaced once the server answers.
const (
	OptimisticCommentID = "-1"
	OptimisticAuthorID  = "-2"
)

// Validate checks the mutation variables against the schema's non-null fields
func (a AddCommentArgs) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid addComment arguments: %w", err)
	}
	return nil
}

// OptimisticComment builds the provisional comment shown before the server responds
func (a AddCommentArgs) OptimisticComment() Comment {
	return Comment{
		ID:      OptimisticCommentID,
		Content: a.Content,
		Author: Author{
			ID:    OptimisticAuthorID,
			Name:  a.AuthorName,
			Email: a.AuthorEmail,
		},
	}
}

// IsOptimistic reports whether the comment is a provisional placeholder
func (c Comment) IsOptimistic() bool {
	return c.ID == OptimisticCommentID
}
