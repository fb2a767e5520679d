package graphql

import "postview/app/models"

// Operation names, used for logging and metrics labels.
const (
	OperationGetPosts   = "GetPosts"
	OperationAddComment = "AddComment"
)

// GetPostsQuery fetches every post with nested comments and comment authors.
const GetPostsQuery = `query GetPosts {
  posts {
    _id
    title
    body
    comments {
      _id
      content
      author {
        _id
        name
        email
      }
    }
  }
}`

// AddCommentMutation appends a comment to a post and returns the post's full comment list.
const AddCommentMutation = `mutation AddComment(
  $postId: ID!
  $content: String
  $authorName: String
  $authorEmail: String!
) {
  addComment(
    _id: $postId
    input: {
      content: $content
      author: { name: $authorName, email: $authorEmail }
    }
  ) {
    _id
    comments {
      _id
      content
      author {
        _id
        name
        email
      }
    }
  }
}`

// PostsResponse is the data payload of GetPostsQuery
type PostsResponse struct {
	Posts []models.Post `json:"posts"`
}

// AddCommentResponse is the data payload of AddCommentMutation
type AddCommentResponse struct {
	AddComment models.Post `json:"addComment"`
}
