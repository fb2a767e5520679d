package services

import (
	"context"
	"testing"

	"postview/app/graphql"
	"postview/app/metrics"
	"postview/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArgs() models.AddCommentArgs {
	return models.AddCommentArgs{PostID: "p1", Content: "hi", AuthorName: "A", AuthorEmail: "a@x.com"}
}

func TestCommentServiceAddComment(t *testing.T) {
	api := newMockAPI(testPosts()...)
	c := newTestCache(t)
	c.WritePosts(testPosts())
	service := NewCommentService(api, c, CommentOptions{}, metrics.New(), quietLogger())

	t.Run("merges server result into cache", func(t *testing.T) {
		post, err := service.AddComment(context.Background(), validArgs())
		require.NoError(t, err)
		require.Len(t, post.Comments, 2)

		cached, ok := c.ReadPost("p1")
		require.True(t, ok)
		assert.Equal(t, "First", cached.Title)
		require.Len(t, cached.Comments, 2)
		assert.Equal(t, "hello", cached.Comments[0].Content)
		assert.Equal(t, "hi", cached.Comments[1].Content)
		assert.Equal(t, "A", cached.Comments[1].Author.Name)
	})

	t.Run("invalid arguments never reach the backend", func(t *testing.T) {
		_, before := api.calls()

		_, err := service.AddComment(context.Background(), models.AddCommentArgs{PostID: "p1", Content: "no email"})
		assert.ErrorIs(t, err, graphql.ErrInvalidArgs)

		_, after := api.calls()
		assert.Len(t, after, len(before))
	})

	t.Run("backend failure leaves cache untouched", func(t *testing.T) {
		api.failAdd = true
		defer func() { api.failAdd = false }()

		_, err := service.AddComment(context.Background(), validArgs())
		assert.ErrorIs(t, err, errBackend)

		cached, ok := c.ReadPost("p1")
		require.True(t, ok)
		assert.Len(t, cached.Comments, 2)
	})
}

func TestCommentServiceSubmitIsFireAndForget(t *testing.T) {
	api := newMockAPI(testPosts()...)
	api.release = make(chan struct{})
	c := newTestCache(t)
	c.WritePosts(testPosts())
	service := NewCommentService(api, c, CommentOptions{}, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	service.SubmitComment(ctx, validArgs())
	cancel()

	cached, ok := c.ReadPost("p1")
	require.True(t, ok)
	assert.Len(t, cached.Comments, 1, "without optimistic updates nothing changes before the round trip")

	close(api.release)
	service.Wait()

	_, calls := api.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, validArgs(), calls[0])

	cached, ok = c.ReadPost("p1")
	require.True(t, ok)
	assert.Len(t, cached.Comments, 2, "canceling the caller's context does not cancel the mutation")
}

func TestCommentServiceOptimistic(t *testing.T) {
	t.Run("provisional comment replaced by server result", func(t *testing.T) {
		api := newMockAPI(testPosts()...)
		api.release = make(chan struct{})
		api.started = make(chan struct{})
		c := newTestCache(t)
		c.WritePosts(testPosts())
		service := NewCommentService(api, c, CommentOptions{Optimistic: true}, nil, quietLogger())

		service.SubmitComment(context.Background(), validArgs())
		<-api.started

		cached, ok := c.ReadPost("p1")
		require.True(t, ok)
		require.Len(t, cached.Comments, 2)
		assert.True(t, cached.Comments[1].IsOptimistic())
		assert.Equal(t, "hi", cached.Comments[1].Content)

		close(api.release)
		service.Wait()

		cached, ok = c.ReadPost("p1")
		require.True(t, ok)
		require.Len(t, cached.Comments, 2)
		assert.False(t, cached.Comments[1].IsOptimistic())
		assert.Equal(t, "new1", cached.Comments[1].ID)
	})

	t.Run("provisional comment rolled back on failure", func(t *testing.T) {
		api := newMockAPI(testPosts()...)
		api.failAdd = true
		c := newTestCache(t)
		c.WritePosts(testPosts())
		service := NewCommentService(api, c, CommentOptions{Optimistic: true}, nil, quietLogger())

		_, err := service.AddComment(context.Background(), validArgs())
		require.Error(t, err)

		cached, ok := c.ReadPost("p1")
		require.True(t, ok)
		require.Len(t, cached.Comments, 1)
		assert.Equal(t, "c1", cached.Comments[0].ID)
	})
	t.Run("rollback keeps comments merged meanwhile", func(t *testing.T) {
		api := &stallingAPI{
			mockAPI: newMockAPI(testPosts()...),
			release: make(chan struct{}),
			started: make(chan struct{}),
		}
		c := newTestCache(t)
		c.WritePosts(testPosts())
		service := NewCommentService(api, c, CommentOptions{Optimistic: true}, nil, quietLogger())

		doomed := validArgs()
		doomed.Content = "doomed"
		service.SubmitComment(context.Background(), doomed)
		<-api.started

		_, err := service.AddComment(context.Background(), validArgs())
		require.NoError(t, err)

		close(api.release)
		service.Wait()

		cached, ok := c.ReadPost("p1")
		require.True(t, ok)
		require.Len(t, cached.Comments, 2)
		assert.Equal(t, "c1", cached.Comments[0].ID)
		assert.Equal(t, "new1", cached.Comments[1].ID)
		for _, comment := range cached.Comments {
			assert.False(t, comment.IsOptimistic())
		}
	})
}
