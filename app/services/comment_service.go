package services

import (
	"context"
	"fmt"
	"sync"

	"postview/app/cache"
	"postview/app/graphql"
	"postview/app/metrics"
	"postview/app/models"

	"github.com/sirupsen/logrus"
)

// CommentOptions configures the CommentService
type CommentOptions struct {
	// Optimistic shows a provisional comment in the cache until the server answers.
	Optimistic bool
}

// CommentService submits comments through the addComment mutation
type CommentService struct {
	api        graphql.API
	cache      *cache.Cache
	optimistic bool
	metrics    *metrics.Metrics
	logger     logrus.FieldLogger
	inflight   sync.WaitGroup
}

// NewCommentService creates a new CommentService
func NewCommentService(api graphql.API, c *cache.Cache, opts CommentOptions, m *metrics.Metrics, logger logrus.FieldLogger) *CommentService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CommentService{
		api:        api,
		cache:      c,
		optimistic: opts.Optimistic,
		metrics:    m,
		logger:     logger.WithField("component", "comment_service"),
	}
}

// SubmitComment runs AddComment in the background. The mutation outlives the
// caller's context and is neither canceled nor bounded by it.
func (s *CommentService) SubmitComment(ctx context.Context, args models.AddCommentArgs) {
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if _, err := s.AddComment(ctx, args); err != nil {
			s.logger.WithError(err).WithField("post_id", args.PostID).Warn("comment submission failed")
		}
	}()
}

// AddComment runs the mutation and merges the returned post into the cache
func (s *CommentService) AddComment(ctx context.Context, args models.AddCommentArgs) (*models.Post, error) {
	if err := args.Validate(); err != nil {
		s.metrics.CommentSubmitted(metrics.OutcomeError)
		return nil, fmt.Errorf("%w: %v", graphql.ErrInvalidArgs, err)
	}

	rollback := s.applyOptimistic(args)

	post, err := s.api.AddCommentToPost(ctx, args)
	if err != nil {
		rollback()
		s.metrics.CommentSubmitted(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	if s.cache != nil {
		s.cache.MergePost(*post)
	}
	s.metrics.CommentSubmitted(metrics.OutcomeSuccess)
	s.logger.WithFields(logrus.Fields{
		"post_id":  post.ID,
		"comments": len(post.Comments),
	}).Info("comment added")
	return post, nil
}

// Wait blocks until every background submission has finished
func (s *CommentService) Wait() {
	s.inflight.Wait()
}

// applyOptimistic appends a provisional comment to the cached post and returns
// a func removing it again. The rollback only touches the provisional comment,
// so results merged by other submissions in the meantime are kept.
func (s *CommentService) applyOptimistic(args models.AddCommentArgs) func() {
	noop := func() {}
	if !s.optimistic || s.cache == nil {
		return noop
	}
	provisional := args.OptimisticComment()
	applied := s.cache.UpdatePost(args.PostID, func(post models.Post) models.Post {
		return post.AppendComment(provisional)
	})
	if !applied {
		return noop
	}
	return func() {
		s.cache.UpdatePost(args.PostID, models.Post.WithoutOptimisticComment)
	}
}
