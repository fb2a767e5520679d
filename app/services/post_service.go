package services

import (
	"context"
	"fmt"

	"postview/app/cache"
	"postview/app/graphql"
	"postview/app/models"

	"github.com/sirupsen/logrus"
)

// PostService reads the posts collection, cache-first
type PostService struct {
	api    graphql.API
	cache  *cache.Cache
	logger logrus.FieldLogger
}

// NewPostService creates a new PostService. cache may be nil, in which case
// every read goes to the network.
func NewPostService(api graphql.API, c *cache.Cache, logger logrus.FieldLogger) *PostService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PostService{
		api:    api,
		cache:  c,
		logger: logger.WithField("component", "post_service"),
	}
}

// FetchPosts returns every post with its comments. A complete cached result is
// returned as is; otherwise the full collection is fetched and written to the cache.
func (s *PostService) FetchPosts(ctx context.Context) ([]models.Post, error) {
	if s.cache != nil {
		if posts, ok := s.cache.ReadPosts(); ok {
			return posts, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh fetches the posts from the backend, bypassing the cache
func (s *PostService) Refresh(ctx context.Context) ([]models.Post, error) {
	posts, err := s.api.FetchAllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	if s.cache != nil {
		s.cache.WritePosts(posts)
	}
	s.logger.WithField("count", len(posts)).Debug("posts fetched")
	return posts, nil
}
