package graphql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"postview/app/metrics"
	"postview/app/models"

	gql "github.com/machinebox/graphql"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrInvalidArgs is returned when mutation variables violate the schema's non-null constraints
var ErrInvalidArgs = errors.New("invalid graphql arguments")

// API is the transport-agnostic view of the blog backend
type API interface {
	FetchAllPosts(ctx context.Context) ([]models.Post, error)
	AddCommentToPost(ctx context.Context, args models.AddCommentArgs) (*models.Post, error)
}

// BreakerSettings configures the circuit breaker in front of the backend
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings trips after three requests with at least 60% failures
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  100,
		Interval:     5 * time.Second,
		Timeout:      3 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// Options configures a Client
type Options struct {
	Endpoint string
	// Timeout bounds each HTTP round trip; zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Breaker    BreakerSettings
	Metrics    *metrics.Metrics
	Logger     logrus.FieldLogger
}

// Client talks to the blog backend over GraphQL/HTTP
type Client struct {
	gql     *gql.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logrus.Entry
}

// NewClient creates a new Client
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	settings := opts.Breaker
	if settings.MinRequests == 0 {
		settings = DefaultBreakerSettings()
	}

	c := &Client{
		gql:     gql.NewClient(opts.Endpoint, gql.WithHTTPClient(httpClient)),
		metrics: opts.Metrics,
		logger:  logger.WithField("component", "graphql"),
	}
	c.gql.Log = func(s string) {
		c.logger.Trace(s)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "graphql:" + opts.Endpoint,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return c
}

// FetchAllPosts runs GetPostsQuery
func (c *Client) FetchAllPosts(ctx context.Context) ([]models.Post, error) {
	var resp PostsResponse
	if err := c.run(ctx, OperationGetPosts, gql.NewRequest(GetPostsQuery), &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// AddCommentToPost runs AddCommentMutation and returns the updated post
func (c *Client) AddCommentToPost(ctx context.Context, args models.AddCommentArgs) (*models.Post, error) {
	if err := args.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	req := gql.NewRequest(AddCommentMutation)
	req.Var("postId", args.PostID)
	req.Var("authorEmail", args.AuthorEmail)
	// Unset optional fields are omitted so the server sees null.
	if args.Content != "" {
		req.Var("content", args.Content)
	}
	if args.AuthorName != "" {
		req.Var("authorName", args.AuthorName)
	}

	var resp AddCommentResponse
	if err := c.run(ctx, OperationAddComment, req, &resp); err != nil {
		return nil, err
	}
	return &resp.AddComment, nil
}

// State reports the circuit breaker state
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) run(ctx context.Context, operation string, req *gql.Request, resp interface{}) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.gql.Run(ctx, req, resp)
	})
	elapsed := time.Since(start)
	c.metrics.ObserveGraphQL(operation, elapsed, err)

	entry := c.logger.WithFields(logrus.Fields{
		"operation": operation,
		"duration":  elapsed,
	})
	if err != nil {
		entry.WithError(err).Warn("graphql operation failed")
		return fmt.Errorf("%s: %w", operation, err)
	}
	entry.Debug("graphql operation completed")
	return nil
}
