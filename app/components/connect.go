package components

import (
	"context"

	"postview/app/models"
	"postview/app/store"

	"github.com/sirupsen/logrus"
)

// PostFetcher supplies the posts property
type PostFetcher interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
}

// CommentSubmitter supplies the addComment property. Submission is fire-and-forget.
type CommentSubmitter interface {
	SubmitComment(ctx context.Context, args models.AddCommentArgs)
}

// StateReader reads a session's UI state
type StateReader interface {
	State(ctx context.Context, key string) (models.State, error)
}

// Dispatcher applies actions to a session's UI state
type Dispatcher interface {
	Dispatch(ctx context.Context, key string, action models.Action) (models.State, error)
}

// Bindings are the capabilities a ConnectedPage is built from
type Bindings struct {
	Posts     PostFetcher
	Comments  CommentSubmitter
	State     StateReader
	Dispatch  Dispatcher
	Endpoints Endpoints
	Logger    logrus.FieldLogger
}

// StateProps are the properties read from the state store
type StateProps struct {
	SelectedPostID string
}

// DispatchProps are the callbacks writing to the state store
type DispatchProps struct {
	Navigate func(url string)
	Select   func(id string)
}

// MapStateToProps reads the selected post from the post.selected path
func MapStateToProps(state models.State) StateProps {
	return StateProps{SelectedPostID: state.GetIn("post", "selected")}
}

// MapDispatchToProps builds the navigate and select callbacks
func MapDispatchToProps(dispatch func(models.Action)) DispatchProps {
	return DispatchProps{
		Navigate: func(url string) { dispatch(store.Push(url)) },
		Select:   func(id string) { dispatch(store.SelectPost(id)) },
	}
}

// ConnectedPage builds Pages whose properties come from the bindings
type ConnectedPage struct {
	bindings Bindings
	logger   logrus.FieldLogger
}

// Connect creates a ConnectedPage
func Connect(b Bindings) *ConnectedPage {
	logger := b.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if b.Endpoints == (Endpoints{}) {
		b.Endpoints = DefaultEndpoints()
	}
	return &ConnectedPage{bindings: b, logger: logger.WithField("component", "page")}
}

// Build returns the page for session key. A failed fetch yields an empty
// post list; a failed state read yields no selection. Neither is an error.
func (c *ConnectedPage) Build(ctx context.Context, key string) *Page {
	page := c.connect(ctx, key)

	posts, err := c.bindings.Posts.FetchPosts(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("posts unavailable, rendering empty list")
		posts = nil
	}
	page.Posts = posts
	return page
}

// Submit runs the page's comment submission for session key without fetching posts
func (c *ConnectedPage) Submit(ctx context.Context, key string, form CommentForm) bool {
	return c.connect(ctx, key).SubmitComment(form)
}

// Callbacks returns the state-write callbacks for session key
func (c *ConnectedPage) Callbacks(ctx context.Context, key string) DispatchProps {
	return MapDispatchToProps(c.dispatcher(ctx, key))
}

// Location returns the session's current router location, or "" when unknown
func (c *ConnectedPage) Location(ctx context.Context, key string) string {
	state, err := c.bindings.State.State(ctx, key)
	if err != nil {
		c.logger.WithError(err).Warn("state unavailable")
		return ""
	}
	return state.GetIn("router", "location")
}

// connect builds a page carrying every property except posts
func (c *ConnectedPage) connect(ctx context.Context, key string) *Page {
	state, err := c.bindings.State.State(ctx, key)
	if err != nil {
		c.logger.WithError(err).Warn("state unavailable, rendering without selection")
		state = models.State{}
	}
	stateProps := MapStateToProps(state)
	dispatchProps := c.Callbacks(ctx, key)

	return &Page{
		SelectedPostID: stateProps.SelectedPostID,
		Navigate:       dispatchProps.Navigate,
		Select:         dispatchProps.Select,
		AddComment: func(args models.AddCommentArgs) {
			c.bindings.Comments.SubmitComment(ctx, args)
		},
		Endpoints: c.bindings.Endpoints,
	}
}

func (c *ConnectedPage) dispatcher(ctx context.Context, key string) func(models.Action) {
	return func(action models.Action) {
		if _, err := c.bindings.Dispatch.Dispatch(ctx, key, action); err != nil {
			c.logger.WithError(err).WithField("action", action.Type).Warn("dispatch failed")
		}
	}
}
