package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"postview/app/models"
)

var errBackend = errors.New("backend unavailable")

// mockAPI is an in-memory graphql.API
type mockAPI struct {
	mutex      sync.Mutex
	posts      []models.Post
	fetchCalls int
	addCalls   []models.AddCommentArgs
	failFetch  bool
	failAdd    bool
	// release, when set, blocks AddCommentToPost until it is closed
	release chan struct{}
	started chan struct{}
}

func newMockAPI(posts ...models.Post) *mockAPI {
	return &mockAPI{posts: posts}
}

func (m *mockAPI) FetchAllPosts(ctx context.Context) ([]models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fetchCalls++
	if m.failFetch {
		return nil, errBackend
	}
	return append([]models.Post(nil), m.posts...), nil
}

func (m *mockAPI) AddCommentToPost(ctx context.Context, args models.AddCommentArgs) (*models.Post, error) {
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.addCalls = append(m.addCalls, args)
	if m.failAdd {
		return nil, errBackend
	}
	for i := range m.posts {
		if m.posts[i].ID == args.PostID {
			n := len(m.addCalls)
			m.posts[i] = m.posts[i].AppendComment(models.Comment{
				ID:      fmt.Sprintf("new%d", n),
				Content: args.Content,
				Author:  models.Author{ID: fmt.Sprintf("author%d", n), Name: args.AuthorName, Email: args.AuthorEmail},
			})
			return &models.Post{ID: m.posts[i].ID, Comments: m.posts[i].Comments}, nil
		}
	}
	return nil, errors.New("post not found")
}

// stallingAPI holds back and then fails submissions with content "doomed",
// delegating every other call to the embedded mockAPI
type stallingAPI struct {
	*mockAPI
	release chan struct{}
	started chan struct{}
}

func (s *stallingAPI) AddCommentToPost(ctx context.Context, args models.AddCommentArgs) (*models.Post, error) {
	if args.Content != "doomed" {
		return s.mockAPI.AddCommentToPost(ctx, args)
	}
	close(s.started)
	<-s.release
	return nil, errBackend
}

func (m *mockAPI) calls() (int, []models.AddCommentArgs) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.fetchCalls, append([]models.AddCommentArgs(nil), m.addCalls...)
}

func testPosts() []models.Post {
	return []models.Post{
		{
			ID:    "p1",
			Title: "First",
			Body:  "First body",
			Comments: []models.Comment{
				{ID: "c1", Content: "hello", Author: models.Author{ID: "a1", Name: "Ann", Email: "ann@x.com"}},
			},
		},
		{ID: "p2", Title: "Second", Body: "Second body", Comments: []models.Comment{}},
	}
}
