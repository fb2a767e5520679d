package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"postview/app/models"
)

// Request is a GraphQL request received by the Server
type Request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// Server is an in-memory GraphQL backend implementing the posts query and
// the addComment mutation.
type Server struct {
	*httptest.Server

	mutex    sync.Mutex
	posts    []models.Post
	nextID   int
	failing  bool
	requests []Request
}

// NewServer starts a Server seeded with posts
func NewServer(posts ...models.Post) *Server {
	s := &Server{posts: posts, nextID: 1}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetFailing makes every subsequent request fail with a 500
func (s *Server) SetFailing(failing bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failing = failing
}

// SetPosts replaces the served posts
func (s *Server) SetPosts(posts ...models.Post) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.posts = posts
}

// Requests returns a copy of every request received so far
func (s *Server) Requests() []Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountOperation returns how many received requests contained operation
func (s *Server) CountOperation(operation string) int {
	count := 0
	for _, req := range s.Requests() {
		if strings.Contains(req.Query, operation) {
			count++
		}
	}
	return count
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requests = append(s.requests, req)

	if s.failing {
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if strings.HasPrefix(strings.TrimSpace(req.Query), "mutation") {
		s.addComment(w, req.Variables)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{"posts": s.posts},
	})
}

func (s *Server) addComment(w http.ResponseWriter, vars map[string]interface{}) {
	postID, _ := vars["postId"].(string)
	content, _ := vars["content"].(string)
	name, _ := vars["authorName"].(string)
	email, _ := vars["authorEmail"].(string)

	for i := range s.posts {
		if s.posts[i].ID != postID {
			continue
		}
		id := s.nextID
		s.nextID++
		s.posts[i] = s.posts[i].AppendComment(models.Comment{
			ID:      fmt.Sprintf("c%d", id),
			Content: content,
			Author:  models.Author{ID: fmt.Sprintf("a%d", id), Name: name, Email: email},
		})
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"addComment": models.Post{ID: s.posts[i].ID, Comments: s.posts[i].Comments},
			},
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":   nil,
		"errors": []map[string]string{{"message": "post not found"}},
	})
}
