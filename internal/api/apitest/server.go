// Package apitest provides an in-memory fake of the context API for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Request records one call made against the fake
type Request struct {
	Method string
	Path   string
	Body   string
}

// Server is an httptest server holding documents keyed by endpoint path
type Server struct {
	*httptest.Server

	token string

	mu       sync.Mutex
	docs     map[string]string
	statuses map[string]int
	requests []Request
}

// NewServer starts a fake API accepting the given bearer token
func NewServer(token string) *Server {
	s := &Server{
		token:    token,
		docs:     make(map[string]string),
		statuses: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetDocument sets the content served for endpoint
func (s *Server) SetDocument(endpoint, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[endpoint] = content
}

// Document returns the stored content for endpoint
func (s *Server) Document(endpoint string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.docs[endpoint]
	return content, ok
}

// FailWith makes every request to endpoint answer with status
func (s *Server) FailWith(endpoint string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[endpoint] = status
}

// Recover clears a failure set with FailWith
func (s *Server) Recover(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.statuses, endpoint)
}

// Requests returns a copy of every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsFor returns the requests received with the given method
func (s *Server) RequestsFor(method string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})

	if r.Header.Get("Authorization") != "Bearer "+s.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if status, ok := s.statuses[r.URL.Path]; ok {
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		content, ok := s.docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, content)

	case http.MethodPut:
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			http.Error(w, "expected application/json", http.StatusUnsupportedMediaType)
			return
		}
		var payload struct {
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(body, &payload); err != nil || payload.Content == nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		s.docs[r.URL.Path] = *payload.Content
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true}`)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
