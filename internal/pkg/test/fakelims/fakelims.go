package fakelims

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/withrocks/genologics/internal/pkg/infrastructure/router"
)

// APIPlaceholder is replaced with the api root of the server in every body it serves.
const APIPlaceholder = "{api}"

const exceptionNotFound string = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<exc:exception xmlns:exc="http://genologics.com/ri/exception"><message>%s not found</message></exc:exception>`

type Request struct {
	Method string
	URL    string
	Body   string
}

type response struct {
	code int
	body string
}

// Server is an in-memory LIMS that answers with canned documents and
// remembers every request it received.
type Server struct {
	mu        sync.Mutex
	server    *httptest.Server
	responses map[string]response
	requests  []Request
}

func New() *Server {
	s := &Server{
		responses: map[string]response{},
	}

	r := router.New("fake-lims")
	r.Get("/api", s.handle)
	r.Get("/api/{version}/*", s.handle)
	r.Put("/api/{version}/*", s.handle)
	r.Post("/api/{version}/*", s.handle)

	s.server = httptest.NewServer(r)

	return s
}

func (s *Server) URL() string {
	return s.server.URL
}

// APIRoot is the root of the v2 api, e.g. http://127.0.0.1:4711/api/v2
func (s *Server) APIRoot() string {
	return s.server.URL + "/api/v2"
}

// Serve registers a document returned for GET requests to path. The path is
// relative to the api root and may carry a query.
func (s *Server) Serve(path, body string) *Server {
	return s.Respond(http.MethodGet, path, http.StatusOK, body)
}

// Respond registers the status code and body returned for method and path.
// Like the LIMS, the server only routes GET, PUT and POST.
func (s *Server) Respond(method, path string, code int, body string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[key(method, "/api/v2/"+strings.TrimPrefix(path, "/"))] = response{code: code, body: body}

	return s
}

func key(method, requestURI string) string {
	return method + " " + requestURI
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		URL:    s.server.URL + r.URL.RequestURI(),
		Body:   string(body),
	})

	resp, ok := s.responses[key(r.Method, r.URL.RequestURI())]
	if !ok {
		resp, ok = s.responses[key(r.Method, r.URL.Path)]
	}
	s.mu.Unlock()

	w.Header().Add("Content-Type", "application/xml")

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(fmt.Sprintf(exceptionNotFound, r.URL.Path)))
		return
	}

	w.WriteHeader(resp.code)
	w.Write([]byte(strings.ReplaceAll(resp.body, APIPlaceholder, s.APIRoot())))
}

// Requests returns every request received so far, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Request{}, s.requests...)
}

func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// CountFor returns the number of requests made to a path relative to the
// api root, ignoring any query.
func (s *Server) CountFor(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.APIRoot() + "/" + strings.TrimPrefix(path, "/")

	count := 0
	for _, r := range s.requests {
		u, _, _ := strings.Cut(r.URL, "?")
		if u == target {
			count++
		}
	}

	return count
}

func (s *Server) Close() {
	s.server.Close()
}
