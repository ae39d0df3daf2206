package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/apiclient/errors"
	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/logger"
)

// RequestIDHeader is echoed back, or generated when absent.
const RequestIDHeader = "X-Request-Id"

// Route is one canned answer.
type Route struct {
	Method      string
	Path        string
	Status      int
	Body        string
	ContentType string
	// Delay holds the answer back, for timeout tests.
	Delay time.Duration
	// Handler replaces the canned answer when set.
	Handler gin.HandlerFunc
}

// JSON answers with an application/json body.
func JSON(method, path string, status int, body string) Route {
	return Route{Method: method, Path: path, Status: status, Body: body, ContentType: format.MIMEJSON}
}

// XML answers with an application/xml body.
func XML(method, path string, status int, body string) Route {
	return Route{Method: method, Path: path, Status: status, Body: body, ContentType: format.MIMEXML}
}

// YAML answers with an application/yaml body.
func YAML(method, path string, status int, body string) Route {
	return Route{Method: method, Path: path, Status: status, Body: body, ContentType: format.MIMEYAML}
}

// Failure answers with err in the standard error envelope and its HTTP status.
func Failure(method, path string, err *errors.AppError) Route {
	body, _ := json.Marshal(err.ToResponse())
	return JSON(method, path, err.HTTPStatus, string(body))
}

// Recorded is what the server saw for a request.
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a running stub API.
type Server struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
	last map[string]Recorded
}

func init() {
	gin.SetMode(gin.TestMode)
}

// New starts a server with routes and closes it when the test ends.
func New(t testing.TB, routes ...Route) *Server {
	t.Helper()
	s := Start(routes...)
	t.Cleanup(s.Close)
	return s
}

// Start starts a server outside of a test; the caller closes it.
func Start(routes ...Route) *Server {
	s := &Server{
		hits: make(map[string]int),
		last: make(map[string]Recorded),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), s.record(), requestLogger(logger.Get("apitest")))
	for _, r := range routes {
		engine.Handle(r.Method, r.Path, r.handler())
	}

	s.Server = httptest.NewServer(engine)
	return s
}

func (r Route) handler() gin.HandlerFunc {
	if r.Handler != nil {
		return r.Handler
	}
	return func(c *gin.Context) {
		if r.Delay > 0 {
			select {
			case <-time.After(r.Delay):
			case <-c.Request.Context().Done():
				return
			}
		}
		ct := r.ContentType
		if ct == "" {
			ct = "text/plain; charset=utf-8"
		}
		c.Data(r.Status, ct, []byte(r.Body))
	}
}

func key(method, path string) string { return method + " " + path }

// record counts the request and keeps a copy of it before routing.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		k := key(c.Request.Method, c.Request.URL.Path)

		s.mu.Lock()
		s.hits[k]++
		s.last[k] = Recorded{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.Query(),
			Header: c.Request.Header.Clone(),
			Body:   body,
		}
		s.mu.Unlock()

		c.Next()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("stub request", logger.MergeWithDuration(logger.Fields(
			logger.FieldMethod, c.Request.Method,
			logger.FieldURL, c.Request.URL.String(),
			logger.FieldStatus, c.Writer.Status(),
		), time.Since(start)))
	}
}

// Hits returns how often method and path were requested.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key(method, path)]
}

// TotalHits returns the number of requests across all paths.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

// Last returns the most recent request for method and path.
func (s *Server) Last(method, path string) (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[key(method, path)]
	return r, ok
}
