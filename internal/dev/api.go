package dev

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/router"
)

// queryPrefix marks /generate arguments that go to the query string.
const queryPrefix = "query."

// RouteInfo describes one matcher in the /routes listing.
type RouteInfo struct {
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualifiedName"`
	Path          string   `json:"path"`
	Params        []string `json:"params,omitempty"`
	Index         bool     `json:"index,omitempty"`
}

// MatchResult is the JSON form of a match.
type MatchResult struct {
	Path     string            `json:"path"`
	Route    string            `json:"route"`
	Routes   []string          `json:"routes"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
	Query    map[string]string `json:"query"`
}

// NewMatchResult converts m.
func NewMatchResult(m *router.Match) *MatchResult {
	return &MatchResult{
		Path:     m.Path,
		Route:    m.Route().Name,
		Routes:   m.Names(),
		Template: m.Matcher.Path,
		Params:   m.Params,
		Query:    m.Query.Map(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/routes", s.handleRoutes)
	r.Get("/match", s.handleMatch)
	r.Get("/generate/{name}", s.handleGenerate)
	r.Get("/ws", s.hub.HandleWebSocket)
	if s.metrics != nil {
		if h := s.metrics.Handler(); h != nil {
			r.Handle("/metrics", h)
		}
	}
	return r
}

func (s *Server) handleRoutes(w http.ResponseWriter, req *http.Request) {
	r := s.Router()
	if r == nil {
		writeError(w, http.StatusServiceUnavailable, ErrNotLoaded)
		return
	}

	matchers := r.Matchers()
	out := make([]RouteInfo, 0, len(matchers))
	for _, m := range matchers {
		route := m.Route()
		out = append(out, RouteInfo{
			Name:          route.Name,
			QualifiedName: route.QualifiedName(),
			Path:          m.Path,
			Params:        m.ParamNames,
			Index:         route.IsIndex(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMatch(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Query().Get("path")
	m := s.resolver.MatchContext(req.Context(), path)
	if m == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no route matches " + path})
		return
	}
	writeJSON(w, http.StatusOK, NewMatchResult(m))
}

func (s *Server) handleGenerate(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")
	values := req.URL.Query()

	params := make(map[string]string)
	q := make(map[string]string)
	for key := range values {
		switch {
		case key == "arg":
		case strings.HasPrefix(key, queryPrefix):
			q[strings.TrimPrefix(key, queryPrefix)] = values.Get(key)
		default:
			params[key] = values.Get(key)
		}
	}

	url, err := s.generate(req.Context(), name, values["arg"], params, q)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case stderrors.Is(err, router.ErrUnknownRoute):
			status = http.StatusNotFound
		case stderrors.Is(err, ErrNotLoaded):
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) generate(ctx context.Context, name string, args []string, params, q map[string]string) (string, error) {
	return s.resolver.GenerateContext(ctx, name, GenerateArgs(args, params, q)...)
}

// GenerateArgs builds router Generate arguments: positional values
// followed by one mapping for named and query parameters.
func GenerateArgs(args []string, params, q map[string]string) []any {
	out := make([]any, 0, len(args)+1)
	for _, a := range args {
		out = append(out, a)
	}
	if len(params) == 0 && len(q) == 0 {
		return out
	}

	mapping := make(router.Params, len(params)+1)
	for k, v := range params {
		mapping[k] = v
	}
	if len(q) > 0 {
		qp := make(router.Params, len(q))
		for k, v := range q {
			qp[k] = v
		}
		mapping[router.QueryParamsKey] = qp
	}
	return append(out, mapping)
}

// handleMessage answers live channel requests.
func (s *Server) handleMessage(req Message) *Message {
	ctx := context.Background()

	switch req.Type {
	case TypeMatch:
		m := s.resolver.MatchContext(ctx, req.Path)
		if m == nil {
			return &Message{Type: TypeMatch, ID: req.ID, Path: req.Path}
		}
		if r := s.Router(); r != nil {
			if err := router.Compose(m, r.Middleware(), func() error { return nil }); err != nil {
				return &Message{Type: TypeError, ID: req.ID, Path: req.Path, Code: errorCode(err), Error: err.Error()}
			}
		}
		return &Message{Type: TypeMatch, ID: req.ID, Path: req.Path, Match: NewMatchResult(m)}

	case TypeGenerate:
		url, err := s.generate(ctx, req.Name, req.Args, req.Params, req.Query)
		if err != nil {
			return &Message{Type: TypeError, ID: req.ID, Name: req.Name, Code: errorCode(err), Error: err.Error()}
		}
		return &Message{Type: TypeGenerate, ID: req.ID, Name: req.Name, URL: url}
	}

	return &Message{Type: TypeError, ID: req.ID, Error: "unknown message type " + string(req.Type)}
}

func errorCode(err error) string {
	var e *rterrors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errorCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
