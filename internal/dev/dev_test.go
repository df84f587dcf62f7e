package dev

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/routetree/pkg/router"
)

const applicationJSON = `{
  "routes": [
    {
      "name": "application",
      "routes": [
        {"name": "home", "path": ""},
        {"name": "notifications"},
        {"name": "messages"},
        {"name": "status", "path": ":user/status/:id"}
      ]
    }
  ]
}
`

func writeRoutes(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "routes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestServer(t *testing.T, options ServerOptions) (*Server, *httptest.Server) {
	t.Helper()
	if options.Routes == "" {
		options.Routes = writeRoutes(t, t.TempDir(), applicationJSON)
	}
	options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewServer(options)
	require.NoError(t, s.Load(context.Background()))

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Hub().Close()
	})
	return s, ts
}

func getJSON(t *testing.T, rawURL string, v any) int {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestServerRoutes(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{})

	var routes []RouteInfo
	status := getJSON(t, ts.URL+"/routes", &routes)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, routes, 4)
	assert.Equal(t, "home", routes[0].Name)
	assert.Equal(t, RouteInfo{
		Name:          "status",
		QualifiedName: "application.status",
		Path:          "/application/:user/status/:id",
		Params:        []string{"user", "id"},
	}, routes[3])
}

func TestServerMatch(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{})

	q := url.Values{"path": {"/application/KidkArolis/status/42?withReplies=true"}}
	var result MatchResult
	status := getJSON(t, ts.URL+"/match?"+q.Encode(), &result)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, MatchResult{
		Path:     "/application/KidkArolis/status/42",
		Route:    "status",
		Routes:   []string{"application", "status"},
		Template: "/application/:user/status/:id",
		Params:   map[string]string{"user": "KidkArolis", "id": "42"},
		Query:    map[string]string{"withReplies": "true"},
	}, result)

	var miss errorResponse
	status = getJSON(t, ts.URL+"/match?path=/elsewhere", &miss)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, miss.Error, "/elsewhere")
}

func TestServerGenerate(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{})

	tests := []struct {
		name   string
		query  string
		status int
		url    string
		code   string
	}{
		{"positional", "arg=foo&arg=1&query.withReplies=true", http.StatusOK, "#application/foo/status/1?withReplies=true", ""},
		{"named", "user=foo&id=1", http.StatusOK, "#application/foo/status/1", ""},
		{"missing", "user=foo", http.StatusBadRequest, "", "R002"},
		{"extra", "arg=a&arg=b&arg=c", http.StatusBadRequest, "", "R009"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			status := getJSON(t, ts.URL+"/generate/status?"+tt.query, &body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.url, body["url"])
			assert.Equal(t, tt.code, body["code"])
		})
	}

	var body map[string]string
	status := getJSON(t, ts.URL+"/generate/missing", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "R003", body["code"])
}

func TestServerMetrics(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{Metrics: true})

	var result MatchResult
	getJSON(t, ts.URL+"/match?path=/application/messages", &result)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `routetree_matches_total{result="hit",route="messages"} 1`)
}

func TestServerMetricsDisabled(t *testing.T) {
	s, ts := newTestServer(t, ServerOptions{})
	assert.Nil(t, s.Metrics())

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerLoadFailureKeepsRouter(t *testing.T) {
	dir := t.TempDir()
	path := writeRoutes(t, dir, applicationJSON)
	s, _ := newTestServer(t, ServerOptions{Routes: path})
	before := s.Router()

	writeRoutes(t, dir, `{"routes": [{"name": "a"}, {"name": "a"}]}`)
	err := s.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, before, s.Router())
	assert.NotNil(t, s.Match("/application/messages"))

	writeRoutes(t, dir, `{"routes": [{"name": "about"}]}`)
	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, router.StateDestroyed, before.State())
	assert.Nil(t, s.Match("/application/messages"))
	assert.NotNil(t, s.Match("/about"))
}

func TestServerBeforeLoad(t *testing.T) {
	s := NewServer(ServerOptions{Routes: "routes.json"})
	assert.Nil(t, s.Router())
	assert.Nil(t, s.Match("/application"))

	_, err := s.Generate("application")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.NotErrorIs(t, err, router.ErrInvariantViolation)
	assert.NotContains(t, err.Error(), "listen")

	for _, path := range []string{"/routes", "/generate/application"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "R105", body["code"], path)
	}
}

func dialHub(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, TypeHello, hello.Type)
	require.NotEmpty(t, hello.Client)
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, req Message) Message {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestHubRequests(t *testing.T) {
	s, ts := newTestServer(t, ServerOptions{})
	conn := dialHub(t, ts)
	assert.Equal(t, 1, s.Hub().ClientCount())

	reply := exchange(t, conn, Message{Type: TypeMatch, ID: "1", Path: "#application/messages"})
	assert.Equal(t, TypeMatch, reply.Type)
	assert.Equal(t, "1", reply.ID)
	require.NotNil(t, reply.Match)
	assert.Equal(t, "messages", reply.Match.Route)

	reply = exchange(t, conn, Message{Type: TypeMatch, ID: "2", Path: "/nowhere"})
	assert.Equal(t, TypeMatch, reply.Type)
	assert.Equal(t, "2", reply.ID)
	assert.Nil(t, reply.Match)

	reply = exchange(t, conn, Message{
		Type:  TypeGenerate,
		ID:    "3",
		Name:  "status",
		Args:  []string{"foo", "1"},
		Query: map[string]string{"tab": "replies"},
	})
	assert.Equal(t, TypeGenerate, reply.Type)
	assert.Equal(t, "#application/foo/status/1?tab=replies", reply.URL)

	reply = exchange(t, conn, Message{Type: TypeGenerate, ID: "4", Name: "missing"})
	assert.Equal(t, TypeError, reply.Type)
	assert.Equal(t, "R003", reply.Code)

	reply = exchange(t, conn, Message{Type: "bogus", ID: "5"})
	assert.Equal(t, TypeError, reply.Type)
	assert.Equal(t, "5", reply.ID)
}

func TestHubReloadBroadcast(t *testing.T) {
	dir := t.TempDir()
	path := writeRoutes(t, dir, applicationJSON)

	reloads := 0
	s, ts := newTestServer(t, ServerOptions{
		Routes:   path,
		OnReload: func(int) { reloads++ },
	})
	conn := dialHub(t, ts)

	require.NoError(t, s.Reload(context.Background()))
	var reload Message
	require.NoError(t, conn.ReadJSON(&reload))
	assert.Equal(t, TypeReload, reload.Type)
	assert.Equal(t, path, reload.File)
	assert.Equal(t, 1, reloads)

	writeRoutes(t, dir, `{"routes": []}`)
	require.Error(t, s.Reload(context.Background()))
	var failure Message
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Equal(t, TypeError, failure.Type)
	assert.Equal(t, "R101", failure.Code)
	assert.Equal(t, 1, reloads)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := writeRoutes(t, dir, applicationJSON)
	other := filepath.Join(dir, "other.json")

	w := NewWatcher(WatcherConfig{
		Files:    []string{path},
		Debounce: 20 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	w.OnChange(func(c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, w.IsRunning, time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("{}"), 0644))
	writeRoutes(t, dir, `{"routes": [{"name": "about"}]}`)

	select {
	case c := <-changes:
		assert.Equal(t, filepath.Base(path), filepath.Base(c.Path))
		assert.False(t, c.Removed())
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	w.Stop()
	require.Eventually(t, func() bool { return !w.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestServerWatchesLocalFilesOnly(t *testing.T) {
	s := NewServer(ServerOptions{Routes: "routes.json", Watch: true})
	assert.NotNil(t, s.watcher)

	s = NewServer(ServerOptions{Routes: "s3://bucket/routes.json", Watch: true})
	assert.Nil(t, s.watcher)
}

func TestGenerateArgs(t *testing.T) {
	assert.Equal(t, []any{"foo", "1"}, GenerateArgs([]string{"foo", "1"}, nil, nil))
	assert.Equal(t, []any{
		"foo",
		router.Params{"id": "1", router.QueryParamsKey: router.Params{"tab": "x"}},
	}, GenerateArgs([]string{"foo"}, map[string]string{"id": "1"}, map[string]string{"tab": "x"}))
}
