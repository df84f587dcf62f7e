package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applicationMatchers(t *testing.T) Matchers {
	t.Helper()
	_, matchers, err := Build(applicationRoutes)
	require.NoError(t, err)
	return Matchers(matchers)
}

func TestMatchersMatch(t *testing.T) {
	ms := applicationMatchers(t)

	tests := []struct {
		name   string
		path   string
		routes []string
		params map[string]string
		query  map[string]string
	}{
		{
			name:   "params",
			path:   "/application/KidkArolis/status/42",
			routes: []string{"application", "status"},
			params: map[string]string{"user": "KidkArolis", "id": "42"},
			query:  map[string]string{},
		},
		{
			name:   "query",
			path:   "/application/KidkArolis/status/42?withReplies=true&foo=bar",
			routes: []string{"application", "status"},
			params: map[string]string{"user": "KidkArolis", "id": "42"},
			query:  map[string]string{"withReplies": "true", "foo": "bar"},
		},
		{
			name:   "fragment",
			path:   "#application/messages",
			routes: []string{"application", "messages"},
			params: map[string]string{},
			query:  map[string]string{},
		},
		{
			name:   "index child",
			path:   "/application",
			routes: []string{"application", "home"},
			params: map[string]string{},
			query:  map[string]string{},
		},
		{
			name:   "encoded",
			path:   "/application/J%C3%BCrgen/status/7?q=a%20b+c",
			routes: []string{"application", "status"},
			params: map[string]string{"user": "Jürgen", "id": "7"},
			query:  map[string]string{"q": "a b c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ms.Match(tt.path)
			require.NotNil(t, m)
			assert.Equal(t, tt.routes, m.Names())
			assert.Equal(t, tt.params, m.Params)
			assert.Equal(t, tt.query, m.Query.Map())
			assert.NotNil(t, m.Query)
		})
	}
}

func TestMatchersNoMatch(t *testing.T) {
	ms := applicationMatchers(t)
	for _, path := range []string{
		"/",
		"/nope",
		"/application/messages/",
		"/Application",
		"/application/KidkArolis/status",
		"/application/KidkArolis/status/42/extra",
	} {
		assert.Nil(t, ms.Match(path), path)
	}
	assert.Nil(t, Matchers(nil).Match("/"))
}

func TestMatchersQueryOrder(t *testing.T) {
	m := applicationMatchers(t).Match("/application/messages?b=1&a=2&b=3")
	require.NotNil(t, m)
	assert.Equal(t, []string{"b", "a"}, m.Query.Keys())
	v, _ := m.Query.Get("b")
	assert.Equal(t, "3", v)
}

func TestMatchersLookup(t *testing.T) {
	ms := applicationMatchers(t)

	m, ok := ms.Lookup("status")
	require.True(t, ok)
	assert.Equal(t, "/application/:user/status/:id", m.Path)

	m, ok = ms.Lookup("application.status")
	require.True(t, ok)
	assert.Equal(t, "status", m.Name())

	m, ok = ms.Lookup("application")
	require.True(t, ok)
	assert.Equal(t, "home", m.Name())
	assert.Equal(t, "/application", m.Path)

	_, ok = ms.Lookup("application.missing")
	assert.False(t, ok)
	_, ok = ms.Lookup("missing")
	assert.False(t, ok)
}

func TestMatchersGenerate(t *testing.T) {
	ms := applicationMatchers(t)

	tests := []struct {
		name  string
		route string
		args  []any
		want  string
	}{
		{
			name:  "mapping",
			route: "status",
			args:  []any{Params{"user": "foo", "id": 1, "queryParams": Params{"withReplies": true}}},
			want:  "/application/foo/status/1?withReplies=true",
		},
		{
			name:  "positional",
			route: "status",
			args:  []any{"foo", 1, Params{"queryParams": map[string]any{"withReplies": true}}},
			want:  "/application/foo/status/1?withReplies=true",
		},
		{
			name:  "positional only",
			route: "status",
			args:  []any{"foo", 1},
			want:  "/application/foo/status/1",
		},
		{
			name:  "positional then mapping",
			route: "status",
			args:  []any{"foo", map[string]any{"id": 9}},
			want:  "/application/foo/status/9",
		},
		{
			name:  "positional wins over mapping",
			route: "status",
			args:  []any{"foo", 1, map[string]string{"user": "bar"}},
			want:  "/application/foo/status/1",
		},
		{
			name:  "string map",
			route: "status",
			args:  []any{map[string]string{"user": "foo", "id": "1"}},
			want:  "/application/foo/status/1",
		},
		{
			name:  "static",
			route: "messages",
			want:  "/application/messages",
		},
		{
			name:  "parent",
			route: "application",
			want:  "/application",
		},
		{
			name:  "qualified name",
			route: "application.messages",
			want:  "/application/messages",
		},
		{
			name:  "empty query",
			route: "messages",
			args:  []any{Params{"queryParams": Params{}}},
			want:  "/application/messages",
		},
		{
			name:  "query sorted and escaped",
			route: "messages",
			args:  []any{Params{"queryParams": Params{"q": "a b&c", "page": 2, "skip": nil}}},
			want:  "/application/messages?page=2&q=a%20b%26c",
		},
		{
			name:  "encoded params",
			route: "status",
			args:  []any{"a b/c", "ü"},
			want:  "/application/a%20b%2Fc/status/%C3%BC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ms.Generate(tt.route, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchersParentRoutes(t *testing.T) {
	_, matchers, err := Build(func(b *Builder) {
		b.Route("index")
		b.Route("foo")
		b.Route("bar", Children(func(b *Builder) {
			b.Route("bar.index")
		}))
		b.Route("users", Children(func(b *Builder) {
			b.Route("user", Path(":id"), Children(func(b *Builder) {
				b.Route("profile")
			}))
		}))
	})
	require.NoError(t, err)
	ms := Matchers(matchers)

	tests := []struct {
		path   string
		routes []string
	}{
		{"/", []string{"index"}},
		{"/foo", []string{"foo"}},
		{"/bar", []string{"bar", "bar.index"}},
		{"/users/7/profile", []string{"users", "user", "profile"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := ms.Match(tt.path)
			require.NotNil(t, m)
			assert.Equal(t, tt.routes, m.Names())
		})
	}
	assert.Nil(t, ms.Match("/users"))
	assert.Nil(t, ms.Match("/users/7"))

	m, ok := ms.Lookup("bar")
	require.True(t, ok)
	assert.Equal(t, "bar.index", m.Name())

	m, ok = ms.Lookup("user")
	require.True(t, ok)
	assert.Equal(t, "user", m.Name())
	assert.Equal(t, []string{"id"}, m.ParamNames)

	got, err := ms.Generate("user", 7)
	require.NoError(t, err)
	assert.Equal(t, "/users/7", got)

	got, err = ms.Generate("users.user.profile", Params{"id": "x"})
	require.NoError(t, err)
	assert.Equal(t, "/users/x/profile", got)
}

func TestMatchersGenerateErrors(t *testing.T) {
	ms := applicationMatchers(t)

	tests := []struct {
		name  string
		route string
		args  []any
		want  error
	}{
		{name: "unknown", route: "missing", want: ErrUnknownRoute},
		{name: "missing param", route: "status", args: []any{"foo"}, want: ErrMissingParam},
		{name: "nil param", route: "status", args: []any{nil, 1}, want: ErrMissingParam},
		{name: "empty param", route: "status", args: []any{Params{"user": "", "id": 1}}, want: ErrMissingParam},
		{name: "too many", route: "messages", args: []any{"x"}, want: ErrUnexpectedParam},
		{name: "too many with mapping", route: "status", args: []any{"a", "b", "c", Params{}}, want: ErrUnexpectedParam},
		{name: "mapping not last", route: "status", args: []any{Params{}, "x"}, want: ErrUnexpectedParam},
		{name: "bad query", route: "messages", args: []any{Params{"queryParams": 42}}, want: ErrUnexpectedParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ms.Generate(tt.route, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMatchersRoundTrip(t *testing.T) {
	ms := applicationMatchers(t)

	for _, params := range []map[string]string{
		{"user": "KidkArolis", "id": "42"},
		{"user": "with space", "id": "a/b"},
		{"user": "100%", "id": "?#&="},
	} {
		path, err := ms.Generate("status", params)
		require.NoError(t, err)

		m := ms.Match(path)
		require.NotNil(t, m, path)
		assert.Equal(t, params, m.Params)

		again, err := ms.Generate("status", m.Params)
		require.NoError(t, err)
		assert.Equal(t, path, again)
	}
}
