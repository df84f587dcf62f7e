package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusView struct {
	User    string   `param:"user"`
	ID      int      `param:"id"`
	Replies bool     `query:"withReplies"`
	Page    uint     `query:"page"`
	Tags    []string `query:"tags"`
	Ignored string   `query:"-"`
	Plain   string
}

func TestMatchBind(t *testing.T) {
	m := applicationMatchers(t).Match("/application/KidkArolis/status/42?withReplies=true&tags=a,b&Plain=x&-=y")
	require.NotNil(t, m)

	v := statusView{Page: 3}
	require.NoError(t, m.Bind(&v))
	assert.Equal(t, statusView{
		User:    "KidkArolis",
		ID:      42,
		Replies: true,
		Page:    3,
		Tags:    []string{"a", "b"},
	}, v)
}

func TestMatchBindErrors(t *testing.T) {
	m := applicationMatchers(t).Match("/application/KidkArolis/status/abc")
	require.NotNil(t, m)

	var v statusView
	err := m.Bind(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `param "id"`)

	assert.Error(t, m.Bind(v))
	assert.Error(t, m.Bind(nil))
	var nilPtr *statusView
	assert.Error(t, m.Bind(nilPtr))
	n := 1
	assert.Error(t, m.Bind(&n))
}

func TestMatchAccessors(t *testing.T) {
	m := applicationMatchers(t).Match("/application/foo/status/1")
	require.NotNil(t, m)

	assert.Equal(t, "status", m.Route().Name)
	assert.Equal(t, "/application/foo/status/1", m.Path)
	assert.Equal(t, "status", m.Matcher.Name())
	assert.True(t, m.Includes("application"))
	assert.True(t, m.Includes("application.status"))
	assert.False(t, m.Includes("messages"))
}
