package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpenIsolatesBrowsers(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore())

	a, err := m.Open(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, a.Login(ctx, "token-a"))

	b, err := m.Open(ctx, "b")
	require.NoError(t, err)
	assert.False(t, b.IsAuthenticated())

	again, err := m.Open(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "token-a", again.Token())
	assert.Equal(t, TokenKey+":a", again.Key())
}

func TestManager_OnChange(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore())

	var got []string
	m.OnChange(func(sid string, st State) {
		if st.IsAuthenticated {
			got = append(got, sid+":in")
		} else {
			got = append(got, sid+":out")
		}
	})

	s, err := m.Open(ctx, "x")
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "t"))
	require.NoError(t, s.Logout(ctx))

	assert.Equal(t, []string{"x:in", "x:out"}, got)
}

func TestKeyForAndIDs(t *testing.T) {
	assert.Equal(t, TokenKey, KeyFor(""))
	id := NewID()
	assert.True(t, ValidID(id))
	assert.False(t, ValidID("../../etc"))
	assert.Equal(t, TokenKey+":"+id, KeyFor(id))
}
