package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBindLookup(t *testing.T) {
	r := newConnectionRegistry()
	c := newTestClient()

	_, ok := r.lookup(c)
	require.False(t, ok)

	r.bind(c, "sess-1", "player-1")

	b, ok := r.lookup(c)
	require.True(t, ok)
	assert.Equal(t, "sess-1", b.sessionID)
	assert.Equal(t, "player-1", b.playerID)

	assert.Same(t, c, r.find("sess-1", "player-1"))
	assert.Nil(t, r.find("sess-1", "player-2"))
	assert.Nil(t, r.find("sess-2", "player-1"))
}

func TestRegistryRebindReplaces(t *testing.T) {
	r := newConnectionRegistry()
	c := newTestClient()

	r.bind(c, "sess-1", "player-1")
	r.bind(c, "sess-2", "player-1")

	b, ok := r.lookup(c)
	require.True(t, ok)
	assert.Equal(t, "sess-2", b.sessionID)

	assert.Empty(t, r.clients("sess-1"))
	assert.Len(t, r.clients("sess-2"), 1)
}

func TestRegistryFanOutScope(t *testing.T) {
	r := newConnectionRegistry()
	a, b, other := newTestClient(), newTestClient(), newTestClient()

	r.bind(a, "sess-1", "pa")
	r.bind(b, "sess-1", "pb")
	r.bind(other, "sess-2", "pc")

	assert.Len(t, r.clients("sess-1"), 2)
	assert.Len(t, r.clients("sess-2"), 1)

	r.unbind(a)
	assert.Len(t, r.clients("sess-1"), 1)

	r.unbind(b)
	assert.Empty(t, r.clients("sess-1"))

	// Unbinding twice is harmless.
	r.unbind(b)
	assert.Empty(t, r.clients("sess-1"))
}
