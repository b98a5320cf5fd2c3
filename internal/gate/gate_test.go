package gate_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"todod/internal/database"
	"todod/internal/gate"
	"todod/internal/identity"
)

func setup(t *testing.T) *identity.Provider {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "todod.*.db")
	require.NoError(t, err)
	filename := tmpfile.Name()
	tmpfile.Close()

	db, err := database.StormOpen(filename)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(filename)
	})

	return identity.NewProvider(identity.NewService(db))
}

func next(t *testing.T, g *gate.Gate) gate.State {
	t.Helper()

	select {
	case state, ok := <-g.Changes():
		require.True(t, ok, "gate closed")
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("no state transition")
		return gate.State{}
	}
}

func TestGateResolvesToAnonymous(t *testing.T) {
	g := gate.New(setup(t))
	defer g.Close()

	state := next(t, g)
	assert.Equal(t, gate.Anonymous, state.Phase)
	assert.Nil(t, state.Identity)
	assert.Equal(t, gate.Anonymous, g.State().Phase)
}

func TestGateResolvesToAuthenticated(t *testing.T) {
	provider := setup(t)
	user, err := provider.SignUp("george.abitbol@nowhere.lan", "password42")
	require.NoError(t, err)

	g := gate.New(provider)
	defer g.Close()

	state := next(t, g)
	assert.Equal(t, gate.Authenticated, state.Phase)
	require.NotNil(t, state.Identity)
	assert.Equal(t, user.ID, state.Identity.ID)
}

func TestGateFollowsSignInAndOut(t *testing.T) {
	provider := setup(t)
	g := gate.New(provider)
	defer g.Close()

	assert.Equal(t, gate.Anonymous, next(t, g).Phase)

	user, err := provider.SignUp("george.abitbol@nowhere.lan", "password42")
	require.NoError(t, err)
	state := next(t, g)
	assert.Equal(t, gate.Authenticated, state.Phase)
	assert.Equal(t, user.ID, state.Identity.ID)

	require.NoError(t, provider.SignOut())
	state = next(t, g)
	assert.Equal(t, gate.Anonymous, state.Phase)
	assert.Nil(t, state.Identity)
}

func TestGateClose(t *testing.T) {
	g := gate.New(setup(t))
	next(t, g)

	g.Close()

	select {
	case _, ok := <-g.Changes():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("changes channel not closed")
	}
}

func TestGateInitialStateIsResolving(t *testing.T) {
	// Before the first notification lands, the state must read as resolving.
	assert.Equal(t, "resolving", gate.Resolving.String())
	assert.Equal(t, gate.State{Phase: gate.Resolving}, gate.State{})
}
