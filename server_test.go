package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *GameServer {
	return newGameServer(&Config{
		rounds:         3,
		sessionTimeout: time.Hour,
	})
}

func newTestClient() *client {
	return &client{
		send:     make(chan any, 64),
		id:       uuid.NewString(),
		joinBase: "http://box.local/whispers/join/",
	}
}

// drain empties a client's send queue and returns what was pending.
func drain(c *client) []any {
	var msgs []any
	for {
		select {
		case msg := <-c.send:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// identityOrder makes the Fisher-Yates shuffle a no-op, so turn order
// equals join order in tests.
func identityOrder(n int) int {
	return n - 1
}

func fixedVariant(rounds int, prompts []string) *whispersVariant {
	return &whispersVariant{
		rounds:  rounds,
		prompts: prompts,
		intn:    identityOrder,
	}
}

func TestCreateSession(t *testing.T) {
	gs := newTestServer()
	board := newTestClient()

	gs.handleMessage(board, ClientMessage{Type: "create_session"})

	msgs := drain(board)
	require.Len(t, msgs, 1)

	created, ok := msgs[0].(SessionCreatedMessage)
	require.True(t, ok)
	assert.Equal(t, "session_created", created.Type)
	assert.Equal(t, board.joinBase+created.SessionID, created.URL)
	assert.Contains(t, created.QR, "data:image/png;base64,")

	sess, ok := gs.store.get(created.SessionID)
	require.True(t, ok)
	assert.Equal(t, StatusLobby, sess.Status)
	assert.Empty(t, sess.Players)

	// The board is in the broadcast scope but is not a player.
	b, ok := gs.registry.lookup(board)
	require.True(t, ok)
	assert.Equal(t, sess.ID, b.sessionID)
	assert.Empty(t, b.playerID)
}

func TestJoinUnknownSession(t *testing.T) {
	gs := newTestServer()
	c := newTestClient()

	gs.handleMessage(c, ClientMessage{Type: "join", SessionID: "nope", Name: "Alice"})

	msgs := drain(c)
	require.Len(t, msgs, 1)

	errMsg, ok := msgs[0].(ErrorMessage)
	require.True(t, ok)
	assert.Equal(t, ErrSessionNotFound.Error(), errMsg.Message)
}

func TestStartGameRequiresHost(t *testing.T) {
	gs := newTestServer()
	sess := gs.store.create()

	alice, bob := newTestClient(), newTestClient()
	require.NoError(t, gs.join(alice, sess.ID, "Alice"))
	require.NoError(t, gs.join(bob, sess.ID, "Bob"))

	err := gs.startGame(bob, ClientMessage{
		Type:      "start_game",
		SessionID: sess.ID,
		GameType:  whispersGameType,
	})
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, StatusLobby, sess.Status)
	assert.Nil(t, sess.Game)
}

func TestStartGameUnknownType(t *testing.T) {
	gs := newTestServer()
	sess := gs.store.create()

	alice := newTestClient()
	require.NoError(t, gs.join(alice, sess.ID, "Alice"))

	err := gs.startGame(alice, ClientMessage{
		Type:      "start_game",
		SessionID: sess.ID,
		GameType:  "mystery",
	})
	require.ErrorIs(t, err, ErrUnknownGame)
	assert.Equal(t, StatusLobby, sess.Status)
}

func TestSubmitWithoutGame(t *testing.T) {
	gs := newTestServer()
	sess := gs.store.create()

	alice := newTestClient()
	require.NoError(t, gs.join(alice, sess.ID, "Alice"))

	err := gs.submitContribution(alice, ClientMessage{
		Type:      "submit",
		SessionID: sess.ID,
		Data:      "doodle",
	})
	require.ErrorIs(t, err, ErrNoGame)
}

// Full happy path: create, two joins, host start, both players submit
// through every round, results revealed, session back in the lobby.
func TestWhispersScenario(t *testing.T) {
	gs := newTestServer()
	gs.variants[whispersGameType] = fixedVariant(2, []string{"first prompt", "second prompt"})

	board := newTestClient()
	gs.handleMessage(board, ClientMessage{Type: "create_session"})
	created := drain(board)[0].(SessionCreatedMessage)

	sess, ok := gs.store.get(created.SessionID)
	require.True(t, ok)

	alice, bob := newTestClient(), newTestClient()
	gs.handleMessage(alice, ClientMessage{Type: "join", SessionID: sess.ID, Name: "Alice"})
	gs.handleMessage(bob, ClientMessage{Type: "join", SessionID: sess.ID, Name: "Bob"})

	assert.Equal(t, alice.id, sess.Host)
	drain(board)
	drain(alice)
	drain(bob)

	gs.handleMessage(alice, ClientMessage{
		Type:      "start_game",
		SessionID: sess.ID,
		GameType:  whispersGameType,
	})

	require.Equal(t, StatusPlaying, sess.Status)
	require.NotNil(t, sess.Game)

	snapshot := sess.Game.Describe().(whispersSnapshot)
	assert.Equal(t, "awaiting_turn", snapshot.Phase)
	assert.Len(t, snapshot.PlayerOrder, 2)
	assert.Equal(t, 0, snapshot.CurrentIndex)

	// Everyone hears the start; only Alice gets the first turn.
	aliceMsgs := drain(alice)
	require.Len(t, aliceMsgs, 2)
	assert.Equal(t, "game_started", aliceMsgs[0].(GameStartedMessage).Type)
	firstTurn := aliceMsgs[1].(YourTurnMessage)
	assert.Equal(t, "first prompt", firstTurn.Prompt)
	assert.Empty(t, firstTurn.Previous)

	bobMsgs := drain(bob)
	require.Len(t, bobMsgs, 1)
	assert.Equal(t, "game_started", bobMsgs[0].(GameStartedMessage).Type)

	// Round 1: Alice draws the prompt, Bob re-draws from her drawing.
	gs.handleMessage(alice, ClientMessage{Type: "submit", SessionID: sess.ID, Data: "a1"})

	bobTurn := drain(bob)[0].(YourTurnMessage)
	assert.Empty(t, bobTurn.Prompt)
	assert.Equal(t, "a1", bobTurn.Previous)

	gs.handleMessage(bob, ClientMessage{Type: "submit", SessionID: sess.ID, Data: "b1"})

	// Round 2 begins with the next prompt, back at the top of the order.
	secondTurn := drain(alice)[0].(YourTurnMessage)
	assert.Equal(t, "second prompt", secondTurn.Prompt)
	assert.Equal(t, 2, secondTurn.Round)

	gs.handleMessage(alice, ClientMessage{Type: "submit", SessionID: sess.ID, Data: "a2"})
	gs.handleMessage(bob, ClientMessage{Type: "submit", SessionID: sess.ID, Data: "b2"})

	for _, c := range []*client{board, alice, bob} {
		msgs := drain(c)
		require.NotEmpty(t, msgs)
		results, ok := msgs[len(msgs)-1].(ResultsMessage)
		require.True(t, ok)
		require.Len(t, results.Rounds, 2)
		assert.Equal(t, "first prompt", results.Rounds[0].Prompt)
		require.Len(t, results.Rounds[0].Chain, 2)
		assert.Equal(t, "Alice", results.Rounds[0].Chain[0].Name)
		assert.Equal(t, "b2", results.Rounds[1].Chain[1].Data)
	}

	// Terminal state: back to the lobby, ready for another game.
	assert.Equal(t, StatusLobby, sess.Status)
	assert.Nil(t, sess.Game)
	assert.Empty(t, sess.GameType)
}

func TestUnauthorizedSubmitMutatesNothing(t *testing.T) {
	gs := newTestServer()
	gs.variants[whispersGameType] = fixedVariant(1, []string{"prompt"})

	sess := gs.store.create()
	alice, bob := newTestClient(), newTestClient()
	require.NoError(t, gs.join(alice, sess.ID, "Alice"))
	require.NoError(t, gs.join(bob, sess.ID, "Bob"))

	require.NoError(t, gs.startGame(alice, ClientMessage{
		SessionID: sess.ID,
		GameType:  whispersGameType,
	}))

	before := sess.Game.Describe().(whispersSnapshot)

	err := gs.submitContribution(bob, ClientMessage{SessionID: sess.ID, Data: "sneaky"})
	require.ErrorIs(t, err, ErrNotYourTurn)

	after := sess.Game.Describe().(whispersSnapshot)
	assert.Equal(t, before, after)
	assert.Equal(t, alice.id, sess.Game.CurrentPlayer())
}

func TestReapIdleSessions(t *testing.T) {
	gs := newTestServer()
	sess := gs.store.create()

	alice := newTestClient()
	require.NoError(t, gs.join(alice, sess.ID, "Alice"))

	sess.lastActive = time.Now().Add(-2 * time.Hour)
	gs.reapIdle()

	_, ok := gs.store.get(sess.ID)
	assert.False(t, ok)

	_, ok = gs.registry.lookup(alice)
	assert.False(t, ok)
	assert.True(t, alice.closed)
}
