package main

import (
	"time"

	"github.com/google/uuid"
)

// maxPlayers bounds session membership; the ninth join is refused.
const maxPlayers = 8

type SessionStatus string

const (
	StatusLobby   SessionStatus = "lobby"
	StatusPlaying SessionStatus = "playing"
)

// Player is created on a successful join and lives exactly as long as
// its owning connection.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Session is one joinable lobby/match. The players slice preserves join
// order, which doubles as display order and host-promotion order.
type Session struct {
	ID       string
	Players  []*Player
	Host     string
	Status   SessionStatus
	GameType string
	Game     State

	created    time.Time
	lastActive time.Time
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

// player returns the member with the given id, or nil.
func (s *Session) player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SessionStore owns the id → session mapping for the process lifetime.
// It is handed to the game server explicitly; nothing else reads or
// writes it, and all calls arrive on the server's event loop.
type SessionStore struct {
	sessions map[string]*Session
}

func newSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// create registers a fresh session in the lobby state. IDs are random
// UUIDv4s, so a collision over a process lifetime is not a concern.
func (st *SessionStore) create() *Session {
	now := time.Now()
	sess := &Session{
		ID:         uuid.NewString(),
		Players:    []*Player{},
		Status:     StatusLobby,
		created:    now,
		lastActive: now,
	}
	st.sessions[sess.ID] = sess

	return sess
}

func (st *SessionStore) get(id string) (*Session, bool) {
	sess, ok := st.sessions[id]
	return sess, ok
}

func (st *SessionStore) delete(id string) {
	delete(st.sessions, id)
}

func (st *SessionStore) len() int {
	return len(st.sessions)
}

// reap removes and returns sessions that have been idle since before
// cutoff, so their connections can be closed by the caller.
func (st *SessionStore) reap(cutoff time.Time) []*Session {
	var stale []*Session

	for id, sess := range st.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(st.sessions, id)
			stale = append(stale, sess)
		}
	}

	return stale
}
