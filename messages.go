package main

// Messages coming from clients
type ClientMessage struct {
	Type      string `json:"type"`                 // "create_session", "join", "start_game", "submit"
	SessionID string `json:"session_id,omitempty"` // join / start_game / submit
	Name      string `json:"name,omitempty"`       // join
	GameType  string `json:"game_type,omitempty"`  // start_game
	Data      string `json:"data,omitempty"`       // submit (drawing or guess payload, opaque)
}

// SessionCreatedMessage is sent only to the creating connection. QR is
// a base64 PNG data URL ready for an <img> tag.
type SessionCreatedMessage struct {
	Type      string `json:"type"` // "session_created"
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	QR        string `json:"qr"`
}

// JoinedMessage is the private ack for a successful join, telling the
// new member their own connection-scoped player id.
type JoinedMessage struct {
	Type   string  `json:"type"` // "joined"
	Player *Player `json:"player"`
}

// MembershipMessage carries the full roster after a join or leave, so
// clients never have to patch their local view incrementally.
type MembershipMessage struct {
	Type    string    `json:"type"` // "player_joined" or "player_left"
	Players []*Player `json:"players"`
	Host    string    `json:"host"`
}

// GameStartedMessage announces the new game to the whole session.
type GameStartedMessage struct {
	Type      string `json:"type"` // "game_started"
	GameType  string `json:"game_type"`
	GameState any    `json:"game_state"`
}

// YourTurnMessage is unicast to the one player expected to contribute.
// Exactly one of Prompt and Previous is set: the first player in a
// round sees the prompt, everyone after sees only the contribution
// immediately before theirs.
type YourTurnMessage struct {
	Type     string `json:"type"` // "your_turn"
	Round    int    `json:"round"`
	Prompt   string `json:"prompt,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// ResultsMessage reveals every completed round's chain at game end.
type ResultsMessage struct {
	Type   string        `json:"type"` // "results"
	Rounds []RoundResult `json:"rounds"`
}

// ErrorMessage is always private to the connection that caused it.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

func errorMessage(err error) ErrorMessage {
	return ErrorMessage{
		Type:    "error",
		Message: err.Error(),
	}
}
