package main

// Turn tells the server what to deliver after a game starts or a
// contribution lands: either the next designated contributor and their
// task, or the finished rounds when the game is over.
type Turn struct {
	PlayerID string
	Round    int
	Prompt   string
	Previous string
	Rounds   []RoundResult
}

func (t *Turn) finished() bool {
	return t.Rounds != nil
}

// Variant is one playable game type. Variants are selected from the
// server's registry by the game_type field of a start_game message, so
// adding a game means registering another implementation, not growing a
// switch statement.
type Variant interface {
	// Start freezes the turn order for the given players and returns
	// the initial state plus the first turn to deliver.
	Start(players []*Player) (State, *Turn, error)
}

// State is the in-progress state of one variant inside one session.
// All calls arrive on the server's event loop.
type State interface {
	// CurrentPlayer is the id of the designated contributor, or empty
	// when no contribution is expected.
	CurrentPlayer() string

	// Submit records a contribution from playerID and advances the
	// turn. It fails with ErrNotYourTurn, mutating nothing, when
	// playerID is not the designated contributor.
	Submit(playerID, data string) (*Turn, error)

	// Describe returns a client-safe snapshot for broadcast.
	Describe() any
}
