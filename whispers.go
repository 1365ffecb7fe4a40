package main

import (
	"math/rand/v2"
)

const whispersGameType = "drawing-whispers"

// Starting prompts for the whispers chain. One prompt seeds one round.
var whispersPrompts = []string{
	"A penguin riding a bicycle",
	"Superhero having a bad day",
	"Pizza making pizza",
	"Dancing vegetables",
	"Time-traveling cat",
	"A snail winning a race",
	"Robot learning to swim",
	"Dragon afraid of heights",
}

type whispersPhase string

const (
	phaseAwaitingTurn whispersPhase = "awaiting_turn"
	phaseResults      whispersPhase = "results"
)

// Contribution is one player's submitted artifact (drawing or guess)
// in one turn of the chain.
type Contribution struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Data     string `json:"data"`
}

// RoundResult is one closed chain, from its starting prompt through
// every player's contribution in turn order.
type RoundResult struct {
	Prompt string         `json:"prompt"`
	Chain  []Contribution `json:"chain"`
}

// shuffledOrder returns a new slice with ids in uniformly random order,
// Fisher-Yates over a caller-supplied index source.
func shuffledOrder(ids []string, intn func(int) int) []string {
	out := make([]string, len(ids))
	copy(out, ids)

	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// whispersVariant implements drawing telephone: a prompt is drawn by
// one player, the drawing is shown (blind) to the next player who
// re-interprets it, and so on down the chain. Nobody ever sees more
// than the contribution immediately before theirs until the reveal.
type whispersVariant struct {
	rounds  int
	prompts []string
	intn    func(int) int
}

func newWhispersVariant(rounds int) *whispersVariant {
	return &whispersVariant{
		rounds:  rounds,
		prompts: whispersPrompts,
		intn:    rand.IntN,
	}
}

func (v *whispersVariant) Start(players []*Player) (State, *Turn, error) {
	if len(players) == 0 {
		return nil, nil, ErrNoGame
	}

	ids := make([]string, 0, len(players))
	names := make(map[string]string, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
		names[p.ID] = p.Name
	}

	total := min(v.rounds, len(v.prompts))

	st := &whispersState{
		phase:          phaseAwaitingTurn,
		playerOrder:    shuffledOrder(ids, v.intn),
		names:          names,
		prompts:        v.prompts,
		selectedPrompt: v.prompts[0],
		totalRounds:    total,
	}

	first := &Turn{
		PlayerID: st.playerOrder[0],
		Round:    1,
		Prompt:   st.selectedPrompt,
	}

	return st, first, nil
}

type whispersState struct {
	phase          whispersPhase
	playerOrder    []string
	names          map[string]string
	currentIndex   int
	prompts        []string
	promptIndex    int
	selectedPrompt string
	chain          []Contribution
	rounds         []RoundResult
	totalRounds    int
}

func (s *whispersState) CurrentPlayer() string {
	if s.phase != phaseAwaitingTurn {
		return ""
	}
	return s.playerOrder[s.currentIndex]
}

func (s *whispersState) Submit(playerID, data string) (*Turn, error) {
	if s.CurrentPlayer() != playerID {
		return nil, ErrNotYourTurn
	}

	s.chain = append(s.chain, Contribution{
		PlayerID: playerID,
		Name:     s.names[playerID],
		Data:     data,
	})
	s.currentIndex++

	// Round stays open until every player has contributed once.
	if s.currentIndex < len(s.playerOrder) {
		return &Turn{
			PlayerID: s.playerOrder[s.currentIndex],
			Round:    len(s.rounds) + 1,
			Previous: data,
		}, nil
	}

	s.rounds = append(s.rounds, RoundResult{
		Prompt: s.selectedPrompt,
		Chain:  s.chain,
	})
	s.chain = nil
	s.promptIndex++

	if len(s.rounds) >= s.totalRounds || s.promptIndex >= len(s.prompts) {
		s.phase = phaseResults
		return &Turn{Rounds: s.rounds}, nil
	}

	s.currentIndex = 0
	s.selectedPrompt = s.prompts[s.promptIndex]

	return &Turn{
		PlayerID: s.playerOrder[0],
		Round:    len(s.rounds) + 1,
		Prompt:   s.selectedPrompt,
	}, nil
}

// whispersSnapshot is the broadcast view of an in-progress game. The
// prompt pool and open chain stay server-side so observers can't peek.
type whispersSnapshot struct {
	Phase        string   `json:"phase"`
	PlayerOrder  []string `json:"player_order"`
	CurrentIndex int      `json:"current_index"`
	Round        int      `json:"round"`
	TotalRounds  int      `json:"total_rounds"`
}

func (s *whispersState) Describe() any {
	round := len(s.rounds) + 1
	if s.phase == phaseResults {
		round = len(s.rounds)
	}

	return whispersSnapshot{
		Phase:        string(s.phase),
		PlayerOrder:  s.playerOrder,
		CurrentIndex: s.currentIndex,
		Round:        round,
		TotalRounds:  s.totalRounds,
	}
}
