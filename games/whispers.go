package games

// Drawing whispers is telephone with pictures
// One device acts as the board: it opens a session and displays a QR code plus a join URL
// Players scan the code on their phones, pick a display name, and join (first joiner hosts)
// The host starts the game; turn order is shuffled once and then fixed for the whole game
// The first player in the chain is shown a prompt and draws it
// Each following player is shown only the previous player's drawing, and re-draws what they think it is
// Nobody sees the full chain until the reveal
// A round closes when every player has contributed once; then the next prompt starts a new chain
// After the configured number of rounds, the board shows every chain side by side with the prompts

// Display formats:
// Board: QR code + roster while in the lobby, round progress while playing, chains at the end
// Phone: join form, then a canvas with brush controls when it is your turn

// Implementation details:
// - One websocket per device; the server owns all state and rebroadcasts it
// - The board connection is in the broadcast scope but never in the player list
// - Contributions travel as opaque data URLs, so guesses-as-text would also just work
