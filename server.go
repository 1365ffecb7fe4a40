// Whisperbox drawing-whispers game server
//
// One device (the board) opens a session and shows a QR code; phones
// scan it and join as players over a websocket. The first joiner
// becomes host and may start the game. The server owns all state and
// broadcasts every change to the session's current membership.
//
// Protocol (JSON over a single websocket per connection):
// - Inbound: create_session, join, start_game, submit
// - Outbound: session_created (creator only), player_joined,
//   player_left, game_started, your_turn (designated player only),
//   results, error (offender only)
//
// All session mutation happens on one event loop goroutine, so
// per-session message effects apply strictly in arrival order and no
// locking is needed around the store or registry.

package main

import (
	"context"
	_ "embed"
	"encoding/base64"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320 // mobile-friendly size

type client struct {
	conn *websocket.Conn
	send chan any

	// id is the connection-scoped player id, stable until disconnect.
	id string

	// joinBase is the externally visible join URL prefix, captured
	// from the upgrade request.
	joinBase string

	// closed is owned by the event loop goroutine.
	closed bool
}

type inboundEvent struct {
	client *client
	msg    ClientMessage
}

// GameServer routes inbound events to the session store, membership
// logic, and game variants, and fans results back out to connections.
type GameServer struct {
	cfg      *Config
	store    *SessionStore
	registry *ConnectionRegistry
	variants map[string]Variant

	inbound     chan inboundEvent
	disconnects chan *client
}

func newGameServer(cfg *Config) *GameServer {
	return &GameServer{
		cfg:      cfg,
		store:    newSessionStore(),
		registry: newConnectionRegistry(),
		variants: map[string]Variant{
			whispersGameType: newWhispersVariant(cfg.rounds),
		},
		inbound:     make(chan inboundEvent),
		disconnects: make(chan *client),
	}
}

// run is the single logical thread of the game server. Everything that
// touches a session happens here, one event at a time.
func (gs *GameServer) run(ctx context.Context) {
	var reap <-chan time.Time
	if gs.cfg.sessionTimeout > 0 {
		ticker := time.NewTicker(gs.cfg.sessionTimeout / 2)
		defer ticker.Stop()
		reap = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-gs.inbound:
			gs.handleMessage(ev.client, ev.msg)

		case c := <-gs.disconnects:
			gs.leave(c)
			gs.drop(c)

		case <-reap:
			gs.reapIdle()
		}
	}
}

func (gs *GameServer) handleMessage(c *client, msg ClientMessage) {
	var err error

	switch msg.Type {
	case "create_session":
		gs.createSession(c)
	case "join":
		err = gs.join(c, msg.SessionID, msg.Name)
	case "start_game":
		err = gs.startGame(c, msg)
	case "submit":
		err = gs.submitContribution(c, msg)
	default:
		// ignore unknown types
	}

	if err != nil {
		gs.sendTo(c, errorMessage(err))
	}
}

// createSession registers a fresh lobby and answers the creator with
// its id, join URL, and a QR code for the URL. The creating connection
// joins the broadcast scope as the board display, not as a player.
func (gs *GameServer) createSession(c *client) {
	sess := gs.store.create()
	url := c.joinBase + sess.ID

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		gs.store.delete(sess.ID)
		logf(gs.cfg, "ERROR: QR generation failed for %s: %v", sess.ID, err)
		gs.sendTo(c, ErrorMessage{Type: "error", Message: "failed to create session"})

		return
	}

	gs.registry.bind(c, sess.ID, "")

	logf(gs.cfg, "GAMES: Created session %s", sess.ID)

	gs.sendTo(c, SessionCreatedMessage{
		Type:      "session_created",
		SessionID: sess.ID,
		URL:       url,
		QR:        "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

// startGame is host-only. It freezes a shuffled turn order, announces
// the game to the whole session, and hands the first turn out.
func (gs *GameServer) startGame(c *client, msg ClientMessage) error {
	sess, ok := gs.store.get(msg.SessionID)
	if !ok {
		return ErrSessionNotFound
	}

	if sess.Host == "" || c.id != sess.Host {
		return ErrUnauthorized
	}

	variant, ok := gs.variants[msg.GameType]
	if !ok {
		return ErrUnknownGame
	}

	state, first, err := variant.Start(sess.Players)
	if err != nil {
		return err
	}

	sess.Status = StatusPlaying
	sess.GameType = msg.GameType
	sess.Game = state
	sess.touch()

	logf(gs.cfg, "GAMES: Started %s in %s with %d players", msg.GameType, sess.ID, len(sess.Players))

	gs.broadcast(sess.ID, GameStartedMessage{
		Type:      "game_started",
		GameType:  msg.GameType,
		GameState: state.Describe(),
	})

	gs.deliverTurn(sess, first)

	return nil
}

func (gs *GameServer) submitContribution(c *client, msg ClientMessage) error {
	sess, ok := gs.store.get(msg.SessionID)
	if !ok {
		return ErrSessionNotFound
	}

	if sess.Status != StatusPlaying || sess.Game == nil {
		return ErrNoGame
	}

	turn, err := sess.Game.Submit(c.id, msg.Data)
	if err != nil {
		return err
	}

	sess.touch()

	gs.deliverTurn(sess, turn)

	return nil
}

// deliverTurn either unicasts the next task to its designated player
// or, when the game has finished, reveals the rounds to everyone and
// returns the session to the lobby so the host can start a new game.
func (gs *GameServer) deliverTurn(sess *Session, turn *Turn) {
	if turn.finished() {
		sess.Status = StatusLobby
		sess.GameType = ""
		sess.Game = nil

		logf(gs.cfg, "GAMES: Finished game in %s after %d rounds", sess.ID, len(turn.Rounds))

		gs.broadcast(sess.ID, ResultsMessage{
			Type:   "results",
			Rounds: turn.Rounds,
		})

		return
	}

	next := gs.registry.find(sess.ID, turn.PlayerID)
	if next == nil {
		logf(gs.cfg, "GAMES: Current player %s in %s is not connected", turn.PlayerID, sess.ID)

		return
	}

	gs.sendTo(next, YourTurnMessage{
		Type:     "your_turn",
		Round:    turn.Round,
		Prompt:   turn.Prompt,
		Previous: turn.Previous,
	})
}

func (gs *GameServer) broadcast(sessionID string, msg any) {
	for c := range gs.registry.clients(sessionID) {
		gs.sendTo(c, msg)
	}
}

// sendTo drops clients that can't keep up rather than blocking the
// event loop; the dropped connection's read pump then reports a
// disconnect, which runs the normal leave path.
func (gs *GameServer) sendTo(c *client, msg any) {
	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		gs.drop(c)
	}
}

func (gs *GameServer) drop(c *client) {
	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}

// reapIdle removes sessions idle past the configured timeout and
// disconnects whoever is still attached to them.
func (gs *GameServer) reapIdle() {
	cutoff := time.Now().Add(-gs.cfg.sessionTimeout)

	for _, sess := range gs.store.reap(cutoff) {
		logf(gs.cfg, "GAMES: Reaped idle session %s", sess.ID)

		var attached []*client
		for c := range gs.registry.clients(sess.ID) {
			attached = append(attached, c)
		}
		for _, c := range attached {
			gs.registry.unbind(c)
			gs.drop(c)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades the connection, assigns a connection-scoped player
// id, and pumps messages between the socket and the event loop.
func serveWS(cfg *Config, gs *GameServer, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		c := &client{
			conn:     conn,
			send:     make(chan any, 8),
			id:       uuid.NewString(),
			joinBase: scheme + "://" + r.Host + cfg.prefix + path + "/join/",
		}

		go c.writePump()
		c.readPump(gs)
	}
}

func (c *client) readPump(gs *GameServer) {
	defer func() {
		gs.disconnects <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		gs.inbound <- inboundEvent{
			client: c,
			msg:    msg,
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// ---- Static file paths ----

//go:embed whispers/index.html
var indexHTML []byte

//go:embed whispers/app.css
var whisperboxCSS []byte

//go:embed whispers/app.js
var whisperboxJS []byte

func getIndexHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(indexHTML)
	}
}

func getCssHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(whisperboxCSS)
	}
}

func getJsHandler(cfg *Config) func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(whisperboxJS)
	}
}

// registerWhispersGame sets up routes so that:
//   - $path                    → board view (creates a session, shows QR)
//   - $path/join/:sessionid    → player view (join form, canvas)
//   - $path/ws                 → WebSocket shared by both views
func registerWhispersGame(ctx context.Context, cfg *Config, path string, mux *httprouter.Router) {
	gs := newGameServer(cfg)
	go gs.run(ctx)

	// Board and player share one page; the client looks at the URL.
	mux.GET(cfg.prefix+path, getIndexHandler(cfg))
	mux.GET(cfg.prefix+path+"/join/:sessionid", getIndexHandler(cfg))

	// Shared assets (no session id in route)
	mux.GET(cfg.prefix+"/assets/whispers/app.css", getCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/whispers/app.js", getJsHandler(cfg))

	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, gs, path))
}
