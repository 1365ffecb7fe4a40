package main

// binding ties a live connection to the one (session, player) pair it
// currently represents.
type binding struct {
	sessionID string
	playerID  string
}

// ConnectionRegistry tracks which session and player each connected
// client belongs to. Broadcast fan-out is the set of clients bound to a
// session at send time: late joiners never see past messages, departed
// connections never see future ones.
type ConnectionRegistry struct {
	bindings  map[*client]binding
	bySession map[string]map[*client]string
}

func newConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		bindings:  make(map[*client]binding),
		bySession: make(map[string]map[*client]string),
	}
}

// bind associates c with (sessionID, playerID), replacing any previous
// binding for c.
func (r *ConnectionRegistry) bind(c *client, sessionID, playerID string) {
	r.unbind(c)

	r.bindings[c] = binding{sessionID: sessionID, playerID: playerID}

	members, ok := r.bySession[sessionID]
	if !ok {
		members = make(map[*client]string)
		r.bySession[sessionID] = members
	}
	members[c] = playerID
}

func (r *ConnectionRegistry) unbind(c *client) {
	b, ok := r.bindings[c]
	if !ok {
		return
	}

	delete(r.bindings, c)

	if members, ok := r.bySession[b.sessionID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(r.bySession, b.sessionID)
		}
	}
}

func (r *ConnectionRegistry) lookup(c *client) (binding, bool) {
	b, ok := r.bindings[c]
	return b, ok
}

// clients returns the current broadcast scope for a session.
func (r *ConnectionRegistry) clients(sessionID string) map[*client]string {
	return r.bySession[sessionID]
}

// find returns the connection bound to (sessionID, playerID), or nil if
// that player is no longer connected.
func (r *ConnectionRegistry) find(sessionID, playerID string) *client {
	for c, pid := range r.bySession[sessionID] {
		if pid == playerID {
			return c
		}
	}
	return nil
}
