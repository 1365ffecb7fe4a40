package main

// join adds a player to a session, binding the connection to the new
// membership. The first joiner becomes host; join order is preserved,
// since it doubles as display order and host-promotion order.
func (gs *GameServer) join(c *client, sessionID, name string) error {
	if name == "" {
		return nil
	}

	if b, ok := gs.registry.lookup(c); ok && b.playerID != "" {
		// Already a member somewhere; one connection, one player.
		return nil
	}

	sess, ok := gs.store.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	if len(sess.Players) >= maxPlayers {
		return ErrSessionFull
	}

	player := &Player{
		ID:   c.id,
		Name: name,
	}

	if len(sess.Players) == 0 {
		player.IsHost = true
		sess.Host = player.ID
	}

	sess.Players = append(sess.Players, player)
	gs.registry.bind(c, sess.ID, player.ID)
	sess.touch()

	logf(gs.cfg, "GAMES: Player %q joined %s", name, sess.ID)

	gs.sendTo(c, JoinedMessage{
		Type:   "joined",
		Player: player,
	})

	gs.broadcast(sess.ID, MembershipMessage{
		Type:    "player_joined",
		Players: sess.Players,
		Host:    sess.Host,
	})

	return nil
}

// leave handles a dropped connection: unbind, remove the player, hand
// the host role to the earliest remaining joiner, and delete the
// session outright once nobody is left in it.
func (gs *GameServer) leave(c *client) {
	b, ok := gs.registry.lookup(c)
	if !ok {
		return
	}

	gs.registry.unbind(c)

	sess, ok := gs.store.get(b.sessionID)
	if !ok || b.playerID == "" {
		return
	}

	dst := sess.Players[:0]
	removed := false
	for _, p := range sess.Players {
		if p.ID == b.playerID {
			removed = true
			continue
		}
		dst = append(dst, p)
	}
	sess.Players = dst

	if !removed {
		return
	}

	if sess.Host == b.playerID && len(sess.Players) > 0 {
		sess.Players[0].IsHost = true
		sess.Host = sess.Players[0].ID
	}

	if len(sess.Players) == 0 {
		// Nobody left to notify.
		gs.store.delete(sess.ID)
		logf(gs.cfg, "GAMES: Deleted empty session %s", sess.ID)

		return
	}

	sess.touch()

	logf(gs.cfg, "GAMES: Player %s left %s", b.playerID, sess.ID)

	gs.broadcast(sess.ID, MembershipMessage{
		Type:    "player_left",
		Players: sess.Players,
		Host:    sess.Host,
	})
}
