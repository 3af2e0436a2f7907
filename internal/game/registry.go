package game

import "sync"

// reservedID marks a channel as busy while a start attempt is still doing
// its upstream work, before a real session exists. This makes the
// reserve-then-create sequence safe against a second start racing in.
const reservedID = "-"

// Registry is the process-wide owner of active sessions: game id -> session
// and channel id -> game id. A channel owns at most one non-terminal session.
type Registry struct {
	mu        sync.Mutex
	games     map[string]*Session
	byChannel map[int64]string
}

func NewRegistry() *Registry {
	return &Registry{
		games:     make(map[string]*Session),
		byChannel: make(map[int64]string),
	}
}

// TryReserve atomically marks the channel busy with a placeholder. Reports
// false when the channel already has a reservation or a live game.
func (r *Registry) TryReserve(channelID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.byChannel[channelID]; busy {
		return false
	}
	r.byChannel[channelID] = reservedID
	return true
}

// CancelReservation clears a placeholder reservation after a failed start.
// A committed game is left alone.
func (r *Registry) CancelReservation(channelID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byChannel[channelID] == reservedID {
		delete(r.byChannel, channelID)
	}
}

// Commit binds the session to its channel, replacing the placeholder.
func (r *Registry) Commit(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[s.ID] = s
	r.byChannel[s.ChannelID] = s.ID
}

func (r *Registry) Get(gameID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.games[gameID]
	return s, ok
}

// FindByChannel returns the channel's live session, if any. A placeholder
// reservation has no session yet and reports false.
func (r *Registry) FindByChannel(channelID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byChannel[channelID]
	if !ok || id == reservedID {
		return nil, false
	}
	s, ok := r.games[id]
	return s, ok
}

// Release removes the session and frees its channel. Idempotent: a second
// release of the same game is a no-op, and the channel binding is only
// cleared while it still points at this game.
func (r *Registry) Release(channelID int64, gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
	if r.byChannel[channelID] == gameID {
		delete(r.byChannel, channelID)
	}
}
