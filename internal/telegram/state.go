package telegram

import (
	"sync"
	"time"
)

const linkConfirmTimeout = 60 * time.Second

// pendingLink is an unconfirmed relink: the user already has an account
// bound and has been asked whether to overwrite it.
type pendingLink struct {
	username string
	chatID   int64
	timer    *time.Timer
}

// linkState tracks pending relink confirmations per user. An unanswered
// confirmation expires after linkConfirmTimeout.
type linkState struct {
	mu      sync.Mutex
	pending map[int64]*pendingLink
}

func newLinkState() *linkState {
	return &linkState{pending: make(map[int64]*pendingLink)}
}

// Put stores a pending confirmation and arms its expiry. onExpire runs if
// nobody answers in time; a previous pending entry for the user is dropped.
func (s *linkState) Put(userID, chatID int64, username string, onExpire func(chatID int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.pending[userID]; ok {
		prev.timer.Stop()
	}
	p := &pendingLink{username: username, chatID: chatID}
	p.timer = time.AfterFunc(linkConfirmTimeout, func() {
		if s.take(userID) != nil {
			onExpire(chatID)
		}
	})
	s.pending[userID] = p
}

// Take removes and returns the user's pending confirmation, nil when none.
func (s *linkState) Take(userID int64) *pendingLink {
	return s.take(userID)
}

func (s *linkState) take(userID int64) *pendingLink {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[userID]
	if !ok {
		return nil
	}
	p.timer.Stop()
	delete(s.pending, userID)
	return p
}
