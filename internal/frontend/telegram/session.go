package telegram

import (
	"sync"

	"github.com/vadimtrunov/moviescout/internal/search"
)

// session is one chat's search state. serial changes with every new search so that
// buttons on older result messages can be recognized.
type session struct {
	mu     sync.Mutex
	ctrl   *search.Controller
	serial int
}

// sessionManager manages per-chat search sessions and access control.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*session
	serials  map[int64]int  // last serial per chat, kept across resets
	allowed  map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		sessions: make(map[int64]*session),
		serials:  make(map[int64]int),
		allowed:  allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// get returns the chat's session, creating it on first use.
func (sm *sessionManager) get(chatID int64) *session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[chatID]
	if !ok {
		s = &session{ctrl: search.NewController()}
		sm.sessions[chatID] = s
	}
	return s
}

// nextSerial returns a serial the chat has never used before, even across resets.
func (sm *sessionManager) nextSerial(chatID int64) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.serials[chatID]++
	return sm.serials[chatID]
}

// reset tears down a chat's session. Fetches still in flight for it are dropped.
func (sm *sessionManager) reset(chatID int64) {
	sm.mu.Lock()
	s, ok := sm.sessions[chatID]
	delete(sm.sessions, chatID)
	sm.mu.Unlock()

	if ok {
		s.mu.Lock()
		s.ctrl.Close()
		s.mu.Unlock()
	}
}

// closeAll tears down every session.
func (sm *sessionManager) closeAll() {
	sm.mu.Lock()
	ids := make([]int64, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sm.mu.Unlock()

	for _, id := range ids {
		sm.reset(id)
	}
}

// len returns the number of live sessions.
func (sm *sessionManager) len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}
