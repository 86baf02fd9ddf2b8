package review

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Factory builds the session for a chat
type Factory func(chatID int64) *Controller

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry keeps one review session per chat
type Registry struct {
	factory Factory
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewRegistry creates an empty registry
func NewRegistry(factory Factory, logger *zap.Logger) *Registry {
	return &Registry{
		factory:  factory,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[int64]*session),
	}
}

// Get returns the chat's session, creating it on first use
func (r *Registry) Get(chatID int64) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[chatID]
	if !exists {
		s = &session{ctrl: r.factory(chatID)}
		r.sessions[chatID] = s
		r.logger.Debug("Review session created", zap.Int64("chat_id", chatID))
	}
	s.lastSeen = r.now()
	return s.ctrl
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove closes and drops the chat's session, if any
func (r *Registry) Remove(chatID int64) {
	r.mu.Lock()
	s, exists := r.sessions[chatID]
	delete(r.sessions, chatID)
	r.mu.Unlock()

	if exists {
		s.ctrl.Close()
	}
}

// EvictIdle closes sessions unused for longer than maxIdle and returns
// their chat ids
func (r *Registry) EvictIdle(maxIdle time.Duration) []int64 {
	r.mu.Lock()
	cutoff := r.now().Add(-maxIdle)
	var idle []*Controller
	var chats []int64
	for chatID, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s.ctrl)
			chats = append(chats, chatID)
			delete(r.sessions, chatID)
		}
	}
	remaining := len(r.sessions)
	r.mu.Unlock()

	// Closing waits for in-flight operations, so it happens outside the lock
	for _, ctrl := range idle {
		ctrl.Close()
	}

	if len(idle) > 0 {
		r.logger.Info("Evicted idle review sessions",
			zap.Int("evicted", len(idle)),
			zap.Int("remaining", remaining),
		)
	}
	return chats
}

// CloseAll stops every session
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Controller, 0, len(r.sessions))
	for chatID, s := range r.sessions {
		all = append(all, s.ctrl)
		delete(r.sessions, chatID)
	}
	r.mu.Unlock()

	for _, ctrl := range all {
		ctrl.Close()
	}
}
