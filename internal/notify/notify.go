package notify

import (
	"sync"
	"time"

	"wordloop/internal/timer"

	"go.uber.org/zap"
)

// DefaultTTL is how long a message stays visible
const DefaultTTL = 5 * time.Second

// Severity affects presentation only
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Handle identifies a displayed message inside its Sink
type Handle int

// Sink displays and removes transient messages
type Sink interface {
	Display(message string, severity Severity) (Handle, error)
	Remove(h Handle) error
}

// Notice is the currently visible message
type Notice struct {
	Message  string
	Severity Severity
}

type entry struct {
	notice Notice
	handle Handle
	expiry timer.Timer
}

// Notifier keeps at most one transient message visible.
// A new message replaces the previous one; each is removed after its TTL.
type Notifier struct {
	sink   Sink
	sched  timer.Scheduler
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	current *entry
}

// NewNotifier creates a notifier drawing on sink
func NewNotifier(sink Sink, sched timer.Scheduler, ttl time.Duration, logger *zap.Logger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{
		sink:   sink,
		sched:  sched,
		ttl:    ttl,
		logger: logger,
	}
}

// Show displays message, replacing whatever is visible
func (n *Notifier) Show(message string, severity Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.dropLocked()

	h, err := n.sink.Display(message, severity)
	if err != nil {
		n.logger.Warn("Failed to display notification",
			zap.String("severity", string(severity)),
			zap.Error(err),
		)
		return
	}

	e := &entry{notice: Notice{Message: message, Severity: severity}, handle: h}
	e.expiry = n.sched.AfterFunc(n.ttl, func() { n.expire(e) })
	n.current = e
}

// Visible returns the message on screen, if any
func (n *Notifier) Visible() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return n.current.notice, true
}

// Clear removes the visible message immediately
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dropLocked()
}

func (n *Notifier) expire(e *entry) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Replaced meanwhile; the replacement owns the screen now
	if n.current != e {
		return
	}
	n.dropLocked()
}

func (n *Notifier) dropLocked() {
	if n.current == nil {
		return
	}
	n.current.expiry.Stop()
	if err := n.sink.Remove(n.current.handle); err != nil {
		n.logger.Debug("Failed to remove notification", zap.Error(err))
	}
	n.current = nil
}
