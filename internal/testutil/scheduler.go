package testutil

import (
	"sort"
	"sync"
	"time"

	"wordloop/internal/timer"
)

// FakeScheduler is a manual clock for timer-driven code.
// Tasks run synchronously inside Advance, in due order.
type FakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	at      time.Duration
	seq     int
	f       func()
	delay   time.Duration
	done    bool
	stopped bool
	owner   *FakeScheduler
}

func (t *fakeTask) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewFakeScheduler creates a scheduler at time zero
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// AfterFunc registers f to run once the clock passes d
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) timer.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTask{at: s.now + d, seq: s.seq, f: f, delay: d, owner: s}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward, running every task that falls due
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.done = true
		s.mu.Unlock()

		next.f()
	}
}

// Pending returns the delays of tasks that have neither fired nor been stopped
func (s *FakeScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.tasks {
		if !t.done && !t.stopped {
			out = append(out, t.delay)
		}
	}
	return out
}

func (s *FakeScheduler) nextDue(target time.Duration) *fakeTask {
	var due []*fakeTask
	for _, t := range s.tasks {
		if !t.done && !t.stopped && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}
		return due[i].at < due[j].at
	})
	return due[0]
}
