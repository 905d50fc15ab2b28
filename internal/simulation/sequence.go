// internal/simulation/sequence.go
package simulation

import (
	"sync"
	"time"
)

// Cue is one delayed presentation event
type Cue struct {
	Delay  time.Duration
	Reveal Reveal
}

// Sequence is a set of scheduled cues sharing one cancel handle
type Sequence struct {
	mu       sync.Mutex
	timers   []Stopper
	canceled bool
}

// Schedule arms every cue on clock. fire runs once per cue unless the
// sequence is canceled first.
func Schedule(clock Clock, cues []Cue, fire func(Cue)) *Sequence {
	s := &Sequence{timers: make([]Stopper, 0, len(cues))}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cue := range cues {
		cue := cue
		s.timers = append(s.timers, clock.AfterFunc(cue.Delay, func() {
			s.mu.Lock()
			canceled := s.canceled
			s.mu.Unlock()
			if !canceled {
				fire(cue)
			}
		}))
	}
	return s
}

// Cancel stops every pending cue. Safe to call more than once and on nil.
func (s *Sequence) Cancel() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		return
	}
	s.canceled = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
