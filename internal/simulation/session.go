// internal/simulation/session.go
package simulation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/audio"
	apperrors "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// ErrUnknownField is wrapped when a decision field name is not recognised
var ErrUnknownField = errors.New("unknown decision field")

const (
	DefaultDecisionSeconds        = 600
	DefaultPacingThresholdSeconds = 300
	tickInterval                  = time.Second
)

// EventType names what an Event carries
type EventType string

const (
	EventState  EventType = "state"
	EventReveal EventType = "reveal"
	EventTick   EventType = "tick"
	eventSound  EventType = "sound"
)

// TickInfo is the countdown value after a tick
type TickInfo struct {
	Remaining int    `json:"remaining_seconds"`
	Display   string `json:"remaining_display"`
}

// Event is delivered to a Listener after the session lock is released
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Reveal    *Reveal   `json:"reveal,omitempty"`
	Tick      *TickInfo `json:"tick,omitempty"`

	sound models.SoundKind
}

// Listener observes a session. Events arrive in production order.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Options configures a Session. Zero values pick defaults.
type Options struct {
	Clock                  Clock
	DecisionSeconds        int
	PacingThresholdSeconds int
	Audio                  audio.Player
	Listener               Listener
	Logger                 *utils.Logger
	Metrics                *utils.MetricsCollector
	SoundEnabled           *bool
}

// Snapshot is the state the presentation layer renders
type Snapshot struct {
	SessionID        string           `json:"session_id"`
	ScenarioID       string           `json:"scenario_id"`
	Phase            Phase            `json:"phase"`
	RouteID          string           `json:"route_id"`
	Step             models.Step      `json:"step"`
	StepIndex        int              `json:"step_index"`
	StepTotal        int              `json:"step_total"`
	IsLast           bool             `json:"is_last"`
	CanAdvance       bool             `json:"can_advance"`
	CanRetreat       bool             `json:"can_retreat"`
	Remaining        int              `json:"remaining_seconds"`
	RemainingDisplay string           `json:"remaining_display"`
	Decisions        models.Decisions `json:"decisions"`
	CanSubmit        bool             `json:"can_submit"`
	SoundEnabled     bool             `json:"sound_enabled"`
	Results          *Results         `json:"results,omitempty"`
}

// Session owns the state of one run through a scenario. All methods are
// safe for concurrent use; mutations are serialised.
type Session struct {
	id        string
	router    *Router
	initial   *models.Route
	clock     Clock
	threshold int
	audio     *audio.Gate
	listener  Listener
	logger    *utils.Logger
	metrics   *utils.MetricsCollector

	mu           sync.Mutex
	phase        Phase
	player       *Player
	timer        *DecisionTimer
	decisions    models.Decisions
	soundEnabled bool
	results      *Results
	reveal       *Sequence
	revealGen    uint64
	tickGen      uint64
	tickStop     Stopper
	closed       bool
	lastActivity time.Time
	pending      []Event

	// outbox is appended under mu and drained by one goroutine at a
	// time, so listeners see events in the order they were produced.
	outMu      sync.Mutex
	outbox     []Event
	delivering bool
}

// NewSession builds a session in the intro phase. It fails with a
// configuration error when the graph's initial route does not resolve.
func NewSession(id string, graph *models.Graph, opts Options) (*Session, error) {
	router := NewRouter(graph)
	initial, err := router.Initial()
	if err != nil {
		return nil, err
	}

	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.DecisionSeconds <= 0 {
		opts.DecisionSeconds = DefaultDecisionSeconds
	}
	if opts.PacingThresholdSeconds <= 0 {
		opts.PacingThresholdSeconds = DefaultPacingThresholdSeconds
	}
	if opts.Audio == nil {
		opts.Audio = audio.Nop()
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}
	sound := true
	if opts.SoundEnabled != nil {
		sound = *opts.SoundEnabled
	}

	s := &Session{
		id:           id,
		router:       router,
		initial:      initial,
		clock:        opts.Clock,
		threshold:    opts.PacingThresholdSeconds,
		audio:        audio.NewGate(opts.Audio),
		listener:     opts.Listener,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		phase:        PhaseIntro,
		player:       NewPlayer(initial),
		soundEnabled: sound,
		lastActivity: opts.Clock.Now(),
	}
	s.audio.SetMuted(!sound)
	s.timer = NewDecisionTimer(opts.DecisionSeconds, func() { s.finish(true) })
	return s, nil
}

func (s *Session) ID() string { return s.id }

// ScenarioID is the id of the graph the session plays
func (s *Session) ScenarioID() string { return s.router.Graph().ID }

// LastActivity is the time of the last user operation that changed
// state, or of the forced submit when the countdown ran out.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Phase returns the current phase
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Start moves intro to playing at step 0 of the initial route
func (s *Session) Start() bool {
	return s.mutate(func() bool {
		if s.phase != PhaseIntro {
			return false
		}
		s.player.Load(s.initial)
		s.timer.Reset()
		s.decisions = models.Decisions{}
		s.results = nil
		s.transition(PhasePlaying)
		s.activateStep()
		return true
	})
}

// Advance moves to the next step, or into the decision phase from the
// final step. It never moves past a transition step.
func (s *Session) Advance() bool {
	return s.mutate(func() bool {
		if s.phase != PhasePlaying {
			return false
		}
		switch s.player.Advance() {
		case AdvanceMoved:
			s.activateStep()
			return true
		case AdvanceFinished:
			s.cancelReveal()
			s.transition(PhaseDecision)
			s.timer.Start(s.timer.Duration())
			s.startCountdown()
			return true
		default:
			return false
		}
	})
}

// Retreat moves back one step within the current route
func (s *Session) Retreat() bool {
	return s.mutate(func() bool {
		if s.phase != PhasePlaying || !s.player.Retreat() {
			return false
		}
		s.activateStep()
		return true
	})
}

// SelectBranch activates the route named optionID at step 0. An
// unresolved id is a configuration error and leaves the state as it was.
func (s *Session) SelectBranch(optionID string) (bool, error) {
	var resolveErr error
	changed := s.mutate(func() bool {
		if s.phase != PhasePlaying {
			return false
		}
		route, err := s.router.Resolve(optionID)
		if err != nil {
			resolveErr = err
			s.logger.Error("branch target does not resolve", map[string]interface{}{
				"session_id": s.id,
				"route_id":   s.player.Route().ID,
				"option_id":  optionID,
			})
			if s.metrics != nil {
				s.metrics.RecordError(string(apperrors.ErrorTypeConfiguration), "router")
			}
			return false
		}
		s.player.Load(route)
		s.activateStep()
		if s.metrics != nil {
			s.metrics.RecordBranch(route.ID)
		}
		return true
	})
	return changed, resolveErr
}

// SetDecisionField records one answer of the decision form. Fields can
// only change during the decision phase.
func (s *Session) SetDecisionField(field models.DecisionField, value string) (bool, error) {
	if _, err := (models.Decisions{}).Get(field); err != nil {
		return false, apperrors.NewValidationError(
			fmt.Sprintf("cannot set %q", field),
			fmt.Errorf("%w: %s", ErrUnknownField, field),
		)
	}
	changed := s.mutate(func() bool {
		if s.phase != PhaseDecision {
			return false
		}
		if current, _ := s.decisions.Get(field); current == value {
			return false
		}
		_ = s.decisions.Set(field, value)
		return true
	})
	return changed, nil
}

// Submit moves decision to results once every required field is filled
func (s *Session) Submit() bool {
	return s.mutate(func() bool {
		if s.phase != PhaseDecision || !s.decisions.Complete() {
			return false
		}
		return s.finish(false)
	})
}

// Restart moves results back to intro with a clean state
func (s *Session) Restart() bool {
	return s.mutate(func() bool {
		if s.phase != PhaseResults {
			return false
		}
		s.cancelReveal()
		s.stopCountdown()
		s.decisions = models.Decisions{}
		s.results = nil
		s.player.Load(s.initial)
		s.timer.Reset()
		s.transition(PhaseIntro)
		return true
	})
}

// ToggleSound flips the sound flag and returns the new value. Muting
// also drops sounds already queued for delivery.
func (s *Session) ToggleSound() bool {
	var enabled bool
	s.mutate(func() bool {
		s.soundEnabled = !s.soundEnabled
		s.audio.SetMuted(!s.soundEnabled)
		enabled = s.soundEnabled
		return true
	})
	return enabled
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close cancels every pending cue and tick. A closed session ignores
// further operations.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancelReveal()
	s.stopCountdown()
	s.timer.Stop()
	s.pending = nil
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// mutate runs fn under the lock and then delivers the queued events.
func (s *Session) mutate(fn func() bool) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	changed := fn()
	if changed {
		s.lastActivity = s.clock.Now()
		s.queueState()
	}
	s.flush()
	return changed
}

// flush must be called with s.mu held; it releases it. Listeners run
// without the session lock and may read the session.
func (s *Session) flush() {
	events := s.pending
	s.pending = nil

	s.outMu.Lock()
	s.outbox = append(s.outbox, events...)
	if s.delivering {
		s.outMu.Unlock()
		s.mu.Unlock()
		return
	}
	s.delivering = true
	s.outMu.Unlock()
	s.mu.Unlock()

	for {
		s.outMu.Lock()
		if len(s.outbox) == 0 {
			s.delivering = false
			s.outMu.Unlock()
			return
		}
		batch := s.outbox
		s.outbox = nil
		s.outMu.Unlock()
		s.deliver(batch)
	}
}

func (s *Session) deliver(events []Event) {
	for _, e := range events {
		if e.Type == eventSound {
			s.audio.Play(e.sound)
			continue
		}
		if s.listener != nil {
			s.listener.OnEvent(e)
		}
	}
}

func (s *Session) queueState() {
	snap := s.snapshotLocked()
	s.pending = append(s.pending, Event{Type: EventState, SessionID: s.id, Snapshot: &snap})
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:        s.id,
		ScenarioID:       s.router.Graph().ID,
		Phase:            s.phase,
		RouteID:          s.player.Route().ID,
		Step:             s.player.Step(),
		StepIndex:        s.player.Index(),
		StepTotal:        s.player.Total(),
		IsLast:           s.player.IsLast(),
		CanAdvance:       s.phase == PhasePlaying && s.player.CanAdvance(),
		CanRetreat:       s.phase == PhasePlaying && s.player.CanRetreat(),
		Remaining:        s.timer.Remaining(),
		RemainingDisplay: FormatTime(s.timer.Remaining()),
		Decisions:        s.decisions,
		CanSubmit:        s.phase == PhaseDecision && s.decisions.Complete(),
		SoundEnabled:     s.soundEnabled,
	}
	if s.results != nil {
		r := *s.results
		snap.Results = &r
	}
	return snap
}

func (s *Session) transition(next Phase) bool {
	if !s.phase.CanTransitionTo(next) {
		return false
	}
	prev := s.phase
	s.phase = next
	if s.metrics != nil {
		s.metrics.RecordPhaseTransition(string(prev), string(next))
	}
	s.logger.Debug("phase changed", map[string]interface{}{
		"session_id": s.id,
		"from":       prev,
		"to":         next,
	})
	return true
}

// finish computes results and enters the results phase. It is also the
// timer's expiry callback, already under the lock.
func (s *Session) finish(forced bool) bool {
	if s.phase != PhaseDecision {
		return false
	}
	s.stopCountdown()
	s.timer.Stop()
	results := Evaluate(s.decisions, s.timer.Remaining(), s.threshold)
	results.Forced = forced
	s.results = &results
	if s.metrics != nil {
		s.metrics.RecordSubmission(forced)
	}
	return s.transition(PhaseResults)
}

func (s *Session) activateStep() {
	s.cancelReveal()
	s.revealGen++
	gen := s.revealGen
	cues := CuesFor(s.player.Step())
	if len(cues) == 0 {
		return
	}
	s.reveal = Schedule(s.clock, cues, func(c Cue) { s.onCue(gen, c) })
}

func (s *Session) cancelReveal() {
	s.revealGen++
	s.reveal.Cancel()
	s.reveal = nil
}

func (s *Session) onCue(gen uint64, c Cue) {
	s.mu.Lock()
	if s.closed || gen != s.revealGen || s.phase != PhasePlaying {
		s.mu.Unlock()
		return
	}
	reveal := c.Reveal
	s.pending = append(s.pending, Event{Type: EventReveal, SessionID: s.id, Reveal: &reveal})
	if reveal.Sound != "" {
		s.pending = append(s.pending, Event{Type: eventSound, SessionID: s.id, sound: reveal.Sound})
	}
	s.flush()
}

func (s *Session) startCountdown() {
	s.stopCountdown()
	gen := s.tickGen
	s.tickStop = s.clock.AfterFunc(tickInterval, func() { s.onTick(gen) })
}

func (s *Session) stopCountdown() {
	s.tickGen++
	if s.tickStop != nil {
		s.tickStop.Stop()
		s.tickStop = nil
	}
}

func (s *Session) onTick(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.tickGen || s.phase != PhaseDecision {
		s.mu.Unlock()
		return
	}
	s.tickStop = nil
	s.timer.Tick()
	remaining := s.timer.Remaining()
	s.pending = append(s.pending, Event{
		Type:      EventTick,
		SessionID: s.id,
		Tick:      &TickInfo{Remaining: remaining, Display: FormatTime(remaining)},
	})
	if s.phase == PhaseDecision {
		s.startCountdown()
	} else {
		s.lastActivity = s.clock.Now()
		s.queueState()
	}
	s.flush()
}
