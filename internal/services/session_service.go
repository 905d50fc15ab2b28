// internal/services/session_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/audio"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/content"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// SessionConfig holds the per-session settings taken from the app config
type SessionConfig struct {
	DecisionSeconds        int
	PacingThresholdSeconds int
	IdleTTL                time.Duration
	CleanupInterval        time.Duration
}

// SessionService owns every live session
type SessionService struct {
	library *content.Library
	cfg     SessionConfig
	clock   simulation.Clock
	logger  *utils.Logger
	metrics *utils.MetricsCollector

	// Listener receives the events of every session; events carry their
	// session id.
	Listener simulation.Listener
	// AudioFor builds the audio player of a new session
	AudioFor func(sessionID string) audio.Player

	mu       sync.RWMutex
	sessions map[string]*simulation.Session
}

// SessionInfo is the registry view of a session
type SessionInfo struct {
	ID           string           `json:"id"`
	ScenarioID   string           `json:"scenario_id"`
	Phase        simulation.Phase `json:"phase"`
	LastActivity time.Time        `json:"last_activity"`
}

// NewSessionService creates the registry. clock and metrics may be nil.
func NewSessionService(library *content.Library, cfg SessionConfig, clock simulation.Clock, metrics *utils.MetricsCollector) *SessionService {
	if clock == nil {
		clock = simulation.RealClock()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	return &SessionService{
		library:  library,
		cfg:      cfg,
		clock:    clock,
		logger:   utils.GetLogger(),
		metrics:  metrics,
		sessions: make(map[string]*simulation.Session),
	}
}

// Create starts a new session on scenarioID, or the default scenario
// when it is empty.
func (s *SessionService) Create(scenarioID string) (*simulation.Session, error) {
	graph, err := s.library.Get(scenarioID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	opts := simulation.Options{
		Clock:                  s.clock,
		DecisionSeconds:        s.cfg.DecisionSeconds,
		PacingThresholdSeconds: s.cfg.PacingThresholdSeconds,
		Listener:               s.Listener,
		Logger:                 s.logger,
		Metrics:                s.metrics,
	}
	if s.AudioFor != nil {
		opts.Audio = s.AudioFor(id)
	}

	session, err := simulation.NewSession(id, graph, opts)
	if err != nil {
		return nil, errors.WrapError(err, "create session", errors.ErrorTypeConfiguration)
	}

	s.mu.Lock()
	s.sessions[id] = session
	count := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
		s.metrics.SessionsActive.Set(float64(count))
	}
	s.logger.Info("session created", map[string]interface{}{
		"session_id":  id,
		"scenario_id": graph.ID,
	})
	return session, nil
}

// Get returns a live session
func (s *SessionService) Get(id string) (*simulation.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("session %s not found", id), nil).WithCode("SESSION_NOT_FOUND")
	}
	return session, nil
}

// Delete closes and forgets a session
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("session %s not found", id), nil).WithCode("SESSION_NOT_FOUND")
	}
	session.Close()
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(count))
	}
	s.logger.Info("session deleted", map[string]interface{}{"session_id": id})
	return nil
}

// List returns every session ordered by id
func (s *SessionService) List() []SessionInfo {
	s.mu.RLock()
	out := make([]SessionInfo, 0, len(s.sessions))
	for id, session := range s.sessions {
		out = append(out, SessionInfo{
			ID:           id,
			ScenarioID:   session.ScenarioID(),
			Phase:        session.Phase(),
			LastActivity: session.LastActivity(),
		})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count is the number of live sessions
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartCleanup sweeps idle sessions until ctx is done
func (s *SessionService) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepIdle()
			}
		}
	}()
}

// SweepIdle closes sessions idle for longer than the TTL and returns
// how many were removed. A running decision countdown is never swept;
// its expiry moves the session to results.
func (s *SessionService) SweepIdle() int {
	now := s.clock.Now()

	s.mu.Lock()
	var expired []*simulation.Session
	for id, session := range s.sessions {
		if session.Phase() == simulation.PhaseDecision {
			continue
		}
		if now.Sub(session.LastActivity()) > s.cfg.IdleTTL {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	for _, session := range expired {
		session.Close()
		s.logger.Info("session expired", map[string]interface{}{"session_id": session.ID()})
	}
	if s.metrics != nil && len(expired) > 0 {
		s.metrics.SessionsExpired.Add(float64(len(expired)))
		s.metrics.SessionsActive.Set(float64(count))
	}
	return len(expired)
}

// CloseAll closes every session; used on shutdown
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*simulation.Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(0)
	}
	s.logger.Info("all sessions closed", map[string]interface{}{"count": len(sessions)})
}
