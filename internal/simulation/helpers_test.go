package simulation

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/audio"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/content"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// branchGraph has a start route ending in a transition to A or B
func branchGraph(t *testing.T) *models.Graph {
	t.Helper()
	g := &models.Graph{
		ID:           "branching",
		InitialRoute: "start",
		Routes: []models.Route{
			{ID: "start", Steps: []models.Step{
				{Title: "one", Type: models.StepEmail, Content: models.EmailContent{Subject: "hello"}},
				{Title: "two", Type: models.StepAlert, Content: models.AlertContent{Title: "careful"}},
				{Title: "choose", Type: models.StepTransition, Content: models.TransitionContent{
					Title:   "pick one",
					Options: []models.TransitionOption{{ID: "A", Option: "go A"}, {ID: "B", Option: "go B"}},
				}},
			}},
			{ID: "A", Steps: []models.Step{
				{Title: "a1", Type: models.StepInstructions, Content: models.InstructionsContent{Title: "a"}},
				{Title: "a2", Type: models.StepEmail, Content: models.EmailContent{Subject: "a"}},
			}},
			{ID: "B", Steps: []models.Step{
				{Title: "b1", Type: models.StepInstructions, Content: models.InstructionsContent{Title: "b"}},
			}},
		},
	}
	require.NoError(t, g.Validate())
	return g
}

func defaultGraph(t *testing.T) *models.Graph {
	t.Helper()
	g, err := content.Default()
	require.NoError(t, err)
	return g
}

// eventLog records listener events
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) OnEvent(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(typ EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (l *eventLog) last(typ EventType) (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Type == typ {
			return l.events[i], true
		}
	}
	return Event{}, false
}

type harness struct {
	session *Session
	clock   *ManualClock
	sounds  *audio.Recorder
	events  *eventLog
}

func newHarness(t *testing.T, g *models.Graph) *harness {
	t.Helper()
	h := &harness{
		clock:  NewManualClock(),
		sounds: &audio.Recorder{},
		events: &eventLog{},
	}
	s, err := NewSession("test-session", g, Options{
		Clock:    h.clock,
		Audio:    h.sounds,
		Listener: h.events,
		Logger:   utils.NewLogger(zap.NewNop()),
		Metrics:  utils.NewMetricsCollector(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	h.session = s
	t.Cleanup(s.Close)
	return h
}

// advanceTo moves a playing session forward n steps
func (h *harness) advanceTo(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.True(t, h.session.Advance(), "advance %d", i)
	}
}

// enterDecision plays route B of branchGraph to the decision phase
func (h *harness) enterDecision(t *testing.T) {
	t.Helper()
	require.True(t, h.session.Start())
	h.advanceTo(t, 2)
	changed, err := h.session.SelectBranch("B")
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, h.session.Advance())
	require.Equal(t, PhaseDecision, h.session.Phase())
}

func (h *harness) fillDecisions(t *testing.T) {
	t.Helper()
	for field, value := range map[models.DecisionField]string{
		models.FieldImmediateAction: "evacuate",
		models.FieldTeamComm:        "transparent",
		models.FieldClientAction:    "remote",
	} {
		changed, err := h.session.SetDecisionField(field, value)
		require.NoError(t, err)
		require.True(t, changed)
	}
}
