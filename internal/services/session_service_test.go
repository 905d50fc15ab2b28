package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/audio"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/content"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

func newService(t *testing.T) (*SessionService, *simulation.ManualClock, *utils.MetricsCollector) {
	t.Helper()
	lib, err := content.NewLibrary(nil)
	require.NoError(t, err)
	clock := simulation.NewManualClock()
	metrics := utils.NewMetricsCollector(prometheus.NewRegistry())
	svc := NewSessionService(lib, SessionConfig{
		DecisionSeconds:        60,
		PacingThresholdSeconds: 30,
		IdleTTL:                10 * time.Minute,
	}, clock, metrics)
	t.Cleanup(svc.CloseAll)
	return svc, clock, metrics
}

func TestCreateAndGet(t *testing.T) {
	svc, _, metrics := newService(t)

	session, err := svc.Create("")
	require.NoError(t, err)
	assert.Equal(t, content.DefaultScenarioID, session.ScenarioID())
	assert.Equal(t, 60, session.Snapshot().Remaining)

	got, err := svc.Get(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsActive))

	_, err = svc.Create("volcano")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGetAndDeleteUnknown(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Get("nope")
	require.Error(t, err)
	assert.Equal(t, "SESSION_NOT_FOUND", errors.CodeOf(err))
	assert.True(t, errors.IsNotFoundError(svc.Delete("nope")))
}

func TestDeleteClosesSession(t *testing.T) {
	svc, _, _ := newService(t)
	session, err := svc.Create("")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(session.ID()))
	assert.True(t, session.Closed())
	assert.Zero(t, svc.Count())
}

func TestSweepIdle(t *testing.T) {
	svc, clock, metrics := newService(t)
	idle, err := svc.Create("")
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	busy, err := svc.Create("")
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	require.True(t, busy.Start())

	assert.Equal(t, 1, svc.SweepIdle())
	assert.True(t, idle.Closed())
	assert.False(t, busy.Closed())
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionsExpired))

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, busy.ID(), list[0].ID)
	assert.Equal(t, simulation.PhasePlaying, list[0].Phase)
}

func playToDecision(t *testing.T, session *simulation.Session) {
	t.Helper()
	require.True(t, session.Start())
	for i := 0; i < 14; i++ {
		require.True(t, session.Advance(), "advance %d", i)
	}
	changed, err := session.SelectBranch("call_police")
	require.NoError(t, err)
	require.True(t, changed)
	for i := 0; i < 3; i++ {
		require.True(t, session.Advance())
	}
	require.Equal(t, simulation.PhaseDecision, session.Phase())
}

func TestSweepIdleSparesRunningCountdown(t *testing.T) {
	lib, err := content.NewLibrary(nil)
	require.NoError(t, err)
	clock := simulation.NewManualClock()
	svc := NewSessionService(lib, SessionConfig{
		DecisionSeconds:        600,
		PacingThresholdSeconds: 300,
		IdleTTL:                time.Minute,
	}, clock, nil)
	t.Cleanup(svc.CloseAll)

	session, err := svc.Create("")
	require.NoError(t, err)
	playToDecision(t, session)

	clock.Advance(90 * time.Second)
	assert.Zero(t, svc.SweepIdle())
	assert.False(t, session.Closed())

	clock.Advance(510 * time.Second)
	snap := session.Snapshot()
	require.Equal(t, simulation.PhaseResults, snap.Phase)
	require.NotNil(t, snap.Results)
	assert.True(t, snap.Results.Forced)

	// the forced submit counts as activity
	assert.Zero(t, svc.SweepIdle())
	clock.Advance(61 * time.Second)
	assert.Equal(t, 1, svc.SweepIdle())
	assert.True(t, session.Closed())
}

func TestAudioAndListenerAreWired(t *testing.T) {
	svc, clock, _ := newService(t)
	rec := &audio.Recorder{}
	var states int
	svc.AudioFor = func(string) audio.Player { return rec }
	svc.Listener = simulation.ListenerFunc(func(e simulation.Event) {
		if e.Type == simulation.EventState {
			states++
		}
	})

	session, err := svc.Create("")
	require.NoError(t, err)
	require.True(t, session.Start())
	clock.Advance(3 * time.Second)

	assert.Equal(t, 1, states)
	assert.Len(t, rec.Played(), 4)
}

func TestCloseAll(t *testing.T) {
	svc, _, _ := newService(t)
	a, _ := svc.Create("")
	b, _ := svc.Create("")

	svc.CloseAll()
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Zero(t, svc.Count())
}
