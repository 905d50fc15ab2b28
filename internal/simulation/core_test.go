package simulation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
)

func TestPhaseTransitions(t *testing.T) {
	allowed := map[Phase]Phase{
		PhaseIntro:    PhasePlaying,
		PhasePlaying:  PhaseDecision,
		PhaseDecision: PhaseResults,
		PhaseResults:  PhaseIntro,
	}
	for _, from := range Phases {
		for _, to := range Phases {
			assert.Equal(t, allowed[from] == to, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, Phase("paused").CanTransitionTo(PhaseIntro))
	assert.False(t, Phase("paused").Valid())
}

func TestPlayerAdvanceEveryRoute(t *testing.T) {
	g := defaultGraph(t)
	for i := range g.Routes {
		route := &g.Routes[i]
		for idx, step := range route.Steps {
			p := NewPlayer(route)
			p.index = idx

			result := p.Advance()
			switch {
			case step.IsTransition():
				assert.Equal(t, AdvanceBlocked, result, "%s[%d]", route.ID, idx)
				assert.Equal(t, idx, p.Index())
			case idx < route.Last():
				assert.Equal(t, AdvanceMoved, result, "%s[%d]", route.ID, idx)
				assert.Equal(t, idx+1, p.Index())
			default:
				assert.Equal(t, AdvanceFinished, result, "%s[%d]", route.ID, idx)
				assert.Equal(t, idx, p.Index())
			}
		}
	}
}

func TestPlayerRetreatStaysInRoute(t *testing.T) {
	g := branchGraph(t)
	start, _ := g.Route("start")
	p := NewPlayer(start)

	assert.False(t, p.Retreat())
	assert.Equal(t, AdvanceMoved, p.Advance())
	assert.True(t, p.Retreat())
	assert.Equal(t, 0, p.Index())

	a, _ := g.Route("A")
	p.Load(a)
	assert.False(t, p.CanRetreat())
	assert.False(t, p.Retreat())
	assert.Equal(t, "A", p.Route().ID)
}

func TestRouterResolve(t *testing.T) {
	r := NewRouter(branchGraph(t))

	route, err := r.Resolve("A")
	require.NoError(t, err)
	assert.Equal(t, "A", route.ID)

	initial, err := r.Initial()
	require.NoError(t, err)
	assert.Equal(t, "start", initial.ID)

	_, err = r.Resolve("C")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRouteNotFound))
	assert.True(t, apperrors.IsConfigurationError(err))
	assert.Equal(t, RouteNotFoundCode, apperrors.CodeOf(err))
}

func TestDecisionTimerCountsDownOnce(t *testing.T) {
	fired := 0
	timer := NewDecisionTimer(600, func() { fired++ })
	assert.False(t, timer.Tick(), "halted timer ignores ticks")
	assert.Equal(t, 600, timer.Remaining())

	timer.Start(600)
	for i := 0; i < 599; i++ {
		timer.Tick()
	}
	assert.Equal(t, 1, timer.Remaining())
	assert.Equal(t, 0, fired)

	timer.Tick()
	assert.Equal(t, 0, timer.Remaining())
	assert.Equal(t, 1, fired)
	assert.False(t, timer.Running())

	for i := 0; i < 5; i++ {
		timer.Tick()
	}
	assert.Equal(t, 0, timer.Remaining())
	assert.Equal(t, 1, fired)
}

func TestDecisionTimerResetAndStop(t *testing.T) {
	fired := 0
	timer := NewDecisionTimer(10, func() { fired++ })
	timer.Start(3)
	timer.Tick()
	timer.Stop()
	timer.Tick()
	assert.Equal(t, 2, timer.Remaining())

	timer.Reset()
	assert.Equal(t, 10, timer.Remaining())
	assert.False(t, timer.Running())
	assert.False(t, timer.Expired())

	timer.Start(0)
	timer.Tick()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, timer.Remaining())
}

func TestSequenceFiresInOrderAndCancels(t *testing.T) {
	clock := NewManualClock()
	var got []int
	cues := []Cue{
		{Delay: 200 * time.Millisecond, Reveal: Reveal{Item: 2}},
		{Delay: 0, Reveal: Reveal{Item: 0}},
		{Delay: 100 * time.Millisecond, Reveal: Reveal{Item: 1}},
	}
	seq := Schedule(clock, cues, func(c Cue) { got = append(got, c.Reveal.Item) })

	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, []int{0, 1}, got)

	seq.Cancel()
	seq.Cancel()
	clock.Advance(time.Second)
	assert.Equal(t, []int{0, 1}, got)
	assert.Zero(t, clock.Pending())

	var nilSeq *Sequence
	assert.NotPanics(t, nilSeq.Cancel)
}

func TestCuesForGroupChat(t *testing.T) {
	step := models.Step{Type: models.StepWhatsAppGroup, Content: models.GroupChatContent{
		Messages: []models.Message{{Sender: "a"}, {Sender: "b"}, {Sender: "c"}},
	}}
	cues := CuesFor(step)
	require.Len(t, cues, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, time.Duration(i)*800*time.Millisecond, cues[i].Delay)
		assert.Equal(t, RevealMessage, cues[i].Reveal.Kind)
		assert.Equal(t, models.SoundMessage, cues[i].Reveal.Sound)
	}
	assert.Equal(t, 2100*time.Millisecond, cues[3].Delay)
	assert.Equal(t, RevealComplete, cues[3].Reveal.Kind)
	assert.Empty(t, cues[3].Reveal.Sound)
}

func TestCuesForEvent(t *testing.T) {
	step := models.Step{Type: models.StepEvent, Content: models.ExplosionContent{
		Tweets: []models.Tweet{{User: "x"}, {User: "y"}},
	}}
	cues := CuesFor(step)
	require.Len(t, cues, 4)
	assert.Equal(t, Cue{Delay: 0, Reveal: Reveal{Kind: RevealExplosion, Path: "0", Sound: models.SoundExplosion}}, cues[0])
	assert.Equal(t, time.Second, cues[1].Delay)
	assert.Equal(t, 2*time.Second, cues[2].Delay)
	assert.Equal(t, models.SoundSocial, cues[2].Reveal.Sound)
	assert.Equal(t, 3*time.Second, cues[3].Delay)
	assert.Equal(t, models.SoundMessage, cues[3].Reveal.Sound)
}

func TestCuesForMixedFlattensChildren(t *testing.T) {
	inner := models.Step{Type: models.StepMixed, Content: models.MixedContent{Steps: []models.Step{
		{Type: models.StepSMSNotification, Content: models.NotificationContent{Notification: models.Notification{Kind: models.NotificationSMS}}},
	}}}
	step := models.Step{Type: models.StepMixed, Content: models.MixedContent{Steps: []models.Step{
		{Type: models.StepAlert, Content: models.AlertContent{}},
		inner,
		{Type: models.StepWhatsAppNotification, Content: models.NotificationContent{Notification: models.Notification{Kind: models.NotificationWhatsApp}}},
		{Type: models.StepInstructions, Content: models.InstructionsContent{}},
	}}}

	cues := CuesFor(step)
	require.Len(t, cues, 3)
	assert.Equal(t, models.SoundAlert, cues[0].Reveal.Sound)
	assert.Equal(t, "0.0", cues[0].Reveal.Path)
	assert.Equal(t, models.SoundSMS, cues[1].Reveal.Sound)
	assert.Equal(t, "0.1.0", cues[1].Reveal.Path)
	assert.Equal(t, models.SoundMessage, cues[2].Reveal.Sound)
}

func TestCuesForMixedStopsAtDepthLimit(t *testing.T) {
	step := models.Step{Type: models.StepAlert, Content: models.AlertContent{}}
	for i := 0; i < models.MaxNestingDepth+2; i++ {
		step = models.Step{Type: models.StepMixed, Content: models.MixedContent{Steps: []models.Step{step}}}
	}
	assert.Empty(t, CuesFor(step))
}

func TestCuesForSilentSteps(t *testing.T) {
	for _, step := range []models.Step{
		{Type: models.StepInstructions, Content: models.InstructionsContent{}},
		{Type: models.StepTransition, Content: models.TransitionContent{}},
		{Type: models.StepWhatsAppGroup, Content: models.GroupChatContent{}},
	} {
		assert.Empty(t, CuesFor(step), step.Type)
	}
	email := CuesFor(models.Step{Type: models.StepEmail, Content: models.EmailContent{}})
	require.Len(t, email, 1)
	assert.Equal(t, 500*time.Millisecond, email[0].Delay)
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name      string
		decisions models.Decisions
		remaining int
		verdicts  []Verdict
		pacing    Pacing
	}{
		{
			name:      "best answers quickly",
			decisions: models.Decisions{ImmediateAction: "evacuate", TeamComm: "transparent", ClientAction: "remote"},
			remaining: 420,
			verdicts:  []Verdict{VerdictCorrect, VerdictBest, VerdictSound},
			pacing:    PacingBrisk,
		},
		{
			name:      "worst answers at the threshold",
			decisions: models.Decisions{ImmediateAction: "continue", TeamComm: "silence", ClientAction: "normal"},
			remaining: 300,
			verdicts:  []Verdict{VerdictFatal, VerdictDangerous, VerdictNegligent},
			pacing:    PacingDeliberate,
		},
		{
			name:      "middle answers",
			decisions: models.Decisions{ImmediateAction: "police", TeamComm: "partial", ClientAction: "cancel"},
			remaining: 10,
			verdicts:  []Verdict{VerdictPartial, VerdictRisky, VerdictCostly},
			pacing:    PacingDeliberate,
		},
		{
			name:      "forced with nothing filled",
			decisions: models.Decisions{},
			remaining: 0,
			verdicts:  []Verdict{VerdictPartial, VerdictRisky, VerdictUnspecified},
			pacing:    PacingDeliberate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Evaluate(tc.decisions, tc.remaining, 300)
			require.Len(t, r.Feedback, 3)
			for i, v := range tc.verdicts {
				assert.Equal(t, v, r.Feedback[i].Verdict)
				assert.NotEmpty(t, r.Feedback[i].Message)
			}
			assert.Equal(t, tc.pacing, r.Pacing)
			assert.Equal(t, FormatTime(tc.remaining), r.RemainingDisplay)
			assert.Equal(t, r, Evaluate(tc.decisions, tc.remaining, 300))
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "10:00", FormatTime(600))
	assert.Equal(t, "4:05", FormatTime(245))
	assert.Equal(t, "0:00", FormatTime(0))
	assert.Equal(t, "0:00", FormatTime(-3))
}
