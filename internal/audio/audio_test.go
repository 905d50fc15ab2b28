package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
)

func TestGateMutes(t *testing.T) {
	rec := &Recorder{}
	gate := NewGate(rec)

	gate.Play(models.SoundAlert)
	gate.SetMuted(true)
	gate.Play(models.SoundSMS)
	gate.SetMuted(false)
	gate.Play(models.SoundEmail)

	assert.Equal(t, []models.SoundKind{models.SoundAlert, models.SoundEmail}, rec.Played())
	assert.False(t, gate.Muted())
}

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi{a, nil, b}.Play(models.SoundSocial)

	assert.Equal(t, []models.SoundKind{models.SoundSocial}, a.Played())
	assert.Equal(t, []models.SoundKind{models.SoundSocial}, b.Played())
}

func TestForwarderSendsTone(t *testing.T) {
	var got []Cue
	f := Forwarder{Send: func(c Cue) { got = append(got, c) }}
	f.Play(models.SoundExplosion)

	if assert.Len(t, got, 1) {
		assert.Equal(t, "sound", got[0].Type)
		assert.Equal(t, models.SoundExplosion, got[0].Kind)
		assert.Equal(t, "sawtooth", got[0].Tone.Waveform)
		assert.Equal(t, 800, got[0].Tone.DurationMs)
	}
}

func TestEveryKindHasATone(t *testing.T) {
	for _, kind := range models.SoundKinds {
		assert.NotZero(t, ToneFor(kind).DurationMs, kind)
	}
	assert.Zero(t, ToneFor("whistle").DurationMs)
}
