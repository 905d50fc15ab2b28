// internal/audio/tone.go
package audio

import "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"

// Tone describes an oscillator sweep a browser can synthesise
type Tone struct {
	Waveform   string  `json:"waveform"`
	StartHz    float64 `json:"start_hz"`
	EndHz      float64 `json:"end_hz"`
	Gain       float64 `json:"gain"`
	DurationMs int     `json:"duration_ms"`
}

// ToneFor maps a sound kind to its tone. Unknown kinds get a silent tone.
func ToneFor(kind models.SoundKind) Tone {
	switch kind {
	case models.SoundMessage:
		// rising bubble
		return Tone{Waveform: "sine", StartHz: 800, EndHz: 1600, Gain: 0.05, DurationMs: 150}
	case models.SoundSMS:
		// double beep
		return Tone{Waveform: "square", StartHz: 800, EndHz: 800, Gain: 0.05, DurationMs: 200}
	case models.SoundEmail:
		return Tone{Waveform: "sine", StartHz: 550, EndHz: 550, Gain: 0.1, DurationMs: 800}
	case models.SoundAlert:
		return Tone{Waveform: "sawtooth", StartHz: 150, EndHz: 100, Gain: 0.1, DurationMs: 400}
	case models.SoundSocial:
		return Tone{Waveform: "triangle", StartHz: 1200, EndHz: 600, Gain: 0.08, DurationMs: 50}
	case models.SoundExplosion:
		return Tone{Waveform: "sawtooth", StartHz: 50, EndHz: 10, Gain: 0.3, DurationMs: 800}
	default:
		return Tone{}
	}
}

// Cue is the message a remote player receives
type Cue struct {
	Type string           `json:"type"`
	Kind models.SoundKind `json:"kind"`
	Tone Tone             `json:"tone"`
}

// Forwarder hands each request to Send as a Cue, for a client that
// produces the sound itself.
type Forwarder struct {
	Send func(Cue)
}

func (f Forwarder) Play(kind models.SoundKind) {
	if f.Send == nil {
		return
	}
	f.Send(Cue{Type: "sound", Kind: kind, Tone: ToneFor(kind)})
}
