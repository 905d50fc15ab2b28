// internal/audio/audio.go

// Package audio is the sound side of a session. The simulation only asks
// for a kind of sound; players decide what, if anything, gets heard.
package audio

import (
	"sync"
	"sync/atomic"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/utils"
)

// Player plays one notification sound
type Player interface {
	Play(kind models.SoundKind)
}

// Func adapts a function to Player
type Func func(kind models.SoundKind)

func (f Func) Play(kind models.SoundKind) { f(kind) }

type nopPlayer struct{}

func (nopPlayer) Play(models.SoundKind) {}

// Nop discards every request
func Nop() Player { return nopPlayer{} }

// Logging writes each request to the logger at debug level
type Logging struct {
	Logger *utils.Logger
}

func (l Logging) Play(kind models.SoundKind) {
	logger := l.Logger
	if logger == nil {
		logger = utils.GetLogger()
	}
	tone := ToneFor(kind)
	logger.Debug("sound", map[string]interface{}{
		"kind":     kind,
		"waveform": tone.Waveform,
		"duration": tone.DurationMs,
	})
}

// Multi plays on every player in order
type Multi []Player

func (m Multi) Play(kind models.SoundKind) {
	for _, p := range m {
		if p != nil {
			p.Play(kind)
		}
	}
}

// Gate forwards to Next unless muted. Sessions play through a gate so
// the sound toggle takes effect immediately.
type Gate struct {
	Next  Player
	muted atomic.Bool
}

func NewGate(next Player) *Gate {
	return &Gate{Next: next}
}

func (g *Gate) Play(kind models.SoundKind) {
	if g.muted.Load() || g.Next == nil {
		return
	}
	g.Next.Play(kind)
}

func (g *Gate) SetMuted(muted bool) { g.muted.Store(muted) }
func (g *Gate) Muted() bool         { return g.muted.Load() }

// Recorder keeps every request; used by tests
type Recorder struct {
	mu    sync.Mutex
	kinds []models.SoundKind
}

func (r *Recorder) Play(kind models.SoundKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

// Played returns a copy of the recorded kinds
func (r *Recorder) Played() []models.SoundKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SoundKind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// Reset forgets every recorded request
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = nil
}
