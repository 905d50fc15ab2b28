// internal/simulation/reveal.go
package simulation

import (
	"fmt"
	"time"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
)

// RevealKind says what part of a step became visible
type RevealKind string

const (
	RevealMessage      RevealKind = "message"
	RevealComplete     RevealKind = "complete"
	RevealEmail        RevealKind = "email"
	RevealExplosion    RevealKind = "explosion"
	RevealTweet        RevealKind = "tweet"
	RevealWhatsApp     RevealKind = "whatsapp"
	RevealAlert        RevealKind = "alert"
	RevealNotification RevealKind = "notification"
	RevealPost         RevealKind = "post"
)

// Reveal is delivered to listeners when a cue fires. Path locates the
// step inside nested mixed content; Item indexes within that step.
type Reveal struct {
	Kind  RevealKind       `json:"kind"`
	Path  string           `json:"path"`
	Item  int              `json:"item"`
	Sound models.SoundKind `json:"sound,omitempty"`
}

const (
	messageInterval  = 800 * time.Millisecond
	completionLag    = 500 * time.Millisecond
	emailDelay       = 500 * time.Millisecond
	tweetOffset      = 1000 * time.Millisecond
	tweetInterval    = 1000 * time.Millisecond
	eventWhatsAppCue = 3000 * time.Millisecond
)

// CuesFor returns the reveal schedule of a step. Mixed steps are
// flattened iteratively up to models.MaxNestingDepth.
func CuesFor(step models.Step) []Cue {
	type frame struct {
		step  models.Step
		path  string
		depth int
	}

	var cues []Cue
	stack := []frame{{step: step, path: "0"}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch c := f.step.Content.(type) {
		case models.MixedContent:
			if f.depth >= models.MaxNestingDepth {
				continue
			}
			for i := len(c.Steps) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					step:  c.Steps[i],
					path:  fmt.Sprintf("%s.%d", f.path, i),
					depth: f.depth + 1,
				})
			}
		default:
			cues = append(cues, leafCues(f.step, f.path)...)
		}
	}
	return cues
}

func leafCues(step models.Step, path string) []Cue {
	at := func(d time.Duration, kind RevealKind, item int, sound models.SoundKind) Cue {
		return Cue{Delay: d, Reveal: Reveal{Kind: kind, Path: path, Item: item, Sound: sound}}
	}

	switch c := step.Content.(type) {
	case models.GroupChatContent:
		n := len(c.Messages)
		if n == 0 {
			return nil
		}
		cues := make([]Cue, 0, n+1)
		for i := 0; i < n; i++ {
			cues = append(cues, at(time.Duration(i)*messageInterval, RevealMessage, i, models.SoundMessage))
		}
		return append(cues, at(time.Duration(n-1)*messageInterval+completionLag, RevealComplete, n, ""))
	case models.EmailContent:
		return []Cue{at(emailDelay, RevealEmail, 0, models.SoundEmail)}
	case models.ExplosionContent:
		cues := []Cue{at(0, RevealExplosion, 0, models.SoundExplosion)}
		for i := range c.Tweets {
			cues = append(cues, at(tweetOffset+time.Duration(i)*tweetInterval, RevealTweet, i, models.SoundSocial))
		}
		return append(cues, at(eventWhatsAppCue, RevealWhatsApp, 0, models.SoundMessage))
	case models.AlertContent:
		return []Cue{at(0, RevealAlert, 0, models.SoundAlert)}
	case models.NotificationContent:
		sound := models.SoundMessage
		if c.Kind == models.NotificationSMS {
			sound = models.SoundSMS
		}
		return []Cue{at(0, RevealNotification, 0, sound)}
	case models.TweetContent:
		return []Cue{at(0, RevealPost, 0, models.SoundSocial)}
	}
	return nil
}
