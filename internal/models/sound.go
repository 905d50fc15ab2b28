// internal/models/sound.go
package models

// SoundKind is what the audio collaborator is asked to play
type SoundKind string

const (
	SoundMessage   SoundKind = "message"
	SoundSMS       SoundKind = "sms"
	SoundEmail     SoundKind = "email"
	SoundAlert     SoundKind = "alert"
	SoundSocial    SoundKind = "social"
	SoundExplosion SoundKind = "explosion"
)

// SoundKinds lists every kind in a stable order
var SoundKinds = []SoundKind{
	SoundMessage, SoundSMS, SoundEmail, SoundAlert, SoundSocial, SoundExplosion,
}

// Valid reports whether k belongs to the closed set
func (k SoundKind) Valid() bool {
	for _, known := range SoundKinds {
		if k == known {
			return true
		}
	}
	return false
}
