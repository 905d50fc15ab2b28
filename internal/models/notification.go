// internal/models/notification.go
package models

// NotificationKind is the closed set of notification channels
type NotificationKind string

const (
	NotificationThreat   NotificationKind = "threat"
	NotificationWhatsApp NotificationKind = "whatsapp"
	NotificationSMS      NotificationKind = "sms"
)

// Valid reports whether k is a known channel
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationThreat, NotificationWhatsApp, NotificationSMS:
		return true
	}
	return false
}

// Notification is a pop-up style message. Threats carry the channel they
// arrived on in Channel; whatsapp and sms notifications leave it empty.
type Notification struct {
	Kind      NotificationKind `json:"kind" yaml:"kind"`
	Channel   NotificationKind `json:"channel,omitempty" yaml:"channel,omitempty"`
	Sender    string           `json:"sender" yaml:"sender"`
	Recipient string           `json:"recipient,omitempty" yaml:"recipient,omitempty"`
	Number    string           `json:"number,omitempty" yaml:"number,omitempty"`
	Message   string           `json:"message" yaml:"message"`
	Time      string           `json:"time,omitempty" yaml:"time,omitempty"`
}
