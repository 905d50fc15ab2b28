// internal/models/step.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StepType is the discriminant of a step payload
type StepType string

const (
	StepWhatsAppGroup        StepType = "whatsappGroup"
	StepEmail                StepType = "email"
	StepMixed                StepType = "mixed"
	StepEvent                StepType = "event"
	StepInstructions         StepType = "instructions"
	StepTransition           StepType = "transition"
	StepBreakingNew          StepType = "breaking-new"
	StepWhatsAppChat         StepType = "whatsapp-chat"
	StepHeadingNew           StepType = "headingNew"
	StepWhatsAppNotification StepType = "whatsappNotification"
	StepSMSNotification      StepType = "smsNotification"
	StepAlert                StepType = "alert"
	StepTwitterPost          StepType = "twitterPost"
	StepMeetingRoom          StepType = "meetingRoom"
)

// Known reports whether t is one of the authored step kinds
func (t StepType) Known() bool {
	switch t {
	case StepWhatsAppGroup, StepEmail, StepMixed, StepEvent, StepInstructions,
		StepTransition, StepBreakingNew, StepWhatsAppChat, StepHeadingNew,
		StepWhatsAppNotification, StepSMSNotification, StepAlert,
		StepTwitterPost, StepMeetingRoom:
		return true
	}
	return false
}

// StepContent is implemented by every step payload. The unexported
// marker keeps the set closed to this package.
type StepContent interface {
	StepType() StepType
	stepContent()
}

// Step is one card of a route
type Step struct {
	Time    string      `json:"time" yaml:"time"`
	Title   string      `json:"title" yaml:"title"`
	Type    StepType    `json:"type" yaml:"type"`
	Content StepContent `json:"content" yaml:"-"`
}

// IsTransition reports whether the step waits for a branch choice
func (s Step) IsTransition() bool {
	return s.Type == StepTransition
}

// Message is a single chat bubble
type Message struct {
	Sender  string `json:"sender" yaml:"sender"`
	Message string `json:"message" yaml:"message"`
	Sent    bool   `json:"sent" yaml:"sent"`
}

// Tweet is a social media post
type Tweet struct {
	User    string `json:"user" yaml:"user"`
	Handle  string `json:"handle" yaml:"handle"`
	Message string `json:"message" yaml:"message"`
	Time    string `json:"time,omitempty" yaml:"time,omitempty"`
}

// GroupChatContent is the payload of a group chat step
type GroupChatContent struct {
	Messages []Message `json:"messages" yaml:"messages"`
}

type EmailContent struct {
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
}

// MixedContent groups several steps into one card
type MixedContent struct {
	Steps []Step `json:"steps" yaml:"steps"`
}

// ExplosionContent is the payload of an "event" step
type ExplosionContent struct {
	Explosion string       `json:"explosion" yaml:"explosion"`
	Tweets    []Tweet      `json:"tweets" yaml:"tweets"`
	WhatsApp  []Message    `json:"whatsapp" yaml:"whatsapp"`
	Threat    Notification `json:"threat" yaml:"threat"`
}

type InstructionsContent struct {
	Title        string   `json:"title" yaml:"title"`
	Instructions []string `json:"instructions" yaml:"instructions"`
	Urgency      string   `json:"urgency" yaml:"urgency"`
	Priority     string   `json:"priority" yaml:"priority"`
}

// TransitionOption points at a route. ID is the target route id.
type TransitionOption struct {
	ID     string `json:"id" yaml:"id"`
	Option string `json:"option" yaml:"option"`
}

type TransitionContent struct {
	Title   string             `json:"title" yaml:"title"`
	Options []TransitionOption `json:"options" yaml:"options"`
}

type BreakingNewContent struct {
	URL      string `json:"url" yaml:"url"`
	Headline string `json:"headline" yaml:"headline"`
}

type WhatsAppChatContent struct {
	ProfileImage string    `json:"profile_image" yaml:"profileImage"`
	ProfileName  string    `json:"profile_name" yaml:"profileName"`
	Messages     []Message `json:"messages" yaml:"messages"`
}

type HeadingNewContent struct {
	Heading        string `json:"heading" yaml:"heading"`
	Article        string `json:"article" yaml:"article"`
	PlaceholderImg string `json:"placeholder_img" yaml:"placeholderImg"`
	Date           string `json:"date" yaml:"date"`
}

// NotificationContent backs both whatsapp and sms notification steps
type NotificationContent struct {
	Notification `yaml:",inline"`
}

type AlertContent struct {
	Title    string `json:"title" yaml:"title"`
	Context  string `json:"context" yaml:"context"`
	Urgency  string `json:"urgency" yaml:"urgency"`
	Priority string `json:"priority" yaml:"priority"`
}

type TweetContent struct {
	Tweet `yaml:",inline"`
}

type MeetingRoom struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type MeetingRoomContent struct {
	Rooms []MeetingRoom `json:"rooms" yaml:"rooms"`
}

func (GroupChatContent) StepType() StepType    { return StepWhatsAppGroup }
func (EmailContent) StepType() StepType        { return StepEmail }
func (MixedContent) StepType() StepType        { return StepMixed }
func (ExplosionContent) StepType() StepType    { return StepEvent }
func (InstructionsContent) StepType() StepType { return StepInstructions }
func (TransitionContent) StepType() StepType   { return StepTransition }
func (BreakingNewContent) StepType() StepType  { return StepBreakingNew }
func (WhatsAppChatContent) StepType() StepType { return StepWhatsAppChat }
func (HeadingNewContent) StepType() StepType   { return StepHeadingNew }
func (AlertContent) StepType() StepType        { return StepAlert }
func (TweetContent) StepType() StepType        { return StepTwitterPost }
func (MeetingRoomContent) StepType() StepType  { return StepMeetingRoom }

// StepType of a notification depends on its channel
func (n NotificationContent) StepType() StepType {
	if n.Kind == NotificationSMS {
		return StepSMSNotification
	}
	return StepWhatsAppNotification
}

func (GroupChatContent) stepContent()    {}
func (EmailContent) stepContent()        {}
func (MixedContent) stepContent()        {}
func (ExplosionContent) stepContent()    {}
func (InstructionsContent) stepContent() {}
func (TransitionContent) stepContent()   {}
func (BreakingNewContent) stepContent()  {}
func (WhatsAppChatContent) stepContent() {}
func (HeadingNewContent) stepContent()   {}
func (NotificationContent) stepContent() {}
func (AlertContent) stepContent()        {}
func (TweetContent) stepContent()        {}
func (MeetingRoomContent) stepContent()  {}

// newContent returns an empty payload for the given discriminant
func newContent(t StepType) (StepContent, error) {
	switch t {
	case StepWhatsAppGroup:
		return &GroupChatContent{}, nil
	case StepEmail:
		return &EmailContent{}, nil
	case StepMixed:
		return &MixedContent{}, nil
	case StepEvent:
		return &ExplosionContent{}, nil
	case StepInstructions:
		return &InstructionsContent{}, nil
	case StepTransition:
		return &TransitionContent{}, nil
	case StepBreakingNew:
		return &BreakingNewContent{}, nil
	case StepWhatsAppChat:
		return &WhatsAppChatContent{}, nil
	case StepHeadingNew:
		return &HeadingNewContent{}, nil
	case StepWhatsAppNotification, StepSMSNotification:
		return &NotificationContent{}, nil
	case StepAlert:
		return &AlertContent{}, nil
	case StepTwitterPost:
		return &TweetContent{}, nil
	case StepMeetingRoom:
		return &MeetingRoomContent{}, nil
	default:
		return nil, fmt.Errorf("unknown step type %q", t)
	}
}

// UnmarshalYAML decodes the header first and then the payload selected
// by the type tag. Both reject keys the target does not declare.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Time    string    `yaml:"time"`
		Title   string    `yaml:"title"`
		Type    StepType  `yaml:"type"`
		Content yaml.Node `yaml:"content"`
	}
	if err := decodeStrict(value, &raw); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	content, err := newContent(raw.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	if raw.Content.Kind != 0 {
		if err := decodeStrict(&raw.Content, content); err != nil {
			return fmt.Errorf("line %d: decode %s content: %w", value.Line, raw.Type, err)
		}
	}

	s.Time = raw.Time
	s.Title = raw.Title
	s.Type = raw.Type
	s.Content = deref(content, raw.Type)
	return nil
}

// decodeStrict decodes node into out with unknown keys reported as
// errors. Node.Decode does not inherit KnownFields from the outer
// decoder, so the node is re-encoded and read by a strict decoder.
func decodeStrict(node *yaml.Node, out interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// UnmarshalJSON reads the form produced by encoding a Step, so clients
// can decode snapshots. A step without a type decodes to the zero Step.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw struct {
		Time    string          `json:"time"`
		Title   string          `json:"title"`
		Type    StepType        `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Time = raw.Time
	s.Title = raw.Title
	s.Type = raw.Type
	s.Content = nil
	if raw.Type == "" {
		return nil
	}

	content, err := newContent(raw.Type)
	if err != nil {
		return err
	}
	if len(raw.Content) > 0 && string(raw.Content) != "null" {
		if err := json.Unmarshal(raw.Content, content); err != nil {
			return fmt.Errorf("decode %s content: %w", raw.Type, err)
		}
	}
	s.Content = deref(content, raw.Type)
	return nil
}

// deref stores payloads by value so authored steps stay immutable once
// they leave the decoder.
func deref(c StepContent, t StepType) StepContent {
	switch v := c.(type) {
	case *GroupChatContent:
		return *v
	case *EmailContent:
		return *v
	case *MixedContent:
		return *v
	case *ExplosionContent:
		if v.Threat.Kind == "" {
			v.Threat.Kind = NotificationThreat
		}
		return *v
	case *InstructionsContent:
		return *v
	case *TransitionContent:
		return *v
	case *BreakingNewContent:
		return *v
	case *WhatsAppChatContent:
		return *v
	case *HeadingNewContent:
		return *v
	case *NotificationContent:
		if v.Kind == "" {
			if t == StepSMSNotification {
				v.Kind = NotificationSMS
			} else {
				v.Kind = NotificationWhatsApp
			}
		}
		return *v
	case *AlertContent:
		return *v
	case *TweetContent:
		return *v
	case *MeetingRoomContent:
		return *v
	}
	return c
}
