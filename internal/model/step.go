// internal/model/step.go
package model

import "strings"

// StepKind is the action type of a journey step.
type StepKind string

const (
	StepEmail    StepKind = "email"
	StepLinkedIn StepKind = "linkedin"
	StepWhatsApp StepKind = "whatsapp"
	StepCall     StepKind = "call"
	StepMeeting  StepKind = "meeting"

	// StepWait is a pure delay. It never becomes a task and never counts
	// towards progress, but its points still count when completed.
	StepWait StepKind = "wait"
)

var stepTitles = map[StepKind]string{
	StepEmail:    "Send email",
	StepLinkedIn: "Send LinkedIn message",
	StepWhatsApp: "Send WhatsApp message",
	StepCall:     "Call",
	StepMeeting:  "Hold meeting",
	StepWait:     "Wait",
}

// Step is one scheduled action inside a campaign journey.
type Step struct {
	ID         string   `json:"id" yaml:"id" validate:"required"`
	Kind       StepKind `json:"kind" yaml:"kind" validate:"required,oneof=email linkedin whatsapp call meeting wait"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	DayOffset  int      `json:"day_offset" yaml:"day_offset" validate:"gte=0"`
	Completed  bool     `json:"completed" yaml:"completed"`
	Points     int      `json:"points" yaml:"points" validate:"gte=0"`
	Owner      string   `json:"owner" yaml:"owner"`
	OwnerID    string   `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	TargetName string   `json:"target_name,omitempty" yaml:"target_name,omitempty"`
}

func (s Step) IsWait() bool {
	return s.Kind == StepWait
}

// DisplayTitle returns the explicit title or one derived from the kind.
func (s Step) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	if t, ok := stepTitles[s.Kind]; ok {
		return t
	}
	return string(s.Kind)
}
