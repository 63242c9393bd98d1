// internal/model/timeline.go
package model

import "time"

type EventKind string

const (
	EventCreation       EventKind = "creation"
	EventCampaignJoined EventKind = "campaign_joined"
	EventTaskCompleted  EventKind = "task_completed"
	EventCompanyChanged EventKind = "company_changed"
)

// TimelineEvent is produced fresh on every read and never persisted.
type TimelineEvent struct {
	Kind        EventKind `json:"kind"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Actor       string    `json:"actor,omitempty"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
}
