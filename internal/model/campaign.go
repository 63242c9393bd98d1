// internal/model/campaign.go
package model

import "time"

const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

type Campaign struct {
	ID                int        `db:"id" json:"id"`
	OwnerID           string     `db:"owner_id" json:"owner_id" yaml:"owner_id" validate:"required"`
	Name              string     `db:"name" json:"name" yaml:"name" validate:"required"`
	TargetCompanyName string     `db:"target_company_name" json:"target_company_name" yaml:"target_company_name"`
	Objective         string     `db:"objective" json:"objective" yaml:"objective"`
	Status            string     `db:"status" json:"status" yaml:"status" validate:"omitempty,oneof=draft active paused completed"`
	Steps             []Step     `db:"steps" json:"steps" yaml:"steps" validate:"dive"`
	Progress          int        `db:"progress" json:"progress"`
	SentCount         int        `db:"sent_count" json:"sent_count"`
	TotalPoints       int        `db:"total_points" json:"total_points"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	Version           int64      `db:"version" json:"version"`
}

// StartDate is the day the journey started. Rows persisted without a
// creation time fall back to now, so their due dates move on every read.
func (c *Campaign) StartDate(now time.Time) time.Time {
	if c.CreatedAt.IsZero() {
		return now
	}
	return c.CreatedAt
}

// DueDate is the campaign start plus the step offset in days.
func (c *Campaign) DueDate(s Step, now time.Time) time.Time {
	return c.StartDate(now).AddDate(0, 0, s.DayOffset)
}

// FindStep returns the index of the step with the given id, or -1.
func (c *Campaign) FindStep(id string) int {
	for i := range c.Steps {
		if c.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can modify steps without touching
// a record that has already been handed out.
func (c *Campaign) Clone() *Campaign {
	out := *c
	out.Steps = append([]Step(nil), c.Steps...)
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}
