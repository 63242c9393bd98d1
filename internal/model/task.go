// internal/model/task.go
package model

import "time"

// Task is a projection of one non-wait step. It is rebuilt on every read
// and has no identity beyond the step id.
type Task struct {
	StepID       string    `json:"step_id"`
	CampaignID   int       `json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	CompanyName  string    `json:"company_name"`
	Title        string    `json:"title"`
	Kind         StepKind  `json:"kind"`
	DueDate      time.Time `json:"due_date"`
	Owner        string    `json:"owner"`
	Completed    bool      `json:"completed"`
	TargetName   string    `json:"target_name,omitempty"`
	Points       int       `json:"points"`
}

// Recipient is the individual target, or the company when none is set.
func (t Task) Recipient() string {
	if t.TargetName != "" {
		return t.TargetName
	}
	return t.CompanyName
}
