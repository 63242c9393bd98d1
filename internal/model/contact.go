// internal/model/contact.go
package model

import "time"

// HistoryKind names a structured contact history entry.
type HistoryKind string

const HistoryMoved HistoryKind = "moved"

// HistoryEntry is one structured, append-only contact history record.
type HistoryEntry struct {
	Date    time.Time   `json:"date" yaml:"date"`
	Kind    HistoryKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

type Contact struct {
	ID          int            `db:"id" json:"id"`
	Name        string         `db:"name" json:"name" yaml:"name" validate:"required"`
	Email       string         `db:"email" json:"email,omitempty" yaml:"email" validate:"omitempty,email"`
	CompanyName string         `db:"company_name" json:"company_name" yaml:"company_name"`
	Notes       string         `db:"notes" json:"notes" yaml:"notes"`
	History     []HistoryEntry `db:"history" json:"history" yaml:"history"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
	Version     int64          `db:"version" json:"version"`
}

func (c *Contact) Clone() *Contact {
	out := *c
	out.History = append([]HistoryEntry(nil), c.History...)
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}
