package appErrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStaleWrite is returned when a record changed since the caller read it.
var ErrStaleWrite = errors.New("record was modified by another writer")

// ErrCampaignNotFound is a typed not-found error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

type ErrContactNotFound struct {
	ContactID int
}

func (e *ErrContactNotFound) Error() string {
	return fmt.Sprintf("contact with ID %d not found", e.ContactID)
}

func NewContactNotFound(id int) error {
	return &ErrContactNotFound{ContactID: id}
}

type ErrStepNotFound struct {
	StepID string
}

func (e *ErrStepNotFound) Error() string {
	return fmt.Sprintf("step %q not found", e.StepID)
}

func NewStepNotFound(id string) error {
	return &ErrStepNotFound{StepID: id}
}

// ValidationError carries one human readable message per offending field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func NewValidation(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// IsNotFound reports whether err is any of the typed not-found errors.
func IsNotFound(err error) bool {
	var c *ErrCampaignNotFound
	var ct *ErrContactNotFound
	var s *ErrStepNotFound
	return errors.As(err, &c) || errors.As(err, &ct) || errors.As(err, &s)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
