package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/notify"
	"github.com/unclebandit/journey-engine/internal/repository"
	"github.com/unclebandit/journey-engine/internal/timeline"
)

type ContactService struct {
	ContactRepo  repository.ContactRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Notifier     notify.Notifier
	Log          logrus.FieldLogger
	Now          func() time.Time
}

// ContactView is a contact as shown outside the editor: history markers
// are hidden from the notes.
type ContactView struct {
	*model.Contact
	DisplayNotes string `json:"display_notes"`
}

func (s *ContactService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ContactService) log() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

func (s *ContactService) GetContact(ctx context.Context, id int) (*ContactView, error) {
	c, err := repository.GetContactByID(ctx, s.ContactRepo, id)
	if err != nil {
		return nil, err
	}
	return &ContactView{Contact: c, DisplayNotes: timeline.StripMarkers(c.Notes)}, nil
}

// CreateContact stores a new contact with its creation time stamped now.
func (s *ContactService) CreateContact(ctx context.Context, in *model.Contact) (*model.Contact, error) {
	c := in.Clone()
	c.ID = 0
	c.Version = 0
	c.History = nil
	if err := model.Validate(c); err != nil {
		return nil, err
	}
	c.CreatedAt = s.now()
	if err := s.ContactRepo.Upsert(ctx, c); err != nil {
		s.fail(ctx, "create_contact", "Could not save contact", 0, err)
		return nil, err
	}
	return c, nil
}

// UpdateContact saves an edit. When the company changed since the last
// save, a move is appended to the notes and to the structured history.
// History entries sent by the client are ignored, and stored markers the
// client dropped from the notes are put back.
func (s *ContactService) UpdateContact(ctx context.Context, in *model.Contact) (*model.Contact, error) {
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	stored, err := repository.GetContactByID(ctx, s.ContactRepo, in.ID)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			s.fail(ctx, "update_contact", "Could not load contact", in.ID, err)
		}
		return nil, err
	}

	c := in.Clone()
	c.History = stored.Clone().History
	c.Notes = timeline.PreserveMarkers(c.Notes, stored.Notes)
	c.CreatedAt = stored.CreatedAt
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if stored.CompanyName != c.CompanyName {
		timeline.RecordMove(c, stored.CompanyName, c.CompanyName, now)
	}
	c.UpdatedAt = &now

	if err := s.ContactRepo.Upsert(ctx, c); err != nil {
		s.fail(ctx, "update_contact", "Could not save contact", c.ID, err)
		return nil, err
	}
	return c, nil
}

// Timeline rebuilds the contact's event feed from current records.
func (s *ContactService) Timeline(ctx context.Context, contactID int) ([]model.TimelineEvent, error) {
	c, err := repository.GetContactByID(ctx, s.ContactRepo, contactID)
	if err != nil {
		return nil, err
	}

	related := []model.Campaign{}
	if c.CompanyName != "" {
		campaigns, err := s.CampaignRepo.ListWhere(ctx, "target_company_name", c.CompanyName)
		if err != nil {
			return nil, err
		}
		related = timeline.Related(c, campaigns)
	}
	return timeline.Reconstruct(c, related, s.now()), nil
}

// MigrateHistory lifts legacy notes markers into structured history for
// every contact. It returns how many contacts were updated.
func (s *ContactService) MigrateHistory(ctx context.Context) (int, error) {
	contacts, err := s.ContactRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	migrated := 0
	for i := range contacts {
		c := &contacts[i]
		if !timeline.MigrateLegacy(c) {
			continue
		}
		if err := s.ContactRepo.Upsert(ctx, c); err != nil {
			if errors.Is(err, appErrors.ErrStaleWrite) {
				// edited meanwhile; the next run picks it up
				s.log().WithField("contact_id", c.ID).Warn("skipping contact changed during migration")
				continue
			}
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}

func (s *ContactService) fail(ctx context.Context, action, message string, contactID int, err error) {
	if s.Notifier == nil {
		return
	}
	if errors.Is(err, appErrors.ErrStaleWrite) {
		message = "Contact was changed by someone else, reload and try again"
	}
	s.Notifier.Notify(ctx, notify.Notice{
		Action:  action,
		Message: message,
		Context: map[string]any{"contact_id": contactID},
		Err:     err,
	})
}
