// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/journey"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/notify"
	"github.com/unclebandit/journey-engine/internal/queue"
	"github.com/unclebandit/journey-engine/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Queue        queue.Queue
	Notifier     notify.Notifier
	Log          logrus.FieldLogger
	Now          func() time.Time
}

// SaveResult is returned after a successful save: the saved record, to
// patch the open editor in place, and the owner's reloaded campaign set.
type SaveResult struct {
	Campaign  *model.Campaign  `json:"campaign"`
	Campaigns []model.Campaign `json:"campaigns"`
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *CampaignService) log() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

// SaveCampaign creates or updates a campaign. Summary fields are always
// recomputed from the steps; the caller's version must match the stored
// one on update. The input is not modified.
func (s *CampaignService) SaveCampaign(ctx context.Context, in *model.Campaign) (*SaveResult, error) {
	c := in.Clone()
	now := s.now()

	journey.AssignStepIDs(c.Steps)
	if c.Status == "" {
		c.Status = model.StatusActive
	}
	if err := model.Validate(c); err != nil {
		return nil, err
	}

	// new records get a start date here; updates keep the one they carry
	if c.ID == 0 || c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = &now
	journey.Apply(c)

	if err := s.CampaignRepo.Upsert(ctx, c); err != nil {
		s.fail(ctx, "save_campaign", "Could not save campaign", c.ID, err)
		return nil, err
	}
	s.publishSaved(c)

	res := &SaveResult{Campaign: c}
	campaigns, err := s.CampaignRepo.ListWhere(ctx, "owner_id", c.OwnerID)
	if err != nil {
		// the save went through; only the refreshed list is missing
		s.log().WithError(err).WithField("owner_id", c.OwnerID).Warn("reload after save failed")
		return res, nil
	}
	res.Campaigns = campaigns
	return res, nil
}

// ToggleStep flips one step's completion and persists the whole campaign
// with re-aggregated summary fields.
func (s *CampaignService) ToggleStep(ctx context.Context, campaignID int, stepID string) (*model.Campaign, error) {
	current, err := repository.GetCampaignByID(ctx, s.CampaignRepo, campaignID)
	if err != nil {
		if !appErrors.IsNotFound(err) {
			s.fail(ctx, "toggle_task", "Could not load campaign", campaignID, err)
		}
		return nil, err
	}

	steps, err := journey.ToggleStep(current.Steps, stepID)
	if err != nil {
		return nil, err
	}

	c := current.Clone()
	c.Steps = steps
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = &now
	journey.Apply(c)

	if err := s.CampaignRepo.Upsert(ctx, c); err != nil {
		s.fail(ctx, "toggle_task", "Could not update task", campaignID, err)
		return nil, err
	}
	s.publishSaved(c)
	return c, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id int) (*model.Campaign, error) {
	return repository.GetCampaignByID(ctx, s.CampaignRepo, id)
}

// ListCampaigns returns the owner's campaigns, or every campaign when
// ownerID is empty.
func (s *CampaignService) ListCampaigns(ctx context.Context, ownerID string) ([]model.Campaign, error) {
	if ownerID == "" {
		return s.CampaignRepo.ListAll(ctx)
	}
	return s.CampaignRepo.ListWhere(ctx, "owner_id", ownerID)
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, id int) error {
	if err := s.CampaignRepo.Delete(ctx, id); err != nil {
		if !appErrors.IsNotFound(err) {
			s.fail(ctx, "delete_campaign", "Could not delete campaign", id, err)
		}
		return err
	}
	return nil
}

func (s *CampaignService) publishSaved(c *model.Campaign) {
	if s.Queue == nil {
		return
	}
	ev := queue.CampaignSaved{CampaignID: c.ID, OwnerID: c.OwnerID, Version: c.Version}
	if err := s.Queue.Publish(queue.TopicCampaignSaved, ev); err != nil {
		s.log().WithError(err).WithField("campaign_id", c.ID).Warn("publish campaign_saved failed")
	}
}

func (s *CampaignService) fail(ctx context.Context, action, message string, campaignID int, err error) {
	if s.Notifier == nil {
		return
	}
	if errors.Is(err, appErrors.ErrStaleWrite) {
		message = "Campaign was changed by someone else, reload and try again"
	}
	s.Notifier.Notify(ctx, notify.Notice{
		Action:  action,
		Message: message,
		Context: map[string]any{"campaign_id": campaignID},
		Err:     err,
	})
}
