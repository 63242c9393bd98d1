package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/journey-engine/internal/journey"
	"github.com/unclebandit/journey-engine/internal/repository"
)

// DriftWorker re-checks saved campaigns and rewrites summary fields that
// no longer match the steps.
type DriftWorker struct {
	CampaignRepo repository.CampaignRepositoryInterface
	JobChan      <-chan int
	Log          logrus.FieldLogger
}

// Constructor
func NewDriftWorker(repo repository.CampaignRepositoryInterface, jobChan <-chan int, log logrus.FieldLogger) *DriftWorker {
	return &DriftWorker{
		CampaignRepo: repo,
		JobChan:      jobChan,
		Log:          log,
	}
}

// Start processes campaign ids until the channel is closed or ctx is done
func (w *DriftWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-w.JobChan:
			if !ok {
				return
			}
			if _, err := w.Repair(ctx, id); err != nil {
				w.Log.WithError(err).WithField("campaign_id", id).Error("drift repair failed")
			}
		}
	}
}

// Repair recomputes the campaign summary and persists it when the cached
// copy drifted. It reports whether a write happened.
func (w *DriftWorker) Repair(ctx context.Context, campaignID int) (bool, error) {
	c, err := w.CampaignRepo.GetOne(ctx, "id", campaignID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}

	want, drift := journey.CheckDrift(c)
	if !drift {
		return false, nil
	}
	w.Log.WithFields(logrus.Fields{
		"campaign_id": c.ID,
		"cached":      journey.Of(c),
		"computed":    want,
	}).Warn("repairing drifted campaign summary")

	journey.Apply(c)
	if err := w.CampaignRepo.Upsert(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}
