package service

import (
	"context"
	"time"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/repository"
	"github.com/unclebandit/journey-engine/internal/tasks"
)

// TaskService builds personal task lists. Match is the configured owner
// matching mode and overrides whatever the request asked for.
type TaskService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Match        tasks.MatchMode
	Now          func() time.Time
}

// ListTasks projects every campaign's steps for the viewer.
func (s *TaskService) ListTasks(ctx context.Context, viewer tasks.Viewer, opts tasks.Options) ([]model.Task, error) {
	if viewer.Identity() == "" && viewer.ID == "" {
		return nil, appErrors.NewValidation("viewer identity is required")
	}
	if s.Match != "" {
		opts.Match = s.Match
	}

	campaigns, err := s.CampaignRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	return tasks.Project(campaigns, viewer, opts, now), nil
}
