package service_test

import (
	"context"
	"testing"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/service"
	"github.com/unclebandit/journey-engine/internal/tasks"
)

func TestListTasksAcrossCampaigns(t *testing.T) {
	late := &model.Campaign{
		ID: 1, OwnerID: "u-1", Name: "Late", CreatedAt: fixedNow,
		Steps: []model.Step{
			{ID: "l1", Kind: model.StepCall, DayOffset: 6, Owner: "Alice", OwnerID: "u-1"},
			{ID: "l2", Kind: model.StepWait, DayOffset: 1, Owner: "Alice", OwnerID: "u-1"},
		},
	}
	early := &model.Campaign{
		ID: 2, OwnerID: "u-2", Name: "Early", CreatedAt: fixedNow,
		Steps: []model.Step{
			{ID: "e1", Kind: model.StepEmail, DayOffset: 1, Owner: "Alice", OwnerID: "u-1"},
			{ID: "e2", Kind: model.StepEmail, DayOffset: 0, Owner: "Bob", OwnerID: "u-2"},
			{ID: "e3", Kind: model.StepEmail, DayOffset: 0, Owner: "Alice", OwnerID: "u-1", Completed: true},
		},
	}
	svc := &service.TaskService{CampaignRepo: NewMockCampaignRepo(late, early)}
	opts, _ := tasks.ParseOptions("", "", "")

	got, err := svc.ListTasks(context.Background(), tasks.Viewer{ID: "u-1", Name: "Alice"}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].StepID != "e1" || got[1].StepID != "l1" {
		t.Fatalf("expected pending tasks e1, l1 in date order, got %+v", got)
	}
	if got[0].CampaignName != "Early" {
		t.Errorf("expected campaign name on task, got %q", got[0].CampaignName)
	}
}

func TestListTasksConfiguredMatchWins(t *testing.T) {
	c := &model.Campaign{
		ID: 1, OwnerID: "u-1", Name: "C", CreatedAt: fixedNow,
		Steps: []model.Step{
			{ID: "s1", Kind: model.StepCall, Owner: "Alice", OwnerID: "u-9"},
		},
	}
	repo := NewMockCampaignRepo(c)
	viewer := tasks.Viewer{ID: "u-9", Name: "Someone Else"}

	byName := &service.TaskService{CampaignRepo: repo}
	got, err := byName.ListTasks(context.Background(), viewer, tasks.Options{})
	if err != nil || len(got) != 0 {
		t.Fatalf("display-name match should not find the step, got %+v (%v)", got, err)
	}

	byID := &service.TaskService{CampaignRepo: repo, Match: tasks.MatchUserID}
	got, err = byID.ListTasks(context.Background(), viewer, tasks.Options{Match: tasks.MatchDisplayName})
	if err != nil || len(got) != 1 {
		t.Fatalf("user-id match should find the step, got %+v (%v)", got, err)
	}
}

func TestListTasksRequiresViewer(t *testing.T) {
	svc := &service.TaskService{CampaignRepo: NewMockCampaignRepo()}
	_, err := svc.ListTasks(context.Background(), tasks.Viewer{}, tasks.Options{})
	if !appErrors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestListTasksPropagatesStoreError(t *testing.T) {
	repo := NewMockCampaignRepo()
	repo.failList = true
	svc := &service.TaskService{CampaignRepo: repo}
	if _, err := svc.ListTasks(context.Background(), tasks.Viewer{Name: "Alice"}, tasks.Options{}); err == nil {
		t.Error("expected error from store")
	}
}
