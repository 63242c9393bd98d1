package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/journey-engine/internal/service"
	"github.com/unclebandit/journey-engine/internal/tasks"
)

// Viewer headers set by the upstream auth proxy.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
)

type TaskController struct {
	TaskService     *service.TaskService
	CampaignService *service.CampaignService
}

func viewerFrom(r *http.Request) tasks.Viewer {
	return tasks.Viewer{
		ID:    r.Header.Get(HeaderUserID),
		Name:  r.Header.Get(HeaderUserName),
		Email: r.Header.Get(HeaderUserEmail),
	}
}

// ListTasks returns the viewer's tasks across every campaign.
func (c *TaskController) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := tasks.ParseOptions(q.Get("status"), q.Get("sort"), q.Get("match"))
	if err != nil {
		RespondError(w, err, "")
		return
	}

	list, err := c.TaskService.ListTasks(r.Context(), viewerFrom(r), opts)
	if err != nil {
		RespondError(w, err, "Could not load tasks")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": list})
}

// ToggleTask flips a step's completion and returns the updated campaign.
func (c *TaskController) ToggleTask(w http.ResponseWriter, r *http.Request) {
	campaignID, err := IntParam(r, "campaignId")
	if err != nil {
		RespondError(w, err, "")
		return
	}

	campaign, err := c.CampaignService.ToggleStep(r.Context(), campaignID, chi.URLParam(r, "stepId"))
	if err != nil {
		RespondError(w, err, "Could not update task")
		return
	}
	RespondJSON(w, http.StatusOK, campaign)
}
