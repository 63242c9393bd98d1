// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.CampaignService.ListCampaigns(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		RespondError(w, err, "Could not load campaigns")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": campaigns})
}

// SaveCampaign creates a campaign, or updates it when the body carries an
// id and the last-seen version.
func (c *CampaignController) SaveCampaign(w http.ResponseWriter, r *http.Request) {
	var body model.Campaign
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondError(w, appErrors.NewValidation("invalid body"), "")
		return
	}

	res, err := c.CampaignService.SaveCampaign(r.Context(), &body)
	if err != nil {
		RespondError(w, err, "Could not save campaign")
		return
	}
	status := http.StatusOK
	if body.ID == 0 {
		status = http.StatusCreated
	}
	RespondJSON(w, status, res)
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := IntParam(r, "id")
	if err != nil {
		RespondError(w, err, "")
		return
	}
	campaign, err := c.CampaignService.GetCampaign(r.Context(), id)
	if err != nil {
		RespondError(w, err, "Could not load campaign")
		return
	}
	RespondJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := IntParam(r, "id")
	if err != nil {
		RespondError(w, err, "")
		return
	}
	if err := c.CampaignService.DeleteCampaign(r.Context(), id); err != nil {
		RespondError(w, err, "Could not delete campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
