// internal/handler/contact_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/unclebandit/journey-engine/internal/controller"
	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/service"
)

// ContactHandler holds the dependencies for contact-related HTTP handlers
type ContactHandler struct {
	Service *service.ContactService
}

// NewContactHandler creates a new ContactHandler with the given service
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{Service: svc}
}

// GetContactHandler returns a contact with history markers hidden from the notes
func (h *ContactHandler) GetContactHandler(w http.ResponseWriter, r *http.Request) {
	id, err := controller.IntParam(r, "id")
	if err != nil {
		controller.RespondError(w, err, "")
		return
	}

	contact, err := h.Service.GetContact(r.Context(), id)
	if err != nil {
		controller.RespondError(w, err, "Could not load contact")
		return
	}
	controller.RespondJSON(w, http.StatusOK, contact)
}

// CreateContactHandler handles creating a new contact
func (h *ContactHandler) CreateContactHandler(w http.ResponseWriter, r *http.Request) {
	var payload model.Contact
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		controller.RespondError(w, appErrors.NewValidation("invalid request body"), "")
		return
	}

	contact, err := h.Service.CreateContact(r.Context(), &payload)
	if err != nil {
		controller.RespondError(w, err, "Could not save contact")
		return
	}
	controller.RespondJSON(w, http.StatusCreated, contact)
}

// UpdateContactHandler saves an edit; the body must carry the last-seen version
func (h *ContactHandler) UpdateContactHandler(w http.ResponseWriter, r *http.Request) {
	id, err := controller.IntParam(r, "id")
	if err != nil {
		controller.RespondError(w, err, "")
		return
	}

	var payload model.Contact
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		controller.RespondError(w, appErrors.NewValidation("invalid request body"), "")
		return
	}
	payload.ID = id

	contact, err := h.Service.UpdateContact(r.Context(), &payload)
	if err != nil {
		controller.RespondError(w, err, "Could not save contact")
		return
	}
	controller.RespondJSON(w, http.StatusOK, contact)
}

// TimelineHandler returns the contact's events, newest first
func (h *ContactHandler) TimelineHandler(w http.ResponseWriter, r *http.Request) {
	id, err := controller.IntParam(r, "id")
	if err != nil {
		controller.RespondError(w, err, "")
		return
	}

	events, err := h.Service.Timeline(r.Context(), id)
	if err != nil {
		controller.RespondError(w, err, "Could not load timeline")
		return
	}
	controller.RespondJSON(w, http.StatusOK, map[string]any{"data": events})
}
