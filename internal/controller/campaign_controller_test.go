package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/journey-engine/internal/controller"
	"github.com/unclebandit/journey-engine/internal/model"
	"github.com/unclebandit/journey-engine/internal/notify"
	"github.com/unclebandit/journey-engine/internal/service"
)

var now = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newRouter(repo *MockCampaignRepo) (http.Handler, *notify.Recorder) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	rec := &notify.Recorder{}
	clock := func() time.Time { return now }

	campaigns := &service.CampaignService{CampaignRepo: repo, Notifier: rec, Log: log, Now: clock}
	cc := &controller.CampaignController{CampaignService: campaigns}
	tc := &controller.TaskController{
		TaskService:     &service.TaskService{CampaignRepo: repo, Now: clock},
		CampaignService: campaigns,
	}

	r := chi.NewRouter()
	r.Get("/campaigns", cc.ListCampaigns)
	r.Post("/campaigns", cc.SaveCampaign)
	r.Get("/campaigns/{id}", cc.GetCampaign)
	r.Delete("/campaigns/{id}", cc.DeleteCampaign)
	r.Get("/tasks", tc.ListTasks)
	r.Post("/tasks/{campaignId}/{stepId}/toggle", tc.ToggleTask)
	return r, rec
}

func seeded() model.Campaign {
	return model.Campaign{
		ID: 1, OwnerID: "u-1", Name: "Acme", TargetCompanyName: "Acme",
		Status: model.StatusActive, CreatedAt: now,
		Steps: []model.Step{
			{ID: "s1", Kind: model.StepEmail, Points: 10, Owner: "Alice", Completed: true},
			{ID: "s2", Kind: model.StepCall, DayOffset: 2, Points: 20, Owner: "Alice"},
			{ID: "s3", Kind: model.StepMeeting, DayOffset: 1, Owner: "Bob"},
		},
		Progress: 33, SentCount: 1, TotalPoints: 10,
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSaveCampaignHandler(t *testing.T) {
	h, _ := newRouter(newMockCampaignRepo())

	body := map[string]any{
		"owner_id": "u-1",
		"name":     "New journey",
		"steps": []map[string]any{
			{"kind": "email", "points": 5, "completed": true},
			{"kind": "call", "day_offset": 3},
		},
	}
	w := do(t, h, http.MethodPost, "/campaigns", body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var res service.SaveResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if res.Campaign.Progress != 50 || res.Campaign.TotalPoints != 5 {
		t.Errorf("expected derived summary 50%%/5 points, got %+v", res.Campaign)
	}
	if len(res.Campaigns) != 1 {
		t.Errorf("expected owner's reloaded list, got %d campaigns", len(res.Campaigns))
	}
}

func TestSaveCampaignValidationHandler(t *testing.T) {
	h, _ := newRouter(newMockCampaignRepo())

	w := do(t, h, http.MethodPost, "/campaigns", map[string]any{"name": "no owner"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/campaigns", bytes.NewBufferString("{"))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rw.Code)
	}
}

func TestSaveCampaignConflictHandler(t *testing.T) {
	h, _ := newRouter(newMockCampaignRepo(seeded()))

	stale := seeded()
	stale.Version = 1
	if w := do(t, h, http.MethodPost, "/campaigns", stale, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 on first update, got %d", w.Code)
	}
	w := do(t, h, http.MethodPost, "/campaigns", stale, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var res map[string]any
	_ = json.NewDecoder(w.Body).Decode(&res)
	if res["notice"] == nil {
		t.Errorf("expected a notice in the conflict response, got %v", res)
	}
}

func TestGetAndDeleteCampaignHandler(t *testing.T) {
	h, _ := newRouter(newMockCampaignRepo(seeded()))

	if w := do(t, h, http.MethodGet, "/campaigns/1", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/campaigns/abc", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/campaigns/1", nil, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/campaigns/1", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListCampaignsHandlerFailure(t *testing.T) {
	repo := newMockCampaignRepo(seeded())
	h, _ := newRouter(repo)

	w := do(t, h, http.MethodGet, "/campaigns?owner_id=u-1", nil, nil)
	var res struct {
		Data []model.Campaign `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil || len(res.Data) != 1 {
		t.Fatalf("expected one campaign, got %d (%v)", len(res.Data), err)
	}

	repo.fail = true
	w = do(t, h, http.MethodGet, "/campaigns", nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(w.Body).Decode(&body)
	if body["notice"] != "Could not load campaigns" {
		t.Errorf("unexpected notice %q", body["notice"])
	}
}
