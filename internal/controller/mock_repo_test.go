package controller_test

import (
	"context"
	"errors"
	"sync"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
)

var errDown = errors.New("connection refused")

type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	nextID    int
	fail      bool
}

func newMockCampaignRepo(seed ...model.Campaign) *MockCampaignRepo {
	m := &MockCampaignRepo{campaigns: map[int]*model.Campaign{}, nextID: 1}
	for i := range seed {
		c := seed[i].Clone()
		if c.Version == 0 {
			c.Version = 1
		}
		m.campaigns[c.ID] = c
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
	return m
}

func (m *MockCampaignRepo) ListAll(ctx context.Context) ([]model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errDown
	}
	out := []model.Campaign{}
	for id := 1; id < m.nextID; id++ {
		if c, ok := m.campaigns[id]; ok {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (m *MockCampaignRepo) ListWhere(ctx context.Context, field string, value any) ([]model.Campaign, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.Campaign{}
	for _, c := range all {
		if field == "owner_id" && c.OwnerID == value {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockCampaignRepo) GetOne(ctx context.Context, field string, value any) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errDown
	}
	if c, ok := m.campaigns[value.(int)]; ok {
		return c.Clone(), nil
	}
	return nil, nil
}

func (m *MockCampaignRepo) Upsert(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDown
	}
	if c.ID == 0 {
		c.ID = m.nextID
		m.nextID++
		c.Version = 1
		m.campaigns[c.ID] = c.Clone()
		return nil
	}
	stored, ok := m.campaigns[c.ID]
	if !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	if stored.Version != c.Version {
		return appErrors.ErrStaleWrite
	}
	c.Version++
	m.campaigns[c.ID] = c.Clone()
	return nil
}

func (m *MockCampaignRepo) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[id]; !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	delete(m.campaigns, id)
	return nil
}
