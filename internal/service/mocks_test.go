package service_test

import (
	"context"
	"errors"
	"sync"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
)

var errStoreDown = errors.New("store unavailable")

// MockCampaignRepo keeps campaigns in memory with version checks
type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	nextID    int
	failWrite bool
	failList  bool
	upserts   int
}

func NewMockCampaignRepo(seed ...*model.Campaign) *MockCampaignRepo {
	m := &MockCampaignRepo{campaigns: map[int]*model.Campaign{}, nextID: 1}
	for _, c := range seed {
		cp := c.Clone()
		if cp.ID == 0 {
			cp.ID = m.nextID
		}
		if cp.Version == 0 {
			cp.Version = 1
		}
		if cp.ID >= m.nextID {
			m.nextID = cp.ID + 1
		}
		m.campaigns[cp.ID] = cp
	}
	return m
}

func (m *MockCampaignRepo) ListAll(ctx context.Context) ([]model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errStoreDown
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
		switch field {
		case "owner_id":
			if c.OwnerID == value {
				out = append(out, c)
			}
		case "target_company_name":
			if c.TargetCompanyName == value {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *MockCampaignRepo) GetOne(ctx context.Context, field string, value any) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := value.(int)
	if c, ok := m.campaigns[id]; ok {
		return c.Clone(), nil
	}
	return nil, nil
}

func (m *MockCampaignRepo) Upsert(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errStoreDown
	}
	m.upserts++
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

func (m *MockCampaignRepo) stored(id int) *model.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.campaigns[id].Clone()
}

// MockContactRepo keeps contacts in memory with version checks
type MockContactRepo struct {
	mu        sync.Mutex
	contacts  map[int]*model.Contact
	nextID    int
	failWrite bool
}

func NewMockContactRepo(seed ...*model.Contact) *MockContactRepo {
	m := &MockContactRepo{contacts: map[int]*model.Contact{}, nextID: 1}
	for _, c := range seed {
		cp := c.Clone()
		if cp.Version == 0 {
			cp.Version = 1
		}
		m.contacts[cp.ID] = cp
		if cp.ID >= m.nextID {
			m.nextID = cp.ID + 1
		}
	}
	return m
}

func (m *MockContactRepo) ListAll(ctx context.Context) ([]model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Contact{}
	for id := 1; id < m.nextID; id++ {
		if c, ok := m.contacts[id]; ok {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (m *MockContactRepo) ListWhere(ctx context.Context, field string, value any) ([]model.Contact, error) {
	return nil, nil
}

func (m *MockContactRepo) GetOne(ctx context.Context, field string, value any) (*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, _ := value.(int)
	if c, ok := m.contacts[id]; ok {
		return c.Clone(), nil
	}
	return nil, nil
}

func (m *MockContactRepo) Upsert(ctx context.Context, c *model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return errStoreDown
	}
	if c.ID == 0 {
		c.ID = m.nextID
		m.nextID++
		c.Version = 1
		m.contacts[c.ID] = c.Clone()
		return nil
	}
	stored, ok := m.contacts[c.ID]
	if !ok {
		return appErrors.NewContactNotFound(c.ID)
	}
	if stored.Version != c.Version {
		return appErrors.ErrStaleWrite
	}
	c.Version++
	m.contacts[c.ID] = c.Clone()
	return nil
}

func (m *MockContactRepo) Delete(ctx context.Context, id int) error {
	return nil
}

func (m *MockContactRepo) stored(id int) *model.Contact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contacts[id].Clone()
}

// MockQueue records published payloads
type MockQueue struct {
	mu        sync.Mutex
	published []any
}

func (q *MockQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, payload)
	return nil
}

func (q *MockQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }
