package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/journey-engine/internal/journey"
	"github.com/unclebandit/journey-engine/internal/repository"
)

// TopicCampaignSaved carries a CampaignSaved after every successful save.
const TopicCampaignSaved = "campaign_saved"

// CampaignSaved is the payload published on TopicCampaignSaved.
type CampaignSaved struct {
	CampaignID int    `json:"campaign_id"`
	OwnerID    string `json:"owner_id"`
	Version    int64  `json:"version"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers to subscribers on goroutines with retry
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	log        logrus.FieldLogger
	MaxRetries int
	Backoff    time.Duration
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log logrus.FieldLogger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		log:        log,
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Topic: topic, Payload: payload, MaxRetries: q.MaxRetries}
		go q.processJob(handler, job)
	}
	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	log := q.log.WithField("topic", job.Topic)
	for {
		err := handler(job.Payload)
		if err == nil {
			log.WithField("payload", job.Payload).Debug("job processed")
			return
		}

		job.RetryCount++
		if job.RetryCount > job.MaxRetries {
			log.WithError(err).WithField("attempts", job.RetryCount).Error("job permanently failed")
			return
		}
		log.WithError(err).WithField("attempt", job.RetryCount).Warn("job failed, retrying")

		// linear backoff before retry
		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// DecodeCampaignSaved accepts the in-memory struct or a JSON body from AMQP.
func DecodeCampaignSaved(payload any) (CampaignSaved, error) {
	switch p := payload.(type) {
	case CampaignSaved:
		return p, nil
	case *CampaignSaved:
		return *p, nil
	case []byte:
		var ev CampaignSaved
		if err := json.Unmarshal(p, &ev); err != nil {
			return ev, fmt.Errorf("decode campaign_saved: %w", err)
		}
		return ev, nil
	default:
		return CampaignSaved{}, fmt.Errorf("unexpected campaign_saved payload %T", payload)
	}
}

// StartDriftAuditSubscriber reloads every saved campaign and checks that
// its cached summary still matches its steps.
func StartDriftAuditSubscriber(q Queue, campaignRepo repository.CampaignRepositoryInterface, log logrus.FieldLogger) error {
	return q.Subscribe(TopicCampaignSaved, func(payload any) error {
		ev, err := DecodeCampaignSaved(payload)
		if err != nil {
			log.WithError(err).Warn("dropping invalid campaign_saved payload")
			return nil // no retry
		}

		c, err := campaignRepo.GetOne(context.Background(), "id", ev.CampaignID)
		if err != nil {
			return err // retry
		}
		if c == nil {
			log.WithField("campaign_id", ev.CampaignID).Info("campaign gone before audit")
			return nil
		}

		want, drift := journey.CheckDrift(c)
		if drift {
			log.WithFields(logrus.Fields{
				"campaign_id": c.ID,
				"cached":      journey.Of(c),
				"computed":    want,
			}).Error("campaign summary drifted from steps")
		}
		return nil
	})
}
