// Package journey keeps a campaign's cached summary fields consistent with
// its ordered step list.
package journey

import (
	"math"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
)

// Summary is the pure projection of a step list.
type Summary struct {
	Progress    int `json:"progress"`
	SentCount   int `json:"sent_count"`
	TotalPoints int `json:"total_points"`
}

// Aggregate computes the summary of a step list. Wait steps are excluded
// from progress and sent count but their points are kept when completed.
func Aggregate(steps []model.Step) Summary {
	var active, sent, points int
	for _, s := range steps {
		if s.Completed {
			points += s.Points
		}
		if s.IsWait() {
			continue
		}
		active++
		if s.Completed {
			sent++
		}
	}

	sum := Summary{SentCount: sent, TotalPoints: points}
	if active > 0 {
		// math.Round rounds half away from zero
		sum.Progress = int(math.Round(100 * float64(sent) / float64(active)))
	}
	return sum
}

// Of returns the summary currently cached on the campaign record.
func Of(c *model.Campaign) Summary {
	return Summary{Progress: c.Progress, SentCount: c.SentCount, TotalPoints: c.TotalPoints}
}

// Apply recomputes the cached fields and moves the status between active
// and completed when progress crosses 100.
func Apply(c *model.Campaign) Summary {
	sum := Aggregate(c.Steps)
	c.Progress = sum.Progress
	c.SentCount = sum.SentCount
	c.TotalPoints = sum.TotalPoints

	switch {
	case c.Status == model.StatusActive && sum.Progress == 100:
		c.Status = model.StatusCompleted
	case c.Status == model.StatusCompleted && sum.Progress < 100:
		c.Status = model.StatusActive
	}
	return sum
}

// CheckDrift recomputes the summary and reports whether the cached copy
// on the record disagrees with it.
func CheckDrift(c *model.Campaign) (Summary, bool) {
	want := Aggregate(c.Steps)
	return want, want != Of(c)
}

// ToggleStep returns a copy of steps with one step's completion flipped.
func ToggleStep(steps []model.Step, stepID string) ([]model.Step, error) {
	out := append([]model.Step(nil), steps...)
	for i := range out {
		if out[i].ID == stepID {
			out[i].Completed = !out[i].Completed
			return out, nil
		}
	}
	return nil, appErrors.NewStepNotFound(stepID)
}

// AssignStepIDs gives every step without an id a fresh one. Existing ids
// are never changed.
func AssignStepIDs(steps []model.Step) {
	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = uuid.NewString()
		}
	}
}
