// Package tasks flattens campaign journeys into a personal task list.
package tasks

import (
	"fmt"
	"sort"
	"time"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
	"github.com/unclebandit/journey-engine/internal/model"
)

type StatusFilter string

const (
	StatusPending   StatusFilter = "pending"
	StatusCompleted StatusFilter = "completed"
	StatusAll       StatusFilter = "all"
)

type SortOrder string

const (
	SortByDate      SortOrder = "by-date"
	SortByRecipient SortOrder = "by-recipient"
)

// MatchMode selects how a step's owner is compared to the viewer.
type MatchMode string

const (
	// MatchDisplayName compares step.Owner to the viewer's name (or email
	// when the name is empty) by exact string equality. A renamed user
	// loses sight of steps assigned under the old name.
	MatchDisplayName MatchMode = "display-name"
	// MatchUserID compares step.OwnerID to the viewer's stable id.
	MatchUserID MatchMode = "user-id"
)

// Viewer is the user the list is built for.
type Viewer struct {
	ID    string
	Name  string
	Email string
}

// Identity is the display identity steps are matched against.
func (v Viewer) Identity() string {
	if v.Name != "" {
		return v.Name
	}
	return v.Email
}

type Options struct {
	Status StatusFilter
	Sort   SortOrder
	Match  MatchMode
}

// ParseOptions validates raw option strings; empty values take defaults.
func ParseOptions(status, order, match string) (Options, error) {
	opts := Options{Status: StatusPending, Sort: SortByDate, Match: MatchDisplayName}
	var bad []string

	switch StatusFilter(status) {
	case "":
	case StatusPending, StatusCompleted, StatusAll:
		opts.Status = StatusFilter(status)
	default:
		bad = append(bad, fmt.Sprintf("status must be one of [pending completed all], got %q", status))
	}

	switch SortOrder(order) {
	case "":
	case SortByDate, SortByRecipient:
		opts.Sort = SortOrder(order)
	default:
		bad = append(bad, fmt.Sprintf("sort must be one of [by-date by-recipient], got %q", order))
	}

	switch MatchMode(match) {
	case "":
	case MatchDisplayName, MatchUserID:
		opts.Match = MatchMode(match)
	default:
		bad = append(bad, fmt.Sprintf("owner match must be one of [display-name user-id], got %q", match))
	}

	if len(bad) > 0 {
		return opts, appErrors.NewValidation(bad...)
	}
	return opts, nil
}

// Project builds the viewer's task list from all campaigns. Campaigns
// without a creation time are scheduled from now.
func Project(campaigns []model.Campaign, viewer Viewer, opts Options, now time.Time) []model.Task {
	out := []model.Task{}
	for i := range campaigns {
		c := &campaigns[i]
		for _, s := range c.Steps {
			if s.IsWait() {
				continue
			}
			if !owns(s, viewer, opts.Match) {
				continue
			}
			if !keep(s.Completed, opts.Status) {
				continue
			}
			out = append(out, model.Task{
				StepID:       s.ID,
				CampaignID:   c.ID,
				CampaignName: c.Name,
				CompanyName:  c.TargetCompanyName,
				Title:        s.DisplayTitle(),
				Kind:         s.Kind,
				DueDate:      c.DueDate(s, now),
				Owner:        s.Owner,
				Completed:    s.Completed,
				TargetName:   s.TargetName,
				Points:       s.Points,
			})
		}
	}

	switch opts.Sort {
	case SortByRecipient:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Recipient() < out[j].Recipient()
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DueDate.Before(out[j].DueDate)
		})
	}
	return out
}

func owns(s model.Step, v Viewer, mode MatchMode) bool {
	if mode == MatchUserID {
		return v.ID != "" && s.OwnerID == v.ID
	}
	id := v.Identity()
	return id != "" && s.Owner == id
}

func keep(completed bool, f StatusFilter) bool {
	switch f {
	case StatusAll:
		return true
	case StatusCompleted:
		return completed
	default:
		return !completed
	}
}
