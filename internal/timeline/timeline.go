// Package timeline rebuilds a contact's event feed from campaign
// milestones and the contact's company-change history.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/unclebandit/journey-engine/internal/model"
)

// Related keeps the campaigns that target the contact's company.
func Related(contact *model.Contact, campaigns []model.Campaign) []model.Campaign {
	out := []model.Campaign{}
	if contact.CompanyName == "" {
		return out
	}
	for _, c := range campaigns {
		if c.TargetCompanyName == contact.CompanyName {
			out = append(out, c)
		}
	}
	return out
}

// Reconstruct returns the contact's events, newest first. Events sharing a
// date keep the order in which they were produced.
func Reconstruct(contact *model.Contact, campaigns []model.Campaign, now time.Time) []model.TimelineEvent {
	created := contact.CreatedAt
	if created.IsZero() {
		created = now
	}
	events := []model.TimelineEvent{{
		Kind:        model.EventCreation,
		Date:        created,
		Title:       "Contact created",
		Description: fmt.Sprintf("%s was added", contact.Name),
		Icon:        "user-plus",
		Color:       "gray",
	}}

	for i := range campaigns {
		c := &campaigns[i]
		events = append(events, model.TimelineEvent{
			Kind:        model.EventCampaignJoined,
			Date:        c.StartDate(now),
			Title:       "Joined campaign",
			Description: c.Name,
			Icon:        "flag",
			Color:       "blue",
		})
		for _, s := range c.Steps {
			if !s.Completed {
				continue
			}
			if s.TargetName != "" && s.TargetName != contact.Name {
				continue
			}
			events = append(events, model.TimelineEvent{
				Kind:        model.EventTaskCompleted,
				Date:        c.DueDate(s, now),
				Title:       s.DisplayTitle(),
				Description: fmt.Sprintf("%s in %s", s.DisplayTitle(), c.Name),
				Actor:       s.Owner,
				Icon:        "check",
				Color:       "green",
			})
		}
	}

	for _, h := range Moves(contact) {
		events = append(events, model.TimelineEvent{
			Kind:        model.EventCompanyChanged,
			Date:        h.Date,
			Title:       "Company changed",
			Description: h.Message,
			Icon:        "briefcase",
			Color:       "orange",
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events
}
