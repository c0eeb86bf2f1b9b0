package service

import (
	"fmt"
	"strings"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

// hasDetails reports whether the details step is complete: the event exists
// with a title, a start date and a venue address.
func hasDetails(event *entity.Event) bool {
	return event != nil &&
		event.Title != "" &&
		event.StartDate != nil &&
		event.Address != nil && strings.TrimSpace(*event.Address) != ""
}

func DeriveCompleteness(draft *entity.EventDraft) entity.Completeness {
	if draft == nil {
		return entity.Completeness{}
	}
	return entity.Completeness{
		HasDetails: hasDetails(&draft.Event),
		HasMedia:   len(draft.Banners) > 0,
		HasTickets: len(draft.TicketTypes) > 0,
	}
}

func ParseStep(raw string) entity.Step {
	step := entity.Step(strings.ToLower(strings.TrimSpace(raw)))
	if !step.Valid() {
		return entity.StepDetails
	}
	return step
}

func stepComplete(step entity.Step, c entity.Completeness) bool {
	switch step {
	case entity.StepDetails:
		return c.HasDetails
	case entity.StepMedia:
		return c.HasMedia
	case entity.StepTickets:
		return c.HasTickets
	}
	return false
}

// ResolveStep sends the organizer to the first incomplete step that comes
// before the requested one. Every earlier step is a prerequisite.
func ResolveStep(raw string, c entity.Completeness) *entity.StepResolution {
	requested := ParseStep(raw)
	res := &entity.StepResolution{
		Requested:    requested,
		Step:         requested,
		Completeness: c,
	}

	for _, step := range entity.Steps[:requested.Index()] {
		if stepComplete(step, c) {
			continue
		}
		res.Step = step
		res.Redirected = true
		res.Notice = &entity.Notice{
			Type:        "info",
			Title:       "Complete previous step first",
			Description: fmt.Sprintf("Please complete %s before continuing.", strings.ToLower(step.Title())),
		}
		break
	}

	return res
}
