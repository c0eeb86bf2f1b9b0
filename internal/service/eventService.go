package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/sirupsen/logrus"
)

const (
	eventTitleMin       = 3
	eventTitleMax       = 100
	eventDescriptionMax = 4000
	eventAddressMax     = 500
)

type eventService struct {
	eventRepo repository.EventRepository
	now       func() time.Time
	suffix    func() string
}

// NewEventService creates a new instance of EventService
func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{
		eventRepo: eventRepo,
		now:       time.Now,
		suffix:    randomSlugSuffix,
	}
}

func (s *eventService) GetEventDraft(ctx context.Context, organizerID, eventID string) (*entity.EventDraft, error) {
	draft, err := s.eventRepo.GetDraft(ctx, eventID, organizerID)
	if errors.Is(err, entity.ErrEventNotFound) {
		return nil, err
	}
	if err != nil {
		logrus.WithError(err).WithField("event_id", eventID).Error("Failed to load event draft")
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}
	return draft, nil
}

func (s *eventService) SaveEventDetails(ctx context.Context, organizerID string, details *entity.EventDetails) (*entity.Event, error) {
	if errs := validateEventDetails(details, s.now()); len(errs) > 0 {
		return nil, errs
	}

	var slug string
	if details.Slug != nil && *details.Slug != "" {
		taken, err := s.eventRepo.SlugExists(ctx, *details.Slug, details.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
		}
		if taken {
			return nil, entity.ErrSlugAlreadyTaken
		}
		slug = *details.Slug
	} else {
		generated, err := generateUniqueSlug(ctx, s.eventRepo, details.Title, details.ID, s.suffix)
		if err != nil {
			logrus.WithError(err).WithField("event_id", details.ID).Error("Failed to generate slug")
			return nil, err
		}
		slug = generated
	}

	startDate := details.StartDate
	endDate := details.EndDate
	address := details.Address
	timezone := details.Timezone

	event := &entity.Event{
		ID:          details.ID,
		OrganizerID: organizerID,
		Title:       details.Title,
		Slug:        slug,
		Description: details.Description,
		Address:     &address,
		StartDate:   &startDate,
		EndDate:     &endDate,
		Timezone:    &timezone,
	}

	saved, err := s.eventRepo.Upsert(ctx, event)
	switch {
	case errors.Is(err, entity.ErrEventNotFound), errors.Is(err, entity.ErrSlugAlreadyTaken):
		return nil, err
	case err != nil:
		logrus.WithError(err).WithField("event_id", details.ID).Error("Failed to save event details")
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}

	return saved, nil
}

func (s *eventService) ResolveWizardStep(ctx context.Context, organizerID, eventID, requested string) (*entity.StepResolution, error) {
	draft, err := s.GetEventDraft(ctx, organizerID, eventID)
	if err != nil && !errors.Is(err, entity.ErrEventNotFound) {
		return nil, err
	}

	return ResolveStep(requested, DeriveCompleteness(draft)), nil
}

func validateEventDetails(d *entity.EventDetails, now time.Time) entity.ValidationErrors {
	var errs entity.ValidationErrors
	add := func(field, message string) {
		errs = append(errs, entity.NewValidationError(field, message))
	}

	switch n := utf8.RuneCountInString(d.Title); {
	case n == 0:
		add("title", "Please enter a name for your event")
	case n < eventTitleMin:
		add("title", "The event name must be at least 3 characters")
	case n > eventTitleMax:
		add("title", "The event name cannot exceed 100 characters")
	}

	if d.Slug != nil && *d.Slug != "" {
		slug := *d.Slug
		switch {
		case len(slug) < minSlugLength:
			add("slug", "The slug must be at least 3 characters")
		case len(slug) > maxSlugLength:
			add("slug", "The slug cannot exceed 100 characters")
		case !slugPattern.MatchString(slug):
			add("slug", "The slug must be lowercase and contain only letters, numbers, and hyphens")
		}
	}

	if d.Description != nil && utf8.RuneCountInString(*d.Description) > eventDescriptionMax {
		add("description", "Description cannot exceed 4000 characters")
	}

	switch n := utf8.RuneCountInString(d.Address); {
	case strings.TrimSpace(d.Address) == "":
		add("venueAddress", "Please enter an event address")
	case n > eventAddressMax:
		add("venueAddress", "Address cannot exceed 500 characters")
	}

	if strings.TrimSpace(d.Timezone) == "" {
		add("timezone", "Please select a timezone")
	}

	if d.StartDate.IsZero() {
		add("startDate", "Please select a start date")
	}
	if d.EndDate.IsZero() {
		add("endDate", "Please select an end date")
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return errs
	}

	if d.StartDate.Before(now) {
		add("startDate", "The event start date cannot be in the past")
	}

	switch {
	case d.EndDate.Before(now):
		add("endDate", "The event end date cannot be in the past")
	case d.EndDate.Equal(d.StartDate):
		add("endDate", "The event end time cannot be exactly the same as the start time")
	case d.EndDate.Before(d.StartDate):
		add("endDate", "The event end date must be after the start date")
	}

	return errs
}
