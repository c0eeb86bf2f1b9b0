package repository

import (
	"context"
	"errors"

	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/lib/pq"
)

type EventRepository interface {
	// Upsert inserts the event or updates it in place when it already belongs
	// to event.OrganizerID. A row owned by another organizer yields ErrEventNotFound.
	Upsert(ctx context.Context, event *entity.Event) (*entity.Event, error)
	GetByID(ctx context.Context, id, organizerID string) (*entity.Event, error)
	GetDraft(ctx context.Context, id, organizerID string) (*entity.EventDraft, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type BannerRepository interface {
	Create(ctx context.Context, banner *entity.EventBanner) error
	// GetByEventID returns nil, nil when the event has no banner.
	GetByEventID(ctx context.Context, eventID string) (*entity.EventBanner, error)
	ListByEventID(ctx context.Context, eventID string) ([]*entity.EventBanner, error)
	Delete(ctx context.Context, id string) error
}

type TicketTypeRepository interface {
	Create(ctx context.Context, ticketType *entity.TicketType) error
	ListByEventID(ctx context.Context, eventID string) ([]*entity.TicketType, error)
}

type OrganizerRepository interface {
	Create(ctx context.Context, organizer *entity.Organizer) error
	GetByOwnerID(ctx context.Context, ownerID string) (*entity.Organizer, error)
	UpdateRecipientCode(ctx context.Context, id, recipientCode string) error
}

type scanner interface {
	Scan(dest ...any) error
}

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}
