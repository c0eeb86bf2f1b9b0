package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

const eventColumns = `id, organizer_id, title, slug, description, venue_address,
	start_date, end_date, timezone, status, created_at, updated_at`

type eventRepository struct {
	db      *sql.DB
	banners BannerRepository
	tickets TicketTypeRepository
}

func NewEventRepository(db *sql.DB, banners BannerRepository, tickets TicketTypeRepository) EventRepository {
	return &eventRepository{db: db, banners: banners, tickets: tickets}
}

func scanEvent(row scanner) (*entity.Event, error) {
	var event entity.Event
	err := row.Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Address,
		&event.StartDate,
		&event.EndDate,
		&event.Timezone,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Upsert(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	query := `
		INSERT INTO event (id, organizer_id, title, slug, description, venue_address,
			start_date, end_date, timezone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'DRAFT', NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			venue_address = EXCLUDED.venue_address,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			timezone = EXCLUDED.timezone,
			updated_at = NOW()
		WHERE event.organizer_id = EXCLUDED.organizer_id
		RETURNING ` + eventColumns

	saved, err := scanEvent(r.db.QueryRowContext(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Title,
		event.Slug,
		event.Description,
		event.Address,
		event.StartDate,
		event.EndDate,
		event.Timezone,
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, entity.ErrEventNotFound
	case isUniqueViolation(err, "event_slug_idx"):
		return nil, entity.ErrSlugAlreadyTaken
	case err != nil:
		return nil, fmt.Errorf("failed to upsert event: %w", err)
	}

	return saved, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id, organizerID string) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event WHERE id = $1 AND organizer_id = $2`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id, organizerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) GetDraft(ctx context.Context, id, organizerID string) (*entity.EventDraft, error) {
	event, err := r.GetByID(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}

	banners, err := r.banners.ListByEventID(ctx, id)
	if err != nil {
		return nil, err
	}

	tickets, err := r.tickets.ListByEventID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entity.EventDraft{
		Event:       *event,
		Banners:     banners,
		TicketTypes: tickets,
	}, nil
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event WHERE slug = $1 AND ($2 = '' OR id <> $2))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}
