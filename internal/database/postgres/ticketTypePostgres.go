package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type ticketTypeRepository struct {
	db *sql.DB
}

func NewTicketTypeRepository(db *sql.DB) TicketTypeRepository {
	return &ticketTypeRepository{db: db}
}

func (r *ticketTypeRepository) Create(ctx context.Context, t *entity.TicketType) error {
	query := `
		INSERT INTO ticket_type (id, event_id, name, description, price, quantity,
			sold_count, sales_start_date, sales_end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, NOW())
		RETURNING created_at
	`

	return r.db.QueryRowContext(ctx, query,
		t.ID,
		t.EventID,
		t.Name,
		t.Description,
		t.Price,
		t.Quantity,
		t.SalesStartDate,
		t.SalesEndDate,
	).Scan(&t.CreatedAt)
}

func (r *ticketTypeRepository) ListByEventID(ctx context.Context, eventID string) ([]*entity.TicketType, error) {
	query := `
		SELECT id, event_id, name, description, price, quantity, sold_count,
			sales_start_date, sales_end_date, created_at
		FROM ticket_type
		WHERE event_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}
	defer rows.Close()

	tickets := []*entity.TicketType{}
	for rows.Next() {
		var t entity.TicketType
		if err := rows.Scan(
			&t.ID,
			&t.EventID,
			&t.Name,
			&t.Description,
			&t.Price,
			&t.Quantity,
			&t.SoldCount,
			&t.SalesStartDate,
			&t.SalesEndDate,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		tickets = append(tickets, &t)
	}

	return tickets, rows.Err()
}
