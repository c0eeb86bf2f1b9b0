package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type organizerRepository struct {
	db *sql.DB
}

func NewOrganizerRepository(db *sql.DB) OrganizerRepository {
	return &organizerRepository{db: db}
}

func (r *organizerRepository) Create(ctx context.Context, o *entity.Organizer) error {
	query := `
		INSERT INTO organizer (id, owner_id, name, bank_code, account_number, account_name,
			paystack_recipient_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING available_balance, pending_balance, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		o.ID,
		o.OwnerID,
		o.Name,
		o.BankCode,
		o.AccountNumber,
		o.AccountName,
		o.RecipientCode,
	).Scan(&o.AvailableBalance, &o.PendingBalance, &o.CreatedAt, &o.UpdatedAt)

	if isUniqueViolation(err, "organizer_owner_id_idx") {
		return entity.ErrOrganizerAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create organizer: %w", err)
	}
	return nil
}

func (r *organizerRepository) GetByOwnerID(ctx context.Context, ownerID string) (*entity.Organizer, error) {
	query := `
		SELECT id, owner_id, name, bank_code, account_number, account_name,
			paystack_recipient_code, available_balance, pending_balance, created_at, updated_at
		FROM organizer
		WHERE owner_id = $1
	`

	var o entity.Organizer
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&o.ID,
		&o.OwnerID,
		&o.Name,
		&o.BankCode,
		&o.AccountNumber,
		&o.AccountName,
		&o.RecipientCode,
		&o.AvailableBalance,
		&o.PendingBalance,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrganizerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organizer: %w", err)
	}
	return &o, nil
}

func (r *organizerRepository) UpdateRecipientCode(ctx context.Context, id, recipientCode string) error {
	query := `UPDATE organizer SET paystack_recipient_code = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, recipientCode, id)
	if err != nil {
		return fmt.Errorf("failed to update recipient code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrOrganizerNotFound
	}
	return nil
}
