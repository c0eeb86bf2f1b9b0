package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type bannerRepository struct {
	db *sql.DB
}

func NewBannerRepository(db *sql.DB) BannerRepository {
	return &bannerRepository{db: db}
}

func (r *bannerRepository) Create(ctx context.Context, banner *entity.EventBanner) error {
	query := `
		INSERT INTO event_banner (id, event_id, url, blurhash, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	return r.db.QueryRowContext(ctx, query,
		banner.ID,
		banner.EventID,
		banner.URL,
		banner.Blurhash,
		banner.SortOrder,
	).Scan(&banner.CreatedAt)
}

func (r *bannerRepository) GetByEventID(ctx context.Context, eventID string) (*entity.EventBanner, error) {
	query := `
		SELECT id, event_id, url, blurhash, sort_order, created_at
		FROM event_banner
		WHERE event_id = $1
		ORDER BY sort_order, created_at
		LIMIT 1
	`

	var banner entity.EventBanner
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&banner.ID,
		&banner.EventID,
		&banner.URL,
		&banner.Blurhash,
		&banner.SortOrder,
		&banner.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get banner: %w", err)
	}
	return &banner, nil
}

func (r *bannerRepository) ListByEventID(ctx context.Context, eventID string) ([]*entity.EventBanner, error) {
	query := `
		SELECT id, event_id, url, blurhash, sort_order, created_at
		FROM event_banner
		WHERE event_id = $1
		ORDER BY sort_order, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	banners := []*entity.EventBanner{}
	for rows.Next() {
		var banner entity.EventBanner
		if err := rows.Scan(
			&banner.ID,
			&banner.EventID,
			&banner.URL,
			&banner.Blurhash,
			&banner.SortOrder,
			&banner.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, &banner)
	}

	return banners, rows.Err()
}

func (r *bannerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_banner WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete banner: %w", err)
	}
	return nil
}
