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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var koboPerNaira = decimal.NewFromInt(100)

// CreateTicketTypeRequest carries the price in naira as a decimal string.
type CreateTicketTypeRequest struct {
	EventID        string     `json:"eventId" validate:"required,uuid"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	Price          string     `json:"price" validate:"required"`
	Quantity       int        `json:"quantity"`
	SalesStartDate *time.Time `json:"salesStartDate,omitempty"`
	SalesEndDate   *time.Time `json:"salesEndDate,omitempty"`
}

type ticketService struct {
	eventRepo  repository.EventRepository
	ticketRepo repository.TicketTypeRepository
}

func NewTicketService(eventRepo repository.EventRepository, ticketRepo repository.TicketTypeRepository) TicketService {
	return &ticketService{eventRepo: eventRepo, ticketRepo: ticketRepo}
}

// ToKobo parses a naira amount with at most two decimal places.
func ToKobo(raw string) (int64, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, entity.NewValidationError("price", "Please enter a valid price")
	}
	if price.IsNegative() {
		return 0, entity.NewValidationError("price", "Price cannot be negative")
	}
	if !price.Equal(price.Round(2)) {
		return 0, entity.NewValidationError("price", "Price can have at most 2 decimal places")
	}
	return price.Mul(koboPerNaira).IntPart(), nil
}

func (s *ticketService) CreateTicketType(ctx context.Context, organizerID string, req *CreateTicketTypeRequest) (*entity.TicketType, error) {
	var errs entity.ValidationErrors

	switch n := utf8.RuneCountInString(strings.TrimSpace(req.Name)); {
	case n == 0:
		errs = append(errs, entity.NewValidationError("name", "Please enter a ticket name"))
	case n > 100:
		errs = append(errs, entity.NewValidationError("name", "The ticket name cannot exceed 100 characters"))
	}

	price, err := ToKobo(req.Price)
	if err != nil {
		var vErr *entity.ValidationError
		if errors.As(err, &vErr) {
			errs = append(errs, vErr)
		}
	}

	if req.Quantity <= 0 {
		errs = append(errs, entity.NewValidationError("quantity", "Quantity must be at least 1"))
	}

	if req.SalesStartDate != nil && req.SalesEndDate != nil && !req.SalesEndDate.After(*req.SalesStartDate) {
		errs = append(errs, entity.NewValidationError("salesEndDate", "Sales must end after they start"))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	draft, err := s.eventRepo.GetDraft(ctx, req.EventID, organizerID)
	if errors.Is(err, entity.ErrEventNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}

	completeness := DeriveCompleteness(draft)
	if !completeness.HasDetails || !completeness.HasMedia {
		return nil, entity.ErrPreviousStepIncomplete
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	ticketType := &entity.TicketType{
		ID:             id.String(),
		EventID:        req.EventID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          price,
		Quantity:       req.Quantity,
		SalesStartDate: req.SalesStartDate,
		SalesEndDate:   req.SalesEndDate,
	}
	if err := s.ticketRepo.Create(ctx, ticketType); err != nil {
		logrus.WithError(err).WithField("event_id", req.EventID).Error("Failed to create ticket type")
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}

	return ticketType, nil
}

func (s *ticketService) ListTicketTypes(ctx context.Context, organizerID, eventID string) ([]*entity.TicketType, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID, organizerID); err != nil {
		if errors.Is(err, entity.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}

	tickets, err := s.ticketRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}
	return tickets, nil
}
