package service

import (
	"context"

	"github.com/ds124wfegd/eventmarket/internal/entity"
)

type EventService interface {
	// GetEventDraft returns ErrEventNotFound when the event does not exist
	// or belongs to another organizer.
	GetEventDraft(ctx context.Context, organizerID, eventID string) (*entity.EventDraft, error)
	SaveEventDetails(ctx context.Context, organizerID string, details *entity.EventDetails) (*entity.Event, error)
	// ResolveWizardStep maps a requested wizard step to the step the
	// organizer is allowed to see, based on the stored draft.
	ResolveWizardStep(ctx context.Context, organizerID, eventID, requested string) (*entity.StepResolution, error)
}

type BannerService interface {
	GeneratePresignedURL(ctx context.Context, req *PresignRequest) (*entity.PresignedUpload, error)
	ProcessBanner(ctx context.Context, req *ProcessBannerRequest) (*entity.EventBanner, error)
}

type TicketService interface {
	CreateTicketType(ctx context.Context, organizerID string, req *CreateTicketTypeRequest) (*entity.TicketType, error)
	ListTicketTypes(ctx context.Context, organizerID, eventID string) ([]*entity.TicketType, error)
}

type OrganizerService interface {
	// GetOrganizerProfile returns ErrOrganizerNotFound when the user has no organizer.
	GetOrganizerProfile(ctx context.Context, ownerID string) (*entity.Organizer, error)
	BecomeOrganizer(ctx context.Context, ownerID string, req *BecomeOrganizerRequest) (*BecomeOrganizerResult, error)
	// HandleRecipientLink processes one queued recipient link job.
	HandleRecipientLink(ctx context.Context, message []byte) error
}

type PaymentService interface {
	GetAllBanks(ctx context.Context) ([]entity.Bank, error)
	VerifyBankAccount(ctx context.Context, accountNumber, bankCode string) (*entity.ResolvedAccount, error)
}
