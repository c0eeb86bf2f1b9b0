package transport

import (
	"context"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockOrganizerService struct{ mock.Mock }

func (m *mockOrganizerService) GetOrganizerProfile(ctx context.Context, ownerID string) (*entity.Organizer, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Organizer), args.Error(1)
}

func (m *mockOrganizerService) BecomeOrganizer(ctx context.Context, ownerID string, req *service.BecomeOrganizerRequest) (*service.BecomeOrganizerResult, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BecomeOrganizerResult), args.Error(1)
}

func (m *mockOrganizerService) HandleRecipientLink(ctx context.Context, message []byte) error {
	return m.Called(ctx, message).Error(0)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) GetAllBanks(ctx context.Context) ([]entity.Bank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Bank), args.Error(1)
}

func (m *mockPaymentService) VerifyBankAccount(ctx context.Context, accountNumber, bankCode string) (*entity.ResolvedAccount, error) {
	args := m.Called(ctx, accountNumber, bankCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ResolvedAccount), args.Error(1)
}

type mockEventService struct{ mock.Mock }

func (m *mockEventService) GetEventDraft(ctx context.Context, organizerID, eventID string) (*entity.EventDraft, error) {
	args := m.Called(ctx, organizerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EventDraft), args.Error(1)
}

func (m *mockEventService) SaveEventDetails(ctx context.Context, organizerID string, details *entity.EventDetails) (*entity.Event, error) {
	args := m.Called(ctx, organizerID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Event), args.Error(1)
}

func (m *mockEventService) ResolveWizardStep(ctx context.Context, organizerID, eventID, requested string) (*entity.StepResolution, error) {
	args := m.Called(ctx, organizerID, eventID, requested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StepResolution), args.Error(1)
}

type mockBannerService struct{ mock.Mock }

func (m *mockBannerService) GeneratePresignedURL(ctx context.Context, req *service.PresignRequest) (*entity.PresignedUpload, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PresignedUpload), args.Error(1)
}

func (m *mockBannerService) ProcessBanner(ctx context.Context, req *service.ProcessBannerRequest) (*entity.EventBanner, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EventBanner), args.Error(1)
}

type mockTicketService struct{ mock.Mock }

func (m *mockTicketService) CreateTicketType(ctx context.Context, organizerID string, req *service.CreateTicketTypeRequest) (*entity.TicketType, error) {
	args := m.Called(ctx, organizerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TicketType), args.Error(1)
}

func (m *mockTicketService) ListTicketTypes(ctx context.Context, organizerID, eventID string) ([]*entity.TicketType, error) {
	args := m.Called(ctx, organizerID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.TicketType), args.Error(1)
}
