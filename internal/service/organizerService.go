package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	repository "github.com/ds124wfegd/eventmarket/internal/database/postgres"
	cache "github.com/ds124wfegd/eventmarket/internal/database/redis"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/monitoring"
	"github.com/ds124wfegd/eventmarket/internal/pkg/paystack"
	"github.com/ds124wfegd/eventmarket/internal/rabbitMQ"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RecipientCreationWarning = "PAYSTACK_RECIPIENT_CREATION_ERROR"

type BecomeOrganizerRequest struct {
	OrganizationName string  `json:"organizationName"`
	AccountNumber    *string `json:"accountNumber"`
	BankCode         *string `json:"bankCode"`
}

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BecomeOrganizerResult struct {
	Organizer *entity.Organizer `json:"organizer"`
	Warning   *Warning          `json:"warning,omitempty"`
}

type RecipientRetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type organizerService struct {
	organizerRepo repository.OrganizerRepository
	paystack      paystack.Client
	cache         cache.CacheRepository
	queue         rabbitMQ.Queue
	retry         RecipientRetryConfig
}

// NewOrganizerService creates a new OrganizerService. queue may be nil, in
// which case failed recipient links are only logged.
func NewOrganizerService(
	organizerRepo repository.OrganizerRepository,
	client paystack.Client,
	cacheRepo cache.CacheRepository,
	queue rabbitMQ.Queue,
	retry RecipientRetryConfig,
) OrganizerService {
	return &organizerService{
		organizerRepo: organizerRepo,
		paystack:      client,
		cache:         cacheRepo,
		queue:         queue,
		retry:         retry,
	}
}

func (s *organizerService) GetOrganizerProfile(ctx context.Context, ownerID string) (*entity.Organizer, error) {
	cached, err := s.cache.GetOrganizer(ctx, ownerID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logrus.WithError(err).Warn("Failed to read organizer from cache")
	}

	organizer, err := s.organizerRepo.GetByOwnerID(ctx, ownerID)
	if errors.Is(err, entity.ErrOrganizerNotFound) {
		return nil, err
	}
	if err != nil {
		logrus.WithError(err).WithField("owner_id", ownerID).Error("Failed to load organizer")
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}

	if err := s.cache.SetOrganizer(ctx, organizer); err != nil {
		logrus.WithError(err).Warn("Failed to cache organizer")
	}
	return organizer, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func isAccountNumber(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateBecomeOrganizer(req *BecomeOrganizerRequest) (string, string, entity.ValidationErrors) {
	var errs entity.ValidationErrors
	accountNumber := trimmed(req.AccountNumber)
	bankCode := trimmed(req.BankCode)

	switch n := utf8.RuneCountInString(req.OrganizationName); {
	case n < 2:
		errs = append(errs, entity.NewValidationError("organizationName", "Organization name must be at least 2 characters"))
	case n > 100:
		errs = append(errs, entity.NewValidationError("organizationName", "Organization name cannot exceed 100 characters"))
	}

	hasAccount := accountNumber != ""
	hasBank := bankCode != ""

	if hasAccount && !hasBank {
		errs = append(errs, entity.NewValidationError("bankCode", "Please select a bank when an account number is entered."))
	}
	if !hasAccount && hasBank {
		errs = append(errs, entity.NewValidationError("accountNumber", "Please provide the account number when a bank is selected."))
	}
	if hasAccount && !isAccountNumber(accountNumber) {
		errs = append(errs, entity.NewValidationError("accountNumber", "Account number must be exactly 10 digits."))
	}

	return accountNumber, bankCode, errs
}

// BecomeOrganizer creates the caller's organizer profile. Bank details, when
// given, are verified first; a failure to create the payout recipient does not
// block the profile and is returned as a warning with a retry queued.
func (s *organizerService) BecomeOrganizer(ctx context.Context, ownerID string, req *BecomeOrganizerRequest) (*BecomeOrganizerResult, error) {
	accountNumber, bankCode, errs := validateBecomeOrganizer(req)
	if len(errs) > 0 {
		return nil, errs
	}

	_, err := s.organizerRepo.GetByOwnerID(ctx, ownerID)
	switch {
	case err == nil:
		return nil, entity.ErrOrganizerAlreadyExists
	case !errors.Is(err, entity.ErrOrganizerNotFound):
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	organizer := &entity.Organizer{
		ID:      id.String(),
		OwnerID: ownerID,
		Name:    req.OrganizationName,
	}

	var (
		warning     *Warning
		pendingLink *entity.RecipientLinkJob
	)

	if accountNumber != "" && bankCode != "" {
		resolved, err := s.paystack.ResolveAccount(ctx, accountNumber, bankCode)
		if err != nil {
			return nil, err
		}

		organizer.BankCode = &bankCode
		organizer.AccountNumber = &resolved.AccountNumber
		organizer.AccountName = &resolved.AccountName

		recipientCode, err := s.paystack.CreateRecipient(ctx, paystack.RecipientRequest{
			Name:          resolved.AccountName,
			AccountNumber: resolved.AccountNumber,
			BankCode:      bankCode,
		})
		if err != nil {
			logrus.WithError(err).WithField("owner_id", ownerID).Warn("Failed to create payout recipient, organizer will be created without it")
			warning = &Warning{Code: RecipientCreationWarning, Message: err.Error()}
			pendingLink = &entity.RecipientLinkJob{
				OrganizerID:   organizer.ID,
				OwnerID:       ownerID,
				Name:          resolved.AccountName,
				AccountNumber: resolved.AccountNumber,
				BankCode:      bankCode,
				Attempt:       1,
			}
		} else {
			organizer.RecipientCode = &recipientCode
		}
	}

	if err := s.organizerRepo.Create(ctx, organizer); err != nil {
		if errors.Is(err, entity.ErrOrganizerAlreadyExists) {
			return nil, err
		}
		logrus.WithError(err).WithField("owner_id", ownerID).Error("Failed to create organizer")
		return nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err)
	}

	if err := s.cache.DeleteOrganizer(ctx, ownerID); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate organizer cache")
	}

	if pendingLink != nil {
		s.scheduleRecipientLink(ctx, *pendingLink)
	}

	return &BecomeOrganizerResult{Organizer: organizer, Warning: warning}, nil
}

func (s *organizerService) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return s.retry.BaseDelay * time.Duration(1<<(attempt-1))
}

func (s *organizerService) scheduleRecipientLink(ctx context.Context, job entity.RecipientLinkJob) {
	if s.queue == nil {
		logrus.WithField("organizer_id", job.OrganizerID).Warn("No retry queue configured, recipient link must be repaired manually")
		return
	}

	if err := s.queue.PublishWithDelay(ctx, job, s.retryDelay(job.Attempt)); err != nil {
		logrus.WithError(err).WithField("organizer_id", job.OrganizerID).Error("Failed to queue recipient link")
	}
}

// retryRecipientLink schedules the next attempt of job, or drops it once
// MaxAttempts is reached. cause is the failure of the current attempt.
func (s *organizerService) retryRecipientLink(ctx context.Context, job entity.RecipientLinkJob, cause error) error {
	log := logrus.WithError(cause).WithFields(logrus.Fields{"organizer_id": job.OrganizerID, "attempt": job.Attempt})

	if job.Attempt >= s.retry.MaxAttempts || s.queue == nil {
		monitoring.RecipientLinkJobs.WithLabelValues("exhausted").Inc()
		log.Error("Giving up on recipient link")
		return nil
	}

	monitoring.RecipientLinkJobs.WithLabelValues("retried").Inc()
	log.Warn("Recipient link failed, retrying later")
	job.Attempt++
	if err := s.queue.PublishWithDelay(ctx, job, s.retryDelay(job.Attempt)); err != nil {
		return fmt.Errorf("%w: failed to requeue recipient link: %w", rabbitMQ.ErrRedeliver, err)
	}
	return nil
}

func (s *organizerService) HandleRecipientLink(ctx context.Context, message []byte) error {
	var job entity.RecipientLinkJob
	if err := json.Unmarshal(message, &job); err != nil {
		return fmt.Errorf("malformed recipient link job: %w", err)
	}

	log := logrus.WithFields(logrus.Fields{"organizer_id": job.OrganizerID, "attempt": job.Attempt})

	recipientCode, err := s.paystack.CreateRecipient(ctx, paystack.RecipientRequest{
		Name:          job.Name,
		AccountNumber: job.AccountNumber,
		BankCode:      job.BankCode,
	})
	if err != nil {
		return s.retryRecipientLink(ctx, job, err)
	}

	if err := s.organizerRepo.UpdateRecipientCode(ctx, job.OrganizerID, recipientCode); err != nil {
		if errors.Is(err, entity.ErrOrganizerNotFound) {
			log.Warn("Organizer disappeared before its recipient could be linked")
			return nil
		}
		// Paystack returns the existing recipient for the same account, so the
		// next attempt links the same code.
		return s.retryRecipientLink(ctx, job, fmt.Errorf("%w: %w", entity.ErrDatabaseError, err))
	}

	if err := s.cache.DeleteOrganizer(ctx, job.OwnerID); err != nil {
		log.WithError(err).Warn("Failed to invalidate organizer cache")
	}

	monitoring.RecipientLinkJobs.WithLabelValues("linked").Inc()
	log.Info("Recipient linked")
	return nil
}
