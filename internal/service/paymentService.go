package service

import (
	"context"
	"errors"

	cache "github.com/ds124wfegd/eventmarket/internal/database/redis"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/pkg/paystack"

	"github.com/sirupsen/logrus"
)

type paymentService struct {
	paystack paystack.Client
	cache    cache.CacheRepository
}

func NewPaymentService(client paystack.Client, cacheRepo cache.CacheRepository) PaymentService {
	return &paymentService{paystack: client, cache: cacheRepo}
}

func (s *paymentService) GetAllBanks(ctx context.Context) ([]entity.Bank, error) {
	banks, err := s.cache.GetBanks(ctx)
	if err == nil {
		return banks, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logrus.WithError(err).Warn("Failed to read banks from cache")
	}

	banks, err = s.paystack.ListBanks(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch banks")
		return nil, err
	}

	if err := s.cache.SetBanks(ctx, banks); err != nil {
		logrus.WithError(err).Warn("Failed to cache banks")
	}
	return banks, nil
}

func (s *paymentService) VerifyBankAccount(ctx context.Context, accountNumber, bankCode string) (*entity.ResolvedAccount, error) {
	resolved, err := s.paystack.ResolveAccount(ctx, accountNumber, bankCode)
	if err != nil {
		logrus.WithError(err).WithField("bank_code", bankCode).Warn("Bank account verification failed")
		return nil, err
	}
	return resolved, nil
}
