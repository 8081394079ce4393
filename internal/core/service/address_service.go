package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
	"github.com/99minutos/storefront-accounts/internal/core/validation"
)

// AddressService manages shipping addresses on behalf of their owner.
type AddressService struct {
	repo   ports.AddressRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewAddressService(repo ports.AddressRepository, logger zerolog.Logger) *AddressService {
	return &AddressService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *AddressService) AddAddress(ctx context.Context, accountID string, in ports.AddressInput) (*domain.Address, error) {
	fields, err := checkAddress(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	addr := toAddress(fields)
	addr.AccountID = accountID
	addr.CreatedAt = now
	addr.UpdatedAt = now

	created, err := s.repo.Create(ctx, addr)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to create address")
		return nil, fmt.Errorf("add address: %w", err)
	}
	s.logger.Info().Str("account_id", accountID).Str("address_id", created.ID).Msg("address added")
	return created, nil
}

func (s *AddressService) UpdateAddress(ctx context.Context, accountID, addressID string, in ports.AddressInput) (*domain.Address, error) {
	fields, err := checkAddress(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, accountID, addressID)
	if err != nil {
		return nil, err
	}

	addr := toAddress(fields)
	addr.ID = existing.ID
	addr.AccountID = existing.AccountID
	addr.CreatedAt = existing.CreatedAt
	addr.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrAddressNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update address: %w", err)
	}
	return updated, nil
}

func (s *AddressService) ListAddresses(ctx context.Context, accountID string) ([]*domain.Address, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

func (s *AddressService) DeleteAddress(ctx context.Context, accountID, addressID string) error {
	if err := s.repo.Delete(ctx, accountID, addressID); err != nil {
		return err
	}
	s.logger.Info().Str("account_id", accountID).Str("address_id", addressID).Msg("address deleted")
	return nil
}

func checkAddress(in ports.AddressInput) (ports.AddressInput, error) {
	fields, err := validation.ValidateAddress(in)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			observeValidation(verr)
		}
		return ports.AddressInput{}, err
	}
	return fields, nil
}

func toAddress(in ports.AddressInput) *domain.Address {
	return &domain.Address{
		FullName:     in.FullName,
		Phone:        in.Phone,
		AddressLine:  in.AddressLine,
		AddressLine2: in.AddressLine2,
		TownCity:     in.TownCity,
		Postcode:     in.Postcode,
	}
}
