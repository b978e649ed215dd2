package services

import (
	"context"
	"fmt"
	"strings"

	"eventreg/src/db"
	"eventreg/src/models"
	"eventreg/src/types"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type RegistrationService struct {
	store    db.StorageAdapter
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewRegistrationService(store db.StorageAdapter, logger *zerolog.Logger) *RegistrationService {
	return &RegistrationService{store: store, validate: types.NewValidator(), log: logger}
}

// Create validates the input and stores a new pending registration.
func (s *RegistrationService) Create(ctx context.Context, in types.RegistrationInput) (*models.Registration, error) {
	in = normalizeInput(in)
	if err := s.validate.Struct(in); err != nil {
		return nil, types.NewValidationError(types.CODE_VALIDATION, "Validation failed", types.FieldErrors(err)...)
	}
	r, err := s.store.CreateRegistration(ctx, in)
	if err != nil {
		s.log.Error().Err(err).Str("email", in.Email).Msg("failed to create registration")
		return nil, types.NewStorageError(err)
	}
	s.log.Info().Uint("registration_id", r.ID).Int("qty", r.Qty).Msg("registration created")
	return r, nil
}

func (s *RegistrationService) Get(ctx context.Context, id uint) (*models.Registration, error) {
	r, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Uint("registration_id", id).Msg("failed to get registration")
		return nil, types.NewStorageError(err)
	}
	if r == nil {
		return nil, types.NewNotFoundError(fmt.Sprintf("Registration %d not found", id))
	}
	return r, nil
}

func (s *RegistrationService) List(ctx context.Context) ([]models.Registration, error) {
	rs, err := s.store.GetAllRegistrations(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list registrations")
		return nil, types.NewStorageError(err)
	}
	return rs, nil
}

// MarkPaid is idempotent. There is no transition back to pending.
func (s *RegistrationService) MarkPaid(ctx context.Context, id uint) error {
	if err := s.store.UpdateRegistrationStatus(ctx, id, types.REGISTRATION_PAID); err != nil {
		s.log.Error().Err(err).Uint("registration_id", id).Msg("failed to mark registration paid")
		return types.NewStorageError(err)
	}
	s.log.Info().Uint("registration_id", id).Msg("registration marked paid")
	return nil
}

func (s *RegistrationService) SetCheckedIn(ctx context.Context, id uint, checkedIn bool) (*models.Registration, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCheckedInStatus(ctx, id, checkedIn); err != nil {
		s.log.Error().Err(err).Uint("registration_id", id).Msg("failed to update check-in")
		return nil, types.NewStorageError(err)
	}
	s.log.Info().Uint("registration_id", id).Bool("checked_in", checkedIn).Msg("check-in updated")
	return s.Get(ctx, id)
}

func normalizeInput(in types.RegistrationInput) types.RegistrationInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = trimOptional(in.Phone)
	in.Dietary = trimOptional(in.Dietary)
	in.Notes = trimOptional(in.Notes)
	return in
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
