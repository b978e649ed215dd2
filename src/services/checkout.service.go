package services

import (
	"context"
	"maps"
	"strconv"

	"eventreg/src/models"
	"eventreg/src/types"

	"github.com/rs/zerolog"
)

// CheckoutService sequences registration creation, payment intent creation
// and confirmation.
type CheckoutService struct {
	registrations   *RegistrationService
	gateway         PaymentGateway
	notifier        Notifier
	webhooksEnabled bool
	log             *zerolog.Logger
}

func NewCheckoutService(registrations *RegistrationService, gateway PaymentGateway, notifier Notifier, webhooksEnabled bool, logger *zerolog.Logger) *CheckoutService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &CheckoutService{
		registrations:   registrations,
		gateway:         gateway,
		notifier:        notifier,
		webhooksEnabled: webhooksEnabled,
		log:             logger,
	}
}

// Start records a pending registration. No payment intent is created here.
func (s *CheckoutService) Start(ctx context.Context, body types.CheckoutStartRequestBody) (uint, error) {
	if !body.Consent {
		return 0, types.NewValidationError(types.CODE_CONSENT_REQUIRED, "Consent is required",
			types.FieldError{Field: "consent", Message: "must be accepted"})
	}
	r, err := s.registrations.Create(ctx, body.RegistrationInput)
	if err != nil {
		return 0, err
	}
	return r.ID, nil
}

func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, body types.CreatePaymentIntentRequestBody) (*PaymentIntentResult, error) {
	if body.Amount == nil {
		return nil, types.NewValidationError(types.CODE_INVALID_AMOUNT, "Amount is required",
			types.FieldError{Field: "amount", Message: "is required"})
	}
	currency := body.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	if _, _, err := ToMinorUnits(*body.Amount, currency); err != nil {
		return nil, err
	}

	metadata := map[string]string{}
	maps.Copy(metadata, body.Metadata)
	if body.RegistrationID != nil && *body.RegistrationID > 0 {
		metadata[MetadataRegistrationID] = strconv.FormatUint(uint64(*body.RegistrationID), 10)
	}
	return s.gateway.CreatePaymentIntent(ctx, *body.Amount, currency, metadata)
}

// LinkPaymentIntent attaches an existing registration to an intent created
// before the registration id was known.
func (s *CheckoutService) LinkPaymentIntent(ctx context.Context, paymentIntentID string, registrationID uint) error {
	if _, err := s.registrations.Get(ctx, registrationID); err != nil {
		return err
	}
	return s.gateway.LinkPaymentIntent(ctx, paymentIntentID, registrationID)
}

// Confirm returns the registration after the client finished payment. With
// webhooks configured the webhook is the only writer and this is a read.
func (s *CheckoutService) Confirm(ctx context.Context, registrationID uint) (*models.Registration, error) {
	r, err := s.registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if s.webhooksEnabled || r.IsPaid() {
		return r, nil
	}

	if err := s.registrations.MarkPaid(ctx, registrationID); err != nil {
		return nil, err
	}
	r, err = s.registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.RegistrationPaid(ctx, r); err != nil {
		s.log.Warn().Err(err).Uint("registration_id", r.ID).Msg("failed to send confirmation email")
	}
	return r, nil
}
