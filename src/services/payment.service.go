package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"eventreg/src/lib"
	"eventreg/src/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	DefaultCurrency        = "usd"
	MetadataRegistrationID = "registrationId"
)

type PaymentIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
}

// PaymentGateway is the subset of the payment provider the checkout flow needs.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntentResult, error)
	LinkPaymentIntent(ctx context.Context, paymentIntentID string, registrationID uint) error
	FindSucceededPaymentIntent(ctx context.Context, registrationID uint) (string, error)
	ConstructEvent(payload []byte, signature, secret string) (stripe.Event, error)
}

type StripeClientFunc func() (*stripe.Client, error)

type StripeGateway struct {
	client StripeClientFunc
	log    *zerolog.Logger
}

// NewStripeGateway uses lib.GetStripeClient when client is nil.
func NewStripeGateway(client StripeClientFunc, logger *zerolog.Logger) *StripeGateway {
	if client == nil {
		client = lib.GetStripeClient
	}
	return &StripeGateway{client: client, log: logger}
}

// maxMinorUnits is the largest amount Stripe accepts for a payment intent.
const maxMinorUnits = 99999999

// ToMinorUnits validates a major-unit amount and currency code and returns the
// amount in minor units with the lowercased currency.
func ToMinorUnits(amount float64, currency string) (int64, string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, "", types.NewValidationError(types.CODE_INVALID_AMOUNT, "Amount must be a positive number",
			types.FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	rounded := math.Round(amount * 100)
	if rounded > maxMinorUnits {
		return 0, "", types.NewValidationError(types.CODE_INVALID_AMOUNT, "Amount is too large",
			types.FieldError{Field: "amount", Message: "must be at most 999999.99"})
	}
	minor := int64(rounded)
	if minor < 1 {
		return 0, "", types.NewValidationError(types.CODE_INVALID_AMOUNT, "Amount is too small",
			types.FieldError{Field: "amount", Message: "must be at least 0.01"})
	}
	cur := strings.ToLower(strings.TrimSpace(currency))
	if !isCurrencyCode(cur) {
		return 0, "", types.NewValidationError(types.CODE_INVALID_CURRENCY, "Currency must be a three-letter ISO code",
			types.FieldError{Field: "currency", Message: "must be a three-letter code"})
	}
	return minor, cur, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntentResult, error) {
	minor, cur, err := ToMinorUnits(amount, currency)
	if err != nil {
		return nil, err
	}
	sc, err := g.client()
	if err != nil {
		return nil, g.mapError(err)
	}
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(cur),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := sc.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, g.mapError(err)
	}
	g.log.Info().
		Str("payment_intent", pi.ID).
		Int64("amount", minor).
		Str("currency", cur).
		Str("registration_id", metadata[MetadataRegistrationID]).
		Msg("payment intent created")
	return &PaymentIntentResult{ClientSecret: pi.ClientSecret, PaymentIntentID: pi.ID}, nil
}

// LinkPaymentIntent writes the registration id into an existing intent's metadata.
func (g *StripeGateway) LinkPaymentIntent(ctx context.Context, paymentIntentID string, registrationID uint) error {
	sc, err := g.client()
	if err != nil {
		return g.mapError(err)
	}
	params := &stripe.PaymentIntentUpdateParams{
		Metadata: map[string]string{MetadataRegistrationID: strconv.FormatUint(uint64(registrationID), 10)},
	}
	if _, err := sc.V1PaymentIntents.Update(ctx, paymentIntentID, params); err != nil {
		return g.mapError(err)
	}
	g.log.Info().Str("payment_intent", paymentIntentID).Uint("registration_id", registrationID).Msg("payment intent linked")
	return nil
}

// FindSucceededPaymentIntent returns the id of a succeeded intent carrying the
// registration id in its metadata, or "" when none exists.
func (g *StripeGateway) FindSucceededPaymentIntent(ctx context.Context, registrationID uint) (string, error) {
	sc, err := g.client()
	if err != nil {
		return "", g.mapError(err)
	}
	params := &stripe.PaymentIntentSearchParams{
		SearchParams: stripe.SearchParams{
			Query: fmt.Sprintf("metadata['%s']:'%d' AND status:'succeeded'", MetadataRegistrationID, registrationID),
			Limit: stripe.Int64(1),
		},
	}
	for pi, err := range sc.V1PaymentIntents.Search(ctx, params) {
		if err != nil {
			return "", g.mapError(err)
		}
		return pi.ID, nil
	}
	return "", nil
}

func (g *StripeGateway) ConstructEvent(payload []byte, signature, secret string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, types.NewSignatureError(types.CODE_INVALID_SIGNATURE, "Webhook signature verification failed", err)
	}
	return event, nil
}

func (g *StripeGateway) mapError(err error) error {
	if errors.Is(err, lib.ErrStripeNotConfigured) {
		g.log.Error().Err(err).Msg("payment provider is not configured")
		return types.NewConfigurationError("Payment provider is not configured", err)
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.HTTPStatusCode == http.StatusUnauthorized:
			g.log.Error().Err(err).Msg("payment provider rejected the secret key")
			return types.NewConfigurationError("Payment provider is not configured", err)
		case se.Type == stripe.ErrorTypeInvalidRequest, se.Type == stripe.ErrorTypeCard:
			g.log.Warn().Str("type", string(se.Type)).Str("message", se.Msg).Msg("payment request rejected")
			return types.NewGatewayError(http.StatusBadRequest, types.CODE_INVALID_PAYMENT, se.Msg, err)
		}
	}
	g.log.Error().Err(err).Msg("payment provider call failed")
	return types.NewGatewayError(http.StatusBadGateway, types.CODE_GATEWAY, "Payment provider unavailable", err)
}
