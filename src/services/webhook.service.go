package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"eventreg/src/types"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

type EventDispatcher interface {
	Dispatch(ctx context.Context, event stripe.Event) error
}

// WebhookReceiver verifies signed provider events and hands them to the dispatcher.
type WebhookReceiver struct {
	gateway    PaymentGateway
	secret     string
	dispatcher EventDispatcher
	ledger     EventLedger
	log        *zerolog.Logger
}

func NewWebhookReceiver(gateway PaymentGateway, secret string, dispatcher EventDispatcher, ledger EventLedger, logger *zerolog.Logger) *WebhookReceiver {
	if ledger == nil {
		ledger = NopEventLedger{}
	}
	return &WebhookReceiver{gateway: gateway, secret: secret, dispatcher: dispatcher, ledger: ledger, log: logger}
}

// Receive returns an error only for requests that must not be acknowledged.
// Processing failures are logged and recorded, and the delivery is still
// acknowledged.
func (w *WebhookReceiver) Receive(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return types.NewSignatureError(types.CODE_MISSING_SIGNATURE, "Missing Stripe-Signature header", nil)
	}
	if w.secret == "" {
		w.log.Error().Msg("STRIPE_WEBHOOK_SECRET is not set")
		return types.NewConfigurationError("Webhook secret is not configured", errors.New("STRIPE_WEBHOOK_SECRET is not set"))
	}
	event, err := w.gateway.ConstructEvent(payload, signature, w.secret)
	if err != nil {
		w.log.Warn().Err(err).Msg("webhook signature verification failed")
		return err
	}

	log := w.log.With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()
	claimed, err := w.ledger.Claim(ctx, event.ID)
	if err != nil {
		log.Warn().Err(err).Msg("event ledger unavailable, processing without de-duplication")
		claimed = true
	}
	if !claimed {
		log.Info().Msg("duplicate event delivery ignored")
		return nil
	}

	if err := w.dispatcher.Dispatch(ctx, event); err != nil {
		log.Error().Err(err).Msg("failed to process webhook event")
		if rerr := w.ledger.Release(ctx, event.ID); rerr != nil {
			log.Warn().Err(rerr).Msg("failed to release event claim")
		}
		if rerr := w.ledger.RecordFailure(ctx, event.ID, string(event.Type), err); rerr != nil {
			log.Warn().Err(rerr).Msg("failed to record event failure")
		}
	}
	return nil
}

// PaymentEventHandler applies payment intent events to registrations.
type PaymentEventHandler struct {
	registrations *RegistrationService
	notifier      Notifier
	log           *zerolog.Logger
}

func NewPaymentEventHandler(registrations *RegistrationService, notifier Notifier, logger *zerolog.Logger) *PaymentEventHandler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PaymentEventHandler{registrations: registrations, notifier: notifier, log: logger}
}

func (h *PaymentEventHandler) Dispatch(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		pi, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		return h.succeeded(ctx, pi)
	case stripe.EventTypePaymentIntentProcessing:
		pi, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		h.log.Info().Str("payment_intent", pi.ID).Str("registration_id", pi.Metadata[MetadataRegistrationID]).Msg("payment processing")
	case stripe.EventTypePaymentIntentPaymentFailed:
		pi, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		reason := ""
		if pi.LastPaymentError != nil {
			reason = pi.LastPaymentError.Msg
		}
		h.log.Warn().
			Str("payment_intent", pi.ID).
			Str("registration_id", pi.Metadata[MetadataRegistrationID]).
			Str("reason", reason).
			Msg("payment failed, registration stays pending")
	default:
		h.log.Debug().Str("event_type", string(event.Type)).Msg("unhandled event type")
	}
	return nil
}

func (h *PaymentEventHandler) succeeded(ctx context.Context, pi *stripe.PaymentIntent) error {
	raw, ok := pi.Metadata[MetadataRegistrationID]
	if !ok || raw == "" {
		h.log.Warn().Str("payment_intent", pi.ID).Msg("payment succeeded without registrationId metadata")
		return nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		h.log.Warn().Str("payment_intent", pi.ID).Str("registration_id", raw).Msg("payment succeeded with invalid registrationId metadata")
		return nil
	}
	id := uint(parsed)

	r, err := h.registrations.Get(ctx, id)
	if types.IsKind(err, types.NotFoundError) {
		h.log.Warn().Str("payment_intent", pi.ID).Uint("registration_id", id).Msg("payment succeeded for unknown registration")
		return nil
	}
	if err != nil {
		return err
	}
	if r.IsPaid() {
		return nil
	}
	if err := h.registrations.MarkPaid(ctx, id); err != nil {
		return err
	}
	r.Status = types.REGISTRATION_PAID
	if err := h.notifier.RegistrationPaid(ctx, r); err != nil {
		h.log.Warn().Err(err).Uint("registration_id", id).Msg("failed to send confirmation email")
	}
	return nil
}

func decodePaymentIntent(event stripe.Event) (*stripe.PaymentIntent, error) {
	if event.Data == nil {
		return nil, fmt.Errorf("event %s has no data", event.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("parsing payment intent from event %s: %w", event.ID, err)
	}
	return &pi, nil
}
