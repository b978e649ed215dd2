package services

import (
	"context"
	"time"

	"eventreg/src/types"

	"github.com/rs/zerolog"
)

// Reconciler marks pending registrations paid when the provider reports a
// succeeded intent for them. It covers webhooks that never arrived.
type Reconciler struct {
	registrations *RegistrationService
	gateway       PaymentGateway
	notifier      Notifier
	minAge        time.Duration
	now           func() time.Time
	log           *zerolog.Logger
}

func NewReconciler(registrations *RegistrationService, gateway PaymentGateway, notifier Notifier, minAge time.Duration, logger *zerolog.Logger) *Reconciler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Reconciler{
		registrations: registrations,
		gateway:       gateway,
		notifier:      notifier,
		minAge:        minAge,
		now:           time.Now,
		log:           logger,
	}
}

// Run performs one sweep and returns how many registrations were marked paid.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	list, err := r.registrations.List(ctx)
	if err != nil {
		return 0, err
	}
	healed := 0
	cutoff := r.now().Add(-r.minAge)
	for i := range list {
		reg := &list[i]
		if reg.IsPaid() || reg.CreatedAt.After(cutoff) {
			continue
		}
		piID, err := r.gateway.FindSucceededPaymentIntent(ctx, reg.ID)
		if types.IsKind(err, types.ConfigurationError) {
			return healed, err
		}
		if err != nil {
			r.log.Warn().Err(err).Uint("registration_id", reg.ID).Msg("payment lookup failed")
			continue
		}
		if piID == "" {
			continue
		}
		if err := r.registrations.MarkPaid(ctx, reg.ID); err != nil {
			r.log.Warn().Err(err).Uint("registration_id", reg.ID).Msg("failed to mark reconciled registration paid")
			continue
		}
		reg.Status = types.REGISTRATION_PAID
		if err := r.notifier.RegistrationPaid(ctx, reg); err != nil {
			r.log.Warn().Err(err).Uint("registration_id", reg.ID).Msg("failed to send confirmation email")
		}
		r.log.Info().Uint("registration_id", reg.ID).Str("payment_intent", piID).Msg("registration reconciled")
		healed++
	}
	return healed, nil
}

// Task is the scheduler entrypoint. Each sweep is bounded by timeout.
func (r *Reconciler) Task(timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		healed, err := r.Run(ctx)
		if err != nil {
			r.log.Error().Err(err).Msg("reconciliation sweep failed")
			return
		}
		r.log.Debug().Int("healed", healed).Msg("reconciliation sweep finished")
	}
}
