package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventreg/src/lib"
	"eventreg/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(regs *RegistrationService, gw *fakeGateway, notifier Notifier) *Reconciler {
	r := NewReconciler(regs, gw, notifier, 10*time.Minute, nopLogger())
	r.now = func() time.Time { return time.Now().Add(time.Hour) }
	return r
}

func TestReconcilerMarksSucceededRegistrationsPaid(t *testing.T) {
	store := newCountingStore()
	regs := NewRegistrationService(store, nopLogger())
	gw := newFakeGateway()
	notifier := &spyNotifier{}
	paid := seedRegistration(t, regs)
	pending := seedRegistration(t, regs)
	gw.succeeded[paid.ID] = "pi_paid"

	healed, err := newTestReconciler(regs, gw, notifier).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, healed)

	got, _ := regs.Get(context.Background(), paid.ID)
	assert.Equal(t, types.REGISTRATION_PAID, got.Status)
	got, _ = regs.Get(context.Background(), pending.ID)
	assert.Equal(t, types.REGISTRATION_PENDING, got.Status)
	assert.Equal(t, []uint{paid.ID}, notifier.sent)

	healed, err = newTestReconciler(regs, gw, notifier).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, healed)
	assert.Equal(t, 1, store.updates)
}

func TestReconcilerSkipsRecentRegistrations(t *testing.T) {
	regs := NewRegistrationService(newCountingStore(), nopLogger())
	gw := newFakeGateway()
	r := seedRegistration(t, regs)
	gw.succeeded[r.ID] = "pi_new"

	rec := NewReconciler(regs, gw, nil, 10*time.Minute, nopLogger())
	healed, err := rec.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, healed)
}

func TestReconcilerContinuesPastLookupErrors(t *testing.T) {
	regs := NewRegistrationService(newCountingStore(), nopLogger())
	gw := newFakeGateway()
	seedRegistration(t, regs)
	gw.searchErr = types.NewGatewayError(502, types.CODE_GATEWAY, "Payment provider unavailable", errors.New("timeout"))

	healed, err := newTestReconciler(regs, gw, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, healed)
}

func TestReconcilerStopsWhenProviderNotConfigured(t *testing.T) {
	regs := NewRegistrationService(newCountingStore(), nopLogger())
	gw := newFakeGateway()
	seedRegistration(t, regs)
	gw.searchErr = types.NewConfigurationError("Payment provider is not configured", lib.ErrStripeNotConfigured)

	_, err := newTestReconciler(regs, gw, nil).Run(context.Background())
	assert.True(t, types.IsKind(err, types.ConfigurationError))
}

func TestReconcilerTask(t *testing.T) {
	regs := NewRegistrationService(newCountingStore(), nopLogger())
	gw := newFakeGateway()
	r := seedRegistration(t, regs)
	gw.succeeded[r.ID] = "pi_task"

	newTestReconciler(regs, gw, nil).Task(time.Second)()

	got, err := regs.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid())
}
