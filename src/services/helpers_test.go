package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"eventreg/src/db"
	"eventreg/src/models"
	"eventreg/src/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// countingStore records how often storage is written to.
type countingStore struct {
	db.StorageAdapter
	mu      sync.Mutex
	creates int
	updates int
}

func newCountingStore() *countingStore {
	return &countingStore{StorageAdapter: db.NewMemoryStorage()}
}

func (s *countingStore) CreateRegistration(ctx context.Context, in types.RegistrationInput) (*models.Registration, error) {
	s.mu.Lock()
	s.creates++
	s.mu.Unlock()
	return s.StorageAdapter.CreateRegistration(ctx, in)
}

func (s *countingStore) UpdateRegistrationStatus(ctx context.Context, id uint, status types.RegistrationStatus) error {
	s.mu.Lock()
	s.updates++
	s.mu.Unlock()
	return s.StorageAdapter.UpdateRegistrationStatus(ctx, id, status)
}

type failingStore struct {
	db.StorageAdapter
}

var errStorageDown = errors.New("storage down")

func (failingStore) CreateRegistration(context.Context, types.RegistrationInput) (*models.Registration, error) {
	return nil, errStorageDown
}

func (failingStore) GetRegistration(context.Context, uint) (*models.Registration, error) {
	return nil, errStorageDown
}

func (failingStore) GetAllRegistrations(context.Context) ([]models.Registration, error) {
	return nil, errStorageDown
}

// fakeGateway records calls and verifies signatures with the real verifier.
type fakeGateway struct {
	mu        sync.Mutex
	creates   []fakeCreateCall
	links     map[string]uint
	succeeded map[uint]string
	createErr error
	searchErr error
}

type fakeCreateCall struct {
	Amount   float64
	Currency string
	Metadata map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{links: map[string]uint{}, succeeded: map[uint]string{}}
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.creates = append(g.creates, fakeCreateCall{Amount: amount, Currency: currency, Metadata: metadata})
	return &PaymentIntentResult{ClientSecret: "pi_fake_secret_123", PaymentIntentID: "pi_fake"}, nil
}

func (g *fakeGateway) LinkPaymentIntent(_ context.Context, paymentIntentID string, registrationID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.links[paymentIntentID] = registrationID
	return nil
}

func (g *fakeGateway) FindSucceededPaymentIntent(_ context.Context, registrationID uint) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.searchErr != nil {
		return "", g.searchErr
	}
	return g.succeeded[registrationID], nil
}

func (g *fakeGateway) ConstructEvent(payload []byte, signature, secret string) (stripe.Event, error) {
	return NewStripeGateway(nil, nopLogger()).ConstructEvent(payload, signature, secret)
}

func (g *fakeGateway) createCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.creates)
}

type spyNotifier struct {
	mu   sync.Mutex
	sent []uint
	err  error
}

func (n *spyNotifier) RegistrationPaid(_ context.Context, r *models.Registration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, r.ID)
	return n.err
}

type spyDispatcher struct {
	mu     sync.Mutex
	events []stripe.Event
	err    error
}

func (d *spyDispatcher) Dispatch(_ context.Context, event stripe.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return d.err
}

func (d *spyDispatcher) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

// paymentIntentEvent builds a raw provider event for a payment intent.
func paymentIntentEvent(t *testing.T, eventID string, eventType stripe.EventType, metadata map[string]string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id":     eventID,
		"object": "event",
		"type":   eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":       "pi_" + eventID,
				"object":   "payment_intent",
				"amount":   2500,
				"currency": "usd",
				"status":   "succeeded",
				"metadata": metadata,
			},
		},
	})
	require.NoError(t, err)
	return b
}

func sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})
	return signed.Header
}

func seedRegistration(t *testing.T, svc *RegistrationService) *models.Registration {
	t.Helper()
	r, err := svc.Create(context.Background(), types.RegistrationInput{Name: "Ada Lovelace", Email: "ada@example.com", Qty: 2})
	require.NoError(t, err)
	return r
}
