package services

import (
	"context"
	"testing"

	"eventreg/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CheckoutSuite struct {
	suite.Suite
	store         *countingStore
	registrations *RegistrationService
	gateway       *fakeGateway
	notifier      *spyNotifier
}

func (s *CheckoutSuite) SetupTest() {
	s.store = newCountingStore()
	s.registrations = NewRegistrationService(s.store, nopLogger())
	s.gateway = newFakeGateway()
	s.notifier = &spyNotifier{}
}

func (s *CheckoutSuite) service(webhooksEnabled bool) *CheckoutService {
	return NewCheckoutService(s.registrations, s.gateway, s.notifier, webhooksEnabled, nopLogger())
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) TestStartRequiresConsent() {
	body := types.CheckoutStartRequestBody{
		RegistrationInput: types.RegistrationInput{Name: "Ada", Email: "ada@example.com", Qty: 1},
	}

	_, err := s.service(true).Start(context.Background(), body)
	appErr := types.AsAppError(err)
	s.Equal(types.ValidationError, appErr.Kind)
	s.Equal(types.CODE_CONSENT_REQUIRED, appErr.Code)
	s.Require().Len(appErr.Details, 1)
	s.Equal("consent", appErr.Details[0].Field)
	s.Zero(s.store.creates)
}

func (s *CheckoutSuite) TestStartCreatesPendingRegistration() {
	body := types.CheckoutStartRequestBody{
		RegistrationInput: types.RegistrationInput{Name: "Ada", Email: "ada@example.com", Qty: 2},
		Consent:           true,
	}

	id, err := s.service(true).Start(context.Background(), body)
	s.Require().NoError(err)

	r, err := s.registrations.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Equal(types.REGISTRATION_PENDING, r.Status)
	s.Zero(s.gateway.createCalls())
}

func (s *CheckoutSuite) TestCreatePaymentIntentRejectsBeforeGateway() {
	zero, negative, amount := 0.0, -5.0, 10.0
	cases := []struct {
		body types.CreatePaymentIntentRequestBody
		code string
	}{
		{types.CreatePaymentIntentRequestBody{}, types.CODE_INVALID_AMOUNT},
		{types.CreatePaymentIntentRequestBody{Amount: &zero}, types.CODE_INVALID_AMOUNT},
		{types.CreatePaymentIntentRequestBody{Amount: &negative}, types.CODE_INVALID_AMOUNT},
		{types.CreatePaymentIntentRequestBody{Amount: &amount, Currency: "dollars"}, types.CODE_INVALID_CURRENCY},
	}
	for _, tc := range cases {
		_, err := s.service(true).CreatePaymentIntent(context.Background(), tc.body)
		s.Equal(tc.code, types.AsAppError(err).Code)
	}
	s.Zero(s.gateway.createCalls())
}

func (s *CheckoutSuite) TestCreatePaymentIntentDefaultsAndMetadata() {
	amount := 25.0
	id := uint(7)
	res, err := s.service(true).CreatePaymentIntent(context.Background(), types.CreatePaymentIntentRequestBody{
		Amount:         &amount,
		RegistrationID: &id,
		Metadata:       map[string]string{"registrationId": "999", "source": "web"},
	})
	s.Require().NoError(err)
	s.Equal("pi_fake_secret_123", res.ClientSecret)

	s.Require().Len(s.gateway.creates, 1)
	call := s.gateway.creates[0]
	s.Equal("usd", call.Currency)
	s.Equal(25.0, call.Amount)
	s.Equal("7", call.Metadata["registrationId"])
	s.Equal("web", call.Metadata["source"])
}

func (s *CheckoutSuite) TestCreatePaymentIntentWithoutRegistration() {
	amount := 12.5
	_, err := s.service(true).CreatePaymentIntent(context.Background(), types.CreatePaymentIntentRequestBody{Amount: &amount, Currency: "EUR"})
	s.Require().NoError(err)

	call := s.gateway.creates[0]
	s.Equal("EUR", call.Currency)
	s.NotContains(call.Metadata, "registrationId")
}

func (s *CheckoutSuite) TestLinkPaymentIntent() {
	r := seedRegistration(s.T(), s.registrations)

	s.Require().NoError(s.service(true).LinkPaymentIntent(context.Background(), "pi_abc", r.ID))
	s.Equal(r.ID, s.gateway.links["pi_abc"])

	err := s.service(true).LinkPaymentIntent(context.Background(), "pi_def", 404)
	s.True(types.IsKind(err, types.NotFoundError))
	s.NotContains(s.gateway.links, "pi_def")
}

func (s *CheckoutSuite) TestConfirmIsReadOnlyWithWebhooks() {
	r := seedRegistration(s.T(), s.registrations)

	got, err := s.service(true).Confirm(context.Background(), r.ID)
	s.Require().NoError(err)
	s.Equal(types.REGISTRATION_PENDING, got.Status)
	s.Zero(s.store.updates)
	s.Empty(s.notifier.sent)
}

func (s *CheckoutSuite) TestConfirmMarksPaidWithoutWebhooks() {
	r := seedRegistration(s.T(), s.registrations)
	svc := s.service(false)

	got, err := svc.Confirm(context.Background(), r.ID)
	s.Require().NoError(err)
	s.Equal(types.REGISTRATION_PAID, got.Status)
	s.Equal([]uint{r.ID}, s.notifier.sent)

	got, err = svc.Confirm(context.Background(), r.ID)
	s.Require().NoError(err)
	s.Equal(types.REGISTRATION_PAID, got.Status)
	s.Equal(1, s.store.updates)
}

func (s *CheckoutSuite) TestConfirmUnknownRegistration() {
	_, err := s.service(false).Confirm(context.Background(), 404)
	s.True(types.IsKind(err, types.NotFoundError))
	s.Zero(s.store.updates)
}

func TestCheckoutGatewayErrorsPassThrough(t *testing.T) {
	gw := newFakeGateway()
	gw.createErr = types.NewGatewayError(502, types.CODE_GATEWAY, "Payment provider unavailable", nil)
	svc := NewCheckoutService(NewRegistrationService(newCountingStore(), nopLogger()), gw, nil, true, nopLogger())

	amount := 10.0
	_, err := svc.CreatePaymentIntent(context.Background(), types.CreatePaymentIntentRequestBody{Amount: &amount})
	require.Error(t, err)
	assert.Equal(t, 502, types.HTTPStatus(err))
}
