package lib

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"
	"time"

	"eventreg/src/config"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestGetStripeClientNotConfigured(t *testing.T) {
	ResetStripeClient()
	t.Setenv("STRIPE_SECRET_KEY", "")

	sc, err := GetStripeClient()
	assert.Nil(t, sc)
	assert.ErrorIs(t, err, ErrStripeNotConfigured)
}

func TestGetStripeClientRebuildsOnKeyChange(t *testing.T) {
	ResetStripeClient()
	t.Cleanup(ResetStripeClient)

	t.Setenv("STRIPE_SECRET_KEY", "sk_test_one")
	first, err := GetStripeClient()
	require.NoError(t, err)
	again, err := GetStripeClient()
	require.NoError(t, err)
	assert.Same(t, first, again)

	t.Setenv("STRIPE_SECRET_KEY", "sk_test_two")
	second, err := GetStripeClient()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestInjectedStripeClientWins(t *testing.T) {
	t.Cleanup(ResetStripeClient)
	t.Setenv("STRIPE_SECRET_KEY", "")

	injected := stripe.NewClient("sk_test_injected")
	NewStripeClient(injected)

	sc, err := GetStripeClient()
	require.NoError(t, err)
	assert.Same(t, injected, sc)
}

func TestStripeKeyMode(t *testing.T) {
	assert.Equal(t, "TEST", StripeKeyMode("sk_test_abc"))
	assert.Equal(t, "LIVE", StripeKeyMode("sk_live_abc"))
	assert.Equal(t, "TEST", StripeKeyMode("rk_test_abc"))
	assert.Equal(t, "UNKNOWN", StripeKeyMode(""))
	assert.Equal(t, "UNKNOWN", StripeKeyMode("pk_test_abc"))
}

func TestGetRedisClientNotConfigured(t *testing.T) {
	NewRedisClient(nil)
	t.Setenv("REDIS_URL", "")

	rdb, err := GetRedisClient()
	assert.Nil(t, rdb)
	assert.ErrorIs(t, err, ErrRedisNotConfigured)
}

func TestPingRedis(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, PingRedis(context.Background(), rdb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage(&SendMailInput{
		From:     "tickets@example.com",
		FromName: "Tickets",
		To:       []string{"ada@example.com"},
		Subject:  "You're in",
		Body:     "<p>See you there</p>",
		Html:     true,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ada@example.com")
	assert.Contains(t, buf.String(), "text/html")
}

func TestBuildMessageEmbedsInlineFiles(t *testing.T) {
	code, err := QRCodeJPEG("42")
	require.NoError(t, err)

	msg, err := BuildMessage(&SendMailInput{
		From:    "tickets@example.com",
		To:      []string{"ada@example.com"},
		Subject: "Your ticket",
		Body:    `<img src="cid:registration-42.jpeg">`,
		Html:    true,
		Inline:  []InlineFile{{Name: "registration-42.jpeg", ContentType: "image/jpeg", Data: code}},
	})
	require.NoError(t, err)
	require.Len(t, msg.GetEmbeds(), 1)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "image/jpeg")
	assert.Contains(t, buf.String(), "registration-42.jpeg")
}

func TestQRCodeJPEG(t *testing.T) {
	code, err := QRCodeJPEG("17")
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(code))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	_, err := BuildMessage(&SendMailInput{From: "tickets@example.com", To: []string{"not an address"}})
	assert.Error(t, err)
}

func TestGetSMTPClientNotConfigured(t *testing.T) {
	_, err := GetSMTPClient(config.SMTPConfig{})
	assert.ErrorIs(t, err, ErrSMTPNotConfigured)
}

func TestCreateCronJob(t *testing.T) {
	t.Cleanup(func() { _ = StopScheduler() })

	id, err := CreateCronJob("noop", time.Hour, func() {})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	sched, err := GetScheduler()
	require.NoError(t, err)
	assert.Len(t, sched.Jobs(), 1)
}

func TestGAPICreateSheetsServiceNotConfigured(t *testing.T) {
	_, err := GAPICreateSheetsService(context.Background(), config.SheetsConfig{SpreadsheetID: "abc"})
	assert.ErrorIs(t, err, ErrSheetsNotConfigured)
}
