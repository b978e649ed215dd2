package lib

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v82"
)

var ErrStripeNotConfigured = errors.New("STRIPE_SECRET_KEY is not set")

var (
	stripeMu       sync.Mutex
	stripeClient   *stripe.Client
	stripeKey      string
	stripeInjected bool
	stripeTimeout  = 30 * time.Second
)

// SetStripeTimeout sets the network timeout used for clients built after the call.
func SetStripeTimeout(d time.Duration) {
	stripeMu.Lock()
	defer stripeMu.Unlock()
	if d > 0 {
		stripeTimeout = d
	}
}

// GetStripeClient returns the process-wide client for the current
// STRIPE_SECRET_KEY. The client is rebuilt when the key changes.
func GetStripeClient() (*stripe.Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))

	stripeMu.Lock()
	defer stripeMu.Unlock()
	if stripeInjected {
		return stripeClient, nil
	}
	if apiKey == "" {
		return nil, ErrStripeNotConfigured
	}
	if stripeClient != nil && stripeKey == apiKey {
		return stripeClient, nil
	}
	sc := stripe.NewClient(apiKey, stripe.WithBackends(stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: stripeTimeout},
		MaxNetworkRetries: stripe.Int64(0),
	})))
	stripeClient = sc
	stripeKey = apiKey
	return sc, nil
}

// NewStripeClient Replace stripe instance with custom client implementation
func NewStripeClient(c *stripe.Client) {
	stripeMu.Lock()
	defer stripeMu.Unlock()
	stripeClient = c
	stripeKey = ""
	stripeInjected = c != nil
}

// NewStripeClientWithURL builds a client that talks to a different API host.
func NewStripeClientWithURL(apiKey, url string, hc *http.Client) *stripe.Client {
	return stripe.NewClient(apiKey, stripe.WithBackends(stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		URL:               stripe.String(url),
		HTTPClient:        hc,
		MaxNetworkRetries: stripe.Int64(0),
	})))
}

func ResetStripeClient() {
	NewStripeClient(nil)
}

// StripeKeyMode reports TEST, LIVE or UNKNOWN for the configured secret key.
func StripeKeyMode(apiKey string) string {
	switch {
	case strings.HasPrefix(apiKey, "sk_test_"), strings.HasPrefix(apiKey, "rk_test_"):
		return "TEST"
	case strings.HasPrefix(apiKey, "sk_live_"), strings.HasPrefix(apiKey, "rk_live_"):
		return "LIVE"
	}
	return "UNKNOWN"
}
