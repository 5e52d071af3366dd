package billing

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds configuration for the Stripe gateway
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// IsTestMode indicates if using Stripe test mode
	IsTestMode bool

	// MaxNetworkRetries is passed to the Stripe client; 0 keeps the library default
	MaxNetworkRetries int64
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}

	wantPrefix := "sk_live"
	if c.IsTestMode {
		wantPrefix = "sk_test"
	}
	if !strings.HasPrefix(c.SecretKey, wantPrefix) && !strings.HasPrefix(c.SecretKey, "rk_") {
		mode := "live"
		if c.IsTestMode {
			mode = "test"
		}
		return fmt.Errorf("stripe: %s mode enabled but secret key is not a %s key", mode, mode)
	}
	return nil
}

// InitStripeClient initializes the global Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
	if c.MaxNetworkRetries > 0 {
		stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(c.MaxNetworkRetries),
		}))
	}
}
