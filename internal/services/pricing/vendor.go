package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oureum/oureum-backend/internal/config"
)

// HTTPFetcher pulls quotes from the configured vendor endpoint with a
// bounded timeout and a capped retry count. On exhaustion the engine
// falls through to the next resolution tier; it never fails the request.
type HTTPFetcher struct {
	client     *http.Client
	url        string
	apiKey     string
	maxRetries int
}

// NewHTTPFetcher creates a fetcher from the pricing configuration.
func NewHTTPFetcher(cfg config.PricingConfig) *HTTPFetcher {
	return &HTTPFetcher{
		client:     &http.Client{Timeout: cfg.VendorTimeout},
		url:        cfg.VendorURL,
		apiKey:     cfg.VendorAPIKey,
		maxRetries: cfg.VendorMaxRetries,
	}
}

func (f *HTTPFetcher) FetchQuote(ctx context.Context) (*VendorQuote, error) {
	if f.url == "" {
		return nil, fmt.Errorf("%w: no vendor url configured", ErrVendorUnavailable)
	}

	var quote VendorQuote
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if f.apiKey != "" {
			req.Header.Set("x-access-token", f.apiKey)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("vendor request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("vendor rate limited (429)")
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("vendor returned status %d: %s", resp.StatusCode, string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode vendor quote: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVendorUnavailable, err)
	}

	if !quote.PricePerOunceBuy.IsPositive() || !quote.PricePerOunceSell.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive ounce price in quote", ErrVendorUnavailable)
	}
	return &quote, nil
}
