// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"log/slog"
	"net/http"
	"time"
)

// Option is a functional option for configuring a [Checker].
type Option func(*Checker)

// WithTimeout sets the per-query timeout for each DoH request.
// The value is clamped to [1s, 30s]. The default is 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d < minTimeout {
			d = minTimeout
		}
		if d > maxTimeout {
			d = maxTimeout
		}
		c.timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts per provider.
// The default is 2 retries (3 total attempts); values are clamped to
// [0, 10] and negative input falls back to the default.
func WithMaxRetries(n int) Option {
	return func(c *Checker) {
		if n < 0 {
			n = defaultRetries
		}
		if n > maxRetryLimit {
			n = maxRetryLimit
		}
		c.maxRetries = n
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff between
// retry attempts (delay = base × 2^(attempt-1)). The default is 1 second.
// Non-positive values are ignored.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.retryBaseDelay = d
		}
	}
}

// WithProviders replaces the provider fallback order. Unknown providers
// (no endpoint configured) are dropped. Passing zero providers is a no-op.
func WithProviders(providers ...Provider) Option {
	return func(c *Checker) {
		var known []Provider
		for _, p := range providers {
			if p.Known() {
				known = append(known, p)
			}
		}
		if len(known) > 0 {
			c.providers = known
		}
	}
}

// WithProviderEndpoint overrides the DoH endpoint URL for a provider.
// If the provider is not in the fallback order yet, it is appended.
// Useful for pointing the checker at a mirror or a test server.
func WithProviderEndpoint(p Provider, endpoint string) Option {
	return func(c *Checker) {
		if p == "" || endpoint == "" {
			return
		}
		if _, ok := c.endpoints[p]; !ok {
			c.providers = append(c.providers, p)
		}
		c.endpoints[p] = endpoint
	}
}

// WithCache sets a custom [Cache] implementation. By default the checker
// uses a bounded in-memory cache (50 entries, insertion-order eviction).
//
// Pass nil to disable caching entirely.
func WithCache(cache Cache) Option {
	return func(c *Checker) {
		c.cache = cache
		c.cacheDisabled = cache == nil
	}
}

// WithHTTPClient sets a custom [http.Client] for all DoH requests.
// This allows full control over the transport (proxies, TLS
// configuration, connection pooling). Passing nil is a no-op.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the [slog.Logger] used for debug output (retries,
// provider fallbacks). The default is [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}
