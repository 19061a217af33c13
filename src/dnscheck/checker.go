// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Default configuration values.
const (
	defaultTimeout        = 10 * time.Second
	defaultRetries        = 2 // 3 total attempts per provider
	defaultRetryBaseDelay = 1 * time.Second

	minTimeout    = 1 * time.Second
	maxTimeout    = 30 * time.Second
	maxRetryLimit = 10

	// queryAllBatchSize caps concurrent in-flight requests per QueryAll
	// call, so a single domain never has more than 3 outstanding
	// requests against any one provider.
	queryAllBatchSize = 3

	// probeDomain is the fixed query used for provider health checks.
	probeDomain = "example.com"
)

// Checker queries DNS-over-HTTPS providers for a domain's records and
// caches the results. A zero-configuration Checker is ready to use:
//
//	// Default configuration:
//	c := dnscheck.New()
//
//	// Custom configuration:
//	c := dnscheck.New(
//	    dnscheck.WithTimeout(15 * time.Second),
//	    dnscheck.WithMaxRetries(3),
//	)
type Checker struct {
	providers      []Provider
	endpoints      map[Provider]string
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	cache          Cache
	cacheDisabled  bool
	httpClient     *http.Client
	logger         *slog.Logger
}

// New creates a new [Checker] with the default provider configuration
// (Cloudflare, Google, Quad9 in fallback order). Use functional options
// to customize behavior.
func New(opts ...Option) *Checker {
	c := &Checker{
		providers:      make([]Provider, len(fallbackOrder)),
		endpoints:      make(map[Provider]string, len(defaultEndpoints)),
		timeout:        defaultTimeout,
		maxRetries:     defaultRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	copy(c.providers, fallbackOrder)
	for p, ep := range defaultEndpoints {
		c.endpoints[p] = ep
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cache == nil && !c.cacheDisabled {
		c.cache = newMemoryCache(cacheMaxEntries)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Query resolves a single record type for a domain.
//
// The domain and record type are validated first; invalid input fails
// immediately without any network call. Providers are tried in order
// (the optional preferred provider first, then the remaining providers
// in fallback order) and the first success wins. If every provider fails,
// the returned error wraps [ErrAllProvidersFailed] and the last
// underlying failure.
func (c *Checker) Query(ctx context.Context, domain string, rt RecordType, preferred ...Provider) (QueryResult, error) {
	domain = normalizeDomain(domain)

	if !IsValidDomain(domain) {
		qe := invalidDomainError(domain)
		return failedResult(domain, rt, qe), qe
	}
	if !rt.Supported() {
		qe := invalidTypeError(rt)
		return failedResult(domain, rt, qe), qe
	}
	if len(c.providers) == 0 {
		return QueryResult{}, ErrNoProviders
	}

	return c.queryProviders(ctx, domain, rt, c.trialOrder(preferred))
}

// queryProviders tries each provider in order, retrying transient
// failures per provider, and returns the first success.
func (c *Checker) queryProviders(ctx context.Context, domain string, rt RecordType, order []Provider) (QueryResult, error) {
	var lastErr error

	for _, p := range order {
		result, err := c.queryWithRetry(ctx, domain, rt, p)
		if err == nil {
			return result, nil
		}

		// Parent cancellation aborts the whole query.
		var qe *QueryError
		if !errors.As(err, &qe) {
			return QueryResult{}, err
		}

		c.logger.Debug("provider failed, falling back",
			"domain", domain, "type", string(rt), "provider", string(p), "error", err)
		lastErr = err
	}

	qe := allProvidersError(lastErr)
	return failedResult(domain, rt, qe), qe
}

// queryWithRetry sends a DoH query to one provider with retry logic.
//
// Transient failures (timeouts, network errors, 5xx responses, SERVFAIL)
// back off exponentially: baseDelay, 2×baseDelay, 4×baseDelay, ...
// Non-retryable failures propagate immediately so the caller can move on
// to the next provider without burning attempts.
func (c *Checker) queryWithRetry(ctx context.Context, domain string, rt RecordType, p Provider) (QueryResult, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := min(c.retryBaseDelay<<uint(attempt-1), 30*time.Second)

			select {
			case <-ctx.Done():
				return QueryResult{}, ctx.Err()
			case <-time.After(backoff):
			}

			c.logger.Debug("retrying query",
				"domain", domain, "type", string(rt), "provider", string(p), "attempt", attempt+1)
		}

		result, err := c.performQuery(ctx, domain, rt, p)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var qe *QueryError
		if !errors.As(err, &qe) || !qe.Retryable() {
			return QueryResult{}, err
		}
	}

	return QueryResult{}, lastErr
}

// QueryAll resolves all supported record types for a domain and returns
// them as one [RecordSet].
//
// The cache is consulted first (key: lowercased domain + ":ALL"); a hit
// is returned with FromCache set. On a miss the record types are queried
// concurrently in fixed batches of 3, each type getting the full
// retry-and-fallback treatment. Per-type failures are captured inline as
// failed QueryResults; the call errors only if every single type failed,
// so callers always get whatever partial signal is available. Partial
// and complete sets are cached alike.
func (c *Checker) QueryAll(ctx context.Context, domain string, preferred ...Provider) (*RecordSet, error) {
	domain = normalizeDomain(domain)
	if !IsValidDomain(domain) {
		return nil, invalidDomainError(domain)
	}
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}

	cacheKey := domain + ":ALL"
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			cp := *cached
			cp.FromCache = true
			return &cp, nil
		}
	}

	rs, err := c.fanOut(ctx, domain, supportedRecordTypes, c.trialOrder(preferred), queryAllBatchSize)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, rs)
	}
	return rs, nil
}

// QueryTypes resolves a caller-chosen subset of record types with the
// same partial-failure semantics as [Checker.QueryAll], but without
// batching or caching. Intended for small subsets (e.g. re-querying just
// the types that failed); use QueryAll for a full sweep.
func (c *Checker) QueryTypes(ctx context.Context, domain string, types []RecordType, preferred ...Provider) (*RecordSet, error) {
	domain = normalizeDomain(domain)
	if !IsValidDomain(domain) {
		return nil, invalidDomainError(domain)
	}
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}
	for _, rt := range types {
		if !rt.Supported() {
			return nil, invalidTypeError(rt)
		}
	}

	return c.fanOut(ctx, domain, types, c.trialOrder(preferred), len(types))
}

// fanOut queries the given record types concurrently, batchSize types
// in-flight at a time, collecting one QueryResult per type regardless of
// individual failures. Batch N+1 does not start until every query in
// batch N has settled.
func (c *Checker) fanOut(ctx context.Context, domain string, types []RecordType, order []Provider, batchSize int) (*RecordSet, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	rs := &RecordSet{
		Domain:    domain,
		Results:   make(map[RecordType]QueryResult, len(types)),
		Timestamp: time.Now(),
	}

	var (
		mu       sync.Mutex
		failures int
	)

	for start := 0; start < len(types); start += batchSize {
		batch := types[start:min(start+batchSize, len(types))]

		var wg sync.WaitGroup
		for _, rt := range batch {
			wg.Add(1)

			go func(rt RecordType) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						qe := panicError(r)
						mu.Lock()
						rs.Results[rt] = failedResult(domain, rt, qe)
						failures++
						mu.Unlock()
					}
				}()

				result, err := c.queryProviders(ctx, domain, rt, order)
				if err != nil {
					result = failedResult(domain, rt, asQueryError(err))
				}

				mu.Lock()
				rs.Results[rt] = result
				if result.Err != nil {
					failures++
				}
				mu.Unlock()
			}(rt)
		}
		wg.Wait()
	}

	if len(types) > 0 && failures == len(types) {
		return nil, ErrAllQueriesFailed
	}
	return rs, nil
}

// TestProviders probes every configured provider with a fixed test query
// and reports its latency or failure. Probes run concurrently.
func (c *Checker) TestProviders(ctx context.Context) []ProviderStatus {
	statuses := make([]ProviderStatus, len(c.providers))

	var wg sync.WaitGroup
	for i, p := range c.providers {
		wg.Add(1)

		go func(idx int, p Provider) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					statuses[idx] = ProviderStatus{Provider: p, Err: panicError(r)}
				}
			}()

			start := time.Now()
			_, err := c.performQuery(ctx, probeDomain, TypeA, p)
			latency := time.Since(start).Milliseconds()

			if err != nil {
				statuses[idx] = ProviderStatus{Provider: p, Err: err}
				return
			}
			statuses[idx] = ProviderStatus{Provider: p, Online: true, LatencyMs: latency}
		}(i, p)
	}
	wg.Wait()

	return statuses
}

// FastestProvider probes all providers and returns the one with the
// lowest latency. Fails with [ErrNoProviderAvailable] when none answer.
func (c *Checker) FastestProvider(ctx context.Context) (Provider, error) {
	var (
		fastest Provider
		best    int64
		found   bool
	)

	for _, status := range c.TestProviders(ctx) {
		if !status.Online {
			continue
		}
		if !found || status.LatencyMs < best {
			fastest = status.Provider
			best = status.LatencyMs
			found = true
		}
	}

	if !found {
		return "", ErrNoProviderAvailable
	}
	return fastest, nil
}

// Providers returns a copy of the configured provider fallback order.
func (c *Checker) Providers() []Provider {
	providers := make([]Provider, len(c.providers))
	copy(providers, c.providers)
	return providers
}

// CacheStats returns hit/miss counters for the underlying cache, or a
// zero snapshot when the cache does not track them (or is disabled).
func (c *Checker) CacheStats() CacheStats {
	if s, ok := c.cache.(CacheStatser); ok {
		return s.Stats()
	}
	return CacheStats{}
}

// FlushCache clears all cached record sets.
func (c *Checker) FlushCache() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

// trialOrder builds the provider order for one query: the preferred
// provider (if any, and known) first, then the remaining configured
// providers in fallback order, deduplicated.
func (c *Checker) trialOrder(preferred []Provider) []Provider {
	order := make([]Provider, 0, len(c.providers)+1)
	seen := make(map[Provider]struct{}, len(c.providers)+1)

	for _, p := range preferred {
		if _, ok := c.endpoints[p]; !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		order = append(order, p)
		seen[p] = struct{}{}
	}
	for _, p := range c.providers {
		if _, dup := seen[p]; dup {
			continue
		}
		order = append(order, p)
		seen[p] = struct{}{}
	}

	return order
}

// failedResult synthesizes the QueryResult for a failed query.
func failedResult(domain string, rt RecordType, qe *QueryError) QueryResult {
	return QueryResult{
		Domain:    domain,
		Type:      rt,
		Timestamp: time.Now(),
		Err:       qe,
	}
}
