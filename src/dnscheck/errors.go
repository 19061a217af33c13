// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Sentinel errors for the dnscheck package.
var (
	// ErrInvalidDomain is returned when a domain name fails validation.
	ErrInvalidDomain = errors.New("dnscheck: invalid domain name")

	// ErrUnsupportedRecordType is returned for record types outside the
	// supported set.
	ErrUnsupportedRecordType = errors.New("dnscheck: unsupported record type")

	// ErrNoProviders is returned when no DoH providers are configured.
	ErrNoProviders = errors.New("dnscheck: no providers configured")

	// ErrQueryTimeout is returned when a single DoH query exceeds the
	// configured per-query timeout.
	ErrQueryTimeout = errors.New("dnscheck: query timed out")

	// ErrAllProvidersFailed is returned when every configured provider
	// failed to answer a query.
	ErrAllProvidersFailed = errors.New("dnscheck: all providers failed")

	// ErrAllQueriesFailed is returned by the aggregate query methods
	// when every requested record type failed.
	ErrAllQueriesFailed = errors.New("dnscheck: all record type queries failed")

	// ErrNoProviderAvailable is returned by [Checker.FastestProvider]
	// when no provider answers the probe.
	ErrNoProviderAvailable = errors.New("dnscheck: no provider available")

	// ErrInternalPanic is returned when an internal panic is recovered
	// during a concurrent query.
	ErrInternalPanic = errors.New("dnscheck: internal panic recovered")
)

// ErrorKind classifies a query failure at the point it occurs, so callers
// never have to pattern-match error text to decide on retries.
type ErrorKind int

const (
	// KindInvalidInput covers bad domains and unsupported record types.
	// Never retried, never fanned out.
	KindInvalidInput ErrorKind = iota

	// KindTimeout is a per-query timeout expiry.
	KindTimeout

	// KindNetwork is a transport-level failure reaching the provider.
	KindNetwork

	// KindHTTPStatus is a non-2xx HTTP response from the provider.
	// 4xx responses are not retryable; 5xx responses are.
	KindHTTPStatus

	// KindDNSStatus is a non-zero DNS response code (NXDOMAIN, SERVFAIL,
	// REFUSED, ...). Terminal for the provider; only SERVFAIL is retried.
	KindDNSStatus

	// KindAllProvidersFailed means every provider/attempt combination
	// was exhausted.
	KindAllProvidersFailed

	// KindInternal is a recovered panic.
	KindInternal
)

// QueryError is a classified DNS query failure. It carries the failure
// kind, the provider involved, and the relevant status code, and wraps a
// sentinel error so callers can match with [errors.Is].
type QueryError struct {
	// Kind is the failure classification.
	Kind ErrorKind

	// Provider is the provider the failure occurred against.
	// Empty for input validation failures and aggregate failures.
	Provider Provider

	// HTTPStatus is the HTTP status code for [KindHTTPStatus] failures.
	HTTPStatus int

	// Rcode is the DNS response code for [KindDNSStatus] failures.
	Rcode int

	err error
}

func (e *QueryError) Error() string { return e.err.Error() }

func (e *QueryError) Unwrap() error { return e.err }

// Retryable reports whether retrying the same provider could plausibly
// succeed: timeouts, network errors, 5xx HTTP responses, and SERVFAIL.
func (e *QueryError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork, KindAllProvidersFailed:
		return true
	case KindHTTPStatus:
		return e.HTTPStatus >= 500
	case KindDNSStatus:
		return e.Rcode == dns.RcodeServerFailure
	default:
		return false
	}
}

// Category returns the stable, user-facing category string for the failure.
func (e *QueryError) Category() string {
	switch e.Kind {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network error"
	case KindHTTPStatus:
		return fmt.Sprintf("provider API error (HTTP %d)", e.HTTPStatus)
	case KindDNSStatus:
		switch e.Rcode {
		case dns.RcodeFormatError:
			return "format error"
		case dns.RcodeServerFailure:
			return "server failure"
		case dns.RcodeNameError:
			return "domain not found (NXDOMAIN)"
		case dns.RcodeNotImplemented:
			return "not implemented"
		case dns.RcodeRefused:
			return "query refused"
		default:
			if name, ok := dns.RcodeToString[e.Rcode]; ok {
				return fmt.Sprintf("DNS error (%s)", name)
			}
			return fmt.Sprintf("DNS error (rcode %d)", e.Rcode)
		}
	case KindAllProvidersFailed:
		return "all providers failed"
	case KindInvalidInput:
		return "invalid input"
	default:
		return e.err.Error()
	}
}

// Error constructors. Each wraps the matching sentinel so both
// errors.Is matching and kind-based classification work.

func invalidDomainError(domain string) *QueryError {
	return &QueryError{
		Kind: KindInvalidInput,
		err:  fmt.Errorf("%w: %q", ErrInvalidDomain, domain),
	}
}

func invalidTypeError(t RecordType) *QueryError {
	return &QueryError{
		Kind: KindInvalidInput,
		err:  fmt.Errorf("%w: %q", ErrUnsupportedRecordType, string(t)),
	}
}

func timeoutError(p Provider, d time.Duration) *QueryError {
	return &QueryError{
		Kind:     KindTimeout,
		Provider: p,
		err:      fmt.Errorf("%w: no response from %s after %v", ErrQueryTimeout, p, d),
	}
}

func networkError(p Provider, cause error) *QueryError {
	return &QueryError{
		Kind:     KindNetwork,
		Provider: p,
		err:      fmt.Errorf("dnscheck: network error querying %s: %w", p, cause),
	}
}

func httpStatusError(p Provider, status int) *QueryError {
	return &QueryError{
		Kind:       KindHTTPStatus,
		Provider:   p,
		HTTPStatus: status,
		err:        fmt.Errorf("dnscheck: %s API request failed with HTTP %d", p, status),
	}
}

func dnsStatusError(p Provider, rcode int) *QueryError {
	e := &QueryError{Kind: KindDNSStatus, Provider: p, Rcode: rcode}
	e.err = fmt.Errorf("dnscheck: %s answered with %s", p, e.Category())
	return e
}

func allProvidersError(cause error) *QueryError {
	if cause == nil {
		return &QueryError{Kind: KindAllProvidersFailed, err: ErrAllProvidersFailed}
	}
	return &QueryError{
		Kind: KindAllProvidersFailed,
		err:  fmt.Errorf("%w: last error: %w", ErrAllProvidersFailed, cause),
	}
}

func panicError(v any) *QueryError {
	return &QueryError{
		Kind: KindInternal,
		err:  fmt.Errorf("%w: %v", ErrInternalPanic, v),
	}
}

// asQueryError converts err to a *QueryError, wrapping foreign errors as
// network failures so every failed QueryResult carries a classified error.
func asQueryError(err error) *QueryError {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}
	return &QueryError{Kind: KindNetwork, err: err}
}

// CategorizeError maps a query failure to its stable user-facing category
// string. Classified errors report their own category; for foreign errors
// the historical substring matching is kept as a fallback, and unmatched
// messages pass through unchanged.
func CategorizeError(err error) string {
	if err == nil {
		return ""
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Category()
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return "timeout"
	case strings.Contains(msg, "network"):
		return "network error"
	case strings.Contains(msg, "nxdomain"), strings.Contains(msg, "name error"):
		return "domain not found (NXDOMAIN)"
	case strings.Contains(msg, "server failure"), strings.Contains(msg, "servfail"):
		return "server failure"
	case strings.Contains(msg, "refused"):
		return "query refused"
	case strings.Contains(msg, "all providers"):
		return "all providers failed"
	}
	return err.Error()
}

// IsRetryableError reports whether a failed query is worth retrying:
// timeouts, network errors, server failures, and aggregate provider
// failures qualify.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Retryable()
	}

	switch CategorizeError(err) {
	case "timeout", "network error", "server failure", "all providers failed":
		return true
	}
	return false
}
