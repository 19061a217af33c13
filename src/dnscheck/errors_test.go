// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"errors"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       *QueryError
		category  string
		retryable bool
	}{
		{"timeout", timeoutError(ProviderGoogle, 5*time.Second), "timeout", true},
		{"network", networkError(ProviderGoogle, errors.New("connection refused")), "network error", true},
		{"http 404", httpStatusError(ProviderCloudflare, 404), "provider API error (HTTP 404)", false},
		{"http 503", httpStatusError(ProviderCloudflare, 503), "provider API error (HTTP 503)", true},
		{"nxdomain", dnsStatusError(ProviderQuad9, dns.RcodeNameError), "domain not found (NXDOMAIN)", false},
		{"servfail", dnsStatusError(ProviderQuad9, dns.RcodeServerFailure), "server failure", true},
		{"refused", dnsStatusError(ProviderQuad9, dns.RcodeRefused), "query refused", false},
		{"format error", dnsStatusError(ProviderQuad9, dns.RcodeFormatError), "format error", false},
		{"not implemented", dnsStatusError(ProviderQuad9, dns.RcodeNotImplemented), "not implemented", false},
		{"invalid domain", invalidDomainError("!!"), "invalid input", false},
		{"all providers", allProvidersError(errors.New("boom")), "all providers failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category())
			assert.Equal(t, tt.retryable, tt.err.Retryable())

			// The package-level helpers agree with the methods.
			assert.Equal(t, tt.category, CategorizeError(tt.err))
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
		})
	}
}

func TestQueryErrorSentinelMatching(t *testing.T) {
	assert.ErrorIs(t, timeoutError(ProviderGoogle, time.Second), ErrQueryTimeout)
	assert.ErrorIs(t, invalidDomainError("x"), ErrInvalidDomain)
	assert.ErrorIs(t, invalidTypeError("LOC"), ErrUnsupportedRecordType)
	assert.ErrorIs(t, allProvidersError(nil), ErrAllProvidersFailed)
	assert.ErrorIs(t, panicError("boom"), ErrInternalPanic)
}

func TestCategorizeErrorForeignFallback(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"dial tcp: i/o timeout", "timeout"},
		{"some network problem", "network error"},
		{"nxdomain for host", "domain not found (NXDOMAIN)"},
		{"upstream server failure", "server failure"},
		{"query refused by policy", "query refused"},
		{"all providers exhausted", "all providers failed"},
		{"something else entirely", "something else entirely"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeError(errors.New(tt.msg)))
		})
	}
}

func TestIsRetryableErrorForeignFallback(t *testing.T) {
	assert.True(t, IsRetryableError(errors.New("request timeout")))
	assert.True(t, IsRetryableError(errors.New("network unreachable")))
	assert.True(t, IsRetryableError(errors.New("server failure from upstream")))
	assert.False(t, IsRetryableError(errors.New("nxdomain")))
	assert.False(t, IsRetryableError(errors.New("context canceled")))
	assert.False(t, IsRetryableError(nil))
}

func TestAsQueryError(t *testing.T) {
	qe := timeoutError(ProviderGoogle, time.Second)
	assert.Same(t, qe, asQueryError(qe))

	foreign := errors.New("plain")
	wrapped := asQueryError(foreign)
	require.NotNil(t, wrapped)
	assert.Equal(t, KindNetwork, wrapped.Kind)
	assert.ErrorIs(t, wrapped, foreign)
}
