// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import "time"

// DNSRecord is a single normalized resource record from a DoH response.
type DNSRecord struct {
	// Name is the record owner name as returned by the provider.
	Name string

	// Type is the record type. For authority/additional records this
	// may fall outside the supported query set (e.g. "RRSIG").
	Type RecordType

	// TTL is the record's time-to-live in seconds.
	TTL uint32

	// Data is the record data in presentation format
	// (e.g. "93.184.216.34", "10 mail.example.com.").
	Data string
}

// QueryResult is the outcome of querying one record type for one domain.
//
// A failed query carries an empty Records slice and a non-nil Err.
// A successful query may legitimately return zero records (NODATA).
type QueryResult struct {
	// Domain is the normalized domain name that was queried.
	Domain string

	// Type is the record type that was requested.
	Type RecordType

	// Records holds the answer records matching the requested type.
	// Ancillary types a provider mixes into the answer section are
	// excluded here.
	Records []DNSRecord

	// Authority and Additional preserve the corresponding response
	// sections, including record types outside the supported set.
	Authority  []DNSRecord
	Additional []DNSRecord

	// Provider is the provider that produced the answer.
	// Empty when no provider succeeded.
	Provider Provider

	// Timestamp is when the result was produced.
	Timestamp time.Time

	// Err is non-nil if the query failed. It is always a [*QueryError],
	// so callers can recover the category and retryable flag.
	Err *QueryError
}

// Failed reports whether the query failed.
func (r QueryResult) Failed() bool {
	return r.Err != nil
}

// Source returns the origin label of the result: the provider name on
// success, or "failed" when no provider produced an answer.
func (r QueryResult) Source() string {
	if r.Err != nil {
		return "failed"
	}
	return string(r.Provider)
}

// RecordSet is the full per-domain collection of query results across
// record types. It is the unit cached by the checker and the input to
// [AnalyzeConfiguration].
type RecordSet struct {
	// Domain is the normalized domain name.
	Domain string

	// Results maps each queried record type to its result. Entries are
	// present for every requested type, populated or failed.
	Results map[RecordType]QueryResult

	// FromCache is true when the set was served from the cache.
	FromCache bool

	// Timestamp is when the set was assembled.
	Timestamp time.Time
}

// Records returns the answer records for a record type, or nil when the
// type was not queried or its query failed.
func (rs *RecordSet) Records(t RecordType) []DNSRecord {
	if rs == nil {
		return nil
	}
	res, ok := rs.Results[t]
	if !ok || res.Err != nil {
		return nil
	}
	return res.Records
}

// ProviderStatus is the health of a single DoH provider as reported by
// [Checker.TestProviders].
type ProviderStatus struct {
	// Provider is the provider that was probed.
	Provider Provider

	// Online indicates whether the provider answered the probe.
	Online bool

	// LatencyMs is the probe round-trip time in milliseconds.
	// Only meaningful when Online is true.
	LatencyMs int64

	// Err is non-nil if the probe failed.
	Err error
}

// CacheStats is a snapshot of cache effectiveness counters.
type CacheStats struct {
	// Entries is the current number of cached record sets.
	Entries int

	// Hits and Misses count cache lookups since the cache was created.
	Hits   uint64
	Misses uint64

	// HitRate is Hits / (Hits + Misses), or 0 when no lookups happened.
	HitRate float64
}
