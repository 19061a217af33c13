// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package dnscheck analyzes a domain's DNS configuration.
//
// It queries public DNS-over-HTTPS providers (Cloudflare, Google, Quad9)
// for all standard record types, then runs a rule-based detector over
// the results to surface configuration errors, security gaps, and
// propagation concerns.
//
// # Features
//
//   - Multi-provider DoH querying: automatic fallback between
//     Cloudflare, Google, and Quad9, with an optional per-call
//     preferred provider
//   - Retry with exponential backoff: transient failures (timeouts,
//     network errors, 5xx, SERVFAIL) are retried; permanent failures
//     (bad input, 4xx, NXDOMAIN) are not
//   - Bounded in-memory caching: record sets are cached with a TTL
//     derived from the records themselves, capped at 50 entries
//   - Typed errors: every failure carries a classification
//     ([QueryError]) with a stable category string and retryable flag,
//     plus sentinel errors for [errors.Is] matching
//   - Configuration analysis: missing records, TTL bounds, CNAME
//     cycles, MX validity, and SPF/DMARC/DKIM posture, ranked
//     critical/warning/info
//   - Provider health checks: latency probes and fastest-provider
//     selection
//   - Functional options for checker construction
//   - Context-aware: timeouts and cancellation via [context.Context]
//
// # Quick Start
//
//	c := dnscheck.New()
//
//	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
//	defer cancel()
//
//	rs, err := c.QueryAll(ctx, "example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report := dnscheck.AnalyzeConfiguration(rs)
//	fmt.Printf("%s: %d critical, %d warnings, %d notes\n",
//	    report.Domain, report.Summary.Critical,
//	    report.Summary.Warnings, report.Summary.Info)
//
// # Partial failure
//
// [Checker.QueryAll] fails only when every record type query failed.
// Otherwise it always returns one [QueryResult] per record type, each
// either populated or carrying a classified error, so callers always
// get whatever partial signal is available and can offer a retry scoped
// to just the failed types (see [Checker.QueryTypes]).
//
// # Analysis without querying
//
// The analysis functions ([AnalyzeConfiguration],
// [AnalyzeSecurityConfiguration]) are pure functions over a [RecordSet]:
// no network access, no mutation of their input. They can be fed record
// sets from any source.
package dnscheck
