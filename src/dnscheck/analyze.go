// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity ranks an [Issue].
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IssueType categorizes an [Issue].
type IssueType string

const (
	IssueMissingRecord      IssueType = "missing_record"
	IssueTTL                IssueType = "ttl"
	IssueCircularReference  IssueType = "circular_reference"
	IssueInvalidMX          IssueType = "invalid_mx"
	IssueConfigurationError IssueType = "configuration_error"
	IssueSecurity           IssueType = "security"
)

// Issue is a single finding produced by a rule evaluator.
type Issue struct {
	// Type categorizes the finding.
	Type IssueType

	// Severity is critical, warning, or info.
	Severity Severity

	// Message is a short human-readable summary.
	Message string

	// Description explains the finding in more detail.
	Description string

	// Recommendation suggests how to address the finding.
	Recommendation string

	// AffectedRecords lists the record types involved.
	AffectedRecords []RecordType

	// RecordName is the owner name of the offending record, when the
	// finding concerns one specific record.
	RecordName string

	// CurrentValue is the offending value (TTL, record data, ...),
	// when applicable.
	CurrentValue string
}

// Summary holds the per-severity issue counts of a report.
type Summary struct {
	Total    int
	Critical int
	Warnings int
	Info     int
}

// AnalysisReport is the categorized result of analyzing a domain's DNS
// configuration. Issues are partitioned by severity.
type AnalysisReport struct {
	Domain    string
	Timestamp time.Time

	Errors   []Issue // critical
	Warnings []Issue
	Info     []Issue

	Summary Summary
}

// TTL thresholds for the bounds check, in seconds. Fixed across record
// types.
const (
	ttlVeryLow  = 60
	ttlLow      = 300
	ttlVeryHigh = 604800 // one week
)

// AnalyzeConfiguration inspects a domain's record set for configuration
// errors, security gaps, and propagation concerns. It runs five
// independent rule evaluators (missing records, TTL bounds, CNAME
// cycles, MX validity, email security posture) and partitions their
// combined findings by severity.
//
// The function is pure: it performs no network access and does not
// mutate its input, so it is safe to call from any goroutine.
func AnalyzeConfiguration(rs *RecordSet) *AnalysisReport {
	report := &AnalysisReport{
		Timestamp: time.Now(),
	}
	if rs != nil {
		report.Domain = rs.Domain
	}

	var issues []Issue
	issues = append(issues, checkMissingRecords(rs)...)
	issues = append(issues, checkTTLBounds(rs)...)
	issues = append(issues, checkCNAMECycles(rs)...)
	issues = append(issues, checkMXRecords(rs)...)
	issues = append(issues, checkEmailSecurity(rs)...)

	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			report.Errors = append(report.Errors, issue)
			report.Summary.Critical++
		case SeverityWarning:
			report.Warnings = append(report.Warnings, issue)
			report.Summary.Warnings++
		default:
			report.Info = append(report.Info, issue)
			report.Summary.Info++
		}
		report.Summary.Total++
	}

	return report
}

// checkMissingRecords flags absent record types that a working domain is
// expected to have. Missing both address families is critical; missing
// just one is a warning (A) or informational (AAAA). Missing MX is a
// warning, missing NS is critical.
func checkMissingRecords(rs *RecordSet) []Issue {
	var issues []Issue

	hasA := len(rs.Records(TypeA)) > 0
	hasAAAA := len(rs.Records(TypeAAAA)) > 0

	switch {
	case !hasA && !hasAAAA:
		issues = append(issues, Issue{
			Type:            IssueMissingRecord,
			Severity:        SeverityCritical,
			Message:         "No A or AAAA records found",
			Description:     "The domain has no IPv4 or IPv6 address records, so it cannot be reached by name.",
			Recommendation:  "Add at least one A (IPv4) or AAAA (IPv6) record pointing at your server.",
			AffectedRecords: []RecordType{TypeA, TypeAAAA},
		})
	case !hasA:
		issues = append(issues, Issue{
			Type:            IssueMissingRecord,
			Severity:        SeverityWarning,
			Message:         "No A records found",
			Description:     "The domain resolves only over IPv6. Clients without IPv6 connectivity cannot reach it.",
			Recommendation:  "Add an A record so IPv4-only clients can connect.",
			AffectedRecords: []RecordType{TypeA},
		})
	case !hasAAAA:
		issues = append(issues, Issue{
			Type:            IssueMissingRecord,
			Severity:        SeverityInfo,
			Message:         "No AAAA records found",
			Description:     "The domain has no IPv6 address records.",
			Recommendation:  "Consider adding AAAA records for IPv6 reachability.",
			AffectedRecords: []RecordType{TypeAAAA},
		})
	}

	if len(rs.Records(TypeMX)) == 0 {
		issues = append(issues, Issue{
			Type:            IssueMissingRecord,
			Severity:        SeverityWarning,
			Message:         "No MX records found",
			Description:     "The domain cannot receive email. Some senders fall back to the A record, but delivery is unreliable.",
			Recommendation:  "Add MX records if the domain should receive email.",
			AffectedRecords: []RecordType{TypeMX},
		})
	}

	if len(rs.Records(TypeNS)) == 0 {
		issues = append(issues, Issue{
			Type:            IssueMissingRecord,
			Severity:        SeverityCritical,
			Message:         "No NS records found",
			Description:     "No nameserver records were returned for the domain. Resolution will fail once cached answers expire.",
			Recommendation:  "Verify the domain's delegation and nameserver configuration at the registrar.",
			AffectedRecords: []RecordType{TypeNS},
		})
	}

	return issues
}

// checkTTLBounds flags records with unusually low or high TTLs.
// TTLs under 60s cause excessive query load (warning); under 300s is
// worth a note, as is anything over a week.
func checkTTLBounds(rs *RecordSet) []Issue {
	var issues []Issue

	for _, rt := range supportedRecordTypes {
		for _, rec := range rs.Records(rt) {
			ttl := int(rec.TTL)
			var issue Issue

			switch {
			case ttl < ttlVeryLow:
				issue = Issue{
					Severity:       SeverityWarning,
					Message:        fmt.Sprintf("Very low TTL on %s record", rt),
					Description:    fmt.Sprintf("TTL of %d seconds causes resolvers to re-query constantly, adding load and latency.", ttl),
					Recommendation: "Raise the TTL to at least 300 seconds unless a migration is in progress.",
				}
			case ttl < ttlLow:
				issue = Issue{
					Severity:       SeverityInfo,
					Message:        fmt.Sprintf("Low TTL on %s record", rt),
					Description:    fmt.Sprintf("TTL of %d seconds is on the low side for steady-state operation.", ttl),
					Recommendation: "Consider a TTL of 3600 seconds or more once the record is stable.",
				}
			case ttl > ttlVeryHigh:
				issue = Issue{
					Severity:       SeverityInfo,
					Message:        fmt.Sprintf("Very high TTL on %s record", rt),
					Description:    fmt.Sprintf("TTL of %d seconds (more than a week) makes future changes very slow to propagate.", ttl),
					Recommendation: "Consider a TTL of 86400 seconds or less to keep changes manageable.",
				}
			default:
				continue
			}

			issue.Type = IssueTTL
			issue.AffectedRecords = []RecordType{rt}
			issue.RecordName = rec.Name
			issue.CurrentValue = strconv.Itoa(ttl)
			issues = append(issues, issue)
		}
	}

	return issues
}

// checkCNAMECycles detects self-referencing and circular CNAME chains.
//
// Each CNAME record starts its own walk with a fresh visited set,
// following targets through the same record set for at most 10 hops. A
// chain that terminates (target has no CNAME here) is fine; revisiting a
// name is a cycle.
func checkCNAMECycles(rs *RecordSet) []Issue {
	cnames := rs.Records(TypeCNAME)
	if len(cnames) == 0 {
		return nil
	}

	const maxDepth = 10

	targets := make(map[string]string, len(cnames))
	for _, rec := range cnames {
		targets[cnameKey(rec.Name)] = cnameKey(rec.Data)
	}

	var issues []Issue
	for _, rec := range cnames {
		name := cnameKey(rec.Name)
		target := cnameKey(rec.Data)

		if name == target {
			issues = append(issues, Issue{
				Type:            IssueCircularReference,
				Severity:        SeverityCritical,
				Message:         "CNAME record points to itself",
				Description:     fmt.Sprintf("%s is an alias for itself and can never resolve.", rec.Name),
				Recommendation:  "Point the CNAME at the real canonical name, or replace it with address records.",
				AffectedRecords: []RecordType{TypeCNAME},
				RecordName:      rec.Name,
				CurrentValue:    rec.Data,
			})
			continue
		}

		visited := map[string]bool{name: true}
		current := target
		for depth := 0; depth < maxDepth; depth++ {
			if visited[current] {
				issues = append(issues, Issue{
					Type:            IssueCircularReference,
					Severity:        SeverityCritical,
					Message:         "Circular CNAME chain detected",
					Description:     fmt.Sprintf("Following %s leads back to %s, so the alias chain never resolves.", rec.Name, current),
					Recommendation:  "Break the loop by pointing one of the aliases at a real canonical name.",
					AffectedRecords: []RecordType{TypeCNAME},
					RecordName:      rec.Name,
					CurrentValue:    rec.Data,
				})
				break
			}
			visited[current] = true

			next, ok := targets[current]
			if !ok {
				break // chain terminates outside this record set
			}
			current = next
		}
	}

	return issues
}

// cnameKey normalizes a name for chain comparison: lowercased, without
// the trailing dot providers append.
func cnameKey(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".")
}

// checkMXRecords validates MX record data: each must be exactly a
// numeric priority (0-65535) followed by a mail host. Duplicate
// priorities work but make failover ordering ambiguous, so they are
// flagged as warnings.
func checkMXRecords(rs *RecordSet) []Issue {
	mxRecords := rs.Records(TypeMX)
	if len(mxRecords) == 0 {
		return nil
	}

	var issues []Issue
	byPriority := make(map[int][]string)

	for _, rec := range mxRecords {
		fields := strings.Fields(rec.Data)

		malformed := len(fields) != 2
		priority := -1
		if !malformed {
			n, err := strconv.Atoi(fields[0])
			if err != nil || n < 0 || n > 65535 {
				malformed = true
			} else {
				priority = n
			}
		}

		if malformed {
			issues = append(issues, Issue{
				Type:            IssueInvalidMX,
				Severity:        SeverityCritical,
				Message:         "Malformed MX record",
				Description:     fmt.Sprintf("MX data %q is not a priority (0-65535) followed by a mail host.", rec.Data),
				Recommendation:  "Fix the MX record to the form \"10 mail.example.com\".",
				AffectedRecords: []RecordType{TypeMX},
				RecordName:      rec.Name,
				CurrentValue:    rec.Data,
			})
			continue
		}

		byPriority[priority] = append(byPriority[priority], fields[1])
	}

	for priority, hosts := range byPriority {
		if len(hosts) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Type:            IssueConfigurationError,
			Severity:        SeverityWarning,
			Message:         "Duplicate MX priority",
			Description:     fmt.Sprintf("%d MX records share priority %d (%s). Mail servers will pick between them arbitrarily.", len(hosts), priority, strings.Join(hosts, ", ")),
			Recommendation:  "Give each MX record a distinct priority to make failover order explicit.",
			AffectedRecords: []RecordType{TypeMX},
			CurrentValue:    strconv.Itoa(priority),
		})
	}

	return issues
}
