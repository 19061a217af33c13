// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"fmt"
	"strings"
	"time"
)

// SPF lookup-generating mechanisms. RFC 7208 caps the total number of
// DNS lookups an SPF evaluation may trigger at 10.
var spfLookupMechanisms = []string{"include:", "a:", "mx:", "exists:", "redirect="}

const spfMaxLookups = 10

// DKIM public keys shorter than this are treated as weak.
const dkimMinKeyLength = 100

// checkEmailSecurity evaluates the domain's email authentication posture
// from its main-domain TXT records: SPF presence and syntax, DMARC
// (which properly lives at _dmarc.<domain>; a main-domain record is
// validated if present, otherwise an informational pointer is emitted),
// and DKIM (selector records live at <selector>._domainkey.<domain>;
// main-domain matches are validated when found).
func checkEmailSecurity(rs *RecordSet) []Issue {
	txtRecords := rs.Records(TypeTXT)
	if len(txtRecords) == 0 {
		return []Issue{{
			Type:            IssueSecurity,
			Severity:        SeverityWarning,
			Message:         "No TXT records found",
			Description:     "The domain has no TXT records at all, so no SPF, DMARC, or other policy records are published.",
			Recommendation:  "Publish at least an SPF record to protect the domain against email spoofing.",
			AffectedRecords: []RecordType{TypeTXT},
		}}
	}

	var issues []Issue

	spfOK := false
	spfIssues, spfFound := checkSPF(rs.Domain, txtRecords)
	issues = append(issues, spfIssues...)
	if spfFound && !hasCritical(spfIssues) {
		spfOK = true
	}

	dmarcIssues, dmarcFound := checkDMARC(rs.Domain, txtRecords)
	issues = append(issues, dmarcIssues...)
	dmarcOK := dmarcFound && !hasCritical(dmarcIssues)

	dkimIssues, dkimFound := checkDKIM(rs.Domain, txtRecords)
	issues = append(issues, dkimIssues...)
	dkimOK := dkimFound && !hasCritical(dkimIssues)

	if spfOK && dmarcOK && dkimOK {
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityInfo,
			Message:         "Email security fully configured",
			Description:     "SPF, DMARC, and DKIM records were all detected for this domain.",
			Recommendation:  "Keep the records current and review reporting addresses periodically.",
			AffectedRecords: []RecordType{TypeTXT},
		})
	}

	return issues
}

// checkSPF validates SPF posture: exactly one SPF record, carrying the
// v=spf1 version token, a terminating "all" mechanism, and no more than
// 10 lookup-generating mechanisms.
func checkSPF(domain string, txtRecords []DNSRecord) (issues []Issue, found bool) {
	var spfValues []string
	for _, rec := range txtRecords {
		if strings.Contains(strings.ToLower(rec.Data), "v=spf1") {
			spfValues = append(spfValues, rec.Data)
		}
	}

	if len(spfValues) == 0 {
		return []Issue{{
			Type:            IssueSecurity,
			Severity:        SeverityWarning,
			Message:         "No SPF record found",
			Description:     "Without SPF, receiving mail servers cannot verify which hosts may send email for this domain.",
			Recommendation:  fmt.Sprintf("Publish a TXT record such as \"v=spf1 mx -all\" for %s.", domain),
			AffectedRecords: []RecordType{TypeTXT},
		}}, false
	}

	found = true

	// Multiple SPF records make evaluation undefined (RFC 7208 §3.2).
	if len(spfValues) > 1 {
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityCritical,
			Message:         "Multiple SPF records found",
			Description:     fmt.Sprintf("%d TXT records contain v=spf1. Receivers treat this as a permanent SPF error.", len(spfValues)),
			Recommendation:  "Merge all SPF mechanisms into a single TXT record.",
			AffectedRecords: []RecordType{TypeTXT},
		})
	}

	for _, value := range spfValues {
		issues = append(issues, validateSPFRecord(value)...)
	}

	return issues, found
}

// validateSPFRecord checks one SPF record string for the version token,
// a terminating all mechanism, and the lookup mechanism budget.
func validateSPFRecord(value string) []Issue {
	var issues []Issue
	lower := strings.ToLower(value)

	fields := strings.Fields(lower)
	if len(fields) == 0 || fields[0] != "v=spf1" {
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityWarning,
			Message:         "SPF record does not start with v=spf1",
			Description:     "The version token must be the first term of the record; receivers ignore records that do not start with it.",
			Recommendation:  "Move v=spf1 to the front of the record.",
			AffectedRecords: []RecordType{TypeTXT},
			CurrentValue:    value,
		})
	}

	hasTerminator := false
	for _, field := range fields {
		switch field {
		case "all", "+all", "-all", "~all", "?all":
			hasTerminator = true
		}
	}
	if !hasTerminator {
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityWarning,
			Message:         "SPF record has no terminating all mechanism",
			Description:     "Without a final all mechanism the record does not state a default policy, and unauthorized senders get a neutral result.",
			Recommendation:  "End the record with -all (reject) or ~all (soft fail).",
			AffectedRecords: []RecordType{TypeTXT},
			CurrentValue:    value,
		})
	}

	lookups := 0
	for _, mech := range spfLookupMechanisms {
		lookups += strings.Count(lower, mech)
	}
	if lookups > spfMaxLookups {
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityCritical,
			Message:         "SPF record exceeds the 10 DNS lookup limit",
			Description:     fmt.Sprintf("The record triggers %d DNS lookups; RFC 7208 allows at most %d, beyond which receivers return a permanent error.", lookups, spfMaxLookups),
			Recommendation:  "Flatten include chains or drop unused mechanisms to get under the limit.",
			AffectedRecords: []RecordType{TypeTXT},
			CurrentValue:    value,
		})
	}

	return issues
}

// checkDMARC handles the DMARC posture. DMARC records live at
// _dmarc.<domain>, which this checker does not query, so absence from
// the main-domain TXT set only produces an informational pointer. A
// DMARC-looking record found on the main domain is validated in place.
func checkDMARC(domain string, txtRecords []DNSRecord) (issues []Issue, found bool) {
	var dmarcValue string
	for _, rec := range txtRecords {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(rec.Data)), "v=dmarc1") {
			dmarcValue = rec.Data
			found = true
			break
		}
	}

	if !found {
		return []Issue{{
			Type:            IssueSecurity,
			Severity:        SeverityInfo,
			Message:         "No DMARC record on the main domain",
			Description:     fmt.Sprintf("DMARC records are published at _dmarc.%s, which this check does not query. This is a note, not a failure.", domain),
			Recommendation:  fmt.Sprintf("Verify that _dmarc.%s publishes a record such as \"v=DMARC1; p=quarantine; rua=mailto:dmarc@%s\".", domain, domain),
			AffectedRecords: []RecordType{TypeTXT},
		}}, false
	}

	tags := parseTagValue(dmarcValue)

	policy, hasPolicy := tags["p"]
	switch {
	case !hasPolicy:
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityCritical,
			Message:         "DMARC record has no policy",
			Description:     "The p= tag is required; without it the record is ignored by receivers.",
			Recommendation:  "Add p=none, p=quarantine, or p=reject to the record.",
			AffectedRecords: []RecordType{TypeTXT},
			CurrentValue:    dmarcValue,
		})
	case policy != "none" && policy != "quarantine" && policy != "reject":
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityCritical,
			Message:         "DMARC record has an invalid policy",
			Description:     fmt.Sprintf("Policy %q is not one of none, quarantine, or reject.", policy),
			Recommendation:  "Set p= to none, quarantine, or reject.",
			AffectedRecords: []RecordType{TypeTXT},
			CurrentValue:    dmarcValue,
		})
	case policy == "none":
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityInfo,
			Message:         "DMARC policy is none",
			Description:     "p=none only monitors; spoofed mail is still delivered.",
			Recommendation:  "Move to p=quarantine or p=reject once reports look clean.",
			AffectedRecords: []RecordType{TypeTXT},
			CurrentValue:    dmarcValue,
		})
	}

	if tags["rua"] == "" && tags["ruf"] == "" {
		issues = append(issues, Issue{
			Type:            IssueSecurity,
			Severity:        SeverityWarning,
			Message:         "DMARC record has no reporting address",
			Description:     "Without rua or ruf you receive no feedback about authentication failures or spoofing attempts.",
			Recommendation:  fmt.Sprintf("Add rua=mailto:dmarc@%s to collect aggregate reports.", domain),
			AffectedRecords: []RecordType{TypeTXT},
			CurrentValue:    dmarcValue,
		})
	}

	return issues, found
}

// checkDKIM looks for DKIM key records in the main-domain TXT set,
// recognized by a _domainkey owner name or a v=DKIM1 version tag. Real
// selector records live at <selector>._domainkey.<domain>, so absence
// here is only an informational note.
func checkDKIM(domain string, txtRecords []DNSRecord) (issues []Issue, found bool) {
	var dkimRecords []DNSRecord
	for _, rec := range txtRecords {
		if strings.Contains(strings.ToLower(rec.Name), "_domainkey") ||
			strings.Contains(strings.ToLower(rec.Data), "v=dkim1") {
			dkimRecords = append(dkimRecords, rec)
		}
	}

	if len(dkimRecords) == 0 {
		return []Issue{{
			Type:            IssueSecurity,
			Severity:        SeverityInfo,
			Message:         "No DKIM record on the main domain",
			Description:     fmt.Sprintf("DKIM selector records are published at <selector>._domainkey.%s and are not visible from the main domain. This is a note, not a failure.", domain),
			Recommendation:  "Verify your mail provider's DKIM selectors resolve and carry valid keys.",
			AffectedRecords: []RecordType{TypeTXT},
		}}, false
	}

	found = true
	for _, rec := range dkimRecords {
		tags := parseTagValue(rec.Data)

		if !strings.EqualFold(tags["v"], "dkim1") {
			issues = append(issues, Issue{
				Type:            IssueSecurity,
				Severity:        SeverityWarning,
				Message:         "DKIM record is missing its version tag",
				Description:     "The v=DKIM1 tag identifies the record; some verifiers reject records without it.",
				Recommendation:  "Add v=DKIM1 as the first tag of the record.",
				AffectedRecords: []RecordType{TypeTXT},
				RecordName:      rec.Name,
				CurrentValue:    rec.Data,
			})
		}

		key := tags["p"]
		switch {
		case key == "":
			issues = append(issues, Issue{
				Type:            IssueSecurity,
				Severity:        SeverityWarning,
				Message:         "DKIM record has no public key",
				Description:     "The p= tag is empty or missing. An empty key means the selector is revoked.",
				Recommendation:  "Publish the selector's public key in the p= tag.",
				AffectedRecords: []RecordType{TypeTXT},
				RecordName:      rec.Name,
			})
		case len(key) < dkimMinKeyLength:
			issues = append(issues, Issue{
				Type:            IssueSecurity,
				Severity:        SeverityWarning,
				Message:         "DKIM public key looks too short",
				Description:     fmt.Sprintf("The p= value is %d characters; healthy RSA keys encode to well over %d.", len(key), dkimMinKeyLength),
				Recommendation:  "Use at least a 1024-bit (preferably 2048-bit) DKIM key.",
				AffectedRecords: []RecordType{TypeTXT},
				RecordName:      rec.Name,
			})
		}
	}

	return issues, found
}

// parseTagValue parses a DKIM/DMARC style "k=v; k2=v2" record into a tag
// map with lowercased keys. Malformed segments are skipped.
func parseTagValue(value string) map[string]string {
	tags := make(map[string]string)
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		tags[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return tags
}

func hasCritical(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Score weights for AnalyzeSecurityConfiguration.
const (
	scoreSPF   = 40
	scoreDMARC = 40
	scoreDKIM  = 20
)

// MechanismStatus describes one email-auth mechanism in a
// [SecurityReport].
type MechanismStatus struct {
	// Configured is true when the mechanism was detected.
	Configured bool

	// Record is the detected record value, when found.
	Record string

	// Recommendation is remediation guidance when the mechanism is
	// missing or weak.
	Recommendation string
}

// SecurityReport scores a domain's email authentication posture 0-100.
// It is a derived view, independent of [AnalyzeConfiguration].
type SecurityReport struct {
	Domain    string
	Timestamp time.Time

	// Score is 0-100: SPF contributes 40, DMARC 40, DKIM 20.
	Score int

	SPF   MechanismStatus
	DMARC MechanismStatus
	DKIM  MechanismStatus
}

// AnalyzeSecurityConfiguration scores the email authentication posture
// of a domain's TXT records. Like [AnalyzeConfiguration] it is pure and
// side-effect-free.
func AnalyzeSecurityConfiguration(rs *RecordSet) *SecurityReport {
	report := &SecurityReport{Timestamp: time.Now()}
	if rs != nil {
		report.Domain = rs.Domain
	}

	txtRecords := rs.Records(TypeTXT)

	for _, rec := range txtRecords {
		data := strings.ToLower(rec.Data)
		switch {
		case strings.Contains(data, "v=spf1") && !report.SPF.Configured:
			report.SPF = MechanismStatus{Configured: true, Record: rec.Data}
		case strings.HasPrefix(strings.TrimSpace(data), "v=dmarc1") && !report.DMARC.Configured:
			report.DMARC = MechanismStatus{Configured: true, Record: rec.Data}
		case (strings.Contains(data, "v=dkim1") || strings.Contains(strings.ToLower(rec.Name), "_domainkey")) && !report.DKIM.Configured:
			report.DKIM = MechanismStatus{Configured: true, Record: rec.Data}
		}
	}

	if report.SPF.Configured {
		report.Score += scoreSPF
	} else {
		report.SPF.Recommendation = fmt.Sprintf("Publish an SPF record, e.g. \"v=spf1 mx -all\", as a TXT record on %s.", report.Domain)
	}
	if report.DMARC.Configured {
		report.Score += scoreDMARC
	} else {
		report.DMARC.Recommendation = fmt.Sprintf("Publish a DMARC record at _dmarc.%s, e.g. \"v=DMARC1; p=quarantine; rua=mailto:dmarc@%s\".", report.Domain, report.Domain)
	}
	if report.DKIM.Configured {
		report.Score += scoreDKIM
	} else {
		report.DKIM.Recommendation = "Enable DKIM signing with your mail provider and publish the selector key under _domainkey."
	}

	return report
}
