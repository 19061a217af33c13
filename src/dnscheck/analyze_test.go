// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyleSpence/dnscheck/src/dnscheck"
)

// buildRecordSet assembles a RecordSet from per-type records, the way
// QueryAll would have populated it.
func buildRecordSet(domain string, records map[dnscheck.RecordType][]dnscheck.DNSRecord) *dnscheck.RecordSet {
	rs := &dnscheck.RecordSet{
		Domain:    domain,
		Results:   make(map[dnscheck.RecordType]dnscheck.QueryResult),
		Timestamp: time.Now(),
	}
	for rt, recs := range records {
		rs.Results[rt] = dnscheck.QueryResult{
			Domain:  domain,
			Type:    rt,
			Records: recs,
		}
	}
	return rs
}

// healthyRecords is a baseline record set that produces no critical or
// warning findings.
func healthyRecords() map[dnscheck.RecordType][]dnscheck.DNSRecord {
	return map[dnscheck.RecordType][]dnscheck.DNSRecord{
		dnscheck.TypeA: {
			{Name: "example.com.", TTL: 3600, Data: "93.184.216.34"},
		},
		dnscheck.TypeAAAA: {
			{Name: "example.com.", TTL: 3600, Data: "2606:2800:220:1:248:1893:25c8:1946"},
		},
		dnscheck.TypeNS: {
			{Name: "example.com.", TTL: 86400, Data: "a.iana-servers.net."},
			{Name: "example.com.", TTL: 86400, Data: "b.iana-servers.net."},
		},
		dnscheck.TypeMX: {
			{Name: "example.com.", TTL: 3600, Data: "10 mail.example.com."},
			{Name: "example.com.", TTL: 3600, Data: "20 backup.example.com."},
		},
		dnscheck.TypeTXT: {
			{Name: "example.com.", TTL: 3600, Data: "v=spf1 mx -all"},
			{Name: "example.com.", TTL: 3600, Data: "v=DMARC1; p=reject; rua=mailto:dmarc@example.com"},
			{Name: "selector._domainkey.example.com.", TTL: 3600, Data: "v=DKIM1; k=rsa; p=MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEA0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"},
		},
	}
}

// issuesOfType collects all findings of one type across the report.
func issuesOfType(report *dnscheck.AnalysisReport, it dnscheck.IssueType) []dnscheck.Issue {
	var out []dnscheck.Issue
	for _, list := range [][]dnscheck.Issue{report.Errors, report.Warnings, report.Info} {
		for _, issue := range list {
			if issue.Type == it {
				out = append(out, issue)
			}
		}
	}
	return out
}

func TestAnalyzeHealthyConfiguration(t *testing.T) {
	rs := buildRecordSet("example.com", healthyRecords())
	report := dnscheck.AnalyzeConfiguration(rs)

	assert.Equal(t, "example.com", report.Domain)
	assert.Empty(t, report.Errors, "a healthy configuration must produce no criticals: %+v", report.Errors)
	assert.Empty(t, report.Warnings, "a healthy configuration must produce no warnings: %+v", report.Warnings)

	// "fully configured" note.
	require.NotEmpty(t, report.Info)
	assert.Equal(t, len(report.Errors)+len(report.Warnings)+len(report.Info), report.Summary.Total)
	assert.Equal(t, len(report.Info), report.Summary.Info)
}

func TestAnalyzeEmptyRecordSet(t *testing.T) {
	rs := buildRecordSet("blank.example", nil)
	report := dnscheck.AnalyzeConfiguration(rs)

	missing := issuesOfType(report, dnscheck.IssueMissingRecord)
	require.NotEmpty(t, missing)

	var addrCritical, nsCritical, mxWarning bool
	for _, issue := range missing {
		switch {
		case issue.Severity == dnscheck.SeverityCritical && len(issue.AffectedRecords) == 2:
			assert.Equal(t, []dnscheck.RecordType{dnscheck.TypeA, dnscheck.TypeAAAA}, issue.AffectedRecords)
			addrCritical = true
		case issue.Severity == dnscheck.SeverityCritical:
			assert.Equal(t, []dnscheck.RecordType{dnscheck.TypeNS}, issue.AffectedRecords)
			nsCritical = true
		case issue.AffectedRecords[0] == dnscheck.TypeMX:
			assert.Equal(t, dnscheck.SeverityWarning, issue.Severity)
			mxWarning = true
		}
	}
	assert.True(t, addrCritical, "missing both address families must be critical")
	assert.True(t, nsCritical, "missing NS must be critical")
	assert.True(t, mxWarning, "missing MX must be a warning")

	assert.Equal(t, 2, report.Summary.Critical)
}

func TestAnalyzeMissingSingleAddressFamily(t *testing.T) {
	records := healthyRecords()
	delete(records, dnscheck.TypeAAAA)
	report := dnscheck.AnalyzeConfiguration(buildRecordSet("example.com", records))

	assert.Empty(t, report.Errors)
	missing := issuesOfType(report, dnscheck.IssueMissingRecord)
	require.Len(t, missing, 1)
	assert.Equal(t, dnscheck.SeverityInfo, missing[0].Severity, "IPv4-only is informational")
	assert.Equal(t, []dnscheck.RecordType{dnscheck.TypeAAAA}, missing[0].AffectedRecords)

	records = healthyRecords()
	delete(records, dnscheck.TypeA)
	report = dnscheck.AnalyzeConfiguration(buildRecordSet("example.com", records))

	missing = issuesOfType(report, dnscheck.IssueMissingRecord)
	require.Len(t, missing, 1)
	assert.Equal(t, dnscheck.SeverityWarning, missing[0].Severity, "IPv6-only is a warning")
}

func TestAnalyzeTTLBounds(t *testing.T) {
	tests := []struct {
		name     string
		ttl      uint32
		severity dnscheck.Severity
		flagged  bool
	}{
		{name: "very low", ttl: 30, severity: dnscheck.SeverityWarning, flagged: true},
		{name: "low", ttl: 120, severity: dnscheck.SeverityInfo, flagged: true},
		{name: "lower boundary ok", ttl: 300, flagged: false},
		{name: "normal", ttl: 3600, flagged: false},
		{name: "upper boundary ok", ttl: 604800, flagged: false},
		{name: "very high", ttl: 604801, severity: dnscheck.SeverityInfo, flagged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := healthyRecords()
			records[dnscheck.TypeA] = []dnscheck.DNSRecord{
				{Name: "example.com.", TTL: tt.ttl, Data: "93.184.216.34"},
			}
			report := dnscheck.AnalyzeConfiguration(buildRecordSet("example.com", records))

			ttlIssues := issuesOfType(report, dnscheck.IssueTTL)
			if !tt.flagged {
				assert.Empty(t, ttlIssues)
				return
			}

			require.Len(t, ttlIssues, 1)
			issue := ttlIssues[0]
			assert.Equal(t, tt.severity, issue.Severity)
			assert.Equal(t, "example.com.", issue.RecordName)
			assert.NotEmpty(t, issue.CurrentValue)
		})
	}
}

func TestAnalyzeCNAMECycles(t *testing.T) {
	cname := func(name, target string) dnscheck.DNSRecord {
		return dnscheck.DNSRecord{Name: name, TTL: 300, Data: target}
	}

	tests := []struct {
		name      string
		records   []dnscheck.DNSRecord
		wantCount int
	}{
		{
			name:      "self reference",
			records:   []dnscheck.DNSRecord{cname("www.example.com.", "www.example.com.")},
			wantCount: 1,
		},
		{
			name: "self reference differing case and dot",
			records: []dnscheck.DNSRecord{
				cname("WWW.Example.COM.", "www.example.com"),
			},
			wantCount: 1,
		},
		{
			name: "two-node cycle",
			records: []dnscheck.DNSRecord{
				cname("a.example.com.", "b.example.com."),
				cname("b.example.com.", "a.example.com."),
			},
			wantCount: 2, // each record's walk finds the loop
		},
		{
			name: "terminating chain",
			records: []dnscheck.DNSRecord{
				cname("a.example.com.", "b.example.com."),
				cname("b.example.com.", "c.example.com."),
			},
			wantCount: 0,
		},
		{
			name:      "no cnames",
			records:   nil,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := healthyRecords()
			if tt.records != nil {
				records[dnscheck.TypeCNAME] = tt.records
			}
			report := dnscheck.AnalyzeConfiguration(buildRecordSet("example.com", records))

			cycles := issuesOfType(report, dnscheck.IssueCircularReference)
			assert.Len(t, cycles, tt.wantCount)
			for _, issue := range cycles {
				assert.Equal(t, dnscheck.SeverityCritical, issue.Severity)
				assert.NotEmpty(t, issue.RecordName)
			}
		})
	}
}

func TestAnalyzeMXValidity(t *testing.T) {
	mx := func(data string) dnscheck.DNSRecord {
		return dnscheck.DNSRecord{Name: "example.com.", TTL: 3600, Data: data}
	}

	tests := []struct {
		name         string
		records      []dnscheck.DNSRecord
		wantInvalid  int
		wantDupeWarn int
	}{
		{
			name:    "valid distinct priorities",
			records: []dnscheck.DNSRecord{mx("10 mail.example.com."), mx("20 backup.example.com.")},
		},
		{
			name:        "missing priority",
			records:     []dnscheck.DNSRecord{mx("mail.example.com.")},
			wantInvalid: 1,
		},
		{
			name:        "non-numeric priority",
			records:     []dnscheck.DNSRecord{mx("ten mail.example.com.")},
			wantInvalid: 1,
		},
		{
			name:        "priority out of range",
			records:     []dnscheck.DNSRecord{mx("70000 mail.example.com.")},
			wantInvalid: 1,
		},
		{
			name:        "trailing garbage",
			records:     []dnscheck.DNSRecord{mx("10 mail.example.com. extra")},
			wantInvalid: 1,
		},
		{
			name:         "duplicate priority",
			records:      []dnscheck.DNSRecord{mx("10 mail.example.com."), mx("10 mail2.example.com.")},
			wantDupeWarn: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := healthyRecords()
			records[dnscheck.TypeMX] = tt.records
			report := dnscheck.AnalyzeConfiguration(buildRecordSet("example.com", records))

			invalid := issuesOfType(report, dnscheck.IssueInvalidMX)
			assert.Len(t, invalid, tt.wantInvalid)
			for _, issue := range invalid {
				assert.Equal(t, dnscheck.SeverityCritical, issue.Severity)
				assert.NotEmpty(t, issue.CurrentValue)
			}

			dupes := issuesOfType(report, dnscheck.IssueConfigurationError)
			assert.Len(t, dupes, tt.wantDupeWarn)
			for _, issue := range dupes {
				assert.Equal(t, dnscheck.SeverityWarning, issue.Severity)
			}
		})
	}
}

func TestAnalyzeNilRecordSet(t *testing.T) {
	report := dnscheck.AnalyzeConfiguration(nil)
	require.NotNil(t, report)
	assert.Empty(t, report.Domain)
	assert.NotEmpty(t, report.Errors, "an absent record set has everything missing")
}

func TestAnalyzeSummaryPartitioning(t *testing.T) {
	records := healthyRecords()
	// One of each severity on top of the healthy base: a CNAME loop
	// (critical), a very low TTL (warning), and a low TTL (info).
	records[dnscheck.TypeCNAME] = []dnscheck.DNSRecord{
		{Name: "loop.example.com.", TTL: 3600, Data: "loop.example.com."},
	}
	records[dnscheck.TypeSRV] = []dnscheck.DNSRecord{
		{Name: "_sip._tcp.example.com.", TTL: 30, Data: "10 5 5060 sip.example.com."},
	}
	records[dnscheck.TypePTR] = []dnscheck.DNSRecord{
		{Name: "example.com.", TTL: 120, Data: "host.example.com."},
	}

	report := dnscheck.AnalyzeConfiguration(buildRecordSet("example.com", records))

	assert.Equal(t, report.Summary.Critical, len(report.Errors))
	assert.Equal(t, report.Summary.Warnings, len(report.Warnings))
	assert.Equal(t, report.Summary.Info, len(report.Info))
	assert.Equal(t, report.Summary.Total, report.Summary.Critical+report.Summary.Warnings+report.Summary.Info)

	assert.GreaterOrEqual(t, report.Summary.Critical, 1)
	assert.GreaterOrEqual(t, report.Summary.Warnings, 1)
	assert.GreaterOrEqual(t, report.Summary.Info, 1)

	for _, issue := range report.Errors {
		assert.Equal(t, dnscheck.SeverityCritical, issue.Severity)
	}
	for _, issue := range report.Warnings {
		assert.Equal(t, dnscheck.SeverityWarning, issue.Severity)
	}
	for _, issue := range report.Info {
		assert.Equal(t, dnscheck.SeverityInfo, issue.Severity)
	}
}
