// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDoHResponseFiltersAnswerSection(t *testing.T) {
	// Providers flatten CNAME chains into the answer section of an A
	// query; only the records of the requested type belong in Records.
	raw := &dohResponse{
		Status: dns.RcodeSuccess,
		Answer: []dohRR{
			{Name: "www.example.com.", Type: dns.TypeCNAME, TTL: 300, Data: "example.com."},
			{Name: "example.com.", Type: dns.TypeA, TTL: 3600, Data: "93.184.216.34"},
			{Name: "example.com.", Type: dns.TypeA, TTL: 3600, Data: "93.184.216.35"},
		},
	}

	result, err := parseDoHResponse(raw, "www.example.com", TypeA, ProviderCloudflare)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, TypeA, rec.Type)
	}
	assert.Equal(t, "93.184.216.34", result.Records[0].Data)
	assert.Equal(t, ProviderCloudflare, result.Provider)
}

func TestParseDoHResponsePreservesAncillarySections(t *testing.T) {
	raw := &dohResponse{
		Status: dns.RcodeSuccess,
		Authority: []dohRR{
			{Name: "example.com.", Type: dns.TypeSOA, TTL: 900, Data: "ns.icann.org. noc.dns.icann.org. 2024 7200 3600 1209600 3600"},
		},
		Additional: []dohRR{
			{Name: "ns.icann.org.", Type: dns.TypeRRSIG, TTL: 900, Data: "..."},
		},
	}

	result, err := parseDoHResponse(raw, "example.com", TypeAAAA, ProviderGoogle)
	require.NoError(t, err)

	assert.Empty(t, result.Records)
	require.Len(t, result.Authority, 1)
	assert.Equal(t, RecordType("SOA"), result.Authority[0].Type)
	require.Len(t, result.Additional, 1)
	assert.Equal(t, RecordType("RRSIG"), result.Additional[0].Type, "type names are resolved by reverse lookup of the numeric code")
}

func TestParseDoHResponseDNSStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		category string
	}{
		{"format error", dns.RcodeFormatError, "format error"},
		{"server failure", dns.RcodeServerFailure, "server failure"},
		{"nxdomain", dns.RcodeNameError, "domain not found (NXDOMAIN)"},
		{"not implemented", dns.RcodeNotImplemented, "not implemented"},
		{"refused", dns.RcodeRefused, "query refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &dohResponse{Status: tt.status}
			_, err := parseDoHResponse(raw, "example.com", TypeA, ProviderQuad9)
			require.Error(t, err)

			var qe *QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, KindDNSStatus, qe.Kind)
			assert.Equal(t, tt.status, qe.Rcode)
			assert.Equal(t, tt.category, qe.Category())
		})
	}
}

func TestParseDoHResponseEmptySuccess(t *testing.T) {
	// NOERROR with no answers (NODATA) is a success with zero records,
	// not an error.
	result, err := parseDoHResponse(&dohResponse{Status: dns.RcodeSuccess}, "example.com", TypeMX, ProviderGoogle)
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Empty(t, result.Records)
	assert.Equal(t, "google", result.Source())
}

func TestRecordTypeCodes(t *testing.T) {
	want := map[RecordType]uint16{
		TypeA: 1, TypeNS: 2, TypeCNAME: 5, TypeSOA: 6, TypePTR: 12,
		TypeMX: 15, TypeTXT: 16, TypeAAAA: 28, TypeSRV: 33,
	}
	for rt, code := range want {
		assert.Equal(t, code, rt.Code(), "code for %s", rt)
	}
	assert.Equal(t, uint16(0), RecordType("LOC").Code())
	assert.False(t, RecordType("LOC").Supported())
}

func TestParseRecordType(t *testing.T) {
	rt, err := ParseRecordType(" mx ")
	require.NoError(t, err)
	assert.Equal(t, TypeMX, rt)

	_, err = ParseRecordType("LOC")
	assert.ErrorIs(t, err, ErrUnsupportedRecordType)
}
