// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// RecordType is a DNS record type supported by the checker.
type RecordType string

// Supported record types.
const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeCNAME RecordType = "CNAME"
	TypeMX    RecordType = "MX"
	TypeTXT   RecordType = "TXT"
	TypeNS    RecordType = "NS"
	TypeSOA   RecordType = "SOA"
	TypePTR   RecordType = "PTR"
	TypeSRV   RecordType = "SRV"
)

// supportedRecordTypes is the fixed query order used by [Checker.QueryAll].
var supportedRecordTypes = []RecordType{
	TypeA, TypeAAAA, TypeCNAME, TypeMX, TypeTXT, TypeNS, TypeSOA, TypePTR, TypeSRV,
}

// recordTypeCodes maps each supported type to its numeric DNS type code.
var recordTypeCodes = map[RecordType]uint16{
	TypeA:     dns.TypeA,
	TypeAAAA:  dns.TypeAAAA,
	TypeCNAME: dns.TypeCNAME,
	TypeMX:    dns.TypeMX,
	TypeTXT:   dns.TypeTXT,
	TypeNS:    dns.TypeNS,
	TypeSOA:   dns.TypeSOA,
	TypePTR:   dns.TypePTR,
	TypeSRV:   dns.TypeSRV,
}

// SupportedRecordTypes returns the record types the checker can query,
// in the order they are queried by [Checker.QueryAll].
func SupportedRecordTypes() []RecordType {
	types := make([]RecordType, len(supportedRecordTypes))
	copy(types, supportedRecordTypes)
	return types
}

// Code returns the numeric DNS type code for the record type
// (e.g. 1 for A, 28 for AAAA). Returns 0 for unsupported types.
func (t RecordType) Code() uint16 {
	return recordTypeCodes[t]
}

// Supported reports whether t is one of the supported record types.
func (t RecordType) Supported() bool {
	_, ok := recordTypeCodes[t]
	return ok
}

// ParseRecordType converts a string such as "a" or "MX" to a [RecordType].
// Unsupported types are rejected with [ErrUnsupportedRecordType].
func ParseRecordType(s string) (RecordType, error) {
	t := RecordType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Supported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedRecordType, s)
	}
	return t, nil
}

// recordTypeName resolves a numeric DNS type code to its name.
// Used for authority/additional records, which may carry types
// outside the supported query set (e.g. RRSIG, OPT).
func recordTypeName(code uint16) string {
	if name, ok := dns.TypeToString[code]; ok {
		return name
	}
	return fmt.Sprintf("TYPE%d", code)
}

// Provider identifies a DNS-over-HTTPS provider.
type Provider string

// Supported DoH providers.
const (
	ProviderCloudflare Provider = "cloudflare"
	ProviderGoogle     Provider = "google"
	ProviderQuad9      Provider = "quad9"
)

// fallbackOrder is the fixed provider order tried when no preferred
// provider is given, and the order the remaining providers are tried
// in after a preferred provider fails.
var fallbackOrder = []Provider{ProviderCloudflare, ProviderGoogle, ProviderQuad9}

// defaultEndpoints are the JSON DoH endpoints for each provider.
var defaultEndpoints = map[Provider]string{
	ProviderCloudflare: "https://cloudflare-dns.com/dns-query",
	ProviderGoogle:     "https://dns.google/resolve",
	ProviderQuad9:      "https://dns.quad9.net:5053/dns-query",
}

// Known reports whether p is one of the supported providers.
func (p Provider) Known() bool {
	_, ok := defaultEndpoints[p]
	return ok
}
