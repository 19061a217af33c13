// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"strings"

	"golang.org/x/net/idna"
)

// IsValidDomain reports whether domain is a syntactically valid domain name.
//
// A valid domain is at most 253 characters long (one trailing dot is
// stripped before checking), and every dot-separated label is 1-63
// characters of ASCII letters, digits, or hyphens, with hyphens never
// leading or trailing a label.
func IsValidDomain(domain string) bool {
	if domain == "" {
		return false
	}

	// A single trailing dot denotes the DNS root and is not counted.
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" || len(domain) > 253 {
		return false
	}

	for _, label := range strings.Split(domain, ".") {
		if len(label) < 1 || len(label) > 63 {
			return false
		}

		// Labels must not start or end with a hyphen.
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}

		for _, c := range label {
			switch {
			case c >= 'a' && c <= 'z':
				// ok
			case c >= 'A' && c <= 'Z':
				// ok
			case c >= '0' && c <= '9':
				// ok
			case c == '-':
				// ok (position already checked)
			default:
				return false
			}
		}
	}

	return true
}

// normalizeDomain lowercases and trims a domain name, converting
// internationalized names to their ASCII (punycode) form so they can be
// validated and sent to DoH providers.
//
// Conversion failures are ignored; the trimmed input is returned as-is
// and left to fail validation.
func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if isASCII(domain) {
		return domain
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return domain
	}
	return ascii
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
