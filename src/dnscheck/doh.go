// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

// dohResponse is the JSON DoH response schema shared by Cloudflare,
// Google, and Quad9 (draft-bortzmeyer-dns-json).
type dohResponse struct {
	Status     int           `json:"Status"`
	TC         bool          `json:"TC"`
	RD         bool          `json:"RD"`
	RA         bool          `json:"RA"`
	AD         bool          `json:"AD"`
	CD         bool          `json:"CD"`
	Question   []dohQuestion `json:"Question"`
	Answer     []dohRR       `json:"Answer"`
	Authority  []dohRR       `json:"Authority"`
	Additional []dohRR       `json:"Additional"`
}

type dohQuestion struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
}

type dohRR struct {
	Name string `json:"name"`
	Type uint16 `json:"type"`
	TTL  uint32 `json:"TTL"`
	Data string `json:"data"`
}

// performQuery issues a single DoH request for one (domain, type) pair
// against one provider. The request carries its own timeout; expiry is
// reported as a timeout error, transport failures as network errors, and
// non-2xx responses as HTTP status errors carrying the code.
func (c *Checker) performQuery(ctx context.Context, domain string, rt RecordType, p Provider) (QueryResult, error) {
	endpoint, ok := c.endpoints[p]
	if !ok {
		return QueryResult{}, networkError(p, fmt.Errorf("no endpoint configured"))
	}

	qctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("name", domain)
	q.Set("type", strconv.Itoa(int(rt.Code())))

	req, err := http.NewRequestWithContext(qctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return QueryResult{}, networkError(p, err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Distinguish our per-query timeout from parent cancellation
		// and plain transport failures.
		switch {
		case qctx.Err() != nil && ctx.Err() == nil:
			return QueryResult{}, timeoutError(p, c.timeout)
		case ctx.Err() != nil:
			return QueryResult{}, ctx.Err()
		default:
			return QueryResult{}, networkError(p, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return QueryResult{}, httpStatusError(p, resp.StatusCode)
	}

	var raw dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return QueryResult{}, networkError(p, fmt.Errorf("malformed DoH response: %w", err))
	}

	return parseDoHResponse(&raw, domain, rt, p)
}

// parseDoHResponse normalizes a provider response into a QueryResult.
//
// A non-zero DNS status becomes a classified error. The answer section
// is filtered to records matching the requested type code; ancillary
// types a provider mixes into the answer are dropped, while the
// authority and additional sections are preserved as-is with their type
// names resolved from the numeric codes.
func parseDoHResponse(raw *dohResponse, domain string, rt RecordType, p Provider) (QueryResult, error) {
	result := QueryResult{
		Domain:    domain,
		Type:      rt,
		Provider:  p,
		Timestamp: time.Now(),
	}

	if raw.Status != dns.RcodeSuccess {
		return QueryResult{}, dnsStatusError(p, raw.Status)
	}

	code := rt.Code()
	for _, rr := range raw.Answer {
		if rr.Type != code {
			continue
		}
		result.Records = append(result.Records, DNSRecord{
			Name: rr.Name,
			Type: rt,
			TTL:  rr.TTL,
			Data: rr.Data,
		})
	}
	result.Authority = convertSection(raw.Authority)
	result.Additional = convertSection(raw.Additional)

	return result, nil
}

// convertSection maps an authority or additional section, resolving type
// names by reverse lookup of the numeric code.
func convertSection(rrs []dohRR) []DNSRecord {
	if len(rrs) == 0 {
		return nil
	}
	records := make([]DNSRecord, 0, len(rrs))
	for _, rr := range rrs {
		records = append(records, DNSRecord{
			Name: rr.Name,
			Type: RecordType(recordTypeName(rr.Type)),
			TTL:  rr.TTL,
			Data: rr.Data,
		})
	}
	return records
}
