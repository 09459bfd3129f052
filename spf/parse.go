package spf

import (
	"errors"
	"strings"
)

// Record selection errors.
var (
	ErrNoRecord        = errors.New("spf: no SPF record found")
	ErrMultipleRecords = errors.New("spf: multiple SPF records found")
)

// version is the tag every SPF record starts with. The match is
// case-sensitive: "V=SPF1" is not an SPF record.
const version = "v=spf1"

// Record length limits. RFC 7208 section 3.3 caps a TXT record at 512
// octets; section 3.4 recommends staying under 450 so answers fit in a
// UDP response.
const (
	recordMaxLen = 512
	recordUDPLen = 450
)

// SelectRecord picks the single SPF record out of a domain's TXT strings.
//
// Zero matches return ErrNoRecord (a domain legitimately may lack SPF);
// more than one returns ErrMultipleRecords, the PermError of RFC 7208
// section 4.5. A single match is returned with surrounding quotes stripped
// and whitespace trimmed.
func SelectRecord(txts []string) (string, error) {
	var matches []string
	for _, txt := range txts {
		if strings.Contains(txt, version) {
			matches = append(matches, txt)
		}
	}

	switch len(matches) {
	case 0:
		return "", ErrNoRecord
	case 1:
		return strings.TrimSpace(strings.Trim(matches[0], `"`)), nil
	default:
		return "", ErrMultipleRecords
	}
}

// ParseTerms splits one canonical SPF record into mechanism and modifier
// terms, in record order.
//
// Classification is deliberately forgiving: the auditor must keep walking
// past malformed tokens, so anything unclassifiable becomes an Unknown term
// instead of aborting the parse. "v=spf1" tokens are dropped wherever they
// appear.
func ParseTerms(record string) []Term {
	var terms []Term
	for _, token := range strings.Fields(record) {
		if token == version {
			continue
		}
		terms = append(terms, parseTerm(token))
	}
	return terms
}

// parseTerm classifies one token. Mechanism names match case-insensitively;
// the raw token is preserved verbatim.
func parseTerm(token string) Term {
	qual := Pass
	body := token
	if body != "" {
		switch Qualifier(body[0]) {
		case Pass, Fail, SoftFail, Neutral:
			qual = Qualifier(body[0])
			body = body[1:]
		}
	}

	t := term{qual: qual, raw: token, body: body}
	lower := strings.ToLower(body)

	switch {
	case lower == "all":
		return All{term: t}

	case strings.HasPrefix(lower, "include:"):
		return Include{term: t, Domain: body[len("include:"):]}

	case strings.HasPrefix(lower, "redirect="):
		return Redirect{term: t, Domain: body[len("redirect="):]}

	case strings.HasPrefix(lower, "ip4:"):
		cidr := body[len("ip4:"):]
		if !strings.Contains(cidr, "/") {
			cidr += "/32"
		}
		t.body = "ip4:" + cidr
		return IP4{term: t, CIDR: cidr}

	case strings.HasPrefix(lower, "ip6:"):
		cidr := body[len("ip6:"):]
		if !strings.Contains(cidr, "/") {
			cidr += "/128"
		}
		t.body = "ip6:" + cidr
		return IP6{term: t, CIDR: cidr}

	case lower == "a" || strings.HasPrefix(lower, "a:") || strings.HasPrefix(lower, "a/"):
		return A{term: t, Spec: body[len("a"):]}

	case lower == "mx" || strings.HasPrefix(lower, "mx:") || strings.HasPrefix(lower, "mx/"):
		return MX{term: t, Spec: body[len("mx"):]}

	case lower == "ptr" || strings.HasPrefix(lower, "ptr:"):
		return PTR{term: t, Spec: body[len("ptr"):]}

	case strings.HasPrefix(lower, "exists:"):
		return Exists{term: t, Domain: body[len("exists:"):]}

	default:
		return Unknown{term: t}
	}
}
