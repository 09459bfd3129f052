// Package dns provides the TXT lookup gateway used by SPF policy resolution.
//
// The gateway issues a single TXT query per call and returns a classified
// outcome instead of an error: resolution-level conditions (NXDOMAIN, empty
// answers, SERVFAIL) are statuses the caller reasons about, not failures.
// Errors are reserved for context cancellation and request setup problems.
// The gateway never retries; whatever retry policy exists belongs to the
// caller.
package dns

import "context"

// Status classifies the outcome of a TXT lookup.
type Status string

const (
	// StatusOK indicates the query succeeded and returned TXT records.
	StatusOK Status = "ok"

	// StatusNXDomain indicates the domain does not exist (RCODE 3).
	StatusNXDomain Status = "nxdomain"

	// StatusServFail indicates the authoritative side failed (RCODE 2).
	StatusServFail Status = "servfail"

	// StatusNoAnswer indicates the domain exists but has no TXT records.
	StatusNoAnswer Status = "no-answer"

	// StatusTransportError indicates the query could not be completed:
	// network trouble, timeout, or an unusable response.
	StatusTransportError Status = "transport-error"
)

// Void reports whether the status counts as a void lookup per RFC 7208
// section 4.6.4: an authoritative answer that yields no usable records.
// Infrastructure failures (SERVFAIL, transport trouble) are not void.
func (s Status) Void() bool {
	return s == StatusNXDomain || s == StatusNoAnswer
}

// TXT is the classified result of one TXT query.
type TXT struct {
	// Status classifies the outcome. Records is non-empty only for StatusOK.
	Status Status

	// Records holds the TXT strings, one entry per record, with
	// character-strings already joined per RFC 7208 section 3.3.
	Records []string
}

// Resolver is the DNS TXT gateway consumed by SPF resolution.
//
// Implementations must encode DNS-level outcomes in TXT.Status and return a
// non-nil error only for context cancellation or unrecoverable request
// setup. A successful query with zero TXT records is reported as
// StatusNoAnswer.
type Resolver interface {
	LookupTXT(ctx context.Context, name string) (TXT, error)
}
