package dns

import (
	"context"
	"slices"
)

// MockResolver is a Resolver used for testing.
// TXT maps FQDNs (with trailing dot) to TXT strings. Names listed in
// NXDomain, Fail or Unreachable answer with the matching status instead;
// names absent everywhere answer StatusNoAnswer.
type MockResolver struct {
	TXT map[string][]string

	// NXDomain contains names that will return StatusNXDomain.
	NXDomain []string

	// Fail contains names that will return StatusServFail.
	Fail []string

	// Unreachable contains names that will return StatusTransportError.
	Unreachable []string
}

var _ Resolver = MockResolver{}

// LookupTXT returns the configured answer for a name.
func (r MockResolver) LookupTXT(ctx context.Context, name string) (TXT, error) {
	if err := ctx.Err(); err != nil {
		return TXT{Status: StatusTransportError}, err
	}

	fqdn := ensureAbsolute(name)

	switch {
	case slices.Contains(r.NXDomain, fqdn):
		return TXT{Status: StatusNXDomain}, nil
	case slices.Contains(r.Fail, fqdn):
		return TXT{Status: StatusServFail}, nil
	case slices.Contains(r.Unreachable, fqdn):
		return TXT{Status: StatusTransportError}, nil
	}

	records := r.TXT[fqdn]
	if len(records) == 0 {
		return TXT{Status: StatusNoAnswer}, nil
	}
	return TXT{Status: StatusOK, Records: records}, nil
}
