package spf

import (
	"strconv"
	"strings"
)

// buildReport runs the audit pass over the finished, immutable tree and
// assembles the final report. The DNS lookup budget is checked here,
// against the rolled-up total, not during the walk.
func (rs *resolution) buildReport(domain string, root *Node) *Report {
	r := &Report{
		ID:     newReportID(),
		Domain: domain,
		Root:   root,
	}

	overBudget := false
	if root != nil {
		r.DNSLookups = root.DNSLookups
		if root.DNSLookups > maxLookups {
			overBudget = true
			rs.errorf("%s: too many DNS lookups: %d (RFC 7208 allows %d)", domain, root.DNSLookups, maxLookups)
		}
		r.DuplicateNetblocks, r.UniqueNetblocks, r.IPv4Addresses = summarizeNetblocks(root.Netblocks)
	}

	r.VoidLookups = rs.voidLookups
	r.Warnings = rs.warnings
	r.Errors = rs.errs

	switch {
	case overBudget:
		r.Compliance = ComplianceTooManyLookups
	case len(r.Errors) > 0:
		r.Compliance = ComplianceFail
	case len(r.Warnings) > 0:
		r.Compliance = ComplianceWarn
	default:
		r.Compliance = CompliancePass
	}

	return r
}

// summarizeNetblocks computes the duplicate findings, the deduplicated
// netblock count and the total IPv4 address span over the rolled-up
// netblock sequence. The sequence arrives pre-order with duplicates
// retained; findings keep first-seen order.
func summarizeNetblocks(netblocks []string) ([]Duplicate, int, uint64) {
	counts := make(map[string]int, len(netblocks))
	var order []string
	for _, nb := range netblocks {
		if counts[nb] == 0 {
			order = append(order, nb)
		}
		counts[nb]++
	}

	var dups []Duplicate
	var addrs uint64
	for _, nb := range order {
		if counts[nb] > 1 {
			dups = append(dups, Duplicate{CIDR: nb, Count: counts[nb]})
		}
		addrs += addressSpan(nb)
	}

	return dups, len(order), addrs
}

// addressSpan returns 2^(32-prefix) for an IPv4 CIDR. The prefix suffix is
// always present because bare addresses were normalized during parsing;
// anything unparseable spans zero addresses.
func addressSpan(cidr string) uint64 {
	i := strings.LastIndexByte(cidr, '/')
	if i < 0 {
		return 0
	}
	prefix, err := strconv.Atoi(cidr[i+1:])
	if err != nil || prefix < 0 || prefix > 32 {
		return 0
	}
	return 1 << (32 - prefix)
}
