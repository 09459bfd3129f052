package spf

import "github.com/oklog/ulid/v2"

// Compliance is the overall verdict of an audit.
type Compliance string

const (
	// CompliancePass indicates no findings at all.
	CompliancePass Compliance = "pass"

	// ComplianceWarn indicates warnings only: the policy works but could
	// be improved.
	ComplianceWarn Compliance = "warn"

	// ComplianceFail indicates at least one error: the policy fails RFC
	// compliance.
	ComplianceFail Compliance = "fail"

	// ComplianceTooManyLookups indicates the rolled-up DNS lookup total
	// exceeds the RFC 7208 budget of 10. Flagged as its own verdict
	// because a record can be structurally well-formed and still be
	// rejected by receivers for this alone.
	ComplianceTooManyLookups Compliance = "too-many-lookups"
)

// Duplicate is a netblock that appears more than once across the tree.
type Duplicate struct {
	CIDR  string
	Count int
}

// Report is the result of one ResolveRoot call and the complete contract
// handed to renderers. Presentation state (expand/collapse and the like)
// never lives here.
type Report struct {
	// ID uniquely identifies this resolution run.
	ID string

	// Domain is the normalized input domain.
	Domain string

	// Root is the resolved policy tree. Nil when no record could be
	// fetched; the diagnostics say why.
	Root *Node

	// DNSLookups is the rolled-up count of DNS-querying mechanisms.
	DNSLookups int

	// UniqueNetblocks counts distinct ip4 CIDRs across the tree.
	UniqueNetblocks int

	// IPv4Addresses is the address span of the deduplicated netblocks:
	// the sum of 2^(32-prefix) per distinct CIDR. Overlap between
	// netblocks is not accounted for.
	IPv4Addresses uint64

	// DuplicateNetblocks lists CIDRs occurring more than once, with their
	// occurrence counts, in first-seen order.
	DuplicateNetblocks []Duplicate

	// VoidLookups is the number of lookups that returned no usable
	// answer (NXDOMAIN or empty). RFC 7208 allows 2.
	VoidLookups int

	// Warnings and Errors are the diagnostics collected during
	// resolution, in insertion order.
	Warnings []string
	Errors   []string

	// Compliance is the overall verdict.
	Compliance Compliance
}

// newReportID returns a unique identifier for a resolution run.
func newReportID() string {
	return ulid.Make().String()
}
