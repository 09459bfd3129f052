package spf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"

	"golang.org/x/net/idna"

	"github.com/synqronlabs/spfscan/dns"
)

// Resolution limits per RFC 7208 section 4.6.4.
const (
	// maxLookups is the budget for DNS-querying mechanisms and modifiers:
	// include, redirect, a, mx, ptr, exists. Checked against the final
	// rolled-up total, not mid-walk.
	maxLookups = 10

	// maxVoidLookups caps lookups that return no usable answer.
	maxVoidLookups = 2

	// maxDepth bounds include/redirect nesting.
	maxDepth = 10
)

// ErrInvalidDomain is returned when the input domain cannot be used for a
// DNS lookup. It is the only input error ResolveRoot refuses to turn into
// report diagnostics.
var ErrInvalidDomain = errors.New("spf: invalid domain name")

// Args are the parameters for a policy resolution.
type Args struct {
	// Domain is the domain whose SPF policy is resolved. Required.
	Domain string

	// Logger for debug output. Nil disables logging.
	Logger *slog.Logger
}

// Node is one fetched SPF record in the policy tree: one domain at one
// recursion depth. A Node exists only if its record was fetched and was
// not a multiple-record PermError; failed expansions leave diagnostics
// behind instead of tree structure. Nodes are immutable once resolution
// returns.
type Node struct {
	// Domain the record was published at.
	Domain string

	// Record is the canonical record text, quotes stripped.
	Record string

	// Children holds the record's terms in record order. An expanded
	// include or redirect appears as a *Node; everything else as a Term.
	Children []TreeItem

	// DNSLookups is this subtree's total of DNS-querying mechanisms:
	// the record's own plus all expanded children's.
	DNSLookups int

	// Netblocks are the ip4 CIDRs contributed by this subtree, in record
	// order, duplicates retained.
	Netblocks []string
}

func (*Node) treeItem() {}

// resolution is the state shared across every branch of one ResolveRoot
// call. The visited set deliberately does NOT live here: cycle detection
// is branch-local, diagnostics are call-global (see resolve).
type resolution struct {
	resolver dns.Resolver
	log      *slog.Logger

	voidLookups int
	warnings    []string
	errs        []string
}

func (rs *resolution) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	rs.warnings = append(rs.warnings, msg)
	rs.log.Debug("spf warning", "msg", msg)
}

func (rs *resolution) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	rs.errs = append(rs.errs, msg)
	rs.log.Debug("spf error", "msg", msg)
}

// countVoid records one void lookup and re-checks the budget. The budget
// error fires every time the running count moves past the limit, once at
// 3, again at 4, and so on; consumers rely on seeing each overrun.
func (rs *resolution) countVoid() {
	rs.voidLookups++
	if rs.voidLookups > maxVoidLookups {
		rs.errorf("too many void lookups: %d (RFC 7208 allows %d)", rs.voidLookups, maxVoidLookups)
	}
}

// ResolveRoot fetches a domain's SPF policy, expands it into a mechanism
// tree and audits the result.
//
// All RFC-level findings land in the report. The returned error is non-nil
// only for context cancellation or a malformed input domain; in both cases
// no partial report is returned.
func ResolveRoot(ctx context.Context, resolver dns.Resolver, args Args) (*Report, error) {
	if args.Domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrInvalidDomain)
	}
	domain, err := idna.Lookup.ToASCII(strings.TrimSuffix(args.Domain, "."))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDomain, args.Domain, err)
	}

	log := args.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rs := &resolution{resolver: resolver, log: log}

	root, err := rs.resolve(ctx, domain, 0, map[string]bool{})
	if err != nil {
		return nil, err
	}

	return rs.buildReport(domain, root), nil
}

// resolve expands one domain into a tree node.
//
// Every fatal-to-branch condition (depth, cycle, PermError, void answer,
// DNS trouble) is recorded in the shared diagnostics and returns a nil
// node; sibling and ancestor branches continue. A non-nil error only
// unwinds cancellation.
//
// visited is branch-local: each recursive call gets a copy, so a domain
// appearing in two sibling include branches is legal while the same domain
// twice on one root-to-leaf path is a cycle.
func (rs *resolution) resolve(ctx context.Context, domain string, depth int, visited map[string]bool) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if depth > maxDepth || visited[domain] {
		rs.errorf("%s: maximum recursion depth or circular reference", domain)
		return nil, nil
	}

	rs.log.Debug("fetching TXT", "domain", domain, "depth", depth)

	txt, err := rs.resolver.LookupTXT(ctx, domain)
	if err != nil {
		return nil, err
	}

	switch txt.Status {
	case dns.StatusOK:
		if len(txt.Records) == 0 {
			// Contract says implementations report this as no-answer,
			// but treat a sloppy gateway the same way.
			rs.warnf("%s: no TXT records", domain)
			rs.countVoid()
			return nil, nil
		}
	case dns.StatusNXDomain:
		rs.warnf("%s: domain does not exist (NXDOMAIN)", domain)
		rs.countVoid()
		return nil, nil
	case dns.StatusNoAnswer:
		rs.warnf("%s: no TXT records", domain)
		rs.countVoid()
		return nil, nil
	case dns.StatusServFail:
		rs.errorf("%s: DNS lookup failed (SERVFAIL)", domain)
		return nil, nil
	default: // dns.StatusTransportError
		rs.warnf("%s: DNS lookup could not be completed", domain)
		return nil, nil
	}

	record, err := SelectRecord(txt.Records)
	switch {
	case errors.Is(err, ErrMultipleRecords):
		rs.errorf("%s: multiple SPF records (PermError per RFC 7208 section 4.5)", domain)
		return nil, nil
	case errors.Is(err, ErrNoRecord):
		// TXT records exist, none is SPF. Not a void lookup.
		rs.warnf("%s: no SPF record", domain)
		return nil, nil
	}

	if !strings.HasPrefix(record, version) {
		rs.errorf("%s: record does not start with %q: %q", domain, version, record)
	}
	if n := len(record); n > recordMaxLen {
		rs.errorf("%s: record is %d octets, over the %d octet TXT limit", domain, n, recordMaxLen)
	} else if n > recordUDPLen {
		rs.warnf("%s: record is %d octets; answers over %d may not fit in a UDP response", domain, n, recordUDPLen)
	}

	visited[domain] = true

	node := &Node{Domain: domain, Record: record}
	allSeen := false

	for _, t := range ParseTerms(record) {
		if allSeen {
			rs.warnf("%s: %q ignored: terms after %q are never evaluated", domain, t.Raw(), "all")
			if t.Kind() == KindRedirect {
				rs.warnf("%s: redirect ignored because the record contains %q", domain, "all")
			}
			node.Children = append(node.Children, t)
			continue
		}

		switch t := t.(type) {
		case All:
			allSeen = true
			node.Children = append(node.Children, t)

		case Include:
			if err := rs.expand(ctx, node, t.Domain, depth, visited); err != nil {
				return nil, err
			}

		case Redirect:
			if err := rs.expand(ctx, node, t.Domain, depth, visited); err != nil {
				return nil, err
			}

		case IP4:
			node.Netblocks = append(node.Netblocks, t.CIDR)
			node.Children = append(node.Children, t)

		case IP6:
			node.Children = append(node.Children, t)

		case A:
			node.DNSLookups++
			node.Children = append(node.Children, t)

		case MX:
			node.DNSLookups++
			rs.warnf("%s: %q may require up to 10 additional address lookups outside the RFC 7208 budget", domain, t.Raw())
			node.Children = append(node.Children, t)

		case PTR:
			node.DNSLookups++
			rs.warnf("%s: %q is deprecated, RFC 7208 recommends against ptr", domain, t.Raw())
			node.Children = append(node.Children, t)

		case Exists:
			node.DNSLookups++
			node.Children = append(node.Children, t)

		case Unknown:
			rs.warnf("%s: unknown term %q", domain, t.Raw())
			node.Children = append(node.Children, t)
		}
	}

	return node, nil
}

// expand recurses into an include or redirect target and merges the
// child's totals into the parent. The term itself costs one lookup whether
// or not the child resolves; a nil child contributes no tree structure
// because its failure is already in the diagnostics.
func (rs *resolution) expand(ctx context.Context, parent *Node, target string, depth int, visited map[string]bool) error {
	parent.DNSLookups++

	child, err := rs.resolve(ctx, target, depth+1, maps.Clone(visited))
	if err != nil {
		return err
	}
	if child == nil {
		return nil
	}

	parent.DNSLookups += child.DNSLookups
	parent.Netblocks = append(parent.Netblocks, child.Netblocks...)
	parent.Children = append(parent.Children, child)
	return nil
}
