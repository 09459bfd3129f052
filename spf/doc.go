// Package spf resolves and audits a domain's published SPF policy per
// RFC 7208.
//
// Unlike an SPF evaluator, this package never scores a sending IP against
// the policy: it fetches the policy record, expands include and redirect
// chains into a mechanism tree, enforces the RFC resource limits (10
// DNS-querying mechanisms, 2 void lookups, bounded recursion with cycle
// detection) and collects RFC-compliance findings split into errors and
// warnings. The a, mx, ptr and exists mechanisms are counted against the
// lookup budget but their lookups are never executed.
//
// Basic usage:
//
//	gateway := dns.NewClient(dns.ResolverConfig{})
//
//	report, err := spf.ResolveRoot(ctx, gateway, spf.Args{Domain: "example.com"})
//	if err != nil {
//	    // Cancelled, or the input domain is malformed.
//	}
//
//	switch report.Compliance {
//	case spf.CompliancePass:
//	    // No findings.
//	case spf.ComplianceWarn:
//	    // Works, but report.Warnings lists improvements.
//	case spf.ComplianceFail:
//	    // report.Errors lists RFC violations.
//	case spf.ComplianceTooManyLookups:
//	    // Structurally fine but over the 10-lookup budget.
//	}
//
// All RFC-level problems are data in the report, never returned errors:
// resolution of sibling and ancestor branches continues past a failed
// branch. Only cancellation and malformed input abort a call.
//
// References:
//   - RFC 7208: Sender Policy Framework (SPF)
package spf
