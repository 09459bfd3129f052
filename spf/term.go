package spf

// Qualifier is the result prefix of a mechanism: "+" pass, "-" fail,
// "~" softfail, "?" neutral. Tokens without a qualifier parse as Pass.
type Qualifier byte

const (
	Pass     Qualifier = '+'
	Fail     Qualifier = '-'
	SoftFail Qualifier = '~'
	Neutral  Qualifier = '?'
)

// String returns the qualifier symbol.
func (q Qualifier) String() string {
	return string(q)
}

// Kind names a term's mechanism type.
type Kind string

const (
	KindAll      Kind = "all"
	KindInclude  Kind = "include"
	KindRedirect Kind = "redirect"
	KindIP4      Kind = "ip4"
	KindIP6      Kind = "ip6"
	KindA        Kind = "a"
	KindMX       Kind = "mx"
	KindPTR      Kind = "ptr"
	KindExists   Kind = "exists"
	KindUnknown  Kind = "unknown"
)

// TreeItem is one element of a resolved policy tree: a *Node for an
// expanded include or redirect, or a Term for a mechanism kept in place.
type TreeItem interface {
	treeItem()
}

// Term is a single mechanism or modifier parsed from an SPF record.
//
// Term is a closed set: the concrete types are All, Include, Redirect,
// IP4, IP6, A, MX, PTR, Exists and Unknown. Callers switch over them.
type Term interface {
	TreeItem

	// Kind names the mechanism type.
	Kind() Kind

	// Qualifier returns the term's qualifier; absent qualifiers default
	// to Pass.
	Qualifier() Qualifier

	// Raw returns the verbatim source token.
	Raw() string

	// String returns the token with an explicit qualifier prefix and,
	// for ip4/ip6, an explicit CIDR prefix length.
	String() string
}

// term carries the fields every mechanism shares. body is the token with
// any qualifier stripped and normalization applied; raw stays verbatim.
type term struct {
	qual Qualifier
	raw  string
	body string
}

func (t term) treeItem()            {}
func (t term) Qualifier() Qualifier { return t.qual }
func (t term) Raw() string          { return t.raw }
func (t term) String() string       { return string(t.qual) + t.body }

// All is the terminal mechanism. Everything after it in a record is
// ignored and reported, and a redirect modifier loses its effect.
type All struct{ term }

func (All) Kind() Kind { return KindAll }

// Include delegates to another domain's policy. Costs one DNS lookup on
// top of whatever the included policy costs.
type Include struct {
	term

	// Domain is the delegated-to domain.
	Domain string
}

func (Include) Kind() Kind { return KindInclude }

// Redirect is the redirect= modifier: the rest of the evaluation moves to
// another domain's policy. Only honored when the record has no "all".
type Redirect struct {
	term

	// Domain is the replacement policy's domain.
	Domain string
}

func (Redirect) Kind() Kind { return KindRedirect }

// IP4 authorizes an IPv4 netblock. These are the only terms that
// contribute to netblock and address counting.
type IP4 struct {
	term

	// CIDR always carries an explicit prefix length; bare addresses are
	// normalized to /32 at parse time.
	CIDR string
}

func (IP4) Kind() Kind { return KindIP4 }

// IP6 authorizes an IPv6 netblock. Parsed and displayed, but excluded from
// netblock and address counting.
type IP6 struct {
	term

	// CIDR always carries an explicit prefix length; bare addresses are
	// normalized to /128 at parse time.
	CIDR string
}

func (IP6) Kind() Kind { return KindIP6 }

// A matches the domain's address records. The lookup is counted against
// the RFC 7208 budget but never executed by the auditor.
type A struct {
	term

	// Spec is the optional ":domain" and/or "/prefix" tail, verbatim.
	Spec string
}

func (A) Kind() Kind { return KindA }

// MX matches the domain's MX targets. Counted, never executed. Each MX
// target may itself require up to 10 address lookups outside the budget,
// which the resolver reports as a warning.
type MX struct {
	term

	// Spec is the optional ":domain" and/or "/prefix" tail, verbatim.
	Spec string
}

func (MX) Kind() Kind { return KindMX }

// PTR matches validated reverse names. Counted, never executed. RFC 7208
// recommends against ptr; the resolver warns on every occurrence.
type PTR struct {
	term

	// Spec is the optional ":domain" tail, verbatim.
	Spec string
}

func (PTR) Kind() Kind { return KindPTR }

// Exists matches when the constructed domain resolves. Counted, never
// executed.
type Exists struct {
	term

	// Domain is the domain-spec after "exists:".
	Domain string
}

func (Exists) Kind() Kind { return KindExists }

// Unknown is any token the parser cannot classify, including unrecognized
// modifiers. Reported once as a warning and otherwise ignored.
type Unknown struct{ term }

func (Unknown) Kind() Kind { return KindUnknown }
