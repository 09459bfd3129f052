package spf

import (
	"bytes"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// ToMessagePack serializes the report, tree included, so it can be handed
// to another process or stored. FromMessagePack restores it.
//
// Terms are serialized by their raw token and reconstructed through the
// parser, which is deterministic, so a round trip yields an equal tree.
func (r *Report) ToMessagePack() ([]byte, error) {
	var buf bytes.Buffer
	w := &mpWriter{Writer: msgp.NewWriter(&buf)}
	w.report(r)
	if w.err == nil {
		w.err = w.Flush()
	}
	if w.err != nil {
		return nil, fmt.Errorf("spf: encoding report: %w", w.err)
	}
	return buf.Bytes(), nil
}

// FromMessagePack restores a report serialized by ToMessagePack.
func FromMessagePack(data []byte) (*Report, error) {
	r := &mpReader{Reader: msgp.NewReader(bytes.NewReader(data))}
	report := r.report()
	if r.err != nil {
		return nil, fmt.Errorf("spf: decoding report: %w", r.err)
	}
	return report, nil
}

// mpWriter is a sticky-error wrapper around msgp.Writer: after the first
// failure every call is a no-op, so encode paths stay linear.
type mpWriter struct {
	*msgp.Writer
	err error
}

func (w *mpWriter) mapHeader(n int) {
	if w.err == nil {
		w.err = w.WriteMapHeader(uint32(n))
	}
}

func (w *mpWriter) arrayHeader(n int) {
	if w.err == nil {
		w.err = w.WriteArrayHeader(uint32(n))
	}
}

func (w *mpWriter) str(s string) {
	if w.err == nil {
		w.err = w.WriteString(s)
	}
}

func (w *mpWriter) integer(i int) {
	if w.err == nil {
		w.err = w.WriteInt(i)
	}
}

func (w *mpWriter) unsigned(u uint64) {
	if w.err == nil {
		w.err = w.WriteUint64(u)
	}
}

func (w *mpWriter) null() {
	if w.err == nil {
		w.err = w.WriteNil()
	}
}

func (w *mpWriter) strs(ss []string) {
	w.arrayHeader(len(ss))
	for _, s := range ss {
		w.str(s)
	}
}

func (w *mpWriter) report(r *Report) {
	w.mapHeader(11)
	w.str("id")
	w.str(r.ID)
	w.str("domain")
	w.str(r.Domain)
	w.str("root")
	if r.Root == nil {
		w.null()
	} else {
		w.node(r.Root)
	}
	w.str("dns_lookups")
	w.integer(r.DNSLookups)
	w.str("unique_netblocks")
	w.integer(r.UniqueNetblocks)
	w.str("ipv4_addresses")
	w.unsigned(r.IPv4Addresses)
	w.str("duplicates")
	w.arrayHeader(len(r.DuplicateNetblocks))
	for _, d := range r.DuplicateNetblocks {
		w.mapHeader(2)
		w.str("cidr")
		w.str(d.CIDR)
		w.str("count")
		w.integer(d.Count)
	}
	w.str("void_lookups")
	w.integer(r.VoidLookups)
	w.str("warnings")
	w.strs(r.Warnings)
	w.str("errors")
	w.strs(r.Errors)
	w.str("compliance")
	w.str(string(r.Compliance))
}

func (w *mpWriter) node(n *Node) {
	w.mapHeader(5)
	w.str("domain")
	w.str(n.Domain)
	w.str("record")
	w.str(n.Record)
	w.str("dns_lookups")
	w.integer(n.DNSLookups)
	w.str("netblocks")
	w.strs(n.Netblocks)
	w.str("children")
	w.arrayHeader(len(n.Children))
	for _, item := range n.Children {
		w.mapHeader(1)
		switch item := item.(type) {
		case *Node:
			w.str("node")
			w.node(item)
		case Term:
			w.str("term")
			w.str(item.Raw())
		}
	}
}

// mpReader mirrors mpWriter on the decode side.
type mpReader struct {
	*msgp.Reader
	err error
}

func (r *mpReader) mapHeader() int {
	if r.err != nil {
		return 0
	}
	n, err := r.ReadMapHeader()
	r.err = err
	return int(n)
}

func (r *mpReader) arrayHeader() int {
	if r.err != nil {
		return 0
	}
	n, err := r.ReadArrayHeader()
	r.err = err
	return int(n)
}

func (r *mpReader) str() string {
	if r.err != nil {
		return ""
	}
	s, err := r.ReadString()
	r.err = err
	return s
}

func (r *mpReader) integer() int {
	if r.err != nil {
		return 0
	}
	i, err := r.ReadInt()
	r.err = err
	return i
}

func (r *mpReader) unsigned() uint64 {
	if r.err != nil {
		return 0
	}
	u, err := r.ReadUint64()
	r.err = err
	return u
}

func (r *mpReader) isNil() bool {
	if r.err != nil {
		return true
	}
	t, err := r.NextType()
	if err != nil {
		r.err = err
		return true
	}
	return t == msgp.NilType
}

func (r *mpReader) strs() []string {
	n := r.arrayHeader()
	var out []string
	for i := 0; i < n; i++ {
		if r.err != nil {
			return out
		}
		out = append(out, r.str())
	}
	return out
}

func (r *mpReader) skip() {
	if r.err == nil {
		r.err = r.Skip()
	}
}

func (r *mpReader) report() *Report {
	rep := &Report{}
	n := r.mapHeader()
	for i := 0; i < n; i++ {
		if r.err != nil {
			return rep
		}
		switch key := r.str(); key {
		case "id":
			rep.ID = r.str()
		case "domain":
			rep.Domain = r.str()
		case "root":
			if r.isNil() {
				if r.err == nil {
					r.err = r.ReadNil()
				}
			} else {
				rep.Root = r.node()
			}
		case "dns_lookups":
			rep.DNSLookups = r.integer()
		case "unique_netblocks":
			rep.UniqueNetblocks = r.integer()
		case "ipv4_addresses":
			rep.IPv4Addresses = r.unsigned()
		case "duplicates":
			cnt := r.arrayHeader()
			for j := 0; j < cnt; j++ {
				if r.err != nil {
					return rep
				}
				var d Duplicate
				m := r.mapHeader()
				for k := 0; k < m; k++ {
					switch r.str() {
					case "cidr":
						d.CIDR = r.str()
					case "count":
						d.Count = r.integer()
					default:
						r.skip()
					}
				}
				rep.DuplicateNetblocks = append(rep.DuplicateNetblocks, d)
			}
		case "void_lookups":
			rep.VoidLookups = r.integer()
		case "warnings":
			rep.Warnings = r.strs()
		case "errors":
			rep.Errors = r.strs()
		case "compliance":
			rep.Compliance = Compliance(r.str())
		default:
			r.skip()
		}
	}
	return rep
}

func (r *mpReader) node() *Node {
	node := &Node{}
	n := r.mapHeader()
	for i := 0; i < n; i++ {
		if r.err != nil {
			return node
		}
		switch key := r.str(); key {
		case "domain":
			node.Domain = r.str()
		case "record":
			node.Record = r.str()
		case "dns_lookups":
			node.DNSLookups = r.integer()
		case "netblocks":
			node.Netblocks = r.strs()
		case "children":
			cnt := r.arrayHeader()
			for j := 0; j < cnt; j++ {
				if r.err != nil {
					return node
				}
				if m := r.mapHeader(); m != 1 {
					if r.err == nil {
						r.err = fmt.Errorf("tree child: expected single-entry map, got %d entries", m)
					}
					return node
				}
				switch tag := r.str(); tag {
				case "node":
					node.Children = append(node.Children, r.node())
				case "term":
					node.Children = append(node.Children, parseTerm(r.str()))
				default:
					if r.err == nil {
						r.err = fmt.Errorf("tree child: unknown tag %q", tag)
					}
					return node
				}
			}
		default:
			r.skip()
		}
	}
	return node
}
