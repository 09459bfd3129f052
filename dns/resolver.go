package dns

import (
	"context"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// ResolverConfig contains configuration for the raw DNS client.
type ResolverConfig struct {
	// Nameservers is a list of DNS servers to query (e.g., "8.8.8.8:53").
	// If empty, system resolvers from /etc/resolv.conf are used,
	// falling back to public DNS (8.8.8.8, 1.1.1.1).
	Nameservers []string

	// Timeout is the timeout for individual DNS queries. Default is 5 seconds.
	Timeout time.Duration
}

// Client implements Resolver using github.com/miekg/dns.
//
// A query is sent to each configured nameserver in order until one of them
// produces a usable answer; a later nameserver is only consulted when the
// previous one was unreachable or refused the query. The client never
// retries a nameserver that answered.
type Client struct {
	config ResolverConfig
	client *mdns.Client
}

var _ Resolver = (*Client)(nil)

// NewClient creates a TXT gateway backed by raw DNS queries.
func NewClient(config ResolverConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = getSystemNameservers()
	}

	return &Client{
		config: config,
		client: &mdns.Client{
			Timeout: config.Timeout,
		},
	}
}

// getSystemNameservers tries to get system DNS servers from resolv.conf.
func getSystemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		// Fallback to common public DNS servers
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}

	servers := make([]string, 0, len(config.Servers))
	for _, s := range config.Servers {
		if !strings.Contains(s, ":") {
			s = s + ":53"
		}
		servers = append(servers, s)
	}
	return servers
}

// ensureAbsolute ensures the domain name ends with a dot (FQDN format).
func ensureAbsolute(name string) string {
	if !strings.HasSuffix(name, ".") {
		return name + "."
	}
	return name
}

// LookupTXT issues one TXT query and classifies the outcome.
func (c *Client) LookupTXT(ctx context.Context, name string) (TXT, error) {
	m := new(mdns.Msg)
	m.SetQuestion(ensureAbsolute(name), mdns.TypeTXT)
	m.RecursionDesired = true

	for _, server := range c.config.Nameservers {
		select {
		case <-ctx.Done():
			return TXT{Status: StatusTransportError}, ctx.Err()
		default:
		}

		resp, _, err := c.client.ExchangeContext(ctx, m, server)
		if err != nil {
			// Transport trouble with this server, try the next one.
			continue
		}

		switch resp.Rcode {
		case mdns.RcodeSuccess:
			records := txtStrings(resp)
			if len(records) == 0 {
				return TXT{Status: StatusNoAnswer}, nil
			}
			return TXT{Status: StatusOK, Records: records}, nil
		case mdns.RcodeNameError: // NXDOMAIN
			return TXT{Status: StatusNXDomain}, nil
		case mdns.RcodeServerFailure:
			return TXT{Status: StatusServFail}, nil
		default:
			// REFUSED and friends, try the next server.
			continue
		}
	}

	if err := ctx.Err(); err != nil {
		return TXT{Status: StatusTransportError}, err
	}
	return TXT{Status: StatusTransportError}, nil
}

// txtStrings extracts the TXT payloads from an answer, joining split
// character-strings per RFC 7208 section 3.3.
func txtStrings(resp *mdns.Msg) []string {
	var records []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*mdns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	return records
}
