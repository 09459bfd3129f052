package dns

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultDoHEndpoint is used when DoHConfig.Endpoint is empty.
const DefaultDoHEndpoint = "https://dns.google/resolve"

// RCODE values and the TXT record type as they appear in the JSON API.
const (
	rcodeSuccess  = 0
	rcodeServFail = 2
	rcodeNXDomain = 3

	typeTXT = 16
)

// DoHConfig contains configuration for the DNS-over-HTTPS JSON client.
type DoHConfig struct {
	// Endpoint is the resolver URL, e.g. "https://dns.google/resolve".
	// Default: DefaultDoHEndpoint.
	Endpoint string

	// HTTPClient is used for queries. If nil, a client with Timeout is used.
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil. Default is 5 seconds.
	Timeout time.Duration
}

// DoHClient implements Resolver over the DNS-over-HTTPS JSON API:
// GET <endpoint>?name=<name>&type=TXT with an RCODE in the response body.
type DoHClient struct {
	endpoint string
	client   *http.Client
}

var _ Resolver = (*DoHClient)(nil)

// NewDoHClient creates a TXT gateway backed by a DoH JSON endpoint.
func NewDoHClient(config DoHConfig) *DoHClient {
	if config.Endpoint == "" {
		config.Endpoint = DefaultDoHEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &DoHClient{
		endpoint: config.Endpoint,
		client:   config.HTTPClient,
	}
}

// dohResponse is the subset of the JSON answer the gateway consumes.
// Status is a plain DNS RCODE.
type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// LookupTXT issues one TXT query and classifies the outcome.
func (c *DoHClient) LookupTXT(ctx context.Context, name string) (TXT, error) {
	name = strings.TrimSuffix(name, ".")
	u := c.endpoint + "?name=" + url.QueryEscape(name) + "&type=TXT"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return TXT{Status: StatusTransportError}, fmt.Errorf("dns: building DoH request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return TXT{Status: StatusTransportError}, ctx.Err()
		}
		return TXT{Status: StatusTransportError}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TXT{Status: StatusTransportError}, nil
	}

	var body dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TXT{Status: StatusTransportError}, nil
	}

	switch body.Status {
	case rcodeSuccess:
		var records []string
		for _, a := range body.Answer {
			if a.Type != typeTXT {
				continue
			}
			// Data is kept verbatim, quotes included; stripping them
			// is the record selector's job.
			records = append(records, a.Data)
		}
		if len(records) == 0 {
			return TXT{Status: StatusNoAnswer}, nil
		}
		return TXT{Status: StatusOK, Records: records}, nil
	case rcodeNXDomain:
		return TXT{Status: StatusNXDomain}, nil
	case rcodeServFail:
		return TXT{Status: StatusServFail}, nil
	default:
		// Other RCODEs (REFUSED, NOTIMP, ...) are server-side failures.
		return TXT{Status: StatusServFail}, nil
	}
}
