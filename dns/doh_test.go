package dns

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func dohServer(t *testing.T, handler http.HandlerFunc) *DoHClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewDoHClient(DoHConfig{Endpoint: srv.URL})
}

func TestDoHClientOK(t *testing.T) {
	client := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "example.com" {
			t.Errorf("name = %q, want example.com", got)
		}
		if got := r.URL.Query().Get("type"); got != "TXT" {
			t.Errorf("type = %q, want TXT", got)
		}
		if got := r.Header.Get("Accept"); got != "application/dns-json" {
			t.Errorf("accept = %q", got)
		}
		w.Write([]byte(`{
			"Status": 0,
			"Answer": [
				{"name": "example.com.", "type": 16, "data": "\"v=spf1 -all\""},
				{"name": "example.com.", "type": 46, "data": "sig"},
				{"name": "example.com.", "type": 16, "data": "other txt"}
			]
		}`))
	})

	txt, err := client.LookupTXT(context.Background(), "example.com.")
	if err != nil {
		t.Fatal(err)
	}
	if txt.Status != StatusOK {
		t.Fatalf("status = %q, want %q", txt.Status, StatusOK)
	}
	if len(txt.Records) != 2 {
		t.Fatalf("got %d records, want 2 (non-TXT answers must be dropped)", len(txt.Records))
	}
	// Quotes stay on the wire value; stripping is the record selector's job.
	if txt.Records[0] != `"v=spf1 -all"` {
		t.Errorf("record = %q", txt.Records[0])
	}
}

func TestDoHClientStatuses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Status
	}{
		{"nxdomain", `{"Status": 3}`, StatusNXDomain},
		{"servfail", `{"Status": 2}`, StatusServFail},
		{"refused maps to servfail", `{"Status": 5}`, StatusServFail},
		{"success without answers", `{"Status": 0, "Answer": []}`, StatusNoAnswer},
		{"success with only rrsig", `{"Status": 0, "Answer": [{"type": 46, "data": "sig"}]}`, StatusNoAnswer},
		{"garbage body", `{{{`, StatusTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			txt, err := client.LookupTXT(context.Background(), "example.com")
			if err != nil {
				t.Fatal(err)
			}
			if txt.Status != tt.want {
				t.Errorf("status = %q, want %q", txt.Status, tt.want)
			}
		})
	}
}

func TestDoHClientHTTPError(t *testing.T) {
	client := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	txt, err := client.LookupTXT(context.Background(), "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if txt.Status != StatusTransportError {
		t.Errorf("status = %q, want %q", txt.Status, StatusTransportError)
	}
}

func TestDoHClientCancellation(t *testing.T) {
	client := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status": 0}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.LookupTXT(ctx, "example.com")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
