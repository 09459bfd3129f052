package dns

import (
	"context"
	"testing"
)

func TestStatusVoid(t *testing.T) {
	tests := []struct {
		status Status
		void   bool
	}{
		{StatusOK, false},
		{StatusNXDomain, true},
		{StatusNoAnswer, true},
		{StatusServFail, false},
		{StatusTransportError, false},
	}

	for _, tt := range tests {
		if got := tt.status.Void(); got != tt.void {
			t.Errorf("Status(%q).Void() = %v, want %v", tt.status, got, tt.void)
		}
	}
}

func TestEnsureAbsolute(t *testing.T) {
	if got := ensureAbsolute("example.com"); got != "example.com." {
		t.Errorf("ensureAbsolute(example.com) = %q", got)
	}
	if got := ensureAbsolute("example.com."); got != "example.com." {
		t.Errorf("ensureAbsolute(example.com.) = %q", got)
	}
}

func TestMockResolver(t *testing.T) {
	r := MockResolver{
		TXT: map[string][]string{
			"example.com.": {"v=spf1 -all", "other"},
			"empty.com.":   {},
		},
		NXDomain:    []string{"gone.example.com."},
		Fail:        []string{"broken.example.com."},
		Unreachable: []string{"dark.example.com."},
	}

	tests := []struct {
		name       string
		wantStatus Status
		wantCount  int
	}{
		{"example.com", StatusOK, 2},
		{"example.com.", StatusOK, 2},
		{"empty.com", StatusNoAnswer, 0},
		{"unlisted.com", StatusNoAnswer, 0},
		{"gone.example.com", StatusNXDomain, 0},
		{"broken.example.com", StatusServFail, 0},
		{"dark.example.com", StatusTransportError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txt, err := r.LookupTXT(context.Background(), tt.name)
			if err != nil {
				t.Fatalf("LookupTXT(%q) error: %v", tt.name, err)
			}
			if txt.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", txt.Status, tt.wantStatus)
			}
			if len(txt.Records) != tt.wantCount {
				t.Errorf("got %d records, want %d", len(txt.Records), tt.wantCount)
			}
		})
	}
}

func TestMockResolverCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := MockResolver{TXT: map[string][]string{"example.com.": {"v=spf1 -all"}}}
	txt, err := r.LookupTXT(ctx, "example.com")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if txt.Status != StatusTransportError {
		t.Errorf("status = %q, want %q", txt.Status, StatusTransportError)
	}
}
