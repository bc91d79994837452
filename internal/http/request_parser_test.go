package http

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"finbook/internal/core"
	"finbook/internal/period"
)

func TestParseAccounts(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantAll bool
		wantIDs []int64
		wantErr bool
	}{
		{"absent means all", "", true, nil, false},
		{"explicit all", "accounts=all", true, nil, false},
		{"single id", "accounts=3", false, []int64{3}, false},
		{"id list", "accounts=1,2,5", false, []int64{1, 2, 5}, false},
		{"list with spaces", "accounts=1,%202", false, []int64{1, 2}, false},
		{"repeated ids collapse", "accounts=1,1,2,1", false, []int64{1, 2}, false},
		{"non-numeric", "accounts=1,x", false, nil, true},
		{"trailing comma", "accounts=1,", false, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/reports/categories?"+tt.query, nil)
			filter, err := parseAccounts(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAccounts: %v", err)
			}
			if filter.All() != tt.wantAll {
				t.Errorf("All() = %v, want %v", filter.All(), tt.wantAll)
			}
			ids := filter.IDs()
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("IDs() = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("IDs() = %v, want %v", ids, tt.wantIDs)
				}
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/reports/categories", nil)
	p, err := parsePeriod(r)
	if err != nil || p != period.Month {
		t.Errorf("default period = %q, %v; want month", p, err)
	}

	r = httptest.NewRequest("GET", "/api/reports/categories?period=year", nil)
	p, err = parsePeriod(r)
	if err != nil || p != period.Year {
		t.Errorf("period=year gave %q, %v", p, err)
	}

	r = httptest.NewRequest("GET", "/api/reports/categories?period=decade", nil)
	if _, err = parsePeriod(r); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"limit=5", 5},
		{"limit=0", 0},
		{"limit=-2", 0},
		{"limit=abc", 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/reports/top-categories?"+tc.query, nil)
		if got := parseLimit(r); got != tc.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
}

func TestDecodeBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/api/accounts", strings.NewReader(`{"name":"checking"}`))
	var p payload
	if err := decodeBody(r, &p); err != nil || p.Name != "checking" {
		t.Errorf("decodeBody = %+v, %v", p, err)
	}

	r = httptest.NewRequest("POST", "/api/accounts", strings.NewReader(`{"name":"x","bogus":1}`))
	if err := decodeBody(r, &payload{}); err == nil {
		t.Error("unknown fields should be rejected")
	}

	r = httptest.NewRequest("POST", "/api/accounts", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	if err := decodeBody(r, &payload{}); err == nil {
		t.Error("trailing data should be rejected")
	}

	r = httptest.NewRequest("POST", "/api/accounts", strings.NewReader(`not json`))
	if err := decodeBody(r, &payload{}); err == nil {
		t.Error("malformed JSON should be rejected")
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest("DELETE", "/api/transactions/7", nil)
	r.SetPathValue("id", "7")
	id, err := pathID(r)
	if err != nil || id != 7 {
		t.Errorf("pathID = %d, %v", id, err)
	}

	for _, bad := range []string{"", "abc", "0", "-3"} {
		r := httptest.NewRequest("DELETE", "/api/transactions/x", nil)
		r.SetPathValue("id", bad)
		if _, err := pathID(r); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("pathID(%q) expected ErrNotFound, got %v", bad, err)
		}
	}
}
