package validator

import (
	"testing"

	"github.com/brc20x/indexer/chainerr"
)

func TestNormalizeTicker(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr chainerr.ErrorCode
	}{
		{name: "lowercase upcased", raw: "ordi", want: "ORDI"},
		{name: "trims whitespace", raw: "  sats ", want: "SATS"},
		{name: "already upper", raw: "PEPE", want: "PEPE"},
		{name: "empty rejected", raw: "", wantErr: chainerr.InvalidTicker},
		{name: "only whitespace rejected", raw: "   ", wantErr: chainerr.InvalidTicker},
		{name: "eight runes accepted", raw: "abcdefgh", want: "ABCDEFGH"},
		{name: "over length rejected", raw: "abcdefghi", wantErr: chainerr.InvalidTicker},
		{name: "underscore accepted", raw: "sat_20", want: "SAT_20"},
		{name: "embedded control char rejected", raw: "AB\tCD", wantErr: chainerr.InvalidTicker},
		{name: "punctuation rejected", raw: "ab-cd", wantErr: chainerr.InvalidTicker},
		{name: "emoji rejected", raw: "ab🚀cd", wantErr: chainerr.InvalidTicker},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeTicker(tc.raw)
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %s, got ticker %q", tc.wantErr, got)
				}
				if err.Code != tc.wantErr {
					t.Fatalf("expected code %s, got %s", tc.wantErr, err.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeTickerCaseCollision(t *testing.T) {
	a, err := NormalizeTicker("ordi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NormalizeTicker("ORDI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected case-insensitive collision, got %q vs %q", a, b)
	}
}
