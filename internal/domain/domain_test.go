package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"https", "https://example.com", "https://example.com", true},
		{"http with path", "http://example.com/a/b?x=1", "http://example.com/a/b?x=1", true},
		{"surrounding space", "  https://example.com  ", "https://example.com", true},
		{"host without dot", "http://localhost:8080", "http://localhost:8080", true},
		{"empty", "", "", false},
		{"no scheme", "example.com", "", false},
		{"ftp scheme", "ftp://example.com", "", false},
		{"scheme only", "https://", "", false},
		{"not a url", "not a url at all", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTarget(tc.in)
			if tc.ok {
				if err != nil {
					t.Fatalf("want ok, got error: %v", err)
				}
				if got != tc.want {
					t.Fatalf("want %q, got %q", tc.want, got)
				}
				return
			}
			if err == nil {
				t.Fatalf("want error, got %q", got)
			}
			if !errors.Is(err, ErrInvalidTarget) {
				t.Fatalf("want ErrInvalidTarget, got %v", err)
			}
		})
	}
}

func TestSummary_Duration(t *testing.T) {
	s := Summary{
		StartedAt:  time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 8, 18, 12, 0, 5, 0, time.UTC),
	}
	if got := s.Duration(); got != 5*time.Second {
		t.Fatalf("want 5s, got %v", got)
	}
}
