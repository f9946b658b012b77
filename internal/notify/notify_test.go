package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/alexcolls/penweb/internal/domain"
)

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Send(ctx context.Context, title, text string) error {
	s.calls++
	return s.err
}

func TestMulti_SendsToAllAndCollectsErrors(t *testing.T) {
	okN := &stubNotifier{}
	bad1 := &stubNotifier{err: errors.New("boom one")}
	bad2 := &stubNotifier{err: errors.New("boom two")}

	m := Multi{okN, nil, bad1, bad2}
	err := m.Send(context.Background(), "t", "x")
	if err == nil {
		t.Fatalf("want combined error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("want 2 errors collected, got %d: %v", got, err)
	}
	if okN.calls != 1 || bad1.calls != 1 || bad2.calls != 1 {
		t.Fatalf("every notifier must be tried: %d %d %d", okN.calls, bad1.calls, bad2.calls)
	}
}

func TestFormatSummary(t *testing.T) {
	base := domain.Summary{
		Target:      "https://example.com",
		StartedAt:   time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC),
		FinishedAt:  time.Date(2025, 8, 18, 12, 0, 10, 0, time.UTC),
		Attempts:    12,
		OK:          10,
		Warnings:    1,
		Errors:      0,
		FinalStatus: 429,
	}

	cases := []struct {
		reason    domain.Reason
		wantTitle string
	}{
		{domain.ReasonBlocked, "Probe blocked: https://example.com"},
		{domain.ReasonCancelled, "Probe cancelled: https://example.com"},
		{domain.ReasonMaxAttempts, "Probe finished: https://example.com"},
	}
	for _, tc := range cases {
		s := base
		s.Reason = tc.reason
		title, text := FormatSummary(s)
		if title != tc.wantTitle {
			t.Fatalf("want title %q, got %q", tc.wantTitle, title)
		}
		if !strings.Contains(text, "attempts=12") || !strings.Contains(text, "final_status=429") {
			t.Fatalf("text missing counts: %q", text)
		}
	}
}
