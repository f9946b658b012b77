package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/alexcolls/penweb/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a message out to every configured notifier and reports
// all failures together.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var errs error
	for _, n := range m {
		if n == nil {
			continue
		}
		errs = multierr.Append(errs, n.Send(ctx, title, text))
	}
	return errs
}

// FormatSummary renders a finished probe run as a notification.
func FormatSummary(s domain.Summary) (title, text string) {
	switch s.Reason {
	case domain.ReasonBlocked:
		title = "Probe blocked: " + s.Target
	case domain.ReasonCancelled:
		title = "Probe cancelled: " + s.Target
	default:
		title = "Probe finished: " + s.Target
	}
	text = fmt.Sprintf("attempts=%d ok=%d warnings=%d errors=%d final_status=%d duration=%s",
		s.Attempts, s.OK, s.Warnings, s.Errors, s.FinalStatus,
		s.Duration().Round(time.Millisecond))
	return title, text
}
