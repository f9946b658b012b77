package probe

import (
	"context"
	"time"

	"github.com/alexcolls/penweb/internal/domain"
)

// RetryChecker re-issues a check after transport failures. An HTTP
// status of any kind is a final answer and is returned as-is; only
// attempts that never got a response are worth repeating.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last CheckResult
	for i := 0; i < attempts; i++ {
		last = r.Inner.Check(ctx, target)
		if last.Outcome != domain.OutcomeError {
			return last
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(r.Backoff):
			}
		}
	}
	// annotate message so you can see it was a retry series
	last.Message = last.Message + " (after retries)"
	return last
}
