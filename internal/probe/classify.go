package probe

import (
	"net/http"

	"github.com/alexcolls/penweb/internal/domain"
)

// Statuses that mean the target is actively refusing us. Any of these
// ends a probe run.
var blockedStatus = map[int]struct{}{
	http.StatusTooManyRequests:    {},
	http.StatusForbidden:          {},
	http.StatusServiceUnavailable: {},
}

// Classify maps a response (or its absence) to an outcome. Transport
// failures and non-blocked error statuses do not terminate a run; only
// the blocked set does.
func Classify(statusCode int, err error) domain.Outcome {
	switch {
	case err != nil:
		return domain.OutcomeError
	case isBlockedStatus(statusCode):
		return domain.OutcomeBlocked
	case statusCode >= 200 && statusCode < 300:
		return domain.OutcomeOK
	default:
		return domain.OutcomeWarning
	}
}

func isBlockedStatus(code int) bool {
	_, ok := blockedStatus[code]
	return ok
}
