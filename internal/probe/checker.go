package probe

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/alexcolls/penweb/internal/domain"
)

// CheckResult holds the outcome of a single probe request.
//
// StatusCode is the HTTP status when a response was received; 0 for
// transport-level failures. Message carries the status line or the
// transport error text.
type CheckResult struct {
	StatusCode int            `json:"status_code,omitempty"`
	LatencyMS  float64        `json:"latency_ms"`
	Outcome    domain.Outcome `json:"outcome"`
	Message    string         `json:"message,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CacheQuery string         `json:"cache_query,omitempty"`
}

// Checker performs a single check against a target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}

// HTTPChecker issues a GET and classifies the response. When Identity is
// set, each request draws a fresh user agent and cache-busting query from
// the pool; otherwise Agent (if non-empty) is sent as the user agent.
type HTTPChecker struct {
	Client   *http.Client
	Identity *IdentityPool
	Agent    string
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()

	var id Identity
	u := target
	if h.Identity != nil {
		id = h.Identity.Next()
		if id.CacheQuery != "" {
			sep := "?"
			if strings.Contains(u, "?") {
				sep = "&"
			}
			u += sep + id.CacheQuery
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return CheckResult{
			Outcome:    domain.OutcomeError,
			Message:    err.Error(),
			UserAgent:  id.UserAgent,
			CacheQuery: id.CacheQuery,
		}
	}
	if id.UserAgent != "" {
		req.Header.Set("User-Agent", id.UserAgent)
		req.Header.Set("Accept", acceptAny)
	} else if h.Agent != "" {
		req.Header.Set("User-Agent", h.Agent)
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return CheckResult{
			LatencyMS:  latency,
			Outcome:    domain.OutcomeError,
			Message:    err.Error(),
			UserAgent:  id.UserAgent,
			CacheQuery: id.CacheQuery,
		}
	}
	defer resp.Body.Close()

	return CheckResult{
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
		Outcome:    Classify(resp.StatusCode, nil),
		Message:    resp.Status,
		UserAgent:  id.UserAgent,
		CacheQuery: id.CacheQuery,
	}
}
