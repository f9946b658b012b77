package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/alexcolls/penweb/internal/domain"
	"github.com/alexcolls/penweb/internal/httpapi/middleware"
	"github.com/alexcolls/penweb/internal/probe"
)

type Server struct {
	Logger  *zap.Logger
	Checker probe.Checker
	// DNS classifies hosts on transport failures; swappable for tests.
	DNS func(ctx context.Context, host string) probe.DNSStatus
}

func NewServer(l *zap.Logger, c probe.Checker) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Checker: c, DNS: probe.CheckDNS}
}

// RouterOptions carries the middleware knobs from config. Zero values
// leave the API open and unthrottled.
type RouterOptions struct {
	APIKeys        []string
	RPM            int
	Burst          int
	AllowedOrigins []string
}

func (s *Server) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
		}))
	} else {
		r.Use(cors.AllowAll().Handler)
	}
	r.Use(middleware.RateLimit(opts.RPM, opts.Burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireKey(opts.APIKeys))
		pr.Post("/api/checks", s.handleChecks)
	})

	return r
}

type checkRequest struct {
	Items []json.RawMessage `json:"items"`
}

type checkResult struct {
	ID             string  `json:"id"`
	URL            string  `json:"url"`
	StatusCode     int     `json:"status_code"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	CheckedAt      string  `json:"checked_at"`
}

type checkFailure struct {
	ID    string `json:"id,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

type checkResponse struct {
	TotalProcessed int            `json:"total_processed"`
	Successful     int            `json:"successful"`
	Failed         int            `json:"failed"`
	Results        []checkResult  `json:"results"`
	Failures       []checkFailure `json:"failures,omitempty"`
}

// handleChecks runs every submitted item synchronously and reports the
// batch as a whole: 200 when everything succeeded, 207 when any item
// failed. Success means the target answered at the transport level; the
// HTTP status is reported as-is, whatever it was.
func (s *Server) handleChecks(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no items"})
		return
	}

	resp := checkResponse{
		TotalProcessed: len(req.Items),
		Results:        []checkResult{},
	}
	for _, raw := range req.Items {
		inst, err := ParseInstruction(raw)
		if err != nil {
			resp.Failed++
			resp.Failures = append(resp.Failures, checkFailure{ID: inst.ID, URL: inst.URL, Error: err.Error()})
			s.Logger.Warn("check_rejected", zap.String("id", inst.ID), zap.String("url", inst.URL), zap.Error(err))
			continue
		}
		if inst.Action != ActionPing {
			resp.Failed++
			resp.Failures = append(resp.Failures, checkFailure{
				ID: inst.ID, URL: inst.URL,
				Error: fmt.Sprintf("unsupported action %q: only ping runs through the API", inst.Action),
			})
			continue
		}

		res := s.Checker.Check(r.Context(), inst.URL)
		if res.Outcome == domain.OutcomeError {
			reason := res.Message
			if host := extractHost(inst.URL); host != "" {
				dns := s.DNS(r.Context(), host)
				reason = fmt.Sprintf("%s dns=%s", res.Message, dns.Class)
				s.Logger.Info("dns_check",
					zap.String("host", dns.Host),
					zap.String("class", string(dns.Class)),
					zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
					zap.Strings("nameservers", dns.Nameservers),
					zap.String("cname", dns.CNAME),
					zap.String("resolver_error", dns.ResolverError),
				)
			}
			resp.Failed++
			resp.Failures = append(resp.Failures, checkFailure{ID: inst.ID, URL: inst.URL, Error: reason})
			s.Logger.Warn("check_failed",
				zap.String("id", inst.ID),
				zap.String("url", inst.URL),
				zap.String("reason", reason),
			)
			continue
		}

		resp.Successful++
		resp.Results = append(resp.Results, checkResult{
			ID:             inst.ID,
			URL:            inst.URL,
			StatusCode:     res.StatusCode,
			ResponseTimeMS: res.LatencyMS,
			CheckedAt:      time.Now().UTC().Format(time.RFC3339),
		})
		s.Logger.Info("check_done",
			zap.String("id", inst.ID),
			zap.String("url", inst.URL),
			zap.Int("status", res.StatusCode),
			zap.Float64("latency_ms", res.LatencyMS),
		)
	}

	code := http.StatusOK
	if resp.Failed > 0 {
		code = http.StatusMultiStatus
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// extractHost pulls the hostname from a URL string
func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
