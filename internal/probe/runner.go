package probe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alexcolls/penweb/internal/domain"
)

// RunConfig controls a probe run. Interval spaces the starts of
// consecutive attempts (0 means no pacing). MaxAttempts of 0 runs
// unbounded until blocked or cancelled. OnAttempt, when set, is called
// with each recorded attempt in order.
type RunConfig struct {
	Interval    time.Duration
	MaxAttempts int
	OnAttempt   func(domain.Attempt)
}

// Runner drives a sequential probe run against one target: validate,
// pace, request, classify, repeat until a terminal condition.
type Runner struct {
	log     *zap.Logger
	checker Checker
	cfg     RunConfig
}

func NewRunner(log *zap.Logger, checker Checker, cfg RunConfig) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log, checker: checker, cfg: cfg}
}

// Run probes the target until it is blocked, the attempt budget is
// spent, or ctx is cancelled. The target is validated before any request
// is issued; an invalid URL returns ErrInvalidTarget and no attempts.
// Cancellation is observed between attempts only: a request already in
// flight finishes (or hits the client timeout) and its result is
// recorded. The returned summary and attempt list are complete for every
// termination reason.
func (r *Runner) Run(ctx context.Context, target string) (domain.Summary, []domain.Attempt, error) {
	normalized, err := domain.ParseTarget(target)
	if err != nil {
		return domain.Summary{}, nil, err
	}

	runID := uuid.NewString()
	started := time.Now().UTC()
	lim := rate.NewLimiter(rate.Every(r.cfg.Interval), 1)

	var (
		attempts    []domain.Attempt
		reason      domain.Reason
		finalStatus int
		ok, warn    int
		blocked     int
		errs        int
	)

	r.log.Info("probe_run_started",
		zap.String("run_id", runID),
		zap.String("target", normalized),
		zap.Duration("interval", r.cfg.Interval),
		zap.Int("max_attempts", r.cfg.MaxAttempts),
	)

	for {
		if err := lim.Wait(ctx); err != nil {
			reason = domain.ReasonCancelled
			break
		}

		res := r.checker.Check(context.WithoutCancel(ctx), normalized)
		att := domain.Attempt{
			Index:      len(attempts) + 1,
			StatusCode: res.StatusCode,
			LatencyMS:  res.LatencyMS,
			Outcome:    res.Outcome,
			UserAgent:  res.UserAgent,
			CacheQuery: res.CacheQuery,
			At:         time.Now().UTC(),
		}
		if res.Outcome == domain.OutcomeError {
			att.Err = res.Message
		}
		attempts = append(attempts, att)

		switch res.Outcome {
		case domain.OutcomeOK:
			ok++
		case domain.OutcomeWarning:
			warn++
		case domain.OutcomeBlocked:
			blocked++
		case domain.OutcomeError:
			errs++
		}
		if res.StatusCode != 0 {
			finalStatus = res.StatusCode
		}

		logAttempt := r.log.Info
		if res.Outcome == domain.OutcomeBlocked || res.Outcome == domain.OutcomeError {
			logAttempt = r.log.Warn
		}
		logAttempt("probe_attempt",
			zap.String("run_id", runID),
			zap.Int("index", att.Index),
			zap.Int("status", att.StatusCode),
			zap.Float64("latency_ms", att.LatencyMS),
			zap.String("outcome", string(att.Outcome)),
			zap.String("message", res.Message),
		)
		if r.cfg.OnAttempt != nil {
			r.cfg.OnAttempt(att)
		}

		if res.Outcome == domain.OutcomeBlocked {
			reason = domain.ReasonBlocked
			break
		}
		if r.cfg.MaxAttempts > 0 && len(attempts) >= r.cfg.MaxAttempts {
			reason = domain.ReasonMaxAttempts
			break
		}
	}

	sum := domain.Summary{
		RunID:       runID,
		Target:      normalized,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		Attempts:    len(attempts),
		OK:          ok,
		Warnings:    warn,
		Blocked:     blocked,
		Errors:      errs,
		FinalStatus: finalStatus,
		Reason:      reason,
	}
	r.log.Info("probe_run_finished",
		zap.String("run_id", runID),
		zap.String("target", normalized),
		zap.String("reason", string(reason)),
		zap.Int("attempts", sum.Attempts),
		zap.Int("ok", sum.OK),
		zap.Int("warnings", sum.Warnings),
		zap.Int("errors", sum.Errors),
		zap.Int("final_status", sum.FinalStatus),
		zap.Duration("duration", sum.Duration()),
	)
	return sum, attempts, nil
}
