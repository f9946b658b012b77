package main

import (
	"errors"
	"net/url"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexcolls/penweb/internal/config"
	"github.com/alexcolls/penweb/internal/domain"
	"github.com/alexcolls/penweb/internal/logging"
	"github.com/alexcolls/penweb/internal/probe"
)

var pingCmd = &cobra.Command{
	Use:   "ping <url>",
	Short: "Check whether a URL answers",
	Long: `Ping sends a single GET request and reports the status code and
latency. Transport failures are retried a couple of times and, when the
target stays unreachable, the DNS state of its host is classified so you
can tell a dead domain from a dead server.`,
	Args: cobra.ExactArgs(1),
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	target, err := domain.ParseTarget(args[0])
	if err != nil {
		return err
	}

	base := probe.NewHTTPChecker(cfg.HTTPTimeout)
	base.Agent = checkerAgent
	checker := &probe.RetryChecker{
		Inner:    base,
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	}

	ctx := cmd.Context()
	res := checker.Check(ctx, target)

	if res.Outcome == domain.OutcomeError {
		dns := probe.CheckDNS(ctx, hostOf(target))
		color.Red("✗ %s unreachable: %s (dns=%s)", target, res.Message, dns.Class)
		logger.Warn("ping_failed",
			zap.String("url", target),
			zap.String("error", res.Message),
			zap.String("dns", string(dns.Class)),
		)
		return errors.New("target unreachable")
	}

	switch res.Outcome {
	case domain.OutcomeBlocked:
		color.Red("🚫 %s blocked us: status %d (%.0fms)", target, res.StatusCode, res.LatencyMS)
	case domain.OutcomeWarning:
		color.Yellow("⚠ %s answered with status %d (%.0fms)", target, res.StatusCode, res.LatencyMS)
	default:
		color.Green("✓ %s is up: status %d (%.0fms)", target, res.StatusCode, res.LatencyMS)
	}
	logger.Info("ping_done",
		zap.String("url", target),
		zap.Int("status", res.StatusCode),
		zap.Float64("latency_ms", res.LatencyMS),
		zap.String("outcome", string(res.Outcome)),
	)
	return nil
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return u.Hostname()
}
