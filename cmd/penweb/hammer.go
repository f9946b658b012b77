package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexcolls/penweb/internal/config"
	"github.com/alexcolls/penweb/internal/domain"
	"github.com/alexcolls/penweb/internal/logging"
	"github.com/alexcolls/penweb/internal/notify"
	"github.com/alexcolls/penweb/internal/probe"
)

var (
	hammerInterval   time.Duration
	hammerMax        int
	hammerTimeout    time.Duration
	hammerCacheBust  bool
	hammerProfile    string
	hammerAuthorized bool
)

var hammerCmd = &cobra.Command{
	Use:   "hammer [url]",
	Short: "Probe a URL repeatedly until it blocks you",
	Long: `Hammer sends sequential GET requests with a rotating browser identity
and cache-busting query parameters, and keeps going until the target
answers with a blocking status (429, 403 or 503), the attempt limit is
reached, or you press Ctrl+C.

This is an offensive tool. Run it only against systems you own or have
explicit permission to test, and pass --authorized to confirm that.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHammer,
}

func init() {
	hammerCmd.Flags().DurationVar(&hammerInterval, "interval", time.Second, "pause between requests (0 = none)")
	hammerCmd.Flags().IntVar(&hammerMax, "max-attempts", 0, "stop after this many requests (0 = unlimited)")
	hammerCmd.Flags().DurationVar(&hammerTimeout, "timeout", 10*time.Second, "per-request timeout")
	hammerCmd.Flags().BoolVar(&hammerCacheBust, "cache-bust", true, "append random query parameters to dodge caches")
	hammerCmd.Flags().StringVar(&hammerProfile, "profile", "", "YAML run profile (flags override its values)")
	hammerCmd.Flags().BoolVar(&hammerAuthorized, "authorized", false, "confirm you have permission to test the target")
	rootCmd.AddCommand(hammerCmd)
}

func runHammer(cmd *cobra.Command, args []string) error {
	if !hammerAuthorized {
		color.Yellow("⚠ Test cancelled - authorization required")
		return errors.New("pass --authorized to confirm you may test this target")
	}

	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	target := ""
	interval := hammerInterval
	maxAttempts := hammerMax
	timeout := hammerTimeout
	cacheBust := hammerCacheBust
	var agents []string

	if hammerProfile != "" {
		p, err := config.LoadProfile(hammerProfile)
		if err != nil {
			return err
		}
		target = p.Target
		agents = p.UserAgents
		if !cmd.Flags().Changed("interval") {
			interval = p.Interval.Duration
		}
		if !cmd.Flags().Changed("max-attempts") {
			maxAttempts = p.MaxAttempts
		}
		if !cmd.Flags().Changed("timeout") {
			timeout = p.Timeout.Duration
		}
		if !cmd.Flags().Changed("cache-bust") && p.CacheBust != nil {
			cacheBust = *p.CacheBust
		}
	}
	if len(args) == 1 {
		target = args[0]
	}
	if target == "" {
		return errors.New("no target: pass a URL or set one in the profile")
	}

	checker := probe.NewHTTPChecker(timeout)
	checker.Identity = probe.NewIdentityPool(agents, cacheBust)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	maxLabel := "unlimited"
	if maxAttempts > 0 {
		maxLabel = strconv.Itoa(maxAttempts)
	}
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Starting probe on: %s\n", target)
	fmt.Printf("Interval: %s | Max attempts: %s | Cache busting: %v\n", interval, maxLabel, cacheBust)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println(strings.Repeat("=", 60))

	runner := probe.NewRunner(logger, checker, probe.RunConfig{
		Interval:    interval,
		MaxAttempts: maxAttempts,
		OnAttempt:   printAttempt,
	})
	summary, _, err := runner.Run(ctx, target)
	if err != nil {
		return err
	}
	if summary.Reason == domain.ReasonCancelled {
		color.Yellow("\n⚠ Interrupted by user")
	}

	printSummary(summary)

	if cfg.WebhookURL != "" {
		title, text := notify.FormatSummary(summary)
		notifiers := notify.Multi{notify.NewSlack(cfg.WebhookURL)}
		if err := notifiers.Send(context.Background(), title, text); err != nil {
			logger.Warn("notify_failed", zap.Error(err))
		}
	}
	return nil
}

func printAttempt(a domain.Attempt) {
	switch a.Outcome {
	case domain.OutcomeBlocked:
		color.Red("🚫 Request #%d: BLOCKED - Status %d", a.Index, a.StatusCode)
	case domain.OutcomeError:
		color.Red("✗ Request #%d: %s", a.Index, a.Err)
	case domain.OutcomeWarning:
		color.Yellow("⚠ Request #%d: Status %d (%.0fms)", a.Index, a.StatusCode, a.LatencyMS)
	default:
		color.Green("✓ Request #%d: Success (Status %d, %.0fms)", a.Index, a.StatusCode, a.LatencyMS)
	}
}

func printSummary(s domain.Summary) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("SUMMARY:")
	fmt.Printf("  Target:           %s\n", s.Target)
	fmt.Printf("  Total attempts:   %d\n", s.Attempts)
	fmt.Printf("  Successful:       %d\n", s.OK)
	fmt.Printf("  Warnings:         %d\n", s.Warnings)
	fmt.Printf("  Transport errors: %d\n", s.Errors)
	if s.Blocked > 0 {
		fmt.Printf("  Blocked:          %s\n", color.RedString("Yes"))
	} else {
		fmt.Printf("  Blocked:          %s\n", color.GreenString("No"))
	}
	if s.FinalStatus != 0 {
		fmt.Printf("  Final status:     %d\n", s.FinalStatus)
	}
	fmt.Printf("  Stopped because:  %s\n", s.Reason)
	fmt.Printf("  Duration:         %s\n", s.Duration().Round(time.Millisecond))
	fmt.Println(strings.Repeat("=", 50))
}
