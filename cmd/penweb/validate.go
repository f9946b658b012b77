package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/alexcolls/penweb/internal/config"
	"github.com/alexcolls/penweb/internal/probe"
)

var validateProfile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check environment and profile before a run",
	Long: `Validate reads the environment the same way serve and hammer do,
flags anything suspicious, and optionally checks a YAML run profile.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateProfile, "profile", "", "YAML run profile to check")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ok := func(format string, a ...any) { color.Green("✔ "+format, a...) }
	warn := func(format string, a ...any) { color.Yellow("⚠ "+format, a...) }
	fail := func(format string, a ...any) { color.Red("✖ "+format, a...) }

	cfg := config.FromEnv()
	var problems error

	ok("ADDR=%s", cfg.Addr)

	if len(cfg.APIKeys) == 0 {
		warn("API_KEYS empty - the API will accept unauthenticated requests")
	} else {
		ok("API_KEYS set (%d keys)", len(cfg.APIKeys))
	}

	if cfg.LogDir == "" {
		warn("LOG_DIR empty - file logging disabled")
	} else {
		ok("LOG_DIR=%s", cfg.LogDir)
	}

	ok("OUTPUT_DIR=%s", cfg.OutputDir)
	ok("HTTP timeout %s, %d retries with %s backoff", cfg.HTTPTimeout, cfg.RetryAttempts, cfg.RetryBackoff)
	ok("public rate limit %d req/min (burst %d)", cfg.PublicRPM, cfg.PublicBurst)

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty - API allows any origin")
	} else {
		ok("ALLOWED_ORIGINS set (%d origins)", len(cfg.AllowedOrigins))
	}

	if cfg.WebhookURL != "" {
		u, err := url.Parse(cfg.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = multierr.Append(problems, fmt.Errorf("WEBHOOK_URL %q is not a valid http(s) URL", cfg.WebhookURL))
		} else {
			ok("WEBHOOK_URL set")
		}
	}

	if validateProfile != "" {
		p, err := config.LoadProfile(validateProfile)
		if err != nil {
			problems = multierr.Append(problems, fmt.Errorf("profile %s: %w", validateProfile, err))
		} else {
			ok("profile %s valid", validateProfile)
			fmt.Printf("    target:       %s\n", p.Target)
			fmt.Printf("    interval:     %s\n", p.Interval.Duration)
			if p.MaxAttempts > 0 {
				fmt.Printf("    max attempts: %d\n", p.MaxAttempts)
			} else {
				fmt.Printf("    max attempts: unlimited\n")
			}
			fmt.Printf("    timeout:      %s\n", p.Timeout.Duration)
			pool := probe.NewIdentityPool(p.UserAgents, *p.CacheBust)
			if len(p.UserAgents) == 0 {
				fmt.Printf("    user agents:  %d (built-in pool)\n", len(pool.Agents()))
			} else {
				fmt.Printf("    user agents:  %d\n", len(pool.Agents()))
			}
		}
	}

	if problems != nil {
		for _, e := range multierr.Errors(problems) {
			fail("%v", e)
		}
		return errors.New("validation failed")
	}
	ok("preflight passed")
	return nil
}
