// Package main is the entry point for the penweb CLI.
//
// penweb is a toolkit for testing how websites hold up under scrutiny:
// single reachability checks, sequential rate-limit probes, static site
// mirroring, and an HTTP API that runs batches of checks.
//
// Usage:
//
//	penweb ping https://example.com        # Check a URL once
//	penweb hammer https://example.com ...  # Probe until blocked (authorized targets only)
//	penweb mirror https://example.com      # Download page + assets
//	penweb serve                           # Run the batch check API
//	penweb validate --profile run.yaml     # Preflight env and profile
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// checkerAgent identifies single-shot checks (ping and the API); the
// hammer command rotates browser agents instead.
const checkerAgent = "penweb-checker/1.0"

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "penweb",
	Short: "Website resilience testing toolkit",
	Long: `penweb tests websites you are allowed to test.

It can check whether an endpoint answers, probe it repeatedly to see
when rate limiting kicks in, and mirror a page with its assets for
offline analysis.

The probing tools are offensive: run them only against systems you own
or have explicit written permission to test.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("penweb %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
