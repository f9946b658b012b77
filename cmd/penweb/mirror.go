package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/alexcolls/penweb/internal/config"
	"github.com/alexcolls/penweb/internal/logging"
	"github.com/alexcolls/penweb/internal/mirror"
)

var (
	mirrorOut     string
	mirrorVerbose bool
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror <url>",
	Short: "Download a page and its assets for offline analysis",
	Long: `Mirror fetches a page, saves its stylesheets, scripts and the
resources referenced from CSS, extracts inline styles and scripts into
their own files, and rewrites the saved HTML to point at the local
copies.`,
	Args: cobra.ExactArgs(1),
	RunE: runMirror,
}

func init() {
	mirrorCmd.Flags().StringVar(&mirrorOut, "out", "", "output directory (default $OUTPUT_DIR/cloned_site)")
	mirrorCmd.Flags().BoolVarP(&mirrorVerbose, "verbose", "v", false, "print a line per downloaded asset instead of the spinner")
	rootCmd.AddCommand(mirrorCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	out := mirrorOut
	if out == "" {
		out = filepath.Join(cfg.OutputDir, "cloned_site")
	}

	fmt.Printf("Cloning website: %s\n", args[0])
	var bar *progressbar.ProgressBar
	if !mirrorVerbose {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("downloading assets"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
		)
	}

	var failures []string
	m := mirror.New(logger, out)
	m.OnAsset = func(assetURL, localPath string, err error) {
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", assetURL, err))
		}
		if mirrorVerbose {
			if err != nil {
				color.Red("  ✗ %s: %v", assetURL, err)
			} else {
				fmt.Printf("  ✓ %s -> %s\n", assetURL, localPath)
			}
			return
		}
		bar.Add(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := m.Clone(ctx, args[0])
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return err
	}

	color.Green("✓ Cloned %d files to %s", report.Files, report.OutputDir)
	fmt.Printf("  Assets:         %d\n", report.Assets)
	fmt.Printf("  Inline styles:  %d\n", report.InlineStyles)
	fmt.Printf("  Inline scripts: %d\n", report.InlineScripts)
	if report.Failed > 0 {
		color.Yellow("⚠ %d assets failed to download:", report.Failed)
		for _, f := range failures {
			color.Yellow("  ✗ %s", f)
		}
	}
	return nil
}
