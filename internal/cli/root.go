package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/codescope/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	verbose        bool
	quietFlag      bool
	watchFlag      bool
	ignorePatterns []string
)

// rootCmd gathers a project into a single context artifact.
var rootCmd = &cobra.Command{
	Use:   "codescope [path]",
	Short: "Consolidate a source tree into one context file",
	Long: `codescope walks a project, filters it down to the files worth reading,
and writes them into a single text artifact with a path header per file.
Optionally it also writes a JSON summary of each file's imports, functions
and classes.

Unchanged files are skipped on later runs when the checksum cache is enabled.

Configuration is read from codescope.{yaml,yml,json} in the project root
(or --config-file), overridden by CODESCOPE_* environment variables and flags.

Examples:
  # Gather the current directory into output/context.txt
  codescope

  # Gather another project, skipping unchanged files
  codescope ../shop --use-checksum --project-name shop

  # Also write a structural summary, compressed
  codescope --gather-js-summary summary.json --compress

  # Keep the artifact current while editing
  codescope --watch --use-checksum
`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file (default is codescope.yaml in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("project-name", "", "name used for the output subfolder and file")

	f := rootCmd.Flags()
	f.StringP("output", "o", config.DefaultOutputFilename, "output filename")
	f.String("output-folder", config.DefaultOutputFolder, "output folder")
	f.Bool("compress", false, "gzip the output artifacts")
	f.String("modified-after", "", "only include files modified after this date (YYYY-MM-DD or RFC 3339)")
	f.IntP("threads", "t", 0, "number of worker threads (default: number of CPUs)")
	f.StringArrayVar(&ignorePatterns, "ignore-pattern", nil, "additional ignore regex (repeatable)")
	f.Bool("use-checksum", false, "skip files unchanged since the last run")
	f.Bool("checksum-strict", true, "compare content fingerprints instead of modification times")
	f.String("gather-js-summary", "", "write a JSON structural summary to this file")
	f.Bool("respect-gitignore", false, "apply the project's root .gitignore")
	f.Bool("collapse-blank", false, "collapse runs of blank lines in the text output")
	f.BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	f.BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and gather incrementally")
}

// loadConfig loads configuration for the project named by args.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	probe := "."
	if len(args) > 0 {
		probe = args[0]
	}

	opts := []config.Option{
		config.WithFlags(cmd.Flags()),
		config.WithExtraIgnorePatterns(ignorePatterns),
	}
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}

	cfg, err := config.NewLoader(probe, opts...).Load()
	if err != nil {
		return nil, "", err
	}

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	root, err := cfg.ResolveRoot(arg)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if quietFlag {
		log.SetOutput(io.Discard)
	}

	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nInterrupted! Cancelling gather...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, root, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, root, verbose, quietFlag)
	if err != nil {
		return err
	}

	result, artifacts, err := p.gather(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("gather cancelled")
		}
		return err
	}
	p.announce(artifacts)

	if !watchFlag {
		return result.Err()
	}

	if err := result.Err(); err != nil {
		log.Printf("Warning: %v", err)
	}
	if !quietFlag {
		log.Println("Starting watch mode...")
	}

	// Blocks until cancelled
	if err := p.watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch mode failed: %w", err)
	}

	if !quietFlag {
		log.Println("Watch mode stopped")
	}
	return nil
}
