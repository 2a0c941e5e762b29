package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"imgminify/internal/command"
	"imgminify/internal/config"
	"imgminify/internal/executor"
	"imgminify/internal/fetcher"
	"imgminify/internal/finder"
	"imgminify/internal/logger"
	"imgminify/internal/minify"
	"imgminify/internal/registry"
	"imgminify/internal/resolver"
	"imgminify/internal/statistics"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	toDir        string
	basePath     string
	minifierName string
	optionFlags  []string
	binDir       string
	verbose      bool
	quiet        bool
	version      string
	buildTime    string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "imgminify [patterns...]",
	Short: "Batch-compress images with external format-specific tools",
	Long: `imgminify compresses image files by driving external compressor
binaries (optipng, jpegtran, gifsicle, svgo and friends), downloading
any missing compressor from its binary repository on first use.

Features:
- Per-format compressor defaults (png, jpg, gif, svg)
- Explicit minifier override with pass-through options
- Automatic compressor download with platform fallbacks
- Source directory structure preservation under the target
- Per-file success/failure report for build pipelines`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMinify(args)
	},
}

// listCmd prints the known compressors.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known compressors and their format defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList()
	},
}

// fetchCmd pre-downloads compressor binaries, useful for warming CI images.
var fetchCmd = &cobra.Command{
	Use:   "fetch <compressor>...",
	Short: "Download compressor binaries ahead of a build",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(args)
	},
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("imgminify %s (built %s)\n", orUnknown(version), orUnknown(buildTime))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.imgminify.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&binDir, "bin-dir", "", "directory for downloaded compressor binaries")

	rootCmd.Flags().StringVar(&toDir, "to", "", "target directory for minified files")
	rootCmd.Flags().StringVar(&basePath, "base", "", "base path for preserving source directory structure")
	rootCmd.Flags().StringVar(&minifierName, "minifier", "", "compressor to use for every file (default: by extension)")
	rootCmd.Flags().StringArrayVar(&optionFlags, "option", nil, "minifier option as flag or flag=value (repeatable, ordered)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig loads configuration file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// runMinify executes a batch minification run.
func runMinify(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)

	files, err := finder.NewGlobFinder().Find(cfg.Sources)
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}
	if len(files) == 0 {
		log.Warn("no files matched the source patterns")
		return nil
	}

	jobs, err := minify.BuildJobs(files, cfg.To, cfg.Base)
	if err != nil {
		return err
	}

	stats := statistics.New()
	orch := newOrchestrator(cfg, log, stats)
	if cfg.Minifier != "" {
		orch.SetMinifier(cfg.Minifier, runOptions(cfg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := orch.Run(ctx, jobs, cfg.To)
	if err != nil {
		return fmt.Errorf("minification failed: %w", err)
	}

	if !quiet {
		printSummary(result, stats)
	}

	if !result.Success() {
		return fmt.Errorf("%d of %d files failed", len(result.Failed), result.Total())
	}
	return nil
}

// runList prints the compressor table.
func runList() error {
	bold := color.New(color.Bold)
	for _, name := range registry.Names() {
		spec, _ := registry.Lookup(name)
		download := "auto-download"
		if spec.RepoURL == "" {
			download = "system PATH only"
		}
		bold.Print(name)
		fmt.Printf(" (%s)\n", download)
	}
	return nil
}

// runFetch resolves each named compressor, downloading it when absent.
func runFetch(names []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg)
	res := newResolver(cfg, log)

	for _, name := range names {
		if !registry.Known(name) {
			return fmt.Errorf("%w: %s", minify.ErrInvalidMinifier, name)
		}
		path, err := res.Resolve(name)
		if err != nil {
			return err
		}
		color.Green("✓ %s -> %s", name, path)
	}
	return nil
}

// newOrchestrator wires the production collaborators together.
func newOrchestrator(cfg *config.Config, log *logrus.Logger, stats *statistics.Statistics) *minify.Orchestrator {
	builder := command.NewBuilder()
	builder.VendorDir = cfg.VendorDir

	exe := executor.NewCommandExecutor(cfg.Processing.CommandTimeout)
	return minify.NewOrchestrator(builder, newResolver(cfg, log), exe, log, stats)
}

func newResolver(cfg *config.Config, log *logrus.Logger) *resolver.Resolver {
	dir := cfg.BinDir
	if dir == "" {
		dir = resolver.DefaultBinDir()
	}
	return resolver.New(dir, resolver.SystemPathLookup{}, fetcher.NewHTTPFetcher(), log)
}

// runOptions merges config-file options (sorted) with CLI --option flags
// (user order); CLI options come last so they win on conflicts.
func runOptions(cfg *config.Config) command.Options {
	opts := command.OptionsFromMap(cfg.MinifierOptions)
	for _, raw := range optionFlags {
		flag, value, _ := strings.Cut(raw, "=")
		opts = append(opts, command.Option{Flag: flag, Value: value})
	}
	return opts
}

// printSummary writes the colored end-of-run report.
func printSummary(result *minify.BatchResult, stats *statistics.Statistics) {
	fmt.Println()
	if result.Success() {
		color.Green("%s", stats.Summary())
	} else {
		color.Red("%s", stats.Summary())
		for _, e := range stats.Errors {
			color.Red("  %s: %s", e.FilePath, e.Message)
		}
	}
	fmt.Printf("Destination: %s\n", result.Destination)
}

// loadConfig loads configuration and applies CLI overrides.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Sources = args
	}
	if toDir != "" {
		cfg.To = toDir
	}
	if basePath != "" {
		cfg.Base = basePath
	}
	if minifierName != "" {
		cfg.Minifier = minifierName
	}
	if binDir != "" {
		cfg.BinDir = binDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger configures and returns a logger.
func setupLogger(cfg *config.Config) *logrus.Logger {
	logCfg := cfg.Logging
	logCfg.Console = !quiet

	if verbose {
		logCfg.Level = "debug"
	}
	if quiet {
		logCfg.Level = "error"
	}

	log, err := logger.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed, using defaults: %v\n", err)
		return logrus.New()
	}
	return log
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
