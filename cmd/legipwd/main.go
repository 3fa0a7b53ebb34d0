// Package main provides the CLI entrypoint for legipwd.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/oops"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/legipwd/internal/alphabet"
	"github.com/verte-zerg/legipwd/internal/config"
	"github.com/verte-zerg/legipwd/internal/errutil"
	"github.com/verte-zerg/legipwd/internal/format"
	"github.com/verte-zerg/legipwd/internal/generator"
	"github.com/verte-zerg/legipwd/internal/logging"
	"github.com/verte-zerg/legipwd/internal/model"
	"github.com/verte-zerg/legipwd/internal/stats"
	"github.com/verte-zerg/legipwd/internal/statsui"
)

const (
	appName          = "legipwd"
	defaultWorkers   = 1
	defaultColor     = "auto"
	defaultLogFormat = "text"

	codeCandidateRejected = "CANDIDATE_REJECTED"
)

var version = "0.3.0"

var (
	genWorkers     int
	genMaxAttempts int
	genSeed        int64
	genRecord      bool

	outColor    string
	outColumns  bool
	outNoBanner bool
	outProgress bool

	logFormat string
	verbose   bool

	statsSince       string
	statsLast        int
	statsInteractive bool

	fileCfg config.FileConfig
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// check already printed the reasons on stdout.
		if errutil.Code(err) != codeCandidateRejected {
			errutil.LogError(newLogger(), "command failed", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	fileCfg = config.FileConfig{}
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Generate legible passwords",
		Long:          "Generates 30 passwords of 13 characters without lookalike glyphs.\nThe first 6 characters hold a lower, upper, digit and special character,\nevery password starts with a letter and no character repeats.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerateCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format on stderr: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().IntVarP(&genWorkers, "workers", "t", defaultWorkers, "number of sampling workers")
	rootCmd.Flags().IntVar(&genMaxAttempts, "max-attempts", generator.DefaultMaxAttempts, "give up after this many candidates")
	rootCmd.Flags().Int64Var(&genSeed, "seed", 0, "seed for reproducible output (not for real passwords)")
	rootCmd.Flags().BoolVar(&genRecord, "record", false, "record run statistics (never passwords)")
	rootCmd.Flags().StringVar(&outColor, "color", defaultColor, "colorize by character class: auto, always or never")
	rootCmd.Flags().BoolVar(&outColumns, "columns", false, "lay passwords out in columns on a terminal")
	rootCmd.Flags().BoolVar(&outNoBanner, "no-banner", false, "skip the license banner")
	rootCmd.Flags().BoolVar(&outProgress, "progress", false, "show a progress bar on stderr")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadFileConfig is only called by generate and stats; `config` has to open
// even a broken file.
func loadFileConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return oops.
			Code("CONFIG_LOAD_FAILED").
			With("path", config.DefaultConfigPath()).
			Wrap(err)
	}
	fileCfg = cfg
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	return nil
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	if err := loadFileConfig(cmd); err != nil {
		return err
	}
	applyIntConfig(cmd, "workers", &genWorkers, fileCfg.Generate.Workers)
	applyIntConfig(cmd, "max-attempts", &genMaxAttempts, fileCfg.Generate.MaxAttempts)
	applyBoolConfig(cmd, "record", &genRecord, fileCfg.Generate.Record)
	applyStringConfig(cmd, "color", &outColor, fileCfg.Output.Color)
	applyBoolConfig(cmd, "columns", &outColumns, fileCfg.Output.Columns)
	applyBoolConfig(cmd, "progress", &outProgress, fileCfg.Output.Progress)
	if fileCfg.Output.Banner != nil && !cmd.Flags().Changed("no-banner") {
		outNoBanner = !*fileCfg.Output.Banner
	}

	cfg := model.Config{
		Workers:     genWorkers,
		MaxAttempts: genMaxAttempts,
		Seed:        genSeed,
		Record:      genRecord,
		Color:       outColor,
		Columns:     outColumns,
		Banner:      !outNoBanner,
		Progress:    outProgress,
		LogFormat:   logFormat,
		Verbose:     verbose,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger := newLogger()
	alpha := alphabet.Default()
	opts := []generator.Option{generator.WithMaxAttempts(cfg.MaxAttempts)}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, generator.WithSeed(cfg.Seed))
	}
	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.NewOptions(generator.DefaultBatchSize,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("generating"),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetRenderBlankState(true),
		)
		opts = append(opts, generator.WithProgress(func(p generator.Progress) {
			_ = bar.Set(p.Accepted)
		}))
	}
	sampler := generator.New(alpha, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	batch, err := sampler.SampleBatchParallel(ctx, generator.DefaultBatchSize, cfg.Workers)
	if err != nil {
		if bar != nil {
			_ = bar.Clear()
		}
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	logger.Debug("batch generated",
		"passwords", len(batch.Passwords),
		"attempts", batch.Stats.Attempts,
		"duplicates", batch.Stats.Duplicates,
		"acceptance", batch.Stats.AcceptanceRate(),
		"workers", batch.Stats.Workers,
		"duration", batch.Stats.Duration,
	)

	out := cmd.OutOrStdout()
	if cfg.Banner {
		if err := format.Banner(out, appName); err != nil {
			return err
		}
	}
	width, isTTY := terminalWidth(out)
	printerOpts := []format.PrinterOption{format.WithColor(useColor(cfg.Color, isTTY))}
	if cfg.Columns && isTTY {
		printerOpts = append(printerOpts, format.WithWidth(width))
	}
	if err := format.NewPrinter(out, alpha, printerOpts...).Print(batch.Passwords); err != nil {
		return err
	}

	if cfg.Record {
		if err := recordRun(ctx, config.DefaultDBPath(), startedAt, generator.DefaultBatchSize, batch.Stats); err != nil {
			errutil.LogError(logger, "failed to record run", err)
		} else {
			logger.Debug("run recorded", "db", config.DefaultDBPath())
		}
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <password>...",
		Short: "Check passwords against the legibility rules",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	sampler := generator.New(alphabet.Default())
	out := cmd.OutOrStdout()
	rejected := 0
	for _, arg := range args {
		candidate := strings.ReplaceAll(arg, " ", "")
		r := sampler.Check(candidate)
		line := fmt.Sprintf("%s\tok", candidate)
		if r != generator.RejectNone {
			rejected++
			line = fmt.Sprintf("%s\t%s: %s", candidate, r, r.Describe())
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if rejected > 0 {
		return oops.
			Code(codeCandidateRejected).
			With("rejected", rejected, "checked", len(args)).
			Errorf("%d of %d passwords rejected", rejected, len(args))
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded run statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().BoolVarP(&statsInteractive, "interactive", "i", false, "browse stats in a full-screen view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if err := loadFileConfig(cmd); err != nil {
		return err
	}

	st, err := openStore(config.DefaultDBPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			errutil.LogError(newLogger(), "failed to close db", cerr)
		}
	}()

	cfg := model.StatsConfig{Since: sinceTime, Last: statsLast}
	if statsInteractive {
		if _, isTTY := terminalWidth(cmd.OutOrStdout()); !isTTY {
			return fmt.Errorf("--interactive requires a terminal")
		}
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats view: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return stats.Render(cmd.OutOrStdout(), report)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeDefaultConfig(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# legipwd configuration
# Uncomment a value to enable it. CLI flags override config values.
# The password rules themselves are fixed.

[generate]
# workers = %d            # Number of sampling workers
# max-attempts = %d # Give up after this many candidates
# record = false         # Record run statistics (never passwords)

[output]
# color = %q          # auto, always or never
# columns = false        # Lay passwords out in columns on a terminal
# banner = true          # Print the license banner
# progress = false       # Show a progress bar on stderr

[log]
# format = %q         # text or json
`,
		defaultWorkers,
		generator.DefaultMaxAttempts,
		defaultColor,
		defaultLogFormat,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("--workers must be > 0")
	}
	if cfg.MaxAttempts <= 0 {
		return fmt.Errorf("--max-attempts must be > 0")
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("--color must be auto, always or never")
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("--log-format must be text or json")
	}
	return nil
}

func newLogger() *slog.Logger {
	return logging.Setup(appName, version, logFormat, verbose, os.Stderr)
}

func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, true
	}
	return width, true
}

func useColor(mode string, isTTY bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTTY
	}
}
