// Package main provides the CLI entrypoint for rentstat.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/rentstat/internal/config"
	"github.com/verte-zerg/rentstat/internal/dataset"
	"github.com/verte-zerg/rentstat/internal/logger"
	"github.com/verte-zerg/rentstat/internal/model"
	"github.com/verte-zerg/rentstat/internal/stats"
	"github.com/verte-zerg/rentstat/internal/statsui"
	"github.com/verte-zerg/rentstat/internal/store"
)

const (
	defaultPlotHeight = 10
	defaultLogLevel   = "info"
	dateLayout        = "2006-01-02"

	formatText = "text"
	formatCSV  = "csv"
)

var (
	dataSource string
	dbPath     string
	rangeStart string
	rangeEnd   string
	plotHeight int
	useColor   bool
	logLevel   string

	watchSource bool

	reportPlots  bool
	reportFormat string
	reportWidth  int
)

// settings is the resolved configuration shared by every command.
type settings struct {
	report   model.ReportConfig
	dbPath   string
	logLevel string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rentstat",
		Short:         "Bike-rental statistics dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dataSource, "data", "", "dataset location (.csv, .xlsx, or http(s) URL); empty uses the import cache")
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite import cache path")
	flags.StringVar(&rangeStart, "start", "", "first day to include (YYYY-MM-DD, default: dataset minimum)")
	flags.StringVar(&rangeEnd, "end", "", "last day to include (YYYY-MM-DD, default: dataset maximum)")
	flags.IntVar(&plotHeight, "plot-height", defaultPlotHeight, "plot height in rows")
	flags.BoolVar(&useColor, "color", true, "colorize plots")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVar(&watchSource, "watch", false, "reload when the local dataset file changes")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	env := config.LoadEnv()

	applyStringConfig(cmd, "data", &dataSource, fileCfg.Data.Source)
	applyStringConfig(cmd, "data", &dataSource, envValue(env.Data))
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Data.DB)
	applyStringConfig(cmd, "db", &dbPath, envValue(env.DB))
	applyStringConfig(cmd, "start", &rangeStart, fileCfg.Report.Start)
	applyStringConfig(cmd, "end", &rangeEnd, fileCfg.Report.End)
	applyIntConfig(cmd, "plot-height", &plotHeight, fileCfg.Report.PlotHeight)
	applyBoolConfig(cmd, "color", &useColor, fileCfg.Report.Color)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-level", &logLevel, envValue(env.LogLevel))

	if plotHeight <= 0 {
		return settings{}, fmt.Errorf("--plot-height must be > 0")
	}
	if _, err := logger.ParseLevel(logLevel); err != nil {
		return settings{}, fmt.Errorf("invalid --log-level: %w", err)
	}
	rng, err := parseRange(rangeStart, rangeEnd)
	if err != nil {
		return settings{}, err
	}

	return settings{
		report: model.ReportConfig{
			Source:     strings.TrimSpace(dataSource),
			Range:      rng,
			PlotHeight: plotHeight,
			Color:      useColor,
			Watch:      watchSource,
		},
		dbPath:   dbPath,
		logLevel: logLevel,
	}, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()
	if err := logger.Setup(logFile, s.logLevel); err != nil {
		return err
	}

	var changes <-chan struct{}
	if s.report.Watch {
		if s.report.Source == "" || dataset.IsRemote(s.report.Source) {
			return fmt.Errorf("--watch requires a local --data file")
		}
		watcher, err := dataset.Watch(s.report.Source)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := watcher.Close(); cerr != nil {
				logger.Error("failed to close watcher", "error", cerr)
			}
		}()
		changes = watcher.Changes()
	}

	load := func(ctx context.Context) ([]model.Record, error) {
		return loadRecords(ctx, s)
	}
	ui := statsui.NewModel(load, s.report, changes)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the rental report",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().BoolVar(&reportPlots, "plots", false, "include the daily chart and correlation scatter plots")
	cmd.Flags().StringVar(&reportFormat, "format", formatText, "output format (text, csv)")
	cmd.Flags().IntVar(&reportWidth, "width", 0, "output width for plots (default: terminal width)")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if err := logger.Setup(cmd.ErrOrStderr(), s.logLevel); err != nil {
		return err
	}
	if reportFormat != formatText && reportFormat != formatCSV {
		return fmt.Errorf("--format must be %q or %q", formatText, formatCSV)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := loadRecords(ctx, s)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(ctx, records, s.report.Range)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if reportFormat == formatCSV {
		if err := stats.WriteDailyCSV(out, report.Daily); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return nil
	}

	opts := stats.RenderOptions{
		Plots:      reportPlots,
		PlotHeight: s.report.PlotHeight,
		Color:      s.report.Color && reportPlots,
	}
	if reportWidth > 0 {
		opts.Width = stats.PlotWidthFor(reportWidth)
	}
	if err := stats.RenderReport(out, report, opts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [location]",
		Short: "Import a dataset into the local cache",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if err := logger.Setup(cmd.ErrOrStderr(), s.logLevel); err != nil {
		return err
	}

	location := s.report.Source
	if len(args) == 1 {
		location = strings.TrimSpace(args[0])
	}
	if location == "" {
		return fmt.Errorf("no dataset location given (pass it as an argument or set --data)")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := dataset.Load(ctx, location)
	if err != nil {
		return err
	}

	st, err := store.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if err := st.ImportRecords(ctx, location, records); err != nil {
		return fmt.Errorf("failed to import records: %w", err)
	}
	logger.Info("dataset imported", "source", location, "records", len(records), "db", s.dbPath)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s\n", len(records), location); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadRecords reads the configured source, falling back to the import cache
// when no source is set.
func loadRecords(ctx context.Context, s settings) ([]model.Record, error) {
	if s.report.Source != "" {
		return dataset.Load(ctx, s.report.Source)
	}

	st, err := store.Open(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", "error", cerr)
		}
	}()

	imp, err := st.LastImport(ctx)
	if errors.Is(err, store.ErrNoImport) {
		return nil, fmt.Errorf("no dataset configured: pass --data or run: rentstat import <location>")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import metadata: %w", err)
	}
	records, err := st.ListRecords(ctx, model.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("failed to read cached records: %w", err)
	}
	logger.Debug("loaded cached dataset", "source", imp.Source, "imported_at", imp.ImportedAt, "records", len(records))
	return records, nil
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

func parseRange(start, end string) (model.DateRange, error) {
	var rng model.DateRange
	if v := strings.TrimSpace(start); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return model.DateRange{}, fmt.Errorf("invalid --start value: %w", err)
		}
		rng.Start = &parsed
	}
	if v := strings.TrimSpace(end); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return model.DateRange{}, fmt.Errorf("invalid --end value: %w", err)
		}
		rng.End = &parsed
	}
	return rng, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func envValue(v string) *string {
	if v == "" {
		return nil
	}
	return &v
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
	return fmt.Sprintf(`# rentstat configuration
# Uncomment a value to enable it. CLI flags and RENTSTAT_* variables override config values.

[data]
# source = "hour.csv"     # Dataset location (.csv, .xlsx, or http(s) URL)
# db = %q                 # SQLite import cache

[report]
# start = "2011-01-01"    # First day to include (YYYY-MM-DD)
# end = "2012-12-31"      # Last day to include (YYYY-MM-DD)
# plot-height = %d        # Plot height in rows
# color = true            # Colorize plots

[log]
# level = %q              # debug, info, warn, error
`,
		config.DefaultDBPath(),
		defaultPlotHeight,
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
