package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/karvasek/cbrelay/internal/buildinfo"
	"github.com/karvasek/cbrelay/pkg/config"
	"github.com/karvasek/cbrelay/pkg/correlate"
	"github.com/karvasek/cbrelay/pkg/export"
	"github.com/karvasek/cbrelay/pkg/logmeta"
	cbplot "github.com/karvasek/cbrelay/pkg/plot"
	"github.com/karvasek/cbrelay/pkg/report"
	"github.com/karvasek/cbrelay/pkg/source"
	tuimodel "github.com/karvasek/cbrelay/pkg/tui/model"
)

var (
	configPath    string
	sourceKind    string
	unitName      string
	containerName string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cbrelay",
	Short: "Analyze compact-block relay from a bitcoind debug.log",
	Long: "cbrelay extracts the compact-block relay lifecycle (receive, reconstruction,\n" +
		"announce/request, send, send window) from a bitcoind debug.log and turns it\n" +
		"into spreadsheets, statistics, plots, and an interactive browser.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to cbrelay.yaml")
	rootCmd.PersistentFlags().StringVar(&sourceKind, "source", "", "line source: file, journald, or docker")
	rootCmd.PersistentFlags().StringVar(&unitName, "unit", "", "systemd unit for the journald source")
	rootCmd.PersistentFlags().StringVar(&containerName, "container", "", "container name for the docker source")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// loadConfig resolves the effective config: --config wins, then a
// cbrelay.yaml in the working directory, then defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			return nil, fmt.Errorf("invalid config %s: %v", configPath, errs[0])
		}
		return cfg, nil
	}
	if cfg, err := config.Load("cbrelay.yaml"); err == nil {
		if errs := config.Validate(cfg); len(errs) == 0 {
			return cfg, nil
		}
	}
	return config.Default(), nil
}

// openSource picks the line source: a positional log path beats flags,
// flags beat config.
func openSource(ctx context.Context, args []string, cfg *config.Config, logger *slog.Logger) (source.Source, string, error) {
	if len(args) > 0 {
		src, err := source.OpenFile(args[0])
		return src, args[0], err
	}

	kind := sourceKind
	if kind == "" {
		kind = cfg.Source.Kind
	}
	switch kind {
	case "file", "":
		path := cfg.Source.Path
		if path == "" {
			return nil, "", fmt.Errorf("no log file given and no source.path configured")
		}
		src, err := source.OpenFile(path)
		return src, path, err
	case "journald":
		unit := unitName
		if unit == "" {
			unit = cfg.Source.Unit
		}
		if unit == "" {
			return nil, "", fmt.Errorf("journald source needs --unit or source.unit")
		}
		src, err := source.OpenJournal(ctx, unit, logger)
		return src, unit, err
	case "docker":
		name := containerName
		if name == "" {
			name = cfg.Source.Container
		}
		if name == "" {
			return nil, "", fmt.Errorf("docker source needs --container or source.container")
		}
		src, err := source.OpenContainer(ctx, name, logger)
		return src, name, err
	default:
		return nil, "", fmt.Errorf("unknown source kind %q", kind)
	}
}

// analyze runs the full pass and returns the flattened rows.
func analyze(args []string) (string, []report.ReceivedRow, []report.SentRow, error) {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return "", nil, nil, err
	}

	ctx := context.Background()
	src, title, err := openSource(ctx, args, cfg, logger)
	if err != nil {
		return "", nil, nil, err
	}
	defer src.Close()

	tables := logmeta.DefaultTables().
		Extend(cfg.Tables.ExtraCategories, cfg.Tables.ExtraThreads)

	res, err := correlate.Run(src, correlate.Options{Tables: tables, Logger: logger})
	if err != nil {
		return "", nil, nil, err
	}

	received, sent := report.Frames(res)
	return title, received, sent, nil
}

// --- Parse ---

var (
	parseOutput string
	parseCSVDir string
)

var parseCmd = &cobra.Command{
	Use:   "parse [debug.log]",
	Short: "Parse a log and export the records as a spreadsheet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		_, received, sent, err := analyze(args)
		if err != nil {
			return err
		}

		out := parseOutput
		if out == "" {
			out = cfg.Output.XLSX
		}
		if out == "" {
			out = "compactblocksdata.xlsx"
		}
		if err := export.WriteXLSX(out, received, sent); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Data saved to %s (%d blocks received, %d sends)\n", out, len(received), len(sent))

		csvDir := parseCSVDir
		if csvDir == "" {
			csvDir = cfg.Output.CSVDir
		}
		if csvDir != "" {
			if err := export.WriteCSV(csvDir, received, sent); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CSV saved to %s\n", csvDir)
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "output xlsx path")
	parseCmd.Flags().StringVar(&parseCSVDir, "csv", "", "also write received.csv/sent.csv into this directory")
}

// --- Stats ---

var statsCmd = &cobra.Command{
	Use:   "stats [debug.log]",
	Short: "Compute and print relay statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, received, sent, err := analyze(args)
		if err != nil {
			return err
		}
		report.WriteStats(cmd.OutOrStdout(), received, sent)
		return nil
	},
}

// --- Plot ---

var plotDir string

var plotCmd = &cobra.Command{
	Use:   "plot [debug.log]",
	Short: "Render PNG charts from a log",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		_, received, sent, err := analyze(args)
		if err != nil {
			return err
		}

		dir := plotDir
		if dir == "" {
			dir = cfg.Output.PlotDir
		}
		if dir == "" {
			dir = "plots"
		}
		if err := cbplot.All(dir, received, sent); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Plots saved to %s\n", dir)
		return nil
	},
}

func init() {
	plotCmd.Flags().StringVarP(&plotDir, "dir", "d", "", "output directory for PNGs")
}

// --- View ---

var viewCmd = &cobra.Command{
	Use:   "view [debug.log]",
	Short: "Browse the parsed records in a TUI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		title, received, sent, err := analyze(args)
		if err != nil {
			return err
		}
		app := tuimodel.New(title, received, sent)
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

// --- Config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cbrelay.yaml",
}

var configInitOutput string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default cbrelay.yaml",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Save(config.Default(), configInitOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configInitOutput)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a cbrelay.yaml",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "cbrelay.yaml"
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		if len(errs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", path)
			return nil
		}

		fmt.Fprintf(os.Stderr, "%s: %d error(s)\n", path, len(errs))
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  • %s\n", e)
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitOutput, "output", "cbrelay.yaml", "output file path")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("cbrelay %s (%s) built %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	},
}
