package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/debuglog"
	"github.com/pders01/wikr/internal/feed"
	"github.com/pders01/wikr/internal/metrics"
	"github.com/pders01/wikr/internal/tui"
	"github.com/pders01/wikr/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	quiet      bool
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "wikr",
	Short:         "Browse Wikipedia from the terminal",
	Long:          "wikr shows an endless feed of Wikipedia articles by topic or search query, in Chinese or English.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !quiet {
			tui.ShowBanner(Version)
		}
		return runTUI(cmd.Context(), cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wikr %s\n", Version)
		fmt.Fprintln(out, "Wikipedia explorer")
		fmt.Fprintln(out, "github.com/pders01/wikr")
	},
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := validation.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		if len(args) == 1 {
			target = args[0]
		}

		path, err := validation.NewFilePathValidator().EnsureParent(target)
		if err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to the log file")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip startup banner")

	rootCmd.AddCommand(versionCmd, generateConfigCmd, searchCmd)
}

// loadConfig reads the config, validates the endpoint and sets up logging
// and the color theme.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path != "" {
		clean, err := validation.NewFilePathValidator().ValidateFile(path)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		path = clean
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	validator := validation.NewArticleURLValidator()
	if err := validator.ValidateEndpointTemplate(cfg.API.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid api.endpoint: %w", err)
	}

	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if debug {
		level = debuglog.LevelDebug
	}
	if err := debuglog.Setup(level, cfg.Log.Path); err != nil {
		return nil, err
	}

	tui.ApplyTheme(cfg.UI.Colors)
	return cfg, nil
}

// newFetcher builds the API client, wiring metrics when a listener is
// configured.
func newFetcher(cfg *config.Config) (*feed.Fetcher, *metrics.Metrics) {
	fetcher := feed.NewFetcher(cfg)
	if cfg.Metrics.Addr == "" {
		return fetcher, nil
	}
	m := metrics.New()
	fetcher.SetMetrics(m)
	return fetcher, m
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	defer debuglog.Close()

	fetcher, m := newFetcher(cfg)
	app := tui.NewApp(cfg, fetcher)
	defer app.Close()
	if m != nil {
		app.SetMetrics(m)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if m != nil {
		g.Go(func() error {
			debuglog.Infof("metrics listening on %s", cfg.Metrics.Addr)
			return m.Serve(ctx, cfg.Metrics.Addr)
		})
	}

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})

	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
