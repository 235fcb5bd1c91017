package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"PredBoard/internal/domain/repository"
	"PredBoard/internal/service/backend"
	vcache "PredBoard/internal/service/cache"
	"PredBoard/internal/usecase"
	pcache "PredBoard/pkg/cache"
	"PredBoard/pkg/config"
	xhttp "PredBoard/pkg/http"
	applogger "PredBoard/pkg/logger"
)

type options struct {
	configPath string
	backendURL string
	asJSON     bool
	timeout    time.Duration
	verbose    bool
}

// deps is the use-case graph one command needs, built over a private memory cache.
type deps struct {
	universe *usecase.UniverseUseCase
	signals  *usecase.SignalsUseCase
	analysis *usecase.AnalysisUseCase
	screener *usecase.ScreenerUseCase
	country  *usecase.CountryUseCase
	close    func()
}

// NewRootCommand builds the dashctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "dashctl",
		Short: "Query the prediction backend the way the dashboard does",
		Long: `dashctl loads dashboard views against the prediction backend and prints
them as tables.

Examples:
  dashctl universe
  dashctl signals --min 0.6
  dashctl country --suffix .SN
  dashctl analysis AAPL --json`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "config/config.yaml", "config file path (empty for defaults)")
	pf.StringVar(&opts.backendURL, "backend", "", "backend base URL, overrides the config")
	pf.BoolVar(&opts.asJSON, "json", false, "print the view as JSON")
	pf.DurationVar(&opts.timeout, "timeout", time.Minute, "overall command timeout")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log backend warnings to stderr")

	root.AddCommand(
		universeCmd(opts),
		signalsCmd(opts),
		countryCmd(opts),
		analysisCmd(opts),
		screenerCmd(opts),
	)
	return root
}

func universeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "universe",
		Short: "Latest snapshot for every tracked ticker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, d *deps) (any, string) {
				v := d.universe.Load(ctx, false)
				return v, Universe(v)
			})
		},
	}
}

func signalsCmd(opts *options) *cobra.Command {
	var minConf float64
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Signals sorted by confidence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, d *deps) (any, string) {
				v := d.signals.Load(ctx, false)
				if cmd.Flags().Changed("min") {
					v = d.signals.LoadMin(ctx, minConf, false)
				}
				return v, Signals(v)
			})
		},
	}
	cmd.Flags().Float64Var(&minConf, "min", 0, "minimum confidence passed to the backend")
	return cmd
}

func countryCmd(opts *options) *cobra.Command {
	var suffix string
	cmd := &cobra.Command{
		Use:   "country",
		Short: "Signals for tickers listed on one exchange suffix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if suffix != "" && !strings.HasPrefix(suffix, ".") {
				return fmt.Errorf("suffix must start with '.', got %q", suffix)
			}
			return run(cmd, opts, func(ctx context.Context, d *deps) (any, string) {
				s := suffix
				if s == "" {
					s = d.country.Suffix()
				}
				v := d.country.Load(ctx, s, false)
				return v, Country(v)
			})
		},
	}
	cmd.Flags().StringVar(&suffix, "suffix", "", "exchange suffix such as .SN (default from config)")
	return cmd
}

func analysisCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analysis [TICKER]",
		Short: "KPIs and prediction series for one ticker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := ""
			if len(args) == 1 {
				ticker = args[0]
				if !xhttp.ValidTicker(ticker) {
					return fmt.Errorf("invalid ticker %q", ticker)
				}
			}
			return run(cmd, opts, func(ctx context.Context, d *deps) (any, string) {
				v := d.analysis.Load(ctx, ticker, false)
				return v, Analysis(v)
			})
		},
	}
}

func screenerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "screener",
		Short: "Ranked screener candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, d *deps) (any, string) {
				v := d.screener.Load(ctx, false)
				return v, Screener(v)
			})
		},
	}
}

func run(cmd *cobra.Command, opts *options, load func(ctx context.Context, d *deps) (any, string)) error {
	d, err := build(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	view, text := load(ctx, d)
	return writeView(cmd.OutOrStdout(), opts.asJSON, view, text)
}

func writeView(w io.Writer, asJSON bool, view any, text string) error {
	if !asJSON {
		_, err := io.WriteString(w, text)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	if opts.configPath != "" {
		c, err := config.LoadWithEnv(opts.configPath)
		if err != nil && opts.backendURL == "" {
			return nil, err
		}
		cfg = c
	}
	if cfg == nil {
		cfg = config.Default()
		cfg.ApplyEnv()
	}
	if opts.backendURL != "" {
		cfg.Backend.BaseURL = opts.backendURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func build(opts *options, stderr io.Writer) (*deps, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	l := applogger.Nop()
	if opts.verbose {
		l = applogger.NewWriter(stderr, "warn")
	}
	var m repository.Metrics = repository.NopMetrics{}

	b := backend.New(backend.Config{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         cfg.Backend.Timeout,
		BreakerFailures: cfg.Backend.Breaker.ConsecutiveFailures,
		BreakerTimeout:  cfg.Backend.Breaker.OpenTimeout,
		BreakerInterval: cfg.Backend.Breaker.Interval,
	}, m, l)

	store := pcache.NewMemoryCache(pcache.WithMemoryMaxSize(cfg.Cache.MemoryMax))
	c := vcache.New(store, cfg.Cache.FreshTTL, cfg.Cache.Retention, vcache.WithLogger(l))

	signals := usecase.NewSignalsUseCase(b, c, m, cfg.Dashboard.MinConfidence, l)
	return &deps{
		universe: usecase.NewUniverseUseCase(b, c, m, cfg.Backend.Concurrency, l),
		signals:  signals,
		analysis: usecase.NewAnalysisUseCase(b, c, signals, m, l),
		screener: usecase.NewScreenerUseCase(b, c, m, l),
		country:  usecase.NewCountryUseCase(b, c, signals, m, cfg.Dashboard.CountrySuffix, l),
		close:    func() { _ = store.Close() },
	}, nil
}
