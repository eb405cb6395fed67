package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jwaldner/mtts/internal/config"
	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/models"
	"github.com/jwaldner/mtts/internal/payload"
	"github.com/jwaldner/mtts/internal/table"
)

var (
	flagSource string
	flagConfig string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mtts",
	Short: "Browse Minervini Trend Template screening results",
	Long: `mtts reads the screener's results.json from a file or URL and presents it
as a filterable, sortable, paginated table.

Examples:
  mtts browse
  mtts list --pass-only --sort status,-rs_rating --size 20
  mtts export --search semi --out semis.csv
  mtts --source https://example.com/data/results.json list`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.LoadFrom(flagConfig)
		if flagSource == "" {
			flagSource = cfg.Source()
		}
		// terminal output belongs to the table; logs only go to the file
		if err := logger.InitFromConfig(logger.Config{
			Level:      cfg.Logging.LogLevel,
			File:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Quiet:      true,
		}); err != nil {
			return err
		}
		logger.Debug.Printf("mtts %s: source %s", cmd.Name(), flagSource)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "results.json path or http(s) URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultConfigFile, "config file")
}

func loadResults(ctx context.Context) (*models.Results, error) {
	res, _, err := payload.NewLoader(cfg.FetchTimeout()).Load(ctx, flagSource)
	if err != nil {
		logger.Warn.Printf("load %s: %v", flagSource, err)
		return nil, err
	}
	logger.Info.Printf("loaded %d rows from %s", len(res.Data), flagSource)
	return res, nil
}

// viewFlags are the view-state flags shared by list and export
type viewFlags struct {
	search   string
	passOnly bool
	sort     string
	page     int
	size     int
	expand   []string
}

func (f *viewFlags) register(cmd *cobra.Command, paging bool) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive ticker or name filter")
	cmd.Flags().BoolVar(&f.passOnly, "pass-only", false, "show only rows that passed every criterion")
	cmd.Flags().StringVar(&f.sort, "sort", table.FormatSortKeys(table.DefaultSortKeys()), "sort keys, '-' prefix for descending")
	if paging {
		cmd.Flags().IntVar(&f.page, "page", 1, "page number, starting at 1")
		cmd.Flags().IntVar(&f.size, "size", 0, "page size: 10, 20, 30, 40 or 50 (default from config)")
		cmd.Flags().StringSliceVar(&f.expand, "expand", nil, "tickers to show with their criteria breakdown")
	}
}

// state applies the flags to a fresh view state in the order a user would.
func (f *viewFlags) state(defaultSize int) (table.ViewState, error) {
	s := table.NewViewState()
	if table.ValidPageSize(defaultSize) {
		var err error
		if s, err = s.WithPageSize(defaultSize); err != nil {
			return s, err
		}
	}
	s = s.WithSearch(f.search).WithPassOnly(f.passOnly)

	keys, err := table.ParseSortKeys(f.sort)
	if err != nil {
		return s, err
	}
	if s, err = s.WithSortKeys(keys); err != nil {
		return s, err
	}
	if f.size != 0 {
		if s, err = s.WithPageSize(f.size); err != nil {
			return s, err
		}
	}
	s = s.WithPageIndex(f.page - 1)
	for _, id := range f.expand {
		if !s.IsExpanded(id) {
			s = s.ToggleExpanded(id)
		}
	}
	return s, nil
}
