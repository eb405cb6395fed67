package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jwaldner/mtts/internal/config"
	"github.com/jwaldner/mtts/internal/models"
	"github.com/jwaldner/mtts/internal/table"
	"github.com/jwaldner/mtts/internal/utils"
)

// filenameTimeLayout stamps export files in market time
const filenameTimeLayout = "20060102-150405"

// Header returns the CSV header row
func Header() []string {
	h := []string{
		"ticker", "code", "name", "market", "price", "rs_rating", "vol_avg", "vol_lots",
		"status", "match_count", "fail_reason", "liquidity_fail",
		"dist_low_pct", "dist_high_pct",
		"sma_50", "sma_150", "sma_200", "sma_200_prev", "high_52w", "low_52w", "slope",
	}
	for _, c := range table.Criteria() {
		h = append(h, c.Key)
	}
	return h
}

func number(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Record flattens one row. Numbers are raw values so spreadsheets can sort
// them; zero indicators are left empty.
func Record(row models.StockData) ([]string, error) {
	liquidity, err := table.IsLiquidityFail(&row)
	if err != nil {
		return nil, errors.Wrapf(err, "ticker %s", row.Ticker)
	}
	ind := row.Indicators
	rec := []string{
		row.Ticker,
		table.DisplayCode(row.Ticker),
		row.Name,
		table.MarketOf(row.Ticker),
		strconv.FormatFloat(row.Price, 'f', -1, 64),
		strconv.Itoa(row.RSRating),
		strconv.FormatInt(row.VolAvg, 10),
		strconv.FormatInt(table.VolumeLots(row.VolAvg), 10),
		string(row.Status),
		row.MatchCount,
		row.FailReason,
		strconv.FormatBool(liquidity),
		row.DistLowPct,
		row.DistHighPct,
		number(ind.SMA50),
		number(ind.SMA150),
		number(ind.SMA200),
		number(ind.SMA200Prev),
		number(ind.High52W),
		number(ind.Low52W),
		table.SlopeOf(ind),
	}
	for _, c := range table.Criteria() {
		rec = append(rec, strconv.FormatBool(row.Details[c.Key]))
	}
	return rec, nil
}

// Write emits the header and one record per row, in the given order.
func Write(w io.Writer, rows []models.StockData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, row := range rows {
		rec, err := Record(row)
		if err != nil {
			return err
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "write %s", row.Ticker)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// FilterLabel names the active filter for the export filename
func FilterLabel(state table.ViewState) string {
	label := "all"
	if state.PassOnly {
		label = "pass"
	}
	if q := strings.TrimSpace(state.SearchText); q != "" {
		q = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			case r >= 'A' && r <= 'Z':
				return r + ('a' - 'A')
			}
			return '-'
		}, q)
		label += "_q-" + q
	}
	return label
}

// Filename builds the export name from the configured template
func Filename(cfg config.CSVConfig, state table.ViewState, rows int, now time.Time) string {
	stamp := now.In(utils.MarketLocation()).Format(filenameTimeLayout)
	return config.FormatExportFilename(cfg.FilenameFormat, stamp, FilterLabel(state), rows)
}

// WriteFile exports rows to path, or to a generated name in cfg.OutputDir
// when path is empty. It returns the path written.
func WriteFile(path string, cfg config.CSVConfig, state table.ViewState, rows []models.StockData, now time.Time) (string, error) {
	if path == "" {
		path = filepath.Join(cfg.OutputDir, Filename(cfg, state, len(rows), now))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrap(err, "create export directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create export file")
	}
	if err := Write(f, rows); err != nil {
		f.Close()
		return "", err
	}
	return path, errors.Wrap(f.Close(), "close export file")
}
