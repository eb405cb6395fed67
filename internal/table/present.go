package table

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/jwaldner/mtts/internal/models"
	"github.com/jwaldner/mtts/internal/utils"
)

// StrongRS is the rating at which RS is emphasized
const StrongRS = 90

// Market tags derived from the ticker suffix
const (
	MarketListed = "TWSE"
	MarketOTC    = "TPEX"

	otcSuffix   = ".TWO"
	chartURLFmt = "https://www.tradingview.com/chart/?symbol=%s:%s"
)

// Slope directions of the 200-day average
const (
	SlopeRising  = "rising"
	SlopeFalling = "falling"
)

// PresentedRow holds the display-ready values of one table row
type PresentedRow struct {
	ID            string            `json:"id"`
	Ticker        string            `json:"ticker"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Market        string            `json:"market"`
	ChartURL      string            `json:"chart_url"`
	Price         models.FieldValue `json:"price"`
	RSRating      models.FieldValue `json:"rs_rating"`
	StrongRS      bool              `json:"strong_rs"`
	Volume        models.FieldValue `json:"volume"`
	Status        models.Status     `json:"status"`
	MatchCount    string            `json:"match_count"`
	Matched       int               `json:"matched"`
	Total         int               `json:"total"`
	FailReason    string            `json:"fail_reason"`
	LiquidityFail bool              `json:"liquidity_fail"`
	Expanded      bool              `json:"expanded"`
	Expansion     *ExpansionPanel   `json:"expansion,omitempty"`
}

// CriterionResult is one line of the pass/fail breakdown
type CriterionResult struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// AverageDeviation relates the price to one moving average
type AverageDeviation struct {
	Label     string            `json:"label"`
	Average   models.FieldValue `json:"average"`
	Deviation models.FieldValue `json:"deviation"`
}

// ExpansionPanel is the detail view of an expanded row
type ExpansionPanel struct {
	Criteria    []CriterionResult  `json:"criteria"`
	Averages    []AverageDeviation `json:"averages"`
	SMA200Prev  models.FieldValue  `json:"sma_200_prev"`
	Slope       string             `json:"slope"`
	High52W     models.FieldValue  `json:"high_52w"`
	Low52W      models.FieldValue  `json:"low_52w"`
	DistLowPct  string             `json:"dist_low_pct"`
	DistHighPct string             `json:"dist_high_pct"`
}

// PresentedMetadata is the dashboard header
type PresentedMetadata struct {
	UpdatedAt     string              `json:"updated_at"`
	ConfigSummary string              `json:"config_summary"`
	Config        models.ScreenConfig `json:"config"`
}

// RowID identifies a row for expansion; tickers are unique within a payload.
func RowID(row *models.StockData) string {
	return row.Ticker
}

// MarketOf tags a ticker as OTC when it carries the .TWO suffix. Only the
// trailing market tag counts, so ".TWO" inside a ticker does not.
func MarketOf(ticker string) string {
	if strings.HasSuffix(strings.ToUpper(ticker), otcSuffix) {
		return MarketOTC
	}
	return MarketListed
}

// DisplayCode strips the market suffix: "2330.TW" -> "2330".
func DisplayCode(ticker string) string {
	code, _, _ := strings.Cut(ticker, ".")
	return code
}

// ChartURL links the ticker to its TradingView chart
func ChartURL(ticker string) string {
	return fmt.Sprintf(chartURLFmt, MarketOf(ticker), DisplayCode(ticker))
}

// IsLiquidityFail reports a FAIL row whose trend criteria all passed, which
// points at the volume threshold rather than the trend.
func IsLiquidityFail(row *models.StockData) (bool, error) {
	matched, total, err := ParseMatchCount(row.MatchCount)
	if err != nil {
		return false, err
	}
	return row.Status == models.StatusFail && matched == total, nil
}

// SlopeOf compares the 200-day average with its lookback value. Equal values
// read as falling; this mirrors the screener's non-strict c3 check and may be
// worth a neutral "flat" state later.
func SlopeOf(ind models.Indicators) string {
	if ind.SMA200 > ind.SMA200Prev {
		return SlopeRising
	}
	return SlopeFalling
}

// Present derives the summary values of one row.
func Present(row models.StockData, expanded bool) (PresentedRow, error) {
	matched, total, err := ParseMatchCount(row.MatchCount)
	if err != nil {
		return PresentedRow{}, errors.Wrapf(err, "ticker %s", row.Ticker)
	}
	return PresentedRow{
		ID:       RowID(&row),
		Ticker:   row.Ticker,
		Code:     DisplayCode(row.Ticker),
		Name:     row.Name,
		Market:   MarketOf(row.Ticker),
		ChartURL: ChartURL(row.Ticker),
		Price:    priceField(row.Price),
		RSRating: models.FieldValue{
			Raw:     row.RSRating,
			Display: fmt.Sprintf("%d", row.RSRating),
			Type:    "integer",
		},
		StrongRS: row.RSRating >= StrongRS,
		Volume: models.FieldValue{
			Raw:     row.VolAvg,
			Display: FormatVolume(row.VolAvg),
			Type:    "integer",
		},
		Status:        row.Status,
		MatchCount:    row.MatchCount,
		Matched:       matched,
		Total:         total,
		FailReason:    row.FailReason,
		LiquidityFail: row.Status == models.StatusFail && matched == total,
		Expanded:      expanded,
	}, nil
}

// PresentExpansion derives the detail panel of one row.
func PresentExpansion(row models.StockData) (ExpansionPanel, error) {
	if _, _, err := ParseMatchCount(row.MatchCount); err != nil {
		return ExpansionPanel{}, errors.Wrapf(err, "ticker %s", row.Ticker)
	}
	ind := row.Indicators

	criteria := make([]CriterionResult, 0, len(criteriaOrder))
	for _, c := range criteriaOrder {
		criteria = append(criteria, CriterionResult{Key: c.Key, Label: c.Label, Passed: row.Details[c.Key]})
	}

	return ExpansionPanel{
		Criteria: criteria,
		Averages: []AverageDeviation{
			{Label: "SMA 50", Average: indicatorField(ind.SMA50), Deviation: deviationField(row.Price, ind.SMA50)},
			{Label: "SMA 150", Average: indicatorField(ind.SMA150), Deviation: deviationField(row.Price, ind.SMA150)},
			{Label: "SMA 200", Average: indicatorField(ind.SMA200), Deviation: deviationField(row.Price, ind.SMA200)},
		},
		SMA200Prev:  indicatorField(ind.SMA200Prev),
		Slope:       SlopeOf(ind),
		High52W:     indicatorField(ind.High52W),
		Low52W:      indicatorField(ind.Low52W),
		DistLowPct:  row.DistLowPct,
		DistHighPct: row.DistHighPct,
	}, nil
}

// PresentMetadata renders the header shown above the table
func PresentMetadata(meta models.Metadata) PresentedMetadata {
	return PresentedMetadata{
		UpdatedAt:     utils.FormatTimestamp(meta.Timestamp),
		ConfigSummary: fmt.Sprintf("RS>%s | Vol>%s", trimFloat(meta.Config.RSThreshold), trimFloat(meta.Config.MinVolume)),
		Config:        meta.Config,
	}
}

// Columns describes the summary columns in display order
func Columns() []models.FieldMetadata {
	return []models.FieldMetadata{
		{Key: string(FieldTicker), DisplayName: "Stock", Type: "text", Sortable: true, Alignment: "left"},
		{Key: string(FieldPrice), DisplayName: "Price", Type: "currency", Sortable: true, Alignment: "right"},
		{Key: string(FieldRSRating), DisplayName: "RS", Type: "integer", Sortable: true, Alignment: "right"},
		{Key: string(FieldVolAvg), DisplayName: "Avg Vol (lots)", Type: "integer", Sortable: true, Alignment: "right"},
		{Key: string(FieldStatus), DisplayName: "Status", Type: "status", Sortable: true, Alignment: "center"},
		{Key: string(FieldMatchCount), DisplayName: "Match", Type: "text", Sortable: true, Alignment: "center"},
		{Key: "fail_reason", DisplayName: "Note", Type: "text", Sortable: false, Alignment: "left"},
	}
}
