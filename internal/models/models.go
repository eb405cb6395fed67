package models

// FieldValue represents a field with both raw data and formatted display
type FieldValue struct {
	Raw     interface{} `json:"raw"`     // For CSV/sorting: 1234.56
	Display string      `json:"display"` // For UI: "1,234.56"
	Type    string      `json:"type"`    // For CSS: "currency"
}

// FieldMetadata describes one table column
type FieldMetadata struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Sortable    bool   `json:"sortable"`
	Alignment   string `json:"alignment"`
}

// Status is the overall screening verdict of a row
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Indicators holds the moving averages and 52-week extremes behind the verdict
type Indicators struct {
	SMA50      float64 `json:"SMA_50"`
	SMA150     float64 `json:"SMA_150"`
	SMA200     float64 `json:"SMA_200"`
	SMA200Prev float64 `json:"SMA_200_Prev"`
	High52W    float64 `json:"High_52W"`
	Low52W     float64 `json:"Low_52W"`
}

// StockData is one screened security as delivered by the screener
type StockData struct {
	Ticker      string          `json:"ticker"`
	Name        string          `json:"name"`
	Price       float64         `json:"price"`
	RSRating    int             `json:"rs_rating"`
	VolAvg      int64           `json:"vol_avg"`
	Status      Status          `json:"status"`
	FailReason  string          `json:"fail_reason"`
	MatchCount  string          `json:"match_count"`
	Details     map[string]bool `json:"details"`
	DistLowPct  string          `json:"dist_low_pct"`
	DistHighPct string          `json:"dist_high_pct"`
	Indicators  Indicators      `json:"indicators"`
}

// ScreenConfig echoes the thresholds the screener ran with
type ScreenConfig struct {
	RSThreshold     float64 `json:"rs_threshold"`
	MinVolume       float64 `json:"min_volume"`
	DistLowPct      float64 `json:"dist_low_pct"`
	DistHighPct     float64 `json:"dist_high_pct"`
	MASlopeLookback float64 `json:"ma_slope_lookback"`
}

// Metadata describes when and how a payload was produced
type Metadata struct {
	Timestamp string       `json:"timestamp"`
	Config    ScreenConfig `json:"config"`
}

// Results is the complete screener payload (results.json)
type Results struct {
	Metadata Metadata    `json:"metadata"`
	Data     []StockData `json:"data"`
}

// PassCount returns how many rows passed every criterion
func (r *Results) PassCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.Data {
		if r.Data[i].Status == StatusPass {
			n++
		}
	}
	return n
}
