package utils

import "time"

// DisplayTimeLayout is how payload timestamps are shown
const DisplayTimeLayout = "2006-01-02 15:04:05"

// MarketLocation returns the exchange time zone (Asia/Taipei). Hosts without
// tzdata get a fixed UTC+8 zone, which is equivalent since Taiwan has no DST.
func MarketLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Taipei"); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*60*60)
}

// ParseTimestamp reads an ISO-8601 timestamp as written by the screener,
// with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	// naive timestamps carry no offset; the screener runs on market time
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, MarketLocation())
}

// FormatTimestamp renders s in market time, or returns s unchanged when it
// cannot be parsed.
func FormatTimestamp(s string) string {
	t, err := ParseTimestamp(s)
	if err != nil {
		return s
	}
	return t.In(MarketLocation()).Format(DisplayTimeLayout)
}
