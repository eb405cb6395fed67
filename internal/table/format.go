package table

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/jwaldner/mtts/internal/models"
)

// LotSize is the number of shares in one board lot
const LotSize = 1000

// NotAvailable is shown wherever a value cannot be derived
const NotAvailable = "N/A"

// groupFixed thousands-groups the integer part of a fixed-point string.
func groupFixed(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return sign + s
	}
	out := sign + humanize.Comma(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// FormatPrice renders v with one or two fraction digits and grouped thousands:
// 1234.5 -> "1,234.5", 98.761 -> "98.76", 100 -> "100.0".
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	s := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	s = strings.TrimSuffix(s, "0")
	return groupFixed(s)
}

// VolumeLots converts a share count to whole lots, rounding to nearest.
func VolumeLots(shares int64) int64 {
	return int64(math.Round(float64(shares) / LotSize))
}

// FormatVolume renders a share count as grouped lots: 1234567 -> "1,235".
func FormatVolume(shares int64) string {
	return humanize.Comma(VolumeLots(shares))
}

// Deviation returns (price-avg)/avg*100 rounded to one decimal. ok is false
// when avg is zero, missing or not finite.
func Deviation(price, avg float64) (pct float64, ok bool) {
	if avg == 0 || math.IsNaN(avg) || math.IsInf(avg, 0) || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	d := decimal.NewFromFloat(price).
		Sub(decimal.NewFromFloat(avg)).
		Div(decimal.NewFromFloat(avg)).
		Mul(decimal.NewFromInt(100)).
		Round(1)
	return d.InexactFloat64(), true
}

// FormatDeviation renders a signed percentage such as "+5.3%" or "-0.8%".
func FormatDeviation(pct float64) string {
	d := decimal.NewFromFloat(pct).Round(1)
	s := d.StringFixed(1) + "%"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}

func priceField(v float64) models.FieldValue {
	return models.FieldValue{Raw: v, Display: FormatPrice(v), Type: "currency"}
}

// indicatorField treats a zero average or extreme as not computed upstream.
func indicatorField(v float64) models.FieldValue {
	if v == 0 {
		return models.FieldValue{Raw: nil, Display: NotAvailable, Type: "currency"}
	}
	return priceField(v)
}

func deviationField(price, avg float64) models.FieldValue {
	pct, ok := Deviation(price, avg)
	if !ok {
		return models.FieldValue{Raw: nil, Display: NotAvailable, Type: "percentage"}
	}
	return models.FieldValue{Raw: pct, Display: FormatDeviation(pct), Type: "percentage"}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
