package table

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownField is returned for a sort field the table does not know
	ErrUnknownField = errors.New("unknown sort field")
	// ErrMalformedMatchCount is returned when match_count is not "k/n"
	ErrMalformedMatchCount = errors.New("malformed match_count")
	// ErrInvalidPageSize is returned for a page size outside PageSizeOptions
	ErrInvalidPageSize = errors.New("invalid page size")
)

// CriteriaCount is the size of the Trend Template ruleset
const CriteriaCount = 8

// Criterion keys as produced by the screener, in display order
const (
	KeyTrendStack = "c1_trend_stack"
	KeyLongTerm   = "c2_long_term"
	KeyMA200Slope = "c3_ma200_slope"
	KeyMidTerm    = "c4_mid_term"
	KeyMomentum   = "c5_momentum"
	KeySupport    = "c6_support"
	KeyResistance = "c7_resistance"
	KeyRSStrength = "c8_rs_strength"
)

// CriterionDef pairs a details key with its label
type CriterionDef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// criteriaOrder fixes the expansion panel order; map iteration order is never used.
var criteriaOrder = [CriteriaCount]CriterionDef{
	{KeyTrendStack, "Price > SMA150 > SMA200"},
	{KeyLongTerm, "SMA150 > SMA200"},
	{KeyMA200Slope, "SMA200 trending up"},
	{KeyMidTerm, "SMA50 > SMA150 and SMA200"},
	{KeyMomentum, "Price > SMA50"},
	{KeySupport, "At least 30% above 52-week low"},
	{KeyResistance, "Within 25% of 52-week high"},
	{KeyRSStrength, "RS rating at or above threshold"},
}

// Criteria returns the ordered criterion definitions
func Criteria() []CriterionDef {
	out := make([]CriterionDef, len(criteriaOrder))
	copy(out, criteriaOrder[:])
	return out
}

// ParseMatchCount splits "k/n" into its integer parts.
func ParseMatchCount(s string) (matched, total int, err error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, errors.Wrapf(ErrMalformedMatchCount, "%q", s)
	}
	matched, err = strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, 0, errors.Wrapf(ErrMalformedMatchCount, "numerator of %q", s)
	}
	total, err = strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return 0, 0, errors.Wrapf(ErrMalformedMatchCount, "denominator of %q", s)
	}
	return matched, total, nil
}
