package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gocleanse/domain/dataset"
)

// TypeCoercer handles deterministic type coercion of raw cells and
// threshold-based column classification
type TypeCoercer struct {
	config CoercionConfig
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.TimestampThreshold <= 0 || config.TimestampThreshold > 1 {
		config.TimestampThreshold = DefaultCoercionConfig().TimestampThreshold
	}
	return &TypeCoercer{config: config}
}

// Config returns the active configuration
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// timestampLayouts are tried in order; the first successful parse wins
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
}

// CoerceValue deterministically converts an unknown raw value to a typed Value
func (c *TypeCoercer) CoerceValue(rawValue interface{}) dataset.Value {
	switch v := rawValue.(type) {
	case nil:
		return dataset.NewMissingValue()
	case dataset.Value:
		return v
	case time.Time:
		return dataset.NewTimestampValue(v)
	case float64:
		return dataset.NewNumericValue(v)
	case float32:
		return dataset.NewNumericValue(float64(v))
	case int:
		return dataset.NewNumericValue(float64(v))
	case int64:
		return dataset.NewNumericValue(float64(v))
	case int32:
		return dataset.NewNumericValue(float64(v))
	case []byte:
		rawValue = string(v)
	}

	strVal := strings.TrimSpace(c.toString(rawValue))
	if isMissingToken(strVal) {
		return dataset.NewMissingValue()
	}

	// Try numeric first (most restrictive)
	if n, ok := c.tryParseNumeric(strVal); ok {
		return dataset.NewNumericValue(n)
	}

	if t, ok := c.tryParseTimestamp(strVal); ok {
		return dataset.NewTimestampValue(t)
	}

	return c.coerceToString(strVal)
}

// isMissingToken recognises the usual textual spellings of a null cell
func isMissingToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null", "none", "<na>":
		return true
	}
	return false
}

// coerceToString converts to normalized string value
func (c *TypeCoercer) coerceToString(strVal string) dataset.Value {
	if c.config.NormalizeStrings {
		strVal = c.normalizeString(strVal)
	}
	return dataset.NewStringValue(strVal)
}

// tryParseNumeric attempts to parse as numeric with strict rules
// Handles international formats: parentheses for negatives, European decimals, currency symbols
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool) {
	if strVal == "" {
		return 0, false
	}

	cleanVal := strings.TrimSpace(strVal)

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.TrimSuffix(cleanVal, "%")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 / 1 234,56 when the comma comes last, 1,234.56 otherwise
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	case hasComma:
		// 1,5 is a decimal; 1,234 and 1,234,567 are thousands
		if parts := strings.Split(cleanVal, ","); len(parts) == 2 && len(parts[1]) != 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// tryParseTimestamp attempts to parse as timestamp with multiple layouts
func (c *TypeCoercer) tryParseTimestamp(strVal string) (time.Time, bool) {
	if strVal == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeString applies deterministic string normalization. Case is
// preserved so categorical codes stay faithful to the source labels.
func (c *TypeCoercer) normalizeString(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// toString converts interface{} to string safely
func (c *TypeCoercer) toString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case uint, uint8, uint16, uint32, uint64, int8, int16:
		return fmt.Sprintf("%d", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
