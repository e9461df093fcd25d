package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Float coerces a cell to float64. Strings are trimmed and parsed;
// unparseable, NaN, or nil cells report ok=false (treated as missing,
// never as zero).
func Float(cell any) (float64, bool) {
	switch v := cell.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int coerces a cell to an integer, truncating fractional values the way
// the mode columns arrive in exports ("11", 11.0, 11).
func Int(cell any) (int, bool) {
	f, ok := Float(cell)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// String renders a cell for display and grouping. nil becomes "".
func String(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IsMissing reports whether a cell carries no usable value: nil, empty or
// whitespace-only string, or NaN.
func IsMissing(cell any) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case float64:
		return math.IsNaN(v)
	default:
		return false
	}
}
