package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	xutil "PredBoard/pkg/util"
)

// Kind is the type a field is coerced to. A value that cannot be coerced
// counts as absent and the next candidate path is tried.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindTime
)

func coerce(v any, kind Kind) (any, bool) {
	switch kind {
	case KindNumber:
		return toFloat(v)
	case KindBool:
		return toBool(v)
	case KindTime:
		return toTime(v)
	default:
		return toString(v)
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return nil, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, false
		}
		return finite(f)
	}
	return nil, false
}

func toString(v any) (any, bool) {
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case json.Number:
		return s.String(), true
	case float64:
		if _, ok := finite(s); !ok {
			return nil, false
		}
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return nil, false
}

func toBool(v any) (any, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y":
			return true, true
		case "false", "0", "no", "n":
			return false, true
		}
		return nil, false
	}
	if f, ok := toFloat(v); ok {
		return f.(float64) != 0, true
	}
	return nil, false
}

func toTime(v any) (any, bool) {
	if s, ok := v.(string); ok {
		if t, ok := xutil.ParseTime(s); ok {
			return t, true
		}
		return nil, false
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, false
	}
	sec := f.(float64)
	if sec <= 0 {
		return nil, false
	}
	if sec > 1e12 {
		return time.UnixMilli(int64(sec)).UTC(), true
	}
	return time.Unix(int64(sec), 0).UTC(), true
}
