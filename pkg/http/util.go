package http

import (
	"time"

	xutil "PredBoard/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseBool reads the usual truthy query values ("1", "true", "yes").
func ParseBool(s string) bool { return xutil.ParseBool(s) }

// ParseTime tries RFC3339, date-only and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }
