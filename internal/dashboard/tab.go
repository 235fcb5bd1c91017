// Package dashboard holds per-session navigation state: which tab is active,
// which tabs have been loaded, and the analysis ticker.
package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"PredBoard/internal/domain/models"
)

type Tab string

const (
	TabUniverse Tab = models.ViewUniverse
	TabCountry  Tab = models.ViewUniverseCountry
	TabAnalysis Tab = models.ViewAnalysis
	TabSignals  Tab = models.ViewSignals
	TabScreener Tab = models.ViewScreener
)

// Tabs in display order.
var Tabs = []Tab{TabUniverse, TabCountry, TabAnalysis, TabSignals, TabScreener}

var ErrUnknownTab = errors.New("unknown tab")

// ParseTab accepts only the five known tab names, case-insensitively.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tabs {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// Title is the nav label.
func (t Tab) Title() string {
	switch t {
	case TabUniverse:
		return "Universe"
	case TabCountry:
		return "Country"
	case TabAnalysis:
		return "Analysis"
	case TabSignals:
		return "Signals"
	case TabScreener:
		return "Screener"
	}
	return string(t)
}
