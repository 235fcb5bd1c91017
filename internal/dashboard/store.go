package dashboard

import (
	"context"
	"errors"
	"time"

	pcache "PredBoard/pkg/cache"
	applogger "PredBoard/pkg/logger"
)

const tabKeyPrefix = "session:tab"

// TabStore persists each session's last active tab.
type TabStore struct {
	cache pcache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewTabStore(c pcache.Service, ttl time.Duration, l *applogger.Logger) *TabStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TabStore{cache: c, ttl: ttl, l: l}
}

// Get returns the stored tab. Unknown stored values are ignored.
func (s *TabStore) Get(ctx context.Context, session string) (Tab, bool) {
	var raw string
	if err := s.cache.Get(ctx, pcache.GenerateKey(tabKeyPrefix, session), &raw); err != nil {
		if !errors.Is(err, pcache.ErrCacheMiss) {
			s.l.Warn("read persisted tab failed", applogger.String("session", session), applogger.Error(err))
		}
		return "", false
	}
	tab, err := ParseTab(raw)
	if err != nil {
		return "", false
	}
	return tab, true
}

func (s *TabStore) Set(ctx context.Context, session string, tab Tab) error {
	return s.cache.Set(ctx, pcache.GenerateKey(tabKeyPrefix, session), string(tab), s.ttl)
}
