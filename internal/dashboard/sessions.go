package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	applogger "PredBoard/pkg/logger"
)

// Sessions maps a session id to its Orchestrator.
type Sessions struct {
	mu     sync.Mutex
	m      map[string]*Orchestrator
	loader Loader
	store  *TabStore
	def    Tab
	idle   time.Duration
	now    func() time.Time
	l      *applogger.Logger
}

func NewSessions(loader Loader, store *TabStore, def Tab, idle time.Duration, l *applogger.Logger) *Sessions {
	if idle <= 0 {
		idle = 2 * time.Hour
	}
	return &Sessions{
		m:      map[string]*Orchestrator{},
		loader: loader,
		store:  store,
		def:    def,
		idle:   idle,
		now:    time.Now,
		l:      l,
	}
}

// Get returns the orchestrator for id. An empty or malformed id gets a fresh
// one. created is true when the orchestrator is new and still needs Init.
func (s *Sessions) Get(id string) (o *Orchestrator, sid string, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.m[id]; ok {
		return o, id, false
	}
	o = NewOrchestrator(id, s.loader, s.store, s.def, s.l)
	o.now = s.now
	o.lastSeen = s.now()
	s.m[id] = o
	return o, id, true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// InvalidateViews drops the named views from every session. Names that are
// not tabs are skipped.
func (s *Sessions) InvalidateViews(views ...string) {
	tabs := make([]Tab, 0, len(views))
	for _, v := range views {
		if t, err := ParseTab(v); err == nil {
			tabs = append(tabs, t)
		}
	}
	if len(tabs) == 0 {
		return
	}
	for _, o := range s.snapshot() {
		o.Invalidate(tabs...)
	}
}

// Sweep removes sessions idle for longer than the idle window. The
// persisted tab outlives the sweep.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idle)
	removed := 0
	for id, o := range s.snapshotByID() {
		if o.LastSeen().Before(cutoff) {
			s.mu.Lock()
			if s.m[id] == o {
				delete(s.m, id)
				removed++
			}
			s.mu.Unlock()
		}
	}
	if removed > 0 {
		s.l.Debug("idle sessions swept", applogger.Int("removed", removed))
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) snapshot() []*Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Orchestrator, 0, len(s.m))
	for _, o := range s.m {
		out = append(out, o)
	}
	return out
}

func (s *Sessions) snapshotByID() map[string]*Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Orchestrator, len(s.m))
	for id, o := range s.m {
		out[id] = o
	}
	return out
}
