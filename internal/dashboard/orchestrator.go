package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	applogger "PredBoard/pkg/logger"
	xutil "PredBoard/pkg/util"
)

// Loader produces the view for a tab. ticker only matters for TabAnalysis.
type Loader interface {
	LoadTab(ctx context.Context, tab Tab, ticker string, force bool) any
}

// Orchestrator is one session's tab state machine. Each tab's loader runs on
// its first activation; later activations reuse the loaded view until it is
// invalidated or explicitly reloaded.
type Orchestrator struct {
	mu       sync.Mutex
	id       string
	active   Tab
	ticker   string
	views    map[Tab]any
	loads    map[Tab]int
	loader   Loader
	store    *TabStore
	def      Tab
	lastSeen time.Time
	now      func() time.Time
	l        *applogger.Logger
}

func NewOrchestrator(id string, loader Loader, store *TabStore, def Tab, l *applogger.Logger) *Orchestrator {
	if _, err := ParseTab(string(def)); err != nil {
		def = TabUniverse
	}
	o := &Orchestrator{
		id:     id,
		active: def,
		views:  map[Tab]any{},
		loads:  map[Tab]int{},
		loader: loader,
		store:  store,
		def:    def,
		now:    time.Now,
		l:      l.With(applogger.String("session", id)),
	}
	o.lastSeen = o.now()
	return o
}

// Init restores the persisted tab (or the default) and loads it. A non-empty
// deepLink then navigates to its analysis.
func (o *Orchestrator) Init(ctx context.Context, deepLink string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.touch()

	tab := o.def
	if o.store != nil {
		if saved, ok := o.store.Get(ctx, o.id); ok {
			tab = saved
		}
	}
	o.active = tab
	t := xutil.NormalizeTicker(deepLink)
	if tab == TabAnalysis {
		// The deep link is the ticker of the restored analysis tab.
		o.ticker = t
	}
	o.ensureLoaded(ctx, tab)

	if t != "" {
		o.navigate(ctx, t)
	}
}

// Switch activates the named tab. Unknown names return ErrUnknownTab and
// leave the state alone; the active tab is a no-op.
func (o *Orchestrator) Switch(ctx context.Context, name string) (changed bool, err error) {
	tab, err := ParseTab(name)
	if err != nil {
		o.l.Warn("ignoring switch to unknown tab", applogger.String("tab", name))
		return false, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.touch()

	if tab == o.active {
		return false, nil
	}
	o.active = tab
	o.persist(ctx)
	o.ensureLoaded(ctx, tab)
	return true, nil
}

// Navigate selects ticker and shows its analysis.
func (o *Orchestrator) Navigate(ctx context.Context, ticker string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.touch()
	o.navigate(ctx, xutil.NormalizeTicker(ticker))
}

func (o *Orchestrator) navigate(ctx context.Context, ticker string) {
	if ticker != o.ticker {
		delete(o.views, TabAnalysis)
		o.ticker = ticker
	}
	if o.active != TabAnalysis {
		o.active = TabAnalysis
		o.persist(ctx)
	}
	o.ensureLoaded(ctx, TabAnalysis)
}

// Reload force-loads the active tab.
func (o *Orchestrator) Reload(ctx context.Context) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.touch()
	return o.load(ctx, o.active, true)
}

// View returns the active tab and its view, loading it if it was
// invalidated.
func (o *Orchestrator) View(ctx context.Context) (Tab, any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.touch()
	return o.active, o.ensureLoaded(ctx, o.active)
}

// Invalidate drops the loaded views of tabs, or of every tab when none are
// given.
func (o *Orchestrator) Invalidate(tabs ...Tab) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(tabs) == 0 {
		o.views = map[Tab]any{}
		return
	}
	for _, t := range tabs {
		delete(o.views, t)
	}
}

func (o *Orchestrator) Active() Tab {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

func (o *Orchestrator) Ticker() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ticker
}

// Loaded reports whether tab currently holds a view.
func (o *Orchestrator) Loaded(tab Tab) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.views[tab]
	return ok
}

// Loads is how many times tab's loader ran in this session.
func (o *Orchestrator) Loads(tab Tab) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loads[tab]
}

// LastSeen is the time of the last interaction.
func (o *Orchestrator) LastSeen() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSeen
}

func (o *Orchestrator) ensureLoaded(ctx context.Context, tab Tab) any {
	if v, ok := o.views[tab]; ok {
		return v
	}
	return o.load(ctx, tab, false)
}

func (o *Orchestrator) load(ctx context.Context, tab Tab, force bool) any {
	v := o.loader.LoadTab(ctx, tab, o.ticker, force)
	o.views[tab] = v
	o.loads[tab]++
	o.l.Debug("tab loaded", applogger.String("tab", string(tab)), applogger.Bool("force", force))
	return v
}

func (o *Orchestrator) persist(ctx context.Context) {
	if o.store == nil {
		return
	}
	if err := o.store.Set(ctx, o.id, o.active); err != nil && !errors.Is(err, context.Canceled) {
		o.l.Warn("persist active tab failed", applogger.Error(err))
	}
}

func (o *Orchestrator) touch() { o.lastSeen = o.now() }
