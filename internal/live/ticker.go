package live

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "dayboard/internal/log"
)

// defaultTickSpec re-derives live status once a minute.
const defaultTickSpec = "@every 1m"

// Ticker runs the periodic agenda re-derivation while the selected date
// is today. Arming is idempotent (a new arm clears any prior schedule
// first, so ticks never double up) and each tick is guarded so one
// failing recomputation cannot kill future ticks.
type Ticker struct {
	mu    sync.Mutex
	cron  *cron.Cron
	spec  string
	fn    func()
	entry cron.EntryID
	armed bool
}

// NewTicker builds a ticker invoking fn on the given cron spec
// (defaulting to every minute). The schedule stays disarmed until Arm or
// Track.
func NewTicker(spec string, fn func()) *Ticker {
	if spec == "" {
		spec = defaultTickSpec
	}
	return &Ticker{
		cron: cron.New(),
		spec: spec,
		fn:   fn,
	}
}

// Arm schedules the tick, clearing any prior schedule first.
func (t *Ticker) Arm() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed {
		t.cron.Remove(t.entry)
		t.armed = false
	}

	id, err := t.cron.AddFunc(t.spec, t.tick)
	if err != nil {
		return fmt.Errorf("live: bad tick spec %q: %w", t.spec, err)
	}
	t.entry = id
	t.armed = true
	t.cron.Start()
	return nil
}

// Disarm stops future ticks. Safe to call when already disarmed.
func (t *Ticker) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.armed {
		t.cron.Remove(t.entry)
		t.armed = false
	}
}

// Armed reports whether a tick is scheduled.
func (t *Ticker) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Track arms the ticker when selectedDate is today (at now, in now's
// location) and disarms it otherwise. Call it whenever the selected date
// changes.
func (t *Ticker) Track(selectedDate string, now time.Time) error {
	if !IsToday(selectedDate, now) {
		t.Disarm()
		return nil
	}
	t.mu.Lock()
	armed := t.armed
	t.mu.Unlock()
	if armed {
		return nil
	}
	return t.Arm()
}

// Stop disarms and shuts the underlying scheduler down, blocking until
// any in-flight tick has finished. No recomputation runs after Stop
// returns.
func (t *Ticker) Stop() {
	t.Disarm()
	<-t.cron.Stop().Done()
}

// tick runs one guarded recomputation.
func (t *Ticker) tick() {
	defer func() {
		if r := recover(); r != nil {
			appLog.Error("live: tick recomputation panicked", fmt.Errorf("%v", r))
		}
	}()
	if t.fn != nil {
		t.fn()
	}
}
