package live

import (
	"errors"
	"math"
	"sync"

	"dayboard/internal/model"
)

// DragMode selects what a pointer gesture edits: the whole span or just
// the end.
type DragMode string

const (
	DragMove   DragMode = "move"
	DragResize DragMode = "resize"
)

// ErrDragActive is returned when a gesture starts while another is still
// unresolved. The prior gesture must commit or cancel first.
var ErrDragActive = errors.New("live: drag already in progress")

// Span is a [Start, End) minute range within one day.
type Span struct {
	Start int
	End   int
}

// TimeChange is the committed outcome of a drag, ready for the host to
// persist onto the underlying event.
type TimeChange struct {
	EventID      string
	NewStartTime string
	NewEndTime   string
}

// Drag is the preview-then-commit state machine for editing an event's
// time span on the timeline. While a gesture is active the preview span
// is what gets rendered, independent of the stored event, so nothing
// jumps until release. Escape cancels with no emitted update.
//
// Only one gesture can be active at a time.
type Drag struct {
	mu sync.Mutex

	pixelsPerMinute float64
	snapMinutes     int

	active  bool
	eventID string
	mode    DragMode
	originY float64
	base    Span
	preview Span
}

// NewDrag builds a drag controller. pixelsPerMinute relates pointer
// travel to minutes (values <= 0 become 1); snapMinutes is the rounding
// increment (values <= 0 become 5).
func NewDrag(pixelsPerMinute float64, snapMinutes int) *Drag {
	if pixelsPerMinute <= 0 {
		pixelsPerMinute = 1
	}
	if snapMinutes <= 0 {
		snapMinutes = 5
	}
	return &Drag{pixelsPerMinute: pixelsPerMinute, snapMinutes: snapMinutes}
}

// Start begins a gesture on the event currently occupying base, with the
// pointer at pointerY. Fails with ErrDragActive if a gesture is already
// in flight.
func (d *Drag) Start(eventID string, mode DragMode, pointerY float64, base Span) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return ErrDragActive
	}

	d.active = true
	d.eventID = eventID
	d.mode = mode
	d.originY = pointerY
	d.base = base
	d.preview = base
	return nil
}

// Move updates the preview for the pointer now being at pointerY and
// returns it. The second result is false when no gesture is active.
func (d *Drag) Move(pointerY float64) (Span, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return Span{}, false
	}

	delta := d.snappedDelta(pointerY)

	switch d.mode {
	case DragResize:
		end := clampInt(d.base.End+delta, d.base.Start+d.snapMinutes, model.MinutesPerDay)
		d.preview = Span{Start: d.base.Start, End: end}
	default: // move: shift both ends, duration preserved
		dur := d.base.End - d.base.Start
		start := clampInt(d.base.Start+delta, 0, model.MinutesPerDay-d.snapMinutes)
		end := start + dur
		if end > model.MinutesPerDay {
			end = model.MinutesPerDay
		}
		d.preview = Span{Start: start, End: end}
	}

	return d.preview, true
}

// Preview returns the current preview span, false when idle.
func (d *Drag) Preview() (Span, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preview, d.active
}

// Active reports whether a gesture is in flight.
func (d *Drag) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Commit resolves the gesture and emits the new times for the host to
// persist. The second result is false when no gesture was active.
func (d *Drag) Commit() (TimeChange, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return TimeChange{}, false
	}

	change := TimeChange{
		EventID:      d.eventID,
		NewStartTime: model.FormatClock(d.preview.Start),
		NewEndTime:   model.FormatClock(d.preview.End),
	}
	d.reset()
	return change, true
}

// Cancel discards the gesture with no emitted update; the event's
// displayed position reverts to its pre-drag value.
func (d *Drag) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *Drag) reset() {
	d.active = false
	d.eventID = ""
	d.mode = ""
	d.originY = 0
	d.base = Span{}
	d.preview = Span{}
}

// snappedDelta converts pointer travel to minutes, rounded to the snap
// increment.
func (d *Drag) snappedDelta(pointerY float64) int {
	raw := (pointerY - d.originY) / d.pixelsPerMinute
	snap := float64(d.snapMinutes)
	return int(math.Round(raw/snap) * snap)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
