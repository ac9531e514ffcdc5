package lyricsync

// NoActiveLine is the index reported while the adjusted playback time is
// before the first lyric line.
const NoActiveLine = -1

// Tracker maps playback time samples to the active line of a Set.
// It holds the user-adjustable offset and the last reported index so
// callers are only notified when the active line actually changes.
// Tracker is not safe for concurrent use; it is driven from the single
// playback timeline that owns the session.
type Tracker struct {
	set       Set
	offset    float64
	current   int
	listeners []func(index int)
}

// NewTracker creates a tracker over the given lyric set with no active
// line and a zero offset.
func NewTracker(set Set) *Tracker {
	return &Tracker{set: set, current: NoActiveLine}
}

// Load replaces the lyric set wholesale and clears the active line.
// The offset is kept: it is a user preference, not a property of the set.
func (t *Tracker) Load(set Set) {
	t.set = set
	t.current = NoActiveLine
}

// Set returns the lyric set currently tracked.
func (t *Tracker) Set() Set {
	return t.set
}

// Offset adds deltaSeconds to the cumulative offset and returns the new
// value. The offset is unbounded in either direction.
func (t *Tracker) Offset(deltaSeconds float64) float64 {
	t.offset += deltaSeconds
	return t.offset
}

// CurrentOffset returns the cumulative offset in seconds.
func (t *Tracker) CurrentOffset() float64 {
	return t.offset
}

// ResetOffset sets the offset back to 0.
func (t *Tracker) ResetOffset() {
	t.offset = 0
}

// OnChange registers a listener invoked whenever Update moves to a new
// active line. Listeners receive NoActiveLine when playback rewinds past
// the first line.
func (t *Tracker) OnChange(fn func(index int)) {
	t.listeners = append(t.listeners, fn)
}

// Update computes the active line for the given playback time and
// reports whether it changed since the previous sample. The active line
// is the greatest index whose timestamp is <= time+offset; scanning from
// the end means the last-declared line wins among equal timestamps.
func (t *Tracker) Update(currentTimeSeconds float64) (index int, changed bool) {
	adjusted := currentTimeSeconds + t.offset

	index = NoActiveLine
	for i := len(t.set.Lines) - 1; i >= 0; i-- {
		if t.set.Lines[i].Time <= adjusted {
			index = i
			break
		}
	}

	if index == t.current {
		return index, false
	}

	t.current = index
	for _, fn := range t.listeners {
		fn(index)
	}
	return index, true
}

// ActiveIndex returns the index reported by the last Update call, or
// NoActiveLine if none has fired yet.
func (t *Tracker) ActiveIndex() int {
	return t.current
}
