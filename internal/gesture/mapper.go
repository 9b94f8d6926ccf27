package gesture

import "time"

// DefaultCooldown is the minimum interval between two emitted actions.
const DefaultCooldown = 500 * time.Millisecond

// ActionMapper converts stable gestures into game actions and enforces the
// inter-action cooldown. After emitting an action it stays in a cooldown
// window for the configured duration: stable gestures arriving inside the
// window are observed but emit no action, so a held fist produces one jump
// per cooldown period rather than one per frame.
//
// ActionMapper is not safe for concurrent use.
type ActionMapper struct {
	cooldown time.Duration
	lastEmit time.Time
	armed    bool
}

// NewActionMapper creates a mapper with the given cooldown. Non-positive
// durations fall back to DefaultCooldown.
func NewActionMapper(cooldown time.Duration) *ActionMapper {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &ActionMapper{cooldown: cooldown}
}

// Map converts a stable gesture into an action event using the wall clock.
func (m *ActionMapper) Map(g Stable) ActionEvent {
	return m.MapAt(g, time.Now())
}

// MapAt converts a stable gesture into an action event at the given instant.
// KindNone, and any gesture arriving inside the cooldown window, yields an
// ActionNone event. The cooldown window ends purely on elapsed time,
// independent of gesture state.
func (m *ActionMapper) MapAt(g Stable, now time.Time) ActionEvent {
	none := ActionEvent{Kind: ActionNone, Timestamp: g.Timestamp}
	if g.Kind == KindNone {
		return none
	}
	if m.armed && now.Sub(m.lastEmit) < m.cooldown {
		return none
	}

	m.lastEmit = now
	m.armed = true
	return ActionEvent{Kind: ActionFor(g.Kind), Timestamp: g.Timestamp}
}

// Reset clears the cooldown state so the next stable gesture maps immediately.
func (m *ActionMapper) Reset() {
	m.armed = false
	m.lastEmit = time.Time{}
}
