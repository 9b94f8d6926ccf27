package gesture

import (
	"testing"
	"time"
)

func stableAt(k Kind, ts time.Time) Stable {
	return Stable{Kind: k, Confidence: 0.9, Timestamp: ts}
}

func TestActionMapper_Vocabulary(t *testing.T) {
	ts := time.Now()

	tests := []struct {
		gesture Kind
		want    ActionKind
	}{
		{KindFist, ActionJump},
		{KindIndexPoint, ActionCrouch},
		{KindOpenPalm, ActionIdle},
		{KindNone, ActionNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.gesture), func(t *testing.T) {
			m := NewActionMapper(DefaultCooldown)
			got := m.MapAt(stableAt(tt.gesture, ts), ts)
			if got.Kind != tt.want {
				t.Errorf("MapAt(%q) = %q, want %q", tt.gesture, got.Kind, tt.want)
			}
		})
	}
}

func TestActionMapper_Cooldown(t *testing.T) {
	m := NewActionMapper(500 * time.Millisecond)
	t0 := time.Now()

	got := m.MapAt(stableAt(KindFist, t0), t0)
	if got.Kind != ActionJump {
		t.Fatalf("first MapAt = %q, want %q", got.Kind, ActionJump)
	}

	got = m.MapAt(stableAt(KindFist, t0), t0.Add(200*time.Millisecond))
	if got.Kind != ActionNone {
		t.Errorf("MapAt inside cooldown = %q, want %q", got.Kind, ActionNone)
	}

	got = m.MapAt(stableAt(KindFist, t0), t0.Add(600*time.Millisecond))
	if got.Kind != ActionJump {
		t.Errorf("MapAt after cooldown = %q, want %q", got.Kind, ActionJump)
	}
}

func TestActionMapper_CooldownCoversAllGestures(t *testing.T) {
	// One shared window: a jump suppresses a crouch that follows too soon.
	m := NewActionMapper(500 * time.Millisecond)
	t0 := time.Now()

	if got := m.MapAt(stableAt(KindFist, t0), t0); got.Kind != ActionJump {
		t.Fatalf("first MapAt = %q, want %q", got.Kind, ActionJump)
	}

	got := m.MapAt(stableAt(KindIndexPoint, t0), t0.Add(100*time.Millisecond))
	if got.Kind != ActionNone {
		t.Errorf("crouch inside jump cooldown = %q, want %q", got.Kind, ActionNone)
	}

	got = m.MapAt(stableAt(KindIndexPoint, t0), t0.Add(600*time.Millisecond))
	if got.Kind != ActionCrouch {
		t.Errorf("crouch after cooldown = %q, want %q", got.Kind, ActionCrouch)
	}
}

func TestActionMapper_HeldGestureEmitsOncePerWindow(t *testing.T) {
	m := NewActionMapper(500 * time.Millisecond)
	t0 := time.Now()

	emitted := 0
	for i := 0; i < 20; i++ {
		now := t0.Add(time.Duration(i) * 100 * time.Millisecond)
		if got := m.MapAt(stableAt(KindFist, now), now); got.Kind == ActionJump {
			emitted++
		}
	}

	// 2s of held fist at 500ms cooldown: ticks 0, 5, 10, 15 emit.
	if emitted != 4 {
		t.Errorf("emitted %d jumps over 20 ticks, want 4", emitted)
	}
}

func TestActionMapper_NoneDoesNotStartCooldown(t *testing.T) {
	m := NewActionMapper(500 * time.Millisecond)
	t0 := time.Now()

	if got := m.MapAt(stableAt(KindNone, t0), t0); got.Kind != ActionNone {
		t.Fatalf("MapAt(none) = %q, want %q", got.Kind, ActionNone)
	}

	got := m.MapAt(stableAt(KindFist, t0), t0.Add(time.Millisecond))
	if got.Kind != ActionJump {
		t.Errorf("MapAt right after a none = %q, want %q", got.Kind, ActionJump)
	}
}

func TestActionMapper_Reset(t *testing.T) {
	m := NewActionMapper(500 * time.Millisecond)
	t0 := time.Now()

	m.MapAt(stableAt(KindFist, t0), t0)
	m.Reset()

	got := m.MapAt(stableAt(KindOpenPalm, t0), t0.Add(time.Millisecond))
	if got.Kind != ActionIdle {
		t.Errorf("MapAt after Reset = %q, want %q", got.Kind, ActionIdle)
	}
}

func TestActionMapper_EventKeepsGestureTimestamp(t *testing.T) {
	m := NewActionMapper(500 * time.Millisecond)
	gestureTime := time.Now().Add(-50 * time.Millisecond)

	got := m.MapAt(stableAt(KindFist, gestureTime), time.Now())
	if !got.Timestamp.Equal(gestureTime) {
		t.Errorf("Timestamp = %v, want stable gesture time %v", got.Timestamp, gestureTime)
	}
}

func TestNewActionMapper_FallbackCooldown(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		m := NewActionMapper(d)
		if m.cooldown != DefaultCooldown {
			t.Errorf("NewActionMapper(%v).cooldown = %v, want %v", d, m.cooldown, DefaultCooldown)
		}
	}
}
