package control

import (
	"time"

	"github.com/saheli56/Temple-Run/internal/gesture"
)

// keyBuffer is how many unconsumed key presses the keyboard backend holds
// before dropping new ones.
const keyBuffer = 16

// keyboardBackend maps designated key presses directly to gesture samples
// with full confidence. It is the guaranteed terminal fallback: no camera,
// no helper process, probe never fails.
type keyboardBackend struct {
	keys chan rune
}

func newKeyboardBackend() *keyboardBackend {
	return &keyboardBackend{keys: make(chan rune, keyBuffer)}
}

func (b *keyboardBackend) Kind() BackendKind { return BackendKeyboardSimulated }

func (b *keyboardBackend) Probe() error { return nil }

// Submit feeds one key press into the backend. Unmapped keys and presses
// beyond the buffer are dropped. Safe to call from any goroutine.
func (b *keyboardBackend) Submit(key rune) {
	if kindForKey(key) == gesture.KindNone {
		return
	}
	select {
	case b.keys <- key:
	default:
	}
}

func (b *keyboardBackend) Classify() (gesture.Sample, error) {
	sample := gesture.Sample{Kind: gesture.KindNone, Timestamp: time.Now()}
	select {
	case key := <-b.keys:
		sample.Kind = kindForKey(key)
		sample.Confidence = 1.0
	default:
	}
	return sample, nil
}

func (b *keyboardBackend) Degraded() bool { return false }

func (b *keyboardBackend) Release() error { return nil }

func kindForKey(key rune) gesture.Kind {
	switch key {
	case 'f', 'F':
		return gesture.KindFist
	case 'i', 'I':
		return gesture.KindIndexPoint
	case 'o', 'O':
		return gesture.KindOpenPalm
	}
	return gesture.KindNone
}
