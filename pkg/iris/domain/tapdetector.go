package domain

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

const (
	DefaultTapWindow = 400 * time.Millisecond
	DefaultTapCount  = 3
)

// TapDetector interprets rapid repeated taps. Taps are counted within a rolling window (every tap restarts it):
// reaching `count` taps fires onMultiTap right away; otherwise onSingleTap fires once the window elapses.
// Exactly one of the two fires per completed tap sequence.
type TapDetector struct {
	mutex       sync.Mutex
	clock       clock.Clock
	window      time.Duration
	count       int
	taps        int
	generation  int
	timer       clock.Timer
	onSingleTap func()
	onMultiTap  func()
}

func NewTapDetector(clock clock.Clock, window time.Duration, count int, onSingleTap, onMultiTap func()) *TapDetector {
	if window <= 0 {
		window = DefaultTapWindow
	}
	if count < 2 {
		count = DefaultTapCount
	}
	return &TapDetector{
		clock:       clock,
		window:      window,
		count:       count,
		onSingleTap: onSingleTap,
		onMultiTap:  onMultiTap,
	}
}

func (t *TapDetector) Tap() {
	t.mutex.Lock()
	t.taps++
	t.generation++
	t.stopTimerLocked()
	if t.taps >= t.count {
		t.taps = 0
		t.mutex.Unlock()
		t.onMultiTap()
		return
	}
	generation := t.generation
	t.timer = t.clock.AfterFunc(t.window, func() {
		t.expire(generation)
	})
	t.mutex.Unlock()
}

// Stop forgets pending taps without firing anything.
func (t *TapDetector) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.taps = 0
	t.generation++
	t.stopTimerLocked()
}

func (t *TapDetector) expire(generation int) {
	t.mutex.Lock()
	// A newer tap (or Stop) has superseded this timer even if Stop() came too late to prevent it from firing.
	if generation != t.generation || t.taps == 0 {
		t.mutex.Unlock()
		return
	}
	t.taps = 0
	t.timer = nil
	t.mutex.Unlock()
	t.onSingleTap()
}

func (t *TapDetector) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
