// Package gesture reduces the classifier's per-frame probability vectors
// into discrete reaction signals. The classifier itself is external; the
// reducer only sees its output contract, a five-entry vector of class
// probabilities [hand raise, ok, like, clap, none].
package gesture

import (
	"errors"
	"sync"
	"time"

	"accessible_connect/models"
)

// NumClasses is the number of gesture classes, excluding "none".
const NumClasses = 4

const (
	gestureThreshold = 0.3
	noneThreshold    = 0.1

	// A class releases once its normalized count strictly exceeds this.
	releaseBuffer = 100

	scaleMin = 0
	scaleMax = 3

	// When the "none" counter gets past this, gesture counters are flushed.
	noneFlushCount = 1
)

// Cooldown is how long gesture recognition pauses after a release; the
// suppression window is half of it.
const Cooldown = 10 * time.Second

// ErrInvalidInput is returned for probability vectors of the wrong length.
// The reducer's state is left untouched.
var ErrInvalidInput = errors.New("gesture: probability vector must have 5 entries")

// Reducer accumulates per-frame classifications and releases a signal once
// a class has been seen often enough. It is owned by the local client and
// never shared across participants.
type Reducer struct {
	mu sync.Mutex

	counts    [NumClasses]int
	noneCount int

	enabled    bool
	videoOn    bool
	handRaised bool

	suppressedUntil time.Time
	now             func() time.Time
}

// NewReducer returns a reducer with recognition enabled and the camera
// assumed on.
func NewReducer() *Reducer {
	return &Reducer{
		enabled: true,
		videoOn: true,
		now:     time.Now,
	}
}

// SetEnabled toggles gesture recognition.
func (r *Reducer) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// SetVideoOn tracks the local camera state. Toggling the camera flushes the
// gesture counters so stale progress doesn't survive a blank feed.
func (r *Reducer) SetVideoOn(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videoOn = on
	r.flush()
}

// SetHandRaised suppresses hand-raise releases while the hand is already up.
func (r *Reducer) SetHandRaised(raised bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handRaised = raised
}

// Ingest consumes one frame's probability vector and reports whether a
// signal released. At most one counter moves per frame: the first class in
// priority order whose probability clears its threshold. A release flushes
// the gesture counters and suppresses accumulation for Cooldown/2.
func (r *Reducer) Ingest(probs []float64) (models.SignalCode, bool, error) {
	if len(probs) != NumClasses+1 {
		return 0, false, ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled || !r.videoOn || r.now().Before(r.suppressedUntil) {
		return 0, false, nil
	}

	for class := 0; class < NumClasses; class++ {
		if probs[class] <= gestureThreshold {
			continue
		}
		r.counts[class]++
		if class == int(models.SignalHandRaise) && r.handRaised {
			// Hand is already up, keep counting but never re-release.
			return 0, false, nil
		}
		if normalize(r.counts[class]) > releaseBuffer {
			return r.release(models.SignalCode(class)), true, nil
		}
		return 0, false, nil
	}

	if probs[NumClasses] > noneThreshold {
		r.noneCount++
		if r.noneCount > noneFlushCount {
			r.flush()
		}
	}
	return 0, false, nil
}

// Progress returns each gesture class's normalized counter, the value the
// progress rings render (0 to 100 in steps of 10, saturating above 100 at
// the release point).
func (r *Reducer) Progress() [NumClasses]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var p [NumClasses]int
	for i, c := range r.counts {
		p[i] = normalize(c)
	}
	return p
}

func (r *Reducer) release(code models.SignalCode) models.SignalCode {
	r.flush()
	r.suppressedUntil = r.now().Add(Cooldown / 2)
	return code
}

// flush zeroes the gesture counters. The "none" counter is deliberately
// left alone.
func (r *Reducer) flush() {
	for i := range r.counts {
		r.counts[i] = 0
	}
}

// normalize scales a raw count onto 0-100 and snaps it to the closest lower
// multiple of 10. Integer division floors for non-negative counts, matching
// the release point of count >= 4: normalize(3) == 100, normalize(4) == 130.
func normalize(v int) int {
	return ((v - scaleMin) * 100 / (scaleMax - scaleMin)) / 10 * 10
}
