// Package status is the capture progress indicator: an explicit component
// instance with an injected sink, owned by whichever context orchestrates
// the capture. No module-level state.
package status

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is what the indicator currently shows.
type State string

const (
	StateWorking State = "working"
	StateSuccess State = "success"
	StateError   State = "error"
	StateHidden  State = "hidden"
)

// Sink receives indicator changes. The default sink logs; a UI layer can
// inject its own.
type Sink interface {
	Show(state State, message string)
	Hide()
}

// Indicator tracks one capture's visible status. Safe for concurrent use.
type Indicator struct {
	mu        sync.Mutex
	sink      Sink
	state     State
	hideTimer *time.Timer
}

// New creates an Indicator over the given sink; nil means log-only.
func New(sink Sink) *Indicator {
	if sink == nil {
		sink = logSink{}
	}
	return &Indicator{sink: sink, state: StateHidden}
}

// Show displays a state, cancelling any pending delayed hide.
func (i *Indicator) Show(state State, message string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.hideTimer != nil {
		i.hideTimer.Stop()
		i.hideTimer = nil
	}
	i.state = state
	i.sink.Show(state, message)
}

// Hide hides the indicator after the given delay (immediately when zero).
// A later Show cancels a pending hide.
func (i *Indicator) Hide(after time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.hideTimer != nil {
		i.hideTimer.Stop()
		i.hideTimer = nil
	}

	if after <= 0 {
		i.state = StateHidden
		i.sink.Hide()
		return
	}

	i.hideTimer = time.AfterFunc(after, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		i.hideTimer = nil
		i.state = StateHidden
		i.sink.Hide()
	})
}

// Current returns the state the indicator is showing.
func (i *Indicator) Current() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

type logSink struct{}

func (logSink) Show(state State, message string) {
	zap.L().Info("capture status",
		zap.String("state", string(state)),
		zap.String("message", message),
	)
}

func (logSink) Hide() {
	zap.L().Debug("capture status hidden")
}
