package status

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures every sink call for assertion.
type recordingSink struct {
	mu    sync.Mutex
	shows []State
	hides int
}

func (r *recordingSink) Show(state State, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows = append(r.shows, state)
}

func (r *recordingSink) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
}

func (r *recordingSink) snapshot() ([]State, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.shows...), r.hides
}

func TestIndicator_ShowAndHide(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	ind := New(sink)
	assert.Equal(t, StateHidden, ind.Current())

	ind.Show(StateWorking, "capturing")
	assert.Equal(t, StateWorking, ind.Current())

	ind.Show(StateSuccess, "saved")
	ind.Hide(0)
	assert.Equal(t, StateHidden, ind.Current())

	shows, hides := sink.snapshot()
	assert.Equal(t, []State{StateWorking, StateSuccess}, shows)
	assert.Equal(t, 1, hides)
}

func TestIndicator_DelayedHide(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	ind := New(sink)

	ind.Show(StateSuccess, "saved")
	ind.Hide(10 * time.Millisecond)
	assert.Equal(t, StateSuccess, ind.Current(), "hide is deferred")

	require.Eventually(t, func() bool {
		return ind.Current() == StateHidden
	}, time.Second, 5*time.Millisecond)

	_, hides := sink.snapshot()
	assert.Equal(t, 1, hides)
}

func TestIndicator_ShowCancelsPendingHide(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	ind := New(sink)

	ind.Show(StateSuccess, "saved")
	ind.Hide(20 * time.Millisecond)
	ind.Show(StateWorking, "capturing again")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateWorking, ind.Current(), "the newer show outlives the stale hide")

	_, hides := sink.snapshot()
	assert.Equal(t, 0, hides)
}

func TestIndicator_NilSinkLogsOnly(t *testing.T) {
	t.Parallel()

	ind := New(nil)
	ind.Show(StateError, "failed")
	assert.Equal(t, StateError, ind.Current())
	ind.Hide(0)
	assert.Equal(t, StateHidden, ind.Current())
}
