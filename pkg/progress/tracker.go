// Package progress owns a single pipeline run's progress state.
package progress

import (
	"sync"
	"time"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// Notifier receives a snapshot after every mutation.
type Notifier func(state models.ProgressState)

// Tracker is the single entry point for progress mutations. Stage code never
// touches the state directly, which keeps two invariants: percentage is
// monotonically non-decreasing, and steps are appended in strict
// chronological order, never reordered or removed.
type Tracker struct {
	mu                sync.Mutex
	state             models.ProgressState
	clock             func() time.Time
	notify            Notifier
	artifactsEstimate int
}

// NewTracker starts a run's progress clock. A nil clock means wall clock;
// tests inject their own. A nil notifier is valid and drops snapshots.
func NewTracker(notify Notifier, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}

	return &Tracker{
		state: models.ProgressState{
			Steps:     []models.ProgressStep{},
			StartTime: clock(),
		},
		clock:  clock,
		notify: notify,
	}
}

// AppendStep adds a step to the chronological log.
func (t *Tracker) AppendStep(message string, status models.StepStatus) {
	t.mu.Lock()
	t.state.Steps = append(t.state.Steps, models.ProgressStep{
		Message:   message,
		Status:    status,
		Timestamp: t.clock(),
	})
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snapshot)
}

// UpdateStep changes the status of the most recent step.
func (t *Tracker) UpdateStep(status models.StepStatus) {
	t.mu.Lock()

	if len(t.state.Steps) > 0 {
		t.state.Steps[len(t.state.Steps)-1].Status = status
	}

	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snapshot)
}

// SetPercentage advances progress. Decreases are ignored to keep the
// percentage monotone within one run; values are clamped to 0..100.
func (t *Tracker) SetPercentage(percentage int) {
	t.mu.Lock()

	if percentage > 100 {
		percentage = 100
	}

	if percentage > t.state.Percentage {
		t.state.Percentage = percentage
	}

	t.recomputeETALocked()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snapshot)
}

// SetArtifactEstimate records the planner's artifact-count estimate. ETA is
// undefined (not shown) until this is called.
func (t *Tracker) SetArtifactEstimate(count int) {
	t.mu.Lock()
	t.artifactsEstimate = count
	t.recomputeETALocked()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.publish(snapshot)
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() models.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snapshotLocked()
}

// recomputeETALocked extrapolates linearly from elapsed time and current
// percentage: totalEstimated = elapsed / percentage * 100, remaining is the
// rest, clamped to >= 0 and reported in whole seconds.
func (t *Tracker) recomputeETALocked() {
	if t.artifactsEstimate <= 0 {
		t.state.EstimatedSecondsRemaining = nil

		return
	}

	percentage := t.state.Percentage

	if percentage >= 100 {
		zero := 0
		t.state.EstimatedSecondsRemaining = &zero

		return
	}

	if percentage <= 0 {
		t.state.EstimatedSecondsRemaining = nil

		return
	}

	elapsed := t.clock().Sub(t.state.StartTime)
	totalEstimated := elapsed * 100 / time.Duration(percentage)

	remaining := int((totalEstimated - elapsed).Seconds())
	if remaining < 0 {
		remaining = 0
	}

	t.state.EstimatedSecondsRemaining = &remaining
}

func (t *Tracker) snapshotLocked() models.ProgressState {
	snapshot := t.state
	snapshot.Steps = make([]models.ProgressStep, len(t.state.Steps))
	copy(snapshot.Steps, t.state.Steps)

	if t.state.EstimatedSecondsRemaining != nil {
		eta := *t.state.EstimatedSecondsRemaining
		snapshot.EstimatedSecondsRemaining = &eta
	}

	return snapshot
}

func (t *Tracker) publish(snapshot models.ProgressState) {
	if t.notify != nil {
		t.notify(snapshot)
	}
}
