package service

import "github.com/noah-isme/tempo-schedule-api/internal/models"

// DefaultHistoryDepth bounds the undo stack when no depth is configured.
const DefaultHistoryDepth = 10

// historyBuffer is a bounded LIFO of state snapshots. Snapshots are stored as given and must not be
// mutated afterwards; the schedule service only ever replaces state, never edits it in place.
type historyBuffer struct {
	depth     int
	snapshots []models.ScheduleState
}

func newHistoryBuffer(depth int) *historyBuffer {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &historyBuffer{depth: depth, snapshots: make([]models.ScheduleState, 0, depth)}
}

// push records a snapshot, evicting the oldest when full.
func (h *historyBuffer) push(state models.ScheduleState) {
	if len(h.snapshots) == h.depth {
		copy(h.snapshots, h.snapshots[1:])
		h.snapshots = h.snapshots[:h.depth-1]
	}
	h.snapshots = append(h.snapshots, state)
}

// pop removes and returns the newest snapshot.
func (h *historyBuffer) pop() (models.ScheduleState, bool) {
	if len(h.snapshots) == 0 {
		return models.ScheduleState{}, false
	}
	last := len(h.snapshots) - 1
	state := h.snapshots[last]
	h.snapshots[last] = models.ScheduleState{}
	h.snapshots = h.snapshots[:last]
	return state, true
}

func (h *historyBuffer) len() int { return len(h.snapshots) }

func (h *historyBuffer) reset() { h.snapshots = h.snapshots[:0] }
