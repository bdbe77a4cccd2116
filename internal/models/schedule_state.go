package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleState bundles the three collections mutated together: instructors, schedule and locks.
type ScheduleState struct {
	Instructors       []Instructor      `json:"instructors"`
	Schedule          *Schedule         `json:"schedule"`
	LockedAssignments LockedAssignments `json:"lockedAssignments"`
}

// NewScheduleState returns the boot state: default roster, empty week, no locks.
func NewScheduleState() ScheduleState {
	return ScheduleState{
		Instructors:       DefaultInstructors(),
		Schedule:          NewSchedule(),
		LockedAssignments: LockedAssignments{},
	}
}

// Clone returns a deep copy safe to mutate independently.
func (s ScheduleState) Clone() ScheduleState {
	out := ScheduleState{
		Instructors:       make([]Instructor, len(s.Instructors)),
		Schedule:          s.Schedule.Clone(),
		LockedAssignments: s.LockedAssignments.Clone(),
	}
	for i, in := range s.Instructors {
		out.Instructors[i] = in.Clone()
	}
	return out
}

// FindInstructor returns the index of the instructor with id, or -1.
func (s ScheduleState) FindInstructor(id string) int {
	for i := range s.Instructors {
		if s.Instructors[i].ID == id {
			return i
		}
	}
	return -1
}

// InstructorClass identifies one class taught by an instructor.
type InstructorClass struct {
	Day  string `json:"day"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// ScheduleStateRecord is the persisted form of a ScheduleState.
type ScheduleStateRecord struct {
	ID                string         `db:"id" json:"id"`
	Instructors       types.JSONText `db:"instructors" json:"instructors"`
	Schedule          types.JSONText `db:"schedule" json:"schedule"`
	LockedAssignments types.JSONText `db:"locked_assignments" json:"locked_assignments"`
	Revision          int64          `db:"revision" json:"revision"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// NewScheduleStateRecord encodes a state for storage under id.
func NewScheduleStateRecord(id string, state ScheduleState) (*ScheduleStateRecord, error) {
	instructors, err := json.Marshal(state.Instructors)
	if err != nil {
		return nil, fmt.Errorf("encode instructors: %w", err)
	}
	schedule, err := json.Marshal(state.Schedule)
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	locks := state.LockedAssignments
	if locks == nil {
		locks = LockedAssignments{}
	}
	locked, err := json.Marshal(locks)
	if err != nil {
		return nil, fmt.Errorf("encode locked assignments: %w", err)
	}
	return &ScheduleStateRecord{
		ID:                id,
		Instructors:       types.JSONText(instructors),
		Schedule:          types.JSONText(schedule),
		LockedAssignments: types.JSONText(locked),
	}, nil
}

// State decodes the stored collections.
func (r *ScheduleStateRecord) State() (ScheduleState, error) {
	state := ScheduleState{Schedule: NewSchedule(), LockedAssignments: LockedAssignments{}}
	if len(r.Instructors) > 0 {
		if err := r.Instructors.Unmarshal(&state.Instructors); err != nil {
			return ScheduleState{}, fmt.Errorf("decode instructors: %w", err)
		}
	}
	if len(r.Schedule) > 0 {
		if err := r.Schedule.Unmarshal(state.Schedule); err != nil {
			return ScheduleState{}, fmt.Errorf("decode schedule: %w", err)
		}
	}
	if len(r.LockedAssignments) > 0 {
		if err := r.LockedAssignments.Unmarshal(&state.LockedAssignments); err != nil {
			return ScheduleState{}, fmt.Errorf("decode locked assignments: %w", err)
		}
		if state.LockedAssignments == nil {
			state.LockedAssignments = LockedAssignments{}
		}
	}
	if state.Instructors == nil {
		state.Instructors = []Instructor{}
	}
	return state, nil
}
