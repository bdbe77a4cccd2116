package dto

import "github.com/noah-isme/tempo-schedule-api/internal/models"

// SlotRequest addresses one (day, class type, time) cell.
type SlotRequest struct {
	Day  string `json:"day" form:"day" validate:"required,catalog_day"`
	Type string `json:"type" form:"type" validate:"required,catalog_class_type"`
	Time string `json:"time" form:"time" validate:"required,catalog_time"`
}

// AddClassRequest offers a class, optionally with an instructor already attached.
type AddClassRequest struct {
	SlotRequest
	InstructorID string `json:"instructorId"`
}

// AssignInstructorRequest manually assigns an instructor (or "TBD") to a slot.
type AssignInstructorRequest struct {
	SlotRequest
	InstructorID string `json:"instructorId" validate:"required"`
}

// LockStatusResponse reports whether a slot is locked.
type LockStatusResponse struct {
	Day          string `json:"day"`
	Type         string `json:"type"`
	Time         string `json:"time"`
	Locked       bool   `json:"locked"`
	InstructorID string `json:"instructorId,omitempty"`
}

// MutationResponse reports the outcome of a schedule mutation.
type MutationResponse struct {
	Changed bool `json:"changed"`
}

// SeedResponse reports how many template classes were created.
type SeedResponse struct {
	Seeded int `json:"seeded"`
}

// UndoResponse reports whether a snapshot was restored and how many remain.
type UndoResponse struct {
	Restored  bool `json:"restored"`
	Remaining int  `json:"remaining"`
}

// GenerateResponse returns the regenerated schedule with run statistics.
type GenerateResponse struct {
	Schedule *models.Schedule        `json:"schedule"`
	Locks    models.LockedAssignments `json:"lockedAssignments"`
	Stats    GenerateStatsResponse    `json:"stats"`
}

// GenerateStatsResponse mirrors the assignment engine counters.
type GenerateStatsResponse struct {
	PreferencesApplied int   `json:"preferencesApplied"`
	PreferencesSkipped int   `json:"preferencesSkipped"`
	LockedPreserved    int   `json:"lockedPreserved"`
	StaleLocksDropped  int   `json:"staleLocksDropped"`
	Candidates         int   `json:"candidates"`
	Assigned           int   `json:"assigned"`
	Unresolved         int   `json:"unresolved"`
	DurationMicros     int64 `json:"durationMicros"`
}

// InstructorLoad is one instructor's weekly assignment count against their bounds.
type InstructorLoad struct {
	InstructorID string `json:"instructorId"`
	Name         string `json:"name"`
	Assigned     int    `json:"assigned"`
	MinClasses   int    `json:"minClasses"`
	MaxClasses   int    `json:"maxClasses"`
	BelowMinimum bool   `json:"belowMinimum"`
}

// ScheduleStatsResponse summarises the current week.
type ScheduleStatsResponse struct {
	TotalAssigned  int              `json:"totalAssigned"`
	TotalScheduled int              `json:"totalScheduled"`
	Unresolved     int              `json:"unresolved"`
	Locked         int              `json:"locked"`
	UndoDepth      int              `json:"undoDepth"`
	Instructors    []InstructorLoad `json:"instructors"`
}

// AuditViolation describes one broken schedule invariant.
type AuditViolation struct {
	Kind         string `json:"kind"`
	InstructorID string `json:"instructorId,omitempty"`
	Day          string `json:"day,omitempty"`
	Type         string `json:"type,omitempty"`
	Time         string `json:"time,omitempty"`
	Message      string `json:"message"`
}

// AuditReport lists every violation found in a state.
type AuditReport struct {
	Healthy    bool             `json:"healthy"`
	Violations []AuditViolation `json:"violations"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

// SlotResponse reports the value of one cell after a mutation.
type SlotResponse struct {
	Day    string      `json:"day"`
	Type   string      `json:"type"`
	Time   string      `json:"time"`
	Value  models.Cell `json:"value"`
	Locked bool        `json:"locked"`
}

// StateResponse is the full persisted state plus where it was last loaded from.
type StateResponse struct {
	Instructors       []models.Instructor      `json:"instructors"`
	Schedule          *models.Schedule         `json:"schedule"`
	LockedAssignments models.LockedAssignments `json:"lockedAssignments"`
	UndoDepth         int                      `json:"undoDepth"`
}
