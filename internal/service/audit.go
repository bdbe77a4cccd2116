package service

import (
	"fmt"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/models"
)

// Audit violation kinds.
const (
	ViolationDoubleBooking     = "double_booking"
	ViolationOverMaxClasses    = "over_max_classes"
	ViolationLockDrift         = "lock_drift"
	ViolationStaleLock         = "stale_lock"
	ViolationUnknownInstructor = "unknown_instructor"
	ViolationIneligible        = "ineligible_assignment"
)

// AuditState checks a state against the scheduling invariants without modifying it.
func AuditState(state models.ScheduleState) dto.AuditReport {
	report := dto.AuditReport{Violations: make([]dto.AuditViolation, 0)}
	schedule := state.Schedule
	if schedule == nil {
		schedule = models.NewSchedule()
	}

	byID := make(map[string]*models.Instructor, len(state.Instructors))
	for i := range state.Instructors {
		byID[state.Instructors[i].ID] = &state.Instructors[i]
	}

	loads := make(map[string]int)
	for d := 0; d < models.DayCount; d++ {
		day := models.DayAt(d)
		for tm := 0; tm < models.TimeCount; tm++ {
			slotTime := models.TimeAt(tm)
			seenAt := make(map[string]string)
			for t := 0; t < models.ClassTypeCount; t++ {
				classType := models.ClassTypeAt(t)
				cell := schedule.At(d, t, tm)
				if cell.State != models.CellAssigned {
					continue
				}
				id := cell.InstructorID
				loads[id]++

				if first, dup := seenAt[id]; dup {
					report.Violations = append(report.Violations, dto.AuditViolation{
						Kind: ViolationDoubleBooking, InstructorID: id, Day: day, Type: classType, Time: slotTime,
						Message: fmt.Sprintf("%s also teaches %s at %s %s", id, first, day, slotTime),
					})
				} else {
					seenAt[id] = classType
				}

				in, known := byID[id]
				if !known {
					report.Violations = append(report.Violations, dto.AuditViolation{
						Kind: ViolationUnknownInstructor, InstructorID: id, Day: day, Type: classType, Time: slotTime,
						Message: fmt.Sprintf("%s is not on the roster", id),
					})
					continue
				}
				if !in.CanTeach(classType) {
					report.Violations = append(report.Violations, dto.AuditViolation{
						Kind: ViolationIneligible, InstructorID: id, Day: day, Type: classType, Time: slotTime,
						Message: fmt.Sprintf("%s is not eligible for %s", id, classType),
					})
				}
			}
		}
	}

	for _, in := range state.Instructors {
		if loads[in.ID] > in.MaxClasses {
			report.Violations = append(report.Violations, dto.AuditViolation{
				Kind:         ViolationOverMaxClasses,
				InstructorID: in.ID,
				Message:      fmt.Sprintf("%s teaches %d classes, maximum is %d", in.ID, loads[in.ID], in.MaxClasses),
			})
		}
	}

	state.LockedAssignments.Each(func(day, classType, slotTime, id string) {
		if _, known := byID[id]; !known {
			report.Violations = append(report.Violations, dto.AuditViolation{
				Kind: ViolationStaleLock, InstructorID: id, Day: day, Type: classType, Time: slotTime,
				Message: fmt.Sprintf("lock names removed instructor %s", id),
			})
			return
		}
		if cell := schedule.Cell(day, classType, slotTime); !cell.IsAssignedTo(id) {
			report.Violations = append(report.Violations, dto.AuditViolation{
				Kind: ViolationLockDrift, InstructorID: id, Day: day, Type: classType, Time: slotTime,
				Message: fmt.Sprintf("lock names %s but the slot holds %q", id, cell.Value()),
			})
		}
	})

	report.Healthy = len(report.Violations) == 0
	return report
}

// Audit checks the current state.
func (s *ClassScheduleService) Audit() dto.AuditReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AuditState(s.state)
}
