package service

import "github.com/noah-isme/tempo-schedule-api/internal/models"

// HasConflict reports whether instructorID already teaches any class type at day/time.
func HasConflict(schedule *models.Schedule, instructorID, day, time string) bool {
	if schedule == nil {
		return false
	}
	d, okDay := models.DayIndex(day)
	tm, okTime := models.TimeIndex(time)
	if !okDay || !okTime {
		return false
	}
	for t := 0; t < models.ClassTypeCount; t++ {
		if schedule.At(d, t, tm).IsAssignedTo(instructorID) {
			return true
		}
	}
	return false
}

// IsEligible reports whether the instructor may teach classType.
func IsEligible(instructor *models.Instructor, classType string) bool {
	return instructor != nil && instructor.CanTeach(classType)
}

// IsAvailable applies the instructor's availability rule: an explicit whitelist when present,
// otherwise the legacy unavailability blacklist.
func IsAvailable(instructor *models.Instructor, day, time string) bool {
	if instructor == nil {
		return false
	}
	return instructor.AvailabilityRule().Allows(day, time)
}
