package service

import "github.com/noah-isme/tempo-schedule-api/internal/models"

// templateClass is one recurring class in the studio's standard week.
type templateClass struct {
	classType string
	times     []string
}

var (
	weekdayMonWed = []templateClass{
		{models.ClassTypeLagree, []string{"5:30 AM", "6:30 AM", "7:30 AM", "8:30 AM", "9:30 AM", "10:30 AM", "12:00 PM", "1:00 PM", "5:30 PM", "6:30 PM"}},
		{models.ClassTypeStrength, []string{"7:30 AM", "12:00 PM"}},
		{models.ClassTypeBoxing, []string{"6:30 AM"}},
	}
	weekdayTueThu = []templateClass{
		{models.ClassTypeLagree, []string{"5:30 AM", "6:30 AM", "7:30 AM", "8:30 AM", "9:30 AM", "10:30 AM", "12:00 PM", "1:00 PM", "4:30 PM", "5:30 PM", "6:30 PM"}},
		{models.ClassTypeStrength, []string{"6:30 AM", "12:00 PM", "5:30 PM", "6:30 PM"}},
	}

	// weeklyTemplate is the standard offering seeded as unresolved classes.
	weeklyTemplate = map[string][]templateClass{
		"Sun": {
			{models.ClassTypeLagree, []string{"9:00 AM", "10:00 AM", "11:00 AM"}},
			{models.ClassTypeStretch, []string{"12:00 PM", "1:00 PM"}},
		},
		"Mon": weekdayMonWed,
		"Tue": weekdayTueThu,
		"Wed": weekdayMonWed,
		"Thu": weekdayTueThu,
		"Fri": {
			{models.ClassTypeLagree, []string{"5:30 AM", "6:30 AM", "7:30 AM", "8:30 AM", "9:30 AM", "10:30 AM", "12:00 PM", "1:00 PM"}},
			{models.ClassTypeStrength, []string{"7:30 AM", "12:00 PM"}},
			{models.ClassTypeBoxing, []string{"6:30 AM"}},
			{models.ClassTypeStretch, []string{"1:00 PM"}},
		},
		"Sat": {
			{models.ClassTypeLagree, []string{"7:00 AM", "8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM", "12:00 PM", "1:00 PM"}},
			{models.ClassTypeStrength, []string{"9:00 AM", "10:00 AM", "11:00 AM"}},
			{models.ClassTypeBoxing, []string{"8:00 AM"}},
		},
	}
)

// seedTemplate marks every empty template slot as an unresolved class and returns how many it set.
// Offered or assigned slots are left alone, so seeding twice changes nothing.
func seedTemplate(schedule *models.Schedule) int {
	seeded := 0
	for _, day := range models.DaysOfWeek() {
		for _, class := range weeklyTemplate[day] {
			for _, slotTime := range class.times {
				cell, ok := schedule.Get(day, class.classType, slotTime)
				if !ok || cell.Offered() {
					continue
				}
				schedule.Set(day, class.classType, slotTime, models.UnresolvedCell())
				seeded++
			}
		}
	}
	return seeded
}
