package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Class types offered by the studio, in catalog order.
const (
	ClassTypeLagree   = "Lagree"
	ClassTypeStrength = "Strength"
	ClassTypeBoxing   = "Boxing"
	ClassTypeStretch  = "Stretch"
	ClassTypePT       = "PT"
)

// UnresolvedInstructor is the wire sentinel for an offered class without an instructor.
const UnresolvedInstructor = "TBD"

var classTypes = [...]string{ClassTypeLagree, ClassTypeStrength, ClassTypeBoxing, ClassTypeStretch, ClassTypePT}

var daysOfWeek = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var classTimes = [...]string{
	"5:30 AM", "6:00 AM", "6:30 AM", "7:00 AM", "7:30 AM", "8:00 AM", "8:30 AM", "9:00 AM", "9:30 AM", "10:00 AM",
	"10:30 AM", "11:00 AM", "11:30 AM", "12:00 PM", "12:30 PM", "1:00 PM", "1:30 PM", "2:00 PM", "2:30 PM", "3:00 PM",
	"3:30 PM", "4:00 PM", "4:30 PM", "5:00 PM", "5:30 PM", "6:00 PM", "6:30 PM", "7:00 PM", "7:30 PM", "8:00 PM",
}

// Catalog sizes.
const (
	ClassTypeCount = len(classTypes)
	DayCount       = len(daysOfWeek)
	TimeCount      = len(classTimes)
)

var (
	classTypeIndex = indexOf(classTypes[:])
	dayIndex       = indexOf(daysOfWeek[:])
	timeIndex      = indexOf(classTimes[:])
)

func indexOf(values []string) map[string]int {
	out := make(map[string]int, len(values))
	for i, v := range values {
		out[v] = i
	}
	return out
}

// CatalogView is the read-only projection of the fixed weekly template axes.
type CatalogView struct {
	ClassTypes []string `json:"classTypes"`
	Days       []string `json:"days"`
	Times      []string `json:"times"`
}

// Catalog returns copies of the class type, day and time catalogs.
func Catalog() CatalogView {
	return CatalogView{
		ClassTypes: ClassTypes(),
		Days:       DaysOfWeek(),
		Times:      ClassTimes(),
	}
}

// ClassTypes returns the class type catalog.
func ClassTypes() []string { return append([]string(nil), classTypes[:]...) }

// DaysOfWeek returns the day catalog, Monday first.
func DaysOfWeek() []string { return append([]string(nil), daysOfWeek[:]...) }

// ClassTimes returns the half-hour time labels in chronological order.
func ClassTimes() []string { return append([]string(nil), classTimes[:]...) }

// DayIndex resolves a day label to its catalog position.
func DayIndex(day string) (int, bool) {
	i, ok := dayIndex[day]
	return i, ok
}

// ClassTypeIndex resolves a class type label to its catalog position.
func ClassTypeIndex(classType string) (int, bool) {
	i, ok := classTypeIndex[classType]
	return i, ok
}

// TimeIndex resolves a time label to its catalog position.
func TimeIndex(label string) (int, bool) {
	i, ok := timeIndex[label]
	return i, ok
}

// DayAt returns the day label at position i.
func DayAt(i int) string { return daysOfWeek[i] }

// ClassTypeAt returns the class type label at position i.
func ClassTypeAt(i int) string { return classTypes[i] }

// TimeAt returns the time label at position i.
func TimeAt(i int) string { return classTimes[i] }

// IsCatalogSlot reports whether day, classType and time all belong to the catalogs.
func IsCatalogSlot(day, classType, time string) bool {
	_, okDay := dayIndex[day]
	_, okType := classTypeIndex[classType]
	_, okTime := timeIndex[time]
	return okDay && okType && okTime
}

// SlotKey builds the "{day}-{time}" key used by availability and preference data.
func SlotKey(day, time string) string {
	return day + "-" + time
}

// ParseSlotKey splits a slot key at the first dash.
func ParseSlotKey(key string) (day, time string, ok bool) {
	day, time, ok = strings.Cut(key, "-")
	if !ok || day == "" || time == "" {
		return "", "", false
	}
	return day, time, true
}

// ToMinutes converts a 12-hour "H:MM AM/PM" label into minutes since midnight.
func ToMinutes(label string) (int, error) {
	clock, period, ok := strings.Cut(strings.TrimSpace(label), " ")
	if !ok {
		return 0, fmt.Errorf("time label %q: missing AM/PM", label)
	}
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, fmt.Errorf("time label %q: missing minutes", label)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 1 || hours > 12 {
		return 0, fmt.Errorf("time label %q: invalid hour", label)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time label %q: invalid minutes", label)
	}

	switch strings.ToUpper(period) {
	case "AM":
		if hours == 12 {
			hours = 0
		}
	case "PM":
		if hours != 12 {
			hours += 12
		}
	default:
		return 0, fmt.Errorf("time label %q: invalid period", label)
	}
	return hours*60 + minutes, nil
}

// TimeInRange reports whether t falls within [start, end]. Malformed labels never match.
func TimeInRange(t, start, end string) bool {
	tm, err := ToMinutes(t)
	if err != nil {
		return false
	}
	sm, err := ToMinutes(start)
	if err != nil {
		return false
	}
	em, err := ToMinutes(end)
	if err != nil {
		return false
	}
	return tm >= sm && tm <= em
}

var timeRangePresets = map[string][]string{
	"Early Morning (5:30-7:00 AM)": {"5:30 AM", "6:00 AM", "6:30 AM"},
	"Morning (7:00-9:00 AM)":       {"7:00 AM", "7:30 AM", "8:00 AM", "8:30 AM"},
	"Mid-Morning (9:00-12:00)":     {"9:00 AM", "9:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM"},
	"Lunch (12:00-2:00 PM)":        {"12:00 PM", "12:30 PM", "1:00 PM", "1:30 PM"},
	"Afternoon (2:00-4:00 PM)":     {"2:00 PM", "2:30 PM", "3:00 PM", "3:30 PM"},
	"Evening (4:00-6:00 PM)":       {"4:00 PM", "4:30 PM", "5:00 PM", "5:30 PM"},
	"Late Evening (6:00-8:00 PM)":  {"6:00 PM", "6:30 PM", "7:00 PM", "7:30 PM", "8:00 PM"},
}

// ExpandTimeRangePreset maps a registration preset name to its catalog times.
func ExpandTimeRangePreset(name string) []string {
	return append([]string(nil), timeRangePresets[name]...)
}

// TimeRangePresetNames lists the registration presets in chronological order.
func TimeRangePresetNames() []string {
	return []string{
		"Early Morning (5:30-7:00 AM)",
		"Morning (7:00-9:00 AM)",
		"Mid-Morning (9:00-12:00)",
		"Lunch (12:00-2:00 PM)",
		"Afternoon (2:00-4:00 PM)",
		"Evening (4:00-6:00 PM)",
		"Late Evening (6:00-8:00 PM)",
	}
}
