package models

import "slices"

// Instructor defaults applied when a record omits its load settings.
const (
	DefaultBlockSize  = 2
	DefaultMinClasses = 2
	DefaultMaxClasses = 10
)

// TimeRange blocks an inclusive window on the listed days.
type TimeRange struct {
	Days      []string `json:"days"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
}

// Unavailability is the legacy blacklist consulted only when no explicit availability exists.
type Unavailability struct {
	Days       []string    `json:"days,omitempty"`
	Slots      []string    `json:"slots,omitempty"`
	TimeRanges []TimeRange `json:"timeRanges,omitempty"`
}

// Instructor is a schedulable staff member.
type Instructor struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Email                string            `json:"email"`
	Phone                string            `json:"phone"`
	ClassTypes           []string          `json:"classTypes"`
	BlockSize            int               `json:"blockSize"`
	MinClasses           int               `json:"minClasses"`
	MaxClasses           int               `json:"maxClasses"`
	Availability         []string          `json:"availability"`
	ClassTypePreferences map[string]string `json:"classTypePreferences"`
	Unavailability       Unavailability    `json:"unavailability"`
}

// CanTeach reports whether classType is among the instructor's eligible types.
func (i *Instructor) CanTeach(classType string) bool {
	return slices.Contains(i.ClassTypes, classType)
}

// PrefersAt reports whether the instructor asked to teach classType at the given slot.
func (i *Instructor) PrefersAt(day, time, classType string) bool {
	if len(i.ClassTypePreferences) == 0 {
		return false
	}
	return i.ClassTypePreferences[SlotKey(day, time)] == classType
}

// AvailabilityRule resolves which availability variant governs this instructor.
func (i *Instructor) AvailabilityRule() AvailabilityRule {
	if len(i.Availability) > 0 {
		set := make(map[string]struct{}, len(i.Availability))
		for _, slot := range i.Availability {
			set[slot] = struct{}{}
		}
		return Whitelist{slots: set}
	}
	return Blacklist{Unavailability: i.Unavailability}
}

// Clone returns a deep copy.
func (i Instructor) Clone() Instructor {
	out := i
	out.ClassTypes = slices.Clone(i.ClassTypes)
	out.Availability = slices.Clone(i.Availability)
	if i.ClassTypePreferences != nil {
		out.ClassTypePreferences = make(map[string]string, len(i.ClassTypePreferences))
		for k, v := range i.ClassTypePreferences {
			out.ClassTypePreferences[k] = v
		}
	}
	out.Unavailability = Unavailability{
		Days:  slices.Clone(i.Unavailability.Days),
		Slots: slices.Clone(i.Unavailability.Slots),
	}
	if i.Unavailability.TimeRanges != nil {
		out.Unavailability.TimeRanges = make([]TimeRange, len(i.Unavailability.TimeRanges))
		for idx, r := range i.Unavailability.TimeRanges {
			out.Unavailability.TimeRanges[idx] = TimeRange{Days: slices.Clone(r.Days), StartTime: r.StartTime, EndTime: r.EndTime}
		}
	}
	return out
}

// AvailabilityRule decides whether an instructor may be scheduled at a day/time.
// The only implementations are Whitelist and Blacklist.
type AvailabilityRule interface {
	Allows(day, time string) bool
	sealed()
}

// Whitelist admits only the declared slot keys.
type Whitelist struct {
	slots map[string]struct{}
}

// Allows implements AvailabilityRule.
func (w Whitelist) Allows(day, time string) bool {
	_, ok := w.slots[SlotKey(day, time)]
	return ok
}

func (Whitelist) sealed() {}

// Blacklist admits everything except legacy day, slot and time-range exclusions.
type Blacklist struct {
	Unavailability
}

// Allows implements AvailabilityRule.
func (b Blacklist) Allows(day, time string) bool {
	if slices.Contains(b.Days, day) {
		return false
	}
	if slices.Contains(b.Slots, SlotKey(day, time)) {
		return false
	}
	for _, r := range b.TimeRanges {
		if slices.Contains(r.Days, day) && TimeInRange(time, r.StartTime, r.EndTime) {
			return false
		}
	}
	return true
}

func (Blacklist) sealed() {}

// NormalizeInstructor fills defaults and rewrites preferences that reference ineligible class types.
// It never rejects a record.
func NormalizeInstructor(in Instructor) Instructor {
	out := in.Clone()

	seen := make(map[string]struct{}, len(out.ClassTypes))
	types := make([]string, 0, len(out.ClassTypes))
	for _, t := range out.ClassTypes {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	out.ClassTypes = types

	if out.Availability == nil {
		out.Availability = []string{}
	}
	if out.ClassTypePreferences == nil {
		out.ClassTypePreferences = map[string]string{}
	}
	if out.BlockSize <= 0 {
		out.BlockSize = DefaultBlockSize
	}
	if out.MinClasses <= 0 {
		out.MinClasses = DefaultMinClasses
	}
	if out.MaxClasses <= 0 {
		out.MaxClasses = DefaultMaxClasses
	}

	for slot, classType := range out.ClassTypePreferences {
		if out.CanTeach(classType) {
			continue
		}
		if len(out.ClassTypes) == 0 {
			delete(out.ClassTypePreferences, slot)
			continue
		}
		out.ClassTypePreferences[slot] = out.ClassTypes[0]
	}
	return out
}

// DefaultInstructors is the roster used when no persisted state exists.
func DefaultInstructors() []Instructor {
	seed := []Instructor{
		{ID: "DB", Name: "Dayron", Email: "dayron@example.com", Phone: "555-123-4567", ClassTypes: []string{ClassTypeLagree, ClassTypeStrength, ClassTypeBoxing, ClassTypePT}, BlockSize: 4, MinClasses: 15, MaxClasses: 20},
		{ID: "MH", Name: "Michelle", Email: "michelle@example.com", Phone: "555-234-5678", ClassTypes: []string{ClassTypeLagree, ClassTypeStrength}, BlockSize: 4, MinClasses: 15, MaxClasses: 20},
		{ID: "AK", Name: "Allison", ClassTypes: []string{ClassTypeStretch, ClassTypeLagree}, BlockSize: 2, MinClasses: 2, MaxClasses: 10},
		{ID: "AD", Name: "Aseel", ClassTypes: []string{ClassTypeLagree}, BlockSize: 1, MinClasses: 1, MaxClasses: 6},
		{ID: "TS", Name: "Taylor", ClassTypes: []string{ClassTypeLagree}, BlockSize: 2, MinClasses: 4, MaxClasses: 8},
		{ID: "MB", Name: "Megan", ClassTypes: []string{ClassTypeLagree}, BlockSize: 2, MinClasses: 3, MaxClasses: 8},
		{ID: "EF", Name: "Erin", ClassTypes: []string{ClassTypeLagree}, BlockSize: 2, MinClasses: 4, MaxClasses: 10},
		{ID: "SS", Name: "Sandhya", ClassTypes: []string{ClassTypeLagree}, BlockSize: 2, MinClasses: 5, MaxClasses: 15},
		{ID: "JD", Name: "Jess", ClassTypes: []string{ClassTypeStrength}, BlockSize: 2, MinClasses: 5, MaxClasses: 15},
	}
	out := make([]Instructor, len(seed))
	for i, in := range seed {
		out[i] = NormalizeInstructor(in)
	}
	return out
}

// InstructorPatch carries a partial instructor update; nil fields are left unchanged.
type InstructorPatch struct {
	Name                 *string            `json:"name,omitempty"`
	Email                *string            `json:"email,omitempty"`
	Phone                *string            `json:"phone,omitempty"`
	ClassTypes           *[]string          `json:"classTypes,omitempty"`
	BlockSize            *int               `json:"blockSize,omitempty"`
	MinClasses           *int               `json:"minClasses,omitempty"`
	MaxClasses           *int               `json:"maxClasses,omitempty"`
	Availability         *[]string          `json:"availability,omitempty"`
	ClassTypePreferences *map[string]string `json:"classTypePreferences,omitempty"`
	Unavailability       *Unavailability    `json:"unavailability,omitempty"`
}

// Apply merges the patch into a copy of in and normalizes the result. The id never changes.
func (p InstructorPatch) Apply(in Instructor) Instructor {
	out := in.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.ClassTypes != nil {
		out.ClassTypes = slices.Clone(*p.ClassTypes)
	}
	if p.BlockSize != nil {
		out.BlockSize = *p.BlockSize
	}
	if p.MinClasses != nil {
		out.MinClasses = *p.MinClasses
	}
	if p.MaxClasses != nil {
		out.MaxClasses = *p.MaxClasses
	}
	if p.Availability != nil {
		out.Availability = slices.Clone(*p.Availability)
	}
	if p.ClassTypePreferences != nil {
		prefs := make(map[string]string, len(*p.ClassTypePreferences))
		for k, v := range *p.ClassTypePreferences {
			prefs[k] = v
		}
		out.ClassTypePreferences = prefs
	}
	if p.Unavailability != nil {
		out.Unavailability = Unavailability{
			Days:       slices.Clone(p.Unavailability.Days),
			Slots:      slices.Clone(p.Unavailability.Slots),
			TimeRanges: slices.Clone(p.Unavailability.TimeRanges),
		}
	}
	return NormalizeInstructor(out)
}
