package models

// LockedAssignments is a sparse day → class type → time → instructor id overlay marking
// assignments that regeneration must keep.
type LockedAssignments map[string]map[string]map[string]string

// Get returns the locked instructor for the slot.
func (l LockedAssignments) Get(day, classType, time string) (string, bool) {
	id, ok := l[day][classType][time]
	return id, ok && id != ""
}

// Set locks instructorID at the slot.
func (l LockedAssignments) Set(day, classType, time, instructorID string) {
	if l[day] == nil {
		l[day] = make(map[string]map[string]string)
	}
	if l[day][classType] == nil {
		l[day][classType] = make(map[string]string)
	}
	l[day][classType][time] = instructorID
}

// Delete removes the lock at the slot and prunes empty levels. It reports whether a lock existed.
func (l LockedAssignments) Delete(day, classType, time string) bool {
	byType, ok := l[day]
	if !ok {
		return false
	}
	byTime, ok := byType[classType]
	if !ok {
		return false
	}
	if _, ok := byTime[time]; !ok {
		return false
	}
	delete(byTime, time)
	if len(byTime) == 0 {
		delete(byType, classType)
	}
	if len(byType) == 0 {
		delete(l, day)
	}
	return true
}

// Count returns the number of locked slots.
func (l LockedAssignments) Count() int {
	n := 0
	for _, byType := range l {
		for _, byTime := range byType {
			n += len(byTime)
		}
	}
	return n
}

// Each visits every lock in catalog order; locks on keys outside the catalogs are skipped.
func (l LockedAssignments) Each(fn func(day, classType, time, instructorID string)) {
	for d := 0; d < DayCount; d++ {
		byType, ok := l[daysOfWeek[d]]
		if !ok {
			continue
		}
		for t := 0; t < ClassTypeCount; t++ {
			byTime, ok := byType[classTypes[t]]
			if !ok {
				continue
			}
			for tm := 0; tm < TimeCount; tm++ {
				if id, ok := byTime[classTimes[tm]]; ok && id != "" {
					fn(daysOfWeek[d], classTypes[t], classTimes[tm], id)
				}
			}
		}
	}
}

// Clone returns a deep copy. A nil table clones to an empty one.
func (l LockedAssignments) Clone() LockedAssignments {
	out := make(LockedAssignments, len(l))
	for day, byType := range l {
		outType := make(map[string]map[string]string, len(byType))
		for classType, byTime := range byType {
			outTime := make(map[string]string, len(byTime))
			for time, id := range byTime {
				outTime[time] = id
			}
			outType[classType] = outTime
		}
		out[day] = outType
	}
	return out
}
