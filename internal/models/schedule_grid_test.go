package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellWireForm(t *testing.T) {
	cases := []struct {
		cell Cell
		wire string
	}{
		{EmptyCell(), `null`},
		{UnresolvedCell(), `"TBD"`},
		{AssignedCell("DB"), `"DB"`},
	}
	for _, tc := range cases {
		raw, err := json.Marshal(tc.cell)
		require.NoError(t, err)
		assert.JSONEq(t, tc.wire, string(raw))

		var decoded Cell
		require.NoError(t, json.Unmarshal([]byte(tc.wire), &decoded))
		assert.Equal(t, tc.cell, decoded)
	}

	var bad Cell
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestScheduleIsTotalAndRejectsUnknownSlots(t *testing.T) {
	s := NewSchedule()
	count := 0
	s.Each(func(day, classType, slotTime string, cell Cell) {
		count++
		assert.False(t, cell.Offered())
	})
	assert.Equal(t, DayCount*ClassTypeCount*TimeCount, count)

	assert.False(t, s.Set("Mon", "Yoga", "6:00 AM", UnresolvedCell()))
	_, ok := s.Get("Mon", "Yoga", "6:00 AM")
	assert.False(t, ok)
	assert.Equal(t, EmptyCell(), s.Cell("Mon", "Yoga", "6:00 AM"))
}

func TestScheduleCloneIsIndependent(t *testing.T) {
	s := NewSchedule()
	s.Set("Mon", ClassTypeLagree, "6:00 AM", AssignedCell("DB"))

	clone := s.Clone()
	require.True(t, clone.Equal(s))
	clone.Set("Mon", ClassTypeLagree, "6:00 AM", UnresolvedCell())

	assert.Equal(t, AssignedCell("DB"), s.Cell("Mon", ClassTypeLagree, "6:00 AM"))
	assert.False(t, clone.Equal(s))

	var nilSchedule *Schedule
	assert.True(t, nilSchedule.Clone().Equal(NewSchedule()))
}

func TestScheduleJSONRoundTrip(t *testing.T) {
	s := NewSchedule()
	s.Set("Tue", ClassTypeBoxing, "6:00 PM", AssignedCell("DB"))
	s.Set("Sat", ClassTypeLagree, "9:00 AM", UnresolvedCell())

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var nested map[string]map[string]map[string]*string
	require.NoError(t, json.Unmarshal(raw, &nested))
	require.Len(t, nested, DayCount)
	require.NotNil(t, nested["Tue"][ClassTypeBoxing]["6:00 PM"])
	assert.Equal(t, "DB", *nested["Tue"][ClassTypeBoxing]["6:00 PM"])
	assert.Nil(t, nested["Mon"][ClassTypePT]["5:30 AM"])

	decoded := NewSchedule()
	require.NoError(t, json.Unmarshal(raw, decoded))
	assert.True(t, decoded.Equal(s))
}

func TestScheduleUnmarshalIgnoresUnknownKeys(t *testing.T) {
	decoded := NewSchedule()
	err := json.Unmarshal([]byte(`{"Mon":{"Lagree":{"6:00 AM":"MH","6:15 AM":"DB"},"Yoga":{"6:00 AM":"TBD"}},"Funday":{}}`), decoded)
	require.NoError(t, err)

	assert.Equal(t, AssignedCell("MH"), decoded.Cell("Mon", ClassTypeLagree, "6:00 AM"))
	offered := 0
	decoded.Each(func(_, _, _ string, cell Cell) {
		if cell.Offered() {
			offered++
		}
	})
	assert.Equal(t, 1, offered)
}

func TestLockedAssignments(t *testing.T) {
	locks := LockedAssignments{}
	locks.Set("Mon", ClassTypeLagree, "6:00 AM", "DB")
	locks.Set("Mon", ClassTypeLagree, "6:30 AM", "DB")
	locks.Set("Sun", ClassTypePT, "8:00 PM", "JD")
	assert.Equal(t, 3, locks.Count())

	id, ok := locks.Get("Mon", ClassTypeLagree, "6:00 AM")
	require.True(t, ok)
	assert.Equal(t, "DB", id)

	clone := locks.Clone()
	assert.True(t, locks.Delete("Sun", ClassTypePT, "8:00 PM"))
	assert.False(t, locks.Delete("Sun", ClassTypePT, "8:00 PM"))
	_, dayPresent := locks["Sun"]
	assert.False(t, dayPresent, "empty levels are pruned")
	assert.Equal(t, 3, clone.Count())

	var visited []string
	clone.Each(func(day, classType, slotTime, instructorID string) {
		visited = append(visited, SlotKey(day, slotTime)+"/"+instructorID)
	})
	assert.Equal(t, []string{"Mon-6:00 AM/DB", "Mon-6:30 AM/DB", "Sun-8:00 PM/JD"}, visited)
}

func TestScheduleStateRecordRoundTrip(t *testing.T) {
	state := NewScheduleState()
	state.Schedule.Set("Wed", ClassTypeStrength, "7:00 AM", AssignedCell("JD"))
	state.LockedAssignments.Set("Wed", ClassTypeStrength, "7:00 AM", "JD")

	record, err := NewScheduleStateRecord("default", state)
	require.NoError(t, err)
	assert.Equal(t, "default", record.ID)

	decoded, err := record.State()
	require.NoError(t, err)
	assert.Len(t, decoded.Instructors, len(state.Instructors))
	assert.True(t, decoded.Schedule.Equal(state.Schedule))
	id, ok := decoded.LockedAssignments.Get("Wed", ClassTypeStrength, "7:00 AM")
	require.True(t, ok)
	assert.Equal(t, "JD", id)
}

func TestScheduleStateCloneIsDeep(t *testing.T) {
	state := NewScheduleState()
	clone := state.Clone()
	clone.Instructors[0].ClassTypes[0] = ClassTypePT
	clone.LockedAssignments.Set("Mon", ClassTypeLagree, "6:00 AM", "DB")

	assert.Equal(t, ClassTypeLagree, state.Instructors[0].ClassTypes[0])
	assert.Zero(t, state.LockedAssignments.Count())
	assert.Equal(t, 0, state.FindInstructor("DB"))
	assert.Equal(t, -1, state.FindInstructor("ZZ"))
}
