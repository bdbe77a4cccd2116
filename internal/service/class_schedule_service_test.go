package service

import (
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
)

type sinkRecorder struct {
	mu     sync.Mutex
	states []models.ScheduleState
}

func (r *sinkRecorder) Schedule(state models.ScheduleState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *sinkRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func newScheduleService(t *testing.T) *ClassScheduleService {
	t.Helper()
	return NewClassScheduleService(models.NewScheduleState(), nil, validator.New(), zap.NewNop(), nil, ClassScheduleConfig{HistoryDepth: 5})
}

func requireAppError(t *testing.T, expected *appErrors.Error, err error) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, expected.Code, appErr.Code)
	assert.Equal(t, expected.Status, appErr.Status)
}

func TestPlaceClass(t *testing.T) {
	svc := newScheduleService(t)

	requireAppError(t, appErrors.ErrOutsideCatalog, svc.PlaceClass("Mon", "Yoga", "6:00 AM", ""))
	requireAppError(t, appErrors.ErrNotFound, svc.PlaceClass("Mon", models.ClassTypeLagree, "6:00 AM", "ZZ"))
	assert.Zero(t, svc.UndoDepth())

	require.NoError(t, svc.PlaceClass("Mon", models.ClassTypeLagree, "6:00 AM", ""))
	assert.Equal(t, models.UnresolvedCell(), svc.Schedule().Cell("Mon", models.ClassTypeLagree, "6:00 AM"))
	assert.Equal(t, 1, svc.UndoDepth())

	require.NoError(t, svc.PlaceClass("Mon", models.ClassTypeLagree, "6:00 AM", ""))
	assert.Equal(t, 1, svc.UndoDepth(), "placing the same value again is not a change")

	require.NoError(t, svc.PlaceClass("Mon", models.ClassTypeBoxing, "6:00 AM", "DB"))
	requireAppError(t, appErrors.ErrDoubleBooked, svc.PlaceClass("Mon", models.ClassTypeLagree, "6:00 AM", "DB"))
	assert.True(t, svc.AddClass("Mon", models.ClassTypeStrength, "6:00 AM", "MH"))
}

func TestRemoveClassDropsLock(t *testing.T) {
	svc := newScheduleService(t)
	require.NoError(t, svc.AssignInstructor("Tue", models.ClassTypeStrength, "6:30 AM", "JD"))

	assert.True(t, svc.RemoveClass("Tue", models.ClassTypeStrength, "6:30 AM"))
	assert.Equal(t, models.EmptyCell(), svc.Schedule().Cell("Tue", models.ClassTypeStrength, "6:30 AM"))
	_, locked := svc.IsAssignmentLocked("Tue", models.ClassTypeStrength, "6:30 AM")
	assert.False(t, locked)

	assert.False(t, svc.RemoveClass("Tue", models.ClassTypeStrength, "6:30 AM"))
	assert.False(t, svc.RemoveClass("Tue", "Yoga", "6:30 AM"))
}

func TestAssignInstructorRules(t *testing.T) {
	svc := newScheduleService(t)

	requireAppError(t, appErrors.ErrOutsideCatalog, svc.AssignInstructor("Mon", models.ClassTypeLagree, "6:15 AM", "DB"))
	requireAppError(t, appErrors.ErrNotFound, svc.AssignInstructor("Mon", models.ClassTypeLagree, "6:00 AM", "ZZ"))
	requireAppError(t, appErrors.ErrIneligible, svc.AssignInstructor("Mon", models.ClassTypeLagree, "6:00 AM", "JD"))

	require.NoError(t, svc.AssignInstructor("Mon", models.ClassTypeStrength, "6:00 AM", "DB"))
	requireAppError(t, appErrors.ErrDoubleBooked, svc.AssignInstructor("Mon", models.ClassTypeLagree, "6:00 AM", "DB"))
	assert.False(t, svc.ManuallyAssignInstructor("Mon", models.ClassTypeLagree, "6:00 AM", "DB"))

	id, locked := svc.IsAssignmentLocked("Mon", models.ClassTypeStrength, "6:00 AM")
	require.True(t, locked)
	assert.Equal(t, "DB", id)
}

func TestAssignInstructorChecksWhitelistAvailability(t *testing.T) {
	svc := newScheduleService(t)
	_, err := svc.AddInstructor(dto.CreateInstructorRequest{
		ID:           "KW",
		Name:         "Kim Wu",
		ClassTypes:   []string{models.ClassTypeLagree},
		Availability: []string{"Mon-6:00 AM"},
	})
	require.NoError(t, err)

	requireAppError(t, appErrors.ErrUnavailable, svc.AssignInstructor("Mon", models.ClassTypeLagree, "7:00 AM", "KW"))
	require.NoError(t, svc.AssignInstructor("Mon", models.ClassTypeLagree, "6:00 AM", "KW"))
}

func TestAssignUnresolvedResetsAndUnlocks(t *testing.T) {
	svc := newScheduleService(t)
	require.NoError(t, svc.AssignInstructor("Wed", models.ClassTypeLagree, "9:30 AM", "SS"))
	depth := svc.UndoDepth()

	require.NoError(t, svc.AssignInstructor("Wed", models.ClassTypeLagree, "9:30 AM", models.UnresolvedInstructor))
	assert.Equal(t, models.UnresolvedCell(), svc.Schedule().Cell("Wed", models.ClassTypeLagree, "9:30 AM"))
	_, locked := svc.IsAssignmentLocked("Wed", models.ClassTypeLagree, "9:30 AM")
	assert.False(t, locked)
	assert.Equal(t, depth+1, svc.UndoDepth())

	require.NoError(t, svc.AssignInstructor("Wed", models.ClassTypeLagree, "9:30 AM", models.UnresolvedInstructor))
	assert.Equal(t, depth+1, svc.UndoDepth())
}

func TestLockAndUnlock(t *testing.T) {
	svc := newScheduleService(t)
	require.NoError(t, svc.PlaceClass("Thu", models.ClassTypeLagree, "5:30 AM", ""))
	assert.False(t, svc.LockAssignment("Thu", models.ClassTypeLagree, "5:30 AM"), "unresolved slots cannot be locked")
	assert.False(t, svc.LockAssignment("Thu", models.ClassTypeLagree, "6:00 AM"), "empty slots cannot be locked")

	require.NoError(t, svc.PlaceClass("Thu", models.ClassTypeLagree, "5:30 AM", "EF"))
	assert.True(t, svc.LockAssignment("Thu", models.ClassTypeLagree, "5:30 AM"))
	assert.False(t, svc.LockAssignment("Thu", models.ClassTypeLagree, "5:30 AM"))

	id, locked := svc.IsAssignmentLocked("Thu", models.ClassTypeLagree, "5:30 AM")
	require.True(t, locked)
	assert.Equal(t, "EF", id)

	assert.True(t, svc.UnlockAssignment("Thu", models.ClassTypeLagree, "5:30 AM"))
	assert.False(t, svc.UnlockAssignment("Thu", models.ClassTypeLagree, "5:30 AM"))
}

func TestPlaceClassReplacingLockedInstructorDropsLock(t *testing.T) {
	svc := newScheduleService(t)
	require.NoError(t, svc.AssignInstructor("Fri", models.ClassTypeLagree, "7:30 AM", "TS"))
	require.NoError(t, svc.PlaceClass("Fri", models.ClassTypeLagree, "7:30 AM", "MB"))

	_, locked := svc.IsAssignmentLocked("Fri", models.ClassTypeLagree, "7:30 AM")
	assert.False(t, locked)
	assert.Empty(t, svc.Audit().Violations)
}

func TestSeedTemplateIsIdempotent(t *testing.T) {
	svc := newScheduleService(t)
	seeded := svc.SeedTemplateClasses()
	require.Positive(t, seeded)
	assert.Equal(t, seeded, svc.GetTotalScheduledSlots())
	assert.Zero(t, svc.GetTotalAssignedClasses())

	assert.Zero(t, svc.SeedTemplateClasses())
	assert.Equal(t, 1, svc.UndoDepth())
}

func TestGenerateCommitsEngineOutcome(t *testing.T) {
	svc := newScheduleService(t)
	svc.SeedTemplateClasses()
	require.NoError(t, svc.AssignInstructor("Sat", models.ClassTypeLagree, "7:00 AM", "AK"))

	outcome := svc.Generate()

	assert.True(t, outcome.Schedule.Equal(svc.Schedule()))
	assert.Equal(t, models.AssignedCell("AK"), svc.Schedule().Cell("Sat", models.ClassTypeLagree, "7:00 AM"))
	assert.Equal(t, outcome.Stats.Assigned, svc.GetTotalAssignedClasses()-1)
	assert.True(t, svc.Audit().Healthy)

	outcome.Schedule.Set("Sat", models.ClassTypeLagree, "7:00 AM", models.UnresolvedCell())
	assert.Equal(t, models.AssignedCell("AK"), svc.Schedule().Cell("Sat", models.ClassTypeLagree, "7:00 AM"), "outcome is a copy")
}

func TestUndoRestoresPreviousStates(t *testing.T) {
	svc := newScheduleService(t)
	assert.False(t, svc.UndoLastChange())

	require.NoError(t, svc.PlaceClass("Sun", models.ClassTypeStretch, "12:00 PM", ""))
	require.NoError(t, svc.AssignInstructor("Sun", models.ClassTypeStretch, "12:00 PM", "AK"))

	require.True(t, svc.UndoLastChange())
	assert.Equal(t, models.UnresolvedCell(), svc.Schedule().Cell("Sun", models.ClassTypeStretch, "12:00 PM"))
	_, locked := svc.IsAssignmentLocked("Sun", models.ClassTypeStretch, "12:00 PM")
	assert.False(t, locked)

	require.True(t, svc.UndoLastChange())
	assert.Equal(t, models.EmptyCell(), svc.Schedule().Cell("Sun", models.ClassTypeStretch, "12:00 PM"))
	assert.False(t, svc.UndoLastChange())
}

func TestUndoHistoryIsBounded(t *testing.T) {
	svc := newScheduleService(t)
	for _, slotTime := range []string{"5:30 AM", "6:00 AM", "6:30 AM", "7:00 AM", "7:30 AM", "8:00 AM", "8:30 AM"} {
		require.NoError(t, svc.PlaceClass("Mon", models.ClassTypeLagree, slotTime, ""))
	}
	assert.Equal(t, 5, svc.UndoDepth())

	for svc.UndoLastChange() {
	}
	assert.Equal(t, models.UnresolvedCell(), svc.Schedule().Cell("Mon", models.ClassTypeLagree, "6:00 AM"))
	assert.Equal(t, models.EmptyCell(), svc.Schedule().Cell("Mon", models.ClassTypeLagree, "6:30 AM"))
}

func TestClearScheduleDropsClassesAndLocks(t *testing.T) {
	svc := newScheduleService(t)
	assert.False(t, svc.ClearSchedule())

	require.NoError(t, svc.AssignInstructor("Mon", models.ClassTypeLagree, "6:00 AM", "DB"))
	assert.True(t, svc.ClearSchedule())
	assert.True(t, svc.Schedule().Equal(models.NewSchedule()))
	assert.Zero(t, svc.Locks().Count())
}

func TestAddInstructorDerivesIDs(t *testing.T) {
	svc := newScheduleService(t)

	id, err := svc.AddInstructor(dto.CreateInstructorRequest{Name: "Jamie Doyle", ClassTypes: []string{models.ClassTypePT}})
	require.NoError(t, err)
	assert.Equal(t, "JD2", id)

	id, err = svc.AddInstructor(dto.CreateInstructorRequest{Name: "quinn", ClassTypes: []string{models.ClassTypePT}})
	require.NoError(t, err)
	assert.Equal(t, "Q", id)

	_, err = svc.AddInstructor(dto.CreateInstructorRequest{ID: "DB", Name: "Dup", ClassTypes: []string{models.ClassTypeLagree}})
	requireAppError(t, appErrors.ErrConflict, err)

	_, err = svc.AddInstructor(dto.CreateInstructorRequest{Name: "No Types"})
	requireAppError(t, appErrors.ErrValidation, err)

	_, err = svc.AddInstructor(dto.CreateInstructorRequest{Name: "Bad", ClassTypes: []string{"Yoga"}})
	requireAppError(t, appErrors.ErrValidation, err)

	added, err := svc.Instructor("JD2")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMaxClasses, added.MaxClasses)
}

func TestRegisterInstructorExpandsAvailability(t *testing.T) {
	svc := newScheduleService(t)

	id, err := svc.RegisterInstructor(dto.RegisterInstructorRequest{
		Name:          "Riley Park",
		Email:         "riley@example.com",
		ClassTypes:    []string{models.ClassTypeLagree},
		PreferredDays: []string{"Sat", "Mon"},
		TimeRanges:    []string{"Early Morning (5:30-7:00 AM)"},
	})
	require.NoError(t, err)

	in, err := svc.Instructor(id)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Mon-5:30 AM", "Mon-6:00 AM", "Mon-6:30 AM",
		"Sat-5:30 AM", "Sat-6:00 AM", "Sat-6:30 AM",
	}, in.Availability)

	_, err = svc.RegisterInstructor(dto.RegisterInstructorRequest{
		Name: "X", Email: "x@example.com", ClassTypes: []string{models.ClassTypeLagree},
		PreferredDays: []string{"Mon"}, TimeRanges: []string{"Lunch Break"},
	})
	requireAppError(t, appErrors.ErrValidation, err)
}

func TestUpdateInstructorFromRequest(t *testing.T) {
	svc := newScheduleService(t)
	max := 3
	updated, err := svc.UpdateInstructorFromRequest("AD", dto.UpdateInstructorRequest{MaxClasses: &max})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxClasses)
	assert.Equal(t, "Aseel", updated.Name)

	_, err = svc.UpdateInstructorFromRequest("ZZ", dto.UpdateInstructorRequest{MaxClasses: &max})
	requireAppError(t, appErrors.ErrNotFound, err)

	bad := 0
	_, err = svc.UpdateInstructorFromRequest("AD", dto.UpdateInstructorRequest{MaxClasses: &bad})
	requireAppError(t, appErrors.ErrValidation, err)
}

func TestDeleteInstructorReleasesClasses(t *testing.T) {
	svc := newScheduleService(t)
	require.NoError(t, svc.AssignInstructor("Mon", models.ClassTypeStrength, "12:00 PM", "JD"))
	require.NoError(t, svc.PlaceClass("Tue", models.ClassTypeStrength, "12:00 PM", "JD"))
	assert.Len(t, svc.GetInstructorClasses("JD"), 2)

	require.True(t, svc.DeleteInstructor("JD"))
	assert.False(t, svc.DeleteInstructor("JD"))

	_, err := svc.Instructor("JD")
	requireAppError(t, appErrors.ErrNotFound, err)
	assert.Equal(t, models.UnresolvedCell(), svc.Schedule().Cell("Mon", models.ClassTypeStrength, "12:00 PM"))
	assert.Empty(t, svc.GetInstructorClasses("JD"))

	// the stale lock is reported until the next generation removes it
	report := svc.Audit()
	require.Len(t, report.Violations, 1)
	assert.Equal(t, ViolationStaleLock, report.Violations[0].Kind)

	svc.Generate()
	assert.True(t, svc.Audit().Healthy)
}

func TestSetInstructorAvailability(t *testing.T) {
	svc := newScheduleService(t)

	require.NoError(t, svc.SetInstructorAvailability("MB", "Mon", "6:00 AM", false))
	in, err := svc.Instructor("MB")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mon-6:00 AM"}, in.Unavailability.Slots)

	require.NoError(t, svc.SetInstructorAvailability("MB", "Mon", "6:00 AM", true))
	in, _ = svc.Instructor("MB")
	assert.Empty(t, in.Unavailability.Slots)

	requireAppError(t, appErrors.ErrOutsideCatalog, svc.SetInstructorAvailability("MB", "Mon", "4:00 AM", true))
	requireAppError(t, appErrors.ErrNotFound, svc.SetInstructorAvailability("ZZ", "Mon", "6:00 AM", true))
}

func TestSetInstructorAvailabilityOnWhitelist(t *testing.T) {
	svc := newScheduleService(t)
	_, err := svc.AddInstructor(dto.CreateInstructorRequest{
		ID: "KW", Name: "Kim Wu", ClassTypes: []string{models.ClassTypeLagree}, Availability: []string{"Mon-6:00 AM"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetInstructorAvailability("KW", "Tue", "6:00 AM", true))
	in, _ := svc.Instructor("KW")
	assert.Equal(t, []string{"Mon-6:00 AM", "Tue-6:00 AM"}, in.Availability)

	require.NoError(t, svc.SetInstructorAvailability("KW", "Mon", "6:00 AM", false))
	requireAppError(t, appErrors.ErrValidation, svc.SetInstructorAvailability("KW", "Tue", "6:00 AM", false))
}

func TestStatsReportsLoad(t *testing.T) {
	svc := newScheduleService(t)
	require.NoError(t, svc.AssignInstructor("Mon", models.ClassTypeLagree, "6:00 AM", "AD"))
	require.NoError(t, svc.PlaceClass("Mon", models.ClassTypeLagree, "7:00 AM", ""))

	stats := svc.Stats()
	assert.Equal(t, 1, stats.TotalAssigned)
	assert.Equal(t, 2, stats.TotalScheduled)
	assert.Equal(t, 1, stats.Unresolved)
	assert.Equal(t, 1, stats.Locked)
	assert.Equal(t, 2, stats.UndoDepth)
	require.Len(t, stats.Instructors, 9)
	for _, load := range stats.Instructors {
		if load.InstructorID == "AD" {
			assert.Equal(t, 1, load.Assigned)
			assert.False(t, load.BelowMinimum)
		}
	}
}

func TestMutationsNotifySink(t *testing.T) {
	svc := newScheduleService(t)
	sink := &sinkRecorder{}
	svc.SetStateSink(sink)

	require.NoError(t, svc.PlaceClass("Mon", models.ClassTypeLagree, "6:00 AM", ""))
	svc.RemoveClass("Mon", models.ClassTypeLagree, "7:00 AM")
	require.True(t, svc.UndoLastChange())

	assert.Equal(t, 2, sink.count())
	assert.Equal(t, models.EmptyCell(), sink.states[1].Schedule.Cell("Mon", models.ClassTypeLagree, "6:00 AM"))
}

func TestReplaceResetsHistory(t *testing.T) {
	svc := newScheduleService(t)
	require.NoError(t, svc.PlaceClass("Mon", models.ClassTypeLagree, "6:00 AM", ""))

	loaded := models.ScheduleState{
		Instructors:       []models.Instructor{{ID: "NEW", ClassTypes: []string{models.ClassTypeLagree}}},
		Schedule:          models.NewSchedule(),
		LockedAssignments: models.LockedAssignments{},
	}
	svc.Replace(loaded)

	assert.Zero(t, svc.UndoDepth())
	in, err := svc.Instructor("NEW")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBlockSize, in.BlockSize)
}

func TestValidatePayloadUsesCatalogTags(t *testing.T) {
	svc := newScheduleService(t)
	assert.NoError(t, svc.ValidatePayload(dto.SlotRequest{Day: "Mon", Type: models.ClassTypeLagree, Time: "6:00 AM"}, "invalid slot"))
	requireAppError(t, appErrors.ErrValidation, svc.ValidatePayload(dto.SlotRequest{Day: "Monday", Type: models.ClassTypeLagree, Time: "6:00 AM"}, "invalid slot"))
}

func TestConcurrentMutationsStayConsistent(t *testing.T) {
	svc := newScheduleService(t)
	svc.SeedTemplateClasses()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				svc.Generate()
				return
			}
			_ = svc.AssignInstructor("Mon", models.ClassTypeLagree, "5:30 AM", "MH")
			svc.Stats()
		}(i)
	}
	wg.Wait()

	assert.True(t, svc.Audit().Healthy)
}
