package service

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
)

// StateSink receives every committed state. Implementations must return quickly and must not
// mutate the state they are handed.
type StateSink interface {
	Schedule(state models.ScheduleState)
}

// ClassScheduleConfig governs the schedule service.
type ClassScheduleConfig struct {
	HistoryDepth int
}

// ClassScheduleService owns the instructor roster, the weekly schedule and the lock table.
// Every mutation clones the current state, edits the clone and swaps it in under one write lock,
// so committed states are never modified after the fact and can be shared with history and sync.
type ClassScheduleService struct {
	mu      sync.RWMutex
	state   models.ScheduleState
	history *historyBuffer

	engine    *AssignmentEngine
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	sink      StateSink
}

// NewClassScheduleService wires the schedule service around an initial state.
func NewClassScheduleService(
	initial models.ScheduleState,
	engine *AssignmentEngine,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg ClassScheduleConfig,
) *ClassScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = NewAssignmentEngine(AssignmentEngineConfig{}, logger, metrics)
	}
	registerCatalogValidations(validate)

	state := initial.Clone()
	for i := range state.Instructors {
		state.Instructors[i] = models.NormalizeInstructor(state.Instructors[i])
	}

	return &ClassScheduleService{
		state:     state,
		history:   newHistoryBuffer(cfg.HistoryDepth),
		engine:    engine,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// SetStateSink registers the receiver of committed states.
func (s *ClassScheduleService) SetStateSink(sink StateSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// mutate applies fn to a clone of the current state. When fn reports a change the clone replaces the
// current state, the replaced state goes onto the undo stack and the sink is notified.
func (s *ClassScheduleService) mutate(op string, fn func(next *models.ScheduleState) bool) bool {
	s.mu.Lock()
	next := s.state.Clone()
	if !fn(&next) {
		s.mu.Unlock()
		return false
	}
	s.history.push(s.state)
	s.state = next
	sink := s.sink
	s.mu.Unlock()

	s.metrics.RecordMutation(op)
	if sink != nil {
		sink.Schedule(next)
	}
	return true
}

// ValidatePayload checks a request DTO against the catalog-aware validator.
func (s *ClassScheduleService) ValidatePayload(payload interface{}, message string) error {
	if err := s.validator.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

// --- Read accessors ---

// State returns a deep copy of the current state.
func (s *ClassScheduleService) State() models.ScheduleState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Schedule returns a copy of the current schedule.
func (s *ClassScheduleService) Schedule() *models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Schedule.Clone()
}

// Locks returns a copy of the lock table.
func (s *ClassScheduleService) Locks() models.LockedAssignments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LockedAssignments.Clone()
}

// Instructors returns copies of every instructor in roster order.
func (s *ClassScheduleService) Instructors() []models.Instructor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Instructor, len(s.state.Instructors))
	for i, in := range s.state.Instructors {
		out[i] = in.Clone()
	}
	return out
}

// Instructor returns a copy of one instructor.
func (s *ClassScheduleService) Instructor(id string) (models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.state.FindInstructor(id)
	if idx < 0 {
		return models.Instructor{}, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	return s.state.Instructors[idx].Clone(), nil
}

// Catalog returns the class type, day and time catalogs.
func (s *ClassScheduleService) Catalog() models.CatalogView {
	return models.Catalog()
}

// UndoDepth reports how many snapshots can be restored.
func (s *ClassScheduleService) UndoDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.len()
}

// --- Schedule operations ---

// InitEmptySchedule returns a schedule with no class offered anywhere.
func (s *ClassScheduleService) InitEmptySchedule() *models.Schedule {
	return models.NewSchedule()
}

// SeedTemplateClasses offers every class of the standard week that is not offered yet.
func (s *ClassScheduleService) SeedTemplateClasses() int {
	seeded := 0
	s.mutate("seed", func(next *models.ScheduleState) bool {
		seeded = seedTemplate(next.Schedule)
		return seeded > 0
	})
	if seeded > 0 {
		s.logger.Info("template classes seeded", zap.Int("count", seeded))
	}
	return seeded
}

// AddClass offers a class, optionally attaching an instructor. It returns false when the slot is
// outside the catalogs or the instructor is unknown or already teaching at that time.
func (s *ClassScheduleService) AddClass(day, classType, slotTime, instructorID string) bool {
	return s.PlaceClass(day, classType, slotTime, instructorID) == nil
}

// PlaceClass is AddClass reporting why a placement was rejected.
func (s *ClassScheduleService) PlaceClass(day, classType, slotTime, instructorID string) error {
	cell := models.CellFromValue(instructorID)
	if cell.State == models.CellEmpty {
		cell = models.UnresolvedCell()
	}

	var rejection error
	s.mutate("add_class", func(next *models.ScheduleState) bool {
		current, ok := next.Schedule.Get(day, classType, slotTime)
		if !ok {
			rejection = appErrors.ErrOutsideCatalog
			return false
		}
		if cell.State == models.CellAssigned {
			if next.FindInstructor(cell.InstructorID) < 0 {
				rejection = appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
				return false
			}
			if teachesOtherTypeAt(next.Schedule, cell.InstructorID, day, classType, slotTime) {
				rejection = appErrors.ErrDoubleBooked
				return false
			}
		}
		if current == cell {
			return false
		}
		next.Schedule.Set(day, classType, slotTime, cell)
		if lockedID, locked := next.LockedAssignments.Get(day, classType, slotTime); locked && lockedID != cell.InstructorID {
			next.LockedAssignments.Delete(day, classType, slotTime)
		}
		return true
	})
	if rejection != nil {
		s.logger.Debug("add class rejected",
			zap.String("day", day), zap.String("type", classType), zap.String("time", slotTime),
			zap.String("instructor_id", instructorID), zap.Error(rejection))
	}
	return rejection
}

// RemoveClass stops offering a class and drops any lock on it. It reports whether anything changed.
func (s *ClassScheduleService) RemoveClass(day, classType, slotTime string) bool {
	return s.mutate("remove_class", func(next *models.ScheduleState) bool {
		current, ok := next.Schedule.Get(day, classType, slotTime)
		if !ok {
			return false
		}
		unlocked := next.LockedAssignments.Delete(day, classType, slotTime)
		if !current.Offered() && !unlocked {
			return false
		}
		next.Schedule.Set(day, classType, slotTime, models.EmptyCell())
		return true
	})
}

// ManuallyAssignInstructor assigns and locks an instructor, or resets the slot to unresolved when
// instructorID is "TBD". It returns false when the assignment breaks a scheduling rule.
func (s *ClassScheduleService) ManuallyAssignInstructor(day, classType, slotTime, instructorID string) bool {
	return s.AssignInstructor(day, classType, slotTime, instructorID) == nil
}

// AssignInstructor is ManuallyAssignInstructor reporting which rule rejected the assignment.
func (s *ClassScheduleService) AssignInstructor(day, classType, slotTime, instructorID string) error {
	var rejection error
	s.mutate("assign", func(next *models.ScheduleState) bool {
		current, ok := next.Schedule.Get(day, classType, slotTime)
		if !ok {
			rejection = appErrors.ErrOutsideCatalog
			return false
		}

		if instructorID == models.UnresolvedInstructor {
			unlocked := next.LockedAssignments.Delete(day, classType, slotTime)
			if current.State == models.CellUnresolved && !unlocked {
				return false
			}
			next.Schedule.Set(day, classType, slotTime, models.UnresolvedCell())
			return true
		}

		idx := next.FindInstructor(instructorID)
		if idx < 0 {
			rejection = appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			return false
		}
		instructor := &next.Instructors[idx]
		if !IsEligible(instructor, classType) {
			rejection = appErrors.ErrIneligible
			return false
		}
		if teachesOtherTypeAt(next.Schedule, instructorID, day, classType, slotTime) {
			rejection = appErrors.ErrDoubleBooked
			return false
		}
		if len(instructor.Availability) > 0 && !IsAvailable(instructor, day, slotTime) {
			rejection = appErrors.ErrUnavailable
			return false
		}

		lockedID, locked := next.LockedAssignments.Get(day, classType, slotTime)
		if current.IsAssignedTo(instructorID) && locked && lockedID == instructorID {
			return false
		}
		next.Schedule.Set(day, classType, slotTime, models.AssignedCell(instructorID))
		next.LockedAssignments.Set(day, classType, slotTime, instructorID)
		return true
	})
	if rejection != nil {
		s.logger.Warn("manual assignment rejected",
			zap.String("day", day), zap.String("type", classType), zap.String("time", slotTime),
			zap.String("instructor_id", instructorID), zap.Error(rejection))
	}
	return rejection
}

// ClearSchedule replaces the schedule with an empty one and drops every lock.
func (s *ClassScheduleService) ClearSchedule() bool {
	return s.mutate("clear", func(next *models.ScheduleState) bool {
		empty := models.NewSchedule()
		if next.Schedule.Equal(empty) && next.LockedAssignments.Count() == 0 {
			return false
		}
		next.Schedule = empty
		next.LockedAssignments = models.LockedAssignments{}
		return true
	})
}

// LockAssignment pins the current instructor of an assigned slot. Empty and unresolved slots are
// left unlocked.
func (s *ClassScheduleService) LockAssignment(day, classType, slotTime string) bool {
	return s.mutate("lock", func(next *models.ScheduleState) bool {
		cell, ok := next.Schedule.Get(day, classType, slotTime)
		if !ok || cell.State != models.CellAssigned {
			return false
		}
		if lockedID, locked := next.LockedAssignments.Get(day, classType, slotTime); locked && lockedID == cell.InstructorID {
			return false
		}
		next.LockedAssignments.Set(day, classType, slotTime, cell.InstructorID)
		return true
	})
}

// UnlockAssignment removes a lock.
func (s *ClassScheduleService) UnlockAssignment(day, classType, slotTime string) bool {
	return s.mutate("unlock", func(next *models.ScheduleState) bool {
		return next.LockedAssignments.Delete(day, classType, slotTime)
	})
}

// IsAssignmentLocked reports whether the slot is locked and to whom.
func (s *ClassScheduleService) IsAssignmentLocked(day, classType, slotTime string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LockedAssignments.Get(day, classType, slotTime)
}

// Generate runs the assignment engine over the current state inside a single critical section.
func (s *ClassScheduleService) Generate() GenerateOutcome {
	var outcome GenerateOutcome
	s.mutate("generate", func(next *models.ScheduleState) bool {
		outcome = s.engine.Generate(*next)
		changed := !next.Schedule.Equal(outcome.Schedule) || !locksEqual(next.LockedAssignments, outcome.Locks)
		next.Schedule = outcome.Schedule
		next.LockedAssignments = outcome.Locks
		return changed
	})
	outcome.Schedule = outcome.Schedule.Clone()
	outcome.Locks = outcome.Locks.Clone()
	return outcome
}

// --- Instructor operations ---

// AddInstructor validates and appends an instructor, deriving an id from the name when none is given.
func (s *ClassScheduleService) AddInstructor(req dto.CreateInstructorRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	return s.addInstructor(req.ToModel())
}

// RegisterInstructor adds an instructor from the self-service form.
func (s *ClassScheduleService) RegisterInstructor(req dto.RegisterInstructorRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	var availability []string
	for _, day := range models.DaysOfWeek() {
		if !slices.Contains(req.PreferredDays, day) {
			continue
		}
		for _, preset := range models.TimeRangePresetNames() {
			if !slices.Contains(req.TimeRanges, preset) {
				continue
			}
			for _, slotTime := range models.ExpandTimeRangePreset(preset) {
				availability = append(availability, models.SlotKey(day, slotTime))
			}
		}
	}

	return s.addInstructor(models.Instructor{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		ClassTypes:   req.ClassTypes,
		MaxClasses:   req.MaxClasses,
		Availability: availability,
	})
}

func (s *ClassScheduleService) addInstructor(in models.Instructor) (string, error) {
	var (
		id        string
		rejection error
	)
	s.mutate("add_instructor", func(next *models.ScheduleState) bool {
		in.ID = strings.TrimSpace(in.ID)
		if in.ID != "" {
			if next.FindInstructor(in.ID) >= 0 {
				rejection = appErrors.Clone(appErrors.ErrConflict, "instructor id already exists")
				return false
			}
		} else {
			in.ID = deriveInstructorID(in.Name, func(candidate string) bool {
				return next.FindInstructor(candidate) >= 0
			})
		}
		id = in.ID
		next.Instructors = append(next.Instructors, models.NormalizeInstructor(in))
		return true
	})
	if rejection != nil {
		return "", rejection
	}
	s.logger.Info("instructor added", zap.String("instructor_id", id))
	return id, nil
}

// UpdateInstructor applies a partial update. It returns false when the instructor does not exist.
func (s *ClassScheduleService) UpdateInstructor(id string, patch models.InstructorPatch) bool {
	return s.mutate("update_instructor", func(next *models.ScheduleState) bool {
		idx := next.FindInstructor(id)
		if idx < 0 {
			return false
		}
		next.Instructors[idx] = patch.Apply(next.Instructors[idx])
		return true
	})
}

// UpdateInstructorFromRequest validates an HTTP patch before applying it.
func (s *ClassScheduleService) UpdateInstructorFromRequest(id string, req dto.UpdateInstructorRequest) (models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Instructor{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	if !s.UpdateInstructor(id, req.ToPatch()) {
		return models.Instructor{}, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	return s.Instructor(id)
}

// DeleteInstructor removes an instructor and turns every class they taught back into an unresolved
// class. Locks naming the instructor stay in place and are discarded by the next generation.
func (s *ClassScheduleService) DeleteInstructor(id string) bool {
	released := 0
	deleted := s.mutate("delete_instructor", func(next *models.ScheduleState) bool {
		idx := next.FindInstructor(id)
		if idx < 0 {
			return false
		}
		next.Instructors = append(next.Instructors[:idx], next.Instructors[idx+1:]...)
		for d := 0; d < models.DayCount; d++ {
			for t := 0; t < models.ClassTypeCount; t++ {
				for tm := 0; tm < models.TimeCount; tm++ {
					if next.Schedule.At(d, t, tm).IsAssignedTo(id) {
						next.Schedule.SetAt(d, t, tm, models.UnresolvedCell())
						released++
					}
				}
			}
		}
		return true
	})
	if deleted {
		s.logger.Info("instructor deleted", zap.String("instructor_id", id), zap.Int("released_classes", released))
	}
	return deleted
}

// SetInstructorAvailability marks one day/time as available or not. Whitelist instructors have the slot
// added to or removed from their availability; the others have it removed from or added to their
// legacy unavailable slots.
func (s *ClassScheduleService) SetInstructorAvailability(id, day, slotTime string, available bool) error {
	if !models.IsCatalogSlot(day, models.ClassTypeAt(0), slotTime) {
		return appErrors.ErrOutsideCatalog
	}
	key := models.SlotKey(day, slotTime)

	var rejection error
	s.mutate("set_availability", func(next *models.ScheduleState) bool {
		idx := next.FindInstructor(id)
		if idx < 0 {
			rejection = appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			return false
		}
		in := &next.Instructors[idx]
		if len(in.Availability) > 0 {
			before := len(in.Availability)
			in.Availability = toggleString(in.Availability, key, available)
			// an empty whitelist falls back to legacy unavailability
			if len(in.Availability) == 0 {
				rejection = appErrors.Clone(appErrors.ErrValidation, "cannot remove the last available slot")
				return false
			}
			return len(in.Availability) != before
		}
		before := len(in.Unavailability.Slots)
		in.Unavailability.Slots = toggleString(in.Unavailability.Slots, key, !available)
		return len(in.Unavailability.Slots) != before
	})
	return rejection
}

// GetInstructorClasses lists the classes assigned to an instructor in catalog order.
func (s *ClassScheduleService) GetInstructorClasses(id string) []models.InstructorClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	classes := make([]models.InstructorClass, 0)
	s.state.Schedule.Each(func(day, classType, slotTime string, cell models.Cell) {
		if cell.IsAssignedTo(id) {
			classes = append(classes, models.InstructorClass{Day: day, Type: classType, Time: slotTime})
		}
	})
	return classes
}

// GetTotalAssignedClasses counts classes with a resolved instructor.
func (s *ClassScheduleService) GetTotalAssignedClasses() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countCells(s.state.Schedule, models.CellAssigned)
}

// GetTotalScheduledSlots counts offered classes, resolved or not.
func (s *ClassScheduleService) GetTotalScheduledSlots() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countCells(s.state.Schedule, models.CellAssigned) + countCells(s.state.Schedule, models.CellUnresolved)
}

// Stats summarises totals and per-instructor load.
func (s *ClassScheduleService) Stats() dto.ScheduleStatsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loads := make(map[string]int, len(s.state.Instructors))
	s.state.Schedule.Each(func(_, _, _ string, cell models.Cell) {
		if cell.State == models.CellAssigned {
			loads[cell.InstructorID]++
		}
	})

	assigned := countCells(s.state.Schedule, models.CellAssigned)
	unresolved := countCells(s.state.Schedule, models.CellUnresolved)
	resp := dto.ScheduleStatsResponse{
		TotalAssigned:  assigned,
		TotalScheduled: assigned + unresolved,
		Unresolved:     unresolved,
		Locked:         s.state.LockedAssignments.Count(),
		UndoDepth:      s.history.len(),
		Instructors:    make([]dto.InstructorLoad, 0, len(s.state.Instructors)),
	}
	for _, in := range s.state.Instructors {
		resp.Instructors = append(resp.Instructors, dto.InstructorLoad{
			InstructorID: in.ID,
			Name:         in.Name,
			Assigned:     loads[in.ID],
			MinClasses:   in.MinClasses,
			MaxClasses:   in.MaxClasses,
			BelowMinimum: loads[in.ID] < in.MinClasses,
		})
	}
	return resp
}

// UndoLastChange restores the state replaced by the most recent committed mutation.
func (s *ClassScheduleService) UndoLastChange() bool {
	s.mu.Lock()
	previous, ok := s.history.pop()
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = previous
	sink := s.sink
	s.mu.Unlock()

	s.metrics.RecordMutation("undo")
	if sink != nil {
		sink.Schedule(previous)
	}
	return true
}

// Replace swaps in a loaded state and clears the undo history.
func (s *ClassScheduleService) Replace(state models.ScheduleState) {
	next := state.Clone()
	for i := range next.Instructors {
		next.Instructors[i] = models.NormalizeInstructor(next.Instructors[i])
	}
	s.mu.Lock()
	s.state = next
	s.history.reset()
	s.mu.Unlock()
}

// --- helpers ---

// teachesOtherTypeAt reports whether the instructor holds any class other than classType at day/time.
func teachesOtherTypeAt(schedule *models.Schedule, instructorID, day, classType, slotTime string) bool {
	for _, other := range models.ClassTypes() {
		if other == classType {
			continue
		}
		if schedule.Cell(day, other, slotTime).IsAssignedTo(instructorID) {
			return true
		}
	}
	return false
}

func countCells(schedule *models.Schedule, state models.CellState) int {
	n := 0
	schedule.Each(func(_, _, _ string, cell models.Cell) {
		if cell.State == state {
			n++
		}
	})
	return n
}

func locksEqual(a, b models.LockedAssignments) bool {
	if a.Count() != b.Count() {
		return false
	}
	equal := true
	a.Each(func(day, classType, slotTime, id string) {
		if other, ok := b.Get(day, classType, slotTime); !ok || other != id {
			equal = false
		}
	})
	return equal
}

// deriveInstructorID builds an id from the upper-cased initials of name, adding a numeric suffix
// on collision. Names without letters get a short random token.
func deriveInstructorID(name string, taken func(string) bool) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
	}
	base := b.String()
	if base == "" {
		base = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	}
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}

func toggleString(values []string, value string, present bool) []string {
	out := make([]string, 0, len(values)+1)
	has := false
	for _, v := range values {
		if v == value {
			has = true
			if !present {
				continue
			}
		}
		out = append(out, v)
	}
	if present && !has {
		out = append(out, value)
	}
	return out
}
