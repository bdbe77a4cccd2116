package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
)

const unknownClassTypePriority = 99

var classTypePriority = map[string]int{
	models.ClassTypeLagree:   1,
	models.ClassTypeStrength: 2,
	models.ClassTypeBoxing:   3,
	models.ClassTypeStretch:  4,
	models.ClassTypePT:       5,
}

// ClassTypePriority returns the fill order rank of a class type; lower ranks are filled first.
func ClassTypePriority(classType string) int {
	if p, ok := classTypePriority[classType]; ok {
		return p
	}
	return unknownClassTypePriority
}

// AssignmentEngineConfig tunes the candidate ranking.
type AssignmentEngineConfig struct {
	// GeneralistClassType is the catch-all type whose first-listed instructors get no specialist bonus.
	GeneralistClassType string
	// DisableSpecialistBonus turns off the specialist ranking factor.
	DisableSpecialistBonus bool
	// LoadRatioTolerance is the minimum assigned/minClasses gap that decides a ranking.
	LoadRatioTolerance float64
}

// GenerateStats summarises one regeneration pass.
type GenerateStats struct {
	PreferencesApplied int           `json:"preferencesApplied"`
	PreferencesSkipped int           `json:"preferencesSkipped"`
	LockedPreserved    int           `json:"lockedPreserved"`
	StaleLocksDropped  int           `json:"staleLocksDropped"`
	Candidates         int           `json:"candidates"`
	Assigned           int           `json:"assigned"`
	Unresolved         int           `json:"unresolved"`
	Duration           time.Duration `json:"-"`
}

// GenerateOutcome is the result of a regeneration pass. The input state is never modified.
type GenerateOutcome struct {
	Schedule *models.Schedule
	Locks    models.LockedAssignments
	Stats    GenerateStats
}

// AssignmentEngine fills unresolved slots with eligible instructors.
type AssignmentEngine struct {
	cfg     AssignmentEngineConfig
	logger  *zap.Logger
	metrics *MetricsService
}

// NewAssignmentEngine wires the engine.
func NewAssignmentEngine(cfg AssignmentEngineConfig, logger *zap.Logger, metrics *MetricsService) *AssignmentEngine {
	if cfg.GeneralistClassType == "" {
		cfg.GeneralistClassType = models.ClassTypeLagree
	}
	if cfg.LoadRatioTolerance <= 0 {
		cfg.LoadRatioTolerance = 0.1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentEngine{cfg: cfg, logger: logger, metrics: metrics}
}

// Generate runs preference enforcement, state capture, candidate collection and the greedy fill.
func (e *AssignmentEngine) Generate(state models.ScheduleState) GenerateOutcome {
	start := time.Now()
	run := newEngineRun(state)

	run.enforcePreferences()
	run.captureState()
	slots := run.collectCandidates()
	run.stats.Candidates = len(slots)
	for _, slot := range slots {
		if e.fill(run, slot) {
			run.stats.Assigned++
		} else {
			run.stats.Unresolved++
		}
	}

	run.stats.Duration = time.Since(start)
	e.metrics.ObserveGeneration(run.stats)
	e.logger.Info("schedule generated",
		zap.Int("preferences_applied", run.stats.PreferencesApplied),
		zap.Int("preferences_skipped", run.stats.PreferencesSkipped),
		zap.Int("locked_preserved", run.stats.LockedPreserved),
		zap.Int("stale_locks_dropped", run.stats.StaleLocksDropped),
		zap.Int("candidates", run.stats.Candidates),
		zap.Int("assigned", run.stats.Assigned),
		zap.Int("unresolved", run.stats.Unresolved),
		zap.Duration("duration", run.stats.Duration),
	)
	return GenerateOutcome{Schedule: run.schedule, Locks: run.locks, Stats: run.stats}
}

// --- Engine run state ---

type occupancy [models.DayCount][models.TimeCount]bool

type candidateSlot struct {
	day, classType, time int
	priority             int
}

type engineRun struct {
	roster   []models.Instructor
	byID     map[string]*models.Instructor
	schedule *models.Schedule
	locks    models.LockedAssignments
	occupied map[string]*occupancy
	assigned map[string]int
	stats    GenerateStats
}

func newEngineRun(state models.ScheduleState) *engineRun {
	run := &engineRun{
		roster:   state.Instructors,
		byID:     make(map[string]*models.Instructor, len(state.Instructors)),
		schedule: state.Schedule.Clone(),
		locks:    state.LockedAssignments.Clone(),
		occupied: make(map[string]*occupancy, len(state.Instructors)),
		assigned: make(map[string]int, len(state.Instructors)),
	}
	for i := range run.roster {
		in := &run.roster[i]
		if _, dup := run.byID[in.ID]; dup {
			continue
		}
		run.byID[in.ID] = in
		run.occupied[in.ID] = &occupancy{}
	}
	return run
}

func (r *engineRun) reserve(instructorID string, day, tm int) {
	occ, ok := r.occupied[instructorID]
	if !ok {
		return
	}
	occ[day][tm] = true
	r.assigned[instructorID]++
}

// enforcePreferences writes and locks every declared class type preference. A preference yields
// to an existing lock on its cell and to the instructor's own lock on another class at the same time.
func (r *engineRun) enforcePreferences() {
	for i := range r.roster {
		in := &r.roster[i]
		if len(in.ClassTypePreferences) == 0 {
			continue
		}
		keys := make([]string, 0, len(in.ClassTypePreferences))
		for key := range in.ClassTypePreferences {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			classType := in.ClassTypePreferences[key]
			if !in.CanTeach(classType) {
				continue
			}
			day, slotTime, ok := models.ParseSlotKey(key)
			if !ok || !models.IsCatalogSlot(day, classType, slotTime) {
				r.stats.PreferencesSkipped++
				continue
			}
			if !r.applyPreference(in.ID, day, classType, slotTime) {
				r.stats.PreferencesSkipped++
				continue
			}
			r.stats.PreferencesApplied++
		}
	}
}

func (r *engineRun) applyPreference(instructorID, day, classType, slotTime string) bool {
	if lockedID, ok := r.locks.Get(day, classType, slotTime); ok && lockedID != instructorID {
		if _, exists := r.byID[lockedID]; exists {
			return false
		}
	}
	for _, other := range models.ClassTypes() {
		if other == classType {
			continue
		}
		if lockedID, ok := r.locks.Get(day, other, slotTime); ok && lockedID == instructorID {
			return false
		}
	}
	for _, other := range models.ClassTypes() {
		if other != classType && r.schedule.Cell(day, other, slotTime).IsAssignedTo(instructorID) {
			r.schedule.Set(day, other, slotTime, models.UnresolvedCell())
		}
	}
	r.schedule.Set(day, classType, slotTime, models.AssignedCell(instructorID))
	r.locks.Set(day, classType, slotTime, instructorID)
	return true
}

// captureState re-asserts locks, drops locks on unknown instructors and records the occupancy of
// every preserved assignment.
func (r *engineRun) captureState() {
	for d := 0; d < models.DayCount; d++ {
		day := models.DayAt(d)
		for t := 0; t < models.ClassTypeCount; t++ {
			classType := models.ClassTypeAt(t)
			for tm := 0; tm < models.TimeCount; tm++ {
				slotTime := models.TimeAt(tm)
				if lockedID, ok := r.locks.Get(day, classType, slotTime); ok {
					if _, exists := r.byID[lockedID]; exists {
						r.schedule.SetAt(d, t, tm, models.AssignedCell(lockedID))
						r.reserve(lockedID, d, tm)
						r.stats.LockedPreserved++
						continue
					}
					r.locks.Delete(day, classType, slotTime)
					r.stats.StaleLocksDropped++
				}
				cell := r.schedule.At(d, t, tm)
				if cell.State == models.CellAssigned {
					r.reserve(cell.InstructorID, d, tm)
				}
			}
		}
	}
}

func (r *engineRun) collectCandidates() []candidateSlot {
	var slots []candidateSlot
	for d := 0; d < models.DayCount; d++ {
		for t := 0; t < models.ClassTypeCount; t++ {
			for tm := 0; tm < models.TimeCount; tm++ {
				if r.schedule.At(d, t, tm).State != models.CellUnresolved {
					continue
				}
				slots = append(slots, candidateSlot{
					day:       d,
					classType: t,
					time:      tm,
					priority:  ClassTypePriority(models.ClassTypeAt(t)),
				})
			}
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].priority < slots[j].priority
	})
	return slots
}

// --- Greedy fill ---

type rankedCandidate struct {
	instructor *models.Instructor
	block      BlockInfo
	specialist bool
	prefers    bool
	loadRatio  float64
}

func (e *AssignmentEngine) fill(r *engineRun, slot candidateSlot) bool {
	day := models.DayAt(slot.day)
	classType := models.ClassTypeAt(slot.classType)
	slotTime := models.TimeAt(slot.time)

	eligible := make([]*models.Instructor, 0, len(r.roster))
	for i := range r.roster {
		in := &r.roster[i]
		if r.byID[in.ID] != in {
			continue
		}
		if !IsEligible(in, classType) || !IsAvailable(in, day, slotTime) {
			continue
		}
		if r.occupied[in.ID][slot.day][slot.time] {
			continue
		}
		if r.assigned[in.ID] >= in.MaxClasses {
			continue
		}
		eligible = append(eligible, in)
	}
	if len(eligible) == 0 {
		return false
	}

	pool := make([]*models.Instructor, 0, len(eligible))
	for _, in := range eligible {
		if in.PrefersAt(day, slotTime, classType) {
			pool = append(pool, in)
		}
	}
	if len(pool) == 0 {
		pool = eligible
	}

	var best *rankedCandidate
	for _, in := range pool {
		candidate := e.rank(r, in, slot, day, classType, slotTime)
		if best == nil || e.compare(candidate, best, classType) < 0 {
			best = candidate
		}
	}

	r.schedule.SetAt(slot.day, slot.classType, slot.time, models.AssignedCell(best.instructor.ID))
	r.reserve(best.instructor.ID, slot.day, slot.time)
	return true
}

func (e *AssignmentEngine) rank(r *engineRun, in *models.Instructor, slot candidateSlot, day, classType, slotTime string) *rankedCandidate {
	minClasses := in.MinClasses
	if minClasses <= 0 {
		minClasses = 1
	}
	return &rankedCandidate{
		instructor: in,
		block:      analyzeBlockAt(r.schedule, in.ID, slot.day, slot.classType, slot.time),
		specialist: !e.cfg.DisableSpecialistBonus && e.isSpecialist(in, classType),
		prefers:    in.PrefersAt(day, slotTime, classType),
		loadRatio:  float64(r.assigned[in.ID]) / float64(minClasses),
	}
}

func (e *AssignmentEngine) isSpecialist(in *models.Instructor, classType string) bool {
	return len(in.ClassTypes) > 1 && in.CanTeach(classType) && in.ClassTypes[0] != e.cfg.GeneralistClassType
}

// compare orders candidates: negative when a should be picked over b.
func (e *AssignmentEngine) compare(a, b *rankedCandidate, classType string) int {
	if a.specialist != b.specialist {
		return preferTrue(a.specialist)
	}

	if classType == models.ClassTypeLagree {
		aMid := a.block.HasAdjacentClass && a.block.CurrentBlockSize < a.instructor.BlockSize
		bMid := b.block.HasAdjacentClass && b.block.CurrentBlockSize < b.instructor.BlockSize
		if aMid != bMid {
			return preferTrue(aMid)
		}
		if aMid && a.block.CurrentBlockSize != b.block.CurrentBlockSize {
			return a.block.CurrentBlockSize - b.block.CurrentBlockSize
		}
	}

	if a.prefers != b.prefers {
		return preferTrue(a.prefers)
	}

	if diff := a.loadRatio - b.loadRatio; math.Abs(diff) > e.cfg.LoadRatioTolerance {
		if diff < 0 {
			return -1
		}
		return 1
	}

	if a.block.HasAdjacentClass != b.block.HasAdjacentClass {
		return preferTrue(a.block.HasAdjacentClass)
	}

	return strings.Compare(a.instructor.ID, b.instructor.ID)
}

func preferTrue(aHas bool) int {
	if aHas {
		return -1
	}
	return 1
}
