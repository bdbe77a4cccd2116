package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/middleware"
	"github.com/noah-isme/tempo-schedule-api/internal/models"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/response"
)

type scheduleManager interface {
	ValidatePayload(payload interface{}, message string) error
	State() models.ScheduleState
	Schedule() *models.Schedule
	Catalog() models.CatalogView
	UndoDepth() int
	Stats() dto.ScheduleStatsResponse
	Audit() dto.AuditReport
	PlaceClass(day, classType, slotTime, instructorID string) error
	RemoveClass(day, classType, slotTime string) bool
	AssignInstructor(day, classType, slotTime, instructorID string) error
	LockAssignment(day, classType, slotTime string) bool
	UnlockAssignment(day, classType, slotTime string) bool
	IsAssignmentLocked(day, classType, slotTime string) (string, bool)
	Generate() service.GenerateOutcome
	SeedTemplateClasses() int
	ClearSchedule() bool
	UndoLastChange() bool
}

// ScheduleHandler exposes the weekly schedule, lock table and catalog endpoints.
type ScheduleHandler struct {
	service scheduleManager
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ClassScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Catalog godoc
// @Summary List class types, days and times
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *ScheduleHandler) Catalog(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Catalog())
}

// State godoc
// @Summary Get instructors, schedule and locks
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /state [get]
func (h *ScheduleHandler) State(c *gin.Context) {
	state := h.service.State()
	response.JSON(c, http.StatusOK, dto.StateResponse{
		Instructors:       state.Instructors,
		Schedule:          state.Schedule,
		LockedAssignments: state.LockedAssignments,
		UndoDepth:         h.service.UndoDepth(),
	}, middleware.ExtractMeta(c))
}

// Schedule godoc
// @Summary Get the weekly schedule grid
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Schedule(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Schedule(), middleware.ExtractMeta(c))
}

// Stats godoc
// @Summary Schedule totals and instructor load
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/stats [get]
func (h *ScheduleHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Stats())
}

// Audit godoc
// @Summary Check the schedule against its invariants
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/audit [get]
func (h *ScheduleHandler) Audit(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Audit())
}

// AddClass godoc
// @Summary Offer a class in a slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.AddClassRequest true "Slot and optional instructor"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/classes [post]
func (h *ScheduleHandler) AddClass(c *gin.Context) {
	var req dto.AddClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	if err := h.service.ValidatePayload(req, "invalid class payload"); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.PlaceClass(req.Day, req.Type, req.Time, req.InstructorID); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, h.slot(req.SlotRequest))
}

// RemoveClass godoc
// @Summary Stop offering a class
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SlotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Router /schedule/classes [delete]
func (h *ScheduleHandler) RemoveClass(c *gin.Context) {
	req, ok := h.bindSlot(c, c.ShouldBindJSON)
	if !ok {
		return
	}
	changed := h.service.RemoveClass(req.Day, req.Type, req.Time)
	response.JSON(c, http.StatusOK, dto.MutationResponse{Changed: changed})
}

// Assign godoc
// @Summary Manually assign an instructor and lock the slot
// @Description Use "TBD" as the instructor to reset the slot to unresolved.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.AssignInstructorRequest true "Slot and instructor"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedule/assign [post]
func (h *ScheduleHandler) Assign(c *gin.Context) {
	var req dto.AssignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if err := h.service.ValidatePayload(req, "invalid assignment payload"); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.AssignInstructor(req.Day, req.Type, req.Time, req.InstructorID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.slot(req.SlotRequest))
}

// Lock godoc
// @Summary Lock the current assignment of a slot
// @Tags Locks
// @Accept json
// @Produce json
// @Param payload body dto.SlotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/locks [post]
func (h *ScheduleHandler) Lock(c *gin.Context) {
	req, ok := h.bindSlot(c, c.ShouldBindJSON)
	if !ok {
		return
	}
	h.service.LockAssignment(req.Day, req.Type, req.Time)
	status := h.lockStatus(req)
	if !status.Locked {
		response.Error(c, appErrors.Clone(appErrors.ErrSlotNotOffered, "only slots with an assigned instructor can be locked"))
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Unlock godoc
// @Summary Remove the lock on a slot
// @Tags Locks
// @Accept json
// @Produce json
// @Param payload body dto.SlotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Router /schedule/locks [delete]
func (h *ScheduleHandler) Unlock(c *gin.Context) {
	req, ok := h.bindSlot(c, c.ShouldBindJSON)
	if !ok {
		return
	}
	changed := h.service.UnlockAssignment(req.Day, req.Type, req.Time)
	response.JSON(c, http.StatusOK, dto.MutationResponse{Changed: changed})
}

// LockStatus godoc
// @Summary Report whether a slot is locked
// @Tags Locks
// @Produce json
// @Param day query string true "Day"
// @Param type query string true "Class type"
// @Param time query string true "Class time"
// @Success 200 {object} response.Envelope
// @Router /schedule/locks [get]
func (h *ScheduleHandler) LockStatus(c *gin.Context) {
	req, ok := h.bindSlot(c, c.ShouldBindQuery)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.lockStatus(req))
}

// Generate godoc
// @Summary Fill unresolved slots with the assignment engine
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	outcome := h.service.Generate()
	stats := outcome.Stats
	response.JSON(c, http.StatusOK, dto.GenerateResponse{
		Schedule: outcome.Schedule,
		Locks:    outcome.Locks,
		Stats: dto.GenerateStatsResponse{
			PreferencesApplied: stats.PreferencesApplied,
			PreferencesSkipped: stats.PreferencesSkipped,
			LockedPreserved:    stats.LockedPreserved,
			StaleLocksDropped:  stats.StaleLocksDropped,
			Candidates:         stats.Candidates,
			Assigned:           stats.Assigned,
			Unresolved:         stats.Unresolved,
			DurationMicros:     stats.Duration.Microseconds(),
		},
	})
}

// Seed godoc
// @Summary Offer the standard weekly class template
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedule/seed [post]
func (h *ScheduleHandler) Seed(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.SeedResponse{Seeded: h.service.SeedTemplateClasses()})
}

// Clear godoc
// @Summary Clear every class and lock
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedule/clear [post]
func (h *ScheduleHandler) Clear(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.MutationResponse{Changed: h.service.ClearSchedule()})
}

// Undo godoc
// @Summary Restore the state before the last change
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/undo [post]
func (h *ScheduleHandler) Undo(c *gin.Context) {
	if !h.service.UndoLastChange() {
		response.Error(c, appErrors.ErrNothingToUndo)
		return
	}
	response.JSON(c, http.StatusOK, dto.UndoResponse{Restored: true, Remaining: h.service.UndoDepth()})
}

func (h *ScheduleHandler) bindSlot(c *gin.Context, bind func(interface{}) error) (dto.SlotRequest, bool) {
	var req dto.SlotRequest
	if err := bind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot"))
		return req, false
	}
	if err := h.service.ValidatePayload(req, "invalid slot"); err != nil {
		response.Error(c, err)
		return req, false
	}
	return req, true
}

func (h *ScheduleHandler) lockStatus(req dto.SlotRequest) dto.LockStatusResponse {
	id, locked := h.service.IsAssignmentLocked(req.Day, req.Type, req.Time)
	return dto.LockStatusResponse{Day: req.Day, Type: req.Type, Time: req.Time, Locked: locked, InstructorID: id}
}

func (h *ScheduleHandler) slot(req dto.SlotRequest) dto.SlotResponse {
	cell := h.service.Schedule().Cell(req.Day, req.Type, req.Time)
	_, locked := h.service.IsAssignmentLocked(req.Day, req.Type, req.Time)
	return dto.SlotResponse{Day: req.Day, Type: req.Type, Time: req.Time, Value: cell, Locked: locked}
}
