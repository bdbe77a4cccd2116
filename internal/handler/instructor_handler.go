package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/models"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/response"
)

type instructorManager interface {
	ValidatePayload(payload interface{}, message string) error
	Instructors() []models.Instructor
	Instructor(id string) (models.Instructor, error)
	AddInstructor(req dto.CreateInstructorRequest) (string, error)
	RegisterInstructor(req dto.RegisterInstructorRequest) (string, error)
	UpdateInstructorFromRequest(id string, req dto.UpdateInstructorRequest) (models.Instructor, error)
	DeleteInstructor(id string) bool
	GetInstructorClasses(id string) []models.InstructorClass
	SetInstructorAvailability(id, day, slotTime string, available bool) error
}

// InstructorHandler wires the instructor roster to HTTP routes.
type InstructorHandler struct {
	service instructorManager
}

// NewInstructorHandler constructs a new InstructorHandler.
func NewInstructorHandler(svc *service.ClassScheduleService) *InstructorHandler {
	return &InstructorHandler{service: svc}
}

// List godoc
// @Summary List instructors
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	instructors := h.service.Instructors()
	response.JSON(c, http.StatusOK, instructors, map[string]interface{}{"total": len(instructors)})
}

// Get godoc
// @Summary Get instructor detail
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.service.Instructor(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor)
}

// Create godoc
// @Summary Add an instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body dto.CreateInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req dto.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid instructor payload"))
		return
	}
	id, err := h.service.AddInstructor(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondCreated(c, id)
}

// Register godoc
// @Summary Register an instructor from the sign-up form
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body dto.RegisterInstructorRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /instructors/register [post]
func (h *InstructorHandler) Register(c *gin.Context) {
	var req dto.RegisterInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	id, err := h.service.RegisterInstructor(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondCreated(c, id)
}

// Update godoc
// @Summary Update an instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body dto.UpdateInstructorRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [patch]
func (h *InstructorHandler) Update(c *gin.Context) {
	var req dto.UpdateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid instructor payload"))
		return
	}
	instructor, err := h.service.UpdateInstructorFromRequest(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor)
}

// Delete godoc
// @Summary Delete an instructor and release their classes
// @Tags Instructors
// @Security BearerAuth
// @Param id path string true "Instructor ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [delete]
func (h *InstructorHandler) Delete(c *gin.Context) {
	if !h.service.DeleteInstructor(c.Param("id")) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "instructor not found"))
		return
	}
	response.NoContent(c)
}

// Classes godoc
// @Summary List the classes an instructor teaches
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/classes [get]
func (h *InstructorHandler) Classes(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.service.Instructor(id); err != nil {
		response.Error(c, err)
		return
	}
	classes := h.service.GetInstructorClasses(id)
	response.JSON(c, http.StatusOK, dto.InstructorClassesResponse{InstructorID: id, Classes: classes, Total: len(classes)})
}

// SetAvailability godoc
// @Summary Mark a day and time as available or unavailable
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body dto.SetAvailabilityRequest true "Availability toggle"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/availability [put]
func (h *InstructorHandler) SetAvailability(c *gin.Context) {
	var req dto.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	if err := h.service.ValidatePayload(req, "invalid availability payload"); err != nil {
		response.Error(c, err)
		return
	}
	id := c.Param("id")
	if err := h.service.SetInstructorAvailability(id, req.Day, req.Time, *req.Available); err != nil {
		response.Error(c, err)
		return
	}
	instructor, err := h.service.Instructor(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor)
}

func (h *InstructorHandler) respondCreated(c *gin.Context, id string) {
	instructor, err := h.service.Instructor(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}
