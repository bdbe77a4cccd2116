package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/response"
)

type scheduleExporter interface {
	Export(format string) (*service.ExportResult, error)
}

// ExportHandler streams rendered schedule documents.
type ExportHandler struct {
	service scheduleExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	if svc == nil {
		return &ExportHandler{}
	}
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download the weekly schedule
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Document format" Enums(csv, pdf, xlsx)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedule/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "exports are disabled"))
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	result, err := h.service.Export(query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}
