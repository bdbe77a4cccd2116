package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/middleware"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/response"
)

type adminAuthenticator interface {
	Enabled() bool
	AdminLogin(ctx context.Context, req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service adminAuthenticator
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// AdminLogin godoc
// @Summary Exchange the admin password for a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.AdminLoginRequest true "Admin password"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/admin [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.AdminLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Session godoc
// @Summary Describe the current admin session
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	if !h.service.Enabled() {
		response.JSON(c, http.StatusOK, gin.H{"gated": false})
		return
	}
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	res := gin.H{"gated": true, "subject": claims.UserID, "role": claims.Role}
	if claims.ExpiresAt != nil {
		res["expiresAt"] = claims.ExpiresAt.Time
	}
	response.JSON(c, http.StatusOK, res)
}
