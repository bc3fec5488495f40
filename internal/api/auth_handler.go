package api

import (
	"context"
	"net/http"

	"dairyflow/internal/service"
	v1 "dairyflow/pkg/api/v1"

	"github.com/gin-gonic/gin"
)

type AuthProvider interface {
	Login(ctx context.Context, req v1.LoginRequest) (*v1.AuthResponse, error)
	RegisterCompany(ctx context.Context, req v1.RegisterCompanyRequest) (*v1.AuthResponse, error)
	RegisterEmployee(ctx context.Context, req v1.RegisterEmployeeRequest) (*v1.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*v1.RefreshResponse, error)
	ChangePassword(ctx context.Context, userID string, req v1.ChangePasswordRequest) error
	VerifyAccessToken(token string) (*service.OperatorInfo, error)
}

type AuthHandler struct {
	svc AuthProvider
}

func NewAuthHandler(svc AuthProvider) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var body v1.LoginRequest
	if !bindJSON(c, &body) {
		return
	}
	out, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *AuthHandler) RegisterCompany(c *gin.Context) {
	var body v1.RegisterCompanyRequest
	if !bindJSON(c, &body) {
		return
	}
	out, err := h.svc.RegisterCompany(c.Request.Context(), body)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, out)
}

func (h *AuthHandler) RegisterEmployee(c *gin.Context) {
	var body v1.RegisterEmployeeRequest
	if !bindJSON(c, &body) {
		return
	}
	out, err := h.svc.RegisterEmployee(c.Request.Context(), body)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, out)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var body v1.RefreshRequest
	if !bindJSON(c, &body) {
		return
	}
	out, err := h.svc.Refresh(c.Request.Context(), body.RefreshToken)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	var body v1.ChangePasswordRequest
	if !bindJSON(c, &body) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), op.UserID, body); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Password updated"})
}
