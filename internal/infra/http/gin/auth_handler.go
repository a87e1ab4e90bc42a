package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	authsvc "staybook/internal/app/services/auth"
	domainuser "staybook/internal/domain/user"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type registerRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	if h.Service == nil {
		respondError(c, http.StatusServiceUnavailable, "auth_unavailable", "auth service unavailable")
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	result, err := h.Service.Register(c.Request.Context(), authsvc.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAuthResponse(result.User, result.Token))
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Service == nil {
		respondError(c, http.StatusServiceUnavailable, "auth_unavailable", "auth service unavailable")
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthResponse(result.User, result.Token))
}

func (h AuthHandler) Logout(c *gin.Context) {
	if h.Service == nil {
		respondError(c, http.StatusServiceUnavailable, "auth_unavailable", "auth service unavailable")
		return
	}
	token := bearerTokenFromContext(c)
	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("logout failed", "error", err)
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "logout failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "auth_required", "authentication required")
		return
	}
	profile := dto.UserProfile{
		ID:        principal.ID,
		Email:     principal.Email,
		Name:      principal.Name,
		Roles:     append([]string(nil), principal.Roles...),
		CreatedAt: principal.CreatedAt,
		UpdatedAt: principal.UpdatedAt,
	}
	c.JSON(http.StatusOK, profile)
}

func (h AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, authsvc.ErrPasswordTooShort),
		errors.Is(err, authsvc.ErrRoleNotAllowed),
		errors.Is(err, domainuser.ErrInvalidRole),
		errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrEmailInvalid),
		errors.Is(err, domainuser.ErrNameRequired):
		respondError(c, http.StatusBadRequest, "invalid_registration", err.Error())
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		respondError(c, http.StatusConflict, "email_taken", err.Error())
	default:
		if h.Logger != nil {
			h.Logger.Error("auth operation failed", "error", err)
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func bearerTokenFromContext(c *gin.Context) string {
	if principal, ok := currentPrincipal(c); ok && principal.Token != "" {
		return principal.Token
	}
	token, _ := bearerToken(c.GetHeader("Authorization"))
	return token
}

var _ AuthHTTP = (*AuthHandler)(nil)
