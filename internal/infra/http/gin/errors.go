package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/uow"
	"staybook/internal/domain/shared/fault"
)

// respondError writes the error envelope shared by every endpoint.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondFault maps a classified error to its HTTP status. Concurrent update
// losses surface as conflicts so callers can retry.
func respondFault(c *gin.Context, logger *slog.Logger, err error) {
	if errors.Is(err, uow.ErrConcurrentUpdate) {
		respondError(c, http.StatusConflict, "concurrent_update", "resource was modified concurrently, retry")
		return
	}
	switch fault.KindOf(err) {
	case fault.KindValidation:
		respondError(c, http.StatusBadRequest, fault.CodeOf(err), fault.MessageOf(err))
	case fault.KindForbidden:
		respondError(c, http.StatusForbidden, fault.CodeOf(err), fault.MessageOf(err))
	case fault.KindNotFound:
		respondError(c, http.StatusNotFound, fault.CodeOf(err), fault.MessageOf(err))
	case fault.KindConflict:
		respondError(c, http.StatusConflict, fault.CodeOf(err), fault.MessageOf(err))
	default:
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
