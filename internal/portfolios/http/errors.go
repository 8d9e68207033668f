package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-review/folio-backend/internal/portfolios/domain"
)

// writeError maps a service error onto the response status and body.
func (h *Handler) writeError(c *gin.Context, err error) {
	var terr *domain.TransitionError
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &terr):
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":            false,
			"error":         terr.Error(),
			"current_state": terr.From,
			"action":        terr.Action,
		})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": verr.Error(), "reason": verr.Reason})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrPortfolioExists),
		errors.Is(err, domain.ErrBatchInProgress):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error, please retry"})
	}
}
