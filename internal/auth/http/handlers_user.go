package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-review/folio-backend/internal/auth"
	"github.com/folio-review/folio-backend/internal/users"
)

// GetMe returns the caller's user row and admin flag
func (h *Handler) GetMe(c *gin.Context) {
	id := auth.UserDBID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user, "is_admin": user.IsAdmin()})
}
