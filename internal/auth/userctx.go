package auth

import (
	"context"
	"net/http"

	"github.com/folio-review/folio-backend/internal/users"
	"github.com/gin-gonic/gin"
)

type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (users.Identity, error)
}

// WithUser resolves the authenticated firebase uid to a users row and
// stores its id and admin flag in the context.
func WithUser(userRepo UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
			return
		}

		id, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetString(CtxDisplayName),
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			return
		}

		c.Set(CtxUserDBID, id.ID)
		c.Set(CtxIsAdmin, id.IsAdmin)
		c.Next()
	}
}
