package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/folio-review/folio-backend/internal/auth"
	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/folio-review/folio-backend/internal/portfolios/service"
)

func actorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{UserID: auth.UserDBID(c), IsAdmin: auth.IsAdmin(c)}
}

// GetStatus returns the status descriptor of the caller's portfolio
func (h *Handler) GetStatus(c *gin.Context) {
	_, d, err := h.lifecycle.Status(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": d})
}

// PatchStatus applies withdraw or resubmit to the caller's portfolio
func (h *Handler) PatchStatus(c *gin.Context) {
	var body statusActionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	action, ok := domain.ParseAction(body.Action)
	if !ok || (action != domain.ActionWithdraw && action != domain.ActionResubmit) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "action must be withdraw or resubmit"})
		return
	}

	p, err := h.lifecycle.SelfTransition(c.Request.Context(), actorFrom(c), action)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "status": domain.ResolveStatus(p)})
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	p, d, err := h.lifecycle.Status(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "status": d})
}

// SaveDraft creates or updates the caller's portfolio content
func (h *Handler) SaveDraft(c *gin.Context) {
	var body domain.DraftContent
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	p, err := h.lifecycle.SaveDraft(c.Request.Context(), actorFrom(c), body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "status": domain.ResolveStatus(p)})
}

func (h *Handler) ClearAll(c *gin.Context) {
	p, err := h.lifecycle.ClearAll(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "status": domain.ResolveStatus(p)})
}

func (h *Handler) Submit(c *gin.Context) {
	p, err := h.lifecycle.Submit(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "status": domain.ResolveStatus(p)})
}

func (h *Handler) AdminGet(c *gin.Context) {
	p, err := h.lifecycle.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "status": domain.ResolveStatus(p)})
}

func (h *Handler) Approve(c *gin.Context) { h.adminTransition(c, domain.ActionApprove, "") }
func (h *Handler) Publish(c *gin.Context) { h.adminTransition(c, domain.ActionPublish, "") }
func (h *Handler) Unpublish(c *gin.Context) { h.adminTransition(c, domain.ActionUnpublish, "") }
func (h *Handler) SoftDelete(c *gin.Context) { h.adminTransition(c, domain.ActionDelete, "") }
func (h *Handler) Restore(c *gin.Context) { h.adminTransition(c, domain.ActionRestore, "") }

// Decline requires a non-empty reason in the body
func (h *Handler) Decline(c *gin.Context) {
	var body declineRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	h.adminTransition(c, domain.ActionDecline, strings.TrimSpace(body.Reason))
}

func (h *Handler) adminTransition(c *gin.Context, action domain.Action, reason string) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "portfolio id is required"})
		return
	}

	p, err := h.lifecycle.Transition(c.Request.Context(), actorFrom(c), id,
		domain.TransitionInput{Action: action, Reason: reason})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "portfolio": p, "status": domain.ResolveStatus(p)})
}

// PublishQueue previews the upcoming batches
func (h *Handler) PublishQueue(c *gin.Context) {
	plan, err := h.publisher.Preview(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "schedule": plan})
}

// PublishBatch publishes the next batch now
func (h *Handler) PublishBatch(c *gin.Context) {
	res, err := h.publisher.RunBatch(c.Request.Context(), service.TriggerManual)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"published": res.Published,
		"failed":    res.Failed,
		"results":   res.Results,
		"batch":     res,
	})
}

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.publisher.Settings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": s})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var body settingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	s, err := h.publisher.UpdateSettings(c.Request.Context(), actorFrom(c), domain.AdminSettings{
		WeeklyPublishLimit: body.WeeklyPublishLimit,
		PublishStrategy:    body.PublishStrategy,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": s})
}
