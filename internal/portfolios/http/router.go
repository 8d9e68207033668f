package http

import "github.com/gin-gonic/gin"

// Register registers the caller-facing portfolio routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/portfolio-status", h.GetStatus)
	rg.PATCH("/portfolio-status", h.PatchStatus)

	rg.GET("/portfolio", h.GetPortfolio)
	rg.PUT("/portfolio", h.SaveDraft)
	rg.DELETE("/portfolio", h.ClearAll)
	rg.POST("/portfolio/submit", h.Submit)
}

// RegisterAdmin registers the admin routes. The group must already require
// an admin caller.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/portfolios/:id", h.AdminGet)
	rg.POST("/portfolios/:id/approve", h.Approve)
	rg.POST("/portfolios/:id/decline", h.Decline)
	rg.POST("/portfolios/:id/publish", h.Publish)
	rg.POST("/portfolios/:id/unpublish", h.Unpublish)
	rg.POST("/portfolios/:id/delete", h.SoftDelete)
	rg.POST("/portfolios/:id/restore", h.Restore)

	rg.GET("/publish-queue", h.PublishQueue)
	rg.POST("/publish-batch", h.PublishBatch)

	rg.GET("/settings", h.GetSettings)
	rg.PUT("/settings", h.UpdateSettings)
}

// RegisterAdminAliases serves the review actions under /portfolio/:id as
// well. rg is the /portfolio group and must already require an admin.
func (h *Handler) RegisterAdminAliases(rg *gin.RouterGroup) {
	rg.POST("/:id/approve", h.Approve)
	rg.POST("/:id/decline", h.Decline)
	rg.POST("/:id/publish", h.Publish)
	rg.POST("/:id/unpublish", h.Unpublish)
}
