package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the trending API under /api/v1. requireAdmin gates
// the wholesale create/update/delete endpoints; view, engage, like and
// comment endpoints are open to anonymous callers.
func RegisterRoutes(r *gin.Engine, h *Handlers, requireAdmin gin.HandlerFunc) {
	api := r.Group("/api/v1")

	t := api.Group("/trending")
	{
		// Public reads
		t.GET("", h.GetTrending)
		t.GET("/type", h.GetTrendingByType)
		t.GET("/status/:contentType/:contentId", h.GetTrendingStatus)
		t.GET("/:id/comments", h.GetComments)

		// Public engagement writes
		t.POST("/:id/view", h.IncrementView)
		t.POST("/:id/engage", h.IncrementEngagement)
		t.POST("/:id/like", h.LikeTrending)
		t.DELETE("/:id/like", h.UnlikeTrending)
		t.POST("/:id/comment", h.AddComment)

		// Admin lifecycle
		admin := t.Group("")
		admin.Use(requireAdmin)
		admin.POST("", h.CreateOrUpdateTrending)
		admin.PUT("/metrics/:id", h.UpdateTrendingMetrics)
		admin.PUT("/:id/active", h.SetTrendingActive)
		admin.DELETE("/:id", h.DeleteTrending)
	}
}
