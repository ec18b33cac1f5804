package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/djstage/backend/internal/cache"
	"github.com/djstage/backend/internal/logger"
	"github.com/djstage/backend/internal/middleware"
	"github.com/djstage/backend/internal/models"
	"github.com/djstage/backend/internal/trending"
	"github.com/djstage/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetTrending returns the top trending items for a period.
// GET /api/v1/trending?period=daily&limit=10
func (h *Handlers) GetTrending(c *gin.Context) {
	period := models.TrendingPeriod(c.DefaultQuery("period", string(models.PeriodDaily)))
	limit := util.ParseInt(c.Query("limit"), trending.DefaultListLimit)

	h.respondTrendingList(c, period, limit, nil)
}

// GetTrendingByType returns the top trending items of one content type.
// GET /api/v1/trending/type?type=mix&period=daily&limit=10
func (h *Handlers) GetTrendingByType(c *gin.Context) {
	contentType := models.ContentType(c.Query("type"))
	if !contentType.Valid() {
		util.RespondValidationError(c, "type", "invalid content type, must be either 'event' or 'mix'")
		return
	}
	period := models.TrendingPeriod(c.DefaultQuery("period", string(models.PeriodDaily)))
	limit := util.ParseInt(c.Query("limit"), trending.DefaultListLimit)

	h.respondTrendingList(c, period, limit, &contentType)
}

// respondTrendingList serves a ranking query, through the Redis cache when
// one is configured.
func (h *Handlers) respondTrendingList(c *gin.Context, period models.TrendingPeriod, limit int, contentType *models.ContentType) {
	typeLabel := ""
	if contentType != nil {
		typeLabel = string(*contentType)
	}
	key := cache.ListKey(string(period), typeLabel, limit)

	if payload, ok := h.cache.Get(c.Request.Context(), key); ok {
		middleware.RecordCacheHit("trending_list")
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}
	middleware.RecordCacheMiss("trending_list")

	items, err := h.ranking.ListTop(c.Request.Context(), period, limit, contentType)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordRankingQuery(string(period))

	response := util.SuccessResponse{Success: true, Data: items}
	if payload, err := json.Marshal(response); err == nil {
		h.cache.Set(c.Request.Context(), key, payload)
	} else {
		logger.WarnWithFields("failed to marshal trending list for cache", err)
	}
	c.JSON(http.StatusOK, response)
}

// GetTrendingStatus returns the raw trending state of one content item
// across all periods.
// GET /api/v1/trending/status/:contentType/:contentId
func (h *Handlers) GetTrendingStatus(c *gin.Context) {
	contentType := models.ContentType(c.Param("contentType"))
	contentID := c.Param("contentId")

	entries, err := h.ranking.StatusFor(c.Request.Context(), contentType, contentID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, entries)
}

// IncrementView bumps the view counter of a trending entry.
// POST /api/v1/trending/:id/view
func (h *Handlers) IncrementView(c *gin.Context) {
	entry, err := h.registry.IncrementView(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordEngagementEvent("view")
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccess(c, http.StatusOK, entry)
}

// IncrementEngagement bumps the engagement counter of a trending entry.
// POST /api/v1/trending/:id/engage
func (h *Handlers) IncrementEngagement(c *gin.Context) {
	entry, err := h.registry.IncrementEngagement(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordEngagementEvent("engage")
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccess(c, http.StatusOK, entry)
}

// LikeTrending records a like on a trending entry.
// POST /api/v1/trending/:id/like
func (h *Handlers) LikeTrending(c *gin.Context) {
	like, err := h.ledger.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordEngagementEvent("like")
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccess(c, http.StatusCreated, like)
}

// UnlikeTrending removes the most recent like from a trending entry.
// DELETE /api/v1/trending/:id/like
func (h *Handlers) UnlikeTrending(c *gin.Context) {
	if err := h.ledger.Unlike(c.Request.Context(), c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordEngagementEvent("unlike")
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccessMessage(c, http.StatusOK, nil, "Unliked")
}

// AddComment records a comment on a trending entry.
// POST /api/v1/trending/:id/comment
func (h *Handlers) AddComment(c *gin.Context) {
	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	comment, err := h.ledger.AddComment(c.Request.Context(), c.Param("id"), req.Comment)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordEngagementEvent("comment")
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccess(c, http.StatusCreated, comment)
}

// GetComments lists comments on a trending entry, newest first.
// GET /api/v1/trending/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	comments, err := h.ledger.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, comments)
}

// CreateOrUpdateTrending upserts a trending entry by natural key (admin).
// POST /api/v1/trending
func (h *Handlers) CreateOrUpdateTrending(c *gin.Context) {
	var req struct {
		ContentType     string         `json:"content_type" binding:"required"`
		ContentID       string         `json:"content_id" binding:"required"`
		TrendingPeriod  string         `json:"trending_period"`
		Score           *float64       `json:"score"`
		ViewCount       *int           `json:"view_count"`
		EngagementCount *int           `json:"engagement_count"`
		Metadata        models.JSONMap `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	entry, created, err := h.registry.Upsert(c.Request.Context(), trending.UpsertInput{
		ContentType:     models.ContentType(req.ContentType),
		ContentID:       req.ContentID,
		Period:          models.TrendingPeriod(req.TrendingPeriod),
		Score:           req.Score,
		ViewCount:       req.ViewCount,
		EngagementCount: req.EngagementCount,
		Metadata:        req.Metadata,
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())

	enriched, err := h.ranking.EnrichEntry(c.Request.Context(), *entry)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	status := http.StatusOK
	message := "Trending entry updated successfully"
	if created {
		status = http.StatusCreated
		message = "Trending entry created successfully"
	}
	util.RespondSuccessMessage(c, status, enriched, message)
}

// UpdateTrendingMetrics replaces the counters of a trending entry (admin).
// A field left out of the body keeps its current value; an explicit 0 is
// honored.
// PUT /api/v1/trending/metrics/:id
func (h *Handlers) UpdateTrendingMetrics(c *gin.Context) {
	var req struct {
		ViewCount       *int `json:"view_count"`
		EngagementCount *int `json:"engagement_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	entry, err := h.registry.UpdateMetrics(c.Request.Context(), c.Param("id"), req.ViewCount, req.EngagementCount)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccessMessage(c, http.StatusOK, entry, "Trending metrics updated successfully")
}

// SetTrendingActive toggles an entry in or out of ranking queries (admin).
// PUT /api/v1/trending/:id/active
func (h *Handlers) SetTrendingActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	entry, err := h.registry.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccess(c, http.StatusOK, entry)
}

// DeleteTrending hard-deletes an entry and its ledger rows (admin).
// DELETE /api/v1/trending/:id
func (h *Handlers) DeleteTrending(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context())
	util.RespondSuccessMessage(c, http.StatusOK, nil, "Trending entry deleted successfully")
}
