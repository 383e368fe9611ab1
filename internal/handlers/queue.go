package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/contentforge/moderation-backend/internal/repos"
	"github.com/contentforge/moderation-backend/internal/services"
	"github.com/contentforge/moderation-backend/internal/types"
)

type QueueHandler struct {
	queueService services.QueueService
}

func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

func (qh *QueueHandler) GetQueue(c *gin.Context) {
	var filter repos.ApprovalRecordFilter
	if raw := c.Query("status"); raw != "" {
		status := types.ApprovalStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := types.QueuePriority(raw)
		filter.Priority = &priority
	}
	filter.Sort = c.Query("sort")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, total, err := qh.queueService.Query(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"records":   records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (qh *QueueHandler) GetRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid record id: %w", err))
		return
	}
	record, err := qh.queueService.GetRecord(c.Request.Context(), id)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record})
}

func (qh *QueueHandler) GetStatistics(c *gin.Context) {
	stats, err := qh.queueService.Statistics(c.Request.Context())
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	RespondOK(c, gin.H{"statistics": stats})
}
