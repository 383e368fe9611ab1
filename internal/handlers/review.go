package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/contentforge/moderation-backend/internal/requestdata"
	"github.com/contentforge/moderation-backend/internal/services"
	"github.com/contentforge/moderation-backend/internal/types"
)

// ReviewHandler exposes the manual moderation operations: begin review,
// approve, reject, and their bulk variants.
type ReviewHandler struct {
	transitionService services.TransitionService
	bulkService       services.BulkService
}

func NewReviewHandler(transitionService services.TransitionService, bulkService services.BulkService) *ReviewHandler {
	return &ReviewHandler{
		transitionService: transitionService,
		bulkService:       bulkService,
	}
}

func reviewerFrom(c *gin.Context) string {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		return ""
	}
	return rd.Reviewer
}

func recordID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid record id: %w", err)
	}
	return id, nil
}

func (rh *ReviewHandler) BeginReview(c *gin.Context) {
	id, err := recordID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	record, err := rh.transitionService.BeginReview(c.Request.Context(), id, reviewerFrom(c))
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record})
}

type approveRequest struct {
	Notes string `json:"notes"`
}

func (rh *ReviewHandler) Approve(c *gin.Context) {
	id, err := recordID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	var req approveRequest
	_ = c.ShouldBindJSON(&req)
	record, err := rh.transitionService.Approve(c.Request.Context(), id, reviewerFrom(c), req.Notes)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record})
}

type rejectRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func (rh *ReviewHandler) Reject(c *gin.Context) {
	id, err := recordID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	record, err := rh.transitionService.Reject(c.Request.Context(), id, reviewerFrom(c), types.RejectionReason(req.Reason), req.Notes)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": record})
}

type bulkApproveRequest struct {
	IDs   []uuid.UUID `json:"ids"`
	Notes string      `json:"notes"`
}

func (rh *ReviewHandler) BulkApprove(c *gin.Context) {
	var req bulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	result, err := rh.bulkService.BulkApprove(c.Request.Context(), req.IDs, reviewerFrom(c), req.Notes)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	respondBulk(c, result)
}

type bulkRejectRequest struct {
	IDs    []uuid.UUID `json:"ids"`
	Reason string      `json:"reason"`
	Notes  string      `json:"notes"`
}

func (rh *ReviewHandler) BulkReject(c *gin.Context) {
	var req bulkRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	result, err := rh.bulkService.BulkReject(c.Request.Context(), req.IDs, reviewerFrom(c), types.RejectionReason(req.Reason), req.Notes)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	respondBulk(c, result)
}

// respondBulk always returns 200 with the full partition; the caller decides
// how to render total success, partial success, or total failure per item.
func respondBulk(c *gin.Context, result types.BulkResult) {
	outcome := "success"
	if len(result.Succeeded) == 0 {
		outcome = "failure"
	} else if len(result.Failed) > 0 {
		outcome = "partial"
	}
	RespondOK(c, gin.H{
		"outcome":   outcome,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
}
