package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/contentforge/moderation-backend/internal/services"
	"github.com/contentforge/moderation-backend/internal/types"
)

// CandidateHandler receives generated candidates from the upstream content
// generator and feeds them into the approval workflow.
type CandidateHandler struct {
	ingestService services.IngestService
}

func NewCandidateHandler(ingestService services.IngestService) *CandidateHandler {
	return &CandidateHandler{ingestService: ingestService}
}

type ingestRequest struct {
	SearchQuery    string         `json:"search_query"`
	ContentPayload datatypes.JSON `json:"content_payload"`
	QualityScore   float64        `json:"quality_score"`
	Priority       string         `json:"priority"`
}

func (ch *CandidateHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	candidate := types.Candidate{
		SearchQuery:    req.SearchQuery,
		ContentPayload: req.ContentPayload,
		QualityScore:   req.QualityScore,
		Priority:       types.QueuePriority(req.Priority),
	}
	record, err := ch.ingestService.Ingest(c.Request.Context(), candidate)
	if err != nil {
		RespondWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}
