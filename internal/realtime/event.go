package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/contentforge/moderation-backend/internal/types"
)

// QueueEvent is broadcast whenever a record enters the queue or changes
// status, so dashboards can refresh without polling.
type QueueEvent struct {
	RecordID uuid.UUID            `json:"record_id"`
	Status   types.ApprovalStatus `json:"status"`
	Reviewer string               `json:"reviewer,omitempty"`
	At       time.Time            `json:"at"`
}
