package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ApprovalStatus is the closed set of moderation states a record can be in.
type ApprovalStatus string

const (
	StatusPendingReview ApprovalStatus = "pending_review"
	StatusUnderReview   ApprovalStatus = "under_review"
	StatusApproved      ApprovalStatus = "approved"
	StatusAutoApproved  ApprovalStatus = "auto_approved"
	StatusRejected      ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPendingReview, StatusUnderReview, StatusApproved, StatusAutoApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further event is accepted from this status.
func (s ApprovalStatus) Terminal() bool {
	switch s {
	case StatusApproved, StatusAutoApproved, StatusRejected:
		return true
	}
	return false
}

// Published reports whether the status implies live content in the host
// content store.
func (s ApprovalStatus) Published() bool {
	return s == StatusApproved || s == StatusAutoApproved
}

func ParseApprovalStatus(raw string) (ApprovalStatus, bool) {
	s := ApprovalStatus(raw)
	return s, s.Valid()
}

// QueuePriority is supplied by the ingestion caller; the workflow only sorts
// and filters on it.
type QueuePriority string

const (
	PriorityHigh   QueuePriority = "high"
	PriorityNormal QueuePriority = "normal"
	PriorityLow    QueuePriority = "low"
)

func (p QueuePriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

func ParseQueuePriority(raw string) (QueuePriority, bool) {
	p := QueuePriority(raw)
	return p, p.Valid()
}

// RejectionReason is the closed set of reasons a reviewer can reject with.
type RejectionReason string

const (
	ReasonQuality       RejectionReason = "quality"
	ReasonRelevance     RejectionReason = "relevance"
	ReasonAccuracy      RejectionReason = "accuracy"
	ReasonInappropriate RejectionReason = "inappropriate"
	ReasonOther         RejectionReason = "other"
)

func (r RejectionReason) Valid() bool {
	switch r {
	case ReasonQuality, ReasonRelevance, ReasonAccuracy, ReasonInappropriate, ReasonOther:
		return true
	}
	return false
}

func ParseRejectionReason(raw string) (RejectionReason, bool) {
	r := RejectionReason(raw)
	return r, r.Valid()
}

type ApprovalRecord struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SearchQuery        string           `gorm:"column:search_query;not null" json:"search_query"`
	ContentPayload     datatypes.JSON   `gorm:"type:jsonb;column:content_payload" json:"content_payload"`
	QualityScore       float64          `gorm:"column:quality_score;not null" json:"quality_score"`
	Status             ApprovalStatus   `gorm:"column:status;not null;index" json:"status"`
	Priority           QueuePriority    `gorm:"column:priority;not null;index" json:"priority"`
	ReviewedAt         *time.Time       `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy         string           `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	RejectionReason    *RejectionReason `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	Notes              string           `gorm:"column:notes" json:"notes,omitempty"`
	PublishedReference *string          `gorm:"column:published_reference" json:"published_reference,omitempty"`
	CreatedAt          time.Time        `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null" json:"updated_at"`
}

func (ApprovalRecord) TableName() string { return "approval_record" }

// Candidate is a generated content item plus its quality score, before it
// enters the workflow.
type Candidate struct {
	SearchQuery    string         `json:"search_query"`
	ContentPayload datatypes.JSON `json:"content_payload"`
	QualityScore   float64        `json:"quality_score"`
	Priority       QueuePriority  `json:"priority"`
}
