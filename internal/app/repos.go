package app

import (
	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/repos"
)

type Repos struct {
	ApprovalRecord repos.ApprovalRecordRepo
	Reviewer       repos.ReviewerRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ApprovalRecord: repos.NewApprovalRecordRepo(db, log),
		Reviewer:       repos.NewReviewerRepo(db, log),
	}
}
