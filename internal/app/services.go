package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/clients/contentstore"
	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
	"github.com/contentforge/moderation-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Ingest     services.IngestService
	Transition services.TransitionService
	Bulk       services.BulkService
	Queue      services.QueueService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, store contentstore.Store, eventBus bus.Bus) (Services, error) {
	log.Info("Wiring services...")
	authService := services.NewAuthService(db, log, reposet.Reviewer, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	transitionService := services.NewTransitionService(db, log, reposet.ApprovalRecord, store, eventBus)
	ingestService, err := services.NewIngestService(db, log, reposet.ApprovalRecord, store, eventBus, cfg.AutoApproveThreshold)
	if err != nil {
		return Services{}, fmt.Errorf("wire ingest service: %w", err)
	}
	bulkService := services.NewBulkService(log, transitionService, cfg.BulkWorkers)
	queueService := services.NewQueueService(db, log, reposet.ApprovalRecord, cfg.ReviewSLA)
	return Services{
		Auth:       authService,
		Ingest:     ingestService,
		Transition: transitionService,
		Bulk:       bulkService,
		Queue:      queueService,
	}, nil
}
