package scheduler

import (
	"context"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/adapter/search"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reindexBatchSize = 100

// Scheduler periodically reconciles the search index with the store,
// repairing documents lost to index downtime or missed syncs.
type Scheduler struct {
	cron      *cron.Cron
	store     domain.UnitOfWork
	index     *search.Client
	logger    *logger.Logger
	isRunning bool
}

func NewScheduler(store domain.UnitOfWork, index *search.Client, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		store:  store,
		index:  index,
		logger: log.Named("Scheduler"),
	}
}

// Start registers the reindex job. An empty spec disables it.
func (s *Scheduler) Start(cronSpec string) error {
	if cronSpec == "" {
		s.logger.Info("reindex job disabled: no cron spec configured")
		return nil
	}

	_, err := s.cron.AddFunc(cronSpec, func() {
		if err := s.Reindex(context.Background()); err != nil {
			s.logger.Error("reindex job failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("reindex job scheduled", zap.String("cron", cronSpec))
	return nil
}

func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.logger.Info("scheduler stopped")
	}
}

// Reindex pushes every published listing into the search index in
// batches.
func (s *Scheduler) Reindex(ctx context.Context) error {
	var indexed int
	for page := 1; ; page++ {
		filter := domain.ListingFilter{
			Status:  domain.StatusPublished,
			Page:    page,
			PerPage: reindexBatchSize,
		}
		filter.Normalize()

		listings, _, err := s.store.Listings().FindByFilter(ctx, filter)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			break
		}

		if err := s.index.IndexListings(ctx, listings); err != nil {
			return err
		}
		indexed += len(listings)

		if len(listings) < reindexBatchSize {
			break
		}
	}

	s.logger.Info("reindex complete", zap.Int("listings", indexed))
	return nil
}
