package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/antirek/bank/internal/app/service"
	"github.com/antirek/bank/pkg/logger"
)

// ProvisionScheduler periodically retries messaging provisioning for users
// and businesses whose identities could not be created at write time.
type ProvisionScheduler struct {
	cron        *cron.Cron
	provisioner service.ProvisionService
}

func NewProvisionScheduler(provisioner service.ProvisionService) *ProvisionScheduler {
	return &ProvisionScheduler{
		cron:        cron.New(),
		provisioner: provisioner,
	}
}

// Start registers the sweep job, every 5 minutes
func (s *ProvisionScheduler) Start() error {
	_, err := s.cron.AddFunc("*/5 * * * *", func() {
		logger.Info("Starting provisioning sweep")

		ctx := context.Background()
		s.provisioner.SweepUsers(ctx)
		s.provisioner.SweepBusinesses(ctx)

		logger.Info("Provisioning sweep finished")
	})
	if err != nil {
		logger.Error("Failed to add cron job for provisioning sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Provisioning scheduler started (every 5 minutes)")
	return nil
}

// Stop stops the scheduler
func (s *ProvisionScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Provisioning scheduler stopped")
}
