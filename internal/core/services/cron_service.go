package services

import (
	"context"
	"time"

	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const (
	purgeSchedule    = "0 3 * * *"
	reminderSchedule = "*/15 * * * *"
	reminderWindow   = time.Hour
	jobTimeout       = 2 * time.Minute
)

// CronService runs the scheduled maintenance jobs
type CronService struct {
	cron    *cron.Cron
	auth    *AuthService
	events  *EventService
	metrics metrics.Recorder
}

// NewCronService creates the scheduler. rec may be nil.
func NewCronService(auth *AuthService, events *EventService, rec metrics.Recorder) *CronService {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	return &CronService{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		auth:    auth,
		events:  events,
		metrics: rec,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(purgeSchedule, s.PurgeTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(reminderSchedule, s.EventReminders); err != nil {
		return err
	}
	s.cron.Start()
	logger.Infof("🚀 CronService started")
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Infof("🛑 CronService stopped")
}

// PurgeTokens deletes expired refresh tokens and password resets
func (s *CronService) PurgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.auth.PurgeExpired(ctx)
	s.metrics.RecordJob("purge_tokens", err)
	if err != nil {
		logger.Errorf("❌ Token purge failed: %v", err)
		return
	}
	logger.Infof("🧹 Purged %d expired tokens", n)
}

// EventReminders notifies participants of events starting within the hour
func (s *CronService) EventReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.events.SendReminders(ctx, reminderWindow)
	s.metrics.RecordJob("event_reminders", err)
	if err != nil {
		logger.Errorf("❌ Event reminders failed: %v", err)
		return
	}
	if n > 0 {
		logger.Infof("⏰ Sent %d event reminders", n)
	}
}
