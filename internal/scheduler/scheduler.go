package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/config"
	"github.com/JASIELAB/CULTUREMEDIA/internal/service/notify"
	"github.com/JASIELAB/CULTUREMEDIA/internal/service/reporting"
)

// Scheduler manages the periodic stock summary job.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	notifySvc    *notify.Service
	cfg          config.ReportingConfig
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The cron runs in the
// configured lab timezone so "20:00" means the evening shift, not UTC.
func NewScheduler(cfg config.ReportingConfig, reportingSvc *reporting.Service, notifySvc *notify.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		notifySvc:    notifySvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the summary job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDailySummary); err != nil {
		s.logger.Error("failed to schedule daily summary", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendDailySummary() {
	s.logger.Info("generating daily stock summary")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	summary, err := s.reportingSvc.Summarize(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
		return
	}

	s.notifySvc.DailySummary(ctx, s.reportingSvc.Render(summary))
}
