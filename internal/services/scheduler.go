package services

import (
	"context"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type batchRunner interface {
	EnrichBatch(ctx context.Context, limit int) (BatchReport, error)
}

type claimReaper interface {
	ReleaseExpiredClaims(ctx context.Context, staleBefore time.Time) (int64, error)
}

type Poller interface {
	Poll(ctx context.Context) error
}

type SchedulerConfig struct {
	SweepCron  string
	ReaperCron string
	PollCron   string
	BatchSize  int
	Lease      time.Duration
}

// Scheduler runs the enrichment sweep, the lease reaper and the intake pollers
// on cron. A job still running when its next tick fires is skipped.
type Scheduler struct {
	ctx     context.Context
	cfg     SchedulerConfig
	cron    *cron.Cron
	batches batchRunner
	reaper  claimReaper
	pollers []Poller
}

func NewScheduler(ctx context.Context, cfg SchedulerConfig, batches batchRunner, reaper claimReaper,
	pollers ...Poller) (*Scheduler, error) {

	cronLogger := cron.PrintfLogger(log.StandardLogger())
	s := &Scheduler{
		ctx:     ctx,
		cfg:     cfg,
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		batches: batches,
		reaper:  reaper,
		pollers: pollers,
	}

	if _, err := s.cron.AddFunc(cfg.SweepCron, s.sweep); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.ReaperCron, s.reap); err != nil {
		return nil, err
	}
	if len(pollers) > 0 {
		if _, err := s.cron.AddFunc(cfg.PollCron, s.poll); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Infof("scheduler started, sweep: %q, reaper: %q, poll: %q", s.cfg.SweepCron, s.cfg.ReaperCron, s.cfg.PollCron)
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweep() {
	if _, err := s.batches.EnrichBatch(s.ctx, s.cfg.BatchSize); err != nil {
		log.Errorf("enrichment sweep ended with error: %v", err)
	}
}

func (s *Scheduler) reap() {
	released, err := s.reaper.ReleaseExpiredClaims(s.ctx, time.Now().Add(-s.cfg.Lease))
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to release expired claims: %v", err)
		return
	}
	if released > 0 {
		log.Warnf("released %d expired enrichment claims", released)
	}
}

func (s *Scheduler) poll() {
	for _, p := range s.pollers {
		if err := p.Poll(s.ctx); err != nil {
			log.Errorf("intake poll failed: %v", err)
		}
	}
}
