package services

import (
	"context"
	"github.com/google/uuid"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"sync"
	"time"
)

type BatchReport struct {
	RunID    string
	Listed   int
	Scored   int
	Skipped  int
	Failed   int
	Busy     int
	Duration time.Duration
}

func (r *BatchReport) add(outcome Outcome) {
	switch outcome {
	case OutcomeScored:
		r.Scored++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeSkippedBusy:
		r.Busy++
	default:
		r.Failed++
	}
}

// EnrichBatch enriches up to limit claimable records on a bounded pool. A
// failing record never stops the others; cancellation stops new work.
func (o *Orchestrator) EnrichBatch(ctx context.Context, limit int) (BatchReport, error) {

	if limit <= 0 {
		limit = o.cfg.BatchSize
	}

	start := time.Now()
	report := BatchReport{RunID: uuid.NewString()}
	batchLog := log.WithField("run_id", report.RunID)

	records, err := o.jobs.ListClaimable(ctx, limit, o.staleBefore(), o.cfg.MaxAttempts)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to list claimable records: %v", err)
		return report, err
	}
	report.Listed = len(records)
	if len(records) == 0 {
		return report, nil
	}
	batchLog.Infof("enriching %d records", len(records))

	failures := make(chan error)
	handler := newFailureHandler()
	go handler.Run(failures)

	var mu sync.Mutex
	group := errgroup.Group{}
	group.SetLimit(o.cfg.Workers)

	for _, record := range records {
		if ctx.Err() != nil {
			break
		}
		id := record.ID
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcome, err := o.Enrich(ctx, id)
			if err != nil {
				failures <- err
			}
			mu.Lock()
			report.add(outcome)
			mu.Unlock()
			return nil
		})
	}

	_ = group.Wait()
	close(failures)
	<-handler.Done

	report.Duration = time.Since(start)
	metrics.BatchDuration.Observe(report.Duration.Seconds())
	batchLog.Infof("batch done in %v: scored %d, skipped %d, failed %d, busy %d",
		report.Duration, report.Scored, report.Skipped, report.Failed, report.Busy)

	return report, ctx.Err()
}
