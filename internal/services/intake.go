package services

import (
	"context"
	"errors"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobscout/internal/domain/events"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/filters"
	"github.com/maxaizer/jobscout/internal/identity"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	log "github.com/sirupsen/logrus"
	"time"
)

type postingExtractor interface {
	Extract(source, content string) []models.Posting
}

type jobInserter interface {
	InsertIfAbsent(ctx context.Context, record *models.JobRecord) (bool, error)
}

type IntakeReport struct {
	Extracted   int
	Inserted    int
	Duplicates  int
	Prefiltered int
	Failed      int
}

type Intake struct {
	bus        EventBus.Bus
	extractors postingExtractor
	jobs       jobInserter
	prefs      models.Preferences
}

func NewIntake(bus EventBus.Bus, extractors postingExtractor, jobs jobInserter, prefs models.Preferences) *Intake {
	return &Intake{bus: bus, extractors: extractors, jobs: jobs, prefs: prefs}
}

// Ingest extracts postings from raw source content and stores every new one.
// Postings that fail the location pre-filter are kept as skipped records. A
// posting that can't be stored is counted as failed and the rest still go in.
func (i *Intake) Ingest(ctx context.Context, source, content string, receivedAt time.Time) (IntakeReport, error) {

	postings := i.extractors.Extract(source, content)
	report := IntakeReport{Extracted: len(postings)}
	var errs []error

	for _, posting := range postings {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		record := i.newRecord(posting, receivedAt)
		inserted, err := i.jobs.InsertIfAbsent(ctx, record)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to store posting %q at %q: %v", posting.Title, posting.Company, err)
			report.Failed++
			errs = append(errs, err)
			continue
		}

		if !inserted {
			report.Duplicates++
			metrics.DuplicatesCounter.Inc()
			continue
		}

		report.Inserted++
		metrics.IngestedCounter.WithLabelValues(source).Inc()
		if record.Status == models.StatusSkipped {
			report.Prefiltered++
			metrics.PrefilteredCounter.Inc()
		}
		i.bus.Publish(events.JobIngestedTopic, events.JobIngested{
			ID:      record.ID,
			Title:   record.Title,
			Company: record.Company,
			Source:  source,
		})
	}

	log.Infof("ingested %s: extracted %d, new %d, duplicates %d, prefiltered %d, failed %d",
		source, report.Extracted, report.Inserted, report.Duplicates, report.Prefiltered, report.Failed)
	return report, errors.Join(errs...)
}

func (i *Intake) newRecord(posting models.Posting, receivedAt time.Time) *models.JobRecord {

	canonicalURL, id := identity.ForPosting(posting.URL, posting.Title, posting.Company)
	screening := filters.Screen(posting, i.prefs)

	emailDate := receivedAt
	if posting.PostedAt != nil && !posting.PostedAt.IsZero() {
		emailDate = *posting.PostedAt
	}

	record := &models.JobRecord{
		ID:                id,
		Title:             posting.Title,
		Company:           posting.Company,
		Location:          posting.Location,
		URL:               canonicalURL,
		Source:            posting.Source,
		RawText:           posting.Body,
		Status:            models.StatusPending,
		EmailDate:         emailDate,
		LocationStatus:    screening.Location.Status,
		LocationMatchType: screening.Location.MatchType,
		LocationBonus:     screening.Location.ScoreBonus,
		SalaryStatus:      screening.Salary.Status,
		SalaryEstimate:    screening.Salary.Range.Text,
		SalaryMin:         screening.Salary.Range.Min,
		SalaryMax:         screening.Salary.Range.Max,
		SalaryConfidence:  screening.Salary.Confidence,
	}
	if record.Source == "" {
		record.Source = "unknown"
	}

	if screening.Skip {
		record.Status = models.StatusSkipped
		record.IsFiltered = true
		record.FilterReason = screening.Reason
	}

	return record
}
