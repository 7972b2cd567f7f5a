package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobscout/internal/domain/events"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/enrichment"
	"github.com/maxaizer/jobscout/internal/filters"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	"github.com/maxaizer/jobscout/internal/scoring"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

var ErrNotRescorable = errors.New("job record can't be rescored")

type AnalysisProvider interface {
	FilterAndScore(ctx context.Context, posting models.Posting, resume string, prefs models.Preferences) (models.FilterDecision, error)
	Analyze(ctx context.Context, posting models.Posting, resume string) (models.Analysis, error)
}

type SearchOracle interface {
	Search(ctx context.Context, company, title string) (models.SearchResult, error)
}

type jobStore interface {
	GetByID(ctx context.Context, id string) (models.JobRecord, error)
	ClaimForEnrichment(ctx context.Context, id string, staleBefore time.Time, maxAttempts int) (bool, error)
	ClaimForRescore(ctx context.Context, id string, staleBefore time.Time) (bool, error)
	ReleaseClaim(ctx context.Context, id string) error
	SaveScreening(ctx context.Context, id string, decision models.FilterDecision) error
	SaveFallbackScore(ctx context.Context, id string, baseline int) error
	MarkSkipped(ctx context.Context, id string, reason string) error
	SaveEnrichment(ctx context.Context, record *models.JobRecord) error
	SaveScore(ctx context.Context, id string, finalScore float64) error
	SaveRescore(ctx context.Context, id string, decision models.FilterDecision, finalScore float64) error
	MarkFailed(ctx context.Context, id string, reason string) error
	SaveAnalysis(ctx context.Context, id string, analysis models.Analysis) error
	ListClaimable(ctx context.Context, limit int, staleBefore time.Time, maxAttempts int) ([]models.JobRecord, error)
}

type Outcome string

const (
	OutcomeScored      Outcome = "scored"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeFailed      Outcome = "failed"
	OutcomeSkippedBusy Outcome = "skipped_busy"
)

type Profile struct {
	Resume      string
	Preferences models.Preferences
}

type OrchestratorConfig struct {
	Workers      int
	BatchSize    int
	Lease        time.Duration
	MaxAttempts  int
	DeepAnalysis bool
	DefaultScore int
}

type Orchestrator struct {
	cfg      OrchestratorConfig
	bus      EventBus.Bus
	jobs     jobStore
	analysis AnalysisProvider
	search   SearchOracle
	engine   *scoring.Engine
	logos    *enrichment.LogoResolver
	profile  Profile
	now      func() time.Time
}

func NewOrchestrator(cfg OrchestratorConfig, bus EventBus.Bus, jobs jobStore, analysis AnalysisProvider,
	search SearchOracle, engine *scoring.Engine, logos *enrichment.LogoResolver, profile Profile) *Orchestrator {

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DefaultScore == 0 {
		cfg.DefaultScore = 25
	}

	return &Orchestrator{
		cfg:      cfg,
		bus:      bus,
		jobs:     jobs,
		analysis: analysis,
		search:   search,
		engine:   engine,
		logos:    logos,
		profile:  profile,
		now:      time.Now,
	}
}

// stepError keeps the failing step so the failure handler can tag the log entry.
type stepError struct {
	id   string
	step string
	err  error
}

func (e *stepError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.step, e.id, e.err)
}

func (e *stepError) Unwrap() error {
	return e.err
}

// Enrich drives one record through screening, web search, local enrichment and
// scoring. A record leased by someone else is left alone.
func (o *Orchestrator) Enrich(ctx context.Context, id string) (Outcome, error) {

	claimed, err := o.jobs.ClaimForEnrichment(ctx, id, o.staleBefore(), o.cfg.MaxAttempts)
	if err != nil {
		return OutcomeFailed, &stepError{id, stepStore, err}
	}
	if !claimed {
		return OutcomeSkippedBusy, nil
	}
	defer o.release(ctx, id)

	record, err := o.jobs.GetByID(ctx, id)
	if err != nil {
		return OutcomeFailed, &stepError{id, stepStore, err}
	}

	keep := !record.IsFiltered
	if !record.Screened {
		keep, err = o.screen(ctx, &record)
	} else if !keep {
		err = o.skip(ctx, record.ID, record.FilterReason)
	}
	if err != nil {
		return OutcomeFailed, err
	}
	if !keep {
		return OutcomeSkipped, nil
	}

	if err = o.enrich(ctx, &record); err != nil {
		return OutcomeFailed, err
	}

	if o.cfg.DeepAnalysis {
		o.analyze(ctx, &record)
	}

	if err = o.score(ctx, record, false); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeScored, nil
}

func (o *Orchestrator) screen(ctx context.Context, record *models.JobRecord) (bool, error) {

	start := time.Now()
	decision, err := o.analysis.FilterAndScore(ctx, record.Posting(), o.profile.Resume, o.profile.Preferences)
	metrics.StepDuration.WithLabelValues(stepScreening).Observe(time.Since(start).Seconds())

	if err != nil {
		if saveErr := o.jobs.SaveFallbackScore(ctx, record.ID, o.cfg.DefaultScore); saveErr != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to store fallback score for %s: %v", record.ID, saveErr)
		}
		return false, o.fail(ctx, record.ID, stepScreening, err)
	}

	decision.FilterReason = rejectReason(decision)
	if err = o.jobs.SaveScreening(ctx, record.ID, decision); err != nil {
		return false, o.fail(ctx, record.ID, stepStore, err)
	}

	if !decision.Keep {
		metrics.RejectedByAiCounter.Inc()
		return false, o.skip(ctx, record.ID, decision.FilterReason)
	}

	record.Screened = true
	record.BaselineScore = decision.BaselineScore
	return true, nil
}

// skip finishes a record the oracle rejected. A screened and filtered record
// found again by a sweep only gets this step.
func (o *Orchestrator) skip(ctx context.Context, id, reason string) error {
	if err := o.jobs.MarkSkipped(ctx, id, reason); err != nil {
		return o.fail(ctx, id, stepStore, err)
	}
	log.Infof("job %s skipped by screening: %s", id, reason)
	return nil
}

func rejectReason(decision models.FilterDecision) string {
	if decision.Keep || decision.FilterReason != "" {
		return decision.FilterReason
	}
	return "rejected by screening"
}

func (o *Orchestrator) enrich(ctx context.Context, record *models.JobRecord) error {

	start := time.Now()
	result, err := o.search.Search(ctx, record.Company, record.Title)
	metrics.StepDuration.WithLabelValues(stepSearch).Observe(time.Since(start).Seconds())

	if err != nil {
		return o.fail(ctx, record.ID, stepSearch, err)
	}

	applySearchResult(record, result, o.profile.Preferences.Salary)

	description := record.FullDescription
	if description == "" {
		description = record.RawText
	}

	requirements := enrichment.ExtractRequirements(strings.Join(append([]string{description}, result.Requirements...), "\n"))
	if !requirements.IsEmpty() {
		record.Requirements = &requirements
	}

	agency := enrichment.DetectAgency(record.Company, description)
	record.IsAggregator = agency.IsAggregator
	record.AggregatorConfidence = agency.Confidence
	record.AggregatorSignals = agency.Signals

	logoSource := record.SourceURL
	if logoSource == "" {
		logoSource = record.URL
	}
	record.LogoURL = o.logos.Resolve(record.Company, logoSource)

	if err = o.jobs.SaveEnrichment(ctx, record); err != nil {
		return o.fail(ctx, record.ID, stepStore, err)
	}
	record.Status = models.StatusEnriched

	metrics.EnrichedCounter.Inc()
	o.bus.Publish(events.JobEnrichedTopic, events.JobEnriched{
		ID:           record.ID,
		IsAggregator: record.IsAggregator,
		Found:        result.Found,
	})
	return nil
}

// applySearchResult copies what the web search found onto the record. The
// salary is reclassified whenever the search brought new text to look at.
func applySearchResult(record *models.JobRecord, result models.SearchResult, prefs models.SalaryPreferences) {

	if !result.Found {
		return
	}

	record.FullDescription = result.Description
	record.SourceURL = result.SourceURL

	salaryText := result.SalaryRange
	if salaryText == "" {
		salaryText = result.Description
	}
	salary := filters.ClassifySalary(salaryText, prefs)
	if salary.Status == models.SalaryUnknown {
		return
	}

	record.SalaryStatus = salary.Status
	record.SalaryEstimate = salary.Range.Text
	record.SalaryMin = salary.Range.Min
	record.SalaryMax = salary.Range.Max
	record.SalaryConfidence = salary.Confidence
}

// analyze is best effort; a failed analysis leaves the baseline in charge.
func (o *Orchestrator) analyze(ctx context.Context, record *models.JobRecord) {

	start := time.Now()
	analysis, err := o.analysis.Analyze(ctx, record.Posting(), o.profile.Resume)
	metrics.StepDuration.WithLabelValues(stepAnalysis).Observe(time.Since(start).Seconds())

	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
			Warnf("deep analysis failed for %s: %v", record.ID, err)
		return
	}
	if err = o.jobs.SaveAnalysis(ctx, record.ID, analysis); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to save analysis for %s: %v", record.ID, err)
		return
	}

	score := analysis.QualificationScore
	record.QualificationScore = &score
}

func (o *Orchestrator) score(ctx context.Context, record models.JobRecord, rescored bool) error {

	start := time.Now()
	breakdown := o.engine.Compute(scoring.InputFromRecord(record), o.now())
	metrics.StepDuration.WithLabelValues(stepScoring).Observe(time.Since(start).Seconds())

	if !rescored {
		if err := o.jobs.SaveScore(ctx, record.ID, breakdown.Final); err != nil {
			return o.fail(ctx, record.ID, stepStore, err)
		}
	}

	metrics.ScoredCounter.Inc()
	log.Debugf("job %s scored %.2f (base %.2f, salary %+.0f, agency %+.0f)",
		record.ID, breakdown.Final, breakdown.Base, breakdown.Salary, breakdown.Agency)

	o.bus.Publish(events.JobScoredTopic, events.JobScored{
		ID:           record.ID,
		Title:        record.Title,
		Company:      record.Company,
		Location:     record.Location,
		URL:          record.URL,
		LogoURL:      record.LogoURL,
		FinalScore:   breakdown.Final,
		IsAggregator: record.IsAggregator,
		Rescored:     rescored,
	})
	return nil
}

// fail moves the job to failed with the reason kept for the next pass.
func (o *Orchestrator) fail(ctx context.Context, id, step string, cause error) error {

	err := &stepError{id, step, cause}
	if markErr := o.jobs.MarkFailed(ctx, id, err.Error()); markErr != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to mark %s as failed: %v", id, markErr)
	}

	metrics.FailedCounter.Inc()
	o.bus.Publish(events.JobFailedTopic, events.JobFailed{ID: id, Error: err.Error()})
	return err
}

// ForceRescore reruns screening and the composite for an enriched or scored record.
// A record the oracle now rejects stays scored but is filtered out of the ranking.
func (o *Orchestrator) ForceRescore(ctx context.Context, id string) (Outcome, error) {

	record, err := o.jobs.GetByID(ctx, id)
	if err != nil {
		return OutcomeFailed, err
	}
	if record.Status != models.StatusEnriched && record.Status != models.StatusScored {
		return OutcomeFailed, fmt.Errorf("%w: record is %s", ErrNotRescorable, record.Status)
	}

	claimed, err := o.jobs.ClaimForRescore(ctx, id, o.staleBefore())
	if err != nil {
		return OutcomeFailed, err
	}
	if !claimed {
		return OutcomeSkippedBusy, nil
	}
	defer o.release(ctx, id)

	decision, err := o.analysis.FilterAndScore(ctx, record.Posting(), o.profile.Resume, o.profile.Preferences)
	if err != nil {
		return OutcomeFailed, &stepError{id, stepScreening, err}
	}

	record.BaselineScore = decision.BaselineScore
	decision.FilterReason = rejectReason(decision)
	breakdown := o.engine.Compute(scoring.InputFromRecord(record), o.now())
	if err = o.jobs.SaveRescore(ctx, id, decision, breakdown.Final); err != nil {
		return OutcomeFailed, err
	}

	if !decision.Keep {
		metrics.RejectedByAiCounter.Inc()
		log.Infof("job %s rejected on rescore: %s", id, decision.FilterReason)
		return OutcomeSkipped, nil
	}

	log.Infof("job %s rescored to %.2f", id, breakdown.Final)
	return OutcomeScored, o.score(ctx, record, true)
}

// AnalyzeJob runs the deep analysis on demand and stores it on the record.
func (o *Orchestrator) AnalyzeJob(ctx context.Context, id string) (models.Analysis, error) {

	record, err := o.jobs.GetByID(ctx, id)
	if err != nil {
		return models.Analysis{}, err
	}

	analysis, err := o.analysis.Analyze(ctx, record.Posting(), o.profile.Resume)
	if err != nil {
		return models.Analysis{}, &stepError{id, stepAnalysis, err}
	}

	if err = o.jobs.SaveAnalysis(ctx, id, analysis); err != nil {
		return models.Analysis{}, err
	}
	return analysis, nil
}

func (o *Orchestrator) staleBefore() time.Time {
	return o.now().Add(-o.cfg.Lease)
}

// release runs on a fresh context so a cancelled batch still frees its leases.
func (o *Orchestrator) release(ctx context.Context, id string) {

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := o.jobs.ReleaseClaim(releaseCtx, id); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to release claim on %s: %v", id, err)
	}
}
