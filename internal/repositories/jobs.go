package repositories

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

var (
	ErrNotFound          = errors.New("job record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

var (
	screeningColumns = []string{"baseline_score", "final_score", "screened", "is_filtered", "filter_reason"}
	enrichColumns    = []string{"full_description", "source_url", "salary_estimate", "salary_status", "salary_min",
		"salary_max", "salary_confidence", "requirements", "is_aggregator", "aggregator_confidence",
		"aggregator_signals", "logo_url", "enriched_at", "enrichment_error"}
	analysisColumns = []string{"qualification_score", "should_apply", "strengths", "gaps", "recommendation"}
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// InsertIfAbsent stores a new record and reports false when the id already exists.
// An existing record is never touched.
func (repo *Jobs) InsertIfAbsent(ctx context.Context, record *models.JobRecord) (bool, error) {
	res := repo.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	return res.RowsAffected > 0, res.Error
}

func (repo *Jobs) GetByID(ctx context.Context, id string) (models.JobRecord, error) {
	var record models.JobRecord
	err := repo.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.JobRecord{}, ErrNotFound
		}
		return models.JobRecord{}, err
	}
	return record, nil
}

// ClaimForEnrichment atomically takes the enrichment lease on a pending or
// failed record. It returns false when another worker holds a live lease, the
// record is in any other status, or its attempts are used up.
func (repo *Jobs) ClaimForEnrichment(ctx context.Context, id string, staleBefore time.Time, maxAttempts int) (bool, error) {

	query := repo.claimable(ctx, id, models.ClaimableStatuses(), staleBefore)
	if maxAttempts > 0 {
		query = query.Where("enrichment_attempts < ?", maxAttempts)
	}

	res := query.Updates(map[string]interface{}{
		"claimed_at":          time.Now(),
		"enrichment_attempts": gorm.Expr("enrichment_attempts + 1"),
	})
	return res.RowsAffected == 1, res.Error
}

// ClaimForRescore takes the lease on an enriched or scored record.
func (repo *Jobs) ClaimForRescore(ctx context.Context, id string, staleBefore time.Time) (bool, error) {
	res := repo.claimable(ctx, id, models.RescorableStatuses(), staleBefore).
		Update("claimed_at", time.Now())
	return res.RowsAffected == 1, res.Error
}

func (repo *Jobs) claimable(ctx context.Context, id string, statuses []models.EnrichmentStatus, staleBefore time.Time) *gorm.DB {
	return repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("id = ? AND enrichment_status IN ?", id, statuses).
		Where("claimed_at IS NULL OR claimed_at < ?", staleBefore)
}

func (repo *Jobs) ReleaseClaim(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("id = ?", id).
		Update("claimed_at", nil).Error
}

// ReleaseExpiredClaims frees leases left behind by crashed workers.
func (repo *Jobs) ReleaseExpiredClaims(ctx context.Context, staleBefore time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("claimed_at IS NOT NULL AND claimed_at < ?", staleBefore).
		Update("claimed_at", nil)
	return res.RowsAffected, res.Error
}

// SaveScreening records the oracle verdict without moving the record.
func (repo *Jobs) SaveScreening(ctx context.Context, id string, decision models.FilterDecision) error {
	values := &models.JobRecord{
		BaselineScore: decision.BaselineScore,
		FinalScore:    float64(decision.BaselineScore),
		Screened:      true,
		IsFiltered:    !decision.Keep,
		FilterReason:  decision.FilterReason,
	}
	return repo.update(ctx, id, models.ClaimableStatuses(), "", screeningColumns, values)
}

// SaveFallbackScore stores a conservative baseline when screening could not run.
// The record stays unscreened so the next pass asks the oracle again.
func (repo *Jobs) SaveFallbackScore(ctx context.Context, id string, baseline int) error {
	values := &models.JobRecord{BaselineScore: baseline, FinalScore: float64(baseline)}
	return repo.update(ctx, id, models.ClaimableStatuses(), "", []string{"baseline_score", "final_score"}, values)
}

func (repo *Jobs) MarkSkipped(ctx context.Context, id string, reason string) error {
	values := &models.JobRecord{IsFiltered: true, FilterReason: reason}
	return repo.transition(ctx, id, models.StatusSkipped, []string{"is_filtered", "filter_reason"}, values)
}

func (repo *Jobs) SaveEnrichment(ctx context.Context, record *models.JobRecord) error {
	values := *record
	values.EnrichmentError = ""
	if values.EnrichedAt == nil {
		now := time.Now()
		values.EnrichedAt = &now
	}
	return repo.transition(ctx, record.ID, models.StatusEnriched, enrichColumns, &values)
}

func (repo *Jobs) SaveScore(ctx context.Context, id string, finalScore float64) error {
	now := time.Now()
	values := &models.JobRecord{FinalScore: finalScore, ScoredAt: &now}
	return repo.transition(ctx, id, models.StatusScored, []string{"final_score", "scored_at"}, values)
}

// SaveRescore stores a fresh screening and composite for a record that was
// already enriched or scored. It is the only way back into scored from scored.
// A rejected rescreen keeps the record scored but filtered out of the ranking.
func (repo *Jobs) SaveRescore(ctx context.Context, id string, decision models.FilterDecision, finalScore float64) error {
	now := time.Now()
	values := &models.JobRecord{
		BaselineScore: decision.BaselineScore,
		Screened:      true,
		IsFiltered:    !decision.Keep,
		FinalScore:    finalScore,
		ScoredAt:      &now,
		Status:        models.StatusScored,
	}
	if !decision.Keep {
		values.FilterReason = decision.FilterReason
	}
	columns := []string{"baseline_score", "screened", "is_filtered", "filter_reason", "final_score", "scored_at",
		"enrichment_status"}
	return repo.update(ctx, id, models.RescorableStatuses(), models.StatusScored, columns, values)
}

func (repo *Jobs) MarkFailed(ctx context.Context, id string, reason string) error {
	values := &models.JobRecord{EnrichmentError: reason}
	return repo.transition(ctx, id, models.StatusFailed, []string{"enrichment_error"}, values)
}

// SaveAnalysis stores an on-demand deep analysis on any record that wasn't skipped.
func (repo *Jobs) SaveAnalysis(ctx context.Context, id string, analysis models.Analysis) error {
	score := analysis.QualificationScore
	shouldApply := analysis.ShouldApply
	values := &models.JobRecord{
		QualificationScore: &score,
		ShouldApply:        &shouldApply,
		Strengths:          analysis.Strengths,
		Gaps:               analysis.Gaps,
		Recommendation:     analysis.Recommendation,
	}
	statuses := []models.EnrichmentStatus{models.StatusPending, models.StatusEnriched, models.StatusScored, models.StatusFailed}
	return repo.update(ctx, id, statuses, "", analysisColumns, values)
}

// ListClaimable returns records an enrichment pass may pick up, oldest first.
func (repo *Jobs) ListClaimable(ctx context.Context, limit int, staleBefore time.Time, maxAttempts int) ([]models.JobRecord, error) {

	query := repo.db.WithContext(ctx).
		Where("enrichment_status IN ?", models.ClaimableStatuses()).
		Where("claimed_at IS NULL OR claimed_at < ?", staleBefore)
	if maxAttempts > 0 {
		query = query.Where("enrichment_attempts < ?", maxAttempts)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.JobRecord
	err := query.Order("created_at ASC").Order("id ASC").Find(&records).Error
	return records, err
}

func (repo *Jobs) ListByStatus(ctx context.Context, status models.EnrichmentStatus, limit int) ([]models.JobRecord, error) {
	query := repo.db.WithContext(ctx).Where("enrichment_status = ?", status)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.JobRecord
	err := query.Order("created_at ASC").Find(&records).Error
	return records, err
}

func (repo *Jobs) ListRanked(ctx context.Context, filter models.RankFilter) ([]models.JobRecord, error) {

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = models.RankableStatuses()
	}

	query := repo.db.WithContext(ctx).
		Where("enrichment_status IN ?", statuses).
		Where("is_filtered = ?", false).
		Where("final_score >= ?", filter.MinScore)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []models.JobRecord
	err := query.Order("final_score DESC").Order("email_date DESC").Order("id ASC").Find(&records).Error
	return records, err
}

func (repo *Jobs) transition(ctx context.Context, id string, to models.EnrichmentStatus, columns []string, values *models.JobRecord) error {
	values.Status = to
	columns = append(columns[:len(columns):len(columns)], "enrichment_status")
	return repo.update(ctx, id, models.SourcesOf(to), to, columns, values)
}

// update writes the selected columns only while the record is in one of the
// given statuses, so concurrent writers can't move a record backwards.
func (repo *Jobs) update(ctx context.Context, id string, from []models.EnrichmentStatus, to models.EnrichmentStatus,
	columns []string, values *models.JobRecord) error {

	columns = append(columns[:len(columns):len(columns)], "updated_at")
	res := repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("id = ? AND enrichment_status IN ?", id, from).
		Select(columns).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	current, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("%w: record is %s", ErrInvalidTransition, current.Status)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
}
