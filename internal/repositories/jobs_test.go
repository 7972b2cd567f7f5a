package repositories

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
	"time"
)

func newTestJobs(t *testing.T) *Jobs {

	dbCtx, err := NewDbContext(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() { _ = dbCtx.Close() })

	return NewJobsRepository(dbCtx.DB)
}

func pendingRecord(id string) *models.JobRecord {
	return &models.JobRecord{
		ID:        id,
		Title:     "Go Engineer",
		Company:   "Acme",
		URL:       "https://acme.com/jobs/" + id,
		Status:    models.StatusPending,
		EmailDate: time.Now(),
	}
}

func Test_InsertIfAbsent_WhenDuplicate_ShouldKeepFirstRecord(t *testing.T) {

	assert := assert.New(t)
	jobs := newTestJobs(t)
	ctx := context.Background()

	inserted, err := jobs.InsertIfAbsent(ctx, pendingRecord("a"))
	assert.NoError(err)
	assert.True(inserted)

	duplicate := pendingRecord("a")
	duplicate.Title = "Changed"
	inserted, err = jobs.InsertIfAbsent(ctx, duplicate)
	assert.NoError(err)
	assert.False(inserted)

	record, err := jobs.GetByID(ctx, "a")
	assert.NoError(err)
	assert.Equal("Go Engineer", record.Title)
}

func Test_GetByID_WhenMissing_ShouldReturnErrNotFound(t *testing.T) {
	_, err := newTestJobs(t).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_ClaimForEnrichment_ShouldGrantSingleLease(t *testing.T) {

	assert := assert.New(t)
	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))
	staleBefore := time.Now().Add(-time.Minute)

	claimed, err := jobs.ClaimForEnrichment(ctx, "a", staleBefore, 3)
	assert.NoError(err)
	assert.True(claimed)

	claimed, err = jobs.ClaimForEnrichment(ctx, "a", staleBefore, 3)
	assert.NoError(err)
	assert.False(claimed)

	assert.NoError(jobs.ReleaseClaim(ctx, "a"))
	claimed, err = jobs.ClaimForEnrichment(ctx, "a", staleBefore, 3)
	assert.NoError(err)
	assert.True(claimed)

	record, _ := jobs.GetByID(ctx, "a")
	assert.Equal(2, record.EnrichmentAttempts)
	assert.NotNil(record.ClaimedAt)
}

func Test_ClaimForEnrichment_WhenAttemptsExhausted_ShouldRefuse(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))
	staleBefore := time.Now().Add(-time.Minute)

	claimed, _ := jobs.ClaimForEnrichment(ctx, "a", staleBefore, 1)
	assert.True(t, claimed)
	require.NoError(t, jobs.MarkFailed(ctx, "a", "search timeout"))
	require.NoError(t, jobs.ReleaseClaim(ctx, "a"))

	claimed, err := jobs.ClaimForEnrichment(ctx, "a", staleBefore, 1)
	assert.NoError(t, err)
	assert.False(t, claimed)

	claimable, err := jobs.ListClaimable(ctx, 10, staleBefore, 1)
	assert.NoError(t, err)
	assert.Empty(t, claimable)
}

func Test_ReleaseExpiredClaims_ShouldFreeOnlyStaleLeases(t *testing.T) {

	assert := assert.New(t)
	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("b"))

	_, _ = jobs.ClaimForEnrichment(ctx, "a", time.Now(), 0)
	_, _ = jobs.ClaimForEnrichment(ctx, "b", time.Now(), 0)

	released, err := jobs.ReleaseExpiredClaims(ctx, time.Now().Add(-time.Hour))
	assert.NoError(err)
	assert.Equal(int64(0), released)

	released, err = jobs.ReleaseExpiredClaims(ctx, time.Now().Add(time.Second))
	assert.NoError(err)
	assert.Equal(int64(2), released)
}

func Test_StatusTransitions_ShouldFollowGraph(t *testing.T) {

	assert := assert.New(t)
	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))

	assert.ErrorIs(jobs.SaveScore(ctx, "a", 90), ErrInvalidTransition)

	assert.NoError(jobs.SaveScreening(ctx, "a", models.FilterDecision{Keep: true, BaselineScore: 72}))
	record, _ := jobs.GetByID(ctx, "a")
	assert.Equal(72, record.BaselineScore)
	assert.Equal(72.0, record.FinalScore)
	assert.True(record.Screened)
	assert.Equal(models.StatusPending, record.Status)

	enriched := pendingRecord("a")
	enriched.FullDescription = "Build payment rails"
	enriched.Requirements = &models.Requirements{YearsMin: 5, RequiredSkills: []string{"Go"}}
	enriched.AggregatorSignals = []string{"phrase: our client"}
	assert.NoError(jobs.SaveEnrichment(ctx, enriched))

	assert.NoError(jobs.SaveScore(ctx, "a", 88.5))
	assert.ErrorIs(jobs.MarkFailed(ctx, "a", "late failure"), ErrInvalidTransition)
	assert.ErrorIs(jobs.SaveScore(ctx, "a", 10), ErrInvalidTransition)

	record, err := jobs.GetByID(ctx, "a")
	assert.NoError(err)
	assert.Equal(models.StatusScored, record.Status)
	assert.Equal(88.5, record.FinalScore)
	assert.Equal("Build payment rails", record.FullDescription)
	assert.Equal([]string{"Go"}, record.Requirements.RequiredSkills)
	assert.Equal([]string{"phrase: our client"}, record.AggregatorSignals)
	assert.NotNil(record.EnrichedAt)
	assert.NotNil(record.ScoredAt)
	assert.Equal("Go Engineer", record.Title)
}

func Test_SaveFallbackScore_LeavesRecordUnscreened(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))

	require.NoError(t, jobs.SaveFallbackScore(ctx, "a", 25))

	record, _ := jobs.GetByID(ctx, "a")
	assert.Equal(t, 25, record.BaselineScore)
	assert.Equal(t, 25.0, record.FinalScore)
	assert.False(t, record.Screened)
	assert.Equal(t, models.StatusPending, record.Status)
}

func Test_MarkSkipped_IsTerminal(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))

	assert.NoError(t, jobs.MarkSkipped(ctx, "a", "not a backend role"))
	assert.ErrorIs(t, jobs.SaveEnrichment(ctx, pendingRecord("a")), ErrInvalidTransition)
	assert.ErrorIs(t, jobs.MarkFailed(ctx, "a", "x"), ErrInvalidTransition)

	record, _ := jobs.GetByID(ctx, "a")
	assert.Equal(t, models.StatusSkipped, record.Status)
	assert.True(t, record.IsFiltered)
	assert.Equal(t, "not a backend role", record.FilterReason)
}

func Test_FailedRecord_CanBeRetried(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))

	require.NoError(t, jobs.MarkFailed(ctx, "a", "search timeout"))
	record, _ := jobs.GetByID(ctx, "a")
	assert.Equal(t, "search timeout", record.EnrichmentError)

	require.NoError(t, jobs.SaveEnrichment(ctx, pendingRecord("a")))
	record, _ = jobs.GetByID(ctx, "a")
	assert.Equal(t, models.StatusEnriched, record.Status)
	assert.Empty(t, record.EnrichmentError)
}

func Test_SaveRescore_ShouldKeepScoredStatus(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))
	require.NoError(t, jobs.SaveEnrichment(ctx, pendingRecord("a")))
	require.NoError(t, jobs.SaveScore(ctx, "a", 50))

	require.NoError(t, jobs.SaveRescore(ctx, "a", models.FilterDecision{Keep: true, BaselineScore: 90}, 93))

	record, _ := jobs.GetByID(ctx, "a")
	assert.Equal(t, models.StatusScored, record.Status)
	assert.Equal(t, 93.0, record.FinalScore)
	assert.Equal(t, 90, record.BaselineScore)
	assert.False(t, record.IsFiltered)
}

func Test_SaveRescore_WhenRejected_ShouldDropFromRanking(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))
	require.NoError(t, jobs.SaveEnrichment(ctx, pendingRecord("a")))
	require.NoError(t, jobs.SaveScore(ctx, "a", 80))

	decision := models.FilterDecision{Keep: false, BaselineScore: 5, FilterReason: "needs Rust"}
	require.NoError(t, jobs.SaveRescore(ctx, "a", decision, 33.5))

	record, _ := jobs.GetByID(ctx, "a")
	assert.Equal(t, models.StatusScored, record.Status)
	assert.True(t, record.IsFiltered)
	assert.Equal(t, "needs Rust", record.FilterReason)

	ranked, err := jobs.ListRanked(ctx, models.RankFilter{})
	require.NoError(t, err)
	assert.Empty(t, ranked)

	require.NoError(t, jobs.SaveRescore(ctx, "a", models.FilterDecision{Keep: true, BaselineScore: 70}, 79))
	record, _ = jobs.GetByID(ctx, "a")
	assert.False(t, record.IsFiltered)
	assert.Empty(t, record.FilterReason)

	ranked, err = jobs.ListRanked(ctx, models.RankFilter{})
	require.NoError(t, err)
	assert.Len(t, ranked, 1)
}

func Test_SaveAnalysis(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("a"))

	analysis := models.Analysis{QualificationScore: 81, ShouldApply: true, Strengths: []string{"Go"}, Gaps: []string{"Rust"}}
	require.NoError(t, jobs.SaveAnalysis(ctx, "a", analysis))

	record, _ := jobs.GetByID(ctx, "a")
	require.NotNil(t, record.QualificationScore)
	assert.Equal(t, 81, *record.QualificationScore)
	assert.Equal(t, 81, record.Qualification())
	assert.Equal(t, []string{"Rust"}, record.Gaps)
}

func Test_ListRanked_ShouldOrderAndFilter(t *testing.T) {

	jobs := newTestJobs(t)
	ctx := context.Background()
	now := time.Now()

	scores := map[string]float64{"a": 70, "b": 90, "c": 70, "d": 20}
	for _, id := range []string{"a", "b", "c", "d"} {
		record := pendingRecord(id)
		record.EmailDate = now
		_, _ = jobs.InsertIfAbsent(ctx, record)
		require.NoError(t, jobs.SaveEnrichment(ctx, pendingRecord(id)))
		require.NoError(t, jobs.SaveScore(ctx, id, scores[id]))
	}
	_, _ = jobs.InsertIfAbsent(ctx, pendingRecord("e"))

	ranked, err := jobs.ListRanked(ctx, models.RankFilter{MinScore: 50})
	require.NoError(t, err)

	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)

	limited, err := jobs.ListRanked(ctx, models.RankFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func Test_Feeds_LoadAndSave(t *testing.T) {

	dbCtx, err := NewDbContext(filepath.Join(t.TempDir(), "feeds.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	defer dbCtx.Close()
	feeds := NewFeedsRepository(dbCtx.DB)
	ctx := context.Background()

	state, err := feeds.Load(ctx, "https://example.com/jobs.rss")
	require.NoError(t, err)
	assert.True(t, state.LastItemAt.IsZero())

	state.LastItemAt = time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	state.Items = 3
	require.NoError(t, feeds.Save(ctx, state))

	loaded, err := feeds.Load(ctx, "https://example.com/jobs.rss")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Items)
	assert.True(t, state.LastItemAt.Equal(loaded.LastItemAt))
}
