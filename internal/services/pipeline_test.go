package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/enrichment"
	"github.com/maxaizer/jobscout/internal/extractors"
	"github.com/maxaizer/jobscout/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

const plainTextAlert = `Go Developer at Acme
Remote
https://acme.com/jobs/1?utm_source=alert
Build payment APIs.

Sales Lead at Acme
Remote
https://acme.com/jobs/2

Go Developer at Initech
San Jose, CA
https://initech.com/jobs/3`

func Test_Pipeline_IntakeEnrichRank(t *testing.T) {

	assert := assert.New(t)

	jobs := newTestJobs(t)
	bus := EventBus.New()

	client := &mockAiClient{}
	client.On("GenerateResponse", mock.Anything, mock.MatchedBy(func(request string) bool {
		return strings.Contains(request, "Job title: Sales Lead")
	})).Return(`{"keep": false, "baseline_score": 10, "filter_reason": "not an engineering role"}`, nil)
	client.On("GenerateResponse", mock.Anything, mock.Anything).Return(`{"keep": true, "baseline_score": 80}`, nil)

	intake := NewIntake(bus, extractors.DefaultRegistry(), jobs, testPreferences())
	orchestrator := NewOrchestrator(OrchestratorConfig{Workers: 1, BatchSize: 10, Lease: time.Minute},
		bus, jobs, NewAIService(client), acmeSearch(), scoring.NewEngine(scoring.DefaultConfig()),
		enrichment.NewLogoResolver(""), Profile{Resume: "Go engineer", Preferences: testPreferences()})
	orchestrator.now = func() time.Time { return testNow }

	intakeReport, err := intake.Ingest(context.Background(), extractors.SourcePlainText, plainTextAlert, testNow)
	require.NoError(t, err)
	assert.Equal(3, intakeReport.Extracted)
	assert.Equal(3, intakeReport.Inserted)
	assert.Equal(1, intakeReport.Prefiltered)

	batchReport, err := orchestrator.EnrichBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(2, batchReport.Listed)
	assert.Equal(1, batchReport.Scored)
	assert.Equal(1, batchReport.Skipped)

	ranked, err := NewRanking(jobs).List(context.Background(), models.RankFilter{})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal("Go Developer", ranked[0].Title)
	assert.Equal("https://acme.com/jobs/1", ranked[0].URL)
	assert.Equal(96.0, ranked[0].FinalScore)

	skipped, err := jobs.ListByStatus(context.Background(), models.StatusSkipped, 0)
	require.NoError(t, err)
	assert.Len(skipped, 2)
}
