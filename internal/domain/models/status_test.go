package models

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_CanTransition_FollowsForwardGraph(t *testing.T) {

	assert := assert.New(t)

	assert.True(CanTransition(StatusPending, StatusEnriched))
	assert.True(CanTransition(StatusPending, StatusSkipped))
	assert.True(CanTransition(StatusPending, StatusFailed))
	assert.True(CanTransition(StatusEnriched, StatusScored))
	assert.True(CanTransition(StatusEnriched, StatusFailed))
	assert.True(CanTransition(StatusFailed, StatusEnriched))

	assert.False(CanTransition(StatusPending, StatusScored))
	assert.False(CanTransition(StatusEnriched, StatusSkipped))
	assert.False(CanTransition(StatusScored, StatusScored))
	assert.False(CanTransition(StatusSkipped, StatusEnriched))
}

func Test_CanTransition_NeverReentersPending(t *testing.T) {
	for _, from := range allStatuses {
		assert.False(t, CanTransition(from, StatusPending), "transition %s -> pending", from)
	}
}

func Test_SourcesOf(t *testing.T) {
	assert.ElementsMatch(t, []EnrichmentStatus{StatusPending, StatusFailed}, SourcesOf(StatusEnriched))
	assert.ElementsMatch(t, []EnrichmentStatus{StatusEnriched}, SourcesOf(StatusScored))
	assert.Empty(t, SourcesOf(StatusPending))
}

func Test_ParseStatus(t *testing.T) {

	status, err := ParseStatus(" Scored ")
	assert.NoError(t, err)
	assert.Equal(t, StatusScored, status)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func Test_Qualification_PrefersDeepAnalysis(t *testing.T) {

	record := JobRecord{BaselineScore: 60}
	assert.Equal(t, 60, record.Qualification())

	score := 85
	record.QualificationScore = &score
	assert.Equal(t, 85, record.Qualification())
}
