package scoring

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

var now = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

func Test_Compute_FreshPosting(t *testing.T) {

	engine := NewEngine(DefaultConfig())
	breakdown := engine.Compute(Input{Qualification: 90, PostedAt: now}, now)

	assert.Equal(t, 100.0, breakdown.Recency)
	assert.Equal(t, 93.0, breakdown.Final)
}

func Test_Compute_TenDaysOld(t *testing.T) {

	engine := NewEngine(DefaultConfig())
	breakdown := engine.Compute(Input{Qualification: 90, PostedAt: now.AddDate(0, 0, -10)}, now)

	assert.InDelta(t, 66.7, breakdown.Recency, 0.05)
	assert.InDelta(t, 83.0, breakdown.Final, 0.05)
}

func Test_Recency_Bounds(t *testing.T) {

	assert := assert.New(t)
	engine := NewEngine(DefaultConfig())

	assert.Equal(100.0, engine.Recency(now, now))
	assert.Equal(100.0, engine.Recency(now.Add(48*time.Hour), now))
	assert.Equal(0.0, engine.Recency(now.AddDate(0, 0, -30), now))
	assert.Equal(0.0, engine.Recency(now.AddDate(0, 0, -400), now))
}

func Test_Recency_IsNonIncreasing(t *testing.T) {

	engine := NewEngine(DefaultConfig())
	previous := engine.Recency(now, now)

	for days := 1; days <= 60; days++ {
		current := engine.Recency(now.AddDate(0, 0, -days), now)
		assert.LessOrEqual(t, current, previous, "day %d", days)
		previous = current
	}
}

func Test_Compute_Adjustments(t *testing.T) {

	engine := NewEngine(DefaultConfig())
	base := Input{Qualification: 50, PostedAt: now.AddDate(0, 0, -40)}

	cases := []struct {
		name     string
		mutate   func(*Input)
		expected float64
	}{
		{"no adjustments", func(*Input) {}, 35},
		{"below minimum", func(in *Input) { in.SalaryStatus = models.SalaryBelowMinimum }, 20},
		{"salary match", func(in *Input) { in.SalaryStatus = models.SalaryMatch }, 40},
		{"above target", func(in *Input) { in.SalaryStatus = models.SalaryAboveTarget }, 45},
		{"agency", func(in *Input) { in.IsAggregator = true }, 25},
		{"unknown salary", func(in *Input) { in.SalaryStatus = models.SalaryUnknown }, 35},
	}

	for _, c := range cases {
		in := base
		c.mutate(&in)
		assert.Equal(t, c.expected, engine.Compute(in, now).Final, c.name)
	}
}

func Test_Compute_StaysWithinBounds(t *testing.T) {

	engine := NewEngine(DefaultConfig())
	statuses := []models.SalaryStatus{models.SalaryUnknown, models.SalaryBelowMinimum, models.SalaryMatch, models.SalaryAboveTarget}

	for qualification := -10; qualification <= 120; qualification += 5 {
		for _, days := range []int{0, 1, 10, 29, 30, 90} {
			for _, status := range statuses {
				for _, agency := range []bool{false, true} {
					final := engine.Compute(Input{
						Qualification: qualification,
						PostedAt:      now.AddDate(0, 0, -days),
						SalaryStatus:  status,
						IsAggregator:  agency,
					}, now).Final
					assert.GreaterOrEqual(t, final, 0.0)
					assert.LessOrEqual(t, final, 100.0)
				}
			}
		}
	}
}

func Test_Compute_LocationBonusWeight(t *testing.T) {

	cfg := DefaultConfig()
	cfg.LocationBonusWeight = 0.05
	in := Input{Qualification: 50, PostedAt: now.AddDate(0, 0, -40), LocationBonus: 100}

	assert.Equal(t, 35.0, NewEngine(DefaultConfig()).Compute(in, now).Final)
	assert.Equal(t, 40.0, NewEngine(cfg).Compute(in, now).Final)
}

func Test_InputFromRecord_UsesDeepAnalysisWhenPresent(t *testing.T) {

	qualification := 80
	record := models.JobRecord{BaselineScore: 40, QualificationScore: &qualification, EmailDate: now, IsAggregator: true}

	in := InputFromRecord(record)
	assert.Equal(t, 80, in.Qualification)
	assert.True(t, in.IsAggregator)
	assert.Equal(t, now, in.PostedAt)
}

func Test_Rank_TieBreaks(t *testing.T) {

	records := []models.JobRecord{
		{ID: "c", FinalScore: 70, EmailDate: now},
		{ID: "b", FinalScore: 80, EmailDate: now.AddDate(0, 0, -2)},
		{ID: "a", FinalScore: 70, EmailDate: now},
		{ID: "d", FinalScore: 80, EmailDate: now},
		{ID: "e", FinalScore: 70, EmailDate: now.AddDate(0, 0, -1)},
	}

	ranked := Rank(records)

	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"d", "b", "a", "c", "e"}, ids)
	assert.Equal(t, "c", records[0].ID)
}
