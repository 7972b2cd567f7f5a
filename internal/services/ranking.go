package services

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/scoring"
)

type rankedLister interface {
	ListRanked(ctx context.Context, filter models.RankFilter) ([]models.JobRecord, error)
}

type Ranking struct {
	jobs rankedLister
}

func NewRanking(jobs rankedLister) *Ranking {
	return &Ranking{jobs: jobs}
}

// List returns records by final score, newest first among equals, then by id.
func (r *Ranking) List(ctx context.Context, filter models.RankFilter) ([]models.JobRecord, error) {
	records, err := r.jobs.ListRanked(ctx, filter)
	if err != nil {
		return nil, err
	}
	return scoring.Rank(records), nil
}
