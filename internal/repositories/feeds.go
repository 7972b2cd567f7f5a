package repositories

import (
	"context"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Feeds struct {
	db *gorm.DB
}

func NewFeedsRepository(db *gorm.DB) *Feeds {
	return &Feeds{db: db}
}

func (repo *Feeds) Save(ctx context.Context, state models.FeedState) error {
	return repo.db.WithContext(ctx).Save(&state).Error
}

// Load returns a zero state for feeds that were never polled.
func (repo *Feeds) Load(ctx context.Context, url string) (models.FeedState, error) {
	state := models.FeedState{URL: url}
	err := repo.db.WithContext(ctx).First(&state, "url = ?", url).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FeedState{URL: url}, nil
		}
		return models.FeedState{}, err
	}
	return state, nil
}
