package scoring

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"math"
	"time"
)

type Config struct {
	QualificationWeight float64 `mapstructure:"qualification_weight"`
	RecencyWeight       float64 `mapstructure:"recency_weight"`
	RecencyDecayPerDay  float64 `mapstructure:"recency_decay_per_day"`
	RecencyHorizonDays  int     `mapstructure:"recency_horizon_days"`

	SalaryBelowMinimumAdjustment float64 `mapstructure:"salary_below_minimum_adjustment"`
	SalaryMatchAdjustment        float64 `mapstructure:"salary_match_adjustment"`
	SalaryAboveTargetAdjustment  float64 `mapstructure:"salary_above_target_adjustment"`
	AgencyAdjustment             float64 `mapstructure:"agency_adjustment"`
	// LocationBonusWeight scales the location pre-filter bonus into points. Zero disables it.
	LocationBonusWeight float64 `mapstructure:"location_bonus_weight"`
}

func DefaultConfig() Config {
	return Config{
		QualificationWeight:          0.7,
		RecencyWeight:                0.3,
		RecencyDecayPerDay:           3.33,
		RecencyHorizonDays:           30,
		SalaryBelowMinimumAdjustment: -15,
		SalaryMatchAdjustment:        5,
		SalaryAboveTargetAdjustment:  10,
		AgencyAdjustment:             -10,
	}
}

type Input struct {
	Qualification int
	PostedAt      time.Time
	SalaryStatus  models.SalaryStatus
	IsAggregator  bool
	LocationBonus int
}

func InputFromRecord(record models.JobRecord) Input {
	return Input{
		Qualification: record.Qualification(),
		PostedAt:      record.EmailDate,
		SalaryStatus:  record.SalaryStatus,
		IsAggregator:  record.IsAggregator,
		LocationBonus: record.LocationBonus,
	}
}

// Breakdown keeps every component of a final score so rankings stay explainable.
type Breakdown struct {
	Qualification float64
	Recency       float64
	Base          float64
	Salary        float64
	Agency        float64
	Location      float64
	Final         float64
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Recency decays linearly from 100 for a posting from today to 0 at the horizon.
func (e *Engine) Recency(postedAt, now time.Time) float64 {

	days := int(math.Floor(now.Sub(postedAt).Hours() / 24))
	if days < 0 {
		days = 0
	}
	if e.cfg.RecencyHorizonDays > 0 && days >= e.cfg.RecencyHorizonDays {
		return 0
	}
	return math.Max(0, 100-float64(days)*e.cfg.RecencyDecayPerDay)
}

func (e *Engine) Compute(in Input, now time.Time) Breakdown {

	b := Breakdown{
		Qualification: clamp(float64(in.Qualification)),
		Recency:       e.Recency(in.PostedAt, now),
	}
	b.Base = round2(e.cfg.QualificationWeight*b.Qualification + e.cfg.RecencyWeight*b.Recency)

	switch in.SalaryStatus {
	case models.SalaryBelowMinimum:
		b.Salary = e.cfg.SalaryBelowMinimumAdjustment
	case models.SalaryMatch:
		b.Salary = e.cfg.SalaryMatchAdjustment
	case models.SalaryAboveTarget:
		b.Salary = e.cfg.SalaryAboveTargetAdjustment
	}

	if in.IsAggregator {
		b.Agency = e.cfg.AgencyAdjustment
	}

	b.Location = round2(e.cfg.LocationBonusWeight * float64(in.LocationBonus))

	b.Final = round2(clamp(b.Base + b.Salary + b.Agency + b.Location))
	return b
}

func clamp(score float64) float64 {
	return math.Min(100, math.Max(0, score))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
