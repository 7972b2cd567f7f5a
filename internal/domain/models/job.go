package models

import "time"

// Posting is a source-specific listing as produced by an extractor.
type Posting struct {
	Title    string
	Company  string
	Location string
	URL      string
	Source   string
	Body     string
	PostedAt *time.Time
}

type MatchStatus string

const (
	MatchStatusMatch    MatchStatus = "match"
	MatchStatusMismatch MatchStatus = "mismatch"
	MatchStatusUnknown  MatchStatus = "unknown"
)

type SalaryStatus string

const (
	SalaryUnknown      SalaryStatus = "unknown"
	SalaryBelowMinimum SalaryStatus = "below_minimum"
	SalaryMatch        SalaryStatus = "match"
	SalaryAboveTarget  SalaryStatus = "above_target"
)

// JobRecord is the persisted, deduplicated unit of the pipeline.
type JobRecord struct {
	ID       string `gorm:"primaryKey;size:32"`
	Title    string
	Company  string
	Location string
	URL      string
	Source   string `gorm:"index"`
	RawText  string

	BaselineScore int
	FinalScore    float64          `gorm:"index"`
	Status        EnrichmentStatus `gorm:"column:enrichment_status;index;default:pending"`

	EnrichmentError    string
	EnrichmentAttempts int
	ClaimedAt          *time.Time
	Screened           bool

	IsFiltered   bool `gorm:"index"`
	FilterReason string

	IsAggregator         bool
	AggregatorConfidence float64
	AggregatorSignals    []string `gorm:"serializer:json"`

	LocationStatus    MatchStatus
	LocationMatchType string
	LocationBonus     int

	SalaryStatus     SalaryStatus
	SalaryEstimate   string
	SalaryMin        int
	SalaryMax        int
	SalaryConfidence float64

	FullDescription string
	SourceURL       string
	LogoURL         string
	Requirements    *Requirements `gorm:"serializer:json"`

	QualificationScore *int
	ShouldApply        *bool
	Strengths          []string `gorm:"serializer:json"`
	Gaps               []string `gorm:"serializer:json"`
	Recommendation     string

	EmailDate  time.Time `gorm:"index"`
	EnrichedAt *time.Time
	ScoredAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r JobRecord) Posting() Posting {
	description := r.RawText
	if r.FullDescription != "" {
		description = r.FullDescription
	}
	posting := Posting{
		Title:    r.Title,
		Company:  r.Company,
		Location: r.Location,
		URL:      r.URL,
		Source:   r.Source,
		Body:     description,
	}
	if !r.EmailDate.IsZero() {
		postedAt := r.EmailDate
		posting.PostedAt = &postedAt
	}
	return posting
}

// Qualification is the score the composite is built on: the deep analysis
// result when one exists, the screening baseline otherwise.
func (r JobRecord) Qualification() int {
	if r.QualificationScore != nil {
		return *r.QualificationScore
	}
	return r.BaselineScore
}

type RankFilter struct {
	Statuses []EnrichmentStatus
	MinScore float64
	Limit    int
}
