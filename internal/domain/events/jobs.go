package events

var (
	JobIngestedTopic = "JobIngestedEvent"
	JobEnrichedTopic = "JobEnrichedEvent"
	JobScoredTopic   = "JobScoredEvent"
	JobFailedTopic   = "JobFailedEvent"
)

type JobIngested struct {
	ID      string
	Title   string
	Company string
	Source  string
}

type JobEnriched struct {
	ID           string
	IsAggregator bool
	Found        bool
}

type JobScored struct {
	ID           string
	Title        string
	Company      string
	Location     string
	URL          string
	LogoURL      string
	FinalScore   float64
	IsAggregator bool
	Rescored     bool
}

type JobFailed struct {
	ID    string
	Error string
}
