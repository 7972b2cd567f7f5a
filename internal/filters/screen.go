package filters

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"strings"
)

type Screening struct {
	Location LocationResult
	Salary   SalaryResult
	Skip     bool
	Reason   string
}

// Screen runs both pre-filters over a posting. Only a location mismatch skips a
// posting; salary results are annotations for scoring.
func Screen(posting models.Posting, prefs models.Preferences) Screening {

	screening := Screening{
		Location: MatchLocation(posting.Location, prefs.Location),
		Salary:   ClassifySalary(strings.Join([]string{posting.Title, posting.Body}, "\n"), prefs.Salary),
	}

	if screening.Location.Status == models.MatchStatusMismatch {
		screening.Skip = true
		screening.Reason = "location: " + screening.Location.Reason
	}

	return screening
}
