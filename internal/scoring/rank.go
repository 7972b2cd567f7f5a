package scoring

import (
	"cmp"
	"github.com/maxaizer/jobscout/internal/domain/models"
	"slices"
)

// Rank orders records by final score, then by the more recent email date, then
// by id so equal scores always come out in the same order.
func Rank(records []models.JobRecord) []models.JobRecord {

	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, func(a, b models.JobRecord) int {
		if c := cmp.Compare(b.FinalScore, a.FinalScore); c != 0 {
			return c
		}
		if c := b.EmailDate.Compare(a.EmailDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return ranked
}
