package ranking

import (
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/racetime"
)

// Report counts the anomalies the builders absorb silently. It is computed
// separately so callers can log or export it; the builders never consult it.
type Report struct {
	Results            int
	UnparseableTimes   int
	UnresolvedAthletes int
	UnresolvedMeets    int
	Uncategorized      int
}

// Clean reports whether the snapshot had no anomalies.
func (r Report) Clean() bool {
	return r.UnparseableTimes == 0 && r.UnresolvedAthletes == 0 &&
		r.UnresolvedMeets == 0 && r.Uncategorized == 0
}

// Audit inspects a snapshot. Uncategorized counts results whose athlete
// resolves but has a category outside the configured set. meets may be nil
// to skip meet resolution, as for a single meet's results.
func (b *Builder) Audit(athletes []model.Athlete, meets []model.Meet, results []model.Result) Report {
	athleteByID := indexAthletes(athletes)
	var meetByID map[int64]model.Meet
	if meets != nil {
		meetByID = indexMeets(meets)
	}
	known := make(map[model.Category]struct{}, len(b.categories))
	for _, c := range b.categories {
		known[c] = struct{}{}
	}

	rep := Report{Results: len(results)}
	for _, r := range results {
		if racetime.Unparseable(racetime.Parse(r.Time)) {
			rep.UnparseableTimes++
		}
		if a, ok := athleteByID[r.AthleteID]; !ok {
			rep.UnresolvedAthletes++
		} else if _, ok := known[a.Category]; !ok {
			rep.Uncategorized++
		}
		if meetByID != nil {
			if _, ok := meetByID[r.MeetID]; !ok {
				rep.UnresolvedMeets++
			}
		}
	}
	return rep
}
