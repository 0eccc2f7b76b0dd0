package ranking

import (
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/racetime"
)

// HistoryRow is one of an athlete's results with its meet resolved.
type HistoryRow struct {
	model.Result
	Seconds      float64
	MeetName     string
	MeetDate     string
	PersonalBest bool
}

// History lists athleteID's results in input order, joined with meet names,
// and marks the result the reducer picks as the personal best. The bool is
// false when the athlete has no results.
func (b *Builder) History(athleteID int64, results []model.Result, meets []model.Meet) ([]HistoryRow, BestTime, bool) {
	own := make([]model.Result, 0)
	for _, r := range results {
		if r.AthleteID == athleteID {
			own = append(own, r)
		}
	}
	if len(own) == 0 {
		return []HistoryRow{}, BestTime{}, false
	}

	best := ReduceBestTimes(own)[athleteID]
	meetByID := indexMeets(meets)

	rows := make([]HistoryRow, 0, len(own))
	for _, r := range own {
		row := HistoryRow{
			Result:       r,
			Seconds:      racetime.Parse(r.Time),
			MeetName:     b.meetPlaceholder,
			PersonalBest: r.ID == best.ResultID,
		}
		if m, ok := meetByID[r.MeetID]; ok {
			if m.Name != "" {
				row.MeetName = m.Name
			}
			row.MeetDate = m.Date
		}
		rows = append(rows, row)
	}
	return rows, best, true
}
