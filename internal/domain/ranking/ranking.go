package ranking

import (
	"sort"

	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/racetime"
)

// BestTime is an athlete's fastest recorded result.
type BestTime struct {
	AthleteID int64
	ResultID  int64
	Time      string
	Seconds   float64
	MeetID    int64
}

// RankingRow is one leaderboard line. Rank is 1-based within its category.
type RankingRow struct {
	Athlete  model.Athlete
	BestTime string
	Seconds  float64
	MeetID   int64
	MeetName string
	Rank     int
}

// Leaderboards maps each configured category to its ordered rows.
type Leaderboards map[model.Category][]RankingRow

// PlacedResult is a meet result joined with its athlete.
type PlacedResult struct {
	model.Result
	Athlete model.Athlete
}

// MeetTables maps each configured category to one meet's results in
// recorded order.
type MeetTables map[model.Category][]PlacedResult

// Empty reports whether no category holds a result.
func (t MeetTables) Empty() bool {
	for _, rows := range t {
		if len(rows) > 0 {
			return false
		}
	}
	return true
}

// Builder computes leaderboards and meet tables from in-memory snapshots.
// It holds configuration only and is safe for concurrent use.
type Builder struct {
	categories      []model.Category
	meetPlaceholder string
	tieBreak        TieBreak
}

// NewBuilder creates a Builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		categories:      append([]model.Category(nil), model.DefaultCategories...),
		meetPlaceholder: DefaultMeetPlaceholder,
		tieBreak:        TieBreakAthleteID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Categories returns the configured categories in display order.
func (b *Builder) Categories() []model.Category {
	return append([]model.Category(nil), b.categories...)
}

// ReduceBestTimes collapses results into one BestTime per athlete. Results
// are visited in the given order and only a strictly faster time replaces
// the stored one, so the earliest of equal times wins.
func ReduceBestTimes(results []model.Result) map[int64]BestTime {
	best := make(map[int64]BestTime)
	for _, r := range results {
		secs := racetime.Parse(r.Time)
		current, ok := best[r.AthleteID]
		if ok && secs >= current.Seconds {
			continue
		}
		best[r.AthleteID] = BestTime{
			AthleteID: r.AthleteID,
			ResultID:  r.ID,
			Time:      r.Time,
			Seconds:   secs,
			MeetID:    r.MeetID,
		}
	}
	return best
}

// Leaderboards reduces results to best times and ranks them.
func (b *Builder) Leaderboards(athletes []model.Athlete, meets []model.Meet, results []model.Result) Leaderboards {
	return b.Rank(athletes, meets, ReduceBestTimes(results))
}

// Rank joins best times with athletes and meets, orders them ascending by
// time and partitions them by category. Best times whose athlete is unknown
// are dropped; an unknown meet keeps the row under the placeholder name.
func (b *Builder) Rank(athletes []model.Athlete, meets []model.Meet, best map[int64]BestTime) Leaderboards {
	athleteByID := indexAthletes(athletes)
	meetByID := indexMeets(meets)

	rows := make([]RankingRow, 0, len(best))
	for athleteID, bt := range best {
		a, ok := athleteByID[athleteID]
		if !ok {
			continue
		}
		meetName := b.meetPlaceholder
		if m, ok := meetByID[bt.MeetID]; ok && m.Name != "" {
			meetName = m.Name
		}
		rows = append(rows, RankingRow{
			Athlete:  a,
			BestTime: bt.Time,
			Seconds:  bt.Seconds,
			MeetID:   bt.MeetID,
			MeetName: meetName,
		})
	}

	// Map iteration is random; fix the candidate order before the stable
	// sort so equal times land the same way on every run.
	sort.Slice(rows, b.tieLess(rows))
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Seconds < rows[j].Seconds
	})

	parts := partition(rows, b.categories, func(r RankingRow) model.Category {
		return r.Athlete.Category
	})
	for _, part := range parts {
		for i := range part {
			part[i].Rank = i + 1
		}
	}
	return Leaderboards(parts)
}

func (b *Builder) tieLess(rows []RankingRow) func(i, j int) bool {
	if b.tieBreak == TieBreakName {
		return func(i, j int) bool {
			if rows[i].Athlete.Name != rows[j].Athlete.Name {
				return rows[i].Athlete.Name < rows[j].Athlete.Name
			}
			return rows[i].Athlete.ID < rows[j].Athlete.ID
		}
	}
	return func(i, j int) bool {
		return rows[i].Athlete.ID < rows[j].Athlete.ID
	}
}

// MeetTables joins one meet's results with their athletes and partitions
// them by category. Input order is kept as the finishing order; results are
// never re-sorted by time. Results whose athlete is unknown are dropped.
func (b *Builder) MeetTables(meetResults []model.Result, athletes []model.Athlete) MeetTables {
	athleteByID := indexAthletes(athletes)

	placed := make([]PlacedResult, 0, len(meetResults))
	for _, r := range meetResults {
		a, ok := athleteByID[r.AthleteID]
		if !ok {
			continue
		}
		placed = append(placed, PlacedResult{Result: r, Athlete: a})
	}

	return MeetTables(partition(placed, b.categories, func(p PlacedResult) model.Category {
		return p.Athlete.Category
	}))
}

var defaultBuilder = NewBuilder()

// BuildLeaderboards ranks results with the default M/F configuration.
func BuildLeaderboards(athletes []model.Athlete, meets []model.Meet, results []model.Result) Leaderboards {
	return defaultBuilder.Leaderboards(athletes, meets, results)
}

// BuildMeetResultTables partitions one meet's results with the default M/F configuration.
func BuildMeetResultTables(meetResults []model.Result, athletes []model.Athlete) MeetTables {
	return defaultBuilder.MeetTables(meetResults, athletes)
}
