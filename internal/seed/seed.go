// Package seed generates a plausible demo season: athletes, coaches, meets
// and placed results.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/racetime"
	"github.com/okian/stride/pkg/logger"
)

// Error constants.
var (
	ErrInvalidSize = errors.New("seed: athletes and meets must be positive")
)

// Generation ranges, in seconds for a 5K.
const (
	boysBaseMin       = 16*60 + 30
	girlsBaseMin      = 19 * 60
	baseSpread        = 3 * 60
	raceNoise         = 40.0
	seasonImprovement = 45.0
	attendanceRate    = 0.85
	dnfRate           = 0.02
	daysBetweenMeets  = 7
	firstGrade        = 9
	gradeCount        = 4
)

var firstNames = []string{
	"Avery", "Blake", "Casey", "Devon", "Emery", "Finley", "Gray", "Harper",
	"Indy", "Jordan", "Kai", "Logan", "Morgan", "Noel", "Oakley", "Parker",
	"Quinn", "Riley", "Sage", "Taylor", "Umi", "Val", "Wren", "Yael",
}

var lastNames = []string{
	"Alvarez", "Brooks", "Chen", "Dubois", "Eriksen", "Fischer", "Garcia",
	"Hughes", "Ito", "Jensen", "Kowalski", "Larsen", "Moreau", "Nakamura",
	"Okafor", "Patel", "Quintero", "Rossi", "Silva", "Tanaka",
}

var venues = []string{
	"Riverside Park", "Hillcrest Golf Course", "Lakeview Trails",
	"County Fairgrounds", "Cedar Ridge", "State Park Loop",
}

// Writer is the subset of the service the generator writes through.
type Writer interface {
	CreateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error)
	CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error)
	CreateResult(ctx context.Context, r model.Result) (model.Result, error)
	CreateCoach(ctx context.Context, c model.Coach) (model.Coach, error)
}

// Config controls the size and shape of the generated season.
type Config struct {
	Athletes int
	Meets    int
	// Seed makes the season reproducible.
	Seed uint64
	// SeasonStart is the date of the first meet.
	SeasonStart time.Time
	Categories  []model.Category
}

// DefaultConfig returns a small two-category season starting in September.
func DefaultConfig() Config {
	return Config{
		Athletes:    24,
		Meets:       6,
		Seed:        1,
		SeasonStart: time.Date(time.Now().Year(), time.September, 6, 0, 0, 0, 0, time.UTC),
		Categories:  model.DefaultCategories,
	}
}

// Summary counts what Run created.
type Summary struct {
	Athletes int
	Meets    int
	Results  int
	Coaches  int
	DNF      int
}

type runner struct {
	model.Athlete
	base float64
}

type finish struct {
	athleteID int64
	category  model.Category
	time      string
	seconds   float64
}

// Run writes a generated season through w.
func Run(ctx context.Context, w Writer, cfg Config) (Summary, error) {
	var sum Summary
	if cfg.Athletes <= 0 || cfg.Meets <= 0 {
		return sum, ErrInvalidSize
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = model.DefaultCategories
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5eed))
	log := logger.Default().Named("seed")

	for _, c := range []model.Coach{
		{Name: "Jamie Whitfield", Title: "Head Coach", Bio: "Former collegiate 10K runner."},
		{Name: "Robin Ellery", Title: "Assistant Coach"},
	} {
		if _, err := w.CreateCoach(ctx, c); err != nil {
			return sum, fmt.Errorf("create coach: %w", err)
		}
		sum.Coaches++
	}

	runners := make([]runner, 0, cfg.Athletes)
	for i := 0; i < cfg.Athletes; i++ {
		cat := cfg.Categories[i%len(cfg.Categories)]
		base := float64(boysBaseMin)
		if cat != model.CategoryBoys {
			base = girlsBaseMin
		}
		base += rng.Float64() * baseSpread
		a, err := w.CreateAthlete(ctx, model.Athlete{
			Name:     fmt.Sprintf("%s %s", firstNames[rng.IntN(len(firstNames))], lastNames[rng.IntN(len(lastNames))]),
			Category: cat,
			Grade:    firstGrade + rng.IntN(gradeCount),
		})
		if err != nil {
			return sum, fmt.Errorf("create athlete: %w", err)
		}
		runners = append(runners, runner{Athlete: a, base: base})
		sum.Athletes++
	}

	for m := 0; m < cfg.Meets; m++ {
		venue := venues[m%len(venues)]
		meet, err := w.CreateMeet(ctx, model.Meet{
			Name:     fmt.Sprintf("%s Invitational", venue),
			Date:     cfg.SeasonStart.AddDate(0, 0, m*daysBetweenMeets).Format(model.DateLayout),
			Location: venue,
		})
		if err != nil {
			return sum, fmt.Errorf("create meet: %w", err)
		}
		sum.Meets++

		progress := float64(m) / float64(max(cfg.Meets-1, 1))
		var finishes []finish
		for _, r := range runners {
			if rng.Float64() > attendanceRate {
				continue
			}
			f := finish{athleteID: r.ID, category: r.Category}
			if rng.Float64() < dnfRate {
				f.time, f.seconds = "DNF", racetime.Slowest
				sum.DNF++
			} else {
				f.seconds = r.base - progress*seasonImprovement + (rng.Float64()*2-1)*raceNoise
				f.time = racetime.Format(f.seconds)
			}
			finishes = append(finishes, f)
		}

		for _, f := range place(finishes) {
			if _, err := w.CreateResult(ctx, model.Result{
				AthleteID: f.athleteID,
				MeetID:    meet.ID,
				Time:      f.time,
				Place:     f.place,
			}); err != nil {
				return sum, fmt.Errorf("create result: %w", err)
			}
			sum.Results++
		}
	}

	log.Info(ctx, "seeded demo season",
		logger.Int("athletes", sum.Athletes),
		logger.Int("meets", sum.Meets),
		logger.Int("results", sum.Results),
	)
	return sum, nil
}

type placed struct {
	finish
	place int
}

// place assigns 1-based places per category by time. DNFs stay unplaced.
func place(finishes []finish) []placed {
	sort.SliceStable(finishes, func(i, j int) bool { return finishes[i].seconds < finishes[j].seconds })
	next := map[model.Category]int{}
	out := make([]placed, 0, len(finishes))
	for _, f := range finishes {
		p := placed{finish: f}
		if !racetime.Unparseable(f.seconds) {
			next[f.category]++
			p.place = next[f.category]
		}
		out = append(out, p)
	}
	return out
}
