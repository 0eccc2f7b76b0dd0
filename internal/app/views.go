package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	repository "github.com/okian/stride/internal/adapters/repository"
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/ranking"
	"github.com/okian/stride/internal/domain/types"
	"github.com/okian/stride/pkg/logger"
	"github.com/okian/stride/pkg/metrics"
)

// snapshot is one consistent-enough read of the roster.
type snapshot struct {
	athletes []model.Athlete
	meets    []model.Meet
	results  []model.Result
}

// fetchAll reads athletes, meets and results concurrently. Any failure
// cancels the others and fails the whole view.
func (s *Service) fetchAll(ctx context.Context) (snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.athletes, err = s.store.ListAthletes(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.meets, err = s.store.ListMeets(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.results, err = s.store.ListResults(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, fmt.Errorf("fetch roster: %w", err)
	}

	metrics.UpdateRosterSize("athletes", len(snap.athletes))
	metrics.UpdateRosterSize("meets", len(snap.meets))
	metrics.UpdateRosterSize("results", len(snap.results))
	return snap, nil
}

// Leaderboards ranks every athlete's best time within each category.
func (s *Service) Leaderboards(ctx context.Context) (ranking.Leaderboards, error) {
	start := time.Now()
	snap, err := s.fetchAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "leaderboards unavailable", logger.Error(err))
		return nil, err
	}

	lb := s.builder.Leaderboards(snap.athletes, snap.meets, snap.results)
	rep := s.builder.Audit(snap.athletes, snap.meets, snap.results)

	// a row is unresolved when its meet is missing or unnamed, whatever
	// text the placeholder happens to share with real meet names
	named := make(map[int64]struct{}, len(snap.meets))
	for _, m := range snap.meets {
		if m.Name != "" {
			named[m.ID] = struct{}{}
		}
	}
	placeholders := 0
	for cat, rows := range lb {
		metrics.RecordAggregationRows("rankings", string(cat), len(rows))
		for _, r := range rows {
			if _, ok := named[r.MeetID]; !ok {
				placeholders++
			}
		}
	}
	s.report(ctx, "rankings", rep)
	metrics.RecordPlaceholderMeets(placeholders)
	metrics.RecordAggregationDuration("rankings", msSince(start))
	return lb, nil
}

// MeetDetail returns a meet and its results partitioned by category.
// An unknown meet yields repository.ErrNotFound.
func (s *Service) MeetDetail(ctx context.Context, meetID int64) (model.Meet, ranking.MeetTables, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var (
		meet     model.Meet
		results  []model.Result
		athletes []model.Athlete
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		meet, err = s.store.GetMeet(gctx, meetID)
		return err
	})
	g.Go(func() (err error) {
		results, err = s.store.ListResultsForMeet(gctx, meetID)
		return err
	})
	g.Go(func() (err error) {
		athletes, err = s.store.ListAthletes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Meet{}, nil, fmt.Errorf("meet %d: %w", meetID, err)
	}

	tables := s.builder.MeetTables(results, athletes)
	s.report(ctx, "meet", s.builder.Audit(athletes, nil, results))
	for cat, rows := range tables {
		metrics.RecordAggregationRows("meet", string(cat), len(rows))
	}
	metrics.RecordAggregationDuration("meet", msSince(start))
	return meet, tables, nil
}

// History is one athlete's results with the personal best marked.
type History struct {
	Athlete model.Athlete
	Rows    []ranking.HistoryRow
	Best    ranking.BestTime
	HasBest bool
}

// AthleteHistory returns an athlete's results joined with meet names.
// An unknown athlete yields repository.ErrNotFound.
func (s *Service) AthleteHistory(ctx context.Context, athleteID int64) (History, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var (
		athletes []model.Athlete
		meets    []model.Meet
		results  []model.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		athletes, err = s.store.ListAthletes(gctx)
		return err
	})
	g.Go(func() (err error) {
		meets, err = s.store.ListMeets(gctx)
		return err
	})
	g.Go(func() (err error) {
		results, err = s.store.ListResultsForAthlete(gctx, athleteID)
		return err
	})
	if err := g.Wait(); err != nil {
		return History{}, fmt.Errorf("athlete %d history: %w", athleteID, err)
	}

	h := History{}
	found := false
	for _, a := range athletes {
		if a.ID == athleteID {
			h.Athlete, found = a, true
			break
		}
	}
	if !found {
		return History{}, fmt.Errorf("athlete %d: %w", athleteID, repository.ErrNotFound)
	}

	h.Rows, h.Best, h.HasBest = s.builder.History(athleteID, results, meets)
	metrics.RecordAggregationDuration("history", msSince(start))
	return h, nil
}

// GetStats summarizes roster sizes and data anomalies.
func (s *Service) GetStats(ctx context.Context) (types.Stats, error) {
	snap, err := s.fetchAll(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	coaches, err := s.store.ListCoaches(ctx)
	if err != nil {
		return types.Stats{}, fmt.Errorf("fetch coaches: %w", err)
	}

	byCategory := make(map[string]int)
	for _, a := range snap.athletes {
		byCategory[string(a.Category)]++
	}
	return types.Stats{
		Athletes:   len(snap.athletes),
		Meets:      len(snap.meets),
		Results:    len(snap.results),
		Coaches:    len(coaches),
		ByCategory: byCategory,
		Anomalies:  types.NewAnomalies(s.builder.Audit(snap.athletes, snap.meets, snap.results)),
	}, nil
}

// report logs and counts anomalies the builders absorbed for view.
func (s *Service) report(ctx context.Context, view string, rep ranking.Report) {
	metrics.RecordDroppedResults(view, "unresolved_athlete", rep.UnresolvedAthletes)
	metrics.RecordDroppedResults(view, "uncategorized", rep.Uncategorized)
	metrics.RecordUnparseableTimes(rep.UnparseableTimes)
	if rep.Clean() {
		return
	}
	s.logger.Debug(ctx, "aggregation anomalies",
		logger.String("view", view),
		logger.Int("results", rep.Results),
		logger.Int("unparseableTimes", rep.UnparseableTimes),
		logger.Int("unresolvedAthletes", rep.UnresolvedAthletes),
		logger.Int("unresolvedMeets", rep.UnresolvedMeets),
		logger.Int("uncategorized", rep.Uncategorized),
	)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
