package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/pkg/logger"
)

// MemStore is a mutex-guarded, in-memory Store. Ids are assigned from
// per-collection sequences starting at 1.
type MemStore struct {
	mu       sync.RWMutex
	log      logger.Logger
	closed   bool
	athletes map[int64]model.Athlete
	meets    map[int64]model.Meet
	results  map[int64]model.Result
	coaches  map[int64]model.Coach
	seq      struct{ athlete, meet, result, coach int64 }
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := newSettings(opts)
	return &MemStore{
		log:      s.log,
		athletes: make(map[int64]model.Athlete),
		meets:    make(map[int64]model.Meet),
		results:  make(map[int64]model.Result),
		coaches:  make(map[int64]model.Coach),
	}
}

// placeLess orders placed finishers first, unplaced (0) last.
func placeLess(a, b int) (less, decided bool) {
	switch {
	case a == b:
		return false, false
	case a == 0:
		return false, true
	case b == 0:
		return true, true
	}
	return a < b, true
}

func (s *MemStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemStore) ListAthletes(ctx context.Context) (out []model.Athlete, err error) {
	defer func(start time.Time) { observe("list_athletes", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.check(ctx); err != nil {
		return nil, err
	}
	out = make([]model.Athlete, 0, len(s.athletes))
	for _, a := range s.athletes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) ListMeets(ctx context.Context) (out []model.Meet, err error) {
	defer func(start time.Time) { observe("list_meets", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.check(ctx); err != nil {
		return nil, err
	}
	out = make([]model.Meet, 0, len(s.meets))
	for _, m := range s.meets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) ListResults(ctx context.Context) (out []model.Result, err error) {
	defer func(start time.Time) { observe("list_results", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.check(ctx); err != nil {
		return nil, err
	}
	out = s.filterResults(func(model.Result) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeetID != out[j].MeetID {
			return out[i].MeetID < out[j].MeetID
		}
		if less, ok := placeLess(out[i].Place, out[j].Place); ok {
			return less
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) ListResultsForMeet(ctx context.Context, meetID int64) (out []model.Result, err error) {
	defer func(start time.Time) { observe("list_results_for_meet", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.check(ctx); err != nil {
		return nil, err
	}
	out = s.filterResults(func(r model.Result) bool { return r.MeetID == meetID })
	sort.Slice(out, func(i, j int) bool {
		if less, ok := placeLess(out[i].Place, out[j].Place); ok {
			return less
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) ListResultsForAthlete(ctx context.Context, athleteID int64) (out []model.Result, err error) {
	defer func(start time.Time) { observe("list_results_for_athlete", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.check(ctx); err != nil {
		return nil, err
	}
	out = s.filterResults(func(r model.Result) bool { return r.AthleteID == athleteID })
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeetID != out[j].MeetID {
			return out[i].MeetID < out[j].MeetID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) filterResults(keep func(model.Result) bool) []model.Result {
	out := make([]model.Result, 0, len(s.results))
	for _, r := range s.results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemStore) ListCoaches(ctx context.Context) (out []model.Coach, err error) {
	defer func(start time.Time) { observe("list_coaches", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err = s.check(ctx); err != nil {
		return nil, err
	}
	out = make([]model.Coach, 0, len(s.coaches))
	for _, c := range s.coaches {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetMeet(ctx context.Context, id int64) (model.Meet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return model.Meet{}, err
	}
	m, ok := s.meets[id]
	if !ok {
		return model.Meet{}, fmt.Errorf("meet %d: %w", id, ErrNotFound)
	}
	return m, nil
}

func (s *MemStore) CreateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Athlete{}, err
	}
	s.seq.athlete++
	a.ID = s.seq.athlete
	s.athletes[a.ID] = a
	return a, nil
}

func (s *MemStore) UpdateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Athlete{}, err
	}
	if _, ok := s.athletes[a.ID]; !ok {
		return model.Athlete{}, fmt.Errorf("athlete %d: %w", a.ID, ErrNotFound)
	}
	s.athletes[a.ID] = a
	return a, nil
}

func (s *MemStore) DeleteAthlete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.athletes[id]; !ok {
		return fmt.Errorf("athlete %d: %w", id, ErrNotFound)
	}
	delete(s.athletes, id)
	removed := s.cascade(func(r model.Result) bool { return r.AthleteID == id })
	s.log.Debug(ctx, "athlete deleted", logger.Int64("athlete_id", id), logger.Int("results_removed", removed))
	return nil
}

func (s *MemStore) CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Meet{}, err
	}
	s.seq.meet++
	m.ID = s.seq.meet
	s.meets[m.ID] = m
	return m, nil
}

func (s *MemStore) UpdateMeet(ctx context.Context, m model.Meet) (model.Meet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Meet{}, err
	}
	if _, ok := s.meets[m.ID]; !ok {
		return model.Meet{}, fmt.Errorf("meet %d: %w", m.ID, ErrNotFound)
	}
	s.meets[m.ID] = m
	return m, nil
}

func (s *MemStore) DeleteMeet(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.meets[id]; !ok {
		return fmt.Errorf("meet %d: %w", id, ErrNotFound)
	}
	delete(s.meets, id)
	removed := s.cascade(func(r model.Result) bool { return r.MeetID == id })
	s.log.Debug(ctx, "meet deleted", logger.Int64("meet_id", id), logger.Int("results_removed", removed))
	return nil
}

func (s *MemStore) cascade(match func(model.Result) bool) int {
	n := 0
	for id, r := range s.results {
		if match(r) {
			delete(s.results, id)
			n++
		}
	}
	return n
}

func (s *MemStore) references(r model.Result) error {
	if _, ok := s.athletes[r.AthleteID]; !ok {
		return fmt.Errorf("athlete %d: %w", r.AthleteID, ErrInvalidReference)
	}
	if _, ok := s.meets[r.MeetID]; !ok {
		return fmt.Errorf("meet %d: %w", r.MeetID, ErrInvalidReference)
	}
	return nil
}

func (s *MemStore) CreateResult(ctx context.Context, r model.Result) (model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Result{}, err
	}
	if err := s.references(r); err != nil {
		return model.Result{}, err
	}
	s.seq.result++
	r.ID = s.seq.result
	s.results[r.ID] = r
	return r, nil
}

func (s *MemStore) UpdateResult(ctx context.Context, r model.Result) (model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Result{}, err
	}
	if _, ok := s.results[r.ID]; !ok {
		return model.Result{}, fmt.Errorf("result %d: %w", r.ID, ErrNotFound)
	}
	if err := s.references(r); err != nil {
		return model.Result{}, err
	}
	s.results[r.ID] = r
	return r, nil
}

func (s *MemStore) DeleteResult(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.results[id]; !ok {
		return fmt.Errorf("result %d: %w", id, ErrNotFound)
	}
	delete(s.results, id)
	return nil
}

func (s *MemStore) CreateCoach(ctx context.Context, c model.Coach) (model.Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Coach{}, err
	}
	s.seq.coach++
	c.ID = s.seq.coach
	s.coaches[c.ID] = c
	return c, nil
}

func (s *MemStore) UpdateCoach(ctx context.Context, c model.Coach) (model.Coach, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return model.Coach{}, err
	}
	if _, ok := s.coaches[c.ID]; !ok {
		return model.Coach{}, fmt.Errorf("coach %d: %w", c.ID, ErrNotFound)
	}
	s.coaches[c.ID] = c
	return c, nil
}

func (s *MemStore) DeleteCoach(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	if _, ok := s.coaches[id]; !ok {
		return fmt.Errorf("coach %d: %w", id, ErrNotFound)
	}
	delete(s.coaches, id)
	return nil
}

// Ping fails only after Close.
func (s *MemStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

// Close marks the store closed; later calls return ErrClosed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
