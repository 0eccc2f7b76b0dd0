package service

import (
	"context"
	"fmt"

	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/pkg/logger"
)

// ResultFilter narrows ListResults. MeetID wins when both are set.
type ResultFilter struct {
	MeetID    int64
	AthleteID int64
}

// ListAthletes returns the roster ordered by name.
func (s *Service) ListAthletes(ctx context.Context) ([]model.Athlete, error) {
	return s.store.ListAthletes(ctx)
}

// CreateAthlete validates and stores a new athlete.
func (s *Service) CreateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	a.Category = model.NormalizeCategory(string(a.Category))
	if err := a.Validate(); err != nil {
		return model.Athlete{}, err
	}
	created, err := s.store.CreateAthlete(ctx, a)
	if err != nil {
		return model.Athlete{}, fmt.Errorf("create athlete: %w", err)
	}
	s.logger.Info(ctx, "athlete created", logger.Int64("id", created.ID), logger.String("category", string(created.Category)))
	return created, nil
}

// UpdateAthlete replaces athlete id.
func (s *Service) UpdateAthlete(ctx context.Context, id int64, a model.Athlete) (model.Athlete, error) {
	a.ID = id
	a.Category = model.NormalizeCategory(string(a.Category))
	if err := a.Validate(); err != nil {
		return model.Athlete{}, err
	}
	return s.store.UpdateAthlete(ctx, a)
}

// DeleteAthlete removes athlete id and their results.
func (s *Service) DeleteAthlete(ctx context.Context, id int64) error {
	if err := s.store.DeleteAthlete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "athlete deleted", logger.Int64("id", id))
	return nil
}

// ListMeets returns meets, most recent first.
func (s *Service) ListMeets(ctx context.Context) ([]model.Meet, error) {
	return s.store.ListMeets(ctx)
}

// CreateMeet validates and stores a new meet.
func (s *Service) CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error) {
	if err := m.Validate(); err != nil {
		return model.Meet{}, err
	}
	created, err := s.store.CreateMeet(ctx, m)
	if err != nil {
		return model.Meet{}, fmt.Errorf("create meet: %w", err)
	}
	s.logger.Info(ctx, "meet created", logger.Int64("id", created.ID), logger.String("date", created.Date))
	return created, nil
}

// UpdateMeet replaces meet id.
func (s *Service) UpdateMeet(ctx context.Context, id int64, m model.Meet) (model.Meet, error) {
	m.ID = id
	if err := m.Validate(); err != nil {
		return model.Meet{}, err
	}
	return s.store.UpdateMeet(ctx, m)
}

// DeleteMeet removes meet id and its results.
func (s *Service) DeleteMeet(ctx context.Context, id int64) error {
	if err := s.store.DeleteMeet(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "meet deleted", logger.Int64("id", id))
	return nil
}

// ListResults returns results, optionally for one meet or one athlete.
func (s *Service) ListResults(ctx context.Context, f ResultFilter) ([]model.Result, error) {
	switch {
	case f.MeetID > 0:
		return s.store.ListResultsForMeet(ctx, f.MeetID)
	case f.AthleteID > 0:
		return s.store.ListResultsForAthlete(ctx, f.AthleteID)
	default:
		return s.store.ListResults(ctx)
	}
}

// CreateResult validates and stores a new result. The time string is kept
// as entered; malformed times are ranked last rather than rejected.
func (s *Service) CreateResult(ctx context.Context, r model.Result) (model.Result, error) {
	if err := r.Validate(); err != nil {
		return model.Result{}, err
	}
	return s.store.CreateResult(ctx, r)
}

// UpdateResult replaces result id.
func (s *Service) UpdateResult(ctx context.Context, id int64, r model.Result) (model.Result, error) {
	r.ID = id
	if err := r.Validate(); err != nil {
		return model.Result{}, err
	}
	return s.store.UpdateResult(ctx, r)
}

// DeleteResult removes result id.
func (s *Service) DeleteResult(ctx context.Context, id int64) error {
	return s.store.DeleteResult(ctx, id)
}

// ListCoaches returns the coaching staff.
func (s *Service) ListCoaches(ctx context.Context) ([]model.Coach, error) {
	return s.store.ListCoaches(ctx)
}

// CreateCoach validates and stores a new coach.
func (s *Service) CreateCoach(ctx context.Context, c model.Coach) (model.Coach, error) {
	if err := c.Validate(); err != nil {
		return model.Coach{}, err
	}
	return s.store.CreateCoach(ctx, c)
}

// UpdateCoach replaces coach id.
func (s *Service) UpdateCoach(ctx context.Context, id int64, c model.Coach) (model.Coach, error) {
	c.ID = id
	if err := c.Validate(); err != nil {
		return model.Coach{}, err
	}
	return s.store.UpdateCoach(ctx, c)
}

// DeleteCoach removes coach id.
func (s *Service) DeleteCoach(ctx context.Context, id int64) error {
	return s.store.DeleteCoach(ctx, id)
}
