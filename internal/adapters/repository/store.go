// Package repository defines the entity store interfaces and their
// in-memory and SQLite implementations.
package repository

import (
	"context"
	"time"

	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/pkg/metrics"
)

// Reader is the read side consumed by the ranking views.
type Reader interface {
	// ListAthletes returns every athlete ordered by name.
	ListAthletes(ctx context.Context) ([]model.Athlete, error)
	// ListMeets returns every meet, most recent first.
	ListMeets(ctx context.Context) ([]model.Meet, error)
	// ListResults returns every result ordered by meet id, then place.
	ListResults(ctx context.Context) ([]model.Result, error)
	// ListResultsForMeet returns one meet's results ordered by place, then time.
	ListResultsForMeet(ctx context.Context, meetID int64) ([]model.Result, error)
}

// Store provides full read/write access to the roster.
type Store interface {
	Reader

	// ListResultsForAthlete returns one athlete's results ordered by meet id.
	ListResultsForAthlete(ctx context.Context, athleteID int64) ([]model.Result, error)
	ListCoaches(ctx context.Context) ([]model.Coach, error)
	// GetMeet returns ErrNotFound for an unknown id.
	GetMeet(ctx context.Context, id int64) (model.Meet, error)

	CreateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error)
	UpdateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error)
	// DeleteAthlete also removes the athlete's results.
	DeleteAthlete(ctx context.Context, id int64) error

	CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error)
	UpdateMeet(ctx context.Context, m model.Meet) (model.Meet, error)
	// DeleteMeet also removes the meet's results.
	DeleteMeet(ctx context.Context, id int64) error

	// CreateResult returns ErrInvalidReference when the athlete or meet is unknown.
	CreateResult(ctx context.Context, r model.Result) (model.Result, error)
	UpdateResult(ctx context.Context, r model.Result) (model.Result, error)
	DeleteResult(ctx context.Context, id int64) error

	CreateCoach(ctx context.Context, c model.Coach) (model.Coach, error)
	UpdateCoach(ctx context.Context, c model.Coach) (model.Coach, error)
	DeleteCoach(ctx context.Context, id int64) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Open returns a SQLite store at path, or an in-memory store when path is empty.
func Open(ctx context.Context, path string, opts ...Option) (Store, error) {
	if path == "" {
		return NewMemStore(opts...), nil
	}
	return OpenSQLite(ctx, path, opts...)
}

// observe records latency and failure of a store operation.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreQuery(op, float64(time.Since(start).Microseconds())/1000, err)
}
