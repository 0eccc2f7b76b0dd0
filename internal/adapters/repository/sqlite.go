package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/pkg/logger"
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	log     logger.Logger
	closed  atomic.Bool
	applied []int
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and applies pending
// migrations. ":memory:" yields a private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := newSettings(opts)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+"_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, v := range applied {
		s.log.Info(ctx, "migration applied", logger.Int("version", v))
	}

	return &SQLiteStore{db: db, log: s.log, applied: applied}, nil
}

// Applied returns the migration versions applied when the store was opened.
func (s *SQLiteStore) Applied() []int {
	return append([]int(nil), s.applied...)
}

// Version returns the schema version recorded in the database.
func (s *SQLiteStore) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) ready() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// translate maps driver constraint failures onto store sentinels.
func translate(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullPlace(p int) sql.NullInt64 {
	if p <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(p), Valid: true}
}

// exec runs a write and reports ErrNotFound when no row matched.
func (s *SQLiteStore) exec(ctx context.Context, what string, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, translate(err))
	}
	return affected(res, what, id)
}

// affected maps a write that touched no row to ErrNotFound.
func affected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s %d: rows affected: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) insert(ctx context.Context, what, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", what, translate(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s id: %w", what, err)
	}
	return id, nil
}

const athleteColumns = "id, name, gender, grade, personal_record, events"

func (s *SQLiteStore) ListAthletes(ctx context.Context) (out []model.Athlete, err error) {
	defer func(start time.Time) { observe("list_athletes", start, err) }(time.Now())
	if err = s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+athleteColumns+" FROM athletes ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	defer rows.Close()

	out = []model.Athlete{}
	for rows.Next() {
		var (
			a                  model.Athlete
			gender, pr, events sql.NullString
		)
		if err = rows.Scan(&a.ID, &a.Name, &gender, &a.Grade, &pr, &events); err != nil {
			return nil, fmt.Errorf("failed to scan athlete: %w", err)
		}
		a.Category = model.Category(gender.String)
		a.PersonalRecord = pr.String
		a.Events = events.String
		out = append(out, a)
	}
	return out, rows.Err()
}

const meetColumns = "id, name, date, location, description"

func scanMeet(sc interface{ Scan(...any) error }) (model.Meet, error) {
	var (
		m                     model.Meet
		location, description sql.NullString
	)
	if err := sc.Scan(&m.ID, &m.Name, &m.Date, &location, &description); err != nil {
		return model.Meet{}, err
	}
	m.Location = location.String
	m.Description = description.String
	return m, nil
}

func (s *SQLiteStore) ListMeets(ctx context.Context) (out []model.Meet, err error) {
	defer func(start time.Time) { observe("list_meets", start, err) }(time.Now())
	if err = s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+meetColumns+" FROM meets ORDER BY date DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list meets: %w", err)
	}
	defer rows.Close()

	out = []model.Meet{}
	for rows.Next() {
		m, err := scanMeet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meet: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetMeet(ctx context.Context, id int64) (model.Meet, error) {
	if err := s.ready(); err != nil {
		return model.Meet{}, err
	}
	m, err := scanMeet(s.db.QueryRowContext(ctx, "SELECT "+meetColumns+" FROM meets WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meet{}, fmt.Errorf("meet %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Meet{}, fmt.Errorf("failed to get meet: %w", err)
	}
	return m, nil
}

const resultColumns = "SELECT id, athlete_id, meet_id, finish_time, place FROM results "

func (s *SQLiteStore) queryResults(ctx context.Context, query string, args ...any) ([]model.Result, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, resultColumns+query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	out := []model.Result{}
	for rows.Next() {
		var (
			r     model.Result
			place sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.MeetID, &r.Time, &place); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Place = int(place.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListResults(ctx context.Context) (out []model.Result, err error) {
	defer func(start time.Time) { observe("list_results", start, err) }(time.Now())
	return s.queryResults(ctx, "ORDER BY meet_id ASC, place IS NULL, place ASC, id ASC")
}

func (s *SQLiteStore) ListResultsForMeet(ctx context.Context, meetID int64) (out []model.Result, err error) {
	defer func(start time.Time) { observe("list_results_for_meet", start, err) }(time.Now())
	return s.queryResults(ctx, "WHERE meet_id = ? ORDER BY place IS NULL, place ASC, finish_time ASC, id ASC", meetID)
}

func (s *SQLiteStore) ListResultsForAthlete(ctx context.Context, athleteID int64) (out []model.Result, err error) {
	defer func(start time.Time) { observe("list_results_for_athlete", start, err) }(time.Now())
	return s.queryResults(ctx, "WHERE athlete_id = ? ORDER BY meet_id ASC, id ASC", athleteID)
}

func (s *SQLiteStore) ListCoaches(ctx context.Context) (out []model.Coach, err error) {
	defer func(start time.Time) { observe("list_coaches", start, err) }(time.Now())
	if err = s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, title, bio FROM coaches ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches: %w", err)
	}
	defer rows.Close()

	out = []model.Coach{}
	for rows.Next() {
		var (
			c          model.Coach
			title, bio sql.NullString
		)
		if err = rows.Scan(&c.ID, &c.Name, &title, &bio); err != nil {
			return nil, fmt.Errorf("failed to scan coach: %w", err)
		}
		c.Title = title.String
		c.Bio = bio.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	if err := s.ready(); err != nil {
		return model.Athlete{}, err
	}
	id, err := s.insert(ctx, "athlete",
		"INSERT INTO athletes (name, gender, grade, personal_record, events) VALUES (?, ?, ?, ?, ?)",
		a.Name, nullString(string(a.Category)), a.Grade, nullString(a.PersonalRecord), nullString(a.Events))
	if err != nil {
		return model.Athlete{}, err
	}
	a.ID = id
	return a, nil
}

func (s *SQLiteStore) UpdateAthlete(ctx context.Context, a model.Athlete) (model.Athlete, error) {
	if err := s.ready(); err != nil {
		return model.Athlete{}, err
	}
	err := s.exec(ctx, "update athlete", a.ID,
		"UPDATE athletes SET name = ?, gender = ?, grade = ?, personal_record = ?, events = ? WHERE id = ?",
		a.Name, nullString(string(a.Category)), a.Grade, nullString(a.PersonalRecord), nullString(a.Events), a.ID)
	if err != nil {
		return model.Athlete{}, err
	}
	return a, nil
}

func (s *SQLiteStore) DeleteAthlete(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.exec(ctx, "delete athlete", id, "DELETE FROM athletes WHERE id = ?", id)
}

func (s *SQLiteStore) CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error) {
	if err := s.ready(); err != nil {
		return model.Meet{}, err
	}
	id, err := s.insert(ctx, "meet",
		"INSERT INTO meets (name, date, location, description) VALUES (?, ?, ?, ?)",
		m.Name, m.Date, nullString(m.Location), nullString(m.Description))
	if err != nil {
		return model.Meet{}, err
	}
	m.ID = id
	return m, nil
}

func (s *SQLiteStore) UpdateMeet(ctx context.Context, m model.Meet) (model.Meet, error) {
	if err := s.ready(); err != nil {
		return model.Meet{}, err
	}
	err := s.exec(ctx, "update meet", m.ID,
		"UPDATE meets SET name = ?, date = ?, location = ?, description = ? WHERE id = ?",
		m.Name, m.Date, nullString(m.Location), nullString(m.Description), m.ID)
	if err != nil {
		return model.Meet{}, err
	}
	return m, nil
}

func (s *SQLiteStore) DeleteMeet(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.exec(ctx, "delete meet", id, "DELETE FROM meets WHERE id = ?", id)
}

func (s *SQLiteStore) CreateResult(ctx context.Context, r model.Result) (model.Result, error) {
	if err := s.ready(); err != nil {
		return model.Result{}, err
	}
	id, err := s.insert(ctx, "result",
		"INSERT INTO results (athlete_id, meet_id, finish_time, place) VALUES (?, ?, ?, ?)",
		r.AthleteID, r.MeetID, r.Time, nullPlace(r.Place))
	if err != nil {
		return model.Result{}, err
	}
	r.ID = id
	return r, nil
}

func (s *SQLiteStore) UpdateResult(ctx context.Context, r model.Result) (model.Result, error) {
	if err := s.ready(); err != nil {
		return model.Result{}, err
	}
	err := s.exec(ctx, "update result", r.ID,
		"UPDATE results SET athlete_id = ?, meet_id = ?, finish_time = ?, place = ? WHERE id = ?",
		r.AthleteID, r.MeetID, r.Time, nullPlace(r.Place), r.ID)
	if err != nil {
		return model.Result{}, err
	}
	return r, nil
}

func (s *SQLiteStore) DeleteResult(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.exec(ctx, "delete result", id, "DELETE FROM results WHERE id = ?", id)
}

func (s *SQLiteStore) CreateCoach(ctx context.Context, c model.Coach) (model.Coach, error) {
	if err := s.ready(); err != nil {
		return model.Coach{}, err
	}
	id, err := s.insert(ctx, "coach",
		"INSERT INTO coaches (name, title, bio) VALUES (?, ?, ?)",
		c.Name, nullString(c.Title), nullString(c.Bio))
	if err != nil {
		return model.Coach{}, err
	}
	c.ID = id
	return c, nil
}

func (s *SQLiteStore) UpdateCoach(ctx context.Context, c model.Coach) (model.Coach, error) {
	if err := s.ready(); err != nil {
		return model.Coach{}, err
	}
	err := s.exec(ctx, "update coach", c.ID,
		"UPDATE coaches SET name = ?, title = ?, bio = ? WHERE id = ?",
		c.Name, nullString(c.Title), nullString(c.Bio), c.ID)
	if err != nil {
		return model.Coach{}, err
	}
	return c, nil
}

func (s *SQLiteStore) DeleteCoach(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.exec(ctx, "delete coach", id, "DELETE FROM coaches WHERE id = ?", id)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Close closes the underlying database; it is safe to call twice.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
