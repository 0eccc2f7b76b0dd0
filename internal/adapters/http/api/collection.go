package api

import (
	"context"
	"net/http"

	service "github.com/okian/stride/internal/app"
	"github.com/okian/stride/internal/domain/model"
)

// collection serves list/create/update/delete for one roster entity on a
// single path. Updates and deletes address a record with ?id=.
type collection[T any] struct {
	srv    *Server
	name   string
	list   func(r *http.Request) ([]T, error)
	create func(ctx context.Context, v T) (T, error)
	update func(ctx context.Context, id int64, v T) (T, error)
	remove func(ctx context.Context, id int64) error
}

func (c collection[T]) handle(w http.ResponseWriter, r *http.Request) {
	op := "api." + c.name
	srv := c.srv

	switch r.Method {
	case http.MethodGet:
		items, err := c.list(r)
		if err != nil {
			srv.writeFailure(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var v T
		if err := decodeJSON(op, w, r, &v); err != nil {
			srv.writeFailure(w, r, err)
			return
		}
		created, err := c.create(r.Context(), v)
		if err != nil {
			srv.writeFailure(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodPut:
		id, err := parseID(op, r.URL.Query().Get("id"))
		if err != nil {
			srv.writeFailure(w, r, err)
			return
		}
		var v T
		if err := decodeJSON(op, w, r, &v); err != nil {
			srv.writeFailure(w, r, err)
			return
		}
		updated, err := c.update(r.Context(), id, v)
		if err != nil {
			srv.writeFailure(w, r, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		id, err := parseID(op, r.URL.Query().Get("id"))
		if err != nil {
			srv.writeFailure(w, r, err)
			return
		}
		if err := c.remove(r.Context(), id); err != nil {
			srv.writeFailure(w, r, Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// listResults applies the ?meetId= or ?athleteId= filter.
func listResults(deps Dependencies, r *http.Request) ([]model.Result, error) {
	const op = "api.results"
	var f service.ResultFilter
	q := r.URL.Query()
	if raw := q.Get("meetId"); raw != "" {
		id, err := parseID(op, raw)
		if err != nil {
			return nil, err
		}
		f.MeetID = id
	} else if raw := q.Get("athleteId"); raw != "" {
		id, err := parseID(op, raw)
		if err != nil {
			return nil, err
		}
		f.AthleteID = id
	}
	return deps.ListResults(r.Context(), f)
}
