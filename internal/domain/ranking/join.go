package ranking

import "github.com/okian/stride/internal/domain/model"

// indexAthletes builds an id lookup. A repeated id keeps the last record.
func indexAthletes(athletes []model.Athlete) map[int64]model.Athlete {
	idx := make(map[int64]model.Athlete, len(athletes))
	for _, a := range athletes {
		idx[a.ID] = a
	}
	return idx
}

// indexMeets builds an id lookup. A repeated id keeps the last record.
func indexMeets(meets []model.Meet) map[int64]model.Meet {
	idx := make(map[int64]model.Meet, len(meets))
	for _, m := range meets {
		idx[m.ID] = m
	}
	return idx
}

// partition splits rows by category, keeping their relative order. Every
// category gets a non-nil slice; rows in other categories are discarded.
func partition[T any](rows []T, categories []model.Category, categoryOf func(T) model.Category) map[model.Category][]T {
	out := make(map[model.Category][]T, len(categories))
	for _, c := range categories {
		out[c] = []T{}
	}
	for _, row := range rows {
		c := categoryOf(row)
		bucket, ok := out[c]
		if !ok {
			continue
		}
		out[c] = append(bucket, row)
	}
	return out
}
