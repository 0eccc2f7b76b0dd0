// Package ranking turns roster snapshots into leaderboards and meet tables.
package ranking

import (
	"strings"

	"github.com/okian/stride/internal/domain/model"
)

// DefaultMeetPlaceholder is shown when a best time points at an unknown meet.
const DefaultMeetPlaceholder = "—"

// TieBreak selects the secondary ordering for equal best times.
type TieBreak string

// Supported tie-break policies.
const (
	// TieBreakAthleteID orders equal times by ascending athlete id.
	TieBreakAthleteID TieBreak = "id"
	// TieBreakName orders equal times by athlete name, then id.
	TieBreakName TieBreak = "name"
)

// ParseTieBreak maps a config string to a policy, defaulting to TieBreakAthleteID.
func ParseTieBreak(s string) TieBreak {
	if TieBreak(strings.ToLower(strings.TrimSpace(s))) == TieBreakName {
		return TieBreakName
	}
	return TieBreakAthleteID
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithCategories sets the categories that receive a partition, in display
// order. Empty and duplicate values are ignored.
func WithCategories(categories ...model.Category) Option {
	return func(b *Builder) {
		seen := make(map[model.Category]struct{}, len(categories))
		out := make([]model.Category, 0, len(categories))
		for _, c := range categories {
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
		if len(out) > 0 {
			b.categories = out
		}
	}
}

// WithMeetPlaceholder sets the meet name used when a meet cannot be resolved.
func WithMeetPlaceholder(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.meetPlaceholder = name
		}
	}
}

// WithTieBreak sets the secondary ordering for equal best times.
func WithTieBreak(tb TieBreak) Option {
	return func(b *Builder) {
		switch tb {
		case TieBreakAthleteID, TieBreakName:
			b.tieBreak = tb
		}
	}
}
