// Package model contains the roster records shared between the store, the
// ranking engine and the HTTP layer.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for meet dates.
const DateLayout = "2006-01-02"

// ErrInvalid marks a record that fails basic shape validation.
var ErrInvalid = errors.New("invalid record")

// Category is the competitor class used to partition leaderboards and meet tables.
type Category string

// Categories used by the team.
const (
	CategoryBoys  Category = "M"
	CategoryGirls Category = "F"
)

// DefaultCategories is the category order used when none is configured.
var DefaultCategories = []Category{CategoryBoys, CategoryGirls}

// NormalizeCategory trims and upper-cases raw input such as " f ".
func NormalizeCategory(s string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(s)))
}

// Label returns a display label for the category.
func (c Category) Label() string {
	switch c {
	case CategoryBoys:
		return "Boys"
	case CategoryGirls:
		return "Girls"
	default:
		return string(c)
	}
}

// Athlete is a roster member.
type Athlete struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Category       Category `json:"gender,omitempty"`
	Grade          int      `json:"grade"`
	PersonalRecord string   `json:"personal_record,omitempty"`
	Events         string   `json:"events,omitempty"`
}

// Validate checks the fields a client must provide.
func (a Athlete) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: athlete name is required", ErrInvalid)
	}
	return nil
}

// Meet is a competition on a calendar date.
type Meet struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks the name and the YYYY-MM-DD date.
func (m Meet) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: meet name is required", ErrInvalid)
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("%w: meet date must be YYYY-MM-DD", ErrInvalid)
	}
	return nil
}

// Result is one athlete's recorded finish at one meet.
type Result struct {
	ID        int64  `json:"id"`
	AthleteID int64  `json:"athleteId"`
	MeetID    int64  `json:"meetId"`
	Time      string `json:"time"`
	Place     int    `json:"place,omitempty"`
}

// Validate checks references and that a time string is present. The time
// itself is not parsed here; malformed times are tolerated downstream.
func (r Result) Validate() error {
	switch {
	case r.AthleteID <= 0:
		return fmt.Errorf("%w: athleteId is required", ErrInvalid)
	case r.MeetID <= 0:
		return fmt.Errorf("%w: meetId is required", ErrInvalid)
	case strings.TrimSpace(r.Time) == "":
		return fmt.Errorf("%w: time is required", ErrInvalid)
	case r.Place < 0:
		return fmt.Errorf("%w: place must not be negative", ErrInvalid)
	}
	return nil
}

// Coach is a member of the coaching staff.
type Coach struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Bio   string `json:"bio,omitempty"`
}

// Validate checks the fields a client must provide.
func (c Coach) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: coach name is required", ErrInvalid)
	}
	return nil
}
