// Package types contains the JSON shapes returned by the HTTP API and
// the conversions from ranking engine output.
package types

import (
	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/racetime"
	"github.com/okian/stride/internal/domain/ranking"
)

// Seconds returns v for JSON, or nil when the time could not be parsed.
func Seconds(v float64) *float64 {
	if racetime.Unparseable(v) {
		return nil
	}
	return &v
}

// RankingRow is one leaderboard line.
type RankingRow struct {
	Rank     int           `json:"rank"`
	Athlete  model.Athlete `json:"athlete"`
	BestTime string        `json:"bestTime"`
	Seconds  *float64      `json:"seconds"`
	MeetID   int64         `json:"meetId"`
	MeetName string        `json:"meetName"`
}

// Leaderboard is one category's ranked rows.
type Leaderboard struct {
	Category model.Category `json:"category"`
	Label    string         `json:"label"`
	Rows     []RankingRow   `json:"rows"`
}

// RankingsResponse lists leaderboards in configured category order.
type RankingsResponse struct {
	Leaderboards []Leaderboard `json:"leaderboards"`
}

// NewRankingsResponse orders lb by categories. Every category is present,
// with an empty row list when it has no entrants.
func NewRankingsResponse(lb ranking.Leaderboards, categories []model.Category) RankingsResponse {
	out := RankingsResponse{Leaderboards: make([]Leaderboard, 0, len(categories))}
	for _, c := range categories {
		rows := lb[c]
		board := Leaderboard{Category: c, Label: c.Label(), Rows: make([]RankingRow, 0, len(rows))}
		for _, r := range rows {
			board.Rows = append(board.Rows, RankingRow{
				Rank:     r.Rank,
				Athlete:  r.Athlete,
				BestTime: r.BestTime,
				Seconds:  Seconds(r.Seconds),
				MeetID:   r.MeetID,
				MeetName: r.MeetName,
			})
		}
		out.Leaderboards = append(out.Leaderboards, board)
	}
	return out
}

// MeetResultRow is a meet result joined with its athlete.
type MeetResultRow struct {
	ID          int64    `json:"id"`
	AthleteID   int64    `json:"athleteId"`
	AthleteName string   `json:"athleteName"`
	Grade       int      `json:"grade"`
	Time        string   `json:"time"`
	Seconds     *float64 `json:"seconds"`
	Place       int      `json:"place,omitempty"`
}

// MeetTable is one category's results at a meet.
type MeetTable struct {
	Category model.Category  `json:"category"`
	Label    string          `json:"label"`
	Results  []MeetResultRow `json:"results"`
}

// MeetDetailResponse is a meet with its per-category result tables.
type MeetDetailResponse struct {
	Meet       model.Meet  `json:"meet"`
	HasResults bool        `json:"hasResults"`
	Tables     []MeetTable `json:"tables"`
}

// NewMeetDetailResponse orders tables by categories.
func NewMeetDetailResponse(meet model.Meet, tables ranking.MeetTables, categories []model.Category) MeetDetailResponse {
	out := MeetDetailResponse{Meet: meet, HasResults: !tables.Empty(), Tables: make([]MeetTable, 0, len(categories))}
	for _, c := range categories {
		rows := tables[c]
		t := MeetTable{Category: c, Label: c.Label(), Results: make([]MeetResultRow, 0, len(rows))}
		for _, p := range rows {
			t.Results = append(t.Results, MeetResultRow{
				ID:          p.ID,
				AthleteID:   p.AthleteID,
				AthleteName: p.Athlete.Name,
				Grade:       p.Athlete.Grade,
				Time:        p.Time,
				Seconds:     Seconds(racetime.Parse(p.Time)),
				Place:       p.Place,
			})
		}
		out.Tables = append(out.Tables, t)
	}
	return out
}

// BestTime is an athlete's personal best.
type BestTime struct {
	ResultID int64    `json:"resultId"`
	Time     string   `json:"time"`
	Seconds  *float64 `json:"seconds"`
	MeetID   int64    `json:"meetId"`
}

// HistoryRow is one of an athlete's results.
type HistoryRow struct {
	ID           int64    `json:"id"`
	MeetID       int64    `json:"meetId"`
	MeetName     string   `json:"meetName"`
	MeetDate     string   `json:"meetDate,omitempty"`
	Time         string   `json:"time"`
	Seconds      *float64 `json:"seconds"`
	Place        int      `json:"place,omitempty"`
	PersonalBest bool     `json:"personalBest"`
}

// HistoryResponse is an athlete's results with the personal best marked.
type HistoryResponse struct {
	Athlete      model.Athlete `json:"athlete"`
	PersonalBest *BestTime     `json:"personalBest"`
	Results      []HistoryRow  `json:"results"`
}

// NewHistoryResponse converts History output; pb is ignored unless ok.
func NewHistoryResponse(a model.Athlete, rows []ranking.HistoryRow, pb ranking.BestTime, ok bool) HistoryResponse {
	out := HistoryResponse{Athlete: a, Results: make([]HistoryRow, 0, len(rows))}
	if ok {
		out.PersonalBest = &BestTime{ResultID: pb.ResultID, Time: pb.Time, Seconds: Seconds(pb.Seconds), MeetID: pb.MeetID}
	}
	for _, r := range rows {
		out.Results = append(out.Results, HistoryRow{
			ID:           r.ID,
			MeetID:       r.MeetID,
			MeetName:     r.MeetName,
			MeetDate:     r.MeetDate,
			Time:         r.Time,
			Seconds:      Seconds(r.Seconds),
			Place:        r.Place,
			PersonalBest: r.PersonalBest,
		})
	}
	return out
}

// Stats summarizes the roster.
type Stats struct {
	Athletes   int            `json:"athletes"`
	Meets      int            `json:"meets"`
	Results    int            `json:"results"`
	Coaches    int            `json:"coaches"`
	ByCategory map[string]int `json:"byCategory"`
	Anomalies  Anomalies      `json:"anomalies"`
}

// Anomalies counts data the leaderboards skip or degrade.
type Anomalies struct {
	UnparseableTimes   int `json:"unparseableTimes"`
	UnresolvedAthletes int `json:"unresolvedAthletes"`
	UnresolvedMeets    int `json:"unresolvedMeets"`
	Uncategorized      int `json:"uncategorized"`
}

// NewAnomalies converts an audit report.
func NewAnomalies(r ranking.Report) Anomalies {
	return Anomalies{
		UnparseableTimes:   r.UnparseableTimes,
		UnresolvedAthletes: r.UnresolvedAthletes,
		UnresolvedMeets:    r.UnresolvedMeets,
		Uncategorized:      r.Uncategorized,
	}
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries an admin bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
