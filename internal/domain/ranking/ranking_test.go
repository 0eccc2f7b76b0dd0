package ranking_test

import (
	"math"
	"testing"

	"github.com/okian/stride/internal/domain/model"
	"github.com/okian/stride/internal/domain/racetime"
	"github.com/okian/stride/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func athlete(id int64, name string, c model.Category) model.Athlete {
	return model.Athlete{ID: id, Name: name, Category: c, Grade: 10}
}

func result(id, athleteID, meetID int64, t string, place int) model.Result {
	return model.Result{ID: id, AthleteID: athleteID, MeetID: meetID, Time: t, Place: place}
}

func TestReduceBestTimes(t *testing.T) {
	Convey("Given results for several athletes", t, func() {
		results := []model.Result{
			result(1, 1, 1, "18:45", 3),
			result(2, 1, 2, "18:20", 2),
			result(3, 2, 1, "19:00", 5),
		}

		Convey("When reducing to best times", func() {
			best := ranking.ReduceBestTimes(results)

			Convey("Then each athlete keeps the fastest result and its meet", func() {
				So(best, ShouldHaveLength, 2)
				So(best[1].Time, ShouldEqual, "18:20")
				So(best[1].MeetID, ShouldEqual, 2)
				So(best[1].ResultID, ShouldEqual, 2)
				So(best[1].Seconds, ShouldEqual, 1100.0)
				So(best[2].Time, ShouldEqual, "19:00")
				So(best[2].MeetID, ShouldEqual, 1)
			})

			Convey("And no best time is slower than any of the athlete's results", func() {
				for _, r := range results {
					So(best[r.AthleteID].Seconds, ShouldBeLessThanOrEqualTo, racetime.Parse(r.Time))
				}
			})
		})

		Convey("When two results tie", func() {
			best := ranking.ReduceBestTimes([]model.Result{
				result(10, 5, 7, "17:00", 1),
				result(11, 5, 8, "17:00.0", 1),
			})

			Convey("Then the earliest result wins", func() {
				So(best[5].ResultID, ShouldEqual, 10)
				So(best[5].MeetID, ShouldEqual, 7)
			})
		})

		Convey("When a malformed time comes first", func() {
			best := ranking.ReduceBestTimes([]model.Result{
				result(20, 9, 1, "DNF", 0),
				result(21, 9, 2, "21:10", 40),
			})

			Convey("Then a parseable time replaces it", func() {
				So(best[9].Time, ShouldEqual, "21:10")
			})
		})

		Convey("When an athlete only has malformed times", func() {
			best := ranking.ReduceBestTimes([]model.Result{result(30, 4, 1, "bad", 0)})

			Convey("Then the best time is the slowest sentinel", func() {
				So(math.IsInf(best[4].Seconds, 1), ShouldBeTrue)
			})
		})

		Convey("When there are no results", func() {
			So(ranking.ReduceBestTimes(nil), ShouldBeEmpty)
		})
	})
}

func TestBuildLeaderboards(t *testing.T) {
	Convey("Given two boys with results at two meets", t, func() {
		athletes := []model.Athlete{athlete(1, "A", model.CategoryBoys), athlete(2, "B", model.CategoryBoys)}
		meets := []model.Meet{{ID: 1, Name: "Opener"}, {ID: 2, Name: "County"}}
		results := []model.Result{
			result(1, 1, 1, "18:45", 3),
			result(2, 1, 2, "18:20", 2),
			result(3, 2, 1, "19:00", 5),
		}

		Convey("When building leaderboards", func() {
			boards := ranking.BuildLeaderboards(athletes, meets, results)

			Convey("Then the boys board ranks A before B", func() {
				boys := boards[model.CategoryBoys]
				So(boys, ShouldHaveLength, 2)
				So(boys[0].Athlete.ID, ShouldEqual, 1)
				So(boys[0].Rank, ShouldEqual, 1)
				So(boys[0].BestTime, ShouldEqual, "18:20")
				So(boys[0].MeetName, ShouldEqual, "County")
				So(boys[1].Athlete.ID, ShouldEqual, 2)
				So(boys[1].Rank, ShouldEqual, 2)
				So(boys[1].BestTime, ShouldEqual, "19:00")
				So(boys[1].MeetName, ShouldEqual, "Opener")
			})

			Convey("And the girls board exists but is empty", func() {
				girls, ok := boards[model.CategoryGirls]
				So(ok, ShouldBeTrue)
				So(girls, ShouldNotBeNil)
				So(girls, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a result whose athlete was deleted", t, func() {
		athletes := []model.Athlete{athlete(1, "A", model.CategoryGirls)}
		meets := []model.Meet{{ID: 1, Name: "Opener"}}
		results := []model.Result{
			result(1, 1, 1, "20:00", 1),
			result(2, 99, 1, "15:00", 1),
		}

		Convey("When building leaderboards", func() {
			boards := ranking.BuildLeaderboards(athletes, meets, results)

			Convey("Then the orphaned result is excluded without error", func() {
				So(boards[model.CategoryGirls], ShouldHaveLength, 1)
				So(boards[model.CategoryGirls][0].Athlete.ID, ShouldEqual, 1)
				So(boards[model.CategoryBoys], ShouldBeEmpty)
			})
		})
	})

	Convey("Given a best time at a meet that no longer exists", t, func() {
		athletes := []model.Athlete{athlete(1, "A", model.CategoryBoys)}
		results := []model.Result{result(1, 1, 42, "17:30", 1)}

		Convey("When building leaderboards", func() {
			boards := ranking.BuildLeaderboards(athletes, nil, results)

			Convey("Then the row is kept under the placeholder meet name", func() {
				So(boards[model.CategoryBoys], ShouldHaveLength, 1)
				So(boards[model.CategoryBoys][0].MeetName, ShouldEqual, ranking.DefaultMeetPlaceholder)
				So(boards[model.CategoryBoys][0].MeetID, ShouldEqual, 42)
			})
		})

		Convey("When a custom placeholder is configured", func() {
			b := ranking.NewBuilder(ranking.WithMeetPlaceholder("Unknown meet"))
			boards := b.Leaderboards(athletes, nil, results)
			So(boards[model.CategoryBoys][0].MeetName, ShouldEqual, "Unknown meet")
		})
	})

	Convey("Given mixed categories and a malformed time", t, func() {
		athletes := []model.Athlete{
			athlete(1, "Boy Fast", model.CategoryBoys),
			athlete(2, "Girl Fast", model.CategoryGirls),
			athlete(3, "Boy Slow", model.CategoryBoys),
			athlete(4, "Girl Bad", model.CategoryGirls),
			athlete(5, "No Category", ""),
			athlete(6, "Other", model.Category("X")),
		}
		meets := []model.Meet{{ID: 1, Name: "Invitational"}}
		results := []model.Result{
			result(1, 4, 1, "oops", 9),
			result(2, 3, 1, "19:30", 3),
			result(3, 2, 1, "19:10", 2),
			result(4, 1, 1, "16:50", 1),
			result(5, 5, 1, "15:00", 1),
			result(6, 6, 1, "15:30", 1),
		}
		boards := ranking.BuildLeaderboards(athletes, meets, results)

		Convey("Then ranks are local to each category", func() {
			boys := boards[model.CategoryBoys]
			girls := boards[model.CategoryGirls]
			So(boys, ShouldHaveLength, 2)
			So(girls, ShouldHaveLength, 2)
			So(boys[0].Athlete.ID, ShouldEqual, 1)
			So(boys[0].Rank, ShouldEqual, 1)
			So(boys[1].Rank, ShouldEqual, 2)
			So(girls[0].Athlete.ID, ShouldEqual, 2)
			So(girls[0].Rank, ShouldEqual, 1)
		})

		Convey("Then the malformed time sinks to the bottom", func() {
			girls := boards[model.CategoryGirls]
			So(girls[1].Athlete.ID, ShouldEqual, 4)
			So(girls[1].Rank, ShouldEqual, 2)
			So(math.IsInf(girls[1].Seconds, 1), ShouldBeTrue)
		})

		Convey("Then unknown categories appear in no partition", func() {
			So(boards, ShouldHaveLength, 2)
			seen := map[int64]int{}
			for _, rows := range boards {
				for _, r := range rows {
					seen[r.Athlete.ID]++
				}
			}
			So(seen, ShouldResemble, map[int64]int{1: 1, 2: 1, 3: 1, 4: 1})
		})
	})
}

func TestLeaderboardDeterminism(t *testing.T) {
	Convey("Given athletes with identical best times", t, func() {
		athletes := []model.Athlete{
			athlete(30, "Cara", model.CategoryGirls),
			athlete(10, "Zoe", model.CategoryGirls),
			athlete(20, "Ava", model.CategoryGirls),
		}
		results := []model.Result{
			result(1, 30, 1, "20:00", 3),
			result(2, 10, 1, "20:00", 1),
			result(3, 20, 1, "20:00", 2),
		}

		Convey("When building twice from the same input", func() {
			first := ranking.BuildLeaderboards(athletes, nil, results)
			for i := 0; i < 20; i++ {
				So(ranking.BuildLeaderboards(athletes, nil, results), ShouldResemble, first)
			}

			Convey("Then ties are ordered by athlete id by default", func() {
				girls := first[model.CategoryGirls]
				So(girls[0].Athlete.ID, ShouldEqual, 10)
				So(girls[1].Athlete.ID, ShouldEqual, 20)
				So(girls[2].Athlete.ID, ShouldEqual, 30)
			})
		})

		Convey("When ties are broken by name", func() {
			b := ranking.NewBuilder(ranking.WithTieBreak(ranking.TieBreakName))
			girls := b.Leaderboards(athletes, nil, results)[model.CategoryGirls]

			Convey("Then athletes are alphabetical within the tie", func() {
				So(girls[0].Athlete.Name, ShouldEqual, "Ava")
				So(girls[1].Athlete.Name, ShouldEqual, "Cara")
				So(girls[2].Athlete.Name, ShouldEqual, "Zoe")
				So(girls[2].Rank, ShouldEqual, 3)
			})
		})
	})
}

func TestCustomCategories(t *testing.T) {
	Convey("Given a builder with three categories", t, func() {
		b := ranking.NewBuilder(ranking.WithCategories("V", "JV", "V", "", "MS"))
		So(b.Categories(), ShouldResemble, []model.Category{"V", "JV", "MS"})

		athletes := []model.Athlete{athlete(1, "A", "V"), athlete(2, "B", "MS"), athlete(3, "C", model.CategoryBoys)}
		results := []model.Result{result(1, 1, 1, "17:00", 1), result(2, 2, 1, "12:00", 1), result(3, 3, 1, "16:00", 1)}
		boards := b.Leaderboards(athletes, nil, results)

		Convey("Then every configured category gets a partition", func() {
			So(boards, ShouldHaveLength, 3)
			So(boards["V"], ShouldHaveLength, 1)
			So(boards["JV"], ShouldBeEmpty)
			So(boards["MS"][0].Rank, ShouldEqual, 1)
		})
	})

	Convey("Given only empty categories", t, func() {
		b := ranking.NewBuilder(ranking.WithCategories("", ""))
		So(b.Categories(), ShouldResemble, model.DefaultCategories)
	})
}

func TestBuildMeetResultTables(t *testing.T) {
	Convey("Given a meet where the second finisher ran faster on paper", t, func() {
		athletes := []model.Athlete{athlete(1, "X", model.CategoryGirls), athlete(2, "Y", model.CategoryGirls)}
		meetResults := []model.Result{
			result(1, 1, 3, "21:00", 1),
			result(2, 2, 3, "19:00", 2),
		}

		Convey("When partitioning the meet", func() {
			tables := ranking.BuildMeetResultTables(meetResults, athletes)

			Convey("Then the girls table keeps the recorded order", func() {
				girls := tables[model.CategoryGirls]
				So(girls, ShouldHaveLength, 2)
				So(girls[0].Place, ShouldEqual, 1)
				So(girls[0].Athlete.Name, ShouldEqual, "X")
				So(girls[1].Place, ShouldEqual, 2)
				So(tables.Empty(), ShouldBeFalse)
			})

			Convey("And the boys table is empty", func() {
				So(tables[model.CategoryBoys], ShouldBeEmpty)
			})
		})
	})

	Convey("Given a meet with results for a deleted athlete", t, func() {
		athletes := []model.Athlete{athlete(1, "X", model.CategoryBoys)}
		meetResults := []model.Result{result(1, 77, 3, "16:00", 1), result(2, 1, 3, "17:00", 2)}
		tables := ranking.BuildMeetResultTables(meetResults, athletes)

		Convey("Then the orphaned result is dropped", func() {
			So(tables[model.CategoryBoys], ShouldHaveLength, 1)
			So(tables[model.CategoryBoys][0].AthleteID, ShouldEqual, 1)
		})
	})

	Convey("Given a meet with no results", t, func() {
		tables := ranking.BuildMeetResultTables(nil, []model.Athlete{athlete(1, "X", model.CategoryBoys)})

		Convey("Then both partitions are empty", func() {
			So(tables.Empty(), ShouldBeTrue)
			So(tables[model.CategoryBoys], ShouldNotBeNil)
			So(tables[model.CategoryGirls], ShouldNotBeNil)
		})
	})
}

func TestHistory(t *testing.T) {
	Convey("Given an athlete with three results", t, func() {
		b := ranking.NewBuilder()
		meets := []model.Meet{{ID: 1, Name: "Opener", Date: "2025-09-01"}, {ID: 2, Name: "County", Date: "2025-10-01"}}
		results := []model.Result{
			result(1, 1, 1, "18:45", 3),
			result(2, 2, 1, "19:00", 5),
			result(3, 1, 2, "18:20", 2),
			result(4, 1, 9, "18:30", 1),
		}

		rows, best, ok := b.History(1, results, meets)

		Convey("Then only that athlete's results are listed in input order", func() {
			So(ok, ShouldBeTrue)
			So(rows, ShouldHaveLength, 3)
			So(rows[0].ID, ShouldEqual, 1)
			So(rows[1].ID, ShouldEqual, 3)
			So(rows[2].ID, ShouldEqual, 4)
		})

		Convey("Then meets are resolved with a placeholder fallback", func() {
			So(rows[0].MeetName, ShouldEqual, "Opener")
			So(rows[0].MeetDate, ShouldEqual, "2025-09-01")
			So(rows[2].MeetName, ShouldEqual, ranking.DefaultMeetPlaceholder)
		})

		Convey("Then exactly the fastest result is the personal best", func() {
			So(best.ResultID, ShouldEqual, 3)
			So(rows[0].PersonalBest, ShouldBeFalse)
			So(rows[1].PersonalBest, ShouldBeTrue)
			So(rows[2].PersonalBest, ShouldBeFalse)
		})
	})

	Convey("Given an athlete without results", t, func() {
		rows, _, ok := ranking.NewBuilder().History(5, nil, nil)
		So(ok, ShouldBeFalse)
		So(rows, ShouldBeEmpty)
	})
}

func TestAudit(t *testing.T) {
	Convey("Given a snapshot with every kind of anomaly", t, func() {
		b := ranking.NewBuilder()
		athletes := []model.Athlete{athlete(1, "A", model.CategoryBoys), athlete(2, "B", "")}
		meets := []model.Meet{{ID: 1, Name: "Opener"}}
		results := []model.Result{
			result(1, 1, 1, "18:00", 1),
			result(2, 1, 1, "bad", 2),
			result(3, 9, 1, "18:00", 3),
			result(4, 1, 5, "18:00", 4),
			result(5, 2, 1, "18:00", 5),
		}

		rep := b.Audit(athletes, meets, results)

		Convey("Then each anomaly is counted", func() {
			So(rep.Results, ShouldEqual, 5)
			So(rep.UnparseableTimes, ShouldEqual, 1)
			So(rep.UnresolvedAthletes, ShouldEqual, 1)
			So(rep.UnresolvedMeets, ShouldEqual, 1)
			So(rep.Uncategorized, ShouldEqual, 1)
			So(rep.Clean(), ShouldBeFalse)
		})

		Convey("Then meet checks are skipped without meets", func() {
			So(b.Audit(athletes, nil, results).UnresolvedMeets, ShouldEqual, 0)
		})
	})

	Convey("Given a clean snapshot", t, func() {
		rep := ranking.NewBuilder().Audit(
			[]model.Athlete{athlete(1, "A", model.CategoryBoys)},
			[]model.Meet{{ID: 1, Name: "Opener"}},
			[]model.Result{result(1, 1, 1, "18:00", 1)},
		)
		So(rep.Clean(), ShouldBeTrue)
	})
}

func TestParseTieBreak(t *testing.T) {
	Convey("Given tie-break config strings", t, func() {
		So(ranking.ParseTieBreak("name"), ShouldEqual, ranking.TieBreakName)
		So(ranking.ParseTieBreak("id"), ShouldEqual, ranking.TieBreakAthleteID)
		So(ranking.ParseTieBreak("whatever"), ShouldEqual, ranking.TieBreakAthleteID)
	})
}
