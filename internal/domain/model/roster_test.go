package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/okian/stride/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCategory(t *testing.T) {
	convey.Convey("Given raw category input", t, func() {
		convey.So(model.NormalizeCategory(" f "), convey.ShouldEqual, model.CategoryGirls)
		convey.So(model.NormalizeCategory("m"), convey.ShouldEqual, model.CategoryBoys)
		convey.So(model.NormalizeCategory(""), convey.ShouldEqual, model.Category(""))

		convey.Convey("Then labels are human readable", func() {
			convey.So(model.CategoryBoys.Label(), convey.ShouldEqual, "Boys")
			convey.So(model.CategoryGirls.Label(), convey.ShouldEqual, "Girls")
			convey.So(model.Category("X").Label(), convey.ShouldEqual, "X")
		})
	})
}

func TestAthleteJSON(t *testing.T) {
	convey.Convey("Given an athlete encoded for the frontend", t, func() {
		a := model.Athlete{ID: 7, Name: "Ana", Category: model.CategoryGirls, Grade: 11}
		raw, err := json.Marshal(a)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the category travels under the gender key", func() {
			convey.So(string(raw), convey.ShouldContainSubstring, `"gender":"F"`)
			convey.So(string(raw), convey.ShouldNotContainSubstring, "personal_record")
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given roster records", t, func() {
		convey.Convey("When an athlete has no name", func() {
			err := model.Athlete{}.Validate()
			convey.So(errors.Is(err, model.ErrInvalid), convey.ShouldBeTrue)
		})

		convey.Convey("When a meet date is not a calendar date", func() {
			err := model.Meet{Name: "County", Date: "10/04/2025"}.Validate()
			convey.So(errors.Is(err, model.ErrInvalid), convey.ShouldBeTrue)
			convey.So(model.Meet{Name: "County", Date: "2025-10-04"}.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a result misses references", func() {
			convey.So(model.Result{MeetID: 1, Time: "18:00"}.Validate(), convey.ShouldNotBeNil)
			convey.So(model.Result{AthleteID: 1, Time: "18:00"}.Validate(), convey.ShouldNotBeNil)
			convey.So(model.Result{AthleteID: 1, MeetID: 1}.Validate(), convey.ShouldNotBeNil)
			convey.So(model.Result{AthleteID: 1, MeetID: 1, Time: "18:00", Place: -1}.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When a result has a malformed time", func() {
			err := model.Result{AthleteID: 1, MeetID: 1, Time: "DNF", Place: 4}.Validate()
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("When a coach has no name", func() {
			convey.So(model.Coach{Title: "Head Coach"}.Validate(), convey.ShouldNotBeNil)
		})
	})
}
