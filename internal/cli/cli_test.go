package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	root := RootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	db := filepath.Join(t.TempDir(), "stride.db")

	Convey("Given a fresh database file", t, func() {
		Convey("When migrating twice", func() {
			first, err := execute("migrate", "--db", db)
			So(err, ShouldBeNil)
			second, err := execute("migrate", "--db", db)
			So(err, ShouldBeNil)

			Convey("Then only the first run applies migrations", func() {
				So(first, ShouldContainSubstring, "Applied migrations [1 2]")
				So(second, ShouldContainSubstring, "Schema already up to date")
				So(second, ShouldContainSubstring, "Schema version 2 (latest 2)")
			})
		})
	})

	Convey("Given a seeded database", t, func() {
		seeded := filepath.Join(t.TempDir(), "seeded.db")
		out, err := execute("seed", "--db", seeded, "--athletes", "10", "--meets", "3", "--start", "2024-09-07")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "10 athletes, 3 meets")

		Convey("Then rankings print one table per category", func() {
			out, err := execute("rankings", "--db", seeded)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Boys")
			So(out, ShouldContainSubstring, "Girls")
			So(out, ShouldContainSubstring, "RANK")
		})

		Convey("Then rankings can be limited to one category", func() {
			out, err := execute("rankings", "--db", seeded, "-c", "f")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Girls")
			So(out, ShouldNotContainSubstring, "Boys")
		})

		Convey("Then a meet prints its results", func() {
			out, err := execute("meet", "1", "--db", seeded)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "2024-09-07")
			So(out, ShouldContainSubstring, "PLACE")
		})

		Convey("Then an athlete's history prints", func() {
			out, err := execute("history", "1", "--db", seeded)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "grade")
			So(out, ShouldContainSubstring, "MEET")
		})

		Convey("Then stats report the counts", func() {
			out, err := execute("stats", "--db", seeded)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "athletes")
			So(out, ShouldContainSubstring, "10")
		})
	})

	Convey("Given bad input", t, func() {
		_, err := execute("meet", "abc")
		So(err, ShouldNotBeNil)

		_, err = execute("meet", "42")
		So(err, ShouldNotBeNil)

		_, err = execute("seed")
		So(errors.Is(err, ErrNoDatabase), ShouldBeTrue)

		_, err = execute("seed", "--db", filepath.Join(t.TempDir(), "x.db"), "--start", "Sept 1")
		So(err, ShouldNotBeNil)
	})
}
