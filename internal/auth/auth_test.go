package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIssuer(t *testing.T) {
	Convey("Given an issuer with a fixed clock", t, func() {
		now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		issuer, err := NewIssuer("s3cret", WithClock(clock))
		So(err, ShouldBeNil)

		Convey("When a token is issued", func() {
			token, claims := issuer.Issue("admin")

			Convey("Then it has the username, expiry and signature", func() {
				So(token, ShouldStartWith, "admin:1727856000.")
				So(claims.ExpiresAt, ShouldEqual, now.Add(DefaultTTL))
				sig := token[strings.LastIndex(token, ".")+1:]
				So(sig, ShouldHaveLength, 64)
			})

			Convey("Then it validates", func() {
				got, err := issuer.Validate(token)
				So(err, ShouldBeNil)
				So(got.Username, ShouldEqual, "admin")
			})

			Convey("Then a tampered payload is rejected", func() {
				forged := strings.Replace(token, "admin", "root", 1)
				_, err := issuer.Validate(forged)
				So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
			})

			Convey("Then another secret rejects it", func() {
				other, _ := NewIssuer("different", WithClock(clock))
				_, err := other.Validate(token)
				So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
			})

			Convey("Then it expires after the ttl", func() {
				now = now.Add(DefaultTTL + time.Second)
				_, err := issuer.Validate(token)
				So(errors.Is(err, ErrExpiredToken), ShouldBeTrue)
			})
		})

		Convey("When the username contains a colon", func() {
			token, _ := issuer.Issue("coach:xc")
			got, err := issuer.Validate(token)
			So(err, ShouldBeNil)
			So(got.Username, ShouldEqual, "coach:xc")
		})

		Convey("When a custom ttl is set", func() {
			short, _ := NewIssuer("s3cret", WithClock(clock), WithTTL(time.Hour))
			_, claims := short.Issue("admin")
			So(claims.ExpiresAt, ShouldEqual, now.Add(time.Hour))
		})

		Convey("When the token is garbage", func() {
			for _, tok := range []string{"", "nodot", "admin.deadbeef", "."} {
				_, err := issuer.Validate(tok)
				So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
			}
		})
	})

	Convey("Given an empty secret", t, func() {
		_, err := NewIssuer("")
		So(err, ShouldEqual, ErrMissingSecret)
	})
}

func TestBearerToken(t *testing.T) {
	Convey("Given authorization headers", t, func() {
		tok, ok := BearerToken("Bearer abc.def")
		So(ok, ShouldBeTrue)
		So(tok, ShouldEqual, "abc.def")

		_, ok = BearerToken("Basic abc")
		So(ok, ShouldBeFalse)
		_, ok = BearerToken("Bearer ")
		So(ok, ShouldBeFalse)
	})
}

func TestCredentials(t *testing.T) {
	Convey("Given admin credentials", t, func() {
		creds := Credentials{Username: "admin", Password: "changeme"}

		So(creds.Check("admin", "changeme"), ShouldBeNil)
		So(creds.Check("admin", "wrong"), ShouldEqual, ErrInvalidCredentials)
		So(creds.Check("Admin", "changeme"), ShouldEqual, ErrInvalidCredentials)

		Convey("When no password is configured login is disabled", func() {
			disabled := Credentials{Username: "admin"}
			So(disabled.Check("admin", ""), ShouldEqual, ErrInvalidCredentials)
		})
	})
}
