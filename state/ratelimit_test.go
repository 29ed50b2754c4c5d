package state_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"quiz-shorts-pipeline/state"
)

func TestRateLimiter(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	convey.Convey("Given a limiter allowing 2 publishes per day", t, func() {
		path := filepath.Join(t.TempDir(), "rate_limit.json")
		rl := state.NewRateLimiter(path, 2)

		convey.Convey("When nothing has been published", func() {
			ok, err := rl.CanPublish(day1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ok, convey.ShouldBeTrue)

			left, err := rl.Remaining(day1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(left, convey.ShouldEqual, 2)
		})

		convey.Convey("When the cap is reached", func() {
			convey.So(rl.RecordPublish(day1), convey.ShouldBeNil)
			convey.So(rl.RecordPublish(day1), convey.ShouldBeNil)

			convey.Convey("Then further publishes are refused", func() {
				ok, err := rl.CanPublish(day1)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldBeFalse)

				left, err := rl.Remaining(day1)
				convey.So(err, convey.ShouldBeNil)
				convey.So(left, convey.ShouldEqual, 0)
			})

			convey.Convey("Then recording beyond the cap errors", func() {
				convey.So(rl.RecordPublish(day1), convey.ShouldNotBeNil)
			})

			convey.Convey("Then the next day starts fresh", func() {
				ok, err := rl.CanPublish(day2)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldBeTrue)

				left, err := rl.Remaining(day2)
				convey.So(err, convey.ShouldBeNil)
				convey.So(left, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the count survives a process restart", func() {
			convey.So(rl.RecordPublish(day1), convey.ShouldBeNil)

			reopened := state.NewRateLimiter(path, 2)
			left, err := reopened.Remaining(day1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(left, convey.ShouldEqual, 1)
		})

		convey.Convey("When checking a stale day does not mutate storage", func() {
			convey.So(rl.RecordPublish(day1), convey.ShouldBeNil)

			ok, err := rl.CanPublish(day2)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ok, convey.ShouldBeTrue)

			// Day 1's record must still be there.
			left, err := rl.Remaining(day1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(left, convey.ShouldEqual, 1)
		})
	})
}
