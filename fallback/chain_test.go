package fallback_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/smartystreets/goconvey/convey"

	"quiz-shorts-pipeline/fallback"
	"quiz-shorts-pipeline/faults"
)

func TestExecute_Order(t *testing.T) {
	convey.Convey("Given a chain where the first provider fails and the second succeeds", t, func() {
		var calls []string
		chain := []fallback.Provider[string]{
			{Name: "a", Call: func(context.Context) (string, error) {
				calls = append(calls, "a")
				return "", errors.New("a is down")
			}},
			{Name: "b", Call: func(context.Context) (string, error) {
				calls = append(calls, "b")
				return "x", nil
			}},
			{Name: "c", Call: func(context.Context) (string, error) {
				calls = append(calls, "c")
				return "never", nil
			}},
		}

		out, err := fallback.Execute(context.Background(), zerolog.Nop(), "test", chain)

		convey.Convey("Then it returns the second provider's result", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldEqual, "x")
		})
		convey.Convey("Then providers after the success are never called", func() {
			convey.So(calls, convey.ShouldResemble, []string{"a", "b"})
		})
	})
}

func TestExecute_AllFail(t *testing.T) {
	convey.Convey("Given a chain where every provider fails", t, func() {
		lastErr := errors.New("b is down")
		chain := []fallback.Provider[string]{
			{Name: "a", Call: func(context.Context) (string, error) { return "", errors.New("a is down") }},
			{Name: "b", Call: func(context.Context) (string, error) { return "", lastErr }},
		}

		_, err := fallback.Execute(context.Background(), zerolog.Nop(), "test", chain)

		convey.Convey("Then the aggregate error is a provider fault wrapping the last failure", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(faults.IsKind(err, faults.KindProvider), convey.ShouldBeTrue)
			convey.So(errors.Is(err, lastErr), convey.ShouldBeTrue)
		})
	})
}

func TestExecute_Empty(t *testing.T) {
	convey.Convey("Given an empty chain", t, func() {
		_, err := fallback.Execute[string](context.Background(), zerolog.Nop(), "test", nil)

		convey.Convey("Then it fails with a provider fault", func() {
			convey.So(faults.IsKind(err, faults.KindProvider), convey.ShouldBeTrue)
		})
	})
}

func TestRetry_Delay(t *testing.T) {
	convey.Convey("Given a retry policy with base 1s and cap 10s", t, func() {
		r := fallback.Retry{Attempts: 6, Base: time.Second, Cap: 10 * time.Second}

		convey.Convey("Then the first attempt has no delay", func() {
			convey.So(r.Delay(1), convey.ShouldEqual, 0)
		})
		convey.Convey("Then delays double and cap", func() {
			convey.So(r.Delay(2), convey.ShouldEqual, 1*time.Second)
			convey.So(r.Delay(3), convey.ShouldEqual, 2*time.Second)
			convey.So(r.Delay(4), convey.ShouldEqual, 4*time.Second)
			convey.So(r.Delay(5), convey.ShouldEqual, 8*time.Second)
			convey.So(r.Delay(6), convey.ShouldEqual, 10*time.Second)
			convey.So(r.Delay(7), convey.ShouldEqual, 10*time.Second)
		})
	})
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	convey.Convey("Given a function that succeeds on the third attempt", t, func() {
		r := fallback.Retry{Attempts: 5, Base: time.Millisecond, Cap: 2 * time.Millisecond}
		n := 0

		out, err := fallback.Do(context.Background(), zerolog.Nop(), "test", r,
			func(context.Context) (int, error) {
				n++
				if n < 3 {
					return 0, errors.New("not yet")
				}
				return 42, nil
			})

		convey.Convey("Then it returns the success and stops retrying", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldEqual, 42)
			convey.So(n, convey.ShouldEqual, 3)
		})
	})
}

func TestDo_Exhausted(t *testing.T) {
	convey.Convey("Given a function that always fails", t, func() {
		r := fallback.Retry{Attempts: 3, Base: time.Millisecond, Cap: time.Millisecond}
		n := 0

		_, err := fallback.Do(context.Background(), zerolog.Nop(), "test", r,
			func(context.Context) (int, error) {
				n++
				return 0, errors.New("always")
			})

		convey.Convey("Then it fails after exactly the configured attempts", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(n, convey.ShouldEqual, 3)
			convey.So(faults.IsKind(err, faults.KindProvider), convey.ShouldBeTrue)
		})
	})
}

func TestDo_PreservesErrorKind(t *testing.T) {
	convey.Convey("Given a function that always fails with an upload fault", t, func() {
		r := fallback.Retry{Attempts: 2, Base: time.Millisecond, Cap: time.Millisecond}

		_, err := fallback.Do(context.Background(), zerolog.Nop(), "publish", r,
			func(context.Context) (int, error) {
				return 0, faults.New(faults.KindUpload, "quota exceeded upstream")
			})

		convey.Convey("Then the exhaustion error is still an upload fault", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(faults.IsKind(err, faults.KindUpload), convey.ShouldBeTrue)
		})
	})
}
