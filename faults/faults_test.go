package faults_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"quiz-shorts-pipeline/faults"
)

func TestKindClassification(t *testing.T) {
	convey.Convey("Given a wrapped provider failure", t, func() {
		cause := errors.New("connection reset")
		err := faults.Wrap(cause, faults.KindProvider, "gemini call")

		convey.Convey("Then the kind survives further fmt wrapping", func() {
			outer := fmt.Errorf("generation: %w", err)
			convey.So(faults.IsKind(outer, faults.KindProvider), convey.ShouldBeTrue)
			convey.So(faults.KindOf(outer), convey.ShouldEqual, faults.KindProvider)
		})

		convey.Convey("Then the original cause is still reachable", func() {
			convey.So(errors.Is(err, cause), convey.ShouldBeTrue)
		})

		convey.Convey("Then the message includes the cause", func() {
			convey.So(err.Error(), convey.ShouldEqual, "gemini call: connection reset")
		})
	})

	convey.Convey("Given a plain error", t, func() {
		err := errors.New("something")

		convey.Convey("Then its kind is unknown", func() {
			convey.So(faults.KindOf(err), convey.ShouldEqual, faults.KindUnknown)
			convey.So(faults.IsKind(err, faults.KindRender), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given the kind labels used in reports", t, func() {
		convey.So(faults.KindProvider.String(), convey.ShouldEqual, "provider")
		convey.So(faults.KindValidation.String(), convey.ShouldEqual, "validation")
		convey.So(faults.KindRender.String(), convey.ShouldEqual, "render")
		convey.So(faults.KindUpload.String(), convey.ShouldEqual, "upload")
		convey.So(faults.KindPersistence.String(), convey.ShouldEqual, "persistence")
	})
}
