package render

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/smartystreets/goconvey/convey"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/timing"
)

func TestWrapText(t *testing.T) {
	convey.Convey("Given a long question", t, func() {
		wrapped := wrapText("What is the capital of the country with the largest population?", 26)

		convey.Convey("Then every line fits the width", func() {
			for _, line := range strings.Split(wrapped, "\n") {
				convey.So(len(line), convey.ShouldBeLessThanOrEqualTo, 26)
			}
		})
		convey.Convey("Then no words are lost", func() {
			convey.So(strings.Fields(wrapped), convey.ShouldResemble,
				strings.Fields("What is the capital of the country with the largest population?"))
		})
	})

	convey.Convey("Given a single word longer than the width", t, func() {
		wrapped := wrapText("antidisestablishmentarianism", 10)

		convey.Convey("Then it stays on one line rather than being cut", func() {
			convey.So(wrapped, convey.ShouldEqual, "antidisestablishmentarianism")
		})
	})
}

func TestEscapeDrawtext(t *testing.T) {
	convey.Convey("Given text with filter metacharacters", t, func() {
		out := escapeDrawtext(`What's 50% of 10: a,b?`)

		convey.Convey("Then quotes, percent, colon and comma are escaped", func() {
			convey.So(out, convey.ShouldContainSubstring, `\'`)
			convey.So(out, convey.ShouldContainSubstring, `\%`)
			convey.So(out, convey.ShouldContainSubstring, `\:`)
			convey.So(out, convey.ShouldContainSubstring, `\,`)
		})
	})
}

func TestBuildFilter(t *testing.T) {
	convey.Convey("Given a renderer and a full overlay set", t, func() {
		cfg := config.Default()
		r := NewRenderer(cfg, zerolog.Nop())
		plan := timing.Compute(5, 10, 4, 3)
		overlays := timing.BuildOverlays("What is the capital of Japan?", "Comment below!", "Tokyo", plan)

		filter := r.buildFilter(overlays)

		convey.Convey("Then the background is scaled to the configured frame", func() {
			convey.So(filter, convey.ShouldContainSubstring, "scale=1080:1920")
			convey.So(filter, convey.ShouldContainSubstring, "crop=1080:1920")
		})
		convey.Convey("Then there is one drawtext per overlay, each time-gated", func() {
			convey.So(strings.Count(filter, "drawtext="), convey.ShouldEqual, len(overlays))
			convey.So(strings.Count(filter, "enable='between(t,"), convey.ShouldEqual, len(overlays))
		})
		convey.Convey("Then the answer only appears during the reveal", func() {
			convey.So(filter, convey.ShouldContainSubstring,
				"enable='between(t,15.000,19.000)'")
		})
	})
}
