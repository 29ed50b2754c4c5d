package safety_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/safety"
)

func newGate(t *testing.T) *safety.Gate {
	t.Helper()
	g, err := safety.NewGate(config.SafetyConfig{
		MinQuestionLen: 8,
		MaxQuestionLen: 150,
		MinAnswerLen:   1,
		MaxAnswerLen:   60,
		MaxNewlines:    4,
	})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func TestGate_Validate(t *testing.T) {
	g := newGate(t)

	convey.Convey("Given a plain factual question", t, func() {
		res := g.Validate("What is the capital of Japan?", "Tokyo")
		convey.Convey("Then it passes", func() {
			convey.So(res.OK, convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a too-short question", t, func() {
		res := g.Validate("Hi?", "Yes")
		convey.Convey("Then it is rejected for length", func() {
			convey.So(res.OK, convey.ShouldBeFalse)
			convey.So(res.Reason, convey.ShouldContainSubstring, "too short")
		})
	})

	convey.Convey("Given a lyrics question", t, func() {
		res := g.Validate("Complete this song's lyrics please?", "Hello")
		convey.Convey("Then it is rejected as a banned topic", func() {
			convey.So(res.OK, convey.ShouldBeFalse)
			convey.So(res.Reason, convey.ShouldContainSubstring, "banned")
		})
	})

	convey.Convey("Given banned topics in any case", t, func() {
		res := g.Validate("Which ELECTION happened in 1960 here?", "The big one")
		convey.Convey("Then matching is case-insensitive", func() {
			convey.So(res.OK, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a question containing a URL", t, func() {
		res := g.Validate("What is hosted at www.example.com today?", "A site")
		convey.Convey("Then it is rejected", func() {
			convey.So(res.OK, convey.ShouldBeFalse)
			convey.So(res.Reason, convey.ShouldContainSubstring, "URL")
		})
	})

	convey.Convey("Given an empty answer", t, func() {
		res := g.Validate("What is the capital of Japan?", "   ")
		convey.Convey("Then it is rejected", func() {
			convey.So(res.OK, convey.ShouldBeFalse)
			convey.So(res.Reason, convey.ShouldContainSubstring, "answer too short")
		})
	})

	convey.Convey("Given a question with too many line breaks", t, func() {
		res := g.Validate("What\nis\nthe\ncapital\nof\nJapan?", "Tokyo")
		convey.Convey("Then it is rejected", func() {
			convey.So(res.OK, convey.ShouldBeFalse)
			convey.So(res.Reason, convey.ShouldContainSubstring, "line breaks")
		})
	})

	convey.Convey("Given multibyte text at the rune-length boundary", t, func() {
		res := g.Validate("日本の首都はどこですか？", "東京")
		convey.Convey("Then lengths are counted in runes, not bytes", func() {
			convey.So(res.OK, convey.ShouldBeTrue)
		})
	})
}

func TestGate_ExtraPatterns(t *testing.T) {
	convey.Convey("Given a gate with an extra configured pattern", t, func() {
		g, err := safety.NewGate(config.SafetyConfig{
			MinQuestionLen: 8, MaxQuestionLen: 150,
			MinAnswerLen: 1, MaxAnswerLen: 60, MaxNewlines: 4,
			ExtraBannedPatterns: []string{`\bgambling\b`},
		})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the extra pattern rejects", func() {
			res := g.Validate("Which casino game is pure gambling?", "Roulette")
			convey.So(res.OK, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given an invalid extra pattern", t, func() {
		_, err := safety.NewGate(config.SafetyConfig{
			MinQuestionLen: 8, MaxQuestionLen: 150,
			MinAnswerLen: 1, MaxAnswerLen: 60, MaxNewlines: 4,
			ExtraBannedPatterns: []string{`(`},
		})
		convey.Convey("Then construction fails instead of validation", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
