package question

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"quiz-shorts-pipeline/faults"
)

func TestDecode_Strict(t *testing.T) {
	convey.Convey("Given a clean JSON payload", t, func() {
		c, err := decode(`{
			"question": "What is the capital of Japan?",
			"answer": "Tokyo",
			"category": "Geography",
			"tags": ["trivia", "geography"],
			"hashtags": ["#shorts", "#quiz"]
		}`)

		convey.Convey("Then all fields parse", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Question, convey.ShouldEqual, "What is the capital of Japan?")
			convey.So(c.Answer, convey.ShouldEqual, "Tokyo")
			convey.So(c.Tags, convey.ShouldResemble, []string{"trivia", "geography"})
		})
	})

	convey.Convey("Given a payload wrapped in markdown fences", t, func() {
		c, err := decode("```json\n{\"question\": \"Largest planet?\", \"answer\": \"Jupiter\"}\n```")

		convey.Convey("Then the fences are stripped", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Answer, convey.ShouldEqual, "Jupiter")
		})
	})

	convey.Convey("Given comma-joined strings instead of arrays", t, func() {
		c, err := decode(`{"question": "Largest planet?", "answer": "Jupiter", "tags": "space, planets , trivia"}`)

		convey.Convey("Then the list is coerced and trimmed", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Tags, convey.ShouldResemble, []string{"space", "planets", "trivia"})
		})
	})
}

func TestDecode_Heuristic(t *testing.T) {
	convey.Convey("Given JSON buried in model chatter", t, func() {
		c, err := decode(`Sure! Here is your trivia question:
{"question": "Largest planet?", "answer": "Jupiter"}
Hope that helps!`)

		convey.Convey("Then the brace-delimited block is extracted", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Question, convey.ShouldEqual, "Largest planet?")
		})
	})
}

func TestDecode_Rejects(t *testing.T) {
	convey.Convey("Given a payload with no JSON at all", t, func() {
		_, err := decode("I cannot help with that.")

		convey.Convey("Then it fails as a validation fault", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(faults.IsKind(err, faults.KindValidation), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given JSON missing the answer", t, func() {
		_, err := decode(`{"question": "Largest planet?"}`)

		convey.Convey("Then it fails rather than returning a partial value", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(faults.IsKind(err, faults.KindValidation), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given whitespace-only question and answer", t, func() {
		_, err := decode(`{"question": "  ", "answer": "\n"}`)

		convey.Convey("Then it fails after trimming", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestApplySEODefaults(t *testing.T) {
	convey.Convey("Given a candidate with no publish metadata", t, func() {
		c := candidate{Question: "Largest planet?", Answer: "Jupiter"}
		applySEODefaults(&c)

		convey.Convey("Then defaults are filled in", func() {
			convey.So(c.Category, convey.ShouldEqual, "General Knowledge")
			convey.So(c.Title, convey.ShouldNotBeEmpty)
			convey.So(c.Description, convey.ShouldNotBeEmpty)
			convey.So(c.Hashtags, convey.ShouldContain, "#shorts")
		})
	})

	convey.Convey("Given an overlong title", t, func() {
		long := make([]rune, 120)
		for i := range long {
			long[i] = 'x'
		}
		c := candidate{Question: "Largest planet?", Answer: "Jupiter", Title: string(long)}
		applySEODefaults(&c)

		convey.Convey("Then it is clamped with an ellipsis", func() {
			convey.So(len([]rune(c.Title)), convey.ShouldEqual, 90)
			convey.So(c.Title, convey.ShouldEndWith, "...")
		})
	})

	convey.Convey("Given hashtags without the # prefix", t, func() {
		got := ensureShortsHashtag([]string{"trivia", "#shorts"})

		convey.Convey("Then entries are prefixed and #shorts kept once", func() {
			convey.So(got, convey.ShouldResemble, []string{"#trivia", "#shorts"})
		})
	})
}
