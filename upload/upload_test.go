package upload

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/smartystreets/goconvey/convey"

	"quiz-shorts-pipeline/config"
)

func TestVideoResource(t *testing.T) {
	convey.Convey("Given an upload request", t, func() {
		cfg := config.Default()
		cfg.Upload.MadeForKids = false
		u := NewUploader(cfg, config.Keys{}, zerolog.Nop())

		v := u.videoResource(Request{
			File:        "video.mp4",
			Title:       "10-Second Trivia",
			Description: "Guess fast!",
			Tags:        []string{"trivia", "quiz"},
			CategoryID:  "24",
			Privacy:     "public",
		})

		convey.Convey("Then the snippet carries the publish metadata", func() {
			convey.So(v.Snippet.Title, convey.ShouldEqual, "10-Second Trivia")
			convey.So(v.Snippet.Description, convey.ShouldEqual, "Guess fast!")
			convey.So(v.Snippet.Tags, convey.ShouldResemble, []string{"trivia", "quiz"})
			convey.So(v.Snippet.CategoryId, convey.ShouldEqual, "24")
		})

		convey.Convey("Then the status carries only privacy and audience", func() {
			convey.So(v.Status.PrivacyStatus, convey.ShouldEqual, "public")
			convey.So(v.Status.SelfDeclaredMadeForKids, convey.ShouldBeFalse)
		})
	})
}
