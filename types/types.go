package types

import (
	"fmt"
	"time"

	"quiz-shorts-pipeline/timing"
)

// GenerationRequest is the per-attempt input to a text-generation provider.
type GenerationRequest struct {
	Prompt         string
	MaxQuestionLen int
	MaxAnswerLen   int
}

// ProviderResult is the raw payload returned by one provider call.
type ProviderResult struct {
	Payload  string
	Provider string
	Latency  time.Duration
}

// QuizItem is one validated question/answer pair with its publish metadata.
// Constructed only after the safety gate and dedup check pass; immutable
// thereafter.
type QuizItem struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Category    string   `json:"category"`
	CTA         string   `json:"cta"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Hashtags    []string `json:"hashtags"`
	Provider    string   `json:"provider"`
	Fingerprint string   `json:"fingerprint"`
}

// VoiceScript returns the narration text: the question plus the comment CTA.
func (q QuizItem) VoiceScript() string {
	return fmt.Sprintf(
		"%s You have 10 seconds. If you know the answer before time runs out, write it in the comments.",
		q.Question,
	)
}

// PublishArtifact bundles everything one iteration produces. It exists only
// for the duration of that iteration.
type PublishArtifact struct {
	Item      QuizItem    `json:"item"`
	MediaFile string      `json:"media_file"`
	Plan      timing.Plan `json:"plan"`
	UploadID  string      `json:"upload_id"`
}

// Report is the per-run result returned by the orchestrator.
type Report struct {
	RunID          string   `json:"run_id"`
	ItemsAttempted int      `json:"items_attempted"`
	ItemsPublished int      `json:"items_published"`
	ItemsFailed    int      `json:"items_failed"`
	Reasons        []string `json:"reasons,omitempty"`
}
