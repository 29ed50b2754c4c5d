// Package question yields validated, never-before-used quiz items. It wraps
// the generation provider chain, the safety gate and the dedup store, with
// a built-in local bank as terminal fallback, so NextItem always produces
// an item unless the dedup store itself cannot be read.
package question

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/fallback"
	"quiz-shorts-pipeline/faults"
	"quiz-shorts-pipeline/safety"
	"quiz-shorts-pipeline/state"
	"quiz-shorts-pipeline/types"
)

// Dedup is the fingerprint check the source consults. Recording is the
// orchestrator's responsibility at acceptance time, not ours.
type Dedup interface {
	IsUsed(fingerprint string) (bool, error)
}

// Source produces quiz items.
type Source struct {
	cfg        *config.Config
	keys       config.Keys
	log        zerolog.Logger
	gate       *safety.Gate
	dedup      Dedup
	retry      fallback.Retry
	rng        *rand.Rand
	httpClient *http.Client
	topics     *TopicHinter

	// recent holds questions accepted during this run, fed back into the
	// prompt so providers stop paraphrasing themselves.
	recent []string
}

// NewSource wires a Source. topics may be nil, which disables prompt hints.
func NewSource(cfg *config.Config, keys config.Keys, log zerolog.Logger, gate *safety.Gate, dedup Dedup, retry fallback.Retry, rng *rand.Rand, topics *TopicHinter) *Source {
	return &Source{
		cfg:        cfg,
		keys:       keys,
		log:        log.With().Str("stage", "generate").Logger(),
		gate:       gate,
		dedup:      dedup,
		retry:      retry,
		rng:        rng,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		topics:     topics,
	}
}

// NextItem returns one validated item. Provider and validation failures are
// absorbed: after the configured attempts the local bank takes over. The
// only returned error is a persistence failure reading the dedup store.
func (s *Source) NextItem(ctx context.Context) (types.QuizItem, error) {
	hint := s.topicHint(ctx)

	for attempt := 1; attempt <= s.cfg.Generation.MaxAttempts; attempt++ {
		req := types.GenerationRequest{
			Prompt:         s.buildPrompt(hint),
			MaxQuestionLen: s.cfg.Generation.MaxQuestionLen,
			MaxAnswerLen:   s.cfg.Generation.MaxAnswerLen,
		}

		result, err := fallback.Do(ctx, s.log, "generation", s.retry,
			func(ctx context.Context) (types.ProviderResult, error) {
				return fallback.Execute(ctx, s.log, "generation", s.providers(req))
			})
		if err != nil {
			s.log.Warn().Int("attempt", attempt).Err(err).Msg("generation attempt failed")
			continue
		}

		item, err := s.accept(result)
		if err != nil {
			if faults.IsKind(err, faults.KindPersistence) {
				return types.QuizItem{}, err
			}
			s.log.Info().Int("attempt", attempt).Str("provider", result.Provider).
				Err(err).Msg("candidate rejected")
			continue
		}
		return item, nil
	}

	s.log.Warn().Msg("all generation attempts exhausted, falling back to local bank")
	return s.bankItem()
}

// accept decodes, validates and dedup-checks one provider result.
func (s *Source) accept(result types.ProviderResult) (types.QuizItem, error) {
	c, err := decode(result.Payload)
	if err != nil {
		return types.QuizItem{}, err
	}
	return s.buildItem(c, result.Provider)
}

// buildItem is the single construction point for QuizItem: nothing becomes
// an item without passing the gate and the dedup check here.
func (s *Source) buildItem(c candidate, provider string) (types.QuizItem, error) {
	if res := s.gate.Validate(c.Question, c.Answer); !res.OK {
		return types.QuizItem{}, faults.Newf(faults.KindValidation, "safety: %s", res.Reason)
	}

	fp := state.Fingerprint(c.Question, c.Answer)
	used, err := s.dedup.IsUsed(fp)
	if err != nil {
		return types.QuizItem{}, err
	}
	if used {
		return types.QuizItem{}, faults.New(faults.KindValidation, "duplicate content")
	}

	applySEODefaults(&c)
	item := types.QuizItem{
		ID:          uuid.NewString(),
		Question:    c.Question,
		Answer:      c.Answer,
		Category:    c.Category,
		CTA:         defaultCTAs[s.rng.Intn(len(defaultCTAs))],
		Title:       c.Title,
		Description: c.Description,
		Tags:        c.Tags,
		Hashtags:    c.Hashtags,
		Provider:    provider,
		Fingerprint: fp,
	}
	s.recent = append(s.recent, item.Question)
	return item, nil
}

// bankItem draws from the local bank until an unused safe item appears.
// The bank's variety makes exhaustion practically unreachable; the bound
// exists so a pathological dedup file cannot loop forever.
func (s *Source) bankItem() (types.QuizItem, error) {
	var lastErr error
	for i := 0; i < 50; i++ {
		item, err := s.buildItem(bankCandidate(s.rng), "local-bank")
		if err == nil {
			return item, nil
		}
		if faults.IsKind(err, faults.KindPersistence) {
			return types.QuizItem{}, err
		}
		lastErr = err
	}
	return types.QuizItem{}, faults.Wrap(lastErr, faults.KindValidation, "local bank exhausted")
}

func (s *Source) topicHint(ctx context.Context) string {
	if s.topics == nil {
		return ""
	}
	hint, err := s.topics.Hint(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("topic hint unavailable")
		return ""
	}
	return hint
}

func (s *Source) buildPrompt(hint string) string {
	var sb strings.Builder
	sb.WriteString("You generate SAFE, non-copyrighted, English-only trivia for a short quiz video.\n")
	sb.WriteString("Return ONLY valid JSON with these keys exactly:\n")
	sb.WriteString("question, answer, category, title, description, tags, hashtags\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Audience: international (English).\n")
	sb.WriteString("- No song lyrics, no movie quotes, no copyrighted lines, no brand slogans.\n")
	sb.WriteString("- No politics, hate, sex, violence, weapons, drugs.\n")
	sb.WriteString("- The question must be answerable in 10 seconds.\n")
	fmt.Fprintf(&sb, "- Question under %d characters.\n", s.cfg.Generation.MaxQuestionLen)
	fmt.Fprintf(&sb, "- Answer under %d characters (1-4 words or a number).\n", s.cfg.Generation.MaxAnswerLen)
	sb.WriteString("- Add #shorts in hashtags.\n")
	sb.WriteString("- Title <= 90 characters. tags: 5-12 short tags. hashtags: 3-7 hashtags.\n")

	if hint != "" {
		fmt.Fprintf(&sb, "\nOptional inspiration (do not copy verbatim): %s\n", hint)
	}

	sb.WriteString("\nAvoid repeating any of these (do not reuse or paraphrase closely):\n")
	if len(s.recent) == 0 {
		sb.WriteString("- (none)\n")
	}
	start := 0
	if len(s.recent) > 20 {
		start = len(s.recent) - 20
	}
	for _, q := range s.recent[start:] {
		sb.WriteString("- " + q + "\n")
	}
	return sb.String()
}
