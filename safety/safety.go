// Package safety validates generated quiz text before anything downstream
// sees it. Pure: no network, no disk, deterministic for a given input.
package safety

import (
	"fmt"
	"regexp"
	"strings"

	"quiz-shorts-pipeline/config"
)

// Built-in banned-topic patterns: copyrighted-lyrics style questions plus
// explicit political/violent/adult/drug/weapon terms.
var bannedPatterns = []string{
	`\blyrics\b`,
	`\bthis line\b`,
	`\bwhich song\b`,
	`\bwhat song\b`,
	`\bmovie quote\b`,
	`\bwho said\b`,
	`\bbrand slogan\b`,
	`\bpolitic\w*\b`,
	`\belection\b`,
	`\bterror\w*\b`,
	`\bviolence\b`,
	`\bsex\w*\b`,
	`\bnsfw\b`,
	`\bdrug\w*\b`,
	`\bweapon\w*\b`,
}

// Result is the outcome of one validation.
type Result struct {
	OK     bool
	Reason string
}

// Gate applies the content rules in a fixed order.
type Gate struct {
	minQ, maxQ  int
	minA, maxA  int
	maxNewlines int
	banned      *regexp.Regexp
}

// NewGate compiles the banned-topic set (built-ins plus any configured
// extras) once. Invalid extra patterns are rejected here rather than at
// validation time.
func NewGate(cfg config.SafetyConfig) (*Gate, error) {
	patterns := append(append([]string{}, bannedPatterns...), cfg.ExtraBannedPatterns...)
	re, err := regexp.Compile("(?i)" + strings.Join(patterns, "|"))
	if err != nil {
		return nil, fmt.Errorf("compile banned patterns: %w", err)
	}
	return &Gate{
		minQ:        cfg.MinQuestionLen,
		maxQ:        cfg.MaxQuestionLen,
		minA:        cfg.MinAnswerLen,
		maxA:        cfg.MaxAnswerLen,
		maxNewlines: cfg.MaxNewlines,
		banned:      re,
	}, nil
}

// Validate applies the rules in order and reports the first violation.
func (g *Gate) Validate(question, answer string) Result {
	q := strings.TrimSpace(question)
	a := strings.TrimSpace(answer)

	if n := len([]rune(q)); n < g.minQ {
		return reject("question too short (%d < %d)", n, g.minQ)
	} else if n > g.maxQ {
		return reject("question too long (%d > %d)", n, g.maxQ)
	}
	if n := len([]rune(a)); n < g.minA {
		return reject("answer too short (%d < %d)", n, g.minA)
	} else if n > g.maxA {
		return reject("answer too long (%d > %d)", n, g.maxA)
	}
	if containsURL(q) || containsURL(a) {
		return reject("contains a URL-like substring")
	}
	if g.banned.MatchString(q) || g.banned.MatchString(a) {
		return reject("matches a banned topic pattern")
	}
	if n := strings.Count(question, "\n"); n > g.maxNewlines {
		return reject("question has too many line breaks (%d > %d)", n, g.maxNewlines)
	}
	return Result{OK: true}
}

func containsURL(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "http") || strings.Contains(l, "www.")
}

func reject(format string, a ...any) Result {
	return Result{OK: false, Reason: fmt.Sprintf(format, a...)}
}
