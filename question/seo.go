package question

import "strings"

const (
	maxTitleLen        = 90
	defaultDescription = "Can you answer in 10 seconds? Write your guess in the comments!\n\n#shorts #trivia #quiz"
)

var defaultCTAs = []string{
	"Can you answer before 10 seconds end?",
	"Type your answer before time runs out!",
	"Guess fast and drop it in the comments!",
}

// applySEODefaults fills whatever publish metadata the provider omitted and
// enforces the platform constraints: title clamp and a #shorts hashtag.
func applySEODefaults(c *candidate) {
	if c.Category == "" {
		c.Category = "General Knowledge"
	}
	if c.Title == "" {
		c.Title = "10-Second Trivia: " + c.Category + " Challenge #shorts"
	}
	if len([]rune(c.Title)) > maxTitleLen {
		c.Title = string([]rune(c.Title)[:maxTitleLen-3]) + "..."
	}
	if c.Description == "" {
		c.Description = defaultDescription
	}
	if len(c.Tags) == 0 {
		c.Tags = []string{"shorts", "trivia", "quiz", "general knowledge", strings.ToLower(c.Category)}
	}
	c.Hashtags = ensureShortsHashtag(c.Hashtags)
}

// ensureShortsHashtag prefixes every entry with # and guarantees #shorts
// is present.
func ensureShortsHashtag(items []string) []string {
	var out []string
	hasShorts := false
	for _, it := range items {
		s := strings.TrimSpace(it)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, "#") {
			s = "#" + strings.TrimLeft(s, "#")
		}
		if strings.EqualFold(s, "#shorts") {
			hasShorts = true
		}
		out = append(out, s)
	}
	if !hasShorts {
		out = append([]string{"#shorts"}, out...)
	}
	if len(out) == 1 {
		out = append(out, "#trivia", "#quiz")
	}
	return out
}
