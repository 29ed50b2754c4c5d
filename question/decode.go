package question

import (
	"encoding/json"
	"strings"

	"quiz-shorts-pipeline/faults"
)

// candidate is the parsed-but-unvalidated shape extracted from a provider
// payload. It only becomes a QuizItem after the safety gate and dedup check.
type candidate struct {
	Question    string
	Answer      string
	Category    string
	Title       string
	Description string
	Tags        []string
	Hashtags    []string
}

// rawCandidate tolerates the field sloppiness LLMs produce: tags and
// hashtags arrive as arrays or comma-joined strings.
type rawCandidate struct {
	Question    string          `json:"question"`
	Answer      string          `json:"answer"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
	Hashtags    json.RawMessage `json:"hashtags"`
}

// decode parses a provider payload into a candidate. Strict first: strip
// markdown fences and unmarshal the whole payload. Heuristic second: take
// the outermost brace-delimited block and try again. Anything else is a
// first-class validation failure visible to the retry loop — never an
// empty or partial value returned silently.
func decode(payload string) (candidate, error) {
	cleaned := stripFences(payload)

	var raw rawCandidate
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		open := strings.Index(cleaned, "{")
		close := strings.LastIndex(cleaned, "}")
		if open < 0 || close <= open {
			return candidate{}, faults.Wrap(err, faults.KindValidation, "payload is not JSON")
		}
		if err := json.Unmarshal([]byte(cleaned[open:close+1]), &raw); err != nil {
			return candidate{}, faults.Wrap(err, faults.KindValidation, "no JSON object in payload")
		}
	}

	c := candidate{
		Question:    strings.TrimSpace(raw.Question),
		Answer:      strings.TrimSpace(raw.Answer),
		Category:    strings.TrimSpace(raw.Category),
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Tags:        coerceList(raw.Tags),
		Hashtags:    coerceList(raw.Hashtags),
	}
	if c.Question == "" || c.Answer == "" {
		return candidate{}, faults.New(faults.KindValidation, "payload missing question or answer")
	}
	return c, nil
}

// stripFences removes a ```json ... ``` wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func coerceList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanList(list)
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return cleanList(strings.Split(joined, ","))
	}
	return nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
