package question

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"quiz-shorts-pipeline/fallback"
	"quiz-shorts-pipeline/types"
)

const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	groqEndpoint   = "https://api.groq.com/openai/v1/chat/completions"

	generationSystemPrompt = "You are a trivia question generator. Return only valid JSON."
)

// providers builds the ordered chain for one generation attempt. A missing
// API key makes that slot fail immediately, which the chain absorbs.
func (s *Source) providers(req types.GenerationRequest) []fallback.Provider[types.ProviderResult] {
	var chain []fallback.Provider[types.ProviderResult]
	for _, name := range s.cfg.Generation.Providers {
		switch name {
		case "gemini":
			chain = append(chain, fallback.Provider[types.ProviderResult]{
				Name: "gemini",
				Call: func(ctx context.Context) (types.ProviderResult, error) {
					return s.callGemini(ctx, req)
				},
			})
		case "groq":
			chain = append(chain, fallback.Provider[types.ProviderResult]{
				Name: "groq",
				Call: func(ctx context.Context) (types.ProviderResult, error) {
					return s.callGroq(ctx, req)
				},
			})
		case "openai":
			chain = append(chain, fallback.Provider[types.ProviderResult]{
				Name: "openai",
				Call: func(ctx context.Context) (types.ProviderResult, error) {
					return s.callOpenAI(ctx, req)
				},
			})
		}
	}
	return chain
}

func (s *Source) callGemini(ctx context.Context, req types.GenerationRequest) (types.ProviderResult, error) {
	if s.keys.GeminiAPIKey == "" {
		return types.ProviderResult{}, fmt.Errorf("GEMINI_API_KEY not set")
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": req.Prompt}}},
		},
		"generationConfig": map[string]any{"temperature": s.cfg.Generation.Temperature},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return types.ProviderResult{}, err
	}

	url := fmt.Sprintf(geminiEndpoint, s.cfg.Generation.GeminiModel) + "?key=" + s.keys.GeminiAPIKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.ProviderResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return types.ProviderResult{}, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.ProviderResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return types.ProviderResult{}, fmt.Errorf("gemini HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return types.ProviderResult{}, fmt.Errorf("parse gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return types.ProviderResult{}, fmt.Errorf("gemini returned no candidates")
	}

	return types.ProviderResult{
		Payload:  parsed.Candidates[0].Content.Parts[0].Text,
		Provider: "gemini",
		Latency:  time.Since(start),
	}, nil
}

func (s *Source) callGroq(ctx context.Context, req types.GenerationRequest) (types.ProviderResult, error) {
	if s.keys.GroqAPIKey == "" {
		return types.ProviderResult{}, fmt.Errorf("GROQ_API_KEY not set")
	}

	body := map[string]any{
		"model": s.cfg.Generation.GroqModel,
		"messages": []map[string]string{
			{"role": "system", "content": generationSystemPrompt},
			{"role": "user", "content": req.Prompt},
		},
		"temperature": s.cfg.Generation.Temperature,
		"max_tokens":  600,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return types.ProviderResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, groqEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.ProviderResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.keys.GroqAPIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return types.ProviderResult{}, fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.ProviderResult{}, err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return types.ProviderResult{}, fmt.Errorf("parse groq response: %w", err)
	}
	if parsed.Error != nil {
		return types.ProviderResult{}, fmt.Errorf("groq error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return types.ProviderResult{}, fmt.Errorf("groq returned no choices")
	}

	return types.ProviderResult{
		Payload:  parsed.Choices[0].Message.Content,
		Provider: "groq",
		Latency:  time.Since(start),
	}, nil
}

func (s *Source) callOpenAI(ctx context.Context, req types.GenerationRequest) (types.ProviderResult, error) {
	if s.keys.OpenAIAPIKey == "" {
		return types.ProviderResult{}, fmt.Errorf("OPENAI_API_KEY not set")
	}

	client := openai.NewClient(option.WithAPIKey(s.keys.OpenAIAPIKey))

	start := time.Now()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.cfg.Generation.OpenAIModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(generationSystemPrompt),
			openai.UserMessage(req.Prompt),
		},
	})
	if err != nil {
		return types.ProviderResult{}, fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.ProviderResult{}, fmt.Errorf("openai returned no choices")
	}

	return types.ProviderResult{
		Payload:  resp.Choices[0].Message.Content,
		Provider: "openai",
		Latency:  time.Since(start),
	}, nil
}
