// Package config loads the immutable pipeline configuration.
//
// Config comes from config.yaml; credentials come from the environment via
// KeysFromEnv, called exactly once in main. No other package reads the
// process environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Generation GenerationConfig `yaml:"generation"`
	Safety     SafetyConfig     `yaml:"safety"`
	Timing     TimingConfig     `yaml:"timing"`
	TTS        TTSConfig        `yaml:"tts"`
	Background BackgroundConfig `yaml:"background"`
	Render     RenderConfig     `yaml:"render"`
	Upload     UploadConfig     `yaml:"upload"`
	Retry      RetryConfig      `yaml:"retry"`
	Paths      PathsConfig      `yaml:"paths"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type GenerationConfig struct {
	Providers      []string `yaml:"providers"` // tried in order: gemini | groq | openai
	MaxAttempts    int      `yaml:"max_attempts"`
	MaxQuestionLen int      `yaml:"max_question_len"`
	MaxAnswerLen   int      `yaml:"max_answer_len"`
	Temperature    float64  `yaml:"temperature"`
	GeminiModel    string   `yaml:"gemini_model"`
	GroqModel      string   `yaml:"groq_model"`
	OpenAIModel    string   `yaml:"openai_model"`
	TopicSubreddit string   `yaml:"topic_subreddit"`
}

type SafetyConfig struct {
	MinQuestionLen int `yaml:"min_question_len"`
	MaxQuestionLen int `yaml:"max_question_len"`
	MinAnswerLen   int `yaml:"min_answer_len"`
	MaxAnswerLen   int `yaml:"max_answer_len"`
	MaxNewlines    int `yaml:"max_newlines"`
	// ExtraBannedPatterns are appended to the built-in banned-topic set.
	ExtraBannedPatterns []string `yaml:"extra_banned_patterns"`
}

type TimingConfig struct {
	CountdownSeconds   float64 `yaml:"countdown_seconds"`
	RevealSeconds      float64 `yaml:"reveal_seconds"`
	MinNarrationFloor  float64 `yaml:"min_narration_floor"`
	DurationToleranceS float64 `yaml:"duration_tolerance_sec"`
}

type TTSConfig struct {
	Voice string `yaml:"voice"`
	// Command overrides the engine: it must accept --text and --output.
	Command string `yaml:"command"`
}

type BackgroundConfig struct {
	Providers []string `yaml:"providers"` // unsplash | pexels | pixabay | pollinations | solid
	Query     string   `yaml:"query"`
}

type RenderConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	FPS      int    `yaml:"fps"`
	FontFile string `yaml:"font_file"`
}

type UploadConfig struct {
	Privacy           string `yaml:"privacy"`
	CategoryID        string `yaml:"category_id"`
	MaxPerDay         int    `yaml:"max_per_day"`
	PublishGapSec     int    `yaml:"publish_gap_sec"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
}

type RetryConfig struct {
	Attempts       int     `yaml:"attempts"`
	BaseDelaySec   float64 `yaml:"base_delay_sec"`
	CapDelaySec    float64 `yaml:"cap_delay_sec"`
	UploadAttempts int     `yaml:"upload_attempts"`
	TimeoutSec     int     `yaml:"timeout_sec"`
}

type PathsConfig struct {
	Output        string `yaml:"output"`
	StateDir      string `yaml:"state_dir"`
	DedupFile     string `yaml:"dedup_file"`
	RateLimitFile string `yaml:"rate_limit_file"`
}

// Keys holds every external credential, read from the environment once at
// process start and passed explicitly into constructors.
type Keys struct {
	GeminiAPIKey      string
	GroqAPIKey        string
	OpenAIAPIKey      string
	UnsplashAccessKey string
	PexelsAPIKey      string
	PixabayAPIKey     string
	RedditClientID    string
	RedditSecret      string
	YTClientID        string
	YTClientSecret    string
	YTRefreshToken    string
}

// KeysFromEnv reads all credentials. Missing keys are left empty; each
// provider adapter fails its chain slot when its key is absent.
func KeysFromEnv() Keys {
	return Keys{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		PexelsAPIKey:      os.Getenv("PEXELS_API_KEY"),
		PixabayAPIKey:     os.Getenv("PIXABAY_API_KEY"),
		RedditClientID:    os.Getenv("REDDIT_CLIENT_ID"),
		RedditSecret:      os.Getenv("REDDIT_CLIENT_SECRET"),
		YTClientID:        os.Getenv("YOUTUBE_CLIENT_ID"),
		YTClientSecret:    os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YTRefreshToken:    os.Getenv("YOUTUBE_REFRESH_TOKEN"),
	}
}

// Load reads config.yaml, applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config usable without a config.yaml.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Generation.Providers) == 0 {
		c.Generation.Providers = []string{"gemini", "groq", "openai"}
	}
	if c.Generation.MaxAttempts == 0 {
		c.Generation.MaxAttempts = 6
	}
	if c.Generation.MaxQuestionLen == 0 {
		c.Generation.MaxQuestionLen = 150
	}
	if c.Generation.MaxAnswerLen == 0 {
		c.Generation.MaxAnswerLen = 60
	}
	if c.Generation.Temperature == 0 {
		c.Generation.Temperature = 0.9
	}
	if c.Generation.GeminiModel == "" {
		c.Generation.GeminiModel = "gemini-1.5-flash"
	}
	if c.Generation.GroqModel == "" {
		c.Generation.GroqModel = "llama-3.1-8b-instant"
	}
	if c.Generation.OpenAIModel == "" {
		c.Generation.OpenAIModel = "gpt-4o-mini"
	}
	if c.Generation.TopicSubreddit == "" {
		c.Generation.TopicSubreddit = "todayilearned"
	}
	if c.Safety.MinQuestionLen == 0 {
		c.Safety.MinQuestionLen = 8
	}
	if c.Safety.MaxQuestionLen == 0 {
		c.Safety.MaxQuestionLen = 150
	}
	if c.Safety.MinAnswerLen == 0 {
		c.Safety.MinAnswerLen = 1
	}
	if c.Safety.MaxAnswerLen == 0 {
		c.Safety.MaxAnswerLen = 60
	}
	if c.Safety.MaxNewlines == 0 {
		c.Safety.MaxNewlines = 4
	}
	if c.Timing.CountdownSeconds == 0 {
		c.Timing.CountdownSeconds = 10
	}
	if c.Timing.RevealSeconds == 0 {
		c.Timing.RevealSeconds = 4
	}
	if c.Timing.MinNarrationFloor == 0 {
		c.Timing.MinNarrationFloor = 3
	}
	if c.Timing.DurationToleranceS == 0 {
		c.Timing.DurationToleranceS = 1.0
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "en-US-GuyNeural"
	}
	if len(c.Background.Providers) == 0 {
		c.Background.Providers = []string{"unsplash", "pexels", "pixabay", "pollinations", "solid"}
	}
	if c.Background.Query == "" {
		c.Background.Query = "abstract texture"
	}
	if c.Render.Width == 0 {
		c.Render.Width = 1080
	}
	if c.Render.Height == 0 {
		c.Render.Height = 1920
	}
	if c.Render.FPS == 0 {
		c.Render.FPS = 30
	}
	if c.Render.FontFile == "" {
		c.Render.FontFile = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	}
	if c.Upload.Privacy == "" {
		c.Upload.Privacy = "public"
	}
	if c.Upload.CategoryID == "" {
		c.Upload.CategoryID = "24"
	}
	if c.Upload.MaxPerDay == 0 {
		c.Upload.MaxPerDay = 4
	}
	if c.Upload.PublishGapSec == 0 {
		c.Upload.PublishGapSec = 60
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 5
	}
	if c.Retry.BaseDelaySec == 0 {
		c.Retry.BaseDelaySec = 1
	}
	if c.Retry.CapDelaySec == 0 {
		c.Retry.CapDelaySec = 10
	}
	if c.Retry.UploadAttempts == 0 {
		c.Retry.UploadAttempts = 3
	}
	if c.Retry.TimeoutSec == 0 {
		c.Retry.TimeoutSec = 40
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.StateDir == "" {
		c.Paths.StateDir = "state"
	}
	if c.Paths.DedupFile == "" {
		c.Paths.DedupFile = "state/used_fingerprints.json"
	}
	if c.Paths.RateLimitFile == "" {
		c.Paths.RateLimitFile = "state/rate_limit.json"
	}
}

func (c *Config) validate() error {
	if c.Upload.MaxPerDay < 1 {
		return fmt.Errorf("upload.max_per_day must be >= 1, got %d", c.Upload.MaxPerDay)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be >= 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Timing.CountdownSeconds < 0 || c.Timing.RevealSeconds < 0 {
		return fmt.Errorf("timing durations must not be negative")
	}
	if c.Safety.MinQuestionLen >= c.Safety.MaxQuestionLen {
		return fmt.Errorf("safety question length bounds inverted")
	}
	for _, p := range c.Generation.Providers {
		switch p {
		case "gemini", "groq", "openai":
		default:
			return fmt.Errorf("unknown generation provider %q", p)
		}
	}
	return nil
}

// RequestTimeout returns the fixed per-call network timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Retry.TimeoutSec) * time.Second
}
