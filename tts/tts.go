// Package tts synthesizes narration audio through a provider chain. The
// terminal provider renders a silent track sized from a words-per-minute
// estimate, so synthesis as a whole never fails the pipeline.
package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/fallback"
)

// Narration is assumed read at roughly this pace when the silent fallback
// has to size its track.
const wordsPerMinute = 130.0

type Synthesizer struct {
	cfg   *config.Config
	log   zerolog.Logger
	retry fallback.Retry
}

func NewSynthesizer(cfg *config.Config, log zerolog.Logger, retry fallback.Retry) *Synthesizer {
	return &Synthesizer{cfg: cfg, log: log.With().Str("stage", "synthesize").Logger(), retry: retry}
}

// Synthesize writes narration audio for text to outFile and returns the
// path. Chain order: configured custom command, edge-tts, silent fallback.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outFile string) (string, error) {
	chain := []fallback.Provider[string]{}

	if cmd := strings.TrimSpace(s.cfg.TTS.Command); cmd != "" {
		chain = append(chain, fallback.Provider[string]{
			Name: "custom-command",
			Call: func(ctx context.Context) (string, error) {
				return s.runCustom(ctx, cmd, text, outFile)
			},
		})
	}
	chain = append(chain,
		fallback.Provider[string]{
			Name: "edge-tts",
			Call: func(ctx context.Context) (string, error) {
				return s.runEdgeTTS(ctx, text, outFile)
			},
		},
		fallback.Provider[string]{
			Name: "silent-track",
			Call: func(ctx context.Context) (string, error) {
				return s.silentTrack(ctx, text, outFile)
			},
		},
	)

	return fallback.Do(ctx, s.log, "tts", s.retry,
		func(ctx context.Context) (string, error) {
			return fallback.Execute(ctx, s.log, "tts", chain)
		})
}

func (s *Synthesizer) runEdgeTTS(ctx context.Context, text, outFile string) (string, error) {
	cmd := exec.CommandContext(ctx, "edge-tts",
		"--voice", s.cfg.TTS.Voice,
		"--text", text,
		"--write-media", outFile,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("edge-tts: %w: %s", err, truncate(string(out), 200))
	}
	return outFile, nil
}

// runCustom invokes an operator-provided TTS command that accepts
// --text and --output.
func (s *Synthesizer) runCustom(ctx context.Context, command, text, outFile string) (string, error) {
	var cmd *exec.Cmd
	if strings.HasSuffix(command, ".py") {
		cmd = exec.CommandContext(ctx, "python3", command, "--text", text, "--output", outFile)
	} else {
		cmd = exec.CommandContext(ctx, command, "--text", text, "--output", outFile)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tts command %q: %w: %s", command, err, truncate(string(out), 200))
	}
	return outFile, nil
}

// silentTrack renders silence matching the estimated narration length, so
// the video still carries a correctly-timed audio track when every real
// engine is down.
func (s *Synthesizer) silentTrack(ctx context.Context, text, outFile string) (string, error) {
	words := len(strings.Fields(text))
	seconds := float64(words) / wordsPerMinute * 60.0
	if seconds < s.cfg.Timing.MinNarrationFloor {
		seconds = s.cfg.Timing.MinNarrationFloor
	}

	s.log.Warn().Float64("seconds", seconds).Msg("all TTS engines failed, rendering silent track")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", fmt.Sprintf("%.2f", seconds),
		"-c:a", "libmp3lame",
		outFile,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg silent track: %w: %s", err, truncate(string(out), 200))
	}
	return outFile, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
