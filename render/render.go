// Package render composes the final vertical video: the background looped
// for the planned duration, the narration track, and every timed text
// overlay burned in with a single ffmpeg invocation.
package render

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/faults"
	"quiz-shorts-pipeline/probe"
	"quiz-shorts-pipeline/timing"
)

// Spec is everything one render needs.
type Spec struct {
	Background string
	Audio      string
	Overlays   []timing.Overlay
	Plan       timing.Plan
	OutFile    string
}

// Result is the rendered file plus its measured (not assumed) duration.
type Result struct {
	File     string
	Duration float64
}

type Renderer struct {
	cfg *config.Config
	log zerolog.Logger
}

func NewRenderer(cfg *config.Config, log zerolog.Logger) *Renderer {
	return &Renderer{cfg: cfg, log: log.With().Str("stage", "render").Logger()}
}

// Render produces spec.OutFile and probes its real duration. All failures
// come back as render faults for the orchestrator's per-item recovery.
func (r *Renderer) Render(ctx context.Context, spec Spec) (Result, error) {
	filter := r.buildFilter(spec.Overlays)

	args := []string{"-y",
		"-loop", "1",
		"-i", spec.Background,
		"-i", spec.Audio,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "1:a",
		"-t", fmt.Sprintf("%.3f", spec.Plan.TotalDuration),
		"-r", fmt.Sprintf("%d", r.cfg.Render.FPS),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		spec.OutFile,
	}

	r.log.Info().Str("out", spec.OutFile).Float64("planned_sec", spec.Plan.TotalDuration).
		Int("overlays", len(spec.Overlays)).Msg("rendering video")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return Result{}, faults.Wrapf(err, faults.KindRender, "ffmpeg render: %s", tail(string(out), 300))
	}

	dur, err := probe.Duration(ctx, spec.OutFile)
	if err != nil {
		return Result{}, faults.Wrap(err, faults.KindRender, "probe rendered video")
	}
	return Result{File: spec.OutFile, Duration: dur}, nil
}

// buildFilter scales and pads the background to the target frame, then
// chains one drawtext per overlay gated on its visible interval.
func (r *Renderer) buildFilter(overlays []timing.Overlay) string {
	w, h := r.cfg.Render.Width, r.cfg.Render.Height

	var sb strings.Builder
	fmt.Fprintf(&sb,
		"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		w, h, w, h)
	for _, o := range overlays {
		sb.WriteString(",")
		sb.WriteString(r.drawtext(o))
	}
	sb.WriteString("[v]")
	return sb.String()
}

// drawtext is the single place overlay semantics meet ffmpeg syntax.
func (r *Renderer) drawtext(o timing.Overlay) string {
	var y string
	switch o.Position {
	case timing.PositionCenter:
		y = "(h-text_h)/2"
	case timing.PositionLower:
		y = "h*0.70"
	case timing.PositionBottom:
		y = "h-text_h-140"
	default:
		y = "(h-text_h)/2"
	}

	return fmt.Sprintf(
		"drawtext=fontfile=%s:text='%s':fontsize=%d:fontcolor=%s:"+
			"x=(w-text_w)/2:y=%s:borderw=4:bordercolor=black:"+
			"enable='between(t,%.3f,%.3f)'",
		r.cfg.Render.FontFile,
		escapeDrawtext(wrapText(o.Text, 26)),
		o.FontSize, o.Color, y, o.Start, o.End,
	)
}

// escapeDrawtext escapes the characters ffmpeg's drawtext and the
// surrounding filtergraph parser treat specially.
func escapeDrawtext(s string) string {
	repl := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
		`;`, `\;`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return repl.Replace(s)
}

// wrapText inserts newlines so long questions fit a vertical frame.
// drawtext renders literal newlines as line breaks.
func wrapText(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var (
		lines []string
		line  string
	)
	for _, w := range words {
		if line == "" {
			line = w
			continue
		}
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
