// Package probe measures media durations with ffprobe. Provider-reported
// durations are never trusted; everything downstream uses this measurement.
package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Duration returns the duration of the media file in seconds.
func Duration(ctx context.Context, file string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", file, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe output for %s: %w", file, err)
	}
	return dur, nil
}
