package compose

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/multiforge/clipforge/internal/media"
)

// probeDuration returns a media file's duration in seconds via ffprobe.
func probeDuration(ctx context.Context, runner media.Runner, path string) (float64, error) {
	result, err := runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %s: %w", path, err)
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", result.Stdout, err)
	}
	return dur, nil
}

// probeDimensions returns a video's width and height via ffprobe.
func probeDimensions(ctx context.Context, runner media.Runner, path string) (int, int, error) {
	result, err := runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe dimensions %s: %w", path, err)
	}

	parts := strings.Split(strings.TrimSpace(result.Stdout), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected ffprobe dimensions %q", result.Stdout)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse width %q: %w", parts[0], err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse height %q: %w", parts[1], err)
	}
	return w, h, nil
}
