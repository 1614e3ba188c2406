package compose

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/multiforge/clipforge/internal/types"
)

// Extract slices the source video into one reformatted clip per moment.
// Per-clip failures are logged and skipped, never fatal to the batch; output
// order matches moment order, so the clip count may be lower than the moment
// count. Out-of-range moments are clamped to the source duration and dropped
// only when nothing remains.
func (c *Compositor) Extract(ctx context.Context, videoPath string, moments []types.Moment, formatType string) []string {
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		log.Printf("[extract] cannot create output dir: %v", err)
		return nil
	}

	sourceDur, err := probeDuration(ctx, c.runner, videoPath)
	if err != nil {
		log.Printf("[extract] cannot probe source: %v", err)
		return nil
	}
	width, height, err := probeDimensions(ctx, c.runner, videoPath)
	if err != nil {
		log.Printf("[extract] cannot probe dimensions: %v", err)
		return nil
	}

	var clips []string
	for i, moment := range moments {
		start, end, ok := clampWindow(moment.Start, moment.End, sourceDur)
		if !ok {
			log.Printf("[extract] clip %d: window %.1f-%.1f outside source (%.1fs), skipped",
				i+1, moment.Start, moment.End, sourceDur)
			continue
		}

		outputPath := filepath.Join(c.outputDir, fmt.Sprintf("clip_%02d.mp4", i+1))
		subtitle := moment.Hook
		if subtitle == "" {
			subtitle = moment.Text
		}

		args := c.extractArgs(videoPath, outputPath, start, end, width, height, formatType, subtitle)
		log.Printf("[extract] clip %d: %.1fs-%.1fs (%s)", i+1, start, end, formatType)
		if result, err := c.runner.Run(ctx, "ffmpeg", args...); err != nil {
			log.Printf("[extract] clip %d failed (exit %d): %s — skipped",
				i+1, result.ExitCode, tail(result.Stderr, 200))
			continue
		}
		clips = append(clips, outputPath)
	}

	log.Printf("[extract] %d/%d clips extracted", len(clips), len(moments))
	return clips
}

// extractArgs builds one ffmpeg slice+reformat+subtitle invocation.
func (c *Compositor) extractArgs(videoPath, outputPath string, start, end float64,
	width, height int, formatType, subtitle string) []string {

	args := []string{"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-to", fmt.Sprintf("%.3f", end),
		"-i", videoPath,
	}

	chain := formatFilters(width, height, formatType)
	if subtitle != "" {
		wrapped := wrapSubtitle(subtitle, c.opts.SubtitleChars, c.opts.SubtitleLines)
		chain = append(chain, drawtextFilter(wrapped, 60, 0, -1))
	}

	if len(chain) > 0 {
		args = append(args, "-vf", joinFilters(chain))
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-b:v", "5000k",
		"-c:a", "aac",
		"-r", "30",
		"-pix_fmt", "yuv420p",
		outputPath,
	)
	return args
}

// formatFilters returns the reformatting chain for a target format.
//
//	vertical:   within 10%% of 9:16 → resize only; else center-crop to exact
//	            9:16 width then 1080x1920
//	square:     center-crop to the smaller dimension, 1080x1080
//	horizontal: passthrough
func formatFilters(width, height int, formatType string) []string {
	switch formatType {
	case types.FormatVertical:
		ratio := float64(width) / float64(height)
		if ratio <= verticalRatio*1.1 {
			return []string{fmt.Sprintf("scale=-2:%d", verticalHeight)}
		}
		cw := cropWidth(width, height)
		return []string{
			fmt.Sprintf("crop=%d:%d", cw, height),
			fmt.Sprintf("scale=%d:%d", verticalWidth, verticalHeight),
		}
	case types.FormatSquare:
		size := width
		if height < size {
			size = height
		}
		return []string{
			fmt.Sprintf("crop=%d:%d", size, size),
			fmt.Sprintf("scale=%d:%d", squareSize, squareSize),
		}
	default: // horizontal
		return nil
	}
}

// clampWindow bounds a moment to the source duration. Returns ok=false when
// nothing playable remains.
func clampWindow(start, end, sourceDur float64) (float64, float64, bool) {
	if start < 0 {
		start = 0
	}
	if sourceDur > 0 && end > sourceDur {
		end = sourceDur
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func joinFilters(filters []string) string {
	out := filters[0]
	for _, f := range filters[1:] {
		out += "," + f
	}
	return out
}
