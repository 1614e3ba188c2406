package compose

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/multiforge/clipforge/internal/media"
	"github.com/multiforge/clipforge/internal/types"
)

// Target output geometries.
const (
	verticalWidth  = 1080
	verticalHeight = 1920
	squareSize     = 1080
	verticalRatio  = 9.0 / 16.0
)

// Options are the tunable rendering constants. Zero values take defaults.
type Options struct {
	MusicVolume     float64 // background music level under narration
	CaptionWords    int     // words per burned-in caption chunk
	CaptionFontSize int
	SubtitleChars   int // max chars per clip subtitle line
	SubtitleLines   int // max clip subtitle lines
	FPS             int
}

func (o Options) withDefaults() Options {
	if o.MusicVolume <= 0 {
		o.MusicVolume = 0.10
	}
	if o.CaptionWords <= 0 {
		o.CaptionWords = 5
	}
	if o.CaptionFontSize <= 0 {
		o.CaptionFontSize = 40
	}
	if o.SubtitleChars <= 0 {
		o.SubtitleChars = 30
	}
	if o.SubtitleLines <= 0 {
		o.SubtitleLines = 3
	}
	if o.FPS <= 0 {
		o.FPS = 24
	}
	return o
}

// Compositor renders final deliverables with ffmpeg: single-video assembly
// for the generation pipeline and multi-clip extraction for repurposing.
type Compositor struct {
	runner    media.Runner
	tempDir   string
	outputDir string
	opts      Options
}

// NewCompositor creates a compositor writing finished files to outputDir.
func NewCompositor(tempDir, outputDir string, opts Options) *Compositor {
	return &Compositor{
		runner:    &media.ExecRunner{},
		tempDir:   tempDir,
		outputDir: outputDir,
		opts:      opts.withDefaults(),
	}
}

// NewCompositorForTests injects a fake runner.
func NewCompositorForTests(tempDir, outputDir string, opts Options, runner media.Runner) *Compositor {
	return &Compositor{
		runner:    runner,
		tempDir:   tempDir,
		outputDir: outputDir,
		opts:      opts.withDefaults(),
	}
}

// Compose assembles one final video: narration sets the output duration,
// the source video is looped or trimmed to match, too-wide sources are
// center-cropped to 9:16, music is looped and ducked under the narration,
// and captions are burned in. Any failure here is a hard error; this is the
// final, irrecoverable rendering step. All temp inputs are removed on every
// exit path.
func (c *Compositor) Compose(ctx context.Context, spec types.CompositionSpec) (string, error) {
	if len(spec.AudioBytes) == 0 {
		return "", fmt.Errorf("composition requires narration audio")
	}

	videoPath, ownsVideo, err := materializeVideo(spec.VideoURL, c.tempDir, ".mp4")
	if err != nil {
		return "", fmt.Errorf("materialize video: %w", err)
	}
	if ownsVideo {
		defer os.Remove(videoPath)
	}

	audioPath, err := writeTempFile(spec.AudioBytes, c.tempDir, ".mp3")
	if err != nil {
		return "", err
	}
	defer os.Remove(audioPath)

	var musicPath string
	if spec.MusicURL != "" {
		musicPath, err = downloadFile(spec.MusicURL, c.tempDir, ".mp3")
		if err != nil {
			// Music is an embellishment; render without it.
			log.Printf("[compose] music unavailable, rendering without: %v", err)
			musicPath = ""
		} else {
			defer os.Remove(musicPath)
		}
	}

	target, err := probeDuration(ctx, c.runner, audioPath)
	if err != nil {
		return "", err
	}
	videoDur, err := probeDuration(ctx, c.runner, videoPath)
	if err != nil {
		return "", err
	}
	width, height, err := probeDimensions(ctx, c.runner, videoPath)
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(c.outputDir, uuid.NewString()+".mp4")
	args := c.assembleArgs(videoPath, audioPath, musicPath, outputPath,
		target, videoDur, width, height, spec.ScriptText)

	log.Printf("[compose] rendering %.1fs (video %.1fs, %dx%d, loops %d)",
		target, videoDur, width, height, loopPlays(videoDur, target))
	if result, err := c.runner.Run(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg render failed (exit %d): %s",
			result.ExitCode, tail(result.Stderr, 300))
	}
	return outputPath, nil
}

// assembleArgs builds the single ffmpeg invocation for Compose.
func (c *Compositor) assembleArgs(videoPath, audioPath, musicPath, outputPath string,
	target, videoDur float64, width, height int, script string) []string {

	args := []string{"-y"}

	if plays := loopPlays(videoDur, target); plays > 1 {
		args = append(args, "-stream_loop", fmt.Sprintf("%d", plays-1))
	}
	args = append(args, "-i", videoPath, "-i", audioPath)
	if musicPath != "" {
		args = append(args, "-stream_loop", "-1", "-i", musicPath)
	}

	videoChain := []string{}
	if needsVerticalCrop(width, height) {
		cw := cropWidth(width, height)
		videoChain = append(videoChain, fmt.Sprintf("crop=%d:%d", cw, height))
	}
	// libx264 needs even dimensions after cropping.
	videoChain = append(videoChain, "scale=trunc(iw/2)*2:trunc(ih/2)*2")
	for _, chunk := range chunkCaptions(script, c.opts.CaptionWords, target) {
		videoChain = append(videoChain,
			drawtextFilter(chunk.Text, c.opts.CaptionFontSize, chunk.Start, chunk.End))
	}

	filter := fmt.Sprintf("[0:v]%s[vout];", strings.Join(videoChain, ","))
	if musicPath != "" {
		filter += fmt.Sprintf(
			"[2:a]volume=%.2f[bg];[1:a][bg]amix=inputs=2:duration=first:normalize=0[aout]",
			c.opts.MusicVolume)
	} else {
		filter += "[1:a]anull[aout]"
	}

	args = append(args,
		"-filter_complex", filter,
		"-map", "[vout]",
		"-map", "[aout]",
		"-t", fmt.Sprintf("%.3f", target),
		"-c:v", "libx264",
		"-preset", "medium",
		"-c:a", "aac",
		"-r", fmt.Sprintf("%d", c.opts.FPS),
		"-pix_fmt", "yuv420p",
		outputPath,
	)
	return args
}

// loopPlays returns how many whole plays of the source cover the target
// duration. 1 means no looping (the source is long enough).
func loopPlays(videoDur, target float64) int {
	if videoDur <= 0 || videoDur >= target {
		return 1
	}
	return int(math.Ceil(target / videoDur))
}

// needsVerticalCrop reports whether the source is wider than 9:16.
func needsVerticalCrop(width, height int) bool {
	return float64(width)/float64(height) > verticalRatio
}

// cropWidth is the height-preserving 9:16 crop width (607 for 1080p).
func cropWidth(width, height int) int {
	cw := int(float64(height) * verticalRatio)
	if cw > width {
		cw = width
	}
	return cw
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
