package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/multiforge/clipforge/internal/media"
)

// MaxSourceDuration bounds repurposing inputs, in seconds.
const MaxSourceDuration = 1800

// SourceVideo is a downloaded long-form video plus its extracted audio.
type SourceVideo struct {
	VideoPath string
	AudioPath string
	Title     string
	Duration  float64
}

// Downloader fetches a source video by URL.
type Downloader interface {
	Download(ctx context.Context, url string) (*SourceVideo, error)
}

// YtDlpDownloader shells out to yt-dlp for the video and ffmpeg for the
// audio track.
type YtDlpDownloader struct {
	outputDir string
	runner    media.Runner
}

// NewYtDlpDownloader creates a downloader writing into outputDir.
func NewYtDlpDownloader(outputDir string) *YtDlpDownloader {
	return &YtDlpDownloader{
		outputDir: outputDir,
		runner:    &media.ExecRunner{},
	}
}

// NewYtDlpDownloaderForTests injects a fake runner.
func NewYtDlpDownloaderForTests(outputDir string, runner media.Runner) *YtDlpDownloader {
	return &YtDlpDownloader{outputDir: outputDir, runner: runner}
}

// Download fetches the video (capped at 1080p), rejects sources longer than
// MaxSourceDuration, and extracts a separate audio file for transcription.
func (d *YtDlpDownloader) Download(ctx context.Context, url string) (*SourceVideo, error) {
	id, title, duration, err := d.probe(ctx, url)
	if err != nil {
		return nil, err
	}
	if duration > MaxSourceDuration {
		return nil, fmt.Errorf("source too long: %.0fs (max %ds)", duration, MaxSourceDuration)
	}

	videoPath := filepath.Join(d.outputDir, id+".mp4")
	result, err := d.runner.Run(ctx, "yt-dlp",
		"-f", "best[height<=1080]",
		"--no-playlist",
		"-o", videoPath,
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp download failed (exit %d): %s", result.ExitCode, head(result.Stderr, 200))
	}

	audioPath := filepath.Join(d.outputDir, id+"_audio.mp3")
	result, err = d.runner.Run(ctx, "ffmpeg",
		"-y",
		"-i", videoPath,
		"-vn",
		"-c:a", "libmp3lame",
		audioPath,
	)
	if err != nil {
		return nil, fmt.Errorf("audio extraction failed (exit %d): %s", result.ExitCode, head(result.Stderr, 200))
	}

	return &SourceVideo{
		VideoPath: videoPath,
		AudioPath: audioPath,
		Title:     title,
		Duration:  duration,
	}, nil
}

// probe asks yt-dlp for id, title and duration without downloading.
func (d *YtDlpDownloader) probe(ctx context.Context, url string) (string, string, float64, error) {
	result, err := d.runner.Run(ctx, "yt-dlp",
		"--no-playlist",
		"--print", "%(id)s\t%(title)s\t%(duration)s",
		"--no-download",
		url,
	)
	if err != nil {
		return "", "", 0, fmt.Errorf("yt-dlp probe failed (exit %d): %s", result.ExitCode, head(result.Stderr, 200))
	}

	line := strings.TrimSpace(result.Stdout)
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("unexpected yt-dlp probe output: %q", line)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("parse source duration %q: %w", parts[2], err)
	}
	return parts[0], parts[1], duration, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
