package repurpose

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/multiforge/clipforge/internal/download"
	"github.com/multiforge/clipforge/internal/types"
)

// Default clip constraints.
const (
	DefaultMaxClips    = 5
	DefaultMinDuration = 15
	DefaultMaxDuration = 60
)

// ProgressFunc mirrors the generation pipeline's progress reporting.
type ProgressFunc func(progress int, step string, logs []string)

// Result is the terminal outcome of one repurposing job.
type Result struct {
	Success  bool
	Error    string
	Title    string
	Duration float64
	Clips    []types.Clip
	Logs     []string
}

// Transcriber produces time-aligned segments from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) []types.TranscriptSegment
}

// Analyzer scores transcript windows for repurposing.
type Analyzer interface {
	Analyze(ctx context.Context, segments []types.TranscriptSegment, maxClips, minDuration, maxDuration int) []types.Moment
}

// Extractor slices and reformats clips from the source video.
type Extractor interface {
	Extract(ctx context.Context, videoPath string, moments []types.Moment, formatType string) []string
}

// Orchestrator runs the long-form to short-form path: download, transcribe,
// score moments, extract clips, summarize. Unlike the generation pipeline,
// every step here is fatal on failure — each produces an input the next step
// cannot substitute for.
type Orchestrator struct {
	downloader  download.Downloader
	transcriber Transcriber
	analyzer    Analyzer
	extractor   Extractor
}

// NewOrchestrator wires the repurposing collaborators.
func NewOrchestrator(dl download.Downloader, tr Transcriber, an Analyzer, ex Extractor) *Orchestrator {
	return &Orchestrator{
		downloader:  dl,
		transcriber: tr,
		analyzer:    an,
		extractor:   ex,
	}
}

// Run executes the five steps in order, accumulating logs. The first failing
// step produces an error result carrying the logs so far.
func (o *Orchestrator) Run(ctx context.Context, req types.RepurposeRequest, progress ProgressFunc) Result {
	var logs []string
	addLog := func(format string, args ...interface{}) {
		line := fmt.Sprintf(format, args...)
		logs = append(logs, line)
		log.Printf("[repurpose] %s", line)
	}
	fail := func(msg string) Result {
		addLog("Pipeline error: %s", msg)
		return Result{Success: false, Error: msg, Logs: logs}
	}

	maxClips := req.MaxClips
	if maxClips <= 0 {
		maxClips = DefaultMaxClips
	}
	minDur := req.MinDuration
	if minDur <= 0 {
		minDur = DefaultMinDuration
	}
	maxDur := req.MaxDuration
	if maxDur <= 0 {
		maxDur = DefaultMaxDuration
	}
	format := req.Format
	if format == "" {
		format = types.FormatVertical
	}

	addLog("Starting repurposing: %s", req.URL)

	// Step 1/5: download source video.
	progress(10, "Downloading source video", logs)
	source, err := o.downloader.Download(ctx, req.URL)
	if err != nil {
		return fail(fmt.Sprintf("failed to download source video: %v", err))
	}
	addLog("Downloaded: %s (%.0fs)", source.Title, source.Duration)

	// Step 2/5: transcribe.
	progress(30, "Transcribing audio", logs)
	segments := o.transcriber.Transcribe(ctx, source.AudioPath)
	if len(segments) == 0 {
		return fail("failed to transcribe audio")
	}
	addLog("Transcribed: %d segments", len(segments))

	// Step 3/5: score viral moments.
	progress(50, "Scoring moments", logs)
	moments := o.analyzer.Analyze(ctx, segments, maxClips, minDur, maxDur)
	if len(moments) == 0 {
		return fail("no viral moments found")
	}
	addLog("Found %d viral moments", len(moments))
	for i, m := range moments {
		if i >= 3 {
			break
		}
		addLog("  %d. score %d: %s", i+1, m.Score, m.Hook)
	}

	// Step 4/5: extract clips.
	progress(70, "Extracting clips", logs)
	paths := o.extractor.Extract(ctx, source.VideoPath, moments, format)
	if len(paths) == 0 {
		return fail("failed to extract clips")
	}
	addLog("Extracted %d/%d clips", len(paths), len(moments))

	// Step 5/5: assemble the result summary. Clip order matches moment
	// order; the moment list may be longer when extractions were skipped.
	progress(90, "Preparing results", logs)
	clips := make([]types.Clip, 0, len(paths))
	for i, path := range paths {
		m := moments[momentIndex(path, i, len(moments))]
		clips = append(clips, types.Clip{
			Path:     path,
			Filename: filepath.Base(path),
			Start:    m.Start,
			End:      m.End,
			Duration: m.End - m.Start,
			Score:    m.Score,
			Hook:     m.Hook,
			Reason:   m.Reason,
			Text:     m.Text,
		})
	}
	addLog("Repurposing complete: %d clips", len(clips))

	return Result{
		Success:  true,
		Title:    source.Title,
		Duration: source.Duration,
		Clips:    clips,
		Logs:     logs,
	}
}

// momentIndex recovers which moment produced a clip. The extractor names
// clips clip_NN.mp4 by 1-based moment position, so skipped moments do not
// shift the pairing; unparseable names fall back to list position.
func momentIndex(path string, position, momentCount int) int {
	var n int
	if _, err := fmt.Sscanf(filepath.Base(path), "clip_%d.mp4", &n); err == nil && n >= 1 && n <= momentCount {
		return n - 1
	}
	return position
}
