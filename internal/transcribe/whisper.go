package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/multiforge/clipforge/internal/media"
	"github.com/multiforge/clipforge/internal/types"
)

// Transcriber turns an audio file into ordered, time-aligned segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) []types.TranscriptSegment
}

// WhisperTranscriber drives Whisper as a subprocess (python -m whisper).
// Serialized: the model is heavyweight and concurrent runs thrash memory.
type WhisperTranscriber struct {
	modelName string
	language  string
	tempDir   string
	runner    media.Runner
	mu        sync.Mutex
}

// NewWhisperTranscriber creates a transcriber for the given model size
// (tiny/base/small/medium/large).
func NewWhisperTranscriber(modelName, language, tempDir string) *WhisperTranscriber {
	if modelName == "" {
		modelName = "base"
	}
	log.Printf("[transcribe] whisper model: %s", modelName)
	return &WhisperTranscriber{
		modelName: modelName,
		language:  language,
		tempDir:   tempDir,
		runner:    &media.ExecRunner{},
	}
}

// NewWhisperTranscriberForTests injects a fake runner.
func NewWhisperTranscriberForTests(modelName, tempDir string, runner media.Runner) *WhisperTranscriber {
	return &WhisperTranscriber{
		modelName: modelName,
		tempDir:   tempDir,
		runner:    runner,
	}
}

// whisperOutput matches Whisper's JSON output format.
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
		Words []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Word  string  `json:"word"`
		} `json:"words"`
	} `json:"segments"`
}

// Transcribe returns segments ordered by start time with word-level
// timestamps. Missing or unreadable input yields an empty slice, not an
// error; callers that need text treat empty as halting.
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) []types.TranscriptSegment {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	if _, err := os.Stat(audioPath); err != nil {
		log.Printf("[transcribe] audio not readable: %s", audioPath)
		return nil
	}

	outDir := filepath.Join(wt.tempDir, "whisper_output")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Printf("[transcribe] cannot create output dir: %v", err)
		return nil
	}
	defer os.RemoveAll(outDir)

	args := []string{"-m", "whisper",
		audioPath,
		"--model", wt.modelName,
		"--output_dir", outDir,
		"--output_format", "json",
		"--word_timestamps", "True",
		"--fp16", "False",
	}
	if wt.language != "" {
		args = append(args, "--language", wt.language)
	}

	result, err := wt.runner.Run(ctx, "python", args...)
	if err != nil {
		log.Printf("[transcribe] whisper failed (exit %d): %s", result.ExitCode, head(result.Stderr, 200))
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outDir, base+".json")
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Printf("[transcribe] whisper output missing: %v", err)
		return nil
	}

	segments, err := parseWhisperJSON(raw)
	if err != nil {
		log.Printf("[transcribe] %v", err)
		return nil
	}

	log.Printf("[transcribe] %d segments", len(segments))
	return segments
}

// parseWhisperJSON converts raw whisper JSON into transcript segments.
func parseWhisperJSON(raw []byte) ([]types.TranscriptSegment, error) {
	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse whisper JSON: %w", err)
	}

	segments := make([]types.TranscriptSegment, 0, len(out.Segments))
	for _, seg := range out.Segments {
		s := types.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
		for _, w := range seg.Words {
			s.Words = append(s.Words, types.Word{
				Start: w.Start,
				End:   w.End,
				Text:  strings.TrimSpace(w.Word),
			})
		}
		segments = append(segments, s)
	}
	return segments, nil
}

// FullText joins segment texts into one transcript string.
func FullText(segments []types.TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
