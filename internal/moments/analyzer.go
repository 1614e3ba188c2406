package moments

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/multiforge/clipforge/internal/llm"
	"github.com/multiforge/clipforge/internal/types"
)

const analyzeSystemPrompt = "You are a short-form viral content expert. You identify the most " +
	"captivating moments in videos. Respond ONLY with valid JSON."

// Analyzer scores transcript windows for short-form repurposing potential.
// Moment discovery is best-effort: every failure mode yields an empty list,
// never an error.
type Analyzer struct {
	generator llm.TextGenerator
}

// NewAnalyzer wires the reasoning backend.
func NewAnalyzer(generator llm.TextGenerator) *Analyzer {
	return &Analyzer{generator: generator}
}

// Analyze returns up to maxClips moments sorted by score descending. Equal
// scores keep the backend's emission order (stable sort, no secondary key).
func (a *Analyzer) Analyze(ctx context.Context, segments []types.TranscriptSegment, maxClips, minDuration, maxDuration int) []types.Moment {
	if len(segments) == 0 {
		return nil
	}

	prompt := buildPrompt(FormatTranscript(segments), maxClips, minDuration, maxDuration)
	reply, err := a.generator.Complete(ctx, analyzeSystemPrompt, prompt)
	if err != nil {
		log.Printf("[moments] analysis unavailable: %v", err)
		return nil
	}

	var parsed []types.Moment
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &parsed); err != nil {
		log.Printf("[moments] unparseable analysis: %v", err)
		return nil
	}

	moments := parsed[:0]
	for _, m := range parsed {
		if m.End <= m.Start {
			log.Printf("[moments] dropping inverted window %.1f-%.1f", m.Start, m.End)
			continue
		}
		m.Text = TextForWindow(segments, m.Start, m.End)
		moments = append(moments, m)
	}

	sort.SliceStable(moments, func(i, j int) bool {
		return moments[i].Score > moments[j].Score
	})

	if len(moments) > maxClips {
		moments = moments[:maxClips]
	}

	log.Printf("[moments] %d moments scored", len(moments))
	for i, m := range moments {
		if i >= 3 {
			break
		}
		log.Printf("[moments]   %d. [%.1fs-%.1fs] score %d: %s", i+1, m.Start, m.End, m.Score, m.Hook)
	}
	return moments
}

// buildPrompt formats the analysis instruction around the transcript.
func buildPrompt(transcript string, maxClips, minDuration, maxDuration int) string {
	return fmt.Sprintf(`Analyze this video transcript and identify the %d MOST VIRAL moments for short-form platforms (TikTok/Shorts).

VIRALITY CRITERIA:
1. Catchy, captivating phrases
2. Revelations or surprises
3. Concrete, practical advice
4. Strong emotional moments
5. Engaging questions
6. Punchy opening (strong hook)
7. Content people want to share

CONSTRAINTS:
- Duration: between %d and %d seconds
- Each moment must stand alone (understandable without context)
- Prefer moments with an attention-grabbing opening

For each moment provide:
1. start: start timestamp in seconds
2. end: end timestamp in seconds
3. score: viral score from 0 to 100
4. reason: why this moment is viral (one sentence)
5. hook: attention-grabbing line (max 10 words)

TRANSCRIPT:
%s

Respond ONLY with a valid JSON array of objects:
[
  {
    "start": 10.5,
    "end": 40.2,
    "score": 85,
    "reason": "Surprising revelation on a trending topic",
    "hook": "You will never believe this secret..."
  }
]`, maxClips, minDuration, maxDuration, transcript)
}

// FormatTranscript renders segments as timestamped lines for the prompt.
func FormatTranscript(segments []types.TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("[%.1fs-%.1fs] %s", seg.Start, seg.End, seg.Text))
	}
	return strings.Join(lines, "\n")
}

// TextForWindow concatenates the text of segments overlapping [start, end).
func TextForWindow(segments []types.TranscriptSegment, start, end float64) string {
	var texts []string
	for _, seg := range segments {
		if seg.Start < end && seg.End > start {
			texts = append(texts, seg.Text)
		}
	}
	return strings.Join(texts, " ")
}
