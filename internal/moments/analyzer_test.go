package moments

import (
	"context"
	"errors"
	"testing"

	"github.com/multiforge/clipforge/internal/types"
)

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	return f.reply, f.err
}

func segs() []types.TranscriptSegment {
	return []types.TranscriptSegment{
		{Start: 0, End: 10, Text: "intro"},
		{Start: 10, End: 30, Text: "big reveal"},
		{Start: 30, End: 60, Text: "practical advice"},
		{Start: 60, End: 90, Text: "closing"},
	}
}

// TestAnalyzeSortsByScoreDescending verifies descending order with a stable
// tie-break: equal scores keep emission order.
func TestAnalyzeSortsByScoreDescending(t *testing.T) {
	gen := &fakeGenerator{reply: `[
		{"start": 0, "end": 10, "score": 60, "hook": "first sixty"},
		{"start": 10, "end": 30, "score": 90, "hook": "ninety"},
		{"start": 30, "end": 60, "score": 60, "hook": "second sixty"}
	]`}

	got := NewAnalyzer(gen).Analyze(context.Background(), segs(), 5, 15, 60)
	if len(got) != 3 {
		t.Fatalf("got %d moments, want 3", len(got))
	}
	if got[0].Score != 90 {
		t.Fatalf("top score = %d, want 90", got[0].Score)
	}
	if got[1].Hook != "first sixty" || got[2].Hook != "second sixty" {
		t.Fatalf("tie order not stable: %q then %q", got[1].Hook, got[2].Hook)
	}
}

// TestAnalyzeTruncatesToMaxClips verifies the cap after sorting.
func TestAnalyzeTruncatesToMaxClips(t *testing.T) {
	gen := &fakeGenerator{reply: `[
		{"start": 0, "end": 10, "score": 10},
		{"start": 10, "end": 30, "score": 80},
		{"start": 30, "end": 60, "score": 50}
	]`}

	got := NewAnalyzer(gen).Analyze(context.Background(), segs(), 2, 15, 60)
	if len(got) != 2 {
		t.Fatalf("got %d moments, want 2", len(got))
	}
	if got[0].Score != 80 || got[1].Score != 50 {
		t.Fatalf("kept scores %d,%d; want 80,50", got[0].Score, got[1].Score)
	}
}

// TestAnalyzeBackfillsText verifies moment text comes from overlapping
// segments.
func TestAnalyzeBackfillsText(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"start": 25, "end": 45, "score": 70}]`}

	got := NewAnalyzer(gen).Analyze(context.Background(), segs(), 5, 15, 60)
	if len(got) != 1 {
		t.Fatalf("got %d moments, want 1", len(got))
	}
	if got[0].Text != "big reveal practical advice" {
		t.Fatalf("text = %q", got[0].Text)
	}
}

// TestAnalyzeDropsInvertedWindows verifies end<=start moments are discarded.
func TestAnalyzeDropsInvertedWindows(t *testing.T) {
	gen := &fakeGenerator{reply: `[
		{"start": 30, "end": 30, "score": 99},
		{"start": 40, "end": 20, "score": 95},
		{"start": 10, "end": 30, "score": 50}
	]`}

	got := NewAnalyzer(gen).Analyze(context.Background(), segs(), 5, 15, 60)
	if len(got) != 1 || got[0].Score != 50 {
		t.Fatalf("got %v, want only the valid window", got)
	}
}

// TestAnalyzeDegradesToEmpty verifies all failure modes return nil, never
// an error or panic.
func TestAnalyzeDegradesToEmpty(t *testing.T) {
	a := NewAnalyzer(&fakeGenerator{err: errors.New("backend down")})
	if got := a.Analyze(context.Background(), segs(), 5, 15, 60); got != nil {
		t.Fatalf("backend failure: got %v, want nil", got)
	}

	a = NewAnalyzer(&fakeGenerator{reply: "I could not find any moments, sorry!"})
	if got := a.Analyze(context.Background(), segs(), 5, 15, 60); got != nil {
		t.Fatalf("unparseable reply: got %v, want nil", got)
	}

	a = NewAnalyzer(&fakeGenerator{reply: "[]"})
	if got := a.Analyze(context.Background(), nil, 5, 15, 60); got != nil {
		t.Fatalf("no segments: got %v, want nil", got)
	}
}

// TestAnalyzeStripsCodeFence verifies fenced JSON replies still parse.
func TestAnalyzeStripsCodeFence(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n[{\"start\": 10, \"end\": 30, \"score\": 75}]\n```"}

	got := NewAnalyzer(gen).Analyze(context.Background(), segs(), 5, 15, 60)
	if len(got) != 1 || got[0].Score != 75 {
		t.Fatalf("got %v, want one moment scored 75", got)
	}
}

func TestTextForWindow(t *testing.T) {
	// Touching boundaries do not overlap; [10,30) excludes the segment
	// ending exactly at 10 and the one starting exactly at 30.
	if got := TextForWindow(segs(), 10, 30); got != "big reveal" {
		t.Fatalf("window [10,30) = %q", got)
	}
	if got := TextForWindow(segs(), 95, 120); got != "" {
		t.Fatalf("out-of-range window = %q, want empty", got)
	}
}
