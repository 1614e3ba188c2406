package compose

import (
	"strings"
	"testing"
)

// TestChunkCaptions verifies even time slicing across word chunks.
func TestChunkCaptions(t *testing.T) {
	script := "one two three four five six seven eight nine ten eleven twelve"
	chunks := chunkCaptions(script, 5, 30)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0].Text != "one two three four five" {
		t.Fatalf("chunk 0 = %q", chunks[0].Text)
	}
	if chunks[2].Text != "eleven twelve" {
		t.Fatalf("chunk 2 = %q", chunks[2].Text)
	}
	if chunks[0].Start != 0 || chunks[0].End != 10 {
		t.Fatalf("chunk 0 window = %.1f-%.1f, want 0-10", chunks[0].Start, chunks[0].End)
	}
	if chunks[2].End != 30 {
		t.Fatalf("last chunk end = %.1f, want 30", chunks[2].End)
	}
}

// TestChunkCaptionsEmpty verifies degenerate inputs produce nothing.
func TestChunkCaptionsEmpty(t *testing.T) {
	if got := chunkCaptions("", 5, 30); got != nil {
		t.Fatalf("empty script: %v", got)
	}
	if got := chunkCaptions("words", 0, 30); got != nil {
		t.Fatalf("zero chunk size: %v", got)
	}
	if got := chunkCaptions("words", 5, 0); got != nil {
		t.Fatalf("zero duration: %v", got)
	}
}

// TestWrapSubtitle verifies line wrapping and overflow truncation.
func TestWrapSubtitle(t *testing.T) {
	got := wrapSubtitle("the quick brown fox jumps over the lazy sleeping dog", 20, 2)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), got)
	}
	for _, line := range lines[:1] {
		if len(line) > 21 {
			t.Fatalf("line too long: %q", line)
		}
	}
}

// TestWrapSubtitleLongWord verifies a single oversized word still emits.
func TestWrapSubtitleLongWord(t *testing.T) {
	got := wrapSubtitle("supercalifragilisticexpialidocious", 10, 3)
	if got != "supercalifragilisticexpialidocious" {
		t.Fatalf("got %q", got)
	}
}

func TestEscapeDrawtext(t *testing.T) {
	got := escapeDrawtext(`it's 100%: a,b\c`)
	want := `it\'s 100\%\: a\,b\\c`
	if got != want {
		t.Fatalf("escaped = %q, want %q", got, want)
	}
}

// TestDrawtextFilterWindows verifies the enable window and the whole-clip
// form.
func TestDrawtextFilterWindows(t *testing.T) {
	timed := drawtextFilter("hi", 40, 1.5, 3)
	if !strings.Contains(timed, "enable='between(t,1.500,3.000)'") {
		t.Fatalf("timed filter = %s", timed)
	}
	whole := drawtextFilter("hi", 60, 0, -1)
	if strings.Contains(whole, "enable=") {
		t.Fatalf("whole-clip filter should have no enable window: %s", whole)
	}
}
