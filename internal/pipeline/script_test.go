package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestCleanForTTS verifies stage directions, labels, timecodes, and emoji are
// stripped so only speakable text remains.
func TestCleanForTTS(t *testing.T) {
	script := "**Hook** (0-4s):\nYou won't believe this 🚀\n\n**Body** (4-45s):\nHere is the substance.\n\n**CTA**:\nFollow for more!"
	got := CleanForTTS(script)

	for _, banned := range []string{"**", "(0-4s)", "(4-45s)", "🚀"} {
		if strings.Contains(got, banned) {
			t.Fatalf("cleaned script still contains %q: %q", banned, got)
		}
	}
	for _, kept := range []string{"You won't believe this", "Here is the substance.", "Follow for more!"} {
		if !strings.Contains(got, kept) {
			t.Fatalf("cleaned script lost %q: %q", kept, got)
		}
	}
	if strings.Contains(got, "\n\n") {
		t.Fatalf("blank lines survived: %q", got)
	}
}

// TestCleanForTTSPlainText verifies already-clean text passes through.
func TestCleanForTTSPlainText(t *testing.T) {
	in := "Just a plain sentence."
	if got := CleanForTTS(in); got != in {
		t.Fatalf("got %q, want unchanged", got)
	}
}

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	return s.reply, s.err
}

// TestExtractVoiceScriptFallback verifies the raw prompt survives backend
// failure.
func TestExtractVoiceScriptFallback(t *testing.T) {
	got := ExtractVoiceScript(context.Background(), &stubGenerator{err: errors.New("down")}, "raw prompt")
	if got != "raw prompt" {
		t.Fatalf("got %q, want raw prompt", got)
	}

	got = ExtractVoiceScript(context.Background(), &stubGenerator{reply: "extracted"}, "raw prompt")
	if got != "extracted" {
		t.Fatalf("got %q, want extracted", got)
	}
}
