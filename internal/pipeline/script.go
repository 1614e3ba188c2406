package pipeline

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/multiforge/clipforge/internal/llm"
)

var (
	boldMarkerRe = regexp.MustCompile(`\*\*[^*]+\*\*`)
	timecodeRe   = regexp.MustCompile(`\([\d\s-]+s\)`)
	orphanColon  = regexp.MustCompile(`:\s*\n`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
	emojiRe      = regexp.MustCompile("[\U0001F300-\U0001FAFF☀-➿]")
)

// CleanForTTS strips stage directions, markdown labels, timecodes, and emoji
// from a script so the speech synthesizer reads only the narration.
func CleanForTTS(script string) string {
	cleaned := boldMarkerRe.ReplaceAllString(script, "")
	cleaned = timecodeRe.ReplaceAllString(cleaned, "")
	cleaned = orphanColon.ReplaceAllString(cleaned, "\n")
	cleaned = blankLinesRe.ReplaceAllString(cleaned, " ")
	cleaned = emojiRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

const extractSystemPrompt = "You are a script extraction expert. Return ONLY the voice script text, nothing else."

const extractPromptHeader = `Extract ONLY the voice script from this prompt.
Return ONLY the text that should be spoken aloud, removing:
- Video creation instructions
- Visual descriptions
- Technical specifications
- Timing markers like (0-4s)
- Section headers like "Intro", "Body", "CTA"
- Emojis and special characters

If there's a clear voice script section, extract only that.
If the entire prompt is a voice script, return it cleaned up.
Return ONLY the speaking text, nothing else.

Prompt:
`

// ExtractVoiceScript asks the reasoning backend for the speakable portion of
// a possibly-annotated prompt. Falls back to the raw prompt on any failure.
func ExtractVoiceScript(ctx context.Context, generator llm.TextGenerator, prompt string) string {
	extracted, err := generator.Complete(ctx, extractSystemPrompt, extractPromptHeader+prompt)
	if err != nil || extracted == "" {
		log.Printf("[pipeline] voice script extraction unavailable, using full prompt: %v", err)
		return prompt
	}
	return extracted
}
