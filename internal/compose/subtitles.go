package compose

import (
	"fmt"
	"strings"
)

// captionChunk is one caption active during [Start, End).
type captionChunk struct {
	Text  string
	Start float64
	End   float64
}

// chunkCaptions splits a script into fixed-size word chunks and distributes
// them evenly across the total duration. Equal time slices, not
// speech-aligned.
func chunkCaptions(script string, wordsPerChunk int, duration float64) []captionChunk {
	words := strings.Fields(script)
	if len(words) == 0 || wordsPerChunk <= 0 || duration <= 0 {
		return nil
	}

	var texts []string
	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		texts = append(texts, strings.Join(words[i:end], " "))
	}

	slice := duration / float64(len(texts))
	chunks := make([]captionChunk, len(texts))
	for i, text := range texts {
		chunks[i] = captionChunk{
			Text:  text,
			Start: float64(i) * slice,
			End:   float64(i+1) * slice,
		}
	}
	return chunks
}

// wrapSubtitle wraps text into at most maxLines lines of at most maxChars
// characters, joined with newlines. Overflow is truncated.
func wrapSubtitle(text string, maxChars, maxLines int) string {
	words := strings.Fields(text)
	var lines []string
	var current []string

	for _, word := range words {
		current = append(current, word)
		if len(strings.Join(current, " ")) > maxChars {
			if len(current) > 1 {
				current = current[:len(current)-1]
				lines = append(lines, strings.Join(current, " "))
				current = []string{word}
			} else {
				lines = append(lines, strings.Join(current, " "))
				current = nil
			}
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// escapeDrawtext escapes text for use inside an ffmpeg drawtext filter.
func escapeDrawtext(text string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return r.Replace(text)
}

// drawtextFilter renders one outlined, centered, bottom-anchored caption.
// A negative end means "for the whole clip" (no enable window).
func drawtextFilter(text string, fontSize int, start, end float64) string {
	f := fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=white:borderw=3:bordercolor=black:x=(w-text_w)/2:y=h*0.8-text_h/2",
		escapeDrawtext(text), fontSize,
	)
	if end >= 0 {
		f += fmt.Sprintf(":enable='between(t,%.3f,%.3f)'", start, end)
	}
	return f
}
