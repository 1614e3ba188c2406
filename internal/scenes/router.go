package scenes

import (
	"context"
	"encoding/json"
	"log"

	"github.com/multiforge/clipforge/internal/llm"
	"github.com/multiforge/clipforge/internal/stock"
	"github.com/multiforge/clipforge/internal/synth"
	"github.com/multiforge/clipforge/internal/types"
)

const classifySystemPrompt = "You are a video production expert. Return ONLY valid JSON, no markdown."

const classifyPrompt = `Analyze this video script and break it into 3-5 visual scenes.
For each scene, determine if it can be found as stock footage ("stock") or needs AI generation ("generate").

Use "stock" for:
- Generic scenes: nature, cities, people, common objects
- Simple actions: walking, working, eating
- B-roll footage

Use "generate" for:
- Abstract concepts: success, innovation, dreams
- Specific scenarios not available in stock
- Unique or impossible scenes

Return ONLY a JSON array like this:
[
    {"text": "sunrise over ocean", "duration": 5, "source": "stock"},
    {"text": "person transforming dreams into reality", "duration": 8, "source": "generate"},
    {"text": "team working together", "duration": 7, "source": "stock"}
]

Script:
`

// Router classifies a script into scenes and resolves each scene to a video
// reference, cascading across the stock and synthesis providers.
type Router struct {
	generator llm.TextGenerator
	stock     stock.Searcher
	synth     synth.Generator
}

// NewRouter wires the router's collaborators.
func NewRouter(generator llm.TextGenerator, stockSearcher stock.Searcher, synthGen synth.Generator) *Router {
	return &Router{
		generator: generator,
		stock:     stockSearcher,
		synth:     synthGen,
	}
}

// Classify breaks a script into visual scenes. It never returns an empty
// list: any backend failure falls back to a single stock scene covering the
// start of the script.
func (r *Router) Classify(ctx context.Context, script string) []types.Scene {
	reply, err := r.generator.Complete(ctx, classifySystemPrompt, classifyPrompt+script)
	if err != nil {
		log.Printf("[scenes] classification unavailable, using fallback: %v", err)
		return fallbackScenes(script)
	}

	var scenes []types.Scene
	if err := json.Unmarshal([]byte(llm.StripCodeFence(reply)), &scenes); err != nil {
		log.Printf("[scenes] unparseable classification, using fallback: %v", err)
		return fallbackScenes(script)
	}
	if len(scenes) == 0 {
		return fallbackScenes(script)
	}
	return scenes
}

// fallbackScenes treats the whole script as one stock scene.
func fallbackScenes(script string) []types.Scene {
	text := script
	if len(text) > 200 {
		text = text[:200]
	}
	return []types.Scene{{
		Text:     text,
		Duration: 10,
		Source:   types.SourceStock,
	}}
}

// attempt is one provider in a scene's cascade. Empty url with nil error
// means the provider had nothing; the cascade moves on.
type attempt struct {
	name string
	try  func(ctx context.Context, scene types.Scene) (string, error)
}

// GetVideo resolves a scene to a video URL, trying providers in the order
// the scene's source tag dictates. Returns "" when every provider came up
// empty.
func (r *Router) GetVideo(ctx context.Context, scene types.Scene) string {
	for _, a := range r.attempts(scene) {
		url, err := a.try(ctx, scene)
		if err != nil {
			log.Printf("[scenes] %s provider failed for %q: %v", a.name, head(scene.Text, 40), err)
			continue
		}
		if url != "" {
			return url
		}
		log.Printf("[scenes] %s provider empty for %q", a.name, head(scene.Text, 40))
	}
	return ""
}

// attempts builds the ordered provider cascade for a scene's source tag.
func (r *Router) attempts(scene types.Scene) []attempt {
	stockAttempt := attempt{name: "stock", try: r.tryStock}
	synthAttempt := attempt{name: "synthesis", try: r.trySynth}

	switch scene.Source {
	case types.SourceGenerate:
		return []attempt{synthAttempt, stockAttempt}
	case types.SourceHybrid:
		return []attempt{stockAttempt, synthAttempt}
	default: // stock
		return []attempt{stockAttempt}
	}
}

func (r *Router) tryStock(ctx context.Context, scene types.Scene) (string, error) {
	return r.stock.Search(ctx, scene.Text)
}

func (r *Router) trySynth(ctx context.Context, scene types.Scene) (string, error) {
	duration := scene.Duration
	if duration <= 0 {
		duration = 5
	}
	return r.synth.Generate(ctx, scene.Text, duration, "9:16")
}

// EstimateCost sums synthesis cost over generate-tagged scenes; stock scenes
// are free.
func (r *Router) EstimateCost(scenes []types.Scene) float64 {
	total := 0.0
	for _, scene := range scenes {
		if scene.Source == types.SourceGenerate {
			duration := scene.Duration
			if duration <= 0 {
				duration = 5
			}
			total += r.synth.EstimateCost(duration)
		}
	}
	return total
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
