package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/multiforge/clipforge/internal/llm"
	"github.com/multiforge/clipforge/internal/storage"
	"github.com/multiforge/clipforge/internal/tts"
	"github.com/multiforge/clipforge/internal/types"
)

// Fallback media used when no provider produces anything better.
const (
	PlaceholderVideoURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"
	DefaultMusicURL     = "https://cdn.pixabay.com/download/audio/2022/05/27/audio_1808fbf07a.mp3"
	maxScenes           = 3
)

// ProgressFunc receives monotonically increasing progress with a step label
// and the ordered log lines accumulated so far.
type ProgressFunc func(progress int, step string, logs []string)

// Result is the terminal outcome of one generation job.
type Result struct {
	Status   string
	VideoURL string
	Script   string
	Keywords []string
	Logs     []string
}

// SceneRouter classifies scripts and resolves scenes to visuals.
type SceneRouter interface {
	Classify(ctx context.Context, script string) []types.Scene
	GetVideo(ctx context.Context, scene types.Scene) string
	EstimateCost(scenes []types.Scene) float64
}

// Composer renders the final single-video artifact.
type Composer interface {
	Compose(ctx context.Context, spec types.CompositionSpec) (string, error)
}

// Publisher maps a rendered local file to a caller-resolvable URL.
type Publisher interface {
	Publish(path string) (string, error)
}

// ObjectUploader pushes a rendered file to durable object storage.
type ObjectUploader interface {
	UploadVideo(localPath, contentType string) (string, error)
}

// ProjectSaver persists a completed project record.
type ProjectSaver interface {
	SaveProject(p storage.Project) error
}

// Orchestrator drives the six-stage generation pipeline. Every stage except
// the final encode degrades to a fallback value on failure so jobs reach
// COMPLETED; only a composition fault marks a job FAILED.
type Orchestrator struct {
	generator  llm.TextGenerator
	tts        tts.Synthesizer
	router     SceneRouter
	composer   Composer
	publisher  Publisher
	uploader   ObjectUploader // optional
	projects   ProjectSaver   // optional
	mock       bool
}

// NewOrchestrator wires the pipeline's collaborators. uploader and projects
// may be nil; the corresponding stages degrade gracefully.
func NewOrchestrator(generator llm.TextGenerator, synth tts.Synthesizer, router SceneRouter,
	composer Composer, publisher Publisher, uploader ObjectUploader, projects ProjectSaver, mock bool) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		tts:       synth,
		router:    router,
		composer:  composer,
		publisher: publisher,
		uploader:  uploader,
		projects:  projects,
		mock:      mock,
	}
}

// Run executes the pipeline for one request. It never panics across the
// boundary; the returned Result carries the full ordered log.
func (o *Orchestrator) Run(ctx context.Context, jobID string, req types.VideoRequest, progress ProgressFunc) Result {
	var logs []string
	addLog := func(format string, args ...interface{}) {
		line := fmt.Sprintf(format, args...)
		logs = append(logs, line)
		log.Printf("[pipeline] %s", line)
	}

	topic := req.Topic
	if topic == "" {
		topic = "No Topic"
	}
	addLog("Job started (mock=%v, user=%s)", o.mock, req.UserID)

	// Stage 1: script — never halts.
	script := o.resolveScript(ctx, req, topic, addLog, progress, logs)
	progress(10, "Script ready", logs)

	// Stage 2: visual keyword extraction — degrades to the topic's first word.
	keywords := o.extractKeywords(ctx, script, req.VisualStyle, topic, addLog)
	progress(20, "Visual analysis", logs)

	// Stage 3: narration — failure leaves audio unset; composition is then
	// skipped and the result degrades to a visual-only artifact.
	audio := o.synthesizeNarration(ctx, req, script, addLog)
	progress(40, "Voice synthesis", logs)

	// Stage 4: visual acquisition — partial results are acceptable.
	videos := o.acquireVisuals(ctx, script, addLog)
	progress(60, "Visual acquisition", logs)

	// Stage 5: composition — the only stage allowed to fail the job.
	progress(80, "Final render", logs)
	finalURL, err := o.composeFinal(ctx, videos, audio, script, addLog)
	if err != nil {
		addLog("Render failed: %v", err)
		return Result{Status: types.StatusFailed, Script: script, Keywords: keywords, Logs: logs}
	}

	// Stage 6: persistence — best-effort.
	o.persist(jobID, req, topic, script, finalURL, keywords, addLog)
	progress(100, "Done", logs)

	return Result{
		Status:   types.StatusCompleted,
		VideoURL: finalURL,
		Script:   script,
		Keywords: keywords,
		Logs:     logs,
	}
}

// resolveScript uses the provided script verbatim or synthesizes one,
// falling back to a deterministic placeholder.
func (o *Orchestrator) resolveScript(ctx context.Context, req types.VideoRequest, topic string,
	addLog func(string, ...interface{}), progress ProgressFunc, logs []string) string {

	if req.Script != "" {
		addLog("Script provided by caller.")
		return req.Script
	}

	addLog("Generating script for topic: %s", topic)
	progress(5, "Writing script", logs)
	if o.mock {
		return fmt.Sprintf("This is a test script about %s.", topic)
	}

	system := "You are a viral scriptwriter for short-form video. Write a 3-part script " +
		"(Hook, Body, CTA) about the given topic. Keep it under 60 seconds spoken. " +
		"Return ONLY the text, no markdown headers."
	script, err := o.generator.Complete(ctx, system, topic)
	if err != nil || script == "" {
		addLog("Script generation failed, using fallback: %v", err)
		return fmt.Sprintf("Script fallback %s", topic)
	}
	addLog("Script generated.")
	return script
}

// extractKeywords derives three concrete stock-search terms from the script.
func (o *Orchestrator) extractKeywords(ctx context.Context, script, style, topic string,
	addLog func(string, ...interface{})) []string {

	fallback := []string{firstWord(topic)}
	if o.mock {
		return fallback
	}

	system := "You are a video director. Extract 3 CONCRETE, VISUAL search terms from this " +
		"script for stock footage. Focus on emotions, actions, or objects that can be filmed. " +
		"Avoid abstract concepts. Return ONLY the terms separated by commas, in English."
	reply, err := o.generator.Complete(ctx, system, fmt.Sprintf("Script: %s\nStyle: %s", script, style))
	if err != nil {
		addLog("Keyword extraction failed, using topic fallback: %v", err)
		return fallback
	}

	var keywords []string
	for _, k := range strings.Split(reply, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return fallback
	}
	addLog("Keywords: %s", strings.Join(keywords, ", "))
	return keywords
}

// synthesizeNarration extracts the speakable script and runs TTS. Returns
// nil audio on any failure.
func (o *Orchestrator) synthesizeNarration(ctx context.Context, req types.VideoRequest, script string,
	addLog func(string, ...interface{})) []byte {

	if o.mock {
		return nil
	}

	source := req.Topic
	if source == "" {
		source = script
	}
	voiceScript := ExtractVoiceScript(ctx, o.generator, source)
	addLog("Voice script extracted: %d characters", len(voiceScript))

	text := CleanForTTS(voiceScript)
	audio, err := o.tts.Synthesize(ctx, text, req.VoiceID)
	if err != nil {
		addLog("Narration synthesis failed, continuing without audio: %v", err)
		return nil
	}
	addLog("Narration audio ready (%d bytes).", len(audio))
	return audio
}

// acquireVisuals classifies up to maxScenes scenes and fetches each in
// order; fewer acquisitions than scenes still proceeds.
func (o *Orchestrator) acquireVisuals(ctx context.Context, script string,
	addLog func(string, ...interface{})) []string {

	if o.mock {
		return nil
	}

	scenes := o.router.Classify(ctx, script)
	addLog("%d scenes classified.", len(scenes))
	if cost := o.router.EstimateCost(scenes); cost > 0 {
		addLog("Estimated synthesis cost: $%.2f", cost)
	}

	if len(scenes) > maxScenes {
		scenes = scenes[:maxScenes]
	}

	var videos []string
	for i, scene := range scenes {
		addLog("Scene %d: %s (%s)", i+1, head(scene.Text, 40), scene.Source)
		if url := o.router.GetVideo(ctx, scene); url != "" {
			videos = append(videos, url)
			addLog("Scene %d visual acquired.", i+1)
		} else {
			addLog("Scene %d yielded no visual.", i+1)
		}
	}
	return videos
}

// composeFinal renders the deliverable. Without narration the first visual
// (or the placeholder) becomes the result unmodified.
func (o *Orchestrator) composeFinal(ctx context.Context, videos []string, audio []byte, script string,
	addLog func(string, ...interface{})) (string, error) {

	source := PlaceholderVideoURL
	if len(videos) > 0 {
		source = videos[0]
	}

	if len(audio) == 0 {
		addLog("No narration audio; visual passes through as final result.")
		return source, nil
	}

	addLog("Rendering final video with captions and music...")
	localPath, err := o.composer.Compose(ctx, types.CompositionSpec{
		VideoURL:   source,
		AudioBytes: audio,
		ScriptText: CleanForTTS(script),
		MusicURL:   DefaultMusicURL,
	})
	if err != nil {
		return "", err
	}

	url, err := o.publisher.Publish(localPath)
	if err != nil {
		return "", fmt.Errorf("publish rendered video: %w", err)
	}
	addLog("Video rendered: %s", url)

	if o.uploader != nil {
		if driveURL, err := o.uploader.UploadVideo(localPath, "video/mp4"); err != nil {
			addLog("Durable upload failed, keeping local URL: %v", err)
		} else {
			addLog("Uploaded to durable storage.")
			url = driveURL
		}
	}
	return url, nil
}

// persist writes the project record when both a store and a user exist.
func (o *Orchestrator) persist(jobID string, req types.VideoRequest, topic, script, videoURL string,
	keywords []string, addLog func(string, ...interface{})) {

	if o.projects == nil || req.UserID == "" {
		addLog("No user or project store; skipping persistence.")
		return
	}

	addLog("Saving project...")
	err := o.projects.SaveProject(storage.Project{
		JobID:       jobID,
		UserID:      req.UserID,
		Name:        topic,
		Description: head(script, 100),
		VideoURL:    videoURL,
		Script:      script,
		Style:       req.VisualStyle,
		Keywords:    keywords,
	})
	if err != nil {
		addLog("Project save failed: %v", err)
		return
	}
	addLog("Project saved.")
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return "video"
}
