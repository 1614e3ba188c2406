package types

import "time"

// Job status constants
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Job kind constants
const (
	KindGenerate  = "generate"
	KindRepurpose = "repurpose"
)

// Target output formats
const (
	FormatVertical   = "vertical"   // 9:16, 1080x1920
	FormatSquare     = "square"     // 1:1, 1080x1080
	FormatHorizontal = "horizontal" // 16:9, passthrough
)

// Scene source tags
const (
	SourceStock    = "stock"
	SourceGenerate = "generate"
	SourceHybrid   = "hybrid"
)

// Job is the mutable record tracked for every submitted request. The worker
// executing a job is its only writer; status polls read snapshots.
type Job struct {
	ID             string    `json:"job_id"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	Progress       int       `json:"progress"`
	CurrentStep    string    `json:"current_step"`
	Logs           []string  `json:"logs"`
	ResultVideoURL string    `json:"result_video_url,omitempty"`
	ScriptText     string    `json:"script_text,omitempty"`
	Clips          []Clip    `json:"clips,omitempty"`
	SourceTitle    string    `json:"source_title,omitempty"`
	SourceDuration float64   `json:"source_duration,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Word is a word-level sub-segment of a transcript.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptSegment is a time-aligned phrase of transcribed speech.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Moment is a scored time window judged suitable for short-form repurposing.
type Moment struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Score  int     `json:"score"`
	Reason string  `json:"reason"`
	Hook   string  `json:"hook"`
	Text   string  `json:"text,omitempty"`
}

// Scene is a classified piece of a script mapped to a visual source.
type Scene struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Source   string  `json:"source"`
}

// CompositionSpec fully determines one single-video rendering invocation.
type CompositionSpec struct {
	VideoURL   string
	AudioBytes []byte
	ScriptText string
	MusicURL   string
}

// Clip describes one extracted short-form clip.
type Clip struct {
	Path     string  `json:"path"`
	Filename string  `json:"filename"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	Score    int     `json:"score"`
	Hook     string  `json:"hook"`
	Reason   string  `json:"reason"`
	Text     string  `json:"text,omitempty"`
}

// VideoRequest is the create-video submission payload.
type VideoRequest struct {
	Topic       string `json:"topic"`
	Script      string `json:"script,omitempty"`
	VisualStyle string `json:"visual_style"`
	Platform    string `json:"platform"`
	VoiceID     string `json:"voice_id"`
	AvatarImage string `json:"avatar_image,omitempty"`
	BrandColor  string `json:"brand_color,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// RepurposeRequest is the long-form repurposing submission payload.
type RepurposeRequest struct {
	URL         string `json:"url"`
	MaxClips    int    `json:"max_clips"`
	Format      string `json:"format"`
	MinDuration int    `json:"min_duration"`
	MaxDuration int    `json:"max_duration"`
}
