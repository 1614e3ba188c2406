package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/multiforge/clipforge/internal/cleanup"
	"github.com/multiforge/clipforge/internal/compose"
	"github.com/multiforge/clipforge/internal/download"
	"github.com/multiforge/clipforge/internal/handlers"
	"github.com/multiforge/clipforge/internal/jobstore"
	"github.com/multiforge/clipforge/internal/llm"
	"github.com/multiforge/clipforge/internal/moments"
	"github.com/multiforge/clipforge/internal/pipeline"
	"github.com/multiforge/clipforge/internal/queue"
	"github.com/multiforge/clipforge/internal/repurpose"
	"github.com/multiforge/clipforge/internal/scenes"
	"github.com/multiforge/clipforge/internal/stock"
	"github.com/multiforge/clipforge/internal/storage"
	"github.com/multiforge/clipforge/internal/synth"
	"github.com/multiforge/clipforge/internal/transcribe"
	"github.com/multiforge/clipforge/internal/tts"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port          int    `yaml:"port"`
		Host          string `yaml:"host"`
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"server"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		TempDir      string `yaml:"temp_dir"`
		OutputDir    string `yaml:"output_dir"`
		StaticDir    string `yaml:"static_dir"`
		DownloadsDir string `yaml:"downloads_dir"`
		Database     string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Render struct {
		MusicVolume       float64 `yaml:"music_volume"`
		CaptionChunkWords int     `yaml:"caption_chunk_words"`
		CaptionFontSize   int     `yaml:"caption_font_size"`
		FPS               int     `yaml:"fps"`
	} `yaml:"render"`

	Whisper struct {
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
	} `yaml:"whisper"`

	Providers struct {
		LLMModel             string `yaml:"llm_model"`
		LLMBaseURL           string `yaml:"llm_base_url"`
		RunwayPollSeconds    int    `yaml:"runway_poll_seconds"`
		RunwayTimeoutMinutes int    `yaml:"runway_timeout_minutes"`
	} `yaml:"providers"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Limits struct {
		MaxBodySizeMB int `yaml:"max_body_size_mb"`
	} `yaml:"limits"`
}

func main() {
	// Secrets come from the environment; .env is a development convenience.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	config, err := loadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure working directories exist
	if err := cleanup.EnsureDirs(
		config.Storage.TempDir,
		config.Storage.OutputDir,
		config.Storage.StaticDir,
		config.Storage.DownloadsDir,
	); err != nil {
		log.Fatalf("Failed to create working directories: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	// Initialize components
	log.Println("Initializing components...")

	mockMode := os.Getenv("MOCK_MODE") == "true"
	if mockMode {
		log.Println("MOCK_MODE enabled: deterministic scripts, no provider calls")
	}

	llmClient := llm.NewClient(os.Getenv("OPENAI_API_KEY"), config.Providers.LLMBaseURL, config.Providers.LLMModel)
	ttsClient := tts.NewClient(os.Getenv("ELEVENLABS_API_KEY"), "")
	stockClient := stock.NewClient(os.Getenv("PEXELS_API_KEY"), "")
	synthClient := synth.NewClient(
		os.Getenv("RUNWAY_API_KEY"), "",
		time.Duration(config.Providers.RunwayPollSeconds)*time.Second,
		time.Duration(config.Providers.RunwayTimeoutMinutes)*time.Minute,
	)

	sceneRouter := scenes.NewRouter(llmClient, stockClient, synthClient)

	compositor := compose.NewCompositor(config.Storage.TempDir, config.Storage.OutputDir, compose.Options{
		MusicVolume:     config.Render.MusicVolume,
		CaptionWords:    config.Render.CaptionChunkWords,
		CaptionFontSize: config.Render.CaptionFontSize,
		FPS:             config.Render.FPS,
	})

	localStorage := storage.NewLocalStorage(config.Storage.StaticDir, config.Server.PublicBaseURL+"/static")

	// Google Drive client (optional - may fail if credentials not set up)
	var uploader pipeline.ObjectUploader
	if _, err := os.Stat(config.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err := storage.NewDriveClient(
			config.GoogleDrive.CredentialsFile,
			config.GoogleDrive.TokenFile,
			config.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			log.Println("Rendered videos will only be served locally")
		} else {
			log.Println("Google Drive integration enabled")
			uploader = driveClient
		}
	} else {
		log.Println("Google Drive credentials not found - serving locally only")
	}

	// Project database
	projectDB, err := storage.NewProjectDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize project database: %v", err)
	}
	defer projectDB.Close()

	generation := pipeline.NewOrchestrator(
		llmClient, ttsClient, sceneRouter, compositor, localStorage, uploader, projectDB, mockMode)

	transcriber := transcribe.NewWhisperTranscriber(
		config.Whisper.Model, config.Whisper.Language, config.Storage.TempDir)
	downloader := download.NewYtDlpDownloader(config.Storage.DownloadsDir)
	analyzer := moments.NewAnalyzer(llmClient)

	repurposing := repurpose.NewOrchestrator(downloader, transcriber, analyzer, compositor)

	// Job store and worker pool
	store := jobstore.NewMemoryStore()
	workerPool := queue.NewWorkerPool(config.Workers.Count, store, generation, repurposing, localStorage)
	workerPool.Start()

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		config.Cleanup.IntervalMinutes,
		config.Cleanup.MaxAgeHours,
		config.Storage.TempDir,
		config.Storage.DownloadsDir,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxBodySizeMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	createHandler := handlers.NewCreateVideoHandler(store, workerPool)
	repurposeHandler := handlers.NewRepurposeHandler(store, workerPool)
	statusHandler := handlers.NewJobStatusHandler(store)
	streamHandler := handlers.NewProgressStreamHandler(store)

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/create-video", createHandler.Handle)
	app.Post("/repurpose", repurposeHandler.Handle)
	app.Get("/jobs/:id", statusHandler.Handle)

	// WebSocket route
	app.Get("/ws/jobs/:id", websocket.New(streamHandler.Handle))

	// Rendered artifacts
	app.Static("/static", config.Storage.StaticDir)

	// List a user's saved projects
	app.Get("/projects", func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return c.Status(400).JSON(fiber.Map{
				"error": "user_id query parameter is required",
				"code":  "ERR_MISSING_USER",
			})
		}
		projects, err := projectDB.ListProjects(userID, 50)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(projects)
	})

	// Get server logs
	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /create-video - Submit video generation job")
	log.Println("   POST /repurpose    - Repurpose long-form video into clips")
	log.Println("   GET  /jobs/:id     - Poll job status")
	log.Println("   GET  /ws/jobs/:id  - Stream job progress")
	log.Println("   GET  /projects     - List saved projects")
	log.Println("   GET  /static/*     - Rendered videos and clips")
	log.Println("   GET  /logs         - View server logs")
	log.Println("   GET  /health       - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
