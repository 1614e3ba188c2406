package storage

import (
	"os"
	"path/filepath"
	"testing"
)

// TestPublishMovesAndMapsURL verifies the file lands in the static dir and
// the URL reflects the base prefix.
func TestPublishMovesAndMapsURL(t *testing.T) {
	staticDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "render.mp4")
	if err := os.WriteFile(src, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	ls := NewLocalStorage(staticDir, "http://localhost:8000/static/")
	url, err := ls.Publish(src)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if url != "http://localhost:8000/static/render.mp4" {
		t.Fatalf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(staticDir, "render.mp4")); err != nil {
		t.Fatalf("published file missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source file should be gone after publish")
	}
}

// TestPublishAsRenames verifies job-scoped names avoid collisions.
func TestPublishAsRenames(t *testing.T) {
	staticDir := t.TempDir()
	srcDir := t.TempDir()

	for _, job := range []string{"job-a", "job-b"} {
		src := filepath.Join(srcDir, "clip_01.mp4")
		if err := os.WriteFile(src, []byte(job), 0644); err != nil {
			t.Fatal(err)
		}
		ls := NewLocalStorage(staticDir, "http://x/static")
		url, err := ls.PublishAs(src, job+"_clip_01.mp4")
		if err != nil {
			t.Fatalf("publish %s: %v", job, err)
		}
		if url != "http://x/static/"+job+"_clip_01.mp4" {
			t.Fatalf("url = %q", url)
		}
	}

	entries, _ := os.ReadDir(staticDir)
	if len(entries) != 2 {
		t.Fatalf("static dir has %d files, want 2", len(entries))
	}
}

func TestURLFor(t *testing.T) {
	ls := NewLocalStorage("static", "http://localhost:8000/static")
	if got := ls.URLFor("a.mp4"); got != "http://localhost:8000/static/a.mp4" {
		t.Fatalf("url = %q", got)
	}
}
