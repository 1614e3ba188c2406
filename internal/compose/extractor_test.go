package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/multiforge/clipforge/internal/media"
	"github.com/multiforge/clipforge/internal/types"
)

func fiveMoments() []types.Moment {
	return []types.Moment{
		{Start: 10, End: 40, Score: 95, Hook: "one"},
		{Start: 50, End: 80, Score: 90, Hook: "two"},
		{Start: 100, End: 130, Score: 85, Hook: "three"},
		{Start: 150, End: 180, Score: 80, Hook: "four"},
		{Start: 200, End: 230, Score: 75, Hook: "five"},
	}
}

// TestExtractSkipsFailedClip verifies that one failing extraction out of five
// yields four clips in moment order, numbered by moment position.
func TestExtractSkipsFailedClip(t *testing.T) {
	outDir := t.TempDir()
	runner := probeRunner(t, 0, 300.0, "1920x1080", func(args []string) (media.Result, error) {
		if strings.Contains(args[len(args)-1], "clip_03") {
			return media.Result{Stderr: "encode error", ExitCode: 1}, fmt.Errorf("exit 1")
		}
		return media.Result{}, nil
	})

	c := NewCompositorForTests(t.TempDir(), outDir, Options{}, runner)
	clips := c.Extract(context.Background(), "source.mp4", fiveMoments(), types.FormatVertical)

	if len(clips) != 4 {
		t.Fatalf("got %d clips, want 4", len(clips))
	}
	want := []string{"clip_01.mp4", "clip_02.mp4", "clip_04.mp4", "clip_05.mp4"}
	for i, clip := range clips {
		if filepath.Base(clip) != want[i] {
			t.Fatalf("clip %d = %s, want %s", i, filepath.Base(clip), want[i])
		}
	}
}

// TestExtractClampsWindows verifies moments past the source end are clamped,
// and dropped entirely once nothing playable remains.
func TestExtractClampsWindows(t *testing.T) {
	var extractCalls [][]string
	runner := probeRunner(t, 0, 100.0, "1920x1080", func(args []string) (media.Result, error) {
		extractCalls = append(extractCalls, args)
		return media.Result{}, nil
	})

	moments := []types.Moment{
		{Start: -5, End: 20},   // clamp start to 0
		{Start: 90, End: 140},  // clamp end to 100
		{Start: 120, End: 150}, // fully outside: dropped
	}

	c := NewCompositorForTests(t.TempDir(), t.TempDir(), Options{}, runner)
	clips := c.Extract(context.Background(), "source.mp4", moments, types.FormatVertical)

	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}
	if got := argAfter(extractCalls[0], "-ss"); got != "0.000" {
		t.Fatalf("first clip -ss = %q, want 0.000", got)
	}
	if got := argAfter(extractCalls[1], "-to"); got != "100.000" {
		t.Fatalf("second clip -to = %q, want 100.000", got)
	}
}

// TestExtractBurnsHookSubtitle verifies the hook (or text fallback) is burned
// into the clip.
func TestExtractBurnsHookSubtitle(t *testing.T) {
	var lastArgs []string
	runner := probeRunner(t, 0, 300.0, "1920x1080", func(args []string) (media.Result, error) {
		lastArgs = args
		return media.Result{}, nil
	})

	c := NewCompositorForTests(t.TempDir(), t.TempDir(), Options{}, runner)
	moments := []types.Moment{{Start: 0, End: 30, Text: "fallback words", Hook: ""}}
	c.Extract(context.Background(), "source.mp4", moments, types.FormatVertical)

	vf := argAfter(lastArgs, "-vf")
	if !strings.Contains(vf, "drawtext=text='fallback words'") {
		t.Fatalf("vf missing text fallback subtitle: %s", vf)
	}
}

func TestFormatFilters(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		format        string
		want          []string
	}{
		{"wide to vertical", 1920, 1080, types.FormatVertical,
			[]string{"crop=607:1080", "scale=1080:1920"}},
		{"already vertical", 1080, 1920, types.FormatVertical,
			[]string{"scale=-2:1920"}},
		{"wide to square", 1920, 1080, types.FormatSquare,
			[]string{"crop=1080:1080", "scale=1080:1080"}},
		{"horizontal passthrough", 1920, 1080, types.FormatHorizontal, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formatFilters(tc.width, tc.height, tc.format)
			if len(got) != len(tc.want) {
				t.Fatalf("filters = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("filters = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestClampWindow(t *testing.T) {
	if _, _, ok := clampWindow(120, 150, 100); ok {
		t.Fatal("fully out-of-range window should be rejected")
	}
	start, end, ok := clampWindow(-3, 140, 100)
	if !ok || start != 0 || end != 100 {
		t.Fatalf("clamp = %.0f-%.0f ok=%v, want 0-100", start, end, ok)
	}
}
