package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestSearchPrefersHD verifies the hd rendition wins over others.
func TestSearchPrefersHD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "pexels-key" {
			t.Errorf("auth = %q", got)
		}
		if got := r.URL.Query().Get("orientation"); got != "portrait" {
			t.Errorf("orientation = %q", got)
		}
		w.Write([]byte(`{"videos":[{"video_files":[
			{"quality":"sd","link":"https://cdn/sd.mp4"},
			{"quality":"hd","link":"https://cdn/hd.mp4"}
		]}]}`))
	}))
	defer srv.Close()

	c := NewClient("pexels-key", srv.URL)
	link, err := c.Search(context.Background(), "sunrise ocean")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if link != "https://cdn/hd.mp4" {
		t.Fatalf("link = %q, want hd rendition", link)
	}
}

// TestSearchFallsBackToFirstFile verifies selection without an hd rendition.
func TestSearchFallsBackToFirstFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"videos":[{"video_files":[{"quality":"uhd","link":"https://cdn/uhd.mp4"}]}]}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	link, err := c.Search(context.Background(), "city")
	if err != nil || link != "https://cdn/uhd.mp4" {
		t.Fatalf("link = %q, err = %v", link, err)
	}
}

// TestSearchEmptyIsNotAnError verifies "nothing found" is a non-error "".
func TestSearchEmptyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"videos":[]}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	link, err := c.Search(context.Background(), "nonexistent thing")
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if link != "" {
		t.Fatalf("link = %q, want empty", link)
	}
}

// TestSearchWithoutKey verifies the no-credential fast path.
func TestSearchWithoutKey(t *testing.T) {
	c := NewClient("", "")
	if _, err := c.Search(context.Background(), "x"); err != ErrNoAPIKey {
		t.Fatalf("err = %v, want %v", err, ErrNoAPIKey)
	}
}
