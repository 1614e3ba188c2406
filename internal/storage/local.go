package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps rendered artifacts under a directory served by the
// HTTP layer at /static, and maps file paths to public URLs.
type LocalStorage struct {
	staticDir string
	baseURL   string
}

// NewLocalStorage creates a local artifact store. baseURL is the externally
// reachable prefix for the static mount, e.g. http://localhost:8000/static.
func NewLocalStorage(staticDir, baseURL string) *LocalStorage {
	return &LocalStorage{
		staticDir: staticDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Publish moves a rendered file into the static directory and returns its
// public URL.
func (ls *LocalStorage) Publish(path string) (string, error) {
	return ls.PublishAs(path, filepath.Base(path))
}

// PublishAs is Publish with an explicit destination name, used when the
// source filename is not unique across jobs.
func (ls *LocalStorage) PublishAs(path, name string) (string, error) {
	dest := filepath.Join(ls.staticDir, name)

	if err := os.MkdirAll(ls.staticDir, 0755); err != nil {
		return "", fmt.Errorf("create static dir: %w", err)
	}
	if err := os.Rename(path, dest); err != nil {
		// Rename fails across filesystems; fall back to copy.
		if err := copyFile(path, dest); err != nil {
			return "", fmt.Errorf("publish %s: %w", name, err)
		}
		os.Remove(path)
	}
	return ls.URLFor(name), nil
}

// URLFor maps a published filename to its public URL.
func (ls *LocalStorage) URLFor(name string) string {
	return ls.baseURL + "/" + name
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
