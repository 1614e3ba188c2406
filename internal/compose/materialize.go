package compose

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// materializeVideo resolves a video reference to a local file. Remote URLs
// are downloaded into tempDir; local paths pass through unchanged. The
// second return reports whether the caller owns (and must remove) the file.
func materializeVideo(ref, tempDir, extension string) (string, bool, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		if _, err := os.Stat(ref); err != nil {
			return "", false, fmt.Errorf("source video not readable: %w", err)
		}
		return ref, false, nil
	}

	path, err := downloadFile(ref, tempDir, extension)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

// downloadFile streams a URL into a fresh temp file.
func downloadFile(url, tempDir, extension string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	path := filepath.Join(tempDir, uuid.NewString()+extension)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// writeTempFile persists bytes (narration audio) to a fresh temp file.
func writeTempFile(data []byte, tempDir, extension string) (string, error) {
	path := filepath.Join(tempDir, uuid.NewString()+extension)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return path, nil
}
