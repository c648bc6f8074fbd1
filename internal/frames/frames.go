// Package frames locates and decodes the captured screenshots of a race.
package frames

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DefaultPattern matches the capture stage's file names (test_0000.png ...).
const DefaultPattern = "*.png"

// ErrNoFrames is returned when a race directory holds no frames.
var ErrNoFrames = errors.New("no frames found")

// DecodeError reports a frame that could not be read or decoded. It is fatal
// for the whole batch: downstream stages index into a complete series.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode frame %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load opens and decodes one frame.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// SanitizeRaceID turns a race identifier into a safe directory name.
func SanitizeRaceID(raceID string) string {
	id := strings.ReplaceAll(raceID, "/", "-")
	if filepath.Separator != '/' {
		id = strings.ReplaceAll(id, string(filepath.Separator), "-")
	}
	return id
}

// RaceDir returns the frame directory of a race under root.
func RaceDir(root, raceID string) string {
	return filepath.Join(root, SanitizeRaceID(raceID))
}

// List returns the frames in dir matching pattern, in lexicographic order.
// The capture stage zero-pads sequence numbers, so this is temporal order.
func List(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frame directory %s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid frame pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}
	sort.Strings(paths)
	return paths, nil
}
