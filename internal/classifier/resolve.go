package classifier

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ModelFileName is the well-known name of the serialized model.
const ModelFileName = "digit_model.json"

// ErrModelNotFound is returned at startup when no model artifact exists.
// Nothing can be decoded without one.
var ErrModelNotFound = errors.New("classifier model not found")

// Resolver locates the model artifact.
type Resolver struct {
	// WorkDir is searched first. Defaults to the current directory.
	WorkDir string
	// ExecDir is the directory of the running binary. Its assets/ and
	// ../assets/ subdirectories are searched after WorkDir.
	ExecDir string
}

// DefaultResolver resolves relative to the process working directory and
// executable.
func DefaultResolver() Resolver {
	var r Resolver
	if wd, err := os.Getwd(); err == nil {
		r.WorkDir = wd
	}
	if exe, err := os.Executable(); err == nil {
		r.ExecDir = filepath.Dir(exe)
	}
	return r
}

// Candidates lists the paths tried for explicit, in order.
func (r Resolver) Candidates(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	paths := []string{filepath.Join(r.WorkDir, ModelFileName)}
	if r.ExecDir != "" {
		paths = append(paths,
			filepath.Join(r.ExecDir, "assets", ModelFileName),
			filepath.Join(r.ExecDir, "..", "assets", ModelFileName),
		)
	}
	return paths
}

// Resolve returns the first candidate that exists as a regular file.
func (r Resolver) Resolve(explicit string) (string, error) {
	candidates := r.Candidates(explicit)
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrModelNotFound, strings.Join(candidates, ", "))
}

// Load resolves and loads the model.
func (r Resolver) Load(explicit string, logger *log.Logger) (*Model, string, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	path, err := r.Resolve(explicit)
	if err != nil {
		return nil, "", err
	}
	m, err := LoadModel(path)
	if err != nil {
		return nil, "", err
	}
	logger.Printf("Loaded digit model %s (%d labels, %dx%d)", path, len(m.Centroids), m.Width, m.Height)
	return m, path, nil
}
