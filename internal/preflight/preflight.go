package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/handiism/flac2mp3/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Requirement is an external binary the converter runs.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Requirements lists the binaries named by settings.
func Requirements(settings *config.Settings) []Requirement {
	return []Requirement{
		{Name: "flac", Command: settings.Tools.Flac, Description: "Required for decoding"},
		{Name: "lame", Command: settings.Tools.Lame, Description: "Required for encoding"},
		{Name: "metaflac", Command: settings.Tools.Metaflac, Description: "Required for reading tags"},
	}
}

// CheckBinaries resolves every requirement on PATH.
func CheckBinaries(requirements []Requirement) []Result {
	results := make([]Result, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		if cmd == "" {
			results = append(results, Result{Name: req.Name, Detail: "command not configured"})
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			results = append(results, Result{Name: req.Name, Detail: fmt.Sprintf("binary %q not found", cmd)})
			continue
		}
		results = append(results, Result{Name: req.Name, Passed: true, Detail: resolved})
	}
	return results
}

// CheckOutputRoot verifies that path, or its nearest existing ancestor when
// path has not been created yet, is a writable directory.
func CheckOutputRoot(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	existing, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	info, err := os.Stat(existing)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, existing)}
	}
	if err := checkWritable(existing); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	if existing != path {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (write ok)", path)}
}

func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		if _, err := os.Lstat(current); err == nil {
			return current, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.New("no existing parent directory")
		}
		current = parent
	}
}

// RunAll checks the binaries and, when outputRoot is known, the output root.
func RunAll(settings *config.Settings, outputRoot string) []Result {
	if settings == nil {
		return nil
	}
	results := CheckBinaries(Requirements(settings))
	if outputRoot != "" {
		results = append(results, CheckOutputRoot("Output directory", outputRoot))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
