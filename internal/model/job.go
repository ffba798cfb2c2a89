package model

import (
	"path/filepath"
	"strings"
)

// SourceFile is a discovered FLAC file. Path is absolute and clean.
type SourceFile struct {
	Path string
}

// Dir returns the directory containing the source file.
func (s SourceFile) Dir() string {
	return filepath.Dir(s.Path)
}

// Job is the unit of parallel dispatch: one source file and the output
// path it is transcoded to.
type Job struct {
	// Source is the file read by the decoder and the tag reader.
	Source SourceFile

	// Rel is the output path relative to the output root, using the
	// platform separator.
	Rel string

	// Output is the absolute path written by the encoder.
	Output string
}

// OutputDir returns the directory that must exist before the encoder runs.
func (j Job) OutputDir() string {
	return filepath.Dir(j.Output)
}

// String returns "source => output".
func (j Job) String() string {
	return j.Source.Path + " => " + j.Output
}

// Plan is the result of resolving an input set.
type Plan struct {
	// Root is the common ancestor of every source file.
	Root string

	// OutputRoot is the directory the mirrored tree is written under.
	OutputRoot string

	// Jobs holds one entry per source file, sorted by source path.
	Jobs []Job

	// Missing lists user inputs that did not exist.
	Missing []string

	// Skipped lists inputs named explicitly that are not source files
	// and directories that could not be read.
	Skipped []string
}

// Len returns the number of jobs in the plan.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Jobs)
}

// ReplaceExt swaps the final extension of name for ext. A name without an
// extension gets ext appended. ext must include the leading dot.
func ReplaceExt(name, ext string) string {
	base := filepath.Base(name)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return name[:len(name)-len(base)+i] + ext
	}
	return name + ext
}
