package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/handiism/flac2mp3/internal/model"
)

// DefaultOutputSubdir is the directory created under the common ancestor
// when no output root is given.
const DefaultOutputSubdir = "mp3"

var (
	// ErrNoSources is returned when no input yields a source file.
	ErrNoSources = errors.New("no source files found")

	// ErrInputNotFound marks a user input that does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrNoCommonAncestor is returned when sources live on different
	// volumes.
	ErrNoCommonAncestor = errors.New("source files share no common ancestor")
)

// Options configures a Resolver. Zero values fall back to FLAC in, MP3
// out, written under DefaultOutputSubdir.
type Options struct {
	SourceExt string
	TargetExt string

	// OutputRoot is where the mirrored tree is written. Empty means
	// <common ancestor>/<OutputSubdir>.
	OutputRoot   string
	OutputSubdir string

	// FoldCase treats output paths differing only by letter case as
	// collisions, for case-insensitive filesystems.
	FoldCase bool
}

// Resolver discovers source files and maps them to output paths.
type Resolver struct {
	opts Options
}

// New creates a Resolver, filling defaults for empty options.
func New(opts Options) *Resolver {
	if opts.SourceExt == "" {
		opts.SourceExt = ".flac"
	}
	if opts.TargetExt == "" {
		opts.TargetExt = ".mp3"
	}
	if opts.OutputSubdir == "" {
		opts.OutputSubdir = DefaultOutputSubdir
	}
	if opts.OutputRoot != "" {
		if abs, err := filepath.Abs(opts.OutputRoot); err == nil {
			opts.OutputRoot = abs
		}
	}
	return &Resolver{opts: opts}
}

// Matches reports whether path has the source extension.
func (r *Resolver) Matches(path string) bool {
	return strings.EqualFold(filepath.Ext(path), r.opts.SourceExt)
}

// Discovery is the raw result of walking the inputs.
type Discovery struct {
	Sources []model.SourceFile
	Missing []string
	Skipped []string
}

// Discover expands inputs into source files. Sources are deduplicated by
// absolute path and sorted. Missing inputs and unreadable directories are
// recorded rather than aborting the walk.
func (r *Resolver) Discover(inputs []string) (*Discovery, error) {
	d := &Discovery{}
	seen := make(map[string]bool)

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		d.Sources = append(d.Sources, model.SourceFile{Path: path})
	}

	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", input, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				d.Missing = append(d.Missing, input)
				continue
			}
			return nil, fmt.Errorf("stat %q: %w", input, err)
		}

		if !info.IsDir() {
			if r.Matches(abs) {
				add(abs)
			} else {
				d.Skipped = append(d.Skipped, abs)
			}
			continue
		}

		r.walk(abs, add, d)
	}

	sort.Slice(d.Sources, func(i, j int) bool {
		return d.Sources[i].Path < d.Sources[j].Path
	})
	return d, nil
}

// walk adds the matching files under dir. Unreadable directories,
// including dir itself, are recorded in d.Skipped.
func (r *Resolver) walk(dir string, add func(string), d *Discovery) {
	// WalkDir does not follow a symlinked root unless it ends in a
	// separator. Paths below it are cleaned, so sources keep the link path.
	root := dir
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.Skipped = append(d.Skipped, filepath.Clean(path))
			if path == root || (entry != nil && entry.IsDir()) {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if r.opts.OutputRoot != "" && path != root && path == r.opts.OutputRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if r.Matches(path) {
			add(path)
		}
		return nil
	})
}

// Resolve discovers the source files and builds the plan. It fails with
// ErrNoSources when nothing was found and with a *CollisionError when two
// sources would be written to the same output path.
func (r *Resolver) Resolve(inputs []string) (*model.Plan, error) {
	d, err := r.Discover(inputs)
	if err != nil {
		return nil, err
	}
	if len(d.Sources) == 0 {
		if len(d.Missing) > 0 {
			return nil, fmt.Errorf("%w: %w: %s", ErrNoSources, ErrInputNotFound, strings.Join(d.Missing, ", "))
		}
		return nil, ErrNoSources
	}

	dirs := make([]string, len(d.Sources))
	for i, src := range d.Sources {
		dirs[i] = src.Dir()
	}
	root := CommonAncestor(dirs)
	if root == "" {
		return nil, ErrNoCommonAncestor
	}

	outRoot := r.opts.OutputRoot
	if outRoot == "" {
		outRoot = filepath.Join(root, r.opts.OutputSubdir)
	}

	plan := &model.Plan{
		Root:       root,
		OutputRoot: outRoot,
		Jobs:       make([]model.Job, 0, len(d.Sources)),
		Missing:    d.Missing,
		Skipped:    d.Skipped,
	}

	claims := newClaimSet(r.opts.FoldCase)
	for _, src := range d.Sources {
		job, err := r.mapJob(src, root, outRoot)
		if err != nil {
			return nil, err
		}
		if err := claims.claim(job); err != nil {
			return nil, err
		}
		plan.Jobs = append(plan.Jobs, job)
	}
	return plan, nil
}

func (r *Resolver) mapJob(src model.SourceFile, root, outRoot string) (model.Job, error) {
	rel, err := filepath.Rel(root, src.Path)
	if err != nil {
		return model.Job{}, fmt.Errorf("relative path of %q: %w", src.Path, err)
	}
	rel = model.ReplaceExt(rel, r.opts.TargetExt)
	return model.Job{
		Source: src,
		Rel:    rel,
		Output: filepath.Join(outRoot, rel),
	}, nil
}
