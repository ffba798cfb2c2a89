// Package resolver turns a set of user supplied paths into a transcode
// plan.
//
// Directories are walked recursively; files are kept when their extension
// matches the source format, compared case-insensitively. The deepest
// directory shared by every discovered file (the common ancestor) is the
// template root: each output path is the source path relative to that
// root, placed under the output root with its extension replaced.
//
//	r := resolver.New(resolver.Options{SourceExt: ".flac", TargetExt: ".mp3"})
//	plan, err := r.Resolve([]string{"/a/b/c/x.flac", "/a/b/d/y.flac"})
//	// plan.Root       = "/a/b"
//	// plan.OutputRoot = "/a/b/mp3"
//	// plan.Jobs[0].Output = "/a/b/mp3/c/x.mp3"
//
// Two sources mapping to the same output path are reported as a
// *CollisionError rather than silently overwriting each other.
package resolver
