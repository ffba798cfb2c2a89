// Package model defines the core data structures used throughout
// flac2mp3.
//
// # Plan
//
// A Plan is the output of path resolution: the common ancestor of every
// discovered source file, the output root and one Job per source file.
//
//	plan, err := resolver.New(opts).Resolve([]string{"/music/flac"})
//	for _, job := range plan.Jobs {
//	    fmt.Println(job.Source.Path, "=>", job.Output)
//	}
//
// # Tags
//
// Tags holds the fixed set of metadata fields copied from a FLAC file to
// the MP3 produced from it. A field is either present or absent; values
// are never rewritten.
//
// # Results
//
// Every Job produces exactly one Result. A Report collects the Results of
// a batch run.
package model
