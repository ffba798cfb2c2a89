package model

import (
	"sort"
	"time"
)

// Stage identifies the step of a job that produced a failure.
type Stage int

const (
	// StageNone means the job succeeded.
	StageNone Stage = iota

	// StagePrepare covers creating the output directory and starting
	// the external tools.
	StagePrepare

	// StageDecode is the decoder exiting non-zero.
	StageDecode

	// StageEncode is the encoder exiting non-zero.
	StageEncode

	// StageTags is reading tags from the source or writing them to the
	// output. The audio payload is usable when a job fails here.
	StageTags
)

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "ok"
	case StagePrepare:
		return "prepare"
	case StageDecode:
		return "decode"
	case StageEncode:
		return "encode"
	case StageTags:
		return "tags"
	default:
		return "unknown"
	}
}

// Result is the outcome of one job.
type Result struct {
	Job      Job
	Stage    Stage
	Err      error
	Duration time.Duration

	// Tags holds the fields written to the output.
	Tags Tags

	// Length is the playing time of the source. Zero means unknown.
	Length time.Duration

	// Warnings collects non-fatal problems, such as missing cover art.
	Warnings []string
}

// OK reports whether the job succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report collects the results of a batch run.
type Report struct {
	Results []Result
	Started time.Time
	Elapsed time.Duration
}

// Total returns the number of attempted jobs.
func (r *Report) Total() int {
	return len(r.Results)
}

// Succeeded returns the number of jobs that succeeded.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the failed results sorted by source path.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	sort.Slice(failed, func(i, j int) bool {
		return failed[i].Job.Source.Path < failed[j].Job.Source.Path
	})
	return failed
}

// OK reports whether every job succeeded.
func (r *Report) OK() bool {
	return r.Succeeded() == r.Total()
}

// Outputs returns the output paths of successful jobs sorted by path.
func (r *Report) Outputs() []string {
	var out []string
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res.Job.Output)
		}
	}
	sort.Strings(out)
	return out
}
