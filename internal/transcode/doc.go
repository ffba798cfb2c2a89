// Package transcode runs the decode → encode → tag pipeline for every job
// of a plan.
//
// # Dispatcher
//
// The Dispatcher owns a worker pool for the lifetime of one Run call:
//
//  1. Create the output directory
//  2. Start the encoder reading from a pipe
//  3. Start the decoder writing into the same pipe
//  4. Wait for both; a non-zero exit fails the job
//  5. Read the Tag Set from the source and write it to the output
//  6. Optionally embed cover art and write playlists
//
// # Basic Usage
//
//	d := transcode.NewDispatcher(transcode.DefaultConfig(), transcode.WithLogger(logger))
//	report := d.Run(ctx, plan.Jobs)
//	if !report.OK() {
//	    for _, res := range report.Failed() {
//	        fmt.Println(res.Stage, res.Job.Source.Path, res.Err)
//	    }
//	}
//
// # Concurrency
//
// Config.Workers jobs run at once (one per CPU by default). A failed job
// never cancels the others; only cancelling ctx stops the batch.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent,
// and counters can be polled with Progress.
package transcode
