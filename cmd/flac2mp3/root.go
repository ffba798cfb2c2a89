package main

import (
	"slices"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool

	inputs    []string
	output    string
	jobs      int
	dryRun    bool
	playlist  bool
	noArtwork bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	ctx := newCommandContext(opts)

	rootCmd := &cobra.Command{
		Use:           "flac2mp3 [paths...]",
		Short:         "Convert FLAC files to MP3, mirroring the directory tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := append(slices.Clone(opts.inputs), args...)
			if len(inputs) == 0 {
				return cmd.Help()
			}
			return runConvert(cmd, ctx, inputs)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format (console, json)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Show verbose output")

	f := rootCmd.Flags()
	f.StringArrayVarP(&opts.inputs, "input", "i", nil, "File or directory to convert (repeatable)")
	f.StringVarP(&opts.output, "output", "o", "", "Output directory (default <common ancestor>/mp3)")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "Concurrent conversions (default one per CPU)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "List planned conversions without running them")
	f.BoolVar(&opts.playlist, "playlist", false, "Write a playlist into each output directory")
	f.BoolVar(&opts.noArtwork, "no-artwork", false, "Do not embed cover art")

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newInspectCommand())

	return rootCmd
}
