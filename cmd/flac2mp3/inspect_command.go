package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/flac2mp3/internal/audio"
	"github.com/handiism/flac2mp3/internal/model"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.mp3...",
		Short: "Show the tags written to converted files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				tags, err := audio.ReadID3(path)
				if err != nil {
					return err
				}
				artwork, err := audio.HasArtwork(path)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(model.TagFields)+1)
				for _, f := range model.TagFields {
					if v, ok := tags.Get(f); ok {
						rows = append(rows, []string{string(f), v})
					}
				}
				rows = append(rows, []string{"ARTWORK", yesNo(artwork)})

				fmt.Fprintln(out, path)
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			}
			return nil
		},
	}
}
