//go:build !unix

package preflight

import "os"

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".flac2mp3-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
