//go:build !unix

package transcode

func brokenPipe(error) bool {
	return false
}
