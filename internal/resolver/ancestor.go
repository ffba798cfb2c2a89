package resolver

import (
	"path/filepath"
	"strings"
)

const sep = string(filepath.Separator)

// CommonAncestor returns the deepest directory that contains every entry
// of dirs. Paths must be absolute and clean. The comparison is made on
// whole path segments, so "/a/bc" and "/a/bd" share "/a", not "/a/b".
// An empty result means the paths are on different volumes or dirs is
// empty.
func CommonAncestor(dirs []string) string {
	if len(dirs) == 0 {
		return ""
	}

	vol, common := splitPath(dirs[0])
	for _, dir := range dirs[1:] {
		v, parts := splitPath(dir)
		if v != vol {
			return ""
		}
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	return vol + sep + strings.Join(common, sep)
}

func splitPath(p string) (string, []string) {
	vol := filepath.VolumeName(p)
	rest := strings.Trim(p[len(vol):], sep)
	if rest == "" {
		return vol, nil
	}
	return vol, strings.Split(rest, sep)
}
