package introspect

import (
	"os"
	"sort"
)

// DefaultMaxEntries caps ListDir results.
const DefaultMaxEntries = 500

// ListDir lists the non-recursive entries of dir, sorted, with directories
// suffixed by "/". At most max entries are returned (max <= 0 means
// DefaultMaxEntries).
func ListDir(dir string, max int) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if max <= 0 {
		max = DefaultMaxEntries
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > max {
		names = names[:max]
	}
	return names, nil
}
