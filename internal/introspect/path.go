package introspect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxExecutables caps PathExecutables results.
const DefaultMaxExecutables = 500

const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

// PathEnv holds the inputs of a PATH scan.
type PathEnv struct {
	GOOS    string
	Path    string // PATH value
	PathExt string // PATHEXT value, Windows only
}

// PathExecutables scans each directory of env.Path and returns the distinct
// executable names it finds, sorted and capped at max. On Windows a file is
// executable when its extension is listed in PATHEXT, and the extension is
// stripped from the reported name. Elsewhere the execute bit decides.
// Unreadable directories are skipped.
func PathExecutables(env PathEnv, max int) []string {
	if max <= 0 {
		max = DefaultMaxExecutables
	}
	windows := env.GOOS == "windows"
	sep := string(os.PathListSeparator)
	if windows {
		sep = ";"
	}
	var exts []string
	if windows {
		exts = pathExts(env.PathExt)
	}

	seen := make(map[string]struct{})
	for _, dir := range strings.Split(env.Path, sep) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name, ok := "", false
			if windows {
				name, ok = stripExt(strings.ToLower(e.Name()), exts)
			} else {
				name, ok = e.Name(), isExecutable(filepath.Join(dir, e.Name()))
			}
			if ok {
				seen[name] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func pathExts(v string) []string {
	if strings.TrimSpace(v) == "" {
		v = defaultPathExt
	}
	var exts []string
	for _, ext := range strings.Split(strings.ToLower(v), ";") {
		if ext = strings.TrimSpace(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

func stripExt(name string, exts []string) (string, bool) {
	for _, ext := range exts {
		if base, ok := strings.CutSuffix(name, ext); ok && base != "" {
			return base, true
		}
	}
	return "", false
}

// isExecutable follows symlinks, so /usr/bin alternatives count.
func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0
}
