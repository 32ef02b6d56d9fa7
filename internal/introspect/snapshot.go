package introspect

import (
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/petasbytes/marvin/internal/logger"
)

// DefaultPathTTL is how long a PATH scan is reused.
const DefaultPathTTL = 5 * time.Minute

// Snapshot is the host context attached to each reasoning request.
type Snapshot struct {
	OS          OSInfo
	Cwd         string
	Entries     []string
	Executables []string
}

// Inspector builds Snapshots. PATH scans touch many directories, so results
// are cached per PATH value for a TTL.
type Inspector struct {
	osInfo   OSInfo
	getenv   func(string) string
	getwd    func() (string, error)
	cache    *ristretto.Cache
	ttl      time.Duration
	maxDir   int
	maxExecs int
	log      *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithOS overrides the detected OS.
func WithOS(o OSInfo) Option { return func(i *Inspector) { i.osInfo = o } }

// WithEnv overrides environment lookups.
func WithEnv(getenv func(string) string) Option {
	return func(i *Inspector) { i.getenv = getenv }
}

// WithWorkdir overrides the working directory lookup.
func WithWorkdir(getwd func() (string, error)) Option {
	return func(i *Inspector) { i.getwd = getwd }
}

// WithPathTTL sets how long PATH scans are cached; zero disables caching.
func WithPathTTL(d time.Duration) Option { return func(i *Inspector) { i.ttl = d } }

// WithLimits caps directory entries and executables.
func WithLimits(entries, executables int) Option {
	return func(i *Inspector) {
		i.maxDir, i.maxExecs = entries, executables
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Inspector) {
		if l != nil {
			i.log = l
		}
	}
}

// NewInspector returns an Inspector for the running host.
func NewInspector(opts ...Option) (*Inspector, error) {
	i := &Inspector{
		osInfo:   HostOS(),
		getenv:   os.Getenv,
		getwd:    os.Getwd,
		ttl:      DefaultPathTTL,
		maxDir:   DefaultMaxEntries,
		maxExecs: DefaultMaxExecutables,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.ttl > 0 {
		c, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 100,
			MaxCost:     1 << 20,
			BufferItems: 64,
		})
		if err != nil {
			return nil, err
		}
		i.cache = c
	}
	return i, nil
}

// Close releases the PATH cache.
func (i *Inspector) Close() {
	if i.cache != nil {
		i.cache.Close()
	}
}

// OS returns the host identity.
func (i *Inspector) OS() OSInfo { return i.osInfo }

// Snapshot collects the current host context. Failures degrade to empty
// fields; a snapshot is always returned.
func (i *Inspector) Snapshot() Snapshot {
	s := Snapshot{OS: i.osInfo}
	if cwd, err := i.getwd(); err == nil {
		s.Cwd = cwd
		if entries, err := ListDir(cwd, i.maxDir); err == nil {
			s.Entries = entries
		} else {
			i.log.Debug("list working directory", "err", err)
		}
	} else {
		i.log.Debug("resolve working directory", "err", err)
	}
	s.Executables = i.Executables()
	return s
}

// Executables returns the PATH executables, served from cache when fresh.
func (i *Inspector) Executables() []string {
	env := PathEnv{GOOS: i.osInfo.GOOS, Path: i.getenv("PATH")}
	if env.GOOS == "" {
		env.GOOS = runtime.GOOS
	}
	if env.GOOS == "windows" {
		env.PathExt = i.getenv("PATHEXT")
	}
	key := env.GOOS + "\x00" + env.Path + "\x00" + env.PathExt

	if i.cache != nil {
		if v, ok := i.cache.Get(key); ok {
			return slices.Clone(v.([]string))
		}
	}
	execs := PathExecutables(env, i.maxExecs)
	if i.cache != nil {
		i.cache.SetWithTTL(key, execs, int64(len(execs))+1, i.ttl)
		i.cache.Wait()
	}
	return slices.Clone(execs)
}
