package backend

import (
	"time"

	"github.com/FlorianLB/taskiq-redis/internal/keys"
	"github.com/FlorianLB/taskiq-redis/internal/logger"
	"github.com/FlorianLB/taskiq-redis/internal/pool"
)

// Options configures a result backend. Start from DefaultOptions and
// override fields as needed; constructors normalize remaining zero
// values except KeepResults, which is taken as given.
type Options struct {
	// Addr is the address of the Redis node. Required by NewRedis.
	Addr string

	// ClusterAddrs lists cluster entry points. Required by
	// NewRedisCluster; Addr and DB are ignored there.
	ClusterAddrs []string

	// Password authenticates against the store, if set.
	Password string

	// DB selects the Redis logical database. Ignored in cluster mode.
	DB int

	// KeepResults controls whether a successful read leaves the entry
	// in place. When false, GetResult consumes the entry and any later
	// read fails with ErrResultMissing. DefaultOptions sets it to
	// true.
	KeepResults bool

	// MaxPoolSize bounds concurrently held store connections.
	MaxPoolSize int

	// Timeout caps how long an operation waits for a free connection.
	Timeout time.Duration

	// ResultTTL is the retention window applied on every write; 0
	// stores entries without expiry.
	ResultTTL time.Duration

	// KeyPrefix namespaces result keys in the store.
	KeyPrefix string

	// Logger receives backend diagnostics. Defaults to an info-level
	// text logger on stderr.
	Logger *logger.Logger
}

// DefaultOptions returns options with the documented defaults.
func DefaultOptions() Options {
	return Options{
		KeepResults: true,
		MaxPoolSize: pool.DefaultSize,
		Timeout:     pool.DefaultAcquireTimeout,
		KeyPrefix:   keys.DefaultPrefix,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxPoolSize < 1 {
		o.MaxPoolSize = pool.DefaultSize
	}
	if o.Timeout <= 0 {
		o.Timeout = pool.DefaultAcquireTimeout
	}
	if o.KeyPrefix == "" {
		o.KeyPrefix = keys.DefaultPrefix
	}
	if o.Logger == nil {
		o.Logger = logger.New("info", "text", "result-backend")
	}
	return o
}
