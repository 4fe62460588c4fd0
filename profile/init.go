package profile

// Config selects what to profile and where the profile goes.
type Config struct {
	// Mode is one of [Modes]. Empty disables profiling.
	Mode string
	// Path is the output directory; empty uses the pkg/profile default.
	Path string
	// Quiet silences the start and stop messages of pkg/profile.
	Quiet bool
}

// Option modifies a [Config].
type Option func(*Config)

// New returns a Config with opts applied in order.
func New(opts ...Option) Config {
	var c Config

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Profiler is a running profile.
type Profiler interface{ Stop() }

// Start begins profiling. It returns a no-op [Profiler] when Mode is empty
// or unknown, or when built without the pprof tag.
func (c Config) Start() Profiler {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

// WithMode sets [Config.Mode].
func WithMode(mode string) Option { return func(c *Config) { c.Mode = mode } }

// WithPath sets [Config.Path].
func WithPath(path string) Option { return func(c *Config) { c.Path = path } }

// WithQuiet sets [Config.Quiet].
func WithQuiet(quiet bool) Option { return func(c *Config) { c.Quiet = quiet } }

type ignore struct{}

func (ignore) Stop() {}
