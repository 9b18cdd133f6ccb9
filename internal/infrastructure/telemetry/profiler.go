package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// runtimeSampleRate is used for both the mutex fraction and the block rate
const runtimeSampleRate = 5

// DefaultProfileTypes are collected when ProfilerConfig.ProfileTypes is empty
var DefaultProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}

// profileTypeNames maps config names to the pyroscope profile types they enable.
// "mutex" and "block" expand to both the count and the duration profile.
var profileTypeNames = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"inuse_objects": {pyroscope.ProfileInuseObjects},
	"inuse_space":   {pyroscope.ProfileInuseSpace},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// ProfilerConfig holds Pyroscope continuous profiling configuration.
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string // e.g. "http://pyroscope:4040"
	ApplicationName string
	Environment     string
	// ProfileTypes are names from profileTypeNames; empty means DefaultProfileTypes
	ProfileTypes      []string
	BasicAuthUser     string
	BasicAuthPassword string
}

// Profiler owns the Pyroscope session. A disabled profiler is a no-op.
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	config   ProfilerConfig
	mu       sync.Mutex
	stopped  bool
}

// NewProfiler validates the configuration and starts pushing profiles.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger, config: cfg}

	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return p, nil
	}
	if cfg.ServerAddress == "" {
		return nil, fmt.Errorf("profiler server address is required when profiling is enabled")
	}
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("profiler application name is required when profiling is enabled")
	}

	names := cfg.ProfileTypes
	if len(names) == 0 {
		names = DefaultProfileTypes
	}
	types, err := ParseProfileTypes(names)
	if err != nil {
		return nil, err
	}

	// mutex and block samples are off in the runtime unless a rate is set
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "mutex":
			runtime.SetMutexProfileFraction(runtimeSampleRate)
		case "block":
			runtime.SetBlockProfileRate(runtimeSampleRate)
		}
	}

	tags := map[string]string{}
	if cfg.Environment != "" {
		tags["env"] = cfg.Environment
	}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:              tags,
		ProfileTypes:      types,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = session

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Strings("profile_types", names),
	)
	return p, nil
}

// ParseProfileTypes resolves config names to pyroscope profile types.
// Unknown names are an error; duplicates are collapsed.
func ParseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	seen := make(map[pyroscope.ProfileType]bool)
	var types []pyroscope.ProfileType
	for _, name := range names {
		expanded, ok := profileTypeNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		for _, t := range expanded {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types, nil
}

// Stop flushes pending profiles. It is safe to call more than once.
//
// The Pyroscope SDK takes no context here, so a hung server can delay shutdown
// up to the SDK's own upload timeout.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.profiler == nil {
		p.stopped = true
		return nil
	}
	p.stopped = true

	if err := p.profiler.Stop(); err != nil {
		p.logger.Error("Error stopping profiler", zap.Error(err))
		return fmt.Errorf("failed to stop profiler: %w", err)
	}
	p.logger.Info("Pyroscope profiler stopped")
	return nil
}

// IsEnabled reports whether profiles are being pushed.
func (p *Profiler) IsEnabled() bool {
	return p.config.Enabled && p.profiler != nil
}

// pyroscopeLogger adapts zap to pyroscope.Logger
type pyroscopeLogger struct {
	*zap.SugaredLogger
}
