package acquire

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ForceEnv is the diagnostic override signal, read exactly once at
// acquisition start. It exists for reproducing field issues; the value is
// logged and then handled identically to Options.ForceTier.
const ForceEnv = "CLUSTER_LIGHTS_FORCE"

// Recognized override values.
const (
	ForceVectorized = "vectorized"
	ForceNoSIMD     = "nosimd"
	ForceFallback   = "fallback"
)

// Artifact names resolved against the configured base location.
const (
	ArtifactVectorized = "cluster-lights.simd.wasm"
	ArtifactScalar     = "cluster-lights.wasm"
	ArtifactLegacy     = "cluster-lights.legacy.wasm"
)

const defaultLegacyInitTimeout = 10 * time.Second

// Options configures one acquisition.
type Options struct {
	// PreferVectorized requests the accelerated tier when the host
	// supports it.
	PreferVectorized bool

	// ArtifactPath loads this artifact verbatim for the native tiers,
	// bypassing tier auto-selection and the capability probe. Loading a
	// vectorized artifact on unsupported hardware this way is the
	// caller's responsibility and may fail inside the transport step.
	ArtifactPath string

	// AllowFallback permits the legacy-emulated tier when every native
	// strategy fails.
	AllowFallback bool

	// ForceTier is the diagnostic override: ForceVectorized, ForceNoSIMD
	// or ForceFallback. Takes precedence over the environment signal.
	ForceTier string

	// BaseURL, when set, resolves artifact names over HTTP(S).
	// Otherwise names resolve under BaseDir on the filesystem.
	BaseURL string
	BaseDir string

	// Client overrides the HTTP client used for URL transports.
	Client *http.Client

	// Logger overrides the package logger for this acquisition.
	Logger *zap.Logger

	// LegacyInitTimeout bounds the wait for the legacy bridge's readiness
	// signal.
	LegacyInitTimeout time.Duration
}

// DefaultOptions returns the auto-negotiating configuration: vectorized if
// supported, scalar otherwise, legacy-emulated as a last resort, artifacts
// next to the working directory.
func DefaultOptions() Options {
	return Options{
		PreferVectorized:  true,
		AllowFallback:     true,
		BaseDir:           ".",
		LegacyInitTimeout: defaultLegacyInitTimeout,
	}
}

func (o *Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}

func (o *Options) httpClient() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

// resolve maps an artifact name to a concrete location under the base.
func (o *Options) resolve(name string) string {
	if o.BaseURL != "" {
		return strings.TrimSuffix(o.BaseURL, "/") + "/" + name
	}
	dir := o.BaseDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}
