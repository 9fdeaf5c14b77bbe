package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseProbe     Phase = "probe"     // capability detection
	PhaseResolve   Phase = "resolve"   // tier/artifact resolution
	PhaseTransport Phase = "transport" // artifact fetch and compile
	PhaseLegacy    Phase = "legacy"    // legacy bridge initialization
	PhaseShim      Phase = "shim"      // call-surface bridging
	PhaseEngine    Phase = "engine"    // call-surface invocation
)

// Kind categorizes the error
type Kind string

const (
	KindInconclusive  Kind = "inconclusive"
	KindContentType   Kind = "content_type"
	KindFetch         Kind = "fetch"
	KindCompile       Kind = "compile"
	KindInstantiation Kind = "instantiation"
	KindTimeout       Kind = "timeout"
	KindNotSupported  Kind = "not_supported"
	KindInvalidInput  Kind = "invalid_input"
	KindExhausted     Kind = "exhausted"
	KindMemory        Kind = "memory"
)

// Error is the structured error type used throughout the loader
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Tier     string
	Strategy string
	Artifact string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Tier != "" {
		b.WriteString(" tier=")
		b.WriteString(e.Tier)
	}
	if e.Strategy != "" {
		b.WriteString(" strategy=")
		b.WriteString(e.Strategy)
	}
	if e.Artifact != "" {
		b.WriteString(" artifact=")
		b.WriteString(e.Artifact)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Tier sets the tier the error occurred on
func (b *Builder) Tier(t string) *Builder {
	b.err.Tier = t
	return b
}

// Strategy sets the load strategy that failed
func (b *Builder) Strategy(s string) *Builder {
	b.err.Strategy = s
	return b
}

// Artifact sets the artifact location
func (b *Builder) Artifact(a string) *Builder {
	b.err.Artifact = a
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Inconclusive wraps a validator failure during capability probing. Probe
// callers absorb it and report "unsupported"; it never crosses the probe
// boundary.
func Inconclusive(cause error) *Error {
	return &Error{
		Phase:  PhaseProbe,
		Kind:   KindInconclusive,
		Detail: "validator failed during capability probe",
		Cause:  cause,
	}
}

// ContentType creates a streaming-strategy rejection for a mis-reported
// transport content type
func ContentType(artifact, got string) *Error {
	return &Error{
		Phase:    PhaseTransport,
		Kind:     KindContentType,
		Strategy: "streaming",
		Artifact: artifact,
		Detail:   fmt.Sprintf("transport reported %q, need application/wasm", got),
	}
}

// Fetch creates an artifact fetch error
func Fetch(strategy, artifact string, cause error) *Error {
	return &Error{
		Phase:    PhaseTransport,
		Kind:     KindFetch,
		Strategy: strategy,
		Artifact: artifact,
		Cause:    cause,
	}
}

// Compile creates an artifact compile error
func Compile(strategy, artifact string, cause error) *Error {
	return &Error{
		Phase:    PhaseTransport,
		Kind:     KindCompile,
		Strategy: strategy,
		Artifact: artifact,
		Cause:    cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// NotSupported reports an operation absent from a module's call surface
func NotSupported(phase Phase, op, tier string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotSupported,
		Tier:   tier,
		Detail: fmt.Sprintf("operation %q not supported by this tier", op),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// MemoryAccess creates a linear memory bounds error
func MemoryAccess(op string, offset, length uint32) *Error {
	return &Error{
		Phase:  PhaseShim,
		Kind:   KindMemory,
		Detail: fmt.Sprintf("memory %s out of bounds: offset=%d, length=%d", op, offset, length),
	}
}

// Attempt records one failed tier/strategy combination during acquisition
type Attempt struct {
	Tier     string
	Strategy string
	Artifact string
	Err      error
}

// ExhaustedError is returned when every permitted tier and load strategy
// failed. It carries the full attempt chain for diagnosis.
type ExhaustedError struct {
	Attempts []Attempt
}

// Exhausted creates the terminal acquisition failure from the attempt chain
func Exhausted(attempts []Attempt) *ExhaustedError {
	return &ExhaustedError{Attempts: attempts}
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "[resolve] exhausted: no load strategy was attempted"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("could not acquire a compute module after %d attempt(s):\n", len(e.Attempts)))

	// Group by tier for cleaner output
	byTier := make(map[string][]Attempt)
	var tierOrder []string
	for _, a := range e.Attempts {
		if _, exists := byTier[a.Tier]; !exists {
			tierOrder = append(tierOrder, a.Tier)
		}
		byTier[a.Tier] = append(byTier[a.Tier], a)
	}

	for _, tier := range tierOrder {
		b.WriteString("\n  ")
		b.WriteString(tier)
		b.WriteString(":\n")
		for _, a := range byTier[tier] {
			b.WriteString("    - ")
			if a.Strategy != "" {
				b.WriteString(a.Strategy)
				b.WriteString(": ")
			}
			if a.Err != nil {
				b.WriteString(a.Err.Error())
			} else {
				b.WriteString("failed")
			}
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *ExhaustedError) Is(target error) bool {
	if _, ok := target.(*ExhaustedError); ok {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Kind == KindExhausted
	}
	return false
}

// Unwrap exposes the per-attempt causes to errors.Is/As chains
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}
