package clusterlights

import "context"

// Tier identifies the acceleration level of a loaded compute module.
type Tier uint8

const (
	// TierNativeVectorized runs the SIMD build of the compute module on the
	// compiling engine.
	TierNativeVectorized Tier = iota
	// TierNativeScalar runs the scalar build on the compiling engine.
	TierNativeScalar
	// TierLegacyEmulated runs the legacy bridge build on the pure-software
	// interpreter, behind the ABI shim.
	TierLegacyEmulated
)

func (t Tier) String() string {
	switch t {
	case TierNativeVectorized:
		return "native-vectorized"
	case TierNativeScalar:
		return "native-scalar"
	case TierLegacyEmulated:
		return "legacy-emulated"
	default:
		return "unknown"
	}
}

// Func is a single invocable operation of a module's call surface.
// Parameters and results use the raw 64-bit stack encoding; float arguments
// are passed with api.EncodeF32/EncodeF64.
type Func interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// CallSurface is the uniform set of named operations exposed by a
// LoadedModule, identical in shape across all three tiers.
type CallSurface interface {
	// Lookup resolves an operation by name. A nil result means the
	// operation is not supported by this tier; it is not an error.
	Lookup(name string) Func
	// Names returns the resolvable operation names in no particular order.
	Names() []string
}

// Memory is flat, directly addressable linear memory shared between the
// host and the compute module. Valid for the LoadedModule's lifetime.
type Memory interface {
	Read(offset, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	WriteU32(offset uint32, value uint32) error
	ReadF32(offset uint32) (float32, error)
	WriteF32(offset uint32, value float32) error
	Size() uint32
}

// LoadedModule is the uniform result of acquisition. Once constructed its
// tier is immutable and the call surface and linear memory stay valid until
// Close. Acquisition never hands out a partially initialized module.
type LoadedModule struct {
	surface CallSurface
	memory  Memory
	closeFn func(context.Context) error
	tier    Tier
}

// NewLoadedModule assembles a fully initialized module handle. closeFn
// releases the backing runtime and may be nil.
func NewLoadedModule(surface CallSurface, memory Memory, tier Tier, closeFn func(context.Context) error) *LoadedModule {
	return &LoadedModule{
		surface: surface,
		memory:  memory,
		tier:    tier,
		closeFn: closeFn,
	}
}

func (m *LoadedModule) Surface() CallSurface { return m.surface }

func (m *LoadedModule) Memory() Memory { return m.memory }

func (m *LoadedModule) Tier() Tier { return m.tier }

// Close releases the module's backing runtime. Safe to call more than once.
func (m *LoadedModule) Close(ctx context.Context) error {
	if m.closeFn == nil {
		return nil
	}
	fn := m.closeFn
	m.closeFn = nil
	return fn(ctx)
}
