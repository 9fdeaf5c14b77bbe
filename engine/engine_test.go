package engine

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero/api"

	clusterlights "github.com/JeffreyCastellano/cluster-lights-go"
	"github.com/JeffreyCastellano/cluster-lights-go/errors"
)

// fakeFunc records calls and plays back canned results.
type fakeFunc struct {
	results []uint64
	err     error
	calls   [][]uint64
}

func (f *fakeFunc) Call(_ context.Context, params ...uint64) ([]uint64, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeSurface map[string]*fakeFunc

func (s fakeSurface) Lookup(name string) clusterlights.Func {
	if fn, ok := s[name]; ok {
		return fn
	}
	return nil
}

func (s fakeSurface) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// fakeMemory is a flat byte slice behind the Memory interface.
type fakeMemory struct {
	data []byte
}

func newFakeMemory(size int) *fakeMemory { return &fakeMemory{data: make([]byte, size)} }

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if int(offset)+int(length) > len(m.data) {
		return nil, errors.MemoryAccess("read", offset, length)
	}
	return m.data[offset : offset+length], nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if int(offset)+len(data) > len(m.data) {
		return errors.MemoryAccess("write", offset, uint32(len(data)))
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (m *fakeMemory) WriteU32(offset uint32, value uint32) error {
	return m.Write(offset, []byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)})
}

func (m *fakeMemory) ReadF32(offset uint32) (float32, error) {
	v, err := m.ReadU32(offset)
	if err != nil {
		return 0, err
	}
	return api.DecodeF32(uint64(v)), nil
}

func (m *fakeMemory) WriteF32(offset uint32, value float32) error {
	return m.WriteU32(offset, uint32(api.EncodeF32(value)))
}

func (m *fakeMemory) Size() uint32 { return uint32(len(m.data)) }

// baseSurface covers the operations New always invokes.
func baseSurface() fakeSurface {
	return fakeSurface{
		"init":           {},
		"setViewFrustum": {},
	}
}

func newTestEngine(t *testing.T, surface fakeSurface, cfg Config) *Engine {
	t.Helper()
	mod := clusterlights.NewLoadedModule(surface, newFakeMemory(64*1024), clusterlights.TierNativeScalar, nil)
	e, err := New(context.Background(), mod, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNew_InitializesModule(t *testing.T) {
	surface := baseSurface()
	newTestEngine(t, surface, Config{Near: 0.5, Far: 500, MaxLights: 256})

	if got := surface["init"].calls; len(got) != 1 || got[0][0] != 256 {
		t.Errorf("init calls = %v, want one call with 256", got)
	}
	frustum := surface["setViewFrustum"].calls
	if len(frustum) != 1 {
		t.Fatalf("setViewFrustum calls = %d, want 1", len(frustum))
	}
	if frustum[0][0] != api.EncodeF32(0.5) || frustum[0][1] != api.EncodeF32(500) {
		t.Errorf("setViewFrustum args = %v", frustum[0])
	}
}

func TestNew_FailsWhenInitMissing(t *testing.T) {
	mod := clusterlights.NewLoadedModule(fakeSurface{}, newFakeMemory(64), clusterlights.TierLegacyEmulated, nil)
	_, err := New(context.Background(), mod, Config{})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindNotSupported}) {
		t.Fatalf("want not_supported, got %v", err)
	}
}

func TestSetMaxTileSpan_AcceptsAnyValue(t *testing.T) {
	e := newTestEngine(t, baseSurface(), Config{MaxTileSpan: 16})

	if e.MaxTileSpan() != 16 {
		t.Fatalf("initial span = %d, want 16", e.MaxTileSpan())
	}
	// The controller clamps; the setter must not validate.
	for _, v := range []int{1, 0, -5, 4096, 16} {
		e.SetMaxTileSpan(v)
		if e.MaxTileSpan() != v {
			t.Errorf("span = %d after SetMaxTileSpan(%d)", e.MaxTileSpan(), v)
		}
	}
}

func TestUpdate_ReportsAnimation(t *testing.T) {
	surface := baseSurface()
	surface["update"] = &fakeFunc{results: []uint64{1}}
	e := newTestEngine(t, surface, Config{})

	animated, err := e.Update(context.Background(), 1.25)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !animated {
		t.Errorf("want animated=true")
	}
	if got := surface["update"].calls[0][0]; got != api.EncodeF32(1.25) {
		t.Errorf("update arg = %#x, want encoded 1.25", got)
	}
}

func TestUpdate_MissingOperation(t *testing.T) {
	e := newTestEngine(t, baseSurface(), Config{})

	_, err := e.Update(context.Background(), 0)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindNotSupported}) {
		t.Fatalf("want not_supported, got %v", err)
	}
}

func TestAddPointLight_FastPathInPerformanceMode(t *testing.T) {
	surface := baseSurface()
	surface["add"] = &fakeFunc{results: []uint64{0}}
	surface["addFast"] = &fakeFunc{results: []uint64{1}}
	e := newTestEngine(t, surface, Config{Performance: true})
	ctx := context.Background()

	idx, err := e.AddPointLight(ctx, PointLight{X: 1, Radius: 5, Intensity: 2})
	if err != nil {
		t.Fatalf("AddPointLight: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1 (fast path)", idx)
	}
	if len(surface["addFast"].calls) != 1 || len(surface["add"].calls) != 0 {
		t.Errorf("unanimated light in performance mode must take addFast")
	}

	// Animated lights need the full registration even in performance mode.
	if _, err := e.AddPointLight(ctx, PointLight{AnimSpeed: 0.5, AnimRadius: 3}); err != nil {
		t.Fatalf("AddPointLight animated: %v", err)
	}
	if len(surface["add"].calls) != 1 {
		t.Errorf("animated light must take the full add path")
	}
	if args := surface["add"].calls[0]; len(args) != 11 {
		t.Errorf("add arity = %d, want 11", len(args))
	}
}

func TestAddPointLight_RegistryFull(t *testing.T) {
	surface := baseSurface()
	surface["add"] = &fakeFunc{results: []uint64{uint64(uint32(0xFFFFFFFF))}} // -1
	e := newTestEngine(t, surface, Config{})

	if _, err := e.AddPointLight(context.Background(), PointLight{}); err == nil {
		t.Fatalf("want error when the module rejects the registration")
	}
}

func TestAddSpotAndRect_Arity(t *testing.T) {
	surface := baseSurface()
	surface["addSpot"] = &fakeFunc{results: []uint64{0}}
	surface["addRect"] = &fakeFunc{results: []uint64{0}}
	e := newTestEngine(t, surface, Config{})
	ctx := context.Background()

	if _, err := e.AddSpotLight(ctx, SpotLight{DirY: -1, Angle: 0.6}); err != nil {
		t.Fatalf("AddSpotLight: %v", err)
	}
	if args := surface["addSpot"].calls[0]; len(args) != 14 {
		t.Errorf("addSpot arity = %d, want 14", len(args))
	}

	if _, err := e.AddRectLight(ctx, RectLight{Width: 2, Height: 1, NZ: 1}); err != nil {
		t.Fatalf("AddRectLight: %v", err)
	}
	if args := surface["addRect"].calls[0]; len(args) != 14 {
		t.Errorf("addRect arity = %d, want 14", len(args))
	}
}

func TestAddAnimatedPointLight_ArgumentLayout(t *testing.T) {
	surface := baseSurface()
	surface["addPointWithAnimation"] = &fakeFunc{results: []uint64{3}}
	e := newTestEngine(t, surface, Config{})

	anim := AnimationParams{
		Flags:          AnimCircular | AnimWave | AnimPulse,
		CircularSpeed:  1.5,
		CircularRadius: 4,
		LinearMode:     2,
		WaveAxisX:      1,
		WaveSpeed:      3,
		PulseTarget:    1,
	}
	idx, err := e.AddAnimatedPointLight(context.Background(), PointLight{X: 10, Intensity: 2}, anim)
	if err != nil {
		t.Fatalf("AddAnimatedPointLight: %v", err)
	}
	if idx != 3 {
		t.Errorf("idx = %d, want 3", idx)
	}

	args := surface["addPointWithAnimation"].calls[0]
	if len(args) != 30 {
		t.Fatalf("addPointWithAnimation arity = %d, want 30", len(args))
	}
	if args[9] != uint64(AnimCircular|AnimWave|AnimPulse) {
		t.Errorf("flags arg = %#x, want combined anim flags", args[9])
	}
	if args[10] != api.EncodeF32(1.5) {
		t.Errorf("circular speed arg = %#x, want encoded 1.5", args[10])
	}
	if args[17] != 2 {
		t.Errorf("linear mode arg = %d, want raw 2", args[17])
	}
	if args[18] != api.EncodeF32(1) {
		t.Errorf("wave axis x arg = %#x, want encoded 1", args[18])
	}
	if args[29] != 1 {
		t.Errorf("pulse target arg = %d, want raw 1", args[29])
	}
}

func TestAddAnimatedSpotAndRect_Arity(t *testing.T) {
	surface := baseSurface()
	surface["addSpotWithAnimation"] = &fakeFunc{results: []uint64{0}}
	surface["addRectWithAnimation"] = &fakeFunc{results: []uint64{0}}
	e := newTestEngine(t, surface, Config{})
	ctx := context.Background()

	anim := AnimationParams{Flags: AnimRotate, RotAxisX: 1, RotSpeed: 2, PulseTarget: 1}
	if _, err := e.AddAnimatedSpotLight(ctx, SpotLight{DirY: -1}, anim); err != nil {
		t.Fatalf("AddAnimatedSpotLight: %v", err)
	}
	args := surface["addSpotWithAnimation"].calls[0]
	if len(args) != 33 {
		t.Fatalf("addSpotWithAnimation arity = %d, want 33", len(args))
	}
	if args[14] != uint64(AnimRotate) {
		t.Errorf("flags arg = %#x, want rotate flag", args[14])
	}
	// Rotation block follows the linear block: axis x leads it.
	if args[21] != api.EncodeF32(1) {
		t.Errorf("rotation axis x arg = %#x, want encoded 1", args[21])
	}
	if args[32] != 1 {
		t.Errorf("pulse target arg = %d, want raw 1", args[32])
	}

	if _, err := e.AddAnimatedRectLight(ctx, RectLight{NZ: 1}, anim); err != nil {
		t.Fatalf("AddAnimatedRectLight: %v", err)
	}
	if got := len(surface["addRectWithAnimation"].calls[0]); got != 33 {
		t.Errorf("addRectWithAnimation arity = %d, want 33", got)
	}
}

func TestUpdateAnimation_Arity(t *testing.T) {
	surface := baseSurface()
	surface["updatePointLightAnimation"] = &fakeFunc{}
	surface["updateSpotLightAnimation"] = &fakeFunc{}
	surface["updateRectLightAnimation"] = &fakeFunc{}
	e := newTestEngine(t, surface, Config{})
	ctx := context.Background()

	anim := AnimationParams{Flags: AnimFlicker, FlickerSpeed: 9, RotMode: 1}
	if err := e.UpdatePointLightAnimation(ctx, 5, anim); err != nil {
		t.Fatalf("UpdatePointLightAnimation: %v", err)
	}
	args := surface["updatePointLightAnimation"].calls[0]
	if len(args) != 22 {
		t.Fatalf("updatePointLightAnimation arity = %d, want 22", len(args))
	}
	if args[0] != 5 || args[1] != uint64(AnimFlicker) {
		t.Errorf("leading args = %v, want index then flags", args[:2])
	}

	if err := e.UpdateSpotLightAnimation(ctx, 0, anim); err != nil {
		t.Fatalf("UpdateSpotLightAnimation: %v", err)
	}
	args = surface["updateSpotLightAnimation"].calls[0]
	if len(args) != 28 {
		t.Fatalf("updateSpotLightAnimation arity = %d, want 28", len(args))
	}
	// The trailing rotation block ends with the raw mode byte.
	if args[27] != 1 {
		t.Errorf("rotation mode arg = %d, want raw 1", args[27])
	}

	if err := e.UpdateRectLightAnimation(ctx, 0, anim); err != nil {
		t.Fatalf("UpdateRectLightAnimation: %v", err)
	}
	if got := len(surface["updateRectLightAnimation"].calls[0]); got != 28 {
		t.Errorf("updateRectLightAnimation arity = %d, want 28", got)
	}
}

func TestBulkAddPointLights_PacksLinearMemory(t *testing.T) {
	surface := baseSurface()
	surface["malloc"] = &fakeFunc{results: []uint64{1024}}
	surface["free"] = &fakeFunc{}
	surface["bulkAddPointLights"] = &fakeFunc{results: []uint64{2}}
	e := newTestEngine(t, surface, Config{})

	lights := []PointLight{
		{X: 1, Y: 2, Z: 3, Radius: 7, R: 0.5, Intensity: 2},
		{X: -4, Radius: 9, AnimSpeed: 1.5, AnimRadius: 6},
	}
	added, err := e.BulkAddPointLights(context.Background(), lights)
	if err != nil {
		t.Fatalf("BulkAddPointLights: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	// One scratch block covers all five arrays.
	if got := surface["malloc"].calls[0][0]; got != 192 {
		t.Errorf("malloc size = %d, want 192 bytes for 2 lights", got)
	}
	args := surface["bulkAddPointLights"].calls[0]
	if len(args) != 6 {
		t.Fatalf("bulkAddPointLights arity = %d, want 6", len(args))
	}
	want := []uint64{2, 1024, 1056, 1088, 1096, 1104}
	for i, w := range want {
		if args[i] != w {
			t.Errorf("arg[%d] = %d, want %d", i, args[i], w)
		}
	}

	mem := e.Module().Memory()
	readF32 := func(off uint32) float32 {
		t.Helper()
		v, err := mem.ReadF32(off)
		if err != nil {
			t.Fatalf("ReadF32(%d): %v", off, err)
		}
		return v
	}
	// Positions: x,y,z,radius stride 4.
	if got := readF32(1024); got != 1 {
		t.Errorf("light 0 x = %v, want 1", got)
	}
	if got := readF32(1024 + 16 + 12); got != 9 {
		t.Errorf("light 1 radius = %v, want 9", got)
	}
	// Colors: r,g,b,intensity stride 4.
	if got := readF32(1056 + 12); got != 2 {
		t.Errorf("light 0 intensity = %v, want 2", got)
	}
	// Zero decay defaults to 1, as on the per-light path.
	if got := readF32(1088); got != 1 {
		t.Errorf("light 0 decay = %v, want defaulted 1", got)
	}
	// Flags: only the animated light carries the circular block.
	flags0, _ := mem.ReadU32(1096)
	flags1, _ := mem.ReadU32(1100)
	if flags0 != uint32(AnimNone) || flags1 != uint32(AnimCircular) {
		t.Errorf("flags = %d, %d; want none then circular", flags0, flags1)
	}
	if got := readF32(1104 + 56); got != 1.5 {
		t.Errorf("light 1 circular speed = %v, want 1.5", got)
	}
	if got := readF32(1104 + 56 + 4); got != 6 {
		t.Errorf("light 1 circular radius = %v, want 6", got)
	}

	// The scratch block is returned after the call.
	if frees := surface["free"].calls; len(frees) != 1 || frees[0][0] != 1024 {
		t.Errorf("free calls = %v, want one call with 1024", frees)
	}
}

func TestBulkAddPointLights_NoAllocator(t *testing.T) {
	surface := baseSurface()
	surface["bulkAddPointLights"] = &fakeFunc{results: []uint64{0}}
	e := newTestEngine(t, surface, Config{})

	_, err := e.BulkAddPointLights(context.Background(), []PointLight{{X: 1}})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindNotSupported}) {
		t.Fatalf("want not_supported without an allocator export, got %v", err)
	}

	// An empty batch is a no-op, allocator or not.
	added, err := e.BulkAddPointLights(context.Background(), nil)
	if err != nil || added != 0 {
		t.Errorf("empty batch = %d, %v; want 0, nil", added, err)
	}
}

func TestSetCameraMatrix_WritesLinearMemory(t *testing.T) {
	surface := baseSurface()
	surface["getCameraMatrix"] = &fakeFunc{results: []uint64{128}}
	e := newTestEngine(t, surface, Config{})

	var m [16]float32
	for i := range m {
		m[i] = float32(i) * 0.5
	}
	if err := e.SetCameraMatrix(context.Background(), m); err != nil {
		t.Fatalf("SetCameraMatrix: %v", err)
	}

	mem := e.Module().Memory()
	for i, want := range m {
		got, err := mem.ReadF32(128 + uint32(i)*4)
		if err != nil {
			t.Fatalf("ReadF32[%d]: %v", i, err)
		}
		if got != want {
			t.Errorf("matrix[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestCounts(t *testing.T) {
	surface := baseSurface()
	surface["getPointLightCount"] = &fakeFunc{results: []uint64{7}}
	surface["getSpotLightCount"] = &fakeFunc{results: []uint64{0}}
	e := newTestEngine(t, surface, Config{})
	ctx := context.Background()

	n, err := e.PointLightCount(ctx)
	if err != nil || n != 7 {
		t.Errorf("PointLightCount = %d, %v; want 7", n, err)
	}
	n, err = e.SpotLightCount(ctx)
	if err != nil || n != 0 {
		t.Errorf("SpotLightCount = %d, %v; want 0", n, err)
	}
}

func TestClose_CleansUpThenClosesModule(t *testing.T) {
	surface := baseSurface()
	surface["cleanup"] = &fakeFunc{}
	closed := false
	mod := clusterlights.NewLoadedModule(surface, newFakeMemory(64), clusterlights.TierNativeScalar,
		func(context.Context) error { closed = true; return nil })
	e, err := New(context.Background(), mod, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := e.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(surface["cleanup"].calls) != 1 {
		t.Errorf("cleanup not invoked")
	}
	if !closed {
		t.Errorf("module not closed")
	}
}
