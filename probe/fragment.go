package probe

import "github.com/JeffreyCastellano/cluster-lights-go/wasmbin"

// Fragment returns the statically known probe module: an unexported
// function whose body begins with a v128.const, an instruction the
// validator only accepts when the fixed-width SIMD feature is enabled.
func Fragment() []byte {
	body := make([]byte, 0, 20)
	body = append(body, wasmbin.OpVecPrefix, wasmbin.VecV128Const)
	body = append(body, make([]byte, 16)...) // v128 zero immediate
	body = append(body, wasmbin.OpDrop, wasmbin.OpEnd)

	m := &wasmbin.Module{
		Types: []wasmbin.FuncType{{}},
		Funcs: []wasmbin.Func{{Type: 0, Body: body}},
	}
	return m.Encode()
}
