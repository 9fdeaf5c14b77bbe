package wasmbin

import (
	"bytes"
	"encoding/binary"
)

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs for the sections this package can emit.
const (
	SectionType     byte = 1  // Type section (function signatures)
	SectionFunction byte = 3  // Function section (type indices)
	SectionMemory   byte = 5  // Memory section
	SectionExport   byte = 7  // Export section
	SectionCode     byte = 10 // Code section (function bodies)
)

// Export descriptor kinds.
const (
	KindFunc   byte = 0 // Function export
	KindMemory byte = 2 // Memory export
)

// ValType is a value type encoding as defined in the binary format.
type ValType byte

const (
	ValI32  ValType = 0x7F // 32-bit integer
	ValI64  ValType = 0x7E // 64-bit integer
	ValF32  ValType = 0x7D // 32-bit float
	ValF64  ValType = 0x7C // 64-bit float
	ValV128 ValType = 0x7B // 128-bit vector (SIMD)
)

// Opcodes used by probe fragments and test fixtures.
const (
	OpLocalGet  byte = 0x20
	OpDrop      byte = 0x1A
	OpEnd       byte = 0x0B
	OpI32Add    byte = 0x6A
	OpI32Const  byte = 0x41
	OpF32Add    byte = 0x92
	OpVecPrefix byte = 0xFD // prefix for fixed-width SIMD opcodes

	// VecV128Const is the LEB128-encoded SIMD opcode following OpVecPrefix
	// for v128.const, trailed by a 16-byte immediate.
	VecV128Const byte = 0x0C
)

// FuncType is a function signature
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Func is a defined function: its type index plus locals and body.
// Body holds raw instruction bytes and must end with OpEnd.
type Func struct {
	Type   uint32
	Locals []ValType
	Body   []byte
}

// MemoryType declares a linear memory in 64KiB pages
type MemoryType struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// Export makes a module item visible under a name
type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// Module is a minimal encodable WebAssembly module
type Module struct {
	Types    []FuncType
	Funcs    []Func
	Memories []MemoryType
	Exports  []Export
}

// Encode encodes the module to WebAssembly binary format
func (m *Module) Encode() []byte {
	var w bytes.Buffer

	// Magic number and version
	_ = binary.Write(&w, binary.LittleEndian, Magic)
	_ = binary.Write(&w, binary.LittleEndian, Version)

	// Type section
	if len(m.Types) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.WriteByte(0x60)
			writeValTypes(&sec, ft.Params)
			writeValTypes(&sec, ft.Results)
		}
		writeSection(&w, SectionType, sec.Bytes())
	}

	// Function section
	if len(m.Funcs) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			WriteLEB128u(&sec, fn.Type)
		}
		writeSection(&w, SectionFunction, sec.Bytes())
	}

	// Memory section
	if len(m.Memories) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Memories)))
		for _, mem := range m.Memories {
			if mem.HasMax {
				sec.WriteByte(0x01)
				WriteLEB128u(&sec, mem.Min)
				WriteLEB128u(&sec, mem.Max)
			} else {
				sec.WriteByte(0x00)
				WriteLEB128u(&sec, mem.Min)
			}
		}
		writeSection(&w, SectionMemory, sec.Bytes())
	}

	// Export section
	if len(m.Exports) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			writeName(&sec, exp.Name)
			sec.WriteByte(exp.Kind)
			WriteLEB128u(&sec, exp.Index)
		}
		writeSection(&w, SectionExport, sec.Bytes())
	}

	// Code section
	if len(m.Funcs) > 0 {
		var sec bytes.Buffer
		WriteLEB128u(&sec, uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			var entry bytes.Buffer
			// Locals as one run per declared type
			WriteLEB128u(&entry, uint32(len(fn.Locals)))
			for _, l := range fn.Locals {
				WriteLEB128u(&entry, 1)
				entry.WriteByte(byte(l))
			}
			entry.Write(fn.Body)

			WriteLEB128u(&sec, uint32(entry.Len()))
			sec.Write(entry.Bytes())
		}
		writeSection(&w, SectionCode, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, data []byte) {
	w.WriteByte(id)
	WriteLEB128u(w, uint32(len(data)))
	w.Write(data)
}

func writeValTypes(w *bytes.Buffer, types []ValType) {
	WriteLEB128u(w, uint32(len(types)))
	for _, t := range types {
		w.WriteByte(byte(t))
	}
}

// I32Const returns the instruction bytes pushing v onto the stack. The
// immediate is signed LEB128, so negative constants encode correctly.
func I32Const(v int32) []byte {
	var b bytes.Buffer
	b.WriteByte(OpI32Const)
	WriteLEB128s(&b, v)
	return b.Bytes()
}
