package shim

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	clusterlights "github.com/JeffreyCastellano/cluster-lights-go"
	"github.com/JeffreyCastellano/cluster-lights-go/errors"
)

// WrapMemory synthesizes the flat linear-memory view from an instance's
// runtime-managed memory. The same wrapper serves every tier; the legacy
// bridge's nested byte array and a native instance's memory look identical
// through it.
func WrapMemory(mem api.Memory) clusterlights.Memory {
	if mem == nil {
		return nil
	}
	return &memoryView{mem: mem}
}

type memoryView struct {
	mem api.Memory
}

func (m *memoryView) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.MemoryAccess("read", offset, length)
	}
	return data, nil
}

func (m *memoryView) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.MemoryAccess("write", offset, uint32(len(data)))
	}
	return nil
}

func (m *memoryView) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.MemoryAccess("read", offset, 4)
	}
	return v, nil
}

func (m *memoryView) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.MemoryAccess("write", offset, 4)
	}
	return nil
}

func (m *memoryView) ReadF32(offset uint32) (float32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.MemoryAccess("read", offset, 4)
	}
	return math.Float32frombits(v), nil
}

func (m *memoryView) WriteF32(offset uint32, value float32) error {
	if !m.mem.WriteUint32Le(offset, math.Float32bits(value)) {
		return errors.MemoryAccess("write", offset, 4)
	}
	return nil
}

func (m *memoryView) Size() uint32 {
	return m.mem.Size()
}
