// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

package vm

// Memory is the EVM's byte-addressable, lazily-growing scratch space. It
// only ever grows, in 32-byte steps, up to a per-machine limit.
type Memory struct {
	data         []byte
	effectiveLen uint64
	limit        uint64
}

// NewMemory creates an empty memory bounded by limit bytes.
func NewMemory(limit uint64) *Memory {
	return &Memory{limit: limit}
}

// Len returns the length of the backing buffer actually materialized.
func (m *Memory) Len() int { return len(m.data) }

// EffectiveLen returns the memory range the gasometer has already charged
// for, which may exceed Len() until the next access forces materialization.
func (m *Memory) EffectiveLen() uint64 { return m.effectiveLen }

// Limit returns the memory's byte limit.
func (m *Memory) Limit() uint64 { return m.limit }

// ResizeOffset grows the effective length to cover offset..offset+len,
// rounded up to the next 32-byte boundary. A zero len is a no-op.
func (m *Memory) ResizeOffset(offset, length uint64) *ExitError {
	if length == 0 {
		return nil
	}
	end := offset + length
	if end < offset {
		return ErrInvalidRange
	}
	return m.ResizeEnd(end)
}

// ResizeEnd grows the effective length to cover up to end, rounded up to
// the next 32-byte boundary.
func (m *Memory) ResizeEnd(end uint64) *ExitError {
	rounded := end
	if modulo := end % 32; modulo != 0 {
		next := end + 32
		if next < end {
			return ErrInvalidRange
		}
		rounded = next - modulo
	}
	if rounded > m.effectiveLen {
		m.effectiveLen = rounded
	}
	return nil
}

// Get returns a freshly allocated size-byte slice starting at offset,
// zero-padded past the materialized buffer's end. offset and size are
// untrusted stack values; ResizeOffset does not check them against the
// limit (only Set does, for bytes actually written into memory), so Get
// enforces the same limit itself rather than handing make() an
// attacker-chosen length.
func (m *Memory) Get(offset, size uint64) ([]byte, *ExitFatal) {
	if size == 0 {
		return []byte{}, nil
	}
	end := offset + size
	if end < offset || end > m.limit {
		return nil, ErrNotSupported
	}
	ret := make([]byte, size)
	if offset >= uint64(len(m.data)) {
		return ret, nil
	}
	if end > uint64(len(m.data)) {
		end = uint64(len(m.data))
	}
	copy(ret, m.data[offset:end])
	return ret, nil
}

// Set writes value into memory at offset, zero-padding or truncating to
// targetSize (which defaults to len(value) when negative).
func (m *Memory) Set(offset uint64, value []byte, targetSize int64) *ExitFatal {
	tsize := targetSize
	if tsize < 0 {
		tsize = int64(len(value))
	}
	target := uint64(tsize)

	end := offset + target
	if end < offset || end > m.limit {
		return ErrNotSupported
	}

	if uint64(len(m.data)) < end {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}

	region := m.data[offset:end]
	valueSize := uint64(len(value))
	if valueSize > target {
		valueSize = target
	}
	copy(region[:valueSize], value[:valueSize])
	for i := valueSize; i < target; i++ {
		region[i] = 0
	}
	return nil
}

// CopyLarge copies len bytes from data, starting at dataOffset, into memory
// at memoryOffset, zero-filling any portion that runs past the end of data.
func (m *Memory) CopyLarge(memoryOffset, dataOffset, length uint64, data []byte) *ExitFatal {
	var slice []byte
	end := dataOffset + length
	if end >= dataOffset && dataOffset <= uint64(len(data)) {
		if end > uint64(len(data)) {
			end = uint64(len(data))
		}
		slice = data[dataOffset:end]
	}
	return m.Set(memoryOffset, slice, int64(length))
}
