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

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack(16)
	require.Nil(t, s.Push(uint256.NewInt(42)))
	assert.Equal(t, 1, s.Len())

	v, err := s.Pop()
	require.Nil(t, err)
	assert.Equal(t, uint64(42), v.Uint64())
	assert.Equal(t, 0, s.Len())
}

func TestStackPopUnderflow(t *testing.T) {
	s := NewStack(16)
	_, err := s.Pop()
	assert.Equal(t, ErrStackUnderflow, err)
}

func TestStackPushOverflow(t *testing.T) {
	s := NewStack(2)
	require.Nil(t, s.Push(uint256.NewInt(1)))
	require.Nil(t, s.Push(uint256.NewInt(2)))
	assert.Equal(t, ErrStackOverflow, s.Push(uint256.NewInt(3)))
	assert.Equal(t, 2, s.Len())
}

func TestStackPeekDoesNotMutate(t *testing.T) {
	s := NewStack(16)
	require.Nil(t, s.Push(uint256.NewInt(1)))
	require.Nil(t, s.Push(uint256.NewInt(2)))

	top, err := s.Peek(0)
	require.Nil(t, err)
	assert.Equal(t, uint64(2), top.Uint64())
	assert.Equal(t, 2, s.Len())

	second, err := s.Peek(1)
	require.Nil(t, err)
	assert.Equal(t, uint64(1), second.Uint64())
}

func TestStackPeekUnderflow(t *testing.T) {
	s := NewStack(16)
	require.Nil(t, s.Push(uint256.NewInt(1)))
	_, err := s.Peek(1)
	assert.Equal(t, ErrStackUnderflow, err)
}

func TestStackDup(t *testing.T) {
	s := NewStack(16)
	require.Nil(t, s.Push(uint256.NewInt(10)))
	require.Nil(t, s.Push(uint256.NewInt(20)))
	require.Nil(t, s.Dup(1))

	top, err := s.Peek(0)
	require.Nil(t, err)
	assert.Equal(t, uint64(10), top.Uint64())
	assert.Equal(t, 3, s.Len())
}

func TestStackSwap(t *testing.T) {
	s := NewStack(16)
	require.Nil(t, s.Push(uint256.NewInt(1)))
	require.Nil(t, s.Push(uint256.NewInt(2)))
	require.Nil(t, s.Push(uint256.NewInt(3)))
	require.Nil(t, s.Swap(2))

	top, err := s.Peek(0)
	require.Nil(t, err)
	assert.Equal(t, uint64(1), top.Uint64())

	bottom, err := s.Peek(2)
	require.Nil(t, err)
	assert.Equal(t, uint64(3), bottom.Uint64())
}

func TestStackSetOverwritesInPlace(t *testing.T) {
	s := NewStack(16)
	require.Nil(t, s.Push(uint256.NewInt(1)))
	require.Nil(t, s.Push(uint256.NewInt(2)))
	require.Nil(t, s.Set(1, uint256.NewInt(99)))

	v, err := s.Peek(1)
	require.Nil(t, err)
	assert.Equal(t, uint64(99), v.Uint64())
}
