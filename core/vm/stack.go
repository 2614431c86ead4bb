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

import "github.com/holiman/uint256"

// Stack is the EVM's 256-bit-word operand stack, bounded by a fixed limit.
// A failed push or pop leaves the stack unchanged.
type Stack struct {
	data  []uint256.Int
	limit int
}

// NewStack creates an empty stack with the given element limit.
func NewStack(limit int) *Stack {
	return &Stack{data: make([]uint256.Int, 0, 16), limit: limit}
}

// Len returns the number of elements currently on the stack.
func (s *Stack) Len() int { return len(s.data) }

// Limit returns the maximum number of elements the stack may hold.
func (s *Stack) Limit() int { return s.limit }

// Push pushes value onto the stack, or returns ErrStackOverflow if that
// would exceed the stack's limit.
func (s *Stack) Push(value *uint256.Int) *ExitError {
	if len(s.data)+1 > s.limit {
		return ErrStackOverflow
	}
	s.data = append(s.data, *value)
	return nil
}

// Pop removes and returns the top of the stack, or ErrStackUnderflow if
// the stack is empty.
func (s *Stack) Pop() (*uint256.Int, *ExitError) {
	n := len(s.data)
	if n == 0 {
		return nil, ErrStackUnderflow
	}
	v := s.data[n-1]
	s.data = s.data[:n-1]
	return &v, nil
}

// Peek returns the value noFromTop elements below the top (0 = the top
// element itself) without removing it.
func (s *Stack) Peek(noFromTop int) (*uint256.Int, *ExitError) {
	n := len(s.data)
	if n <= noFromTop {
		return nil, ErrStackUnderflow
	}
	v := s.data[n-noFromTop-1]
	return &v, nil
}

// Set overwrites the value noFromTop elements below the top.
func (s *Stack) Set(noFromTop int, val *uint256.Int) *ExitError {
	n := len(s.data)
	if n <= noFromTop {
		return ErrStackUnderflow
	}
	s.data[n-noFromTop-1] = *val
	return nil
}

// Dup duplicates the value noFromTop elements below the top onto the top
// of the stack.
func (s *Stack) Dup(noFromTop int) *ExitError {
	n := len(s.data)
	if n <= noFromTop {
		return ErrStackUnderflow
	}
	v := s.data[n-noFromTop-1]
	return s.Push(&v)
}

// Swap exchanges the top of the stack with the value noFromTop elements
// below it.
func (s *Stack) Swap(noFromTop int) *ExitError {
	n := len(s.data)
	if n <= noFromTop {
		return ErrStackUnderflow
	}
	a, b := n-noFromTop-1, n-1
	s.data[a], s.data[b] = s.data[b], s.data[a]
	return nil
}
