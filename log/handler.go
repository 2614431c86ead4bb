// Copyright 2014 The go-probeum Authors
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

package log

import (
	"io"
	"sync"
)

// Handler writes a Record to some sink.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// StreamHandler writes records to an io.Writer using the given Format.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	h := FuncHandler(func(r *Record) error {
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
	return &syncHandler{h: h}
}

type syncHandler struct {
	mu sync.Mutex
	h  Handler
}

func (s *syncHandler) Log(r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Log(r)
}

// LvlFilterHandler returns a Handler that only writes records at or above
// the given level to the wrapped Handler.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// swapHandler wraps another handler that can be swapped out dynamically at
// runtime in a thread-safe fashion.
type swapHandler struct {
	mu sync.RWMutex
	h  Handler
}

func (s *swapHandler) Log(r *Record) error {
	s.mu.RLock()
	h := s.h
	s.mu.RUnlock()
	if h == nil {
		return nil
	}
	return h.Log(r)
}

func (s *swapHandler) Swap(h Handler) {
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

func (s *swapHandler) Get() Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h
}

// DiscardHandler discards all log records it receives.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}
