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

import "github.com/davecgh/go-spew/spew"

// Dump renders the executor's speculative overlay as a human-readable
// string, field names and all. Unlike core/state's JSON Dump (which walks
// a committed trie), this walks the in-flight, never-committed state a
// StackExecutor is holding mid-transaction -- meant for dropping into a
// log line or a failing test, not for RPC consumption.
func (e *StackExecutor) Dump() string {
	return spew.Sdump(e.state)
}
