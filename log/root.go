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
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var root = &logger{[]interface{}{}, new(swapHandler)}

func init() {
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	var out = os.Stderr
	var writer = colorable.NewColorable(out)
	root.SetHandler(LvlFilterHandler(LvlInfo, StreamHandler(writer, TerminalFormat(useColor))))
}

// Root returns the root logger.
func Root() Logger { return root }

// SetRootHandler replaces the root logger's Handler.
func SetRootHandler(h Handler) { root.SetHandler(h) }

func Trace(msg string, ctx ...interface{}) { root.write(msg, LvlTrace, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(msg, LvlDebug, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(msg, LvlInfo, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(msg, LvlWarn, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(msg, LvlError, ctx) }
func Crit(msg string, ctx ...interface{}) {
	root.write(msg, LvlCrit, ctx)
	os.Exit(1)
}
