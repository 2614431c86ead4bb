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
	"bytes"
	"fmt"
	"strconv"

	"github.com/fatih/color"
)

// Format turns a Record into a byte slice ready to be written to a sink.
type Format interface {
	Format(r *Record) []byte
}

// FormatFunc adapts a function to the Format interface.
type FormatFunc func(*Record) []byte

func (f FormatFunc) Format(r *Record) []byte { return f(r) }

var levelColor = map[Lvl]color.Attribute{
	LvlCrit:  color.FgMagenta,
	LvlError: color.FgRed,
	LvlWarn:  color.FgYellow,
	LvlInfo:  color.FgGreen,
	LvlDebug: color.FgCyan,
	LvlTrace: color.FgWhite,
}

// TerminalFormat formats a log Record for a color-capable terminal,
// coloring the level tag with github.com/fatih/color the way the teacher's
// interactive console output does.
func TerminalFormat(useColor bool) Format {
	return FormatFunc(func(r *Record) []byte {
		var buf bytes.Buffer

		lvlTag := r.Lvl.AlignedString()
		if useColor {
			c := color.New(levelColor[r.Lvl]).SprintFunc()
			lvlTag = c(lvlTag)
		}

		fmt.Fprintf(&buf, "%s[%s] %s", r.Time.Format("01-02|15:04:05.000"), lvlTag, r.Msg)

		for i := 0; i < len(r.Ctx); i += 2 {
			k := fmt.Sprintf("%v", r.Ctx[i])
			var v string
			if i+1 < len(r.Ctx) {
				v = formatValue(r.Ctx[i+1])
			}
			fmt.Fprintf(&buf, " %s=%s", k, v)
		}
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case error:
		return strconv.Quote(x.Error())
	case fmt.Stringer:
		return strconv.Quote(x.String())
	default:
		return fmt.Sprintf("%+v", v)
	}
}

// LogfmtFormat formats a log Record in logfmt, suitable for non-interactive
// sinks (files, pipes) where color escape codes would be noise.
func LogfmtFormat() Format {
	return FormatFunc(func(r *Record) []byte {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "t=%s lvl=%s msg=%s", r.Time.Format("2006-01-02T15:04:05-0700"),
			r.Lvl.AlignedString(), strconv.Quote(r.Msg))
		for i := 0; i < len(r.Ctx); i += 2 {
			fmt.Fprintf(&buf, " %v=%s", r.Ctx[i], formatValue(safeIndex(r.Ctx, i+1)))
		}
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

func safeIndex(ctx []interface{}, i int) interface{} {
	if i < len(ctx) {
		return ctx[i]
	}
	return nil
}
