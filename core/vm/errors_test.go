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

	"github.com/stretchr/testify/assert"
)

func TestFromErrorProducesErrorKind(t *testing.T) {
	reason := FromError(ErrOutOfGas)
	assert.True(t, reason.IsError())
	assert.False(t, reason.IsSucceed())
	assert.Equal(t, "out of gas", reason.String())
}

func TestFromFatalProducesFatalKind(t *testing.T) {
	reason := FromFatal(ErrUnhandledInterrupt)
	assert.True(t, reason.IsFatal())
	assert.False(t, reason.IsError())
}

func TestExitReasonClassifiers(t *testing.T) {
	assert.True(t, ExitStopped.IsSucceed())
	assert.True(t, ExitReverted.IsRevert())
	assert.False(t, ExitReverted.IsSucceed())
}

func TestErrOtherCarriesCustomMessage(t *testing.T) {
	err := ErrOther("custom condition")
	assert.Equal(t, "custom condition", err.Error())
}

func TestStepLimitReachedIsNotATerminalKind(t *testing.T) {
	assert.False(t, ExitStepLimitReached.IsSucceed())
	assert.False(t, ExitStepLimitReached.IsError())
	assert.False(t, ExitStepLimitReached.IsFatal())
}
