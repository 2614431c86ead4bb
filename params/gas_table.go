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

// Package params holds the numeric gas-schedule constants the gasometer
// reads from. Values follow the canonical Homestead/Byzantium/Istanbul
// schedule.
package params

const (
	GasZero     uint64 = 0
	GasBase     uint64 = 2
	GasVeryLow  uint64 = 3
	GasLow      uint64 = 5
	GasMid      uint64 = 8
	GasHigh     uint64 = 10
	GasJumpdest uint64 = 1

	GasMemory      uint64 = 3
	GasExp         uint64 = 10
	GasExpByte     uint64 = 50
	GasSha3        uint64 = 30
	GasSha3Word    uint64 = 6
	GasCopy        uint64 = 3
	GasLog         uint64 = 375
	GasLogData     uint64 = 8
	GasLogTopic    uint64 = 375
	GasBlockHash   uint64 = 20
	QuadCoeffDiv   uint64 = 512

	GasSload       uint64 = 800
	GasSstoreSet   uint64 = 20000
	GasSstoreReset uint64 = 5000
	RefundSstoreClears int64 = 15000

	GasExtCode     uint64 = 700
	GasBalance     uint64 = 700
	GasExtCodeHash uint64 = 700

	GasCall          uint64 = 700
	GasCallValue     uint64 = 9000
	GasCallStipend   uint64 = 2300
	GasNewAccount    uint64 = 25000

	GasCreate      uint64 = 32000
	GasCodeDeposit uint64 = 200
	GasSuicide     uint64 = 5000
	GasSuicideNewAccount uint64 = 25000
	RefundSuicide  int64 = 24000

	TxGas                 uint64 = 21000
	TxGasContractCreation uint64 = 53000
	TxDataZeroGas         uint64 = 4
	TxDataNonZeroGas      uint64 = 16

	MaxCodeSize      = 24576
	CallCreateDepth  = 1024
	StackLimit       = 1024
)
