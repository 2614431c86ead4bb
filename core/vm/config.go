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

import "github.com/probeum/evmcore/params"

// Config is the explicit, hard-fork-shaped behavior switch the interpreter,
// gasometer, and executor are all constructed against. There is no global
// singleton: every Runtime, Gasometer and StackExecutor carries its own
// *Config, so multiple forks can
// coexist in the same process (e.g. simulating an old block on a node that
// has since upgraded).
type Config struct {
	GasExtCode     uint64
	GasBalance     uint64
	GasSLoad       uint64
	GasSStoreSet   uint64
	GasSStoreReset uint64
	RefundSStoreClears int64

	GasSuicide          uint64
	GasSuicideNewAccount uint64
	RefundSuicide       int64

	GasCall      uint64
	GasExpByte   uint64
	GasExtCodeHash uint64

	GasTransactionCall         uint64
	GasTransactionCreate       uint64
	GasTransactionZeroData     uint64
	GasTransactionNonZeroData  uint64

	SStoreGasMetering        bool
	SStoreRevertUnderStipend bool
	ErrOnCallWithMoreGas     bool
	EmptyConsideredExists    bool
	CreateIncreaseNonce      bool
	CallL64AfterGas          bool
	Estimate                 bool

	CallCreateDepth int
	CallStipend     uint64
	StackLimit      int

	HasDelegateCall      bool
	HasCreate2           bool
	HasRevert            bool
	HasReturnData        bool
	HasBitwiseShifting   bool
	HasChainID           bool
	HasSelfBalance       bool
	HasExtCodeHash       bool

	CreateContractLimit int
}

// IstanbulConfig returns the Config for the Istanbul hard fork: net-metered
// SSTORE (EIP-2200), CHAINID/SELFBALANCE (EIP-1344/1884), and every earlier
// fork's features folded in.
func IstanbulConfig() *Config {
	return &Config{
		GasExtCode:     params.GasExtCode,
		GasBalance:     params.GasBalance,
		GasSLoad:       params.GasSload,
		GasSStoreSet:   params.GasSstoreSet,
		GasSStoreReset: params.GasSstoreReset,
		RefundSStoreClears: params.RefundSstoreClears,

		GasSuicide:           params.GasSuicide,
		GasSuicideNewAccount: params.GasSuicideNewAccount,
		RefundSuicide:        params.RefundSuicide,

		GasCall:        params.GasCall,
		GasExpByte:     params.GasExpByte,
		GasExtCodeHash: params.GasExtCodeHash,

		GasTransactionCall:        params.TxGas,
		GasTransactionCreate:      params.TxGasContractCreation,
		GasTransactionZeroData:    params.TxDataZeroGas,
		GasTransactionNonZeroData: params.TxDataNonZeroGas,

		SStoreGasMetering:        true,
		SStoreRevertUnderStipend: true,
		ErrOnCallWithMoreGas:     false,
		EmptyConsideredExists:    false,
		CreateIncreaseNonce:      true,
		CallL64AfterGas:          true,

		CallCreateDepth: params.CallCreateDepth,
		CallStipend:     params.GasCallStipend,
		StackLimit:      params.StackLimit,

		HasDelegateCall:    true,
		HasCreate2:         true,
		HasRevert:          true,
		HasReturnData:      true,
		HasBitwiseShifting: true,
		HasChainID:         true,
		HasSelfBalance:     true,
		HasExtCodeHash:     true,

		CreateContractLimit: params.MaxCodeSize,
	}
}

// FrontierConfig returns the Config for the original Frontier hard fork:
// no CREATE2, no REVERT, no bitwise shifting, legacy (non-metered) SSTORE.
func FrontierConfig() *Config {
	cfg := IstanbulConfig()
	cfg.SStoreGasMetering = false
	cfg.SStoreRevertUnderStipend = false
	cfg.CreateIncreaseNonce = false
	cfg.CallL64AfterGas = false
	cfg.EmptyConsideredExists = true
	cfg.HasDelegateCall = false
	cfg.HasCreate2 = false
	cfg.HasRevert = false
	cfg.HasReturnData = false
	cfg.HasBitwiseShifting = false
	cfg.HasChainID = false
	cfg.HasSelfBalance = false
	cfg.HasExtCodeHash = false
	cfg.CreateContractLimit = 0
	return cfg
}

// ByzantiumConfig returns the Config for the Byzantium hard fork: adds
// REVERT and RETURNDATA*, keeps legacy SSTORE metering.
func ByzantiumConfig() *Config {
	cfg := FrontierConfig()
	cfg.HasRevert = true
	cfg.HasReturnData = true
	cfg.CreateContractLimit = params.MaxCodeSize
	return cfg
}
