package evmchain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/wpaw-bridge/pkg/evmchain/contracts"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

func TestScaleToNative(t *testing.T) {
	// 1.5 wTKN burned (18 decimals) credits 1.5 native (9 decimals).
	wrapped, ok := new(big.Int).SetString("1500000000000000000", 10)
	require.True(t, ok)

	native := scaleToNative(money.FromBigInt(wrapped))
	assert.Equal(t, "1500000000", native.String())
}

func TestBuildSwapToNativeJob(t *testing.T) {
	evm := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	amount, ok := new(big.Int).SetString("2000000000000000000", 10)
	require.True(t, ok)

	ev := &contracts.WtknSwapToNative{
		Evm:    evm,
		Native: "paw_burner",
		Amount: amount,
		Raw: types.Log{
			TxHash:      common.HexToHash("0xabc123"),
			BlockNumber: 777,
		},
	}
	wrappedBalance, err := money.ParseUnits("5000000000000000000")
	require.NoError(t, err)

	job := buildSwapToNativeJob(ev, wrappedBalance, 1700000000)

	assert.Equal(t, evm.Hex(), job.Evm)
	assert.Equal(t, "paw_burner", job.Native)
	assert.Equal(t, "2000000000", job.Amount.String())
	assert.Equal(t, wrappedBalance.String(), job.WrappedBalance.String())
	assert.Equal(t, ev.Raw.TxHash.Hex(), job.Hash)
	assert.EqualValues(t, 1700000000_000, job.TsMillis)
}
