package bridge

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

func swapToWrappedJob(t *testing.T, j SwapToWrappedJob) queue.Job {
	t.Helper()
	body, err := json.Marshal(j)
	require.NoError(t, err)
	return queue.Job{ID: "swap-to-wrapped-1", Topic: queue.TopicSwapToWrapped, Payload: body}
}

func TestProcessSwapToWrapped_WithoutClaim(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, swapToWrappedChallenge("10", "PAW", "paw_a"))
	require.NoError(t, err)
	j := SwapToWrappedJob{Native: "paw_a", Amount: "10", Evm: evm, Signature: sig, TsMillis: 1}

	store := &mockStore{
		HasClaimFunc: func(ctx context.Context, native, evm string) (bool, error) { return false, nil },
	}
	s := newTestService(t, store, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	err = s.processSwapToWrapped(context.Background(), swapToWrappedJob(t, j))
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryInvalidOwner))
}

func TestProcessSwapToWrapped_InsufficientBalance(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, swapToWrappedChallenge("10", "PAW", "paw_a"))
	require.NoError(t, err)
	j := SwapToWrappedJob{Native: "paw_a", Amount: "10", Evm: evm, Signature: sig, TsMillis: 1}

	store := &mockStore{
		HasClaimFunc: func(ctx context.Context, native, evm string) (bool, error) { return true, nil },
		GetBalanceFunc: func(ctx context.Context, native string) (money.Units, error) {
			return money.ParseDecimal("1", money.NativeDecimals)
		},
	}
	s := newTestService(t, store, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	err = s.processSwapToWrapped(context.Background(), swapToWrappedJob(t, j))
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryInsufficientBalance))
}

func TestProcessSwapToWrapped_Success(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, swapToWrappedChallenge("10", "PAW", "paw_a"))
	require.NoError(t, err)
	j := SwapToWrappedJob{Native: "paw_a", Amount: "10", Evm: evm, Signature: sig, TsMillis: 1}

	var storedReceipt string
	store := &mockStore{
		HasClaimFunc: func(ctx context.Context, native, evm string) (bool, error) { return true, nil },
		GetBalanceFunc: func(ctx context.Context, native string) (money.Units, error) {
			return money.ParseDecimal("20", money.NativeDecimals)
		},
		StoreSwapToWrappedFunc: func(ctx context.Context, native, evm string, amount money.Units, tsMillis int64, receipt, uuid string) error {
			storedReceipt = receipt
			require.Equal(t, "10.000000000", amount.Decimal(money.NativeDecimals))
			return nil
		},
	}
	evmClient := &mockEvmClient{
		SignMintReceiptFunc: func(evm string, amount money.Units, uuid *big.Int) (string, error) {
			return "0xsignedreceipt", nil
		},
	}
	s := newTestService(t, store, nil, &mockL1Client{}, evmClient, nil, nil)

	err = s.processSwapToWrapped(context.Background(), swapToWrappedJob(t, j))
	require.NoError(t, err)
	require.Equal(t, "0xsignedreceipt", storedReceipt)
}

func TestProcessSwapToNative_Idempotent(t *testing.T) {
	var stored int
	store := &mockStore{
		HasSwapToNativeFunc: func(ctx context.Context, evm, hash string) (bool, error) { return stored > 0, nil },
		StoreSwapToNativeFunc: func(ctx context.Context, swap ledger.SwapToNative) error {
			stored++
			return nil
		},
	}
	s := newTestService(t, store, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	j := SwapToNativeJob{Evm: "0xabc", Native: "paw_a", Amount: money.FromInt64(5), Hash: "h1", TsMillis: 1}
	body, err := json.Marshal(j)
	require.NoError(t, err)
	job := queue.Job{ID: "swap-to-native-1", Topic: queue.TopicSwapToNative, Payload: body}

	require.NoError(t, s.processSwapToNative(context.Background(), job))
	require.NoError(t, s.processSwapToNative(context.Background(), job))
	require.Equal(t, 1, stored)
}
