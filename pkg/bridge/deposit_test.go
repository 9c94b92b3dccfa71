package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

func depositJob(t *testing.T, d DepositJob) queue.Job {
	t.Helper()
	body, err := json.Marshal(d)
	require.NoError(t, err)
	return queue.Job{ID: "deposit-1", Topic: queue.TopicDeposit, Payload: body}
}

func TestProcessDeposit_Unclaimed(t *testing.T) {
	var refunded bool
	store := &mockStore{
		IsClaimedFunc: func(ctx context.Context, native string) (bool, error) { return false, nil },
	}
	l1 := &mockL1Client{
		SendFunc: func(ctx context.Context, to string, amount money.Units) (string, error) {
			refunded = true
			require.Equal(t, "paw_s", to)
			require.Equal(t, "1.000000000", amount.Decimal(money.NativeDecimals))
			return "0xrefund", nil
		},
	}
	s := newTestService(t, store, nil, l1, &mockEvmClient{}, nil, nil)

	amount, err := money.ParseDecimal("1.0", money.NativeDecimals)
	require.NoError(t, err)
	job := depositJob(t, DepositJob{Sender: "paw_s", Amount: amount, TsMillis: 1, Hash: "h1"})

	err = s.processDeposit(context.Background(), job)
	require.NoError(t, err)
	require.True(t, refunded)
}

func TestProcessDeposit_ExceedsDecimalPlaces(t *testing.T) {
	var refunded bool
	var stored bool
	store := &mockStore{
		IsClaimedFunc: func(ctx context.Context, native string) (bool, error) { return true, nil },
		StoreDepositFunc: func(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error {
			stored = true
			return nil
		},
	}
	l1 := &mockL1Client{
		SendFunc: func(ctx context.Context, to string, amount money.Units) (string, error) {
			refunded = true
			return "0xrefund", nil
		},
	}
	s := newTestService(t, store, nil, l1, &mockEvmClient{}, nil, nil)

	amount, err := money.ParseDecimal("1.466", money.NativeDecimals)
	require.NoError(t, err)
	job := depositJob(t, DepositJob{Sender: "paw_s", Amount: amount, TsMillis: 1, Hash: "h1"})

	err = s.processDeposit(context.Background(), job)
	require.NoError(t, err)
	require.True(t, refunded)
	require.False(t, stored)
}

func TestProcessDeposit_StoresAndConfirmsClaim(t *testing.T) {
	var confirmed, stored bool
	store := &mockStore{
		HasPendingClaimFunc: func(ctx context.Context, native string) (bool, error) { return true, nil },
		ConfirmClaimFunc: func(ctx context.Context, native string) (bool, error) {
			confirmed = true
			return true, nil
		},
		IsClaimedFunc: func(ctx context.Context, native string) (bool, error) { return true, nil },
		StoreDepositFunc: func(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error {
			stored = true
			require.Equal(t, "2.500000000", amount.Decimal(money.NativeDecimals))
			return nil
		},
	}
	l1 := &mockL1Client{
		HotBalanceFunc: func(ctx context.Context) (money.Units, error) { return money.FromInt64(0), nil },
	}
	s := newTestService(t, store, nil, l1, &mockEvmClient{}, nil, nil)

	amount, err := money.ParseDecimal("2.5", money.NativeDecimals)
	require.NoError(t, err)
	job := depositJob(t, DepositJob{Sender: "paw_s", Amount: amount, TsMillis: 1, Hash: "h1"})

	err = s.processDeposit(context.Background(), job)
	require.NoError(t, err)
	require.True(t, confirmed)
	require.True(t, stored)
}

func TestProcessDeposit_AlreadyRecordedIsNoop(t *testing.T) {
	store := &mockStore{
		IsClaimedFunc: func(ctx context.Context, native string) (bool, error) { return true, nil },
		HasDepositFunc: func(ctx context.Context, native, hash string) (bool, error) { return true, nil },
		StoreDepositFunc: func(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error {
			t.Fatal("should not store duplicate deposit")
			return nil
		},
	}
	s := newTestService(t, store, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	amount, err := money.ParseDecimal("1.0", money.NativeDecimals)
	require.NoError(t, err)
	job := depositJob(t, DepositJob{Sender: "paw_s", Amount: amount, TsMillis: 1, Hash: "h1"})

	err = s.processDeposit(context.Background(), job)
	require.NoError(t, err)
}
