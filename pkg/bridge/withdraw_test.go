package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

func withdrawalJob(t *testing.T, w WithdrawalJob) queue.Job {
	t.Helper()
	body, err := json.Marshal(w)
	require.NoError(t, err)
	return queue.Job{ID: "withdrawal-1", Topic: queue.TopicWithdrawal, Payload: body, Attempt: w.Attempt}
}

func claimedWithdrawalStore(balance string, getBalanceErr error) *mockStore {
	return &mockStore{
		IsClaimedFunc: func(ctx context.Context, native string) (bool, error) { return true, nil },
		HasClaimFunc:  func(ctx context.Context, native, evm string) (bool, error) { return true, nil },
		GetBalanceFunc: func(ctx context.Context, native string) (money.Units, error) {
			return money.ParseDecimal(balance, money.NativeDecimals)
		},
	}
}

func TestProcessWithdrawal_NegativeAmount(t *testing.T) {
	evm := testEvmAddress(t)
	w := WithdrawalJob{Native: "paw_a", Amount: "-5", Evm: evm, TsMillis: 1}
	s := newTestService(t, claimedWithdrawalStore("200", nil), nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	err := s.processWithdrawal(context.Background(), withdrawalJob(t, w))
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryDataError))
}

func TestProcessWithdrawal_InsufficientHotLiquidity(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, withdrawChallenge("150", "PAW", "paw_a"))
	require.NoError(t, err)
	w := WithdrawalJob{Native: "paw_a", Amount: "150", Evm: evm, Signature: sig, TsMillis: 1}

	var enqueued bool
	q := &mockQueue{
		EnqueuePendingWithdrawalFunc: func(ctx context.Context, native string, tsMillis int64, attempt int, amount money.Units, payload interface{}) error {
			enqueued = true
			return nil
		},
	}
	l1 := &mockL1Client{
		HotBalanceFunc: func(ctx context.Context) (money.Units, error) { return money.FromInt64(100 * 1e9), nil },
		SendFunc: func(ctx context.Context, to string, amount money.Units) (string, error) {
			t.Fatal("should not send while hot liquidity is insufficient")
			return "", nil
		},
	}
	s := newTestService(t, claimedWithdrawalStore("200", nil), q, l1, &mockEvmClient{}, nil, nil)

	err = s.processWithdrawal(context.Background(), withdrawalJob(t, w))
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryPendingLiquidity))
	require.True(t, enqueued)
}

func TestProcessWithdrawal_IdempotentSecondSubmission(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, withdrawChallenge("10", "PAW", "paw_a"))
	require.NoError(t, err)
	w := WithdrawalJob{Native: "paw_a", Amount: "10", Evm: evm, Signature: sig, TsMillis: 1}

	store := claimedWithdrawalStore("200", nil)
	var sent int
	store.HasWithdrawalAtFunc = func(ctx context.Context, native string, tsMillis int64) (bool, error) {
		return sent > 0, nil
	}
	l1 := &mockL1Client{
		HotBalanceFunc: func(ctx context.Context) (money.Units, error) { return money.FromInt64(300 * 1e9), nil },
		SendFunc: func(ctx context.Context, to string, amount money.Units) (string, error) {
			sent++
			return "0xhash", nil
		},
	}
	s := newTestService(t, store, nil, l1, &mockEvmClient{}, nil, nil)

	require.NoError(t, s.processWithdrawal(context.Background(), withdrawalJob(t, w)))
	err = s.processWithdrawal(context.Background(), withdrawalJob(t, w))
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryAlreadyProcessed))
	require.Equal(t, 1, sent)
}
