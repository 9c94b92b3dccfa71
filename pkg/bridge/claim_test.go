package bridge

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

const testPrivKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testEvmAddress(t *testing.T) string {
	t.Helper()
	key, err := crypto.HexToECDSA(testPrivKey)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func newTestService(t *testing.T, store *mockStore, q *mockQueue, l1 *mockL1Client, evm *mockEvmClient, bl *mockBlacklistOracle, notifier *mockNotificationSink) *Service {
	t.Helper()
	if q == nil {
		q = &mockQueue{}
	}
	// Pass untyped nils through so the service's nil checks see "absent"
	// rather than a non-nil interface holding a nil pointer.
	var blacklist BlacklistOracle
	if bl != nil {
		blacklist = bl
	}
	var sink NotificationSink
	if notifier != nil {
		sink = notifier
	}
	return NewService(store, q, l1, evm, blacklist, sink, Config{
		NativeSymbol: "PAW",
		HotMinimum:   money.FromInt64(1000),
		HotColdRatio: 0.2,
	}, zap.NewNop())
}

func TestClaim_Success(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, claimChallenge("paw_alice"))
	require.NoError(t, err)

	store := &mockStore{}
	s := newTestService(t, store, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	err = s.Claim(context.Background(), "paw_alice", evm, sig)
	require.NoError(t, err)
}

func TestClaim_DoubleClaim(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, claimChallenge("paw_alice"))
	require.NoError(t, err)

	store := &mockStore{
		HasClaimFunc: func(ctx context.Context, native, evm string) (bool, error) { return true, nil },
	}
	s := newTestService(t, store, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	err = s.Claim(context.Background(), "paw_alice", evm, sig)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryAlreadyProcessed))
}

func TestClaim_CollisionWithPendingClaim(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, claimChallenge("paw_alice"))
	require.NoError(t, err)

	store := &mockStore{
		HasPendingClaimFunc: func(ctx context.Context, native string) (bool, error) { return true, nil },
	}
	s := newTestService(t, store, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	err = s.Claim(context.Background(), "paw_alice", evm, sig)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryInvalidOwner))
}

func TestClaim_Blacklisted(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, claimChallenge("paw_alice"))
	require.NoError(t, err)

	bl := &mockBlacklistOracle{
		IsBlacklistedFunc: func(ctx context.Context, native string) (*BlacklistHit, error) {
			return &BlacklistHit{Address: native, Type: "sanctions"}, nil
		},
	}
	s := newTestService(t, &mockStore{}, nil, &mockL1Client{}, &mockEvmClient{}, bl, nil)

	err = s.Claim(context.Background(), "paw_alice", evm, sig)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryBlacklisted))
}

func TestClaim_InvalidSignature(t *testing.T) {
	evm := testEvmAddress(t)
	sig, err := signChallenge(testPrivKey, "not the challenge")
	require.NoError(t, err)

	s := newTestService(t, &mockStore{}, nil, &mockL1Client{}, &mockEvmClient{}, nil, nil)

	err = s.Claim(context.Background(), "paw_alice", evm, sig)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.CategoryInvalidSignature))
}
