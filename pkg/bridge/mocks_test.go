package bridge

import (
	"context"
	"math/big"

	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

// mockStore is an in-memory func-field double for ledger.LedgerStore.
type mockStore struct {
	GetBalanceFunc         func(ctx context.Context, native string) (money.Units, error)
	HasPendingClaimFunc    func(ctx context.Context, native string) (bool, error)
	StorePendingClaimFunc  func(ctx context.Context, native, evm string) (bool, error)
	IsClaimedFunc          func(ctx context.Context, native string) (bool, error)
	HasClaimFunc           func(ctx context.Context, native, evm string) (bool, error)
	ConfirmClaimFunc       func(ctx context.Context, native string) (bool, error)
	StoreDepositFunc       func(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error
	HasDepositFunc         func(ctx context.Context, native, hash string) (bool, error)
	StoreWithdrawalFunc    func(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error
	HasWithdrawalAtFunc    func(ctx context.Context, native string, tsMillis int64) (bool, error)
	StoreSwapToWrappedFunc func(ctx context.Context, native, evm string, amount money.Units, tsMillis int64, receipt, uuid string) error
	StoreSwapToNativeFunc  func(ctx context.Context, swap ledger.SwapToNative) error
	HasSwapToNativeFunc    func(ctx context.Context, evm, hash string) (bool, error)
	GetScanCursorFunc      func(ctx context.Context) (int64, error)
	AdvanceScanCursorFunc  func(ctx context.Context, block int64) error
	ListDepositsFunc       func(ctx context.Context, native string) ([]ledger.DepositRecord, error)
	ListWithdrawalsFunc    func(ctx context.Context, native string) ([]ledger.WithdrawalRecord, error)
	ListSwapsToWrappedFunc func(ctx context.Context, native string) ([]ledger.SwapToWrappedRecord, error)
	ListSwapsToNativeFunc  func(ctx context.Context, evm string) ([]ledger.SwapToNativeRecord, error)
}

func (m *mockStore) GetBalance(ctx context.Context, native string) (money.Units, error) {
	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, native)
	}
	return money.Zero(), nil
}

func (m *mockStore) HasPendingClaim(ctx context.Context, native string) (bool, error) {
	if m.HasPendingClaimFunc != nil {
		return m.HasPendingClaimFunc(ctx, native)
	}
	return false, nil
}

func (m *mockStore) StorePendingClaim(ctx context.Context, native, evm string) (bool, error) {
	if m.StorePendingClaimFunc != nil {
		return m.StorePendingClaimFunc(ctx, native, evm)
	}
	return true, nil
}

func (m *mockStore) IsClaimed(ctx context.Context, native string) (bool, error) {
	if m.IsClaimedFunc != nil {
		return m.IsClaimedFunc(ctx, native)
	}
	return false, nil
}

func (m *mockStore) HasClaim(ctx context.Context, native, evm string) (bool, error) {
	if m.HasClaimFunc != nil {
		return m.HasClaimFunc(ctx, native, evm)
	}
	return false, nil
}

func (m *mockStore) ConfirmClaim(ctx context.Context, native string) (bool, error) {
	if m.ConfirmClaimFunc != nil {
		return m.ConfirmClaimFunc(ctx, native)
	}
	return true, nil
}

func (m *mockStore) StoreDeposit(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error {
	if m.StoreDepositFunc != nil {
		return m.StoreDepositFunc(ctx, native, amount, tsMillis, hash)
	}
	return nil
}

func (m *mockStore) HasDeposit(ctx context.Context, native, hash string) (bool, error) {
	if m.HasDepositFunc != nil {
		return m.HasDepositFunc(ctx, native, hash)
	}
	return false, nil
}

func (m *mockStore) StoreWithdrawal(ctx context.Context, native string, amount money.Units, tsMillis int64, hash string) error {
	if m.StoreWithdrawalFunc != nil {
		return m.StoreWithdrawalFunc(ctx, native, amount, tsMillis, hash)
	}
	return nil
}

func (m *mockStore) HasWithdrawalAt(ctx context.Context, native string, tsMillis int64) (bool, error) {
	if m.HasWithdrawalAtFunc != nil {
		return m.HasWithdrawalAtFunc(ctx, native, tsMillis)
	}
	return false, nil
}

func (m *mockStore) StoreSwapToWrapped(ctx context.Context, native, evm string, amount money.Units, tsMillis int64, receipt, uuid string) error {
	if m.StoreSwapToWrappedFunc != nil {
		return m.StoreSwapToWrappedFunc(ctx, native, evm, amount, tsMillis, receipt, uuid)
	}
	return nil
}

func (m *mockStore) StoreSwapToNative(ctx context.Context, swap ledger.SwapToNative) error {
	if m.StoreSwapToNativeFunc != nil {
		return m.StoreSwapToNativeFunc(ctx, swap)
	}
	return nil
}

func (m *mockStore) HasSwapToNative(ctx context.Context, evm, hash string) (bool, error) {
	if m.HasSwapToNativeFunc != nil {
		return m.HasSwapToNativeFunc(ctx, evm, hash)
	}
	return false, nil
}

func (m *mockStore) GetScanCursor(ctx context.Context) (int64, error) {
	if m.GetScanCursorFunc != nil {
		return m.GetScanCursorFunc(ctx)
	}
	return 0, nil
}

func (m *mockStore) AdvanceScanCursor(ctx context.Context, block int64) error {
	if m.AdvanceScanCursorFunc != nil {
		return m.AdvanceScanCursorFunc(ctx, block)
	}
	return nil
}

func (m *mockStore) ListDeposits(ctx context.Context, native string) ([]ledger.DepositRecord, error) {
	if m.ListDepositsFunc != nil {
		return m.ListDepositsFunc(ctx, native)
	}
	return nil, nil
}

func (m *mockStore) ListWithdrawals(ctx context.Context, native string) ([]ledger.WithdrawalRecord, error) {
	if m.ListWithdrawalsFunc != nil {
		return m.ListWithdrawalsFunc(ctx, native)
	}
	return nil, nil
}

func (m *mockStore) ListSwapsToWrapped(ctx context.Context, native string) ([]ledger.SwapToWrappedRecord, error) {
	if m.ListSwapsToWrappedFunc != nil {
		return m.ListSwapsToWrappedFunc(ctx, native)
	}
	return nil, nil
}

func (m *mockStore) ListSwapsToNative(ctx context.Context, evm string) ([]ledger.SwapToNativeRecord, error) {
	if m.ListSwapsToNativeFunc != nil {
		return m.ListSwapsToNativeFunc(ctx, evm)
	}
	return nil, nil
}

var _ ledger.LedgerStore = (*mockStore)(nil)

// mockQueue is a func-field double for queue.Queue: it records registered
// processors and delegates each enqueue/query method to its func field when
// set. It never runs a processor itself, which keeps bridge package tests
// free of timing.
type mockQueue struct {
	processors map[string]queue.ProcessorFunc

	EnqueueFunc                     func(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error
	EnqueuePendingWithdrawalFunc    func(ctx context.Context, native string, tsMillis int64, attempt int, amount money.Units, payload interface{}) error
	GetPendingWithdrawalsAmountFunc func(ctx context.Context) (money.Units, error)
}

func (m *mockQueue) Start(ctx context.Context) {}
func (m *mockQueue) Stop()                     {}

func (m *mockQueue) RegisterProcessor(topic string, fn queue.ProcessorFunc) {
	if m.processors == nil {
		m.processors = map[string]queue.ProcessorFunc{}
	}
	m.processors[topic] = fn
}

func (m *mockQueue) AddJobListener(onCompleted func(queue.Job), onFailed func(queue.Job, error)) {}

func (m *mockQueue) Enqueue(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, topic, id, payload, amount)
	}
	return nil
}

func (m *mockQueue) EnqueuePendingWithdrawal(ctx context.Context, native string, tsMillis int64, attempt int, amount money.Units, payload interface{}) error {
	if m.EnqueuePendingWithdrawalFunc != nil {
		return m.EnqueuePendingWithdrawalFunc(ctx, native, tsMillis, attempt, amount, payload)
	}
	return nil
}

func (m *mockQueue) GetPendingWithdrawalsAmount(ctx context.Context) (money.Units, error) {
	if m.GetPendingWithdrawalsAmountFunc != nil {
		return m.GetPendingWithdrawalsAmountFunc(ctx)
	}
	return money.Zero(), nil
}

var _ queue.Queue = (*mockQueue)(nil)

type mockL1Client struct {
	ReceiveFunc           func(ctx context.Context, hash string) error
	SendFunc              func(ctx context.Context, to string, amount money.Units) (string, error)
	HotBalanceFunc        func(ctx context.Context) (money.Units, error)
	ColdBalanceFunc       func(ctx context.Context) (money.Units, error)
	TransferHotToColdFunc func(ctx context.Context, amount money.Units) error
}

func (m *mockL1Client) Receive(ctx context.Context, hash string) error {
	if m.ReceiveFunc != nil {
		return m.ReceiveFunc(ctx, hash)
	}
	return nil
}

func (m *mockL1Client) Send(ctx context.Context, to string, amount money.Units) (string, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, amount)
	}
	return "0xhash", nil
}

func (m *mockL1Client) HotBalance(ctx context.Context) (money.Units, error) {
	if m.HotBalanceFunc != nil {
		return m.HotBalanceFunc(ctx)
	}
	return money.Zero(), nil
}

func (m *mockL1Client) ColdBalance(ctx context.Context) (money.Units, error) {
	if m.ColdBalanceFunc != nil {
		return m.ColdBalanceFunc(ctx)
	}
	return money.Zero(), nil
}

func (m *mockL1Client) TransferHotToCold(ctx context.Context, amount money.Units) error {
	if m.TransferHotToColdFunc != nil {
		return m.TransferHotToColdFunc(ctx, amount)
	}
	return nil
}

var _ L1Client = (*mockL1Client)(nil)

type mockEvmClient struct {
	BalanceOfFunc       func(ctx context.Context, evm string) (money.Units, error)
	SignMintReceiptFunc func(evm string, amount money.Units, uuid *big.Int) (string, error)
	ChainIDFunc         func() int64
}

func (m *mockEvmClient) BalanceOf(ctx context.Context, evm string) (money.Units, error) {
	if m.BalanceOfFunc != nil {
		return m.BalanceOfFunc(ctx, evm)
	}
	return money.Zero(), nil
}

func (m *mockEvmClient) SignMintReceipt(evm string, amount money.Units, uuid *big.Int) (string, error) {
	if m.SignMintReceiptFunc != nil {
		return m.SignMintReceiptFunc(evm, amount, uuid)
	}
	return "0xsig", nil
}

func (m *mockEvmClient) ChainID() int64 {
	if m.ChainIDFunc != nil {
		return m.ChainIDFunc()
	}
	return 1
}

var _ EvmClient = (*mockEvmClient)(nil)

type mockBlacklistOracle struct {
	IsBlacklistedFunc func(ctx context.Context, native string) (*BlacklistHit, error)
}

func (m *mockBlacklistOracle) IsBlacklisted(ctx context.Context, native string) (*BlacklistHit, error) {
	if m.IsBlacklistedFunc != nil {
		return m.IsBlacklistedFunc(ctx, native)
	}
	return nil, nil
}

var _ BlacklistOracle = (*mockBlacklistOracle)(nil)

type mockNotificationSink struct {
	notifications []notified
}

type notified struct {
	Native string
	Event  Notification
}

func (m *mockNotificationSink) Notify(native string, event Notification) {
	m.notifications = append(m.notifications, notified{Native: native, Event: event})
}

var _ NotificationSink = (*mockNotificationSink)(nil)
