// Package bridge implements the custodial bridge's core state machine: claim,
// deposit, withdraw, and bidirectional swap, plus hot/cold rebalancing and
// the blacklist check that gates claims. It depends only on capability
// interfaces (LedgerStore, Queue, L1Client, EvmClient, BlacklistOracle) so it
// can be driven by in-memory doubles in tests and by the real chain clients
// in production.
package bridge

import (
	"context"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

// L1Client is the capability interface for the native-coin ledger: the
// balance-affecting operations the Bridge Service performs directly
// (idempotent receive-acknowledgement, hot-wallet send, balance reads, and
// the hot->cold rebalancing transfer). Subscription/sweep live in the L1
// Watcher, which uses the concrete l1chain.Client rather than this interface.
type L1Client interface {
	// Receive acknowledges a hot-wallet receivable by hash. Idempotent:
	// safe to call again on replay.
	Receive(ctx context.Context, hash string) error
	// Send transfers amount from the hot wallet to a native address,
	// returning the resulting transaction hash.
	Send(ctx context.Context, to string, amount money.Units) (hash string, err error)
	HotBalance(ctx context.Context) (money.Units, error)
	ColdBalance(ctx context.Context) (money.Units, error)
	// TransferHotToCold moves amount from the hot wallet to the cold wallet.
	TransferHotToCold(ctx context.Context, amount money.Units) error
}

// EvmClient is the capability interface for the EVM chain: reading wTKN
// balances for reporting and signing mint receipts with the bridge's EVM
// key. Event subscription/scanning live in the EVM Watcher.
type EvmClient interface {
	BalanceOf(ctx context.Context, evm string) (money.Units, error)
	// SignMintReceipt signs keccak256(abi.encode(evm, amount, uuid, chainId))
	// with the bridge's EVM key, returning the 0x-hex signature.
	SignMintReceipt(evm string, amount money.Units, uuid *big.Int) (string, error)
	ChainID() int64
}

// BlacklistHit describes a positive blacklist match.
type BlacklistHit struct {
	Address string
	Alias   string
	Type    string
}

// BlacklistOracle checks a native address against the blacklist provider.
type BlacklistOracle interface {
	IsBlacklisted(ctx context.Context, native string) (*BlacklistHit, error)
}

// NotificationSink pushes a job's outcome to the owning user's event bus.
// The production fan-out (SSE) lives in pkg/api; this interface lets the
// Bridge Service stay ignorant of the transport.
type NotificationSink interface {
	Notify(native string, event Notification)
}

// Notification is one event pushed to a user's SSE stream.
type Notification struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Config carries the bridge's policy knobs.
type Config struct {
	NativeSymbol string
	HotMinimum   money.Units
	// HotColdRatio is the target fraction of total (hot+cold) custody the
	// hot wallet should hold, 0<=r<=1.
	HotColdRatio float64
	// DepositAddress is the hot wallet's native address, the deposit
	// destination returned by GET /deposits/native/wallet.
	DepositAddress string
}

// Service is the bridge's core state machine.
type Service struct {
	store      ledger.LedgerStore
	queue      queue.Queue
	l1         L1Client
	evm        EvmClient
	blacklist  BlacklistOracle
	notifier   NotificationSink
	logger     *zap.Logger
	cfg        Config
	nowMillis  func() int64
	newUUID    func() *big.Int
}

// NewService wires the Bridge Service and registers its job processors with
// the queue. Registration happens at construction time; the queue invokes
// handlers by topic at runtime.
func NewService(
	store ledger.LedgerStore,
	q queue.Queue,
	l1 L1Client,
	evm EvmClient,
	blacklist BlacklistOracle,
	notifier NotificationSink,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		queue:     q,
		l1:        l1,
		evm:       evm,
		blacklist: blacklist,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
		newUUID:   func() *big.Int { return big.NewInt(time.Now().UnixMilli()) },
	}

	q.RegisterProcessor(queue.TopicDeposit, s.processDeposit)
	q.RegisterProcessor(queue.TopicWithdrawal, s.processWithdrawal)
	q.RegisterProcessor(queue.TopicSwapToWrapped, s.processSwapToWrapped)
	q.RegisterProcessor(queue.TopicSwapToNative, s.processSwapToNative)
	q.AddJobListener(s.onJobCompleted, s.onJobFailed)

	return s
}

// DepositAddress returns the native address users should deposit to.
func (s *Service) DepositAddress() string {
	return s.cfg.DepositAddress
}

func (s *Service) notify(native string, n Notification) {
	if s.notifier != nil {
		s.notifier.Notify(native, n)
	}
}
