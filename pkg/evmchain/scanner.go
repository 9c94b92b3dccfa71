package evmchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/config"
	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

// Scanner is the evm-scan topic's processor: a bounded-slice catch-up scan
// that walks from the persisted cursor to the confirmed chain head in
// ScanSliceBlocks-sized chunks, self-requeuing after each slice until it is
// caught up. This exists alongside the live Watcher so a restart after a
// long outage doesn't hold a single job open for a multi-million-block
// backfill (the queue's per-job timeout would kill it).
type Scanner struct {
	client *Client
	store  ledger.LedgerStore
	queue  queue.Queue
	cfg    *config.EvmConfig
	logger *zap.Logger
}

// ScanJob is the evm-scan topic's payload: the slice's starting block.
type ScanJob struct {
	FromBlock uint64 `json:"from_block"`
}

// NewScanner builds a catch-up Scanner and registers its processor with the
// queue.
func NewScanner(client *Client, store ledger.LedgerStore, q queue.Queue, cfg *config.EvmConfig, logger *zap.Logger) *Scanner {
	s := &Scanner{client: client, store: store, queue: q, cfg: cfg, logger: logger}
	q.RegisterProcessor(queue.TopicEvmScan, s.processSlice)
	return s
}

// EnqueueCatchUp kicks off (or resumes) the catch-up scan from the
// persisted cursor. Safe to call on every startup: a cursor already at the
// confirmed head makes the first slice a no-op.
func (s *Scanner) EnqueueCatchUp(ctx context.Context) error {
	cursor, err := s.store.GetScanCursor(ctx)
	if err != nil {
		return err
	}
	from := uint64(cursor + 1)
	if cursor+1 < s.cfg.StartBlock {
		from = uint64(s.cfg.StartBlock)
	}
	return s.enqueueSlice(ctx, from)
}

func (s *Scanner) enqueueSlice(ctx context.Context, from uint64) error {
	job := ScanJob{FromBlock: from}
	id := fmt.Sprintf("%s-%d", queue.TopicEvmScan, from)
	return s.queue.Enqueue(ctx, queue.TopicEvmScan, id, job, money.Zero())
}

func (s *Scanner) processSlice(ctx context.Context, job queue.Job) error {
	var sj ScanJob
	if err := job.Decode(&sj); err != nil {
		return fmt.Errorf("malformed evm-scan job: %w", err)
	}

	latest, err := s.client.GetLatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}
	confirmations := uint64(s.cfg.ConfirmationBlocks)
	if latest <= confirmations {
		return nil
	}
	safeHead := latest - confirmations
	if sj.FromBlock > safeHead {
		return nil
	}

	end := sj.FromBlock + s.cfg.ScanSliceBlocks - 1
	if end > safeHead {
		end = safeHead
	}

	opts := &bind.FilterOpts{Start: sj.FromBlock, End: &end, Context: ctx}
	iter, err := s.client.token.FilterSwapToNative(opts, nil)
	if err != nil {
		return fmt.Errorf("filter SwapToNative: %w", err)
	}
	defer iter.Close()

	count := 0
	for iter.Next() {
		ev := iter.Event
		if err := enqueueSwapToNative(ctx, s.client, s.queue, s.logger, ev); err != nil {
			s.logger.Error("failed to enqueue swap-to-native job from catch-up scan",
				zap.Error(err), zap.String("tx_hash", ev.Raw.TxHash.Hex()))
		}
		count++
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if err := s.store.AdvanceScanCursor(ctx, int64(end)); err != nil {
		return err
	}
	s.logger.Info("evm-scan slice complete",
		zap.Uint64("from", sj.FromBlock), zap.Uint64("to", end), zap.Int("events", count))

	if end < safeHead {
		return s.enqueueSlice(ctx, end+1)
	}
	return nil
}
