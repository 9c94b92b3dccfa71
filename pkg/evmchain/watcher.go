package evmchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/bridge"
	"github.com/chainsafe/wpaw-bridge/pkg/config"
	"github.com/chainsafe/wpaw-bridge/pkg/evmchain/contracts"
	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
)

const metricsChainEvm = "evm"

// Watcher observes the wTKN contract for SwapToNative burns and enqueues
// swap-to-native jobs once they clear the configured confirmation depth.
// It polls over bounded block ranges, since HTTP RPC endpoints without a
// websocket can't push log subscriptions.
type Watcher struct {
	client *Client
	store  ledger.LedgerStore
	queue  queue.Queue
	cfg    *config.EvmConfig
	logger *zap.Logger
}

// NewWatcher builds an EVM Watcher over an already-dialed Client.
func NewWatcher(client *Client, store ledger.LedgerStore, q queue.Queue, cfg *config.EvmConfig, logger *zap.Logger) *Watcher {
	return &Watcher{client: client, store: store, queue: q, cfg: cfg, logger: logger}
}

// Run polls for SwapToNative events from the persisted scan cursor (or the
// configured start block, whichever is later) up to confirmationBlocks
// behind the chain head, advancing the cursor after each range.
func (w *Watcher) Run(ctx context.Context) error {
	current, err := w.startBlock(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("starting EVM swap-to-native watcher", zap.Uint64("from_block", current+1))

	ticker := time.NewTicker(w.cfg.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.pollOnce(ctx, &current); err != nil {
				w.logger.Warn("evm watcher poll failed", zap.Error(err))
			}
		}
	}
}

// startBlock returns the last block already covered, so that pollOnce's
// first range begins at the block right after it.
func (w *Watcher) startBlock(ctx context.Context) (uint64, error) {
	cursor, err := w.store.GetScanCursor(ctx)
	if err != nil {
		return 0, err
	}
	if cursor+1 > w.cfg.StartBlock {
		return uint64(cursor), nil
	}
	return uint64(w.cfg.StartBlock - 1), nil
}

func (w *Watcher) pollOnce(ctx context.Context, current *uint64) error {
	latest, err := w.client.GetLatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}

	confirmations := uint64(w.cfg.ConfirmationBlocks)
	if latest <= confirmations {
		return nil
	}
	safeHead := latest - confirmations
	if safeHead <= *current {
		return nil
	}

	opts := &bind.FilterOpts{Start: *current + 1, End: &safeHead, Context: ctx}
	iter, err := w.client.token.FilterSwapToNative(opts, nil)
	if err != nil {
		return fmt.Errorf("filter SwapToNative: %w", err)
	}
	defer iter.Close()

	for iter.Next() {
		ev := iter.Event
		if err := enqueueSwapToNative(ctx, w.client, w.queue, w.logger, ev); err != nil {
			w.logger.Error("failed to enqueue swap-to-native job",
				zap.Error(err), zap.String("tx_hash", ev.Raw.TxHash.Hex()))
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	metrics.BlocksProcessed.WithLabelValues(metricsChainEvm).Add(float64(safeHead - *current))
	metrics.LastProcessedBlock.WithLabelValues(metricsChainEvm).Set(float64(safeHead))

	*current = safeHead
	w.client.setLastScannedBlock(safeHead)
	return w.store.AdvanceScanCursor(ctx, int64(safeHead))
}

// enqueueSwapToNative translates one SwapToNative log into a swap-to-native
// job, natural id "swap-to-native-<evm>-<hash>" so the live watcher and the
// catch-up scanner can never double-enqueue the same burn. The job is
// stamped with the burn block's timestamp and the burner's remaining wTKN
// balance, read here so the downstream processor and notifications can
// report both without another chain round trip.
func enqueueSwapToNative(ctx context.Context, client *Client, q queue.Queue, logger *zap.Logger, ev *contracts.WtknSwapToNative) error {
	header, err := client.client.HeaderByNumber(ctx, new(big.Int).SetUint64(ev.Raw.BlockNumber))
	if err != nil {
		return fmt.Errorf("header for block %d: %w", ev.Raw.BlockNumber, err)
	}
	wrappedBalance, err := client.BalanceOf(ctx, ev.Evm.Hex())
	if err != nil {
		return fmt.Errorf("balanceOf %s: %w", ev.Evm.Hex(), err)
	}

	job := buildSwapToNativeJob(ev, wrappedBalance, header.Time)
	id := fmt.Sprintf("%s-%s-%s", queue.TopicSwapToNative, job.Evm, job.Hash)
	metrics.EventsDetected.WithLabelValues(metricsChainEvm, "swap_to_native").Inc()
	logger.Info("observed wTKN burn",
		zap.String("evm", job.Evm), zap.String("native", job.Native),
		zap.String("amount", job.Amount.Decimal(money.NativeDecimals)),
		zap.Uint64("block", ev.Raw.BlockNumber))
	return q.Enqueue(ctx, queue.TopicSwapToNative, id, job, money.Zero())
}

// buildSwapToNativeJob shapes a burn log plus its block time (seconds) and
// the burner's remaining wTKN balance into the swap-to-native payload.
func buildSwapToNativeJob(ev *contracts.WtknSwapToNative, wrappedBalance money.Units, blockTime uint64) bridge.SwapToNativeJob {
	return bridge.SwapToNativeJob{
		Evm:            ev.Evm.Hex(),
		Native:         ev.Native,
		Amount:         scaleToNative(money.FromBigInt(ev.Amount)),
		WrappedBalance: wrappedBalance,
		Hash:           ev.Raw.TxHash.Hex(),
		TsMillis:       int64(blockTime) * 1000,
	}
}

// scaleToNative converts a wrapped-decimals amount to native-decimals
// atomic units (18 -> 9 decimals), preserving value and flooring any
// sub-atomic-native remainder (the contract-side burn is always a whole
// multiple of 10^9 wrapped units by construction, since mints only ever
// scale up from native amounts).
func scaleToNative(wrapped money.Units) money.Units {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(money.WrappedDecimals-money.NativeDecimals), nil)
	q := new(big.Int).Quo(wrapped.BigInt(), scale)
	return money.FromBigInt(q)
}
