package bridge

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

// processDeposit is the deposit topic's processor, fed by the L1 Watcher's
// stream and sweep sources.
func (s *Service) processDeposit(ctx context.Context, job queue.Job) error {
	var d DepositJob
	if err := job.Decode(&d); err != nil {
		return apperrors.BadRequestError(err, "malformed deposit job")
	}

	pending, err := s.store.HasPendingClaim(ctx, d.Sender)
	if err != nil {
		return err
	}
	if pending {
		if _, err := s.store.ConfirmClaim(ctx, d.Sender); err != nil {
			return err
		}
	}

	if err := s.l1.Receive(ctx, d.Hash); err != nil {
		return apperrors.ExternalFailureError(err, "receive on L1")
	}

	claimed, err := s.store.IsClaimed(ctx, d.Sender)
	if err != nil {
		return err
	}
	if !claimed {
		return s.refundDeposit(ctx, d, "no confirmed claim for sender")
	}

	if money.ExceedsDecimalPlaces(d.Amount, money.NativeDecimals, 2) {
		return s.refundDeposit(ctx, d, "more than 2 decimal places")
	}

	has, err := s.store.HasDeposit(ctx, d.Sender, d.Hash)
	if err != nil {
		return err
	}
	if has {
		// Replays of an already-recorded deposit are a no-op past this
		// point (StoreDeposit itself is also idempotent).
		return nil
	}

	if err := s.store.StoreDeposit(ctx, d.Sender, d.Amount, d.TsMillis, d.Hash); err != nil {
		return err
	}

	s.notify(d.Sender, Notification{Type: "deposit", Payload: d})
	s.logger.Info("deposit recorded", zap.String("native", d.Sender), zap.String("amount", d.Amount.Decimal(money.NativeDecimals)), zap.String("hash", d.Hash))
	if amt, err := strconv.ParseFloat(d.Amount.Decimal(money.NativeDecimals), 64); err == nil {
		metrics.TransferAmount.WithLabelValues("deposit", "native").Observe(amt)
	}

	s.rebalance(ctx, d.Amount)
	return nil
}

// refundDeposit sends the full deposited amount back to the sender without
// storing a deposit record. The receivable has already been acknowledged
// via Receive, so the coin is custodied in the hot wallet until this refund
// completes.
func (s *Service) refundDeposit(ctx context.Context, d DepositJob, reason string) error {
	hash, err := s.l1.Send(ctx, d.Sender, d.Amount)
	if err != nil {
		return apperrors.ExternalFailureError(err, "refund send")
	}
	s.logger.Info("refunded deposit",
		zap.String("native", d.Sender),
		zap.String("amount", d.Amount.Decimal(money.NativeDecimals)),
		zap.String("reason", reason),
		zap.String("refund_hash", hash))
	s.notify(d.Sender, Notification{Type: "deposit-refunded", Payload: map[string]string{
		"reason": reason, "amount": d.Amount.Decimal(money.NativeDecimals), "hash": hash,
	}})
	return nil
}
