package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/auth"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

func withdrawChallenge(amount, nativeSymbol, native string) string {
	return fmt.Sprintf(`Withdraw %s %s to my wallet "%s"`, amount, nativeSymbol, native)
}

// SubmitWithdrawal enqueues a withdrawal request under its natural id
// "withdrawal-<native>-<ts>". The HTTP layer returns as soon as this
// returns; the actual state transition runs on the withdrawal topic's
// worker.
func (s *Service) SubmitWithdrawal(ctx context.Context, native, amount, evm, signature string, tsMillis int64) error {
	w := WithdrawalJob{Native: native, Amount: amount, Evm: evm, Signature: signature, TsMillis: tsMillis}
	id := fmt.Sprintf("%s-%s-%d", queue.TopicWithdrawal, native, tsMillis)
	return s.queue.Enqueue(ctx, queue.TopicWithdrawal, id, w, money.Zero())
}

// processWithdrawal runs one withdrawal job end to end.
func (s *Service) processWithdrawal(ctx context.Context, job queue.Job) error {
	var w WithdrawalJob
	if err := job.Decode(&w); err != nil {
		return apperrors.BadRequestError(err, "malformed withdrawal job")
	}

	has, err := s.store.HasWithdrawalAt(ctx, w.Native, w.TsMillis)
	if err != nil {
		return err
	}
	if has {
		return apperrors.AlreadyProcessedError("withdrawal already processed")
	}

	// Delayed-retry jobs omit signature re-verification: the first attempt
	// already validated it.
	if w.Attempt == 0 && w.Signature != "" {
		recovered, err := auth.VerifyEIP191Signature(withdrawChallenge(w.Amount, s.cfg.NativeSymbol, w.Native), w.Signature)
		if err != nil {
			return apperrors.InvalidSignatureError(err, "invalid withdrawal signature")
		}
		if !strings.EqualFold(recovered.Hex(), common.HexToAddress(w.Evm).Hex()) {
			return apperrors.InvalidSignatureError(nil, "signature does not recover to claimed address")
		}
	}

	claimed, err := s.store.IsClaimed(ctx, w.Native)
	if err != nil {
		return err
	}
	if !claimed {
		return apperrors.InvalidOwnerError(nil, "native address has no confirmed claim")
	}
	hasClaim, err := s.store.HasClaim(ctx, w.Native, w.Evm)
	if err != nil {
		return err
	}
	if !hasClaim {
		return apperrors.InvalidOwnerError(nil, "claim does not link native and evm addresses")
	}

	amount, err := money.ParseDecimal(w.Amount, money.NativeDecimals)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid withdrawal amount")
	}
	if amount.IsNegative() {
		return apperrors.BadRequestError(nil, "negative withdrawal amount")
	}

	balance, err := s.store.GetBalance(ctx, w.Native)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return apperrors.InsufficientBalanceError("withdrawal exceeds ledger balance")
	}

	hotBalance, err := s.l1.HotBalance(ctx)
	if err != nil {
		return apperrors.ExternalFailureError(err, "read hot balance")
	}
	if hotBalance.Cmp(amount) < 0 {
		retry := w
		retry.Attempt = w.Attempt + 1
		retry.Signature = ""
		if err := s.queue.EnqueuePendingWithdrawal(ctx, w.Native, w.TsMillis, w.Attempt, amount, retry); err != nil {
			return err
		}
		s.notify(w.Native, Notification{Type: "withdrawal-pending", Payload: w})
		s.logger.Info("withdrawal queued as pending (insufficient hot liquidity)",
			zap.String("native", w.Native), zap.String("amount", w.Amount))
		// Marks this job's own run as terminally replaced; the delayed
		// retry job created above is now the authoritative one.
		return apperrors.PendingLiquidityError()
	}

	hash, err := s.l1.Send(ctx, w.Native, amount)
	if err != nil {
		return apperrors.ExternalFailureError(err, "send withdrawal")
	}
	if err := s.store.StoreWithdrawal(ctx, w.Native, amount, w.TsMillis, hash); err != nil {
		return err
	}

	s.notify(w.Native, Notification{Type: "withdrawal", Payload: w})
	s.logger.Info("withdrawal sent", zap.String("native", w.Native), zap.String("amount", w.Amount), zap.String("hash", hash))
	if amt, err := strconv.ParseFloat(amount.Decimal(money.NativeDecimals), 64); err == nil {
		metrics.TransferAmount.WithLabelValues("withdrawal", "native").Observe(amt)
	}
	return nil
}
