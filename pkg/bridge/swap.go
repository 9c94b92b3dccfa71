package bridge

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/auth"
	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

func swapToWrappedChallenge(amount, nativeSymbol, native string) string {
	return fmt.Sprintf(`Swap %s %s for w%s with %s I deposited from my wallet "%s"`,
		amount, nativeSymbol, nativeSymbol, nativeSymbol, native)
}

// SubmitSwapToWrapped enqueues a native->wrapped swap under its natural id
// "swap-to-wrapped-<native>-<ts>".
func (s *Service) SubmitSwapToWrapped(ctx context.Context, native, amount, evm, signature string, tsMillis int64) error {
	j := SwapToWrappedJob{Native: native, Amount: amount, Evm: evm, Signature: signature, TsMillis: tsMillis}
	id := fmt.Sprintf("%s-%s-%d", queue.TopicSwapToWrapped, native, tsMillis)
	return s.queue.Enqueue(ctx, queue.TopicSwapToWrapped, id, j, money.Zero())
}

// processSwapToWrapped debits the native ledger balance and hands the
// caller a signed mint receipt
// redeemable on the wTKN contract. The mint itself happens on-chain, driven
// by the user submitting the receipt; this service never calls the
// contract directly for this direction.
func (s *Service) processSwapToWrapped(ctx context.Context, job queue.Job) error {
	var j SwapToWrappedJob
	if err := job.Decode(&j); err != nil {
		return apperrors.BadRequestError(err, "malformed swap-to-wrapped job")
	}

	recovered, err := auth.VerifyEIP191Signature(swapToWrappedChallenge(j.Amount, s.cfg.NativeSymbol, j.Native), j.Signature)
	if err != nil {
		return apperrors.InvalidSignatureError(err, "invalid swap signature")
	}
	evmNorm := auth.NormalizeAddress(j.Evm)
	if !strings.EqualFold(recovered.Hex(), common.HexToAddress(evmNorm).Hex()) {
		return apperrors.InvalidSignatureError(nil, "signature does not recover to claimed address")
	}

	hasClaim, err := s.store.HasClaim(ctx, j.Native, evmNorm)
	if err != nil {
		return err
	}
	if !hasClaim {
		return apperrors.InvalidOwnerError(nil, "claim does not link native and evm addresses")
	}

	amount, err := money.ParseDecimal(j.Amount, money.NativeDecimals)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid swap amount")
	}
	if amount.IsNegative() || amount.IsZero() {
		return apperrors.BadRequestError(nil, "swap amount must be positive")
	}

	balance, err := s.store.GetBalance(ctx, j.Native)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return apperrors.InsufficientBalanceError("swap exceeds ledger balance")
	}

	wrappedAmount := scaleToWrapped(amount)
	swapUUID := s.newUUID()
	receipt, err := s.evm.SignMintReceipt(evmNorm, wrappedAmount, swapUUID)
	if err != nil {
		return apperrors.ExternalFailureError(err, "sign mint receipt")
	}

	if err := s.store.StoreSwapToWrapped(ctx, j.Native, evmNorm, amount, j.TsMillis, receipt, swapUUID.String()); err != nil {
		return err
	}

	wrappedBalance, err := s.evm.BalanceOf(ctx, evmNorm)
	if err != nil {
		s.logger.Warn("read wrapped balance after swap", zap.Error(err))
	}

	s.notify(j.Native, Notification{Type: "swap-to-wrapped", Payload: map[string]interface{}{
		"receipt":         receipt,
		"uuid":            swapUUID.String(),
		"amount":          wrappedAmount,
		"wrapped_balance": wrappedBalance,
	}})
	s.logger.Info("swap to wrapped signed", zap.String("native", j.Native), zap.String("evm", evmNorm), zap.String("uuid", swapUUID.String()))
	if amt, err := strconv.ParseFloat(amount.Decimal(money.NativeDecimals), 64); err == nil {
		metrics.TransferAmount.WithLabelValues("swap-to-wrapped", "native").Observe(amt)
	}
	return nil
}

// processSwapToNative credits the native ledger balance for a wTKN burn
// already observed and confirmed by the EVM Watcher. The credit is the
// complete settlement; the user reclaims coin by withdrawing.
func (s *Service) processSwapToNative(ctx context.Context, job queue.Job) error {
	var j SwapToNativeJob
	if err := job.Decode(&j); err != nil {
		return apperrors.BadRequestError(err, "malformed swap-to-native job")
	}

	has, err := s.store.HasSwapToNative(ctx, j.Evm, j.Hash)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	if err := s.store.StoreSwapToNative(ctx, ledger.SwapToNative{
		EvmAddress:    j.Evm,
		NativeAddress: j.Native,
		Amount:        j.Amount,
		TsMillis:      j.TsMillis,
		Hash:          j.Hash,
	}); err != nil {
		return err
	}

	s.notify(j.Native, Notification{Type: "swap-to-native", Payload: j})
	s.logger.Info("swap to native credited", zap.String("native", j.Native), zap.String("evm", j.Evm), zap.String("hash", j.Hash))
	if amt, err := strconv.ParseFloat(j.Amount.Decimal(money.NativeDecimals), 64); err == nil {
		metrics.TransferAmount.WithLabelValues("swap-to-native", "native").Observe(amt)
	}
	return nil
}

// scaleToWrapped converts a native-decimals amount to wrapped-decimals
// atomic units (9 -> 18 decimals), preserving value.
func scaleToWrapped(native money.Units) money.Units {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(money.WrappedDecimals-money.NativeDecimals), nil)
	return money.FromBigInt(new(big.Int).Mul(native.BigInt(), scale))
}
