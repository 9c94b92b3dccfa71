package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/auth"
)

// claimChallenge is the literal challenge string the user signs. The
// signer's recovered address must match evm for the claim to succeed.
func claimChallenge(native string) string {
	return fmt.Sprintf(`I hereby claim that the native address "%s" is mine`, native)
}

// Claim binds a native address to an evm address by verified signature. It
// is synchronous and runs directly from the HTTP handler; claims have no
// queue topic.
func (s *Service) Claim(ctx context.Context, native, evm, signature string) error {
	recovered, err := auth.VerifyEIP191Signature(claimChallenge(native), signature)
	if err != nil {
		return apperrors.InvalidSignatureError(err, "invalid claim signature")
	}
	evmNorm := auth.NormalizeAddress(evm)
	if !strings.EqualFold(recovered.Hex(), common.HexToAddress(evmNorm).Hex()) {
		return apperrors.InvalidSignatureError(nil, "signature does not recover to claimed address")
	}

	if s.blacklist != nil {
		hit, err := s.blacklist.IsBlacklisted(ctx, native)
		if err != nil {
			return apperrors.ExternalFailureError(err, "blacklist check")
		}
		if hit != nil {
			return apperrors.BlacklistedError(native)
		}
	}

	already, err := s.store.HasClaim(ctx, native, evmNorm)
	if err != nil {
		return err
	}
	if already {
		return apperrors.AlreadyProcessedError("claim already confirmed")
	}

	pending, err := s.store.HasPendingClaim(ctx, native)
	if err != nil {
		return err
	}
	if pending {
		return apperrors.InvalidOwnerError(nil, "a pending claim already exists for this native address")
	}

	stored, err := s.store.StorePendingClaim(ctx, native, evmNorm)
	if err != nil {
		return err
	}
	if !stored {
		// Lost a race against a concurrent claim for the same native
		// address; the other claim wins. A native address has at most one
		// owner.
		return apperrors.InvalidOwnerError(nil, "a pending claim already exists for this native address")
	}

	s.logger.Info("stored pending claim", zap.String("native", native), zap.String("evm", evmNorm))
	return nil
}
