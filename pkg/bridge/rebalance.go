package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

// rebalance runs at the end of every successful deposit: the hot wallet
// keeps roughly cfg.HotColdRatio of total custody, and any surplus above
// that target sweeps to cold in proportion to the deposit that just
// landed, never dipping below cfg.HotMinimum.
func (s *Service) rebalance(ctx context.Context, deposit money.Units) {
	hot, err := s.l1.HotBalance(ctx)
	if err != nil {
		s.logger.Warn("rebalance: read hot balance", zap.Error(err))
		return
	}
	if hot.Cmp(s.cfg.HotMinimum) <= 0 {
		return
	}

	cold, err := s.l1.ColdBalance(ctx)
	if err != nil {
		s.logger.Warn("rebalance: read cold balance", zap.Error(err))
		return
	}

	total := hot.Add(cold)
	target := total.ScalePercent(hotColdRatioPercent(s.cfg.HotColdRatio))
	if hot.Cmp(target) <= 0 {
		return
	}

	headroom := hot.Sub(s.cfg.HotMinimum)
	send := money.Min(headroom, deposit).FloorToWholeUnits(money.NativeDecimals)
	send = send.ScalePercent(100 - hotColdRatioPercent(s.cfg.HotColdRatio))
	if send.IsZero() || send.IsNegative() {
		return
	}

	if err := s.l1.TransferHotToCold(ctx, send); err != nil {
		s.logger.Warn("rebalance: hot->cold transfer failed", zap.Error(err))
		return
	}
	s.logger.Info("rebalanced hot->cold", zap.String("amount", send.Decimal(money.NativeDecimals)))
}

// hotColdRatioPercent converts the configured 0<=r<=1 ratio to a whole
// percentage for money.Units.ScalePercent.
func hotColdRatioPercent(r float64) int {
	pct := int(r*100 + 0.5)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
