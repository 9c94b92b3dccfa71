package l1chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/bridge"
	"github.com/chainsafe/wpaw-bridge/pkg/config"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
)

const metricsChainNative = "native"

// rawPrecisionDigits is the number of least-significant digits a node's raw
// amount carries beyond the bridge's tracked atomic unit; they are stripped
// on ingest.
const rawPrecisionDigits = 9

// confirmationMessage is one websocket "confirmation" topic message for the
// hot wallet, trimmed to the fields the watcher needs.
type confirmationMessage struct {
	Message struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
		Block   struct {
			LinkAsAccount string `json:"link_as_account"`
		} `json:"block"`
		Hash string `json:"hash"`
	} `json:"message"`
}

// Watcher observes the hot wallet for incoming receivables through two
// independent sources feeding the same deposit pipeline: a websocket
// confirmation subscription, and a periodic sweep that lists
// pending receivables to reconcile missed websocket messages. Both sources
// classify every payment identically and hand qualifying ones off as
// deposit jobs under the same natural id, so duplicate delivery across the
// two sources collapses at the queue's dedup boundary.
type Watcher struct {
	client *Client
	queue  queue.Queue
	cfg    *config.L1Config
	logger *zap.Logger

	dialer *websocket.Dialer
}

// NewWatcher builds an L1 Watcher over an already-configured Client.
func NewWatcher(client *Client, q queue.Queue, cfg *config.L1Config, logger *zap.Logger) *Watcher {
	return &Watcher{client: client, queue: q, cfg: cfg, logger: logger, dialer: websocket.DefaultDialer}
}

// Run starts both sources and blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	done := make(chan struct{}, 2)
	go func() {
		w.streamLoop(ctx)
		done <- struct{}{}
	}()
	go func() {
		w.sweepLoop(ctx)
		done <- struct{}{}
	}()
	<-ctx.Done()
	<-done
	<-done
	return ctx.Err()
}

// streamLoop owns the websocket connection and reconnects immediately on
// error or close, with no backoff at this layer: the node tolerates fast
// reconnects, and the periodic sweep covers anything missed while
// disconnected.
func (w *Watcher) streamLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.streamOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Warn("l1 confirmation stream disconnected, reconnecting", zap.Error(err))
		}
	}
}

func (w *Watcher) streamOnce(ctx context.Context) error {
	conn, _, err := w.dialer.DialContext(ctx, w.cfg.WSUrl, nil)
	if err != nil {
		return fmt.Errorf("dial l1 websocket: %w", err)
	}
	defer conn.Close()

	sub := map[string]interface{}{
		"action": "subscribe",
		"topic":  "confirmation",
		"options": map[string]interface{}{
			"accounts": []string{w.cfg.HotWallet},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe confirmations: %w", err)
	}
	w.logger.Info("subscribed to l1 confirmations", zap.String("account", w.cfg.HotWallet))

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var msg confirmationMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		w.handleConfirmation(ctx, msg)
	}
}

func (w *Watcher) handleConfirmation(ctx context.Context, msg confirmationMessage) {
	sender := msg.Message.Account
	receiver := msg.Message.Block.LinkAsAccount
	if err := w.classifyAndEnqueue(ctx, sender, receiver, msg.Message.Amount, msg.Message.Hash); err != nil {
		w.logger.Error("failed handling l1 confirmation", zap.Error(err), zap.String("hash", msg.Message.Hash))
	}
}

// sweepLoop lists pending receivables on the hot wallet every
// cfg.SweepInterval (default 60s) to reconcile missed websocket messages.
func (w *Watcher) sweepLoop(ctx context.Context) {
	interval := w.cfg.SweepInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sweepOnce(ctx); err != nil {
				w.logger.Warn("l1 sweep failed", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) sweepOnce(ctx context.Context) error {
	receivables, err := w.client.ListReceivable(ctx)
	if err != nil {
		return fmt.Errorf("list receivables: %w", err)
	}
	for _, r := range receivables {
		if err := w.classifyAndEnqueue(ctx, r.Sender, w.cfg.HotWallet, r.RawAmount, r.Hash); err != nil {
			w.logger.Error("failed handling l1 receivable sweep entry", zap.Error(err), zap.String("hash", r.Hash))
		}
	}
	return nil
}

// classifyAndEnqueue implements the stream/sweep sources' shared
// classification rule: a self-pay (sender is the hot or cold wallet) is
// merely receive()'d; a payment not addressed to the hot wallet is ignored;
// everything else becomes a deposit job.
func (w *Watcher) classifyAndEnqueue(ctx context.Context, sender, receiver, rawAmount, hash string) error {
	if strings.EqualFold(sender, w.cfg.HotWallet) || strings.EqualFold(sender, w.cfg.ColdWallet) {
		return w.client.Receive(ctx, hash)
	}
	if !strings.EqualFold(receiver, w.cfg.HotWallet) {
		w.logger.Info("ignoring l1 confirmation not addressed to hot wallet",
			zap.String("receiver", receiver), zap.String("hash", hash))
		return nil
	}

	amount, err := stripRawPrecision(rawAmount)
	if err != nil {
		return fmt.Errorf("parse raw amount %q: %w", rawAmount, err)
	}

	job := bridge.DepositJob{Sender: sender, Amount: amount, TsMillis: time.Now().UnixMilli(), Hash: hash}
	id := fmt.Sprintf("%s-%s-%s", queue.TopicDeposit, sender, hash)
	metrics.EventsDetected.WithLabelValues(metricsChainNative, "deposit").Inc()
	return w.queue.Enqueue(ctx, queue.TopicDeposit, id, job, money.Zero())
}

// stripRawPrecision converts a node's raw amount string into the bridge's
// tracked atomic units by dropping its rawPrecisionDigits least-significant
// digits, preserving value as an arbitrary-precision integer division
// rather than a float conversion.
func stripRawPrecision(raw string) (money.Units, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return money.Zero(), fmt.Errorf("invalid raw amount %q", raw)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(rawPrecisionDigits), nil)
	return money.FromBigInt(new(big.Int).Quo(v, scale)), nil
}
