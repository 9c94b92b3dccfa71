package l1chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/config"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

type mockQueue struct {
	EnqueueFunc func(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error
}

func (m *mockQueue) Start(ctx context.Context) {}
func (m *mockQueue) Stop()                     {}
func (m *mockQueue) RegisterProcessor(topic string, fn queue.ProcessorFunc) {}
func (m *mockQueue) AddJobListener(onCompleted func(queue.Job), onFailed func(queue.Job, error)) {}
func (m *mockQueue) Enqueue(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, topic, id, payload, amount)
	}
	return nil
}
func (m *mockQueue) EnqueuePendingWithdrawal(ctx context.Context, native string, tsMillis int64, attempt int, amount money.Units, payload interface{}) error {
	return nil
}
func (m *mockQueue) GetPendingWithdrawalsAmount(ctx context.Context) (money.Units, error) {
	return money.Zero(), nil
}

func newTestWatcher(q queue.Queue) *Watcher {
	cfg := &config.L1Config{HotWallet: "paw_hot", ColdWallet: "paw_cold"}
	return NewWatcher(nil, q, cfg, zap.NewNop())
}

func TestStripRawPrecision(t *testing.T) {
	u, err := stripRawPrecision("1500000000000")
	require.NoError(t, err)
	assert.Equal(t, "1500", u.String())

	_, err = stripRawPrecision("not-a-number")
	assert.Error(t, err)
}

func TestClassifyAndEnqueue_SelfPayReceivesOnly(t *testing.T) {
	var enqueued bool
	received := false
	w := newTestWatcher(&mockQueue{EnqueueFunc: func(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error {
		enqueued = true
		return nil
	}})
	w.client = &Client{cfg: &config.L1Config{HotWallet: "paw_hot", ColdWallet: "paw_cold"}, rpc: stubRPC{
		onCall: func(action string, params map[string]interface{}) {
			if action == "receive" {
				received = true
			}
		},
	}, logger: zap.NewNop()}

	err := w.classifyAndEnqueue(context.Background(), "paw_cold", "paw_hot", "1000000000000", "hashA")
	require.NoError(t, err)
	assert.True(t, received)
	assert.False(t, enqueued)
}

func TestClassifyAndEnqueue_IgnoresWrongReceiver(t *testing.T) {
	var enqueued bool
	w := newTestWatcher(&mockQueue{EnqueueFunc: func(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error {
		enqueued = true
		return nil
	}})

	err := w.classifyAndEnqueue(context.Background(), "paw_sender", "paw_someone_else", "1000000000000", "hashB")
	require.NoError(t, err)
	assert.False(t, enqueued)
}

func TestClassifyAndEnqueue_EnqueuesDeposit(t *testing.T) {
	var gotTopic, gotID string
	w := newTestWatcher(&mockQueue{EnqueueFunc: func(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error {
		gotTopic, gotID = topic, id
		return nil
	}})

	err := w.classifyAndEnqueue(context.Background(), "paw_sender", "paw_hot", "1000000000000", "hashC")
	require.NoError(t, err)
	assert.Equal(t, queue.TopicDeposit, gotTopic)
	assert.Equal(t, "deposit-paw_sender-hashC", gotID)
}

// stubRPC is a minimal RPC double for exercising Client.Receive without a
// real node.
type stubRPC struct {
	onCall func(action string, params map[string]interface{})
}

func (s stubRPC) Call(ctx context.Context, action string, params map[string]interface{}, out interface{}) error {
	if s.onCall != nil {
		s.onCall(action, params)
	}
	return nil
}
