// Package queue implements the bridge's durable, multi-topic job queue: a
// Postgres-backed broker with natural-id dedup, delayed/backoff retries,
// and a single FIFO worker per topic.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

// Job is one unit of work handed to a topic's processor.
type Job struct {
	ID      string
	Topic   string
	Payload json.RawMessage
	Attempt int
}

// Decode unmarshals the job payload into v.
func (j Job) Decode(v interface{}) error {
	return json.Unmarshal(j.Payload, v)
}

// ProcessorFunc handles one job. Returning an error marks the job failed:
// errors accepted by apperrors.IsRetryable are retried with backoff up to
// the topic's attempt cap, and any other error fails the job terminally.
type ProcessorFunc func(ctx context.Context, job Job) error

// Policy controls retry/removal behavior for a topic. The default is 30s
// timeout, 3 attempts, exponential backoff from 1s, removeOnComplete after
// 100000 completed jobs, removeOnFail=false.
type Policy struct {
	Timeout          time.Duration
	MaxAttempts      int
	BackoffBase      time.Duration
	RemoveOnComplete bool
	RemoveOnFail     bool
}

// DefaultPolicy is the job policy every topic runs under.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:          30 * time.Second,
		MaxAttempts:      3,
		BackoffBase:      time.Second,
		RemoveOnComplete: true,
		RemoveOnFail:     false,
	}
}

// Topic names, all single-worker, FIFO.
const (
	TopicDeposit       = "deposit"
	TopicWithdrawal    = "withdrawal"
	TopicSwapToWrapped = "swap-to-wrapped"
	TopicSwapToNative  = "swap-to-native"
	TopicEvmScan       = "evm-scan"
)

const pendingWithdrawalPrefix = "pending-withdrawal-"

// Queue is the capability interface the Bridge Service and watchers depend
// on to schedule and consume work.
type Queue interface {
	Start(ctx context.Context)
	Stop()

	RegisterProcessor(topic string, fn ProcessorFunc)
	AddJobListener(onCompleted func(Job), onFailed func(Job, error))

	// Enqueue schedules a job under its natural id; a duplicate id is a
	// silent no-op (dedup at the queue boundary).
	Enqueue(ctx context.Context, topic, id string, payload interface{}, amount money.Units) error

	// EnqueuePendingWithdrawal schedules a delayed retry for a withdrawal
	// that could not be covered by the hot wallet.
	EnqueuePendingWithdrawal(ctx context.Context, native string, tsMillis int64, attempt int, amount money.Units, payload interface{}) error

	// GetPendingWithdrawalsAmount sums the amount of every waiting or
	// delayed job whose id carries the pending-withdrawal prefix.
	GetPendingWithdrawalsAmount(ctx context.Context) (money.Units, error)
}
