package bridge

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

// onJobCompleted records a successful job run against the transfer/error
// metrics so operators can watch per-topic throughput.
func (s *Service) onJobCompleted(job queue.Job) {
	metrics.TransfersTotal.WithLabelValues(job.Topic, "completed").Inc()
}

// onJobFailed records a failed job run, labelling by the apperrors category
// when the failure carries one so dashboards can distinguish user-facing
// rejections (bad signature, insufficient balance, ...) from operational
// failures (RPC flake, lock contention). Because withdrawals and swaps are
// accepted with 201 and processed asynchronously, this listener is also the
// only channel left to tell the caller the job failed, so the failure is
// pushed to the owning user's event stream.
func (s *Service) onJobFailed(job queue.Job, err error) {
	metrics.TransfersTotal.WithLabelValues(job.Topic, "failed").Inc()
	metrics.ErrorsTotal.WithLabelValues(job.Topic, errorCategoryLabel(err)).Inc()
	s.logger.Warn("job failed", zap.String("topic", job.Topic), zap.String("job_id", job.ID), zap.Error(err))

	if native := jobOwner(job); native != "" {
		s.notify(native, Notification{Type: "job-failed", Payload: map[string]string{
			"topic":    job.Topic,
			"job_id":   job.ID,
			"category": errorCategoryLabel(err),
			"error":    err.Error(),
		}})
	}
}

// jobOwner extracts the native address a job's outcome belongs to, empty if
// the topic has no per-user owner (evm-scan) or the payload is unreadable.
func jobOwner(job queue.Job) string {
	switch job.Topic {
	case queue.TopicDeposit:
		var d DepositJob
		if job.Decode(&d) == nil {
			return d.Sender
		}
	case queue.TopicWithdrawal:
		var w WithdrawalJob
		if job.Decode(&w) == nil {
			return w.Native
		}
	case queue.TopicSwapToWrapped:
		var j SwapToWrappedJob
		if job.Decode(&j) == nil {
			return j.Native
		}
	case queue.TopicSwapToNative:
		var j SwapToNativeJob
		if job.Decode(&j) == nil {
			return j.Native
		}
	}
	return ""
}

func errorCategoryLabel(err error) string {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Category.String()
	}
	return "unknown"
}
