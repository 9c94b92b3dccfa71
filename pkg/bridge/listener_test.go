package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

func TestOnJobFailed_NotifiesOwningUser(t *testing.T) {
	notifier := &mockNotificationSink{}
	s := newTestService(t, &mockStore{}, nil, &mockL1Client{}, &mockEvmClient{}, nil, notifier)

	w := WithdrawalJob{Native: "paw_owner", Amount: "10", Evm: "0xA", TsMillis: 1}
	body, err := json.Marshal(w)
	require.NoError(t, err)
	job := queue.Job{ID: "withdrawal-paw_owner-1", Topic: queue.TopicWithdrawal, Payload: body}

	s.onJobFailed(job, apperrors.InsufficientBalanceError("withdrawal exceeds ledger balance"))

	require.Len(t, notifier.notifications, 1)
	n := notifier.notifications[0]
	assert.Equal(t, "paw_owner", n.Native)
	assert.Equal(t, "job-failed", n.Event.Type)
	payload, ok := n.Event.Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, queue.TopicWithdrawal, payload["topic"])
	assert.Equal(t, apperrors.CategoryInsufficientBalance.String(), payload["category"])
}

func TestJobOwner_PerTopic(t *testing.T) {
	encode := func(v interface{}) []byte {
		body, err := json.Marshal(v)
		require.NoError(t, err)
		return body
	}

	cases := []struct {
		name string
		job  queue.Job
		want string
	}{
		{"deposit", queue.Job{Topic: queue.TopicDeposit, Payload: encode(DepositJob{Sender: "paw_d"})}, "paw_d"},
		{"withdrawal", queue.Job{Topic: queue.TopicWithdrawal, Payload: encode(WithdrawalJob{Native: "paw_w"})}, "paw_w"},
		{"swap-to-wrapped", queue.Job{Topic: queue.TopicSwapToWrapped, Payload: encode(SwapToWrappedJob{Native: "paw_s"})}, "paw_s"},
		{"swap-to-native", queue.Job{Topic: queue.TopicSwapToNative, Payload: encode(SwapToNativeJob{Native: "paw_n"})}, "paw_n"},
		{"evm-scan has no owner", queue.Job{Topic: queue.TopicEvmScan, Payload: encode(map[string]uint64{"from_block": 1})}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, jobOwner(tc.job))
		})
	}
}
