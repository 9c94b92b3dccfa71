package bridge

import "github.com/chainsafe/wpaw-bridge/pkg/money"

// DepositJob is the deposit topic's payload, produced by the L1 Watcher's
// stream and sweep sources with natural id "deposit-<sender>-<hash>".
type DepositJob struct {
	Sender   string      `json:"sender"`
	Amount   money.Units `json:"amount"`
	TsMillis int64       `json:"ts"`
	Hash     string      `json:"hash"`
}

// WithdrawalJob is the withdrawal topic's payload, natural id
// "withdrawal-<native>-<ts>".
type WithdrawalJob struct {
	Native    string `json:"native"`
	Amount    string `json:"amount"` // decimal string
	Evm       string `json:"evm"`
	Signature string `json:"signature,omitempty"`
	TsMillis  int64  `json:"ts"`
	Attempt   int    `json:"attempt"`
}

// SwapToWrappedJob is the swap-to-wrapped topic's payload, natural id
// "swap-to-wrapped-<native>-<ts>".
type SwapToWrappedJob struct {
	Native    string `json:"native"`
	Amount    string `json:"amount"` // decimal string
	Evm       string `json:"evm"`
	TsMillis  int64  `json:"ts"`
	Signature string `json:"signature"`
}

// SwapToNativeJob is the swap-to-native topic's payload, produced by the EVM
// Watcher, natural id "swap-to-native-<evm>-<hash>".
type SwapToNativeJob struct {
	Evm             string      `json:"evm"`
	Native          string      `json:"native"`
	Amount          money.Units `json:"amount"`
	WrappedBalance  money.Units `json:"wrapped_balance"`
	Hash            string      `json:"hash"`
	TsMillis        int64       `json:"ts"`
}
