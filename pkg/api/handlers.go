package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chainsafe/wpaw-bridge/pkg/apperrors"
	"github.com/chainsafe/wpaw-bridge/pkg/apphttp"
	"github.com/chainsafe/wpaw-bridge/pkg/money"
)

const maxRequestBody = 1 << 20 // 1MB

// depositWallet implements GET /deposits/native/wallet.
func (h *HTTP) depositWallet(w http.ResponseWriter, r *http.Request) error {
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"address": h.bridge.DepositAddress()})
	return nil
}

// depositBalance implements GET /deposits/native/:addr.
func (h *HTTP) depositBalance(w http.ResponseWriter, r *http.Request) error {
	addr := chi.URLParam(r, "addr")
	balance, err := h.store.GetBalance(r.Context(), addr)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"balance": balance.Decimal(money.NativeDecimals)})
	return nil
}

// withdrawalRequest is POST /withdrawals/native's body.
type withdrawalRequest struct {
	Paw        string `json:"paw" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Blockchain string `json:"blockchain" validate:"required"`
	Sig        string `json:"sig" validate:"required"`
}

// submitWithdrawal implements POST /withdrawals/native.
func (h *HTTP) submitWithdrawal(w http.ResponseWriter, r *http.Request) error {
	var req withdrawalRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	ts := time.Now().UnixMilli()
	if err := h.bridge.SubmitWithdrawal(r.Context(), req.Paw, req.Amount, req.Blockchain, req.Sig, ts); err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

// pendingWithdrawals implements GET /withdrawals/pending.
func (h *HTTP) pendingWithdrawals(w http.ResponseWriter, r *http.Request) error {
	amount, err := h.queue.GetPendingWithdrawalsAmount(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"amount": amount.Decimal(money.NativeDecimals)})
	return nil
}

// claimRequest is POST /claim's body.
type claimRequest struct {
	PawAddress        string `json:"pawAddress" validate:"required"`
	BlockchainAddress string `json:"blockchainAddress" validate:"required"`
	Sig               string `json:"sig" validate:"required"`
}

// claim implements POST /claim. Its success/failure status codes are
// carried end to end by apperrors.ServiceError.StatusCode() (200 OK, 202
// already claimed, 403 blacklisted, 409 invalid owner/signature) rather
// than mapped again here.
func (h *HTTP) claim(w http.ResponseWriter, r *http.Request) error {
	var req claimRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	if err := h.bridge.Claim(r.Context(), req.PawAddress, req.BlockchainAddress, req.Sig); err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	return nil
}

// swapRequest is POST /swap's body.
type swapRequest struct {
	Paw        string `json:"paw" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Blockchain string `json:"blockchain" validate:"required"`
	Sig        string `json:"sig" validate:"required"`
}

// swap implements POST /swap (native -> wrapped).
func (h *HTTP) swap(w http.ResponseWriter, r *http.Request) error {
	var req swapRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	ts := time.Now().UnixMilli()
	if err := h.bridge.SubmitSwapToWrapped(r.Context(), req.Paw, req.Amount, req.Blockchain, req.Sig, ts); err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return nil
}

// historyResponse is GET /history/:evm/:native's body.
type historyResponse struct {
	Deposits    interface{} `json:"deposits"`
	Withdrawals interface{} `json:"withdrawals"`
	Swaps       interface{} `json:"swaps"`
}

// history implements GET /history/:evm/:native: native-side deposits and
// withdrawals, plus both swap directions (native->wrapped keyed by native,
// wrapped->native keyed by evm).
func (h *HTTP) history(w http.ResponseWriter, r *http.Request) error {
	evm := chi.URLParam(r, "evm")
	native := chi.URLParam(r, "native")
	ctx := r.Context()

	deposits, err := h.store.ListDeposits(ctx, native)
	if err != nil {
		return err
	}
	withdrawals, err := h.store.ListWithdrawals(ctx, native)
	if err != nil {
		return err
	}
	toWrapped, err := h.store.ListSwapsToWrapped(ctx, native)
	if err != nil {
		return err
	}
	toNative, err := h.store.ListSwapsToNative(ctx, evm)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, historyResponse{
		Deposits:    deposits,
		Withdrawals: withdrawals,
		Swaps: map[string]interface{}{
			"toWrapped": toWrapped,
			"toNative":  toNative,
		},
	})
	return nil
}

// decodeAndValidate reads and JSON-decodes a size-limited request body into
// dst, then runs struct-tag validation over it.
func (h *HTTP) decodeAndValidate(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperrors.BadRequestError(err, "invalid request")
	}
	return nil
}
