// Package api implements the bridge's HTTP surface: health, deposit
// wallet/balance lookups, withdrawal submission and pending-amount
// reporting, claim, swap, history, and an SSE event stream per user. It is
// a thin adapter over pkg/bridge, pkg/ledger, and pkg/queue; the business
// logic lives in those packages, and this package only shapes requests and
// responses around them.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/apphttp"
	"github.com/chainsafe/wpaw-bridge/pkg/bridge"
	"github.com/chainsafe/wpaw-bridge/pkg/ledger"
	"github.com/chainsafe/wpaw-bridge/pkg/queue"
)

const defaultRequestTimeout = 60 * time.Second

// HTTP wraps the Bridge Service to provide its HTTP endpoints.
type HTTP struct {
	bridge    *bridge.Service
	store     ledger.LedgerStore
	queue     queue.Queue
	events    *EventHub
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewRouter builds the bridge's chi router with the standard middleware
// stack (RequestID, RealIP, Recoverer, Timeout) and every public route.
func NewRouter(svc *bridge.Service, store ledger.LedgerStore, q queue.Queue, events *EventHub, logger *zap.Logger) chi.Router {
	h := &HTTP{
		bridge:   svc,
		store:    store,
		queue:    q,
		events:   events,
		validate: validator.New(),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/deposits/native/wallet", apphttp.HandleError(h.depositWallet))
	r.Get("/deposits/native/{addr}", apphttp.HandleError(h.depositBalance))
	r.Post("/withdrawals/native", apphttp.HandleError(h.submitWithdrawal))
	r.Get("/withdrawals/pending", apphttp.HandleError(h.pendingWithdrawals))
	r.Post("/claim", apphttp.HandleError(h.claim))
	r.Post("/swap", apphttp.HandleError(h.swap))
	r.Get("/history/{evm}/{native}", apphttp.HandleError(h.history))
	r.Get("/events/{native}", h.events.ServeHTTP)

	return r
}

func (h *HTTP) health(w http.ResponseWriter, _ *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
