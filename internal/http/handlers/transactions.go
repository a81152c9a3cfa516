package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cardgate.io/app/internal/http/middleware"
	"cardgate.io/app/internal/modules/ledger"
	"cardgate.io/app/internal/modules/payments"
	"cardgate.io/app/internal/shared/apperr"
)

type TransactionsHandler struct {
	Ledger *ledger.Service
}

func NewTransactionsHandler(l *ledger.Service) *TransactionsHandler {
	return &TransactionsHandler{Ledger: l}
}

// GET /api/v1/transactions/:transactionId
func (h *TransactionsHandler) Detail(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(t))
}

// GET /api/v1/transactions/:transactionId/refund-eligibility
//
// Diagnostic only: the advisor recomputes a superset of the
// orchestrator's refund gate (settlement window, status, gateway id);
// the orchestrator itself enforces just the authorization-type check.
func (h *TransactionsHandler) RefundEligibility(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, payments.CheckRefundEligibility(t, time.Now().UTC()))
}

func (h *TransactionsHandler) load(c *gin.Context) (ledger.Transaction, bool) {
	t, err := h.Ledger.GetByBusinessID(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Transaction not found."))
			return ledger.Transaction{}, false
		}
		middleware.Fail(c, apperr.Wrap(err))
		return ledger.Transaction{}, false
	}
	return t, true
}
