package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cardgate.io/app/internal/http/middleware"
	"cardgate.io/app/internal/http/validation"
	"cardgate.io/app/internal/modules/payments"
	"cardgate.io/app/internal/shared/apperr"
)

type PaymentsHandler struct {
	Logger *slog.Logger
	Svc    *payments.Service
}

func NewPaymentsHandler(logger *slog.Logger, svc *payments.Service) *PaymentsHandler {
	return &PaymentsHandler{Logger: logger, Svc: svc}
}

type cardPayload struct {
	Number         string `json:"number" binding:"required,numeric,min=12,max=19"`
	ExpMonth       int    `json:"exp_month" binding:"required,gte=1,lte=12"`
	ExpYear        int    `json:"exp_year" binding:"required,gte=2000,lte=2099"`
	CVV            string `json:"cvv" binding:"required,numeric,min=3,max=4"`
	HolderName     string `json:"holder_name" binding:"omitempty,max=128"`
	BillingAddress string `json:"billing_address" binding:"omitempty,max=255"`
}

type paymentPayload struct {
	CustomerRef string      `json:"customer_ref" binding:"required,max=64"`
	Amount      float64     `json:"amount" binding:"required,gte=0.01"`
	Currency    string      `json:"currency" binding:"omitempty,len=3"`
	Description string      `json:"description" binding:"omitempty,max=255"`
	Card        cardPayload `json:"card" binding:"required"`
}

type capturePayload struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gte=0.01"`
}

type voidPayload struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

type refundPayload struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gte=0.01"`
	Reason        string  `json:"reason" binding:"omitempty,max=255"`
}

// POST /api/v1/payments/purchase
func (h *PaymentsHandler) Purchase(c *gin.Context) {
	h.submitInitial(c, h.Svc.Purchase)
}

// POST /api/v1/payments/authorize
func (h *PaymentsHandler) Authorize(c *gin.Context) {
	h.submitInitial(c, h.Svc.Authorize)
}

func (h *PaymentsHandler) submitInitial(c *gin.Context, op func(ctx context.Context, req *payments.PaymentRequest) (payments.Result, error)) {
	var in paymentPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Validation failed.", validation.FromBindError(err, &in)))
		return
	}

	res, err := op(c.Request.Context(), &payments.PaymentRequest{
		CustomerRef:    in.CustomerRef,
		Amount:         in.Amount,
		Currency:       in.Currency,
		Description:    in.Description,
		CardNumber:     in.Card.Number,
		ExpMonth:       in.Card.ExpMonth,
		ExpYear:        in.Card.ExpYear,
		CVV:            in.Card.CVV,
		HolderName:     in.Card.HolderName,
		BillingAddress: in.Card.BillingAddress,
	})
	if err != nil {
		h.failInvalid(c, err)
		return
	}
	writeResult(c, res)
}

// POST /api/v1/payments/capture
func (h *PaymentsHandler) Capture(c *gin.Context) {
	var in capturePayload
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Validation failed.", validation.FromBindError(err, &in)))
		return
	}

	res, err := h.Svc.Capture(c.Request.Context(), in.TransactionID, in.Amount)
	if err != nil {
		h.failInvalid(c, err)
		return
	}
	writeResult(c, res)
}

// POST /api/v1/payments/void
func (h *PaymentsHandler) Void(c *gin.Context) {
	var in voidPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Validation failed.", validation.FromBindError(err, &in)))
		return
	}

	res, err := h.Svc.Void(c.Request.Context(), in.TransactionID)
	if err != nil {
		h.failInvalid(c, err)
		return
	}
	writeResult(c, res)
}

// POST /api/v1/payments/refund
func (h *PaymentsHandler) Refund(c *gin.Context) {
	var in refundPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Validation failed.", validation.FromBindError(err, &in)))
		return
	}

	res, err := h.Svc.Refund(c.Request.Context(), in.TransactionID, in.Amount, in.Reason)
	if err != nil {
		h.failInvalid(c, err)
		return
	}
	writeResult(c, res)
}

func (h *PaymentsHandler) failInvalid(c *gin.Context, err error) {
	if errors.Is(err, payments.ErrInvalidRequest) {
		middleware.Fail(c, apperr.InvalidErr("Payment request is invalid.", nil))
		return
	}
	middleware.Fail(c, apperr.Wrap(err))
}

// writeResult maps the orchestrator result to HTTP: success 200,
// missing referenced entity 404, every other business failure 400.
func writeResult(c *gin.Context, res payments.Result) {
	status := http.StatusOK
	if !res.Success {
		if res.ErrorCode == "not_found" {
			status = http.StatusNotFound
		} else {
			status = http.StatusBadRequest
		}
	}
	c.JSON(status, res)
}
