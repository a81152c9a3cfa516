package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cardgate.io/app/internal/http/middleware"
	"cardgate.io/app/internal/modules/ledger"
	"cardgate.io/app/internal/modules/orders"
	"cardgate.io/app/internal/shared/apperr"
)

type OrdersHandler struct {
	Orders *orders.Service
	Ledger *ledger.Service
}

func NewOrdersHandler(o *orders.Service, l *ledger.Service) *OrdersHandler {
	return &OrdersHandler{Orders: o, Ledger: l}
}

type orderResponse struct {
	ID           string                `json:"id"`
	OrderNumber  string                `json:"order_number"`
	CustomerRef  string                `json:"customer_ref"`
	Amount       float64               `json:"amount"`
	Currency     string                `json:"currency"`
	Status       string                `json:"status"`
	Description  *string               `json:"description,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Transactions []transactionResponse `json:"transactions,omitempty"`
}

type transactionResponse struct {
	TransactionID        string    `json:"transaction_id"`
	OrderID              string    `json:"order_id"`
	Type                 string    `json:"type"`
	Amount               float64   `json:"amount"`
	Status               string    `json:"status"`
	AuthNetTransactionID *string   `json:"authorize_net_transaction_id,omitempty"`
	ResponseCode         *string   `json:"response_code,omitempty"`
	ResponseMessage      *string   `json:"response_message,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// GET /api/v1/orders/:id
func (h *OrdersHandler) Detail(c *gin.Context) {
	id := c.Param("id")

	o, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	// Detail embeds the history oldest first.
	txns, err := h.Ledger.OrderHistory(c.Request.Context(), o.ID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	resp := toOrderResponse(o)
	for _, t := range txns {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/orders?page=&page_size=
// Clamping lives here: page >= 1, page_size in [1,100], default 20.
func (h *OrdersHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size < 1 || size > 100 {
		size = 20
	}

	items, total, err := h.Orders.List(c.Request.Context(), page, size)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]orderResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     out,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

func toOrderResponse(o orders.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerRef: o.CustomerRef,
		Amount:      o.Amount,
		Currency:    o.Currency,
		Status:      o.Status,
		Description: o.Description,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toTransactionResponse(t ledger.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID:        t.TransactionID,
		OrderID:              t.OrderID,
		Type:                 t.Type,
		Amount:               t.Amount,
		Status:               t.Status,
		AuthNetTransactionID: t.AuthNetTransactionID,
		ResponseCode:         t.ResponseCode,
		ResponseMessage:      t.ResponseMessage,
		CreatedAt:            t.CreatedAt,
	}
}
