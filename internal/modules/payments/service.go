package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"cardgate.io/app/internal/modules/ledger"
	"cardgate.io/app/internal/modules/orders"
)

// Fixed failure messages surfaced on local rejections.
const (
	MsgTransactionNotFound   = "Transaction not found"
	MsgNoGatewayTransaction  = "No Authorize.Net transaction ID found"
	MsgPaymentMethodNotFound = "Payment method not found"
	MsgRefundNotAllowed      = "Cannot refund authorization-only transaction. Use void instead."
	MsgInternalError         = "An unexpected error occurred while processing the payment."
)

type Service struct {
	db      *gorm.DB
	orders  *orders.Service
	ledger  *ledger.Service
	gateway Gateway
	log     *slog.Logger
}

func NewService(db *gorm.DB, o *orders.Service, l *ledger.Service, gw Gateway, logger *slog.Logger) *Service {
	return &Service{db: db, orders: o, ledger: l, gateway: gw, log: logger}
}

type PaymentRequest struct {
	CustomerRef    string
	Amount         float64
	Currency       string
	Description    string
	CardNumber     string
	ExpMonth       int
	ExpYear        int
	CVV            string
	HolderName     string
	BillingAddress string
}

// Purchase runs a combined auth+capture against the gateway.
func (s *Service) Purchase(ctx context.Context, req *PaymentRequest) (Result, error) {
	return s.submitInitial(ctx, req, ledger.TypePurchase)
}

// Authorize places a hold only; the order ends up authorized, not captured.
func (s *Service) Authorize(ctx context.Context, req *PaymentRequest) (Result, error) {
	return s.submitInitial(ctx, req, ledger.TypeAuthorize)
}

// submitInitial is the shared first-operation template: create order
// (with payment method) and a pending ledger row, make the single
// gateway call, finalize both records from the outcome. A gateway
// decline here marks the order failed; that asymmetry is deliberate,
// follow-up declines never regress the order.
func (s *Service) submitInitial(ctx context.Context, req *PaymentRequest, txnType string) (Result, error) {
	if req == nil || req.CustomerRef == "" || req.CardNumber == "" || req.Amount < 0.01 {
		return Result{}, ErrInvalidRequest
	}

	// Phase-1: one envelope around all local records (order, payment
	// method, pending ledger row)
	var ord orders.Order
	var txn ledger.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ord, err = s.orders.CreateIn(tx, orders.CreateInput{
			CustomerRef:    req.CustomerRef,
			Amount:         req.Amount,
			Currency:       req.Currency,
			Description:    req.Description,
			CardLastFour:   lastFour(req.CardNumber),
			ExpMonth:       req.ExpMonth,
			ExpYear:        req.ExpYear,
			HolderName:     req.HolderName,
			BillingAddress: req.BillingAddress,
		})
		if err != nil {
			return err
		}
		txn, err = s.ledger.CreateIn(tx, ord.ID, txnType, req.Amount)
		return err
	})
	if err != nil {
		return s.internalFailure("create local records", err), nil
	}

	kind := KindAuthCapture
	failEvent := EventPurchaseFailed
	okEvent := EventPurchaseSucceeded
	if txnType == ledger.TypeAuthorize {
		kind = KindAuthOnly
		failEvent = EventAuthorizeFailed
		okEvent = EventAuthorizeSucceeded
	}

	// Phase-2: the one gateway call (outside any DB transaction)
	resp, gerr := s.gateway.SubmitTransaction(ctx, TransactionRequest{
		Kind:   kind,
		Amount: req.Amount,
		Card: &CardDetails{
			Number:   req.CardNumber,
			ExpMonth: req.ExpMonth,
			ExpYear:  req.ExpYear,
			CVV:      req.CVV,
		},
	})

	// Phase-3: finalize
	if gerr != nil || !resp.Approved() {
		return s.finalizeDecline(ctx, ord, txn, failEvent, resp, gerr), nil
	}
	return s.finalizeApproval(ctx, ord, txn, okEvent, resp), nil
}

// Capture settles a previously authorized transaction by its TXN_ id.
func (s *Service) Capture(ctx context.Context, transactionID string, amount float64) (Result, error) {
	if transactionID == "" {
		return Result{}, ErrInvalidRequest
	}

	orig, res, ok := s.lookupReferenced(ctx, transactionID)
	if !ok {
		return res, nil
	}
	next, err := NextStatus(orig.Order.Status, EventCaptureSucceeded)
	if err != nil {
		return s.transitionFailure(orig, "capture"), nil
	}

	txn, err := s.ledger.Create(ctx, orig.OrderID, ledger.TypeCapture, amount)
	if err != nil {
		return s.internalFailure("create transaction", err), nil
	}

	resp, gerr := s.gateway.SubmitTransaction(ctx, TransactionRequest{
		Kind:             KindPriorAuthCapture,
		Amount:           amount,
		RefTransactionID: *orig.AuthNetTransactionID,
	})

	if gerr != nil || !resp.Approved() {
		return s.finalizeFollowUpDecline(ctx, orig.Order, txn, resp, gerr), nil
	}
	return s.finalizeFollowUpApproval(ctx, orig.Order, txn, next, resp), nil
}

// Void cancels an authorization before settlement.
func (s *Service) Void(ctx context.Context, transactionID string) (Result, error) {
	if transactionID == "" {
		return Result{}, ErrInvalidRequest
	}

	orig, res, ok := s.lookupReferenced(ctx, transactionID)
	if !ok {
		return res, nil
	}
	next, err := NextStatus(orig.Order.Status, EventVoidSucceeded)
	if err != nil {
		return s.transitionFailure(orig, "void"), nil
	}

	// Ledger row carries the original amount; the wire request none.
	txn, err := s.ledger.Create(ctx, orig.OrderID, ledger.TypeVoid, orig.Amount)
	if err != nil {
		return s.internalFailure("create transaction", err), nil
	}

	resp, gerr := s.gateway.SubmitTransaction(ctx, TransactionRequest{
		Kind:             KindVoid,
		RefTransactionID: *orig.AuthNetTransactionID,
	})

	if gerr != nil || !resp.Approved() {
		return s.finalizeFollowUpDecline(ctx, orig.Order, txn, resp, gerr), nil
	}
	return s.finalizeFollowUpApproval(ctx, orig.Order, txn, next, resp), nil
}

// Refund returns settled funds on a captured order. Authorization-only
// transactions are rejected up front: nothing is written and the
// gateway is never contacted for them.
func (s *Service) Refund(ctx context.Context, transactionID string, amount float64, reason string) (Result, error) {
	if transactionID == "" {
		return Result{}, ErrInvalidRequest
	}

	orig, err := s.ledger.GetByBusinessID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			return Result{Success: false, Message: MsgTransactionNotFound, ErrorCode: "not_found"}, nil
		}
		return s.internalFailure("load transaction", err), nil
	}

	if orig.Type == ledger.TypeAuthorize {
		return Result{
			Success:       false,
			TransactionID: orig.TransactionID,
			OrderNumber:   orig.Order.OrderNumber,
			Status:        orig.Order.Status,
			Message:       MsgRefundNotAllowed,
			ErrorCode:     "refund_not_allowed",
		}, nil
	}
	if orig.AuthNetTransactionID == nil || *orig.AuthNetTransactionID == "" {
		return s.missingGatewayIDFailure(orig), nil
	}

	next, err := NextStatus(orig.Order.Status, EventRefundSucceeded)
	if err != nil {
		return s.transitionFailure(orig, "refund"), nil
	}

	txn, err := s.ledger.Create(ctx, orig.OrderID, ledger.TypeRefund, amount)
	if err != nil {
		return s.internalFailure("create transaction", err), nil
	}

	pm, err := s.orders.FindPaymentMethod(ctx, orig.OrderID)
	if err != nil {
		if errors.Is(err, orders.ErrPaymentMethodNotFound) {
			_ = s.ledger.Update(ctx, txn.TransactionID, ledger.UpdateInput{
				Status:          ledger.StatusFailed,
				ResponseMessage: MsgPaymentMethodNotFound,
			})
			return Result{
				Success:       false,
				TransactionID: txn.TransactionID,
				OrderNumber:   orig.Order.OrderNumber,
				Amount:        amount,
				Status:        orig.Order.Status,
				Message:       MsgPaymentMethodNotFound,
				ErrorCode:     "not_found",
			}, nil
		}
		return s.internalFailure("load payment method", err), nil
	}

	if reason != "" {
		s.log.Info("refund_requested",
			"transaction_id", orig.TransactionID,
			"reason", reason,
		)
	}

	resp, gerr := s.gateway.SubmitTransaction(ctx, TransactionRequest{
		Kind:   KindRefund,
		Amount: amount,
		Card: &CardDetails{
			Number:   MaskCardNumber(pm.CardLastFour),
			ExpMonth: pm.ExpMonth,
			ExpYear:  pm.ExpYear,
		},
		RefTransactionID: *orig.AuthNetTransactionID,
	})

	if gerr != nil || !resp.Approved() {
		return s.finalizeFollowUpDecline(ctx, orig.Order, txn, resp, gerr), nil
	}
	return s.finalizeFollowUpApproval(ctx, orig.Order, txn, next, resp), nil
}

// lookupReferenced loads the prior transaction for capture/void and
// enforces the shared failure policy: unknown business id, or no
// stored gateway reference, both fail locally with no gateway call.
func (s *Service) lookupReferenced(ctx context.Context, transactionID string) (ledger.Transaction, Result, bool) {
	orig, err := s.ledger.GetByBusinessID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			return ledger.Transaction{}, Result{Success: false, Message: MsgTransactionNotFound, ErrorCode: "not_found"}, false
		}
		return ledger.Transaction{}, s.internalFailure("load transaction", err), false
	}
	if orig.AuthNetTransactionID == nil || *orig.AuthNetTransactionID == "" {
		return ledger.Transaction{}, s.missingGatewayIDFailure(orig), false
	}
	return orig, Result{}, true
}

func (s *Service) missingGatewayIDFailure(orig ledger.Transaction) Result {
	return Result{
		Success:       false,
		TransactionID: orig.TransactionID,
		OrderNumber:   orig.Order.OrderNumber,
		Status:        orig.Order.Status,
		Message:       MsgNoGatewayTransaction,
		ErrorCode:     "no_gateway_transaction",
	}
}

func (s *Service) transitionFailure(orig ledger.Transaction, op string) Result {
	return Result{
		Success:       false,
		TransactionID: orig.TransactionID,
		OrderNumber:   orig.Order.OrderNumber,
		Status:        orig.Order.Status,
		Message:       "Order status '" + orig.Order.Status + "' does not allow " + op,
		ErrorCode:     "invalid_state",
	}
}

func (s *Service) finalizeApproval(ctx context.Context, ord orders.Order, txn ledger.Transaction, event string, resp TransactionResponse) Result {
	next, err := NextStatus(ord.Status, event)
	if err != nil {
		return s.internalFailure("resolve transition", err)
	}

	if err := s.finalize(ctx, ord, txn.TransactionID, next, ledger.UpdateInput{
		Status:               ledger.StatusSuccess,
		ResponseCode:         resp.ResponseCode,
		ResponseMessage:      firstText(resp.TxnMessages),
		AuthNetTransactionID: resp.TransID,
	}); err != nil {
		return s.internalFailure("finalize approval", err)
	}

	return Result{
		Success:              true,
		TransactionID:        txn.TransactionID,
		GatewayTransactionID: resp.TransID,
		OrderNumber:          ord.OrderNumber,
		Amount:               txn.Amount,
		Status:               next,
	}
}

func (s *Service) finalizeDecline(ctx context.Context, ord orders.Order, txn ledger.Transaction, event string, resp TransactionResponse, gerr error) Result {
	msg := resp.ErrorMessage()
	s.log.Warn("gateway_declined",
		"order_number", ord.OrderNumber,
		"transaction_id", txn.TransactionID,
		"message", msg,
		"transport_err", gerr,
	)

	next, err := NextStatus(ord.Status, event)
	if err != nil {
		return s.internalFailure("resolve transition", err)
	}

	if err := s.finalize(ctx, ord, txn.TransactionID, next, ledger.UpdateInput{
		Status:               ledger.StatusFailed,
		ResponseCode:         resp.ResponseCode,
		ResponseMessage:      msg,
		AuthNetTransactionID: resp.TransID,
	}); err != nil {
		return s.internalFailure("finalize decline", err)
	}

	return Result{
		Success:       false,
		TransactionID: txn.TransactionID,
		OrderNumber:   ord.OrderNumber,
		Amount:        txn.Amount,
		Status:        next,
		Message:       msg,
		ErrorCode:     resp.ErrorCode(),
	}
}

func (s *Service) finalizeFollowUpApproval(ctx context.Context, ord orders.Order, txn ledger.Transaction, next string, resp TransactionResponse) Result {
	if err := s.finalize(ctx, ord, txn.TransactionID, next, ledger.UpdateInput{
		Status:               ledger.StatusSuccess,
		ResponseCode:         resp.ResponseCode,
		ResponseMessage:      firstText(resp.TxnMessages),
		AuthNetTransactionID: resp.TransID,
	}); err != nil {
		return s.internalFailure("finalize approval", err)
	}

	return Result{
		Success:              true,
		TransactionID:        txn.TransactionID,
		GatewayTransactionID: resp.TransID,
		OrderNumber:          ord.OrderNumber,
		Amount:               txn.Amount,
		Status:               next,
	}
}

// finalizeFollowUpDecline marks only the new ledger row failed; the
// order keeps whatever status it already reached.
func (s *Service) finalizeFollowUpDecline(ctx context.Context, ord orders.Order, txn ledger.Transaction, resp TransactionResponse, gerr error) Result {
	msg := resp.ErrorMessage()
	s.log.Warn("gateway_declined",
		"order_number", ord.OrderNumber,
		"transaction_id", txn.TransactionID,
		"message", msg,
		"transport_err", gerr,
	)

	if err := s.ledger.Update(ctx, txn.TransactionID, ledger.UpdateInput{
		Status:               ledger.StatusFailed,
		ResponseCode:         resp.ResponseCode,
		ResponseMessage:      msg,
		AuthNetTransactionID: resp.TransID,
	}); err != nil {
		return s.internalFailure("finalize transaction", err)
	}

	return Result{
		Success:       false,
		TransactionID: txn.TransactionID,
		OrderNumber:   ord.OrderNumber,
		Amount:        txn.Amount,
		Status:        ord.Status,
		Message:       msg,
		ErrorCode:     resp.ErrorCode(),
	}
}

// finalize is the phase-3 envelope: one DB transaction that locks the
// order row, writes the ledger outcome, and flips the order status
// guarded by the status the outcome was derived from. A concurrent
// flip fails the envelope instead of being overwritten.
func (s *Service) finalize(ctx context.Context, ord orders.Order, transactionID, next string, in ledger.UpdateInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.orders.LockForUpdate(tx, ord.ID); err != nil {
			return err
		}
		if err := s.ledger.UpdateIn(tx, transactionID, in); err != nil {
			return err
		}
		return s.orders.UpdateStatusFrom(tx, ord.ID, ord.Status, next)
	})
}

func (s *Service) internalFailure(step string, err error) Result {
	s.log.Error("payment_internal_error", "step", step, "err", err)
	return Result{Success: false, Message: MsgInternalError, ErrorCode: "internal_error"}
}

// MaskCardNumber left-pads the stored last four with 'X' to a 16-char
// PAN stand-in, the shape the gateway's refund call expects.
func MaskCardNumber(lastFour string) string {
	return strings.Repeat("X", 16-len(lastFour)) + lastFour
}

func lastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}

func firstText(msgs []Message) string {
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0].Text
}
