package payments

import (
	"errors"

	"cardgate.io/app/internal/modules/orders"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// Events that move an order through its lifecycle. Gateway failures on
// follow-up operations (capture/void/refund) raise no event at all:
// the order keeps its status, only the ledger row goes to failed.
const (
	EventPurchaseSucceeded  = "purchase_succeeded"
	EventPurchaseFailed     = "purchase_failed"
	EventAuthorizeSucceeded = "authorize_succeeded"
	EventAuthorizeFailed    = "authorize_failed"
	EventCaptureSucceeded   = "capture_succeeded"
	EventVoidSucceeded      = "void_succeeded"
	EventRefundSucceeded    = "refund_succeeded"
)

var transitions = map[string]map[string]string{
	orders.StatusPending: {
		EventPurchaseSucceeded:  orders.StatusCaptured,
		EventPurchaseFailed:     orders.StatusFailed,
		EventAuthorizeSucceeded: orders.StatusAuthorized,
		EventAuthorizeFailed:    orders.StatusFailed,
	},
	orders.StatusAuthorized: {
		EventCaptureSucceeded: orders.StatusCaptured,
		EventVoidSucceeded:    orders.StatusVoided,
	},
	orders.StatusCaptured: {
		EventRefundSucceeded: orders.StatusRefunded,
	},
}

// NextStatus resolves current status x event against the transition
// table. Anything not listed is illegal.
func NextStatus(current, event string) (string, error) {
	if byEvent, ok := transitions[current]; ok {
		if next, ok := byEvent[event]; ok {
			return next, nil
		}
	}
	return "", ErrInvalidTransition
}
