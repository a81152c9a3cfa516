package orders

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderStateChanged     = errors.New("order status changed concurrently")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
)
