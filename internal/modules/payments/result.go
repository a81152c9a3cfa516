package payments

// Result is the uniform payload every orchestrated operation returns.
// Success is the sole signal the HTTP layer maps to a status code.
type Result struct {
	Success              bool    `json:"success"`
	TransactionID        string  `json:"transaction_id,omitempty"`
	GatewayTransactionID string  `json:"gateway_transaction_id,omitempty"`
	OrderNumber          string  `json:"order_number,omitempty"`
	Amount               float64 `json:"amount,omitempty"`
	Status               string  `json:"status,omitempty"`
	Message              string  `json:"message,omitempty"`
	ErrorCode            string  `json:"error_code,omitempty"`
}
