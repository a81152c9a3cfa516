package payments

import "context"

// Gateway operation kinds, named after the wire values the processor
// expects.
const (
	KindAuthCapture      = "authCaptureTransaction"
	KindAuthOnly         = "authOnlyTransaction"
	KindPriorAuthCapture = "priorAuthCaptureTransaction"
	KindVoid             = "voidTransaction"
	KindRefund           = "refundTransaction"
)

const ResultCodeOK = "Ok"

type CardDetails struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVV      string
}

type TransactionRequest struct {
	Kind             string
	Amount           float64 // zero => omitted on the wire (void)
	Card             *CardDetails
	RefTransactionID string // gateway id of the prior transaction
}

type Message struct {
	Code string
	Text string
}

type TransactionResponse struct {
	ResultCode string // top-level: Ok|Error
	Messages   []Message

	TransID      string
	ResponseCode string
	TxnMessages  []Message // per-transaction approval messages
	TxnErrors    []Message // per-transaction errors
}

// Approved reports gateway success: result code Ok and at least one
// transaction-level message. Declines and half-empty envelopes both
// fall through to the failure path.
func (r TransactionResponse) Approved() bool {
	return r.ResultCode == ResultCodeOK && len(r.TxnMessages) > 0
}

// ErrorMessage extracts the most specific failure text available:
// transaction error, then top-level message, then synthesized strings
// from the response/result codes, then a generic fallback.
func (r TransactionResponse) ErrorMessage() string {
	if len(r.TxnErrors) > 0 && r.TxnErrors[0].Text != "" {
		return r.TxnErrors[0].Text
	}
	if len(r.Messages) > 0 && r.Messages[0].Text != "" {
		return r.Messages[0].Text
	}
	if r.ResponseCode != "" {
		return "Transaction failed with response code " + r.ResponseCode
	}
	if r.ResultCode != "" {
		return "Gateway returned result code " + r.ResultCode
	}
	return "Unknown gateway error. Check API credentials and gateway configuration."
}

// ErrorCode mirrors ErrorMessage precedence for the machine-readable code.
func (r TransactionResponse) ErrorCode() string {
	if len(r.TxnErrors) > 0 && r.TxnErrors[0].Code != "" {
		return r.TxnErrors[0].Code
	}
	if len(r.Messages) > 0 && r.Messages[0].Code != "" {
		return r.Messages[0].Code
	}
	return r.ResponseCode
}

// Gateway is the single external collaborator: one call per
// orchestrated operation, never retried here.
type Gateway interface {
	SubmitTransaction(ctx context.Context, req TransactionRequest) (TransactionResponse, error)
}
