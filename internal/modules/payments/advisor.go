package payments

import (
	"fmt"
	"time"

	"cardgate.io/app/internal/modules/ledger"
)

// SettlementWindow is how long a purchase is assumed to take to settle
// at the gateway. Younger purchases should be voided, not refunded.
const SettlementWindow = 30 * time.Minute

// Eligibility is a read-only diagnostic recomputed from a stored
// transaction. It is advisory: the orchestrator's refund gate enforces
// only the authorization-type check, while this also weighs elapsed
// time, status and the stored gateway reference.
type Eligibility struct {
	TransactionID     string  `json:"transaction_id"`
	Type              string  `json:"type"`
	Status            string  `json:"status"`
	AgeMinutes        float64 `json:"age_minutes"`
	IsOldEnough       bool    `json:"is_old_enough"`
	CanBeRefunded     bool    `json:"can_be_refunded"`
	ShouldUseVoid     bool    `json:"should_use_void"`
	RecommendedAction string  `json:"recommended_action"`
}

// CheckRefundEligibility is a pure function over the transaction and
// the supplied clock.
func CheckRefundEligibility(t ledger.Transaction, now time.Time) Eligibility {
	age := now.Sub(t.CreatedAt)
	oldEnough := age >= SettlementWindow
	hasGatewayID := t.AuthNetTransactionID != nil && *t.AuthNetTransactionID != ""

	e := Eligibility{
		TransactionID: t.TransactionID,
		Type:          t.Type,
		Status:        t.Status,
		AgeMinutes:    age.Minutes(),
		IsOldEnough:   oldEnough,
		CanBeRefunded: t.Type == ledger.TypePurchase &&
			t.Status == ledger.StatusSuccess &&
			hasGatewayID &&
			oldEnough,
		ShouldUseVoid: t.Type == ledger.TypeAuthorize ||
			(t.Type == ledger.TypePurchase && !oldEnough),
	}

	switch {
	case t.Type == ledger.TypeAuthorize:
		e.RecommendedAction = "Authorization-only transaction. Use void."
	case t.Type == ledger.TypePurchase && !oldEnough:
		e.RecommendedAction = fmt.Sprintf(
			"Transaction is %d minutes old. Wait for settlement or void it.",
			int(age.Minutes()))
	case t.Type == ledger.TypePurchase && t.Status != ledger.StatusSuccess:
		e.RecommendedAction = "Cannot refund: transaction was not successful."
	case t.Type == ledger.TypePurchase && !hasGatewayID:
		e.RecommendedAction = "Cannot refund: no gateway transaction ID on record."
	case t.Type == ledger.TypePurchase:
		e.RecommendedAction = "Eligible for refund."
	default:
		e.RecommendedAction = "Unexpected transaction type."
	}

	return e
}
