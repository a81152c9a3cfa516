package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cardgate.io/app/internal/modules/ledger"
)

func advisorTxn(txnType, status string, gatewayID string, age time.Duration, now time.Time) ledger.Transaction {
	t := ledger.Transaction{
		TransactionID: "TXN_20260101000000_00000000000000000000000000000000",
		Type:          txnType,
		Status:        status,
		CreatedAt:     now.Add(-age),
	}
	if gatewayID != "" {
		t.AuthNetTransactionID = &gatewayID
	}
	return t
}

func TestCheckRefundEligibility(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("authorize type should use void", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypeAuthorize, ledger.StatusSuccess, "40001", time.Hour, now), now)
		assert.False(t, e.CanBeRefunded)
		assert.True(t, e.ShouldUseVoid)
		assert.Equal(t, "Authorization-only transaction. Use void.", e.RecommendedAction)
	})

	t.Run("settled purchase is eligible", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypePurchase, ledger.StatusSuccess, "40001", time.Hour, now), now)
		assert.True(t, e.CanBeRefunded)
		assert.False(t, e.ShouldUseVoid)
		assert.True(t, e.IsOldEnough)
		assert.Equal(t, "Eligible for refund.", e.RecommendedAction)
	})

	t.Run("exactly at the settlement window counts as old enough", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypePurchase, ledger.StatusSuccess, "40001", SettlementWindow, now), now)
		assert.True(t, e.IsOldEnough)
		assert.True(t, e.CanBeRefunded)
	})

	t.Run("young purchase should wait or void", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypePurchase, ledger.StatusSuccess, "40001", 12*time.Minute, now), now)
		assert.False(t, e.CanBeRefunded)
		assert.True(t, e.ShouldUseVoid)
		assert.Equal(t, "Transaction is 12 minutes old. Wait for settlement or void it.", e.RecommendedAction)
	})

	t.Run("failed purchase cannot be refunded", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypePurchase, ledger.StatusFailed, "40001", time.Hour, now), now)
		assert.False(t, e.CanBeRefunded)
		assert.False(t, e.ShouldUseVoid)
		assert.Equal(t, "Cannot refund: transaction was not successful.", e.RecommendedAction)
	})

	t.Run("missing gateway id blocks refund", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypePurchase, ledger.StatusSuccess, "", time.Hour, now), now)
		assert.False(t, e.CanBeRefunded)
		assert.Equal(t, "Cannot refund: no gateway transaction ID on record.", e.RecommendedAction)
	})

	t.Run("unexpected type", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypeCapture, ledger.StatusSuccess, "40001", time.Hour, now), now)
		assert.False(t, e.CanBeRefunded)
		assert.False(t, e.ShouldUseVoid)
		assert.Equal(t, "Unexpected transaction type.", e.RecommendedAction)
	})

	// The advisor is stricter than the orchestrator on purpose: the
	// refund operation itself only rejects authorize-type transactions,
	// so a young purchase the advisor flags as "use void" would still
	// be accepted by the orchestrator.
	t.Run("advisor diverges from the enforced gate on young purchases", func(t *testing.T) {
		e := CheckRefundEligibility(advisorTxn(ledger.TypePurchase, ledger.StatusSuccess, "40001", time.Minute, now), now)
		assert.True(t, e.ShouldUseVoid)
		assert.NotEqual(t, ledger.TypeAuthorize, e.Type)
	})
}
