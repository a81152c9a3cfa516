package ledger

import (
	"time"

	"cardgate.io/app/internal/modules/orders"
)

const (
	TypePurchase  = "purchase"
	TypeAuthorize = "authorize"
	TypeCapture   = "capture"
	TypeVoid      = "void"
	TypeRefund    = "refund"
)

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	// StatusCancelled is reserved for a manual-cancellation flow; no
	// orchestrated path produces it today.
	StatusCancelled = "cancelled"
)

// Transaction is the local record of one gateway operation. It is
// written once at creation and finalized once with the outcome; there
// is no updated_at, created_at is the only ordering key.
type Transaction struct {
	ID                   string    `gorm:"type:char(36);primaryKey"`
	TransactionID        string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_transactions_transaction_id"`
	OrderID              string    `gorm:"type:char(36);not null;index:ix_transactions_order_id"`
	Type                 string    `gorm:"type:varchar(16);not null"`
	Amount               float64   `gorm:"type:decimal(10,2);not null"`
	Status               string    `gorm:"type:varchar(16);not null"`
	AuthNetTransactionID *string   `gorm:"type:varchar(64)"`
	ResponseCode         *string   `gorm:"type:varchar(16)"`
	ResponseMessage      *string   `gorm:"type:varchar(255)"`
	CreatedAt            time.Time `gorm:"type:datetime;not null"`

	Order orders.Order `gorm:"foreignKey:OrderID"`
}

func (Transaction) TableName() string { return "transactions" }
