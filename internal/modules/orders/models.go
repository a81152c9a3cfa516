package orders

import "time"

const (
	StatusPending    = "pending"
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusVoided     = "voided"
	StatusRefunded   = "refunded"
	StatusFailed     = "failed"
)

type Order struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	OrderNumber string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_orders_order_number"`
	CustomerRef string    `gorm:"type:varchar(64);not null;index:ix_orders_customer_ref"`
	Amount      float64   `gorm:"type:decimal(10,2);not null"`
	Currency    string    `gorm:"type:char(3);not null;default:USD"`
	Status      string    `gorm:"type:varchar(16);not null"`
	Description *string   `gorm:"type:varchar(255)"`
	CreatedAt   time.Time `gorm:"type:datetime;not null"`
	UpdatedAt   time.Time `gorm:"type:datetime;not null"`
}

func (Order) TableName() string { return "orders" }

// PaymentMethod stores only the last four digits; the full PAN never
// touches the database (PCI minimization).
type PaymentMethod struct {
	ID             string    `gorm:"type:char(36);primaryKey"`
	OrderID        string    `gorm:"type:char(36);not null;uniqueIndex:ux_payment_methods_order_id"`
	CardLastFour   string    `gorm:"type:char(4);not null"`
	CardBrand      *string   `gorm:"type:varchar(32)"`
	ExpMonth       int       `gorm:"not null"`
	ExpYear        int       `gorm:"not null"`
	HolderName     *string   `gorm:"type:varchar(128)"`
	BillingAddress *string   `gorm:"type:varchar(255)"`
	CreatedAt      time.Time `gorm:"type:datetime;not null"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }
