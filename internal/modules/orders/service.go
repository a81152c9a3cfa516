package orders

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

type CreateInput struct {
	CustomerRef    string
	Amount         float64
	Currency       string
	Description    string
	CardLastFour   string
	CardBrand      string
	ExpMonth       int
	ExpYear        int
	HolderName     string
	BillingAddress string
}

// Create persists the order together with its payment method in one
// transaction: both rows or neither.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	var o Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		o, err = s.CreateIn(tx, in)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// CreateIn writes the order and payment method rows inside the
// caller's transaction; atomicity is the caller's envelope.
func (s *Service) CreateIn(tx *gorm.DB, in CreateInput) (Order, error) {
	now := time.Now().UTC()

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	o := Order{
		ID:          uuid.NewString(),
		OrderNumber: NewOrderNumber(now),
		CustomerRef: in.CustomerRef,
		Amount:      in.Amount,
		Currency:    currency,
		Status:      StatusPending,
		Description: optional(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.Create(&o).Error; err != nil {
		return Order{}, err
	}

	pm := PaymentMethod{
		ID:             uuid.NewString(),
		OrderID:        o.ID,
		CardLastFour:   in.CardLastFour,
		CardBrand:      optional(in.CardBrand),
		ExpMonth:       in.ExpMonth,
		ExpYear:        in.ExpYear,
		HolderName:     optional(in.HolderName),
		BillingAddress: optional(in.BillingAddress),
		CreatedAt:      now,
	}
	if err := tx.Create(&pm).Error; err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// List returns orders newest first. Page/pageSize clamping is the
// caller's job; offset is (page-1)*pageSize.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&Order{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Order
	if err := q.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// LockForUpdate reloads the order inside the caller's transaction
// holding a row lock, serializing concurrent finalizers on the same
// order. SQLite ignores the locking clause; its writes serialize on
// the database lock instead.
func (s *Service) LockForUpdate(tx *gorm.DB, id string) (Order, error) {
	var o Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// UpdateStatusFrom flips the status and refreshes updated_at, but only
// while the row still holds the status the caller derived the flip
// from. A concurrent change surfaces as ErrOrderStateChanged instead
// of being overwritten. Legal transition checking belongs to the
// orchestrator, not here.
func (s *Service) UpdateStatusFrom(tx *gorm.DB, id, from, to string) error {
	res := tx.Model(&Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrOrderNotFound
		}
		return ErrOrderStateChanged
	}
	return nil
}

func (s *Service) FindPaymentMethod(ctx context.Context, orderID string) (PaymentMethod, error) {
	var pm PaymentMethod
	if err := s.db.WithContext(ctx).First(&pm, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentMethod{}, ErrPaymentMethodNotFound
		}
		return PaymentMethod{}, err
	}
	return pm, nil
}

// NewOrderNumber builds a human-readable order number:
// ORD_<yyyyMMddHHmmss UTC>_<random 1000-9999>.
func NewOrderNumber(now time.Time) string {
	return "ORD_" + now.UTC().Format("20060102150405") + "_" + strconv.Itoa(1000+rand.IntN(9000))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
