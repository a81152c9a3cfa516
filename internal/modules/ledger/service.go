package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Create writes a pending ledger row for one gateway operation.
func (s *Service) Create(ctx context.Context, orderID, txnType string, amount float64) (Transaction, error) {
	return s.CreateIn(s.db.WithContext(ctx), orderID, txnType, amount)
}

// CreateIn is Create inside the caller's transaction.
func (s *Service) CreateIn(tx *gorm.DB, orderID, txnType string, amount float64) (Transaction, error) {
	now := time.Now().UTC()
	t := Transaction{
		ID:            uuid.NewString(),
		TransactionID: NewTransactionID(now),
		OrderID:       orderID,
		Type:          txnType,
		Amount:        amount,
		Status:        StatusPending,
		CreatedAt:     now,
	}
	if err := tx.Create(&t).Error; err != nil {
		return Transaction{}, err
	}
	return t, nil
}

type UpdateInput struct {
	Status               string
	ResponseCode         string
	ResponseMessage      string
	AuthNetTransactionID string
}

// Update finalizes a ledger row. Optional fields overwrite, never
// merge: an empty input field writes NULL.
func (s *Service) Update(ctx context.Context, transactionID string, in UpdateInput) error {
	return s.UpdateIn(s.db.WithContext(ctx), transactionID, in)
}

// UpdateIn is Update inside the caller's transaction.
func (s *Service) UpdateIn(tx *gorm.DB, transactionID string, in UpdateInput) error {
	var t Transaction
	if err := tx.First(&t, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	return tx.Model(&Transaction{}).
		Where("transaction_id = ?", transactionID).
		Updates(map[string]any{
			"status":                  in.Status,
			"response_code":           nullable(in.ResponseCode),
			"response_message":        nullable(in.ResponseMessage),
			"auth_net_transaction_id": nullable(in.AuthNetTransactionID),
		}).Error
}

// GetByBusinessID loads a transaction by its TXN_ identifier with the
// parent order attached.
func (s *Service) GetByBusinessID(ctx context.Context, transactionID string) (Transaction, error) {
	var t Transaction
	err := s.db.WithContext(ctx).
		Preload("Order").
		First(&t, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

// OrderHistory returns an order's transactions oldest first, the
// shape the order detail view embeds.
func (s *Service) OrderHistory(ctx context.Context, orderID string) ([]Transaction, error) {
	return s.listByOrder(ctx, orderID, "created_at ASC")
}

// ListByOrder returns an order's transactions most recent first.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]Transaction, error) {
	return s.listByOrder(ctx, orderID, "created_at DESC")
}

func (s *Service) listByOrder(ctx context.Context, orderID, order string) ([]Transaction, error) {
	var items []Transaction
	err := s.db.WithContext(ctx).
		Order(order).
		Find(&items, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// NewTransactionID builds the business identifier:
// TXN_<yyyyMMddHHmmss UTC>_<32 lowercase hex chars>.
func NewTransactionID(now time.Time) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return "TXN_" + now.UTC().Format("20060102150405") + "_" + hex.EncodeToString(b)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
