package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Order{}, &PaymentMethod{}))
	return db
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testDB(t))

	o, err := svc.Create(ctx, CreateInput{
		CustomerRef:  "cust-42",
		Amount:       100.50,
		CardLastFour: "1111",
		ExpMonth:     12,
		ExpYear:      2030,
		HolderName:   "Jane Tester",
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD_\d{14}_\d{4}$`), o.OrderNumber)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "USD", o.Currency, "currency defaults to USD")
	assert.Equal(t, 100.50, o.Amount)
	assert.Nil(t, o.Description)

	pm, err := svc.FindPaymentMethod(ctx, o.ID)
	require.NoError(t, err, "payment method is written alongside the order")
	assert.Equal(t, "1111", pm.CardLastFour)
	assert.Equal(t, 12, pm.ExpMonth)
	assert.Equal(t, 2030, pm.ExpYear)
	require.NotNil(t, pm.HolderName)
	assert.Equal(t, "Jane Tester", *pm.HolderName)
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testDB(t))

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("repeated reads are identical", func(t *testing.T) {
		o, err := svc.Create(ctx, CreateInput{CustomerRef: "c", Amount: 10, CardLastFour: "4242", ExpMonth: 1, ExpYear: 2030})
		require.NoError(t, err)

		a, err := svc.Get(ctx, o.ID)
		require.NoError(t, err)
		b, err := svc.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	svc := NewService(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		o := Order{
			ID:          uuid.NewString(),
			OrderNumber: NewOrderNumber(base.Add(time.Duration(i) * time.Second)),
			CustomerRef: "c",
			Amount:      10,
			Currency:    "USD",
			Status:      StatusPending,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&o).Error)
	}

	items, total, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt), "most recent first")

	page2, _, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.True(t, items[1].CreatedAt.After(page2[0].CreatedAt), "pages do not overlap")
}

func TestService_UpdateStatusFrom(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	svc := NewService(db)

	t.Run("unknown id", func(t *testing.T) {
		err := svc.UpdateStatusFrom(db, "nope", StatusPending, StatusCaptured)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("flips status and refreshes updated_at", func(t *testing.T) {
		o, err := svc.Create(ctx, CreateInput{CustomerRef: "c", Amount: 10, CardLastFour: "4242", ExpMonth: 1, ExpYear: 2030})
		require.NoError(t, err)

		require.NoError(t, svc.UpdateStatusFrom(db, o.ID, StatusPending, StatusCaptured))

		got, err := svc.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCaptured, got.Status)
		assert.False(t, got.UpdatedAt.Before(o.UpdatedAt))
	})

	t.Run("stale expectation leaves the row untouched", func(t *testing.T) {
		o, err := svc.Create(ctx, CreateInput{CustomerRef: "c", Amount: 10, CardLastFour: "4242", ExpMonth: 1, ExpYear: 2030})
		require.NoError(t, err)
		require.NoError(t, svc.UpdateStatusFrom(db, o.ID, StatusPending, StatusVoided))

		err = svc.UpdateStatusFrom(db, o.ID, StatusPending, StatusCaptured)
		assert.ErrorIs(t, err, ErrOrderStateChanged)

		got, err := svc.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusVoided, got.Status)
	})
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	re := regexp.MustCompile(`^ORD_20260102030405_(\d{4})$`)

	for i := 0; i < 100; i++ {
		n := NewOrderNumber(now)
		m := re.FindStringSubmatch(n)
		require.NotNil(t, m, "unexpected format: %s", n)
		assert.GreaterOrEqual(t, m[1], "1000")
		assert.LessOrEqual(t, m[1], "9999")
	}
}
