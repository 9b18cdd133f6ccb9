package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codops/backend/internal/domain/fulfillment"
	"github.com/codops/backend/internal/domain/shared"
	"github.com/codops/backend/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestOrder(t *testing.T, tenantID uuid.UUID, number, externalRef string) *fulfillment.LocalOrder {
	t.Helper()
	order, err := fulfillment.NewLocalOrder(tenantID, number,
		decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(60))
	require.NoError(t, err)
	order.ExternalRef = externalRef
	return order
}

func TestGormLocalOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLocalOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := newTestOrder(t, tenantID, "ORD-1001", "WH-1")
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", found.OrderNumber)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(110)))
	assert.True(t, found.Profit.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, fulfillment.OrderStatusPending, found.Status)

	t.Run("other tenant cannot see it", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormLocalOrderRepository_SavePersistsHistoryOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLocalOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, uuid.New(), "ORD-2001", "WH-2")
	require.NoError(t, repo.Save(ctx, order))

	shippedAt := time.Now().Add(-time.Hour)
	require.True(t, order.MarkShipped("TRK-9", "Aramex", shippedAt))
	require.NoError(t, repo.Save(ctx, order))
	assert.Empty(t, order.PendingHistory())

	require.True(t, order.MarkDelivered(time.Now()))
	require.NoError(t, repo.Save(ctx, order))
	// nothing pending, nothing appended
	require.NoError(t, repo.Save(ctx, order))

	history, err := repo.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, fulfillment.OrderStatusShipped, history[0].ToStatus)
	assert.Equal(t, fulfillment.OrderStatusDelivered, history[1].ToStatus)
	assert.Equal(t, fulfillment.HistorySourceWarehouse, history[1].Source)

	stored, err := repo.FindByID(ctx, order.TenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OrderStatusDelivered, stored.Status)
	assert.Equal(t, fulfillment.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, "TRK-9", stored.TrackingCode)
	require.NotNil(t, stored.ShippedAt)
	require.NotNil(t, stored.DeliveredAt)
}

func TestGormLocalOrderRepository_SaveRejectsStaleCopy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLocalOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, uuid.New(), "ORD-3001", "WH-1")
	require.NoError(t, repo.Save(ctx, order))
	assert.Equal(t, 1, order.Version)

	first, err := repo.FindByReference(ctx, "WH-1")
	require.NoError(t, err)
	second, err := repo.FindByReference(ctx, "WH-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	firstAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.True(t, first[0].MarkDelivered(firstAt))
	require.True(t, second[0].MarkDelivered(firstAt.Add(time.Minute)))

	require.NoError(t, repo.Save(ctx, first[0]))
	assert.Equal(t, 2, first[0].Version)

	err = repo.Save(ctx, second[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
	assert.NotEmpty(t, second[0].PendingHistory(), "a rejected save keeps its pending entries")

	history, err := repo.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	stored, err := repo.FindByID(ctx, order.TenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	require.NotNil(t, stored.DeliveredAt)
	assert.True(t, firstAt.Equal(*stored.DeliveredAt))

	t.Run("a reloaded copy saves again", func(t *testing.T) {
		stored.CustomerName = "Reloaded"
		require.NoError(t, repo.Save(ctx, stored))
		assert.Equal(t, 3, stored.Version)
	})
}

func TestGormLocalOrderRepository_FindByReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLocalOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	byNumber := newTestOrder(t, tenantID, "SHARED-REF", "")
	byRef := newTestOrder(t, uuid.New(), "ORD-3002", "SHARED-REF")
	plain := newTestOrder(t, tenantID, "ORD-3003", "WH-3003")
	for _, o := range []*fulfillment.LocalOrder{byNumber, byRef, plain} {
		require.NoError(t, repo.Save(ctx, o))
	}

	t.Run("order number outranks external reference", func(t *testing.T) {
		found, err := repo.FindByReference(ctx, "SHARED-REF")
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, byNumber.ID, found[0].ID)
		assert.Equal(t, byRef.ID, found[1].ID)
	})

	t.Run("id match comes first", func(t *testing.T) {
		found, err := repo.FindByReference(ctx, plain.ID.String())
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, plain.ID, found[0].ID)
	})

	t.Run("matches by external reference", func(t *testing.T) {
		found, err := repo.FindByReference(ctx, "WH-3003")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, plain.ID, found[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := repo.FindByReference(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("empty reference", func(t *testing.T) {
		found, err := repo.FindByReference(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestGormLocalOrderRepository_FindWithExternalRef(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLocalOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, repo.Save(ctx, newTestOrder(t, tenantID, "A", "WH-A")))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, tenantID, "B", "")))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, uuid.New(), "C", "WH-C")))

	orders, err := repo.FindWithExternalRef(ctx, tenantID, 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "WH-A", orders[0].ExternalRef)
}

func TestGormExternalOrderRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormExternalOrderRepository(db)
	ctx := context.Background()

	order := &fulfillment.ExternalOrder{
		ExternalID:  "WH-100",
		Reference:   "ORD-100",
		Status:      fulfillment.ExternalStatusPending,
		StatusLabel: "Pending",
		CODAmount:   decimal.RequireFromString("49.90"),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}

	t.Run("upsert inserts then refreshes", func(t *testing.T) {
		require.NoError(t, repo.UpsertExternalOrder(ctx, order))
		require.NotNil(t, order.LastSyncAt)

		order.Status = fulfillment.ExternalStatusShipped
		order.TrackingCode = "TRK-1"
		require.NoError(t, repo.UpsertExternalOrder(ctx, order))

		var count int64
		db.Model(&models.WarehouseOrderModel{}).Count(&count)
		assert.Equal(t, int64(1), count)

		found, err := repo.FindByExternalID(ctx, "WH-100")
		require.NoError(t, err)
		assert.Equal(t, fulfillment.ExternalStatusShipped, found.Status)
		assert.Equal(t, "TRK-1", found.TrackingCode)
		assert.True(t, found.CODAmount.Equal(decimal.RequireFromString("49.90")))
	})

	t.Run("upsert requires external id", func(t *testing.T) {
		err := repo.UpsertExternalOrder(ctx, &fulfillment.ExternalOrder{})
		assert.ErrorIs(t, err, fulfillment.ErrExternalIDRequired)
	})

	t.Run("save updates an existing mirror", func(t *testing.T) {
		found, err := repo.FindByExternalID(ctx, "WH-100")
		require.NoError(t, err)
		found.ApplyStatusUpdate(fulfillment.ExternalStatusUpdate{StatusCode: "delivered"}, time.Now())
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByExternalID(ctx, "WH-100")
		require.NoError(t, err)
		assert.Equal(t, fulfillment.ExternalStatusDelivered, reloaded.Status)
		assert.Equal(t, "Delivered", reloaded.StatusLabel)
	})

	t.Run("missing mirror", func(t *testing.T) {
		_, err := repo.FindByExternalID(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Save(ctx, &fulfillment.ExternalOrder{ExternalID: "nope"}), shared.ErrNotFound)
	})
}
