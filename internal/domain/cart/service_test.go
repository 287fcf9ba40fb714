// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/product"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&product.Category{}, &product.Product{}, &CartItem{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, discount *int64, stock int) *product.Product {
	category := product.Category{Name: "T-Shirts", Slug: "t-shirts-" + name, IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	prod := product.Product{
		Name:          name,
		Slug:          name,
		Price:         price,
		DiscountPrice: discount,
		CategoryID:    category.ID,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&prod).Error)
	return &prod
}

func newTestService(db *gorm.DB) *Service {
	return NewService(db, nil, &config.Config{})
}

func int64Ptr(v int64) *int64 { return &v }

func TestAddItemCreatesLine(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	userCart, err := svc.AddItem(context.Background(), 1, &AddRequest{
		ProductID: prod.ID,
		Quantity:  2,
		Size:      "M",
	})
	require.NoError(t, err)

	require.Len(t, userCart.Lines, 1)
	assert.Equal(t, prod.ID, userCart.Lines[0].ProductID)
	assert.Equal(t, 2, userCart.Lines[0].Quantity)
	assert.Equal(t, "M", userCart.Lines[0].Size)
	assert.Equal(t, int64(5980), userCart.Subtotal)
}

func TestAddItemCombinesQuantities(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	userCart, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 3})
	require.NoError(t, err)

	// One line, quantities combined
	require.Len(t, userCart.Lines, 1)
	assert.Equal(t, 5, userCart.Lines[0].Quantity)
	assert.Equal(t, 5, userCart.LineCount)
}

func TestAddItemOutOfStock(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "sold-out-tee", 2990, nil, 0)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 1})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

func TestAddItemUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: 999, Quantity: 1})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSubtotalUsesDiscountPrice(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	discounted := seedProduct(t, db, "sale-hoodie", 8990, int64Ptr(5990), 10)
	regular := seedProduct(t, db, "plain-hoodie", 7990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: discounted.ID, Quantity: 2})
	require.NoError(t, err)
	userCart, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: regular.ID, Quantity: 1})
	require.NoError(t, err)

	// Discounted line is priced at the discount price, the other at list price
	assert.Equal(t, int64(2*5990+7990), userCart.Subtotal)

	for _, line := range userCart.Lines {
		if line.ProductID == discounted.ID {
			assert.Equal(t, int64(5990), line.UnitPrice)
			assert.Equal(t, int64(8990), line.ListPrice)
		}
	}
}

func TestSetQuantityReplacesValue(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	userCart, err := svc.SetQuantity(context.Background(), 1, prod.ID, 7)
	require.NoError(t, err)

	require.Len(t, userCart.Lines, 1)
	assert.Equal(t, 7, userCart.Lines[0].Quantity)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	userCart, err := svc.SetQuantity(context.Background(), 1, prod.ID, 0)
	require.NoError(t, err)
	assert.True(t, userCart.IsEmpty())

	userCart, err = svc.SetQuantity(context.Background(), 1, prod.ID, -3)
	require.NoError(t, err)
	assert.True(t, userCart.IsEmpty())
}

func TestSetQuantityMissingLine(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.SetQuantity(context.Background(), 1, prod.ID, 3)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestRemoveItemIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	userCart, err := svc.RemoveItem(context.Background(), 1, prod.ID)
	require.NoError(t, err)
	assert.True(t, userCart.IsEmpty())

	// Removing the same line again is not an error
	userCart, err = svc.RemoveItem(context.Background(), 1, prod.ID)
	require.NoError(t, err)
	assert.True(t, userCart.IsEmpty())
}

func TestLineCountSumsQuantities(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	first := seedProduct(t, db, "basic-tee", 2990, nil, 10)
	second := seedProduct(t, db, "cargo-pants", 6990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: first.ID, Quantity: 3})
	require.NoError(t, err)
	userCart, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: second.ID, Quantity: 4})
	require.NoError(t, err)

	// Badge counts units, not lines
	assert.Equal(t, 7, userCart.LineCount)

	count, err := svc.LineCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestClearEmptiesCart(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), 1))

	userCart, err := svc.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, userCart.IsEmpty())
	assert.Zero(t, userCart.Subtotal)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 2})
	require.NoError(t, err)

	otherCart, err := svc.GetCart(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, otherCart.IsEmpty())
}

func TestCartReflectsCurrentPrices(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)
	prod := seedProduct(t, db, "basic-tee", 2990, nil, 10)

	_, err := svc.AddItem(context.Background(), 1, &AddRequest{ProductID: prod.ID, Quantity: 1})
	require.NoError(t, err)

	// Price change between visits shows up on the next read
	require.NoError(t, db.Model(prod).Update("discount_price", 1990).Error)

	userCart, err := svc.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1990), userCart.Lines[0].UnitPrice)
	assert.Equal(t, int64(1990), userCart.Subtotal)
}
