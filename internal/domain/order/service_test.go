// internal/domain/order/service_test.go
package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/cart"
	"github.com/threadline/storefront-backend/internal/domain/product"
	"github.com/threadline/storefront-backend/internal/domain/shipping"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	svc         *Service
	cartService *cart.Service
	method      *shipping.Method
	product     *product.Product
}

func setupTestEnv(t *testing.T) *testEnv {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&product.Category{}, &product.Product{},
		&cart.CartItem{},
		&shipping.Method{},
		&Order{}, &OrderItem{},
	))

	category := product.Category{Name: "Outerwear", Slug: "outerwear", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	prod := product.Product{
		Name:          "denim-jacket",
		Slug:          "denim-jacket",
		Price:         12990,
		CategoryID:    category.ID,
		StockQuantity: 10,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&prod).Error)

	method := shipping.Method{
		Name:             "Standard",
		BasePrice:        1490,
		EstimatedDaysMin: 5,
		EstimatedDaysMax: 10,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&method).Error)

	cfg := &config.Config{}
	cartService := cart.NewService(db, nil, cfg)
	shipService := shipping.NewService(db, cfg)

	return &testEnv{
		db:          db,
		svc:         NewService(db, cfg, cartService, shipService),
		cartService: cartService,
		method:      &method,
		product:     &prod,
	}
}

func (e *testEnv) fillCart(t *testing.T, userID uint, quantity int) {
	_, err := e.cartService.AddItem(context.Background(), userID, &cart.AddRequest{
		ProductID: e.product.ID,
		Quantity:  quantity,
		Size:      "L",
	})
	require.NoError(t, err)
}

func submitRequest(methodID uint) *SubmitRequest {
	return &SubmitRequest{
		ShippingMethodID: methodID,
		PaymentMethod:    "pix",
		RecipientName:    "Ana Souza",
		Street:           "Rua das Flores",
		Number:           "120",
		City:             "São Paulo",
		State:            "SP",
		PostalCode:       "01001-000",
	}
}

func TestSubmitPlacesOrder(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 2)

	ord, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.NoError(t, err)

	assert.NotEmpty(t, ord.OrderNumber)
	assert.Equal(t, StatusPending, ord.Status)
	assert.Equal(t, PaymentPix, ord.PaymentMethod)
	assert.Equal(t, int64(2*12990), ord.Subtotal)
	assert.Equal(t, int64(1490), ord.ShippingFee)
	assert.Equal(t, int64(2*12990+1490), ord.Total)
	require.Len(t, ord.Items, 1)
	assert.Equal(t, int64(12990), ord.Items[0].UnitPrice)
	assert.Equal(t, "L", ord.Items[0].Size)
	assert.Equal(t, "BR", ord.Country)
}

func TestSubmitClearsCart(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 2)

	_, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.NoError(t, err)

	userCart, err := env.cartService.GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, userCart.IsEmpty())
}

func TestSubmitEmptyCartRejected(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

func TestSubmitUnknownPaymentMethod(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 1)

	req := submitRequest(env.method.ID)
	req.PaymentMethod = "cheque"

	_, err := env.svc.Submit(context.Background(), 1, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

func TestSubmitInactiveShippingMethod(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 1)

	require.NoError(t, env.db.Model(env.method).Update("is_active", false).Error)

	_, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestTotalIsNeverRecomputed(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 2)

	ord, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.NoError(t, err)

	// Catalog and shipping edits after submission do not reach back
	require.NoError(t, env.db.Model(env.product).Update("price", 99).Error)
	require.NoError(t, env.db.Model(env.method).Update("base_price", 9999).Error)

	reloaded, err := env.svc.AdminGet(ord.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*12990+1490), reloaded.Total)
	assert.Equal(t, int64(12990), reloaded.Items[0].UnitPrice)
	assert.Equal(t, "denim-jacket", reloaded.Items[0].Name)
}

func TestSubmitPartialWriteLeavesHeader(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 1)

	// Force the line write to fail after the header lands
	require.NoError(t, env.db.Migrator().DropTable(&OrderItem{}))

	_, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPartialWriteWindow))

	var headers int64
	require.NoError(t, env.db.Model(&Order{}).Count(&headers).Error)
	assert.Equal(t, int64(1), headers)

	// The cart is untouched when submission fails mid-way
	userCart, cartErr := env.cartService.GetCart(context.Background(), 1)
	require.NoError(t, cartErr)
	assert.False(t, userCart.IsEmpty())
}

func TestGetOrderOwnership(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 1)

	ord, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.NoError(t, err)

	_, err = env.svc.GetOrder(2, ord.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	mine, err := env.svc.GetOrder(1, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.OrderNumber, mine.OrderNumber)
}

func TestGetUserOrdersNewestFirst(t *testing.T) {
	env := setupTestEnv(t)

	env.fillCart(t, 1, 1)
	first, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.NoError(t, err)

	env.fillCart(t, 1, 2)
	second, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.NoError(t, err)

	resp, err := env.svc.GetUserOrders(1, &ListRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 2)
	assert.Equal(t, int64(2), resp.Total)

	ids := []uint{resp.Orders[0].ID, resp.Orders[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestUpdateStatusTransitions(t *testing.T) {
	env := setupTestEnv(t)
	env.fillCart(t, 1, 1)

	ord, err := env.svc.Submit(context.Background(), 1, submitRequest(env.method.ID))
	require.NoError(t, err)

	// pending -> shipped skips processing and is rejected
	_, err = env.svc.UpdateStatus(ord.ID, StatusShipped)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))

	updated, err := env.svc.UpdateStatus(ord.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)

	updated, err = env.svc.UpdateStatus(ord.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, updated.Status)

	updated, err = env.svc.UpdateStatus(ord.ID, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, updated.Status)

	// Delivered is terminal
	_, err = env.svc.UpdateStatus(ord.ID, StatusCancelled)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.svc.UpdateStatus(1, Status("lost"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}
