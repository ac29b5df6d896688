package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/opsdesk/internal/catalog/domain"
	"github.com/smallbiznis/opsdesk/internal/catalog/service"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupCatalog(t *testing.T) (domain.CatalogService, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Service{}, &domain.CustomerServicePrice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewSystemClock(),
	})
	return svc, conn
}

func TestCreateAndListServices(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCatalog(t)

	created, err := svc.Create(ctx, domain.CreateServiceRequest{
		Name:  "Laundry",
		Price: decimal.RequireFromString("150.00"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = svc.Create(ctx, domain.CreateServiceRequest{
		Name:  "Cleaning",
		Price: decimal.RequireFromString("90.50"),
	})
	require.NoError(t, err)

	services, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Cleaning", services[0].Name)
	assert.Equal(t, "Laundry", services[1].Name)
}

func TestCreateServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCatalog(t)

	_, err := svc.Create(ctx, domain.CreateServiceRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateServiceRequest{
		Name:  "Negative",
		Price: decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestEffectivePriceUsesOverride(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCatalog(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	customerID := node.Generate()

	base, err := svc.Create(ctx, domain.CreateServiceRequest{
		Name:  "Laundry",
		Price: decimal.RequireFromString("150.00"),
	})
	require.NoError(t, err)

	price, err := svc.EffectivePrice(ctx, customerID, base.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("150.00")))

	_, err = svc.SetCustomerPrice(ctx, domain.SetCustomerPriceRequest{
		CustomerID: customerID.String(),
		ServiceID:  base.ID.String(),
		Price:      decimal.RequireFromString("120.00"),
	})
	require.NoError(t, err)

	price, err = svc.EffectivePrice(ctx, customerID, base.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("120.00")))
}

func TestSetCustomerPriceReplacesExisting(t *testing.T) {
	ctx := context.Background()
	svc, conn := setupCatalog(t)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	customerID := node.Generate()

	base, err := svc.Create(ctx, domain.CreateServiceRequest{
		Name:  "Cleaning",
		Price: decimal.RequireFromString("90.00"),
	})
	require.NoError(t, err)

	for _, raw := range []string{"80.00", "75.00"} {
		_, err = svc.SetCustomerPrice(ctx, domain.SetCustomerPriceRequest{
			CustomerID: customerID.String(),
			ServiceID:  base.ID.String(),
			Price:      decimal.RequireFromString(raw),
		})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, conn.Model(&domain.CustomerServicePrice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	price, err := svc.EffectivePrice(ctx, customerID, base.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("75.00")))
}

func TestSetCustomerPriceKeepsRowIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCatalog(t)

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	customerID := node.Generate()

	base, err := svc.Create(ctx, domain.CreateServiceRequest{
		Name:  "Ironing",
		Price: decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)

	first, err := svc.SetCustomerPrice(ctx, domain.SetCustomerPriceRequest{
		CustomerID: customerID.String(),
		ServiceID:  base.ID.String(),
		Price:      decimal.RequireFromString("35.00"),
	})
	require.NoError(t, err)

	second, err := svc.SetCustomerPrice(ctx, domain.SetCustomerPriceRequest{
		CustomerID: customerID.String(),
		ServiceID:  base.ID.String(),
		Price:      decimal.RequireFromString("30.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Price.Equal(decimal.RequireFromString("30.00")))
}

func TestDeleteCustomerPriceRestoresBase(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupCatalog(t)

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	customerID := node.Generate()

	base, err := svc.Create(ctx, domain.CreateServiceRequest{
		Name:  "Laundry",
		Price: decimal.RequireFromString("150.00"),
	})
	require.NoError(t, err)

	_, err = svc.SetCustomerPrice(ctx, domain.SetCustomerPriceRequest{
		CustomerID: customerID.String(),
		ServiceID:  base.ID.String(),
		Price:      decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCustomerPrice(ctx, customerID.String(), base.ID.String()))

	price, err := svc.EffectivePrice(ctx, customerID, base.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("150.00")))

	overrides, err := svc.ListCustomerPrices(ctx, customerID.String())
	require.NoError(t, err)
	assert.Empty(t, overrides)
}
