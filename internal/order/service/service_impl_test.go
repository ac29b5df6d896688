package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/opsdesk/internal/auth/domain"
	catalogdomain "github.com/smallbiznis/opsdesk/internal/catalog/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	customerdomain "github.com/smallbiznis/opsdesk/internal/customer/domain"
	"github.com/smallbiznis/opsdesk/internal/order/domain"
	"github.com/smallbiznis/opsdesk/internal/order/service"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"github.com/smallbiznis/opsdesk/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	svc      domain.Service
	conn     *gorm.DB
	node     *snowflake.Node
	customer customerdomain.Customer
	party    customerdomain.Party
	laundry  catalogdomain.Service
	worker   authdomain.User
}

func setupOrders(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.Party{},
		&catalogdomain.Service{},
		&catalogdomain.CustomerServicePrice{},
		&authdomain.User{},
		&domain.Order{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		conn: conn,
		node: node,
		customer: customerdomain.Customer{
			ID:    node.Generate(),
			Name:  "Alice Traders",
			Phone: "0800000001",
		},
		laundry: catalogdomain.Service{
			ID:    node.Generate(),
			Name:  "Laundry",
			Price: decimal.RequireFromString("100.00"),
		},
		worker: authdomain.User{
			ID:    node.Generate(),
			Name:  "Worker One",
			Email: "worker@example.com",
			Role:  authdomain.RoleUser,
		},
	}
	f.party = customerdomain.Party{
		ID:         node.Generate(),
		CustomerID: f.customer.ID,
		Name:       "Main Branch",
	}

	require.NoError(t, conn.Create(&f.customer).Error)
	require.NoError(t, conn.Create(&f.party).Error)
	require.NoError(t, conn.Create(&f.laundry).Error)
	require.NoError(t, conn.Create(&f.worker).Error)

	f.svc = service.New(service.Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewSystemClock(),
	})
	return f
}

func TestCreateOrderAndListEnriched(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)

	created, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		PartyID:    f.party.ID.String(),
		ServiceID:  f.laundry.ID.String(),
		Quantity:   3,
		CreatedBy:  f.worker.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	rows, err := f.svc.List(ctx, domain.ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Alice Traders", row.CustomerName)
	assert.Equal(t, "Laundry", row.ServiceName)
	assert.Equal(t, "Worker One", row.CreatorName)
	require.NotNil(t, row.PartyName)
	assert.Equal(t, "Main Branch", *row.PartyName)
	assert.True(t, row.UnitPrice.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, row.LineTotal.Equal(decimal.RequireFromString("300.00")))
}

func TestCreateOrderTimestampsFollowClock(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)

	fake := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
	svc := service.New(service.Params{
		DB:    f.conn,
		Log:   zaptest.NewLogger(t),
		GenID: f.node,
		Clock: fake,
	})

	created, err := svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ServiceID:  f.laundry.ID.String(),
		Quantity:   1,
		CreatedBy:  f.worker.ID,
	})
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(fake.Now()))
	assert.True(t, created.UpdatedAt.Equal(fake.Now()))
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)

	_, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ServiceID:  f.laundry.ID.String(),
		Quantity:   0,
		CreatedBy:  f.worker.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.node.Generate().String(),
		ServiceID:  f.laundry.ID.String(),
		Quantity:   1,
		CreatedBy:  f.worker.ID,
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ServiceID:  f.node.Generate().String(),
		Quantity:   1,
		CreatedBy:  f.worker.ID,
	})
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)

	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		PartyID:    f.node.Generate().String(),
		ServiceID:  f.laundry.ID.String(),
		Quantity:   1,
		CreatedBy:  f.worker.ID,
	})
	assert.ErrorIs(t, err, domain.ErrPartyNotFound)
}

func TestListUsesCustomerOverridePrice(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)

	override := catalogdomain.CustomerServicePrice{
		ID:         f.node.Generate(),
		CustomerID: f.customer.ID,
		ServiceID:  f.laundry.ID,
		Price:      decimal.RequireFromString("80.00"),
	}
	require.NoError(t, f.conn.Create(&override).Error)

	_, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ServiceID:  f.laundry.ID.String(),
		Quantity:   2,
		CreatedBy:  f.worker.ID,
	})
	require.NoError(t, err)

	rows, err := f.svc.List(ctx, domain.ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].UnitPrice.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, rows[0].LineTotal.Equal(decimal.RequireFromString("160.00")))
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)

	other := customerdomain.Customer{
		ID:    f.node.Generate(),
		Name:  "Bob Stores",
		Phone: "0800000002",
	}
	require.NoError(t, f.conn.Create(&other).Error)

	for _, customerID := range []string{f.customer.ID.String(), other.ID.String()} {
		_, err := f.svc.Create(ctx, domain.CreateOrderRequest{
			CustomerID: customerID,
			ServiceID:  f.laundry.ID.String(),
			Quantity:   1,
			CreatedBy:  f.worker.ID,
		})
		require.NoError(t, err)
	}

	rows, err := f.svc.List(ctx, domain.ListOrdersRequest{CustomerID: other.ID.String()})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob Stores", rows[0].CustomerName)

	future := time.Now().UTC().Add(time.Hour)
	rows, err = f.svc.List(ctx, domain.ListOrdersRequest{From: &future})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListRecentPaginates(t *testing.T) {
	ctx := context.Background()
	f := setupOrders(t)

	var created []domain.Order
	for i := 0; i < 5; i++ {
		order, err := f.svc.Create(ctx, domain.CreateOrderRequest{
			CustomerID: f.customer.ID.String(),
			ServiceID:  f.laundry.ID.String(),
			Quantity:   i + 1,
			CreatedBy:  f.worker.ID,
		})
		require.NoError(t, err)
		created = append(created, order)
	}

	rows, page, err := f.svc.ListRecent(ctx, domain.ListOrdersRequest{
		Page: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, created[4].ID, rows[0].ID)
	assert.Equal(t, created[3].ID, rows[1].ID)

	rows, page, err = f.svc.ListRecent(ctx, domain.ListOrdersRequest{
		Page: pagination.Pagination{PageSize: 2, PageToken: page.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, created[2].ID, rows[0].ID)

	rows, page, err = f.svc.ListRecent(ctx, domain.ListOrdersRequest{
		Page: pagination.Pagination{PageSize: 2, PageToken: page.NextPageToken},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, created[0].ID, rows[0].ID)
}
