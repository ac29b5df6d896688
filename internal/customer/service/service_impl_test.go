package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/opsdesk/internal/catalog/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/internal/customer/domain"
	"github.com/smallbiznis/opsdesk/internal/customer/service"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupCustomers(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Customer{},
		&domain.Party{},
		&catalogdomain.Service{},
		&catalogdomain.CustomerServicePrice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewSystemClock(),
	})
	return svc, conn, node
}

func TestCreateAndListCustomers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupCustomers(t)

	dueDay := 10
	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:          "  Zulu Traders  ",
		Phone:         "0800000001",
		Address:       "12 Market Road",
		PaymentDueDay: &dueDay,
	})
	require.NoError(t, err)
	assert.Equal(t, "Zulu Traders", created.Name)
	require.NotNil(t, created.Address)
	assert.Equal(t, "12 Market Road", *created.Address)
	require.NotNil(t, created.PaymentDueDay)
	assert.Equal(t, 10, *created.PaymentDueDay)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alpha Stores",
		Phone: "0800000002",
	})
	require.NoError(t, err)

	customers, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Alpha Stores", customers[0].Name)
	assert.Equal(t, "Zulu Traders", customers[1].Name)
}

func TestCreateCustomerValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupCustomers(t)

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Phone: "0800000001"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "No Phone"})
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	badDay := 32
	_, err = svc.Create(ctx, domain.CreateCustomerRequest{
		Name:          "Bad Day",
		Phone:         "0800000003",
		PaymentDueDay: &badDay,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDueDay)
}

func TestGetCustomerByID(t *testing.T) {
	ctx := context.Background()
	svc, _, node := setupCustomers(t)

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice Traders",
		Phone: "0800000001",
	})
	require.NoError(t, err)

	found, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByID(ctx, node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _, node := setupCustomers(t)

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice Traders",
		Phone: "0800000001",
	})
	require.NoError(t, err)
	assert.Nil(t, created.PaymentDueDay)

	dueDay := 15
	updated, err := svc.Update(ctx, created.ID.String(), domain.UpdateCustomerRequest{
		Name:          "  Alice Wholesale  ",
		Phone:         "0800000009",
		Address:       "3 Harbour Lane",
		PaymentDueDay: &dueDay,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Alice Wholesale", updated.Name)
	assert.Equal(t, "0800000009", updated.Phone)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "3 Harbour Lane", *updated.Address)
	require.NotNil(t, updated.PaymentDueDay)
	assert.Equal(t, 15, *updated.PaymentDueDay)

	found, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Alice Wholesale", found.Name)
	require.NotNil(t, found.PaymentDueDay)
	assert.Equal(t, 15, *found.PaymentDueDay)

	// Omitting address and due day clears them.
	updated, err = svc.Update(ctx, created.ID.String(), domain.UpdateCustomerRequest{
		Name:  "Alice Wholesale",
		Phone: "0800000009",
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Address)
	assert.Nil(t, updated.PaymentDueDay)

	found, err = svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Nil(t, found.Address)
	assert.Nil(t, found.PaymentDueDay)

	_, err = svc.Update(ctx, node.Generate().String(), domain.UpdateCustomerRequest{
		Name:  "Ghost",
		Phone: "0800000000",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateCustomerValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupCustomers(t)

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice Traders",
		Phone: "0800000001",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID.String(), domain.UpdateCustomerRequest{
		Phone: "0800000001",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Update(ctx, created.ID.String(), domain.UpdateCustomerRequest{
		Name: "Alice Traders",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	badDay := 0
	_, err = svc.Update(ctx, created.ID.String(), domain.UpdateCustomerRequest{
		Name:          "Alice Traders",
		Phone:         "0800000001",
		PaymentDueDay: &badDay,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDueDay)
}

func TestPartiesBelongToCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _, node := setupCustomers(t)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice Traders",
		Phone: "0800000001",
	})
	require.NoError(t, err)

	_, err = svc.CreateParty(ctx, domain.CreatePartyRequest{
		CustomerID: customer.ID.String(),
		Name:       "West Branch",
	})
	require.NoError(t, err)
	_, err = svc.CreateParty(ctx, domain.CreatePartyRequest{
		CustomerID: customer.ID.String(),
		Name:       "East Branch",
	})
	require.NoError(t, err)

	_, err = svc.CreateParty(ctx, domain.CreatePartyRequest{
		CustomerID: node.Generate().String(),
		Name:       "Orphan",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CreateParty(ctx, domain.CreatePartyRequest{
		CustomerID: customer.ID.String(),
		Name:       "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	parties, err := svc.ListParties(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Len(t, parties, 2)
	assert.Equal(t, "East Branch", parties[0].Name)
	assert.Equal(t, "West Branch", parties[1].Name)
}

func TestDeletePartyRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	svc, conn, _ := setupCustomers(t)

	alice, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice Traders",
		Phone: "0800000001",
	})
	require.NoError(t, err)
	bob, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Bob Retail",
		Phone: "0800000002",
	})
	require.NoError(t, err)

	party, err := svc.CreateParty(ctx, domain.CreatePartyRequest{
		CustomerID: alice.ID.String(),
		Name:       "Main Branch",
	})
	require.NoError(t, err)

	err = svc.DeleteParty(ctx, bob.ID.String(), party.ID.String())
	assert.ErrorIs(t, err, domain.ErrPartyNotFound)

	require.NoError(t, svc.DeleteParty(ctx, alice.ID.String(), party.ID.String()))

	var partyCount int64
	require.NoError(t, conn.Model(&domain.Party{}).Count(&partyCount).Error)
	assert.Zero(t, partyCount)

	err = svc.DeleteParty(ctx, alice.ID.String(), party.ID.String())
	assert.ErrorIs(t, err, domain.ErrPartyNotFound)
}

func TestDeleteCustomerCascades(t *testing.T) {
	ctx := context.Background()
	svc, conn, node := setupCustomers(t)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Alice Traders",
		Phone: "0800000001",
	})
	require.NoError(t, err)
	_, err = svc.CreateParty(ctx, domain.CreatePartyRequest{
		CustomerID: customer.ID.String(),
		Name:       "Main",
	})
	require.NoError(t, err)

	laundry := catalogdomain.Service{
		ID:    node.Generate(),
		Name:  "Laundry",
		Price: decimal.RequireFromString("100.00"),
	}
	require.NoError(t, conn.Create(&laundry).Error)
	override := catalogdomain.CustomerServicePrice{
		ID:         node.Generate(),
		CustomerID: customer.ID,
		ServiceID:  laundry.ID,
		Price:      decimal.RequireFromString("80.00"),
	}
	require.NoError(t, conn.Create(&override).Error)

	require.NoError(t, svc.Delete(ctx, customer.ID.String()))

	var customerCount, partyCount, overrideCount int64
	require.NoError(t, conn.Model(&domain.Customer{}).Count(&customerCount).Error)
	require.NoError(t, conn.Model(&domain.Party{}).Count(&partyCount).Error)
	require.NoError(t, conn.Model(&catalogdomain.CustomerServicePrice{}).Count(&overrideCount).Error)
	assert.Zero(t, customerCount)
	assert.Zero(t, partyCount)
	assert.Zero(t, overrideCount)

	_, err = svc.GetByID(ctx, customer.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
