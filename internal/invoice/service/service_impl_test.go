package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/opsdesk/internal/auth/domain"
	billingdomain "github.com/smallbiznis/opsdesk/internal/billing/domain"
	billingservice "github.com/smallbiznis/opsdesk/internal/billing/service"
	catalogdomain "github.com/smallbiznis/opsdesk/internal/catalog/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/internal/config"
	customerdomain "github.com/smallbiznis/opsdesk/internal/customer/domain"
	customerservice "github.com/smallbiznis/opsdesk/internal/customer/service"
	"github.com/smallbiznis/opsdesk/internal/invoice/domain"
	"github.com/smallbiznis/opsdesk/internal/invoice/render"
	"github.com/smallbiznis/opsdesk/internal/invoice/service"
	orderdomain "github.com/smallbiznis/opsdesk/internal/order/domain"
	orderservice "github.com/smallbiznis/opsdesk/internal/order/service"
	"github.com/smallbiznis/opsdesk/internal/providers/pdf"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	svc      domain.Service
	billing  billingdomain.Service
	clock    *clock.FakeClock
	customer customerdomain.Customer
	worker   authdomain.User
}

func setupInvoices(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&customerdomain.Customer{},
		&customerdomain.Party{},
		&catalogdomain.Service{},
		&catalogdomain.CustomerServicePrice{},
		&authdomain.User{},
		&orderdomain.Order{},
		&billingdomain.BillingCycle{},
		&billingdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))

	f := &fixture{
		clock: fake,
		customer: customerdomain.Customer{
			ID:    node.Generate(),
			Name:  "Alice Traders",
			Phone: "0800000001",
		},
		worker: authdomain.User{
			ID:    node.Generate(),
			Name:  "Worker One",
			Email: "worker@example.com",
			Role:  authdomain.RoleUser,
		},
	}
	laundry := catalogdomain.Service{
		ID:    node.Generate(),
		Name:  "Laundry",
		Price: decimal.RequireFromString("100.00"),
	}
	require.NoError(t, conn.Create(&f.customer).Error)
	require.NoError(t, conn.Create(&laundry).Error)
	require.NoError(t, conn.Create(&f.worker).Error)

	orders := orderservice.New(orderservice.Params{DB: conn, Log: log, GenID: node, Clock: fake})
	customers := customerservice.New(customerservice.Params{DB: conn, Log: log, GenID: node, Clock: fake})
	f.billing = billingservice.New(billingservice.Params{
		DB:         conn,
		Log:        log,
		GenID:      node,
		Clock:      fake,
		BillingCfg: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})

	_, err = orders.Create(context.Background(), orderdomain.CreateOrderRequest{
		CustomerID: f.customer.ID.String(),
		ServiceID:  laundry.ID.String(),
		Quantity:   2,
		CreatedBy:  f.worker.ID,
	})
	require.NoError(t, err)

	f.svc = service.New(service.Params{
		Log:         log,
		Clock:       fake,
		Renderer:    render.NewRenderer(),
		Orders:      orders,
		Billing:     f.billing,
		Customers:   customers,
		PDFProvider: pdf.New(),
	})
	return f
}

func TestCreatorInvoiceNestsCustomers(t *testing.T) {
	ctx := context.Background()
	f := setupInvoices(t)

	html, err := f.svc.CreatorInvoice(ctx, domain.DocumentRequest{})
	require.NoError(t, err)
	assert.Contains(t, html, "Worker One")
	assert.Contains(t, html, "Alice Traders")
	assert.Contains(t, html, "200.00")
}

func TestCustomerInvoiceFiltersByCreator(t *testing.T) {
	ctx := context.Background()
	f := setupInvoices(t)

	html, err := f.svc.CustomerInvoice(ctx, domain.DocumentRequest{
		CreatedBy: f.worker.ID.String(),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Alice Traders")

	other, err := f.svc.CustomerInvoice(ctx, domain.DocumentRequest{
		CreatedBy: f.customer.ID.String(),
	})
	require.NoError(t, err)
	assert.NotContains(t, other, "Alice Traders")
}

func TestMonthlyReportListsTrailingMonths(t *testing.T) {
	ctx := context.Background()
	f := setupInvoices(t)

	html, err := f.svc.MonthlyReport(ctx, f.customer.ID.String())
	require.NoError(t, err)
	assert.Contains(t, html, "Alice Traders")
	assert.Contains(t, html, "March 2025")
	assert.Contains(t, html, "April 2024")
}

func TestCustomerStatementPDF(t *testing.T) {
	ctx := context.Background()
	f := setupInvoices(t)

	_, err := f.svc.CustomerStatementPDF(ctx, f.customer.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoCurrentCycle)

	_, err = f.billing.GenerateMonthlyBills(ctx, 3, 2025)
	require.NoError(t, err)

	payload, err := f.svc.CustomerStatementPDF(ctx, f.customer.ID.String())
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
