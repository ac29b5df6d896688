package scheduler_test

import (
	"context"
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
	orderdomain "github.com/smallbiznis/opsdesk/internal/order/domain"
	"github.com/smallbiznis/opsdesk/internal/scheduler"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupScheduler(t *testing.T) (*scheduler.Scheduler, *gorm.DB, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&customerdomain.Customer{},
		&catalogdomain.Service{},
		&catalogdomain.CustomerServicePrice{},
		&authdomain.User{},
		&orderdomain.Order{},
		&billingdomain.BillingCycle{},
		&billingdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))

	billingSvc := billingservice.New(billingservice.Params{
		DB:         conn,
		Log:        zaptest.NewLogger(t),
		GenID:      node,
		Clock:      fake,
		BillingCfg: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})

	sched := scheduler.New(scheduler.Params{
		Log:        zaptest.NewLogger(t),
		Clock:      fake,
		BillingSvc: billingSvc,
	})
	return sched, conn, fake, node
}

func TestRunOnceGeneratesCurrentMonth(t *testing.T) {
	ctx := context.Background()
	sched, conn, _, node := setupScheduler(t)

	customer := customerdomain.Customer{ID: node.Generate(), Name: "Alice", Phone: "08001"}
	laundry := catalogdomain.Service{ID: node.Generate(), Name: "Laundry", Price: decimal.RequireFromString("100.00")}
	require.NoError(t, conn.Create(&customer).Error)
	require.NoError(t, conn.Create(&laundry).Error)

	order := orderdomain.Order{
		ID:         node.Generate(),
		CustomerID: customer.ID,
		ServiceID:  laundry.ID,
		Quantity:   2,
		CreatedBy:  node.Generate(),
		CreatedAt:  time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, conn.Create(&order).Error)

	require.NoError(t, sched.RunOnce(ctx))

	var cycle billingdomain.BillingCycle
	require.NoError(t, conn.
		Where("customer_id = ? AND billing_month = ? AND billing_year = ?", customer.ID, 3, 2025).
		First(&cycle).Error)
	assert.True(t, cycle.TotalAmount.Equal(decimal.RequireFromString("200.00")))
}

func TestRunOnceFollowsClockAcrossMonths(t *testing.T) {
	ctx := context.Background()
	sched, conn, fake, node := setupScheduler(t)

	customer := customerdomain.Customer{ID: node.Generate(), Name: "Alice", Phone: "08001"}
	require.NoError(t, conn.Create(&customer).Error)

	require.NoError(t, sched.RunOnce(ctx))

	// The clock rolls into April; the next run must target the new month.
	fake.Advance(20 * 24 * time.Hour)
	require.NoError(t, sched.RunOnce(ctx))

	var months []int
	require.NoError(t, conn.Model(&billingdomain.BillingCycle{}).
		Where("customer_id = ?", customer.ID).
		Order("billing_month ASC").
		Pluck("billing_month", &months).Error)
	assert.Equal(t, []int{3, 4}, months)
}

func TestRunOnceIsRepeatable(t *testing.T) {
	ctx := context.Background()
	sched, conn, _, node := setupScheduler(t)

	customer := customerdomain.Customer{ID: node.Generate(), Name: "Alice", Phone: "08001"}
	require.NoError(t, conn.Create(&customer).Error)

	require.NoError(t, sched.RunOnce(ctx))
	require.NoError(t, sched.RunOnce(ctx))

	var count int64
	require.NoError(t, conn.Model(&billingdomain.BillingCycle{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
