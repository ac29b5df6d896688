package domain_test

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/opsdesk/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(raw string) decimal.Decimal { return decimal.RequireFromString(raw) }

func row(customerID, creatorID snowflake.ID, customerName, creatorName string, lineTotal string) domain.Row {
	return domain.Row{
		CustomerID:   customerID,
		CustomerName: customerName,
		CreatedBy:    creatorID,
		CreatorName:  creatorName,
		LineTotal:    price(lineTotal),
	}
}

func TestGroupByCustomer(t *testing.T) {
	alice := snowflake.ID(1)
	bob := snowflake.ID(2)
	worker := snowflake.ID(10)

	rows := []domain.Row{
		row(bob, worker, "Bob Stores", "Worker", "50.00"),
		row(alice, worker, "Alice Traders", "Worker", "100.00"),
		row(bob, worker, "Bob Stores", "Worker", "25.50"),
		row(alice, worker, "Alice Traders", "Worker", "10.00"),
		row(bob, worker, "Bob Stores", "Worker", "4.50"),
	}

	groups := domain.GroupByCustomer(rows)
	require.Len(t, groups, 2)

	assert.Equal(t, "Alice Traders", groups[0].CustomerName)
	assert.Equal(t, 2, groups[0].OrderCount)
	assert.True(t, groups[0].TotalAmount.Equal(price("110.00")))

	assert.Equal(t, "Bob Stores", groups[1].CustomerName)
	assert.Equal(t, 3, groups[1].OrderCount)
	assert.True(t, groups[1].TotalAmount.Equal(price("80.00")))

	var count int
	total := decimal.Zero
	for _, g := range groups {
		count += g.OrderCount
		total = total.Add(g.TotalAmount)
	}
	assert.Equal(t, len(rows), count)
	assert.True(t, total.Equal(price("190.00")))
}

func TestGroupByCreator(t *testing.T) {
	customer := snowflake.ID(1)
	zed := snowflake.ID(20)
	amy := snowflake.ID(21)

	rows := []domain.Row{
		row(customer, zed, "Customer", "Zed", "30.00"),
		row(customer, amy, "Customer", "Amy", "70.00"),
		row(customer, zed, "Customer", "Zed", "20.00"),
	}

	groups := domain.GroupByCreator(rows)
	require.Len(t, groups, 2)

	assert.Equal(t, "Amy", groups[0].CreatorName)
	assert.True(t, groups[0].TotalAmount.Equal(price("70.00")))
	assert.Equal(t, "Zed", groups[1].CreatorName)
	assert.Equal(t, 2, groups[1].OrderCount)
	assert.True(t, groups[1].TotalAmount.Equal(price("50.00")))
}

func TestGroupByCreatorCustomer(t *testing.T) {
	alice := snowflake.ID(1)
	bob := snowflake.ID(2)
	zed := snowflake.ID(20)
	amy := snowflake.ID(21)

	rows := []domain.Row{
		row(bob, zed, "Bob Stores", "Zed", "5.00"),
		row(alice, zed, "Alice Traders", "Zed", "15.00"),
		row(alice, amy, "Alice Traders", "Amy", "40.00"),
		row(bob, zed, "Bob Stores", "Zed", "10.00"),
	}

	groups := domain.GroupByCreatorCustomer(rows)
	require.Len(t, groups, 3)

	assert.Equal(t, "Amy", groups[0].CreatorName)
	assert.Equal(t, "Alice Traders", groups[0].CustomerName)

	assert.Equal(t, "Zed", groups[1].CreatorName)
	assert.Equal(t, "Alice Traders", groups[1].CustomerName)

	assert.Equal(t, "Zed", groups[2].CreatorName)
	assert.Equal(t, "Bob Stores", groups[2].CustomerName)
	assert.Equal(t, 2, groups[2].OrderCount)
	assert.True(t, groups[2].TotalAmount.Equal(price("15.00")))
}

func TestGroupingEmptyInput(t *testing.T) {
	assert.Empty(t, domain.GroupByCustomer(nil))
	assert.Empty(t, domain.GroupByCreator(nil))
	assert.Empty(t, domain.GroupByCreatorCustomer(nil))
}
