package domain

import "sort"

// GroupByCustomer folds rows into one group per customer, ordered by
// customer name. Each group keeps its member rows in input order.
func GroupByCustomer(rows []Row) []CustomerGroup {
	index := make(map[int64]int)
	groups := make([]CustomerGroup, 0)
	for _, row := range rows {
		key := row.CustomerID.Int64()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CustomerGroup{
				CustomerID:   row.CustomerID,
				CustomerName: row.CustomerName,
			})
		}
		groups[i].TotalAmount = groups[i].TotalAmount.Add(row.LineTotal)
		groups[i].OrderCount++
		groups[i].Orders = append(groups[i].Orders, row)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].CustomerName != groups[b].CustomerName {
			return groups[a].CustomerName < groups[b].CustomerName
		}
		return groups[a].CustomerID < groups[b].CustomerID
	})
	return groups
}

// GroupByCreator folds rows into one group per creating user, ordered by
// creator name.
func GroupByCreator(rows []Row) []CreatorGroup {
	index := make(map[int64]int)
	groups := make([]CreatorGroup, 0)
	for _, row := range rows {
		key := row.CreatedBy.Int64()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CreatorGroup{
				CreatorID:   row.CreatedBy,
				CreatorName: row.CreatorName,
			})
		}
		groups[i].TotalAmount = groups[i].TotalAmount.Add(row.LineTotal)
		groups[i].OrderCount++
		groups[i].Orders = append(groups[i].Orders, row)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].CreatorName != groups[b].CreatorName {
			return groups[a].CreatorName < groups[b].CreatorName
		}
		return groups[a].CreatorID < groups[b].CreatorID
	})
	return groups
}

// GroupByCreatorCustomer folds rows into one group per (creator, customer)
// pair, ordered by creator name then customer name.
func GroupByCreatorCustomer(rows []Row) []CreatorCustomerGroup {
	type pair struct{ creator, customer int64 }
	index := make(map[pair]int)
	groups := make([]CreatorCustomerGroup, 0)
	for _, row := range rows {
		key := pair{row.CreatedBy.Int64(), row.CustomerID.Int64()}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CreatorCustomerGroup{
				CreatorID:    row.CreatedBy,
				CreatorName:  row.CreatorName,
				CustomerID:   row.CustomerID,
				CustomerName: row.CustomerName,
			})
		}
		groups[i].TotalAmount = groups[i].TotalAmount.Add(row.LineTotal)
		groups[i].OrderCount++
		groups[i].Orders = append(groups[i].Orders, row)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		if groups[a].CreatorName != groups[b].CreatorName {
			return groups[a].CreatorName < groups[b].CreatorName
		}
		if groups[a].CustomerName != groups[b].CustomerName {
			return groups[a].CustomerName < groups[b].CustomerName
		}
		if groups[a].CreatorID != groups[b].CreatorID {
			return groups[a].CreatorID < groups[b].CreatorID
		}
		return groups[a].CustomerID < groups[b].CustomerID
	})
	return groups
}
