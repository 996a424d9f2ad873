// Package analytics turns an order set into time-windowed sales
// statistics. Computation is pure: one full order scan in, one map of
// per-range rollups out, nothing persisted.
package analytics

import (
	"sort"
	"time"

	"github.com/orderdesk/orderdesk/pkg/apperrors"
	"github.com/orderdesk/orderdesk/store"
)

// StatusFilter selects which order statuses participate in the rollups.
type StatusFilter string

const (
	// StatusCompleted counts completed orders. Orders with no status at
	// all also pass: orders predating the status column were implicitly
	// completed, and re-filtering them out would silently rewrite
	// historical totals.
	StatusCompleted StatusFilter = "completed"

	// StatusAll counts every order regardless of status.
	StatusAll StatusFilter = "all"
)

// ParseStatusFilter validates the statusFilter query parameter. Absent
// defaults to completed; anything other than the two known values is a
// validation error.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch StatusFilter(raw) {
	case "":
		return StatusCompleted, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusAll:
		return StatusAll, nil
	default:
		return "", apperrors.Validation("statusFilter must be 'completed' or 'all'")
	}
}

// topSize caps every ranked list in a rollup.
const topSize = 5

// ItemStat is one entry of an item ranking.
type ItemStat struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// SourceStat aggregates orders per acquisition channel.
type SourceStat struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// CustomerStat is one entry of a customer ranking. Customers are keyed by
// (id, name) so two customers sharing a display name stay distinct.
type CustomerStat struct {
	CustomerID     string         `json:"customerId"`
	CustomerName   string         `json:"customerName"`
	OrderCount     int            `json:"orderCount"`
	TotalSpent     float64        `json:"totalSpent"`
	ItemsPurchased map[string]int `json:"itemsPurchased,omitempty"`
}

// RangeAnalytics is the rollup of one reporting window.
type RangeAnalytics struct {
	TotalSales              float64               `json:"totalSales"`
	OrderCount              int                   `json:"orderCount"`
	AverageOrderValue       float64               `json:"averageOrderValue"`
	TopItems                []ItemStat            `json:"topItems"`
	TopItemsByRevenue       []ItemStat            `json:"topItemsByRevenue"`
	SourceBreakdown         map[string]SourceStat `json:"sourceBreakdown"`
	TopCustomersByOrders    []CustomerStat        `json:"topCustomersByOrders"`
	TopCustomersByRevenue   []CustomerStat        `json:"topCustomersByRevenue"`
	HighestOrderingCustomer *CustomerStat         `json:"highestOrderingCustomer"`
	UniqueCustomers         int                   `json:"uniqueCustomers"`
}

// Compute aggregates the order set into one rollup per reporting window,
// evaluated relative to now. The caller provides the full order set in a
// single fetch; windowing happens here.
func Compute(orders []*store.Order, filter StatusFilter, now time.Time) map[string]RangeAnalytics {
	result := make(map[string]RangeAnalytics, len(ranges))
	for _, r := range ranges {
		cutoff := now.AddDate(0, 0, -r.Days)

		var windowed []*store.Order
		for _, order := range orders {
			if order.ReferenceDate().Before(cutoff) {
				continue
			}
			if !passesFilter(order, filter) {
				continue
			}
			windowed = append(windowed, order)
		}
		result[r.Key] = aggregate(windowed)
	}
	return result
}

// passesFilter applies the status filter, including the completed-or-absent
// leniency for legacy orders.
func passesFilter(order *store.Order, filter StatusFilter) bool {
	if filter == StatusAll {
		return true
	}
	return order.Status == string(StatusCompleted) || order.Status == ""
}

type customerKey struct {
	id   string
	name string
}

type customerAgg struct {
	key        customerKey
	orderCount int
	totalSpent float64
	items      map[string]int
}

type itemAgg struct {
	name     string
	quantity int
	revenue  float64
}

func aggregate(orders []*store.Order) RangeAnalytics {
	out := RangeAnalytics{
		TopItems:              []ItemStat{},
		TopItemsByRevenue:     []ItemStat{},
		SourceBreakdown:       map[string]SourceStat{},
		TopCustomersByOrders:  []CustomerStat{},
		TopCustomersByRevenue: []CustomerStat{},
	}

	// Aggregation order doubles as the tiebreaker: items and customers
	// are collected in first-seen order and ranked with a stable sort.
	itemIndex := make(map[string]*itemAgg)
	var items []*itemAgg
	customerIndex := make(map[customerKey]*customerAgg)
	var customers []*customerAgg

	for _, order := range orders {
		out.TotalSales += order.TotalPrice
		out.OrderCount++

		source := order.OrderFrom
		if source == "" {
			source = "unknown"
		}
		stat := out.SourceBreakdown[source]
		stat.Count++
		stat.Revenue += order.TotalPrice
		out.SourceBreakdown[source] = stat

		key := customerKey{id: order.CustomerID, name: order.CustomerName}
		customer, ok := customerIndex[key]
		if !ok {
			customer = &customerAgg{key: key, items: make(map[string]int)}
			customerIndex[key] = customer
			customers = append(customers, customer)
		}
		customer.orderCount++
		customer.totalSpent += order.TotalPrice

		for _, line := range order.Items {
			item, ok := itemIndex[line.Name]
			if !ok {
				item = &itemAgg{name: line.Name}
				itemIndex[line.Name] = item
				items = append(items, item)
			}
			item.quantity += line.Quantity
			item.revenue += line.Price * float64(line.Quantity)
			customer.items[line.Name] += line.Quantity
		}
	}

	if out.OrderCount > 0 {
		out.AverageOrderValue = out.TotalSales / float64(out.OrderCount)
	}

	out.TopItems = topItems(items, func(a, b *itemAgg) bool { return a.quantity > b.quantity })
	out.TopItemsByRevenue = topItems(items, func(a, b *itemAgg) bool { return a.revenue > b.revenue })

	byOrders := topCustomers(customers, func(a, b *customerAgg) bool { return a.orderCount > b.orderCount })
	out.TopCustomersByOrders = byOrders
	out.TopCustomersByRevenue = topCustomers(customers, func(a, b *customerAgg) bool { return a.totalSpent > b.totalSpent })
	if len(byOrders) > 0 {
		highest := byOrders[0]
		out.HighestOrderingCustomer = &highest
	}
	out.UniqueCustomers = len(customers)

	return out
}

func topItems(items []*itemAgg, less func(a, b *itemAgg) bool) []ItemStat {
	ranked := make([]*itemAgg, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	if len(ranked) > topSize {
		ranked = ranked[:topSize]
	}

	out := make([]ItemStat, 0, len(ranked))
	for _, item := range ranked {
		out = append(out, ItemStat{Name: item.name, Quantity: item.quantity, Revenue: item.revenue})
	}
	return out
}

func topCustomers(customers []*customerAgg, less func(a, b *customerAgg) bool) []CustomerStat {
	ranked := make([]*customerAgg, len(customers))
	copy(ranked, customers)
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	if len(ranked) > topSize {
		ranked = ranked[:topSize]
	}

	out := make([]CustomerStat, 0, len(ranked))
	for _, customer := range ranked {
		items := make(map[string]int, len(customer.items))
		for name, quantity := range customer.items {
			items[name] = quantity
		}
		out = append(out, CustomerStat{
			CustomerID:     customer.key.id,
			CustomerName:   customer.key.name,
			OrderCount:     customer.orderCount,
			TotalSpent:     customer.totalSpent,
			ItemsPurchased: items,
		})
	}
	return out
}
