// Package analytics computes descriptive aggregates over accepted sales
// transactions: total and per-region revenue, product rankings, customer
// spend, and daily trends.
//
// Every function is a pure read of the transaction sequence and consumes
// only the Transaction contract - no dependency on raw or parsed
// intermediate forms. Grouping results carry deterministic ordering so
// reports are stable.
package analytics

import (
	"sort"

	"golang-sales-analytics-service/internal/models"

	"github.com/shopspring/decimal"
)

// RegionStats summarizes revenue for one region
type RegionStats struct {
	Region           string          `json:"region"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       float64         `json:"percentage"`
}

// ProductStats summarizes quantity and revenue for one product
type ProductStats struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// CustomerStats summarizes purchasing behavior for one customer
type CustomerStats struct {
	CustomerID     string          `json:"customer_id"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	PurchaseCount  int             `json:"purchase_count"`
	AvgOrderValue  decimal.Decimal `json:"avg_order_value"`
	ProductsBought []string        `json:"products_bought"`
}

// DayStats summarizes one calendar day of sales
type DayStats struct {
	Date             string          `json:"date"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int             `json:"transaction_count"`
	UniqueCustomers  int             `json:"unique_customers"`
}

// TotalRevenue returns the sum of line totals over all transactions
func TotalRevenue(transactions []*models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.LineTotal())
	}
	return total
}

// RegionSales aggregates revenue by region, sorted by total sales
// descending. Percentage is each region's share of total revenue, rounded to
// two decimal places.
func RegionSales(transactions []*models.Transaction) []RegionStats {
	totalRevenue := TotalRevenue(transactions)

	byRegion := make(map[string]*RegionStats)
	for _, tx := range transactions {
		stats, ok := byRegion[tx.Region]
		if !ok {
			stats = &RegionStats{Region: tx.Region, TotalSales: decimal.Zero}
			byRegion[tx.Region] = stats
		}
		stats.TotalSales = stats.TotalSales.Add(tx.LineTotal())
		stats.TransactionCount++
	}

	result := make([]RegionStats, 0, len(byRegion))
	for _, stats := range byRegion {
		if totalRevenue.IsPositive() {
			pct := stats.TotalSales.Div(totalRevenue).Mul(decimal.NewFromInt(100))
			stats.Percentage, _ = pct.Round(2).Float64()
		}
		result = append(result, *stats)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].TotalSales.Equal(result[j].TotalSales) {
			return result[i].TotalSales.GreaterThan(result[j].TotalSales)
		}
		return result[i].Region < result[j].Region
	})

	return result
}

// TopProducts returns the top n products by summed quantity. Ties break by
// higher summed revenue, then by ProductID ascending.
func TopProducts(transactions []*models.Transaction, n int) []ProductStats {
	products := productTotals(transactions)

	sort.Slice(products, func(i, j int) bool {
		if products[i].Quantity != products[j].Quantity {
			return products[i].Quantity > products[j].Quantity
		}
		if !products[i].Revenue.Equal(products[j].Revenue) {
			return products[i].Revenue.GreaterThan(products[j].Revenue)
		}
		return products[i].ProductID < products[j].ProductID
	})

	if n >= 0 && n < len(products) {
		products = products[:n]
	}
	return products
}

// LowPerformers returns products whose summed quantity is below threshold,
// ascending by quantity.
func LowPerformers(transactions []*models.Transaction, threshold int) []ProductStats {
	products := productTotals(transactions)

	low := make([]ProductStats, 0)
	for _, p := range products {
		if p.Quantity < threshold {
			low = append(low, p)
		}
	}

	sort.Slice(low, func(i, j int) bool {
		if low[i].Quantity != low[j].Quantity {
			return low[i].Quantity < low[j].Quantity
		}
		return low[i].ProductID < low[j].ProductID
	})

	return low
}

// productTotals groups transactions by product ID, keeping the first seen
// product name for display.
func productTotals(transactions []*models.Transaction) []ProductStats {
	byProduct := make(map[string]*ProductStats)
	for _, tx := range transactions {
		stats, ok := byProduct[tx.ProductID]
		if !ok {
			stats = &ProductStats{
				ProductID:   tx.ProductID,
				ProductName: tx.ProductName,
				Revenue:     decimal.Zero,
			}
			byProduct[tx.ProductID] = stats
		}
		stats.Quantity += tx.Quantity
		stats.Revenue = stats.Revenue.Add(tx.LineTotal())
	}

	result := make([]ProductStats, 0, len(byProduct))
	for _, stats := range byProduct {
		result = append(result, *stats)
	}
	return result
}

// CustomerAnalysis aggregates spend per customer, sorted by total spent
// descending. AvgOrderValue is rounded to two decimal places; ProductsBought
// is the sorted distinct product name list.
func CustomerAnalysis(transactions []*models.Transaction) []CustomerStats {
	type customerAcc struct {
		stats    CustomerStats
		products map[string]bool
	}

	byCustomer := make(map[string]*customerAcc)
	for _, tx := range transactions {
		acc, ok := byCustomer[tx.CustomerID]
		if !ok {
			acc = &customerAcc{
				stats:    CustomerStats{CustomerID: tx.CustomerID, TotalSpent: decimal.Zero},
				products: make(map[string]bool),
			}
			byCustomer[tx.CustomerID] = acc
		}
		acc.stats.TotalSpent = acc.stats.TotalSpent.Add(tx.LineTotal())
		acc.stats.PurchaseCount++
		acc.products[tx.ProductName] = true
	}

	result := make([]CustomerStats, 0, len(byCustomer))
	for _, acc := range byCustomer {
		if acc.stats.PurchaseCount > 0 {
			avg := acc.stats.TotalSpent.Div(decimal.NewFromInt(int64(acc.stats.PurchaseCount)))
			acc.stats.AvgOrderValue = avg.Round(2)
		}

		names := make([]string, 0, len(acc.products))
		for name := range acc.products {
			names = append(names, name)
		}
		sort.Strings(names)
		acc.stats.ProductsBought = names

		result = append(result, acc.stats)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].TotalSpent.Equal(result[j].TotalSpent) {
			return result[i].TotalSpent.GreaterThan(result[j].TotalSpent)
		}
		return result[i].CustomerID < result[j].CustomerID
	})

	return result
}

// TopCustomers returns the top n customers by total spend
func TopCustomers(transactions []*models.Transaction, n int) []CustomerStats {
	customers := CustomerAnalysis(transactions)
	if n >= 0 && n < len(customers) {
		customers = customers[:n]
	}
	return customers
}

// DailyTrend aggregates revenue, transaction count and unique customer count
// per day, sorted by date ascending. Dates are the YYYY-MM-DD strings from
// the transactions, which order chronologically as strings.
func DailyTrend(transactions []*models.Transaction) []DayStats {
	type dayAcc struct {
		stats     DayStats
		customers map[string]bool
	}

	byDay := make(map[string]*dayAcc)
	for _, tx := range transactions {
		acc, ok := byDay[tx.Date]
		if !ok {
			acc = &dayAcc{
				stats:     DayStats{Date: tx.Date, Revenue: decimal.Zero},
				customers: make(map[string]bool),
			}
			byDay[tx.Date] = acc
		}
		acc.stats.Revenue = acc.stats.Revenue.Add(tx.LineTotal())
		acc.stats.TransactionCount++
		acc.customers[tx.CustomerID] = true
	}

	result := make([]DayStats, 0, len(byDay))
	for _, acc := range byDay {
		acc.stats.UniqueCustomers = len(acc.customers)
		result = append(result, acc.stats)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result
}

// PeakDay returns the highest-revenue day. The second return is false when
// there are no transactions.
func PeakDay(transactions []*models.Transaction) (DayStats, bool) {
	trend := DailyTrend(transactions)
	if len(trend) == 0 {
		return DayStats{}, false
	}

	peak := trend[0]
	for _, day := range trend[1:] {
		if day.Revenue.GreaterThan(peak.Revenue) {
			peak = day
		}
	}
	return peak, true
}
