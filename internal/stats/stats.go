// Package stats derives summary metrics from a snapshot of the sale history.
package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/game-store/internal/model"
)

type productAcc struct {
	id       uuid.UUID
	quantity int
	revenue  decimal.Decimal
}

// Summarize folds sales into totals and a per product ranking. Products are
// only used to resolve names; sales of deleted products keep an empty name.
// It never fails: an empty history yields zero totals and a nil top product.
func Summarize(sales []model.Sale, products []model.Product) model.Stats {
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	revenue := decimal.Zero
	units := 0
	byProduct := make(map[uuid.UUID]*productAcc)
	for _, s := range sales {
		total := decimal.NewFromFloat(s.Total)
		revenue = revenue.Add(total)
		units += s.Quantity

		acc, ok := byProduct[s.ProductID]
		if !ok {
			acc = &productAcc{id: s.ProductID, revenue: decimal.Zero}
			byProduct[s.ProductID] = acc
		}
		acc.quantity += s.Quantity
		acc.revenue = acc.revenue.Add(total)
	}

	ranking := make([]model.ProductSales, 0, len(byProduct))
	for _, acc := range byProduct {
		ranking = append(ranking, model.ProductSales{
			ProductID:   acc.id,
			ProductName: names[acc.id],
			Quantity:    acc.quantity,
			Revenue:     acc.revenue.InexactFloat64(),
		})
	}
	slices.SortFunc(ranking, compareProductSales)

	average := decimal.Zero
	if len(sales) > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(len(sales))))
	}

	st := model.Stats{
		TotalRevenue:     revenue.InexactFloat64(),
		TotalUnits:       units,
		SaleCount:        len(sales),
		AverageSaleValue: average.InexactFloat64(),
		SalesByProduct:   ranking,
	}
	if len(ranking) > 0 {
		top := ranking[0]
		st.TopProduct = &top
	}

	return st
}

// compareProductSales orders by quantity desc, revenue desc, name asc, id asc.
func compareProductSales(a, b model.ProductSales) int {
	if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ProductName, b.ProductName); c != 0 {
		return c
	}
	return cmp.Compare(a.ProductID.String(), b.ProductID.String())
}

// CountOnDay returns the number of sales whose timestamp falls on the same
// calendar day as day, in day's location.
func CountOnDay(sales []model.Sale, day time.Time) int {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	count := 0
	for _, s := range sales {
		if !s.Timestamp.Before(start) && s.Timestamp.Before(end) {
			count++
		}
	}
	return count
}
