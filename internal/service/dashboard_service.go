package service

import (
	"context"
	"sort"
	"time"

	"ledger-service/internal/sheets"
	"ledger-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reporting years covered by the category breakdown matrix.
var reportingYears = []int{2024, 2025}

// DashboardService derives the KPI set and chart series from the raw
// detail and reference ranges. It never recomputes order balances; the
// receivable and payable figures come straight from the aggregate
// columns the external job maintains.
type DashboardService struct {
	store  sheets.Store
	logger *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store sheets.Store) *DashboardService {
	return &DashboardService{
		store:  store,
		logger: util.NamedLogger("dashboard"),
	}
}

// SeriesPoint is a single labelled value in a chart series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CategoryYearRow is one row of the category breakdown matrix.
type CategoryYearRow struct {
	Category string          `json:"category"`
	ByYear   map[int]float64 `json:"by_year"`
}

// Dashboard is the full analytics payload.
type Dashboard struct {
	TotalSales      float64 `json:"total_sales"`
	TotalPurchases  float64 `json:"total_purchases"`
	NetProfit       float64 `json:"net_profit"`
	TotalReceivable float64 `json:"total_receivable"`
	TotalPayable    float64 `json:"total_payable"`
	TopLocation     string  `json:"top_location"`
	TopItemType     string  `json:"top_item_type"`
	TotalSalesText  string  `json:"total_sales_text"`
	NetProfitText   string  `json:"net_profit_text"`
	ReceivableText  string  `json:"receivable_text"`
	PayableText     string  `json:"payable_text"`
	PurchasesText   string  `json:"purchases_text"`

	MonthlySales      []SeriesPoint     `json:"monthly_sales"`
	SalesByCategory   []SeriesPoint     `json:"sales_by_category"`
	TopCustomers      []SeriesPoint     `json:"top_customers"`
	PurchaseByCity    []SeriesPoint     `json:"purchase_by_location"`
	PurchaseCatByYear []CategoryYearRow `json:"purchase_category_by_year"`
	ReportingYears    []int             `json:"reporting_years"`
}

// Build reads the four source ranges in parallel and assembles the
// dashboard. Any failed read fails the whole build.
func (s *DashboardService) Build(ctx context.Context) (*Dashboard, error) {
	start := time.Now()

	var salesDetails, purchaseDetails, customers, suppliers []sheets.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		salesDetails, err = s.store.ReadRange(gctx, sheets.RangeSalesDetails)
		return err
	})
	g.Go(func() error {
		var err error
		purchaseDetails, err = s.store.ReadRange(gctx, sheets.RangePurchaseDetails)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.store.ReadRange(gctx, sheets.RangeCustomers)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = s.store.ReadRange(gctx, sheets.RangeSuppliers)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard source read failed", zap.Error(err))
		return nil, err
	}

	d := &Dashboard{ReportingYears: reportingYears}

	for _, r := range salesDetails {
		d.TotalSales += r.Float("Total Sales Price")
	}
	for _, r := range purchaseDetails {
		d.TotalPurchases += r.Float("Total Purchase Price")
	}
	d.NetProfit = d.TotalSales - d.TotalPurchases
	for _, r := range customers {
		d.TotalReceivable += r.Float("Balance Receivable")
	}
	for _, r := range suppliers {
		d.TotalPayable += r.Float("Balance Payable")
	}

	byCity := sumBy(salesDetails, "City", "Total Sales Price")
	d.TopLocation = topLabel(byCity)
	byType := sumBy(salesDetails, "Item Type", "Total Sales Price")
	d.TopItemType = topLabel(byType)

	// "Category" in the chart series means the Item Type field, not the
	// Item Category column.
	d.MonthlySales = monthlySeries(salesDetails, "SO Date", "Total Sales Price")
	d.SalesByCategory = sumBy(salesDetails, "Item Type", "Total Sales Price")
	d.TopCustomers = topN(sumBy(salesDetails, "Customer Name", "Total Sales Price"), 10)
	d.PurchaseByCity = sumBy(purchaseDetails, "City", "Total Purchase Price")
	d.PurchaseCatByYear = categoryByYear(purchaseDetails, "Date", "Item Type", "Total Purchase Price")

	printer := message.NewPrinter(language.English)
	d.TotalSalesText = printer.Sprintf("$%.0f", d.TotalSales)
	d.PurchasesText = printer.Sprintf("$%.0f", d.TotalPurchases)
	d.NetProfitText = printer.Sprintf("$%.0f", d.NetProfit)
	d.ReceivableText = printer.Sprintf("$%.0f", d.TotalReceivable)
	d.PayableText = printer.Sprintf("$%.0f", d.TotalPayable)

	util.DashboardBuildLatency.Observe(time.Since(start).Seconds())
	return d, nil
}

// sumBy groups records on labelField and sums valueField. Labels keep
// first-encounter order so equal totals stay stable after sorting.
// Blank labels fall back to "Unknown".
func sumBy(records []sheets.Record, labelField, valueField string) []SeriesPoint {
	totals := make(map[string]float64)
	var order []string
	for _, r := range records {
		label := r.Get(labelField)
		if label == "" {
			label = "Unknown"
		}
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += r.Float(valueField)
	}

	points := make([]SeriesPoint, 0, len(order))
	for _, label := range order {
		points = append(points, SeriesPoint{Label: label, Value: totals[label]})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

// topLabel picks the largest bucket. No rows at all is "N/A"; rows with
// a blank grouping field are already bucketed as "Unknown" by sumBy.
func topLabel(points []SeriesPoint) string {
	if len(points) == 0 {
		return "N/A"
	}
	return points[0].Label
}

func topN(points []SeriesPoint, n int) []SeriesPoint {
	if len(points) > n {
		return points[:n]
	}
	return points
}

// monthlySeries buckets values by the first day of their month,
// chronologically. Rows with unparseable dates are skipped.
func monthlySeries(records []sheets.Record, dateField, valueField string) []SeriesPoint {
	totals := make(map[string]float64)
	for _, r := range records {
		t, err := time.Parse(wireDateLayout, r.Get(dateField))
		if err != nil {
			continue
		}
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format(wireDateLayout)
		totals[month] += r.Float(valueField)
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]SeriesPoint, 0, len(months))
	for _, m := range months {
		points = append(points, SeriesPoint{Label: m, Value: totals[m]})
	}
	return points
}

// categoryByYear builds the category x year matrix for the fixed
// reporting years. Every category seen in the input gets a row in
// first-encounter order; only values dated inside a reporting year
// contribute, so an out-of-year category shows all zeroes.
func categoryByYear(records []sheets.Record, dateField, labelField, valueField string) []CategoryYearRow {
	years := make(map[int]bool, len(reportingYears))
	for _, y := range reportingYears {
		years[y] = true
	}

	rows := make(map[string]map[int]float64)
	var order []string
	for _, r := range records {
		label := r.Get(labelField)
		if label == "" {
			label = "Unknown"
		}
		if _, seen := rows[label]; !seen {
			order = append(order, label)
			rows[label] = make(map[int]float64, len(reportingYears))
			for _, y := range reportingYears {
				rows[label][y] = 0
			}
		}

		t, err := time.Parse(wireDateLayout, r.Get(dateField))
		if err != nil || !years[t.Year()] {
			continue
		}
		rows[label][t.Year()] += r.Float(valueField)
	}

	out := make([]CategoryYearRow, 0, len(order))
	for _, label := range order {
		out = append(out, CategoryYearRow{Category: label, ByYear: rows[label]})
	}
	return out
}
