package service

import (
	"context"
	"fmt"
	"io"
	"time"

	billingdomain "github.com/smallbiznis/opsdesk/internal/billing/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	customerdomain "github.com/smallbiznis/opsdesk/internal/customer/domain"
	"github.com/smallbiznis/opsdesk/internal/invoice/domain"
	"github.com/smallbiznis/opsdesk/internal/invoice/render"
	"github.com/smallbiznis/opsdesk/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/opsdesk/internal/order/domain"
	"github.com/smallbiznis/opsdesk/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	Renderer    render.Renderer
	Orders      orderdomain.Service
	Billing     billingdomain.Service
	Customers   customerdomain.Service
	PDFProvider pdf.Provider
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	clock     clock.Clock
	renderer  render.Renderer
	orders    orderdomain.Service
	billing   billingdomain.Service
	customers customerdomain.Service
	pdf       pdf.Provider
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("invoice.service"),
		clock:     p.Clock,
		renderer:  p.Renderer,
		orders:    p.Orders,
		billing:   p.Billing,
		customers: p.Customers,
		pdf:       p.PDFProvider,
		metrics:   p.Metrics,
	}
}

func (s *Service) CreatorInvoice(ctx context.Context, req domain.DocumentRequest) (string, error) {
	rows, err := s.fetchRows(ctx, req)
	if err != nil {
		return "", err
	}

	doc := render.GroupedDocument{
		Title:       "Invoice by worker",
		PeriodLabel: periodLabel(req),
		GeneratedAt: s.clock.Now(),
	}
	for _, group := range orderdomain.GroupByCreator(rows) {
		section := render.Section{
			Heading:    group.CreatorName,
			OrderCount: group.OrderCount,
			Total:      group.TotalAmount,
		}
		for _, sub := range orderdomain.GroupByCustomer(group.Orders) {
			section.SubGroups = append(section.SubGroups, render.SubGroup{
				Title:      sub.CustomerName,
				OrderCount: sub.OrderCount,
				Total:      sub.TotalAmount,
				Items:      lineItems(sub.Orders),
			})
		}
		doc.Sections = append(doc.Sections, section)
		doc.OrderCount += group.OrderCount
		doc.GrandTotal = doc.GrandTotal.Add(group.TotalAmount)
	}
	return s.renderGrouped(ctx, "creator", doc)
}

func (s *Service) CustomerInvoice(ctx context.Context, req domain.DocumentRequest) (string, error) {
	rows, err := s.fetchRows(ctx, req)
	if err != nil {
		return "", err
	}

	doc := render.GroupedDocument{
		Title:       "Invoice by customer",
		PeriodLabel: periodLabel(req),
		GeneratedAt: s.clock.Now(),
	}
	for _, group := range orderdomain.GroupByCustomer(rows) {
		section := render.Section{
			Heading:    group.CustomerName,
			OrderCount: group.OrderCount,
			Total:      group.TotalAmount,
		}
		for _, sub := range orderdomain.GroupByCreator(group.Orders) {
			section.SubGroups = append(section.SubGroups, render.SubGroup{
				Title:      sub.CreatorName,
				OrderCount: sub.OrderCount,
				Total:      sub.TotalAmount,
				Items:      lineItems(sub.Orders),
			})
		}
		doc.Sections = append(doc.Sections, section)
		doc.OrderCount += group.OrderCount
		doc.GrandTotal = doc.GrandTotal.Add(group.TotalAmount)
	}
	return s.renderGrouped(ctx, "customer", doc)
}

func (s *Service) CreatorCustomerInvoice(ctx context.Context, req domain.DocumentRequest) (string, error) {
	rows, err := s.fetchRows(ctx, req)
	if err != nil {
		return "", err
	}

	doc := render.GroupedDocument{
		Title:       "Invoice by worker and customer",
		PeriodLabel: periodLabel(req),
		GeneratedAt: s.clock.Now(),
	}
	for _, group := range orderdomain.GroupByCreatorCustomer(rows) {
		doc.Sections = append(doc.Sections, render.Section{
			Heading:    group.CreatorName,
			Subheading: group.CustomerName,
			OrderCount: group.OrderCount,
			Total:      group.TotalAmount,
			Items:      lineItems(group.Orders),
		})
		doc.OrderCount += group.OrderCount
		doc.GrandTotal = doc.GrandTotal.Add(group.TotalAmount)
	}
	return s.renderGrouped(ctx, "creator_customer", doc)
}

func (s *Service) MonthlyReport(ctx context.Context, customerID string) (string, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	totals, err := s.billing.CustomerMonthlyOrders(ctx, customerID)
	if err != nil {
		return "", err
	}

	doc := render.ReportDocument{
		Title:        "12-month order report",
		CustomerName: customer.Name,
		GeneratedAt:  s.clock.Now(),
	}
	for _, total := range totals {
		doc.Rows = append(doc.Rows, render.ReportRow{
			Label:      fmt.Sprintf("%s %d", time.Month(total.Month), total.Year),
			OrderCount: total.OrderCount,
			Total:      total.TotalAmount,
		})
		doc.OrderCount += total.OrderCount
		doc.GrandTotal = doc.GrandTotal.Add(total.TotalAmount)
	}

	html, err := s.renderer.RenderReport(doc)
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.RecordInvoiceRender(ctx, "monthly_report")
	}
	return html, nil
}

func (s *Service) CustomerStatementPDF(ctx context.Context, customerID string) ([]byte, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	currentCycles, err := s.billing.CurrentMonthBills(ctx)
	if err != nil {
		return nil, err
	}
	var cycle *billingdomain.CycleRow
	for i := range currentCycles {
		if currentCycles[i].CustomerID == customer.ID {
			cycle = &currentCycles[i]
			break
		}
	}
	if cycle == nil {
		return nil, domain.ErrNoCurrentCycle
	}

	now := s.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)
	rows, err := s.orders.List(ctx, orderdomain.ListOrdersRequest{
		CustomerID: customerID,
		From:       &monthStart,
		To:         &monthEnd,
	})
	if err != nil {
		return nil, err
	}

	data := pdf.StatementData{
		BusinessName:      "OpsDesk",
		CustomerName:      customer.Name,
		CustomerPhone:     customer.Phone,
		Period:            monthStart.Format("January 2006"),
		IssueDate:         now.Format("2006-01-02"),
		PreviousCarryover: cycle.PreviousCarryover.StringFixed(2),
		MonthTotal:        cycle.TotalAmount.Sub(cycle.PreviousCarryover).StringFixed(2),
		TotalAmount:       cycle.TotalAmount.StringFixed(2),
		PaidAmount:        cycle.PaidAmount.StringFixed(2),
		RemainingBalance:  cycle.RemainingBalance.StringFixed(2),
	}
	if customer.Address != nil {
		data.CustomerAddress = *customer.Address
	}
	for _, row := range rows {
		description := row.ServiceName
		if row.PartyName != nil {
			description = fmt.Sprintf("%s (%s)", row.ServiceName, *row.PartyName)
		}
		data.Items = append(data.Items, pdf.StatementItem{
			Date:        row.CreatedAt.UTC().Format("2006-01-02"),
			Description: description,
			Qty:         row.Quantity,
			UnitPrice:   row.UnitPrice.StringFixed(2),
			Amount:      row.LineTotal.StringFixed(2),
		})
	}

	reader, err := s.pdf.GenerateStatement(ctx, data)
	if err != nil {
		return nil, err
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceRender(ctx, "statement_pdf")
	}
	return payload, nil
}

func (s *Service) fetchRows(ctx context.Context, req domain.DocumentRequest) ([]orderdomain.Row, error) {
	return s.orders.List(ctx, orderdomain.ListOrdersRequest{
		CustomerID: req.CustomerID,
		CreatedBy:  req.CreatedBy,
		From:       req.From,
		To:         req.To,
	})
}

func (s *Service) renderGrouped(ctx context.Context, variant string, doc render.GroupedDocument) (string, error) {
	html, err := s.renderer.RenderGrouped(doc)
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.RecordInvoiceRender(ctx, variant)
	}
	return html, nil
}

func lineItems(rows []orderdomain.Row) []render.LineItem {
	items := make([]render.LineItem, 0, len(rows))
	for _, row := range rows {
		item := render.LineItem{
			Date:        row.CreatedAt,
			ServiceName: row.ServiceName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			LineTotal:   row.LineTotal,
		}
		if row.PartyName != nil {
			item.PartyName = *row.PartyName
		}
		items = append(items, item)
	}
	return items
}

func periodLabel(req domain.DocumentRequest) string {
	switch {
	case req.From != nil && req.To != nil:
		return fmt.Sprintf("%s to %s", req.From.Format("2006-01-02"), req.To.Format("2006-01-02"))
	case req.From != nil:
		return "from " + req.From.Format("2006-01-02")
	case req.To != nil:
		return "until " + req.To.Format("2006-01-02")
	default:
		return ""
	}
}
