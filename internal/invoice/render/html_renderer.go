// Package render turns grouped order data into printable HTML documents.
package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one order line inside a printable document.
type LineItem struct {
	Date        time.Time
	ServiceName string
	PartyName   string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// SubGroup is a nested block inside a section, e.g. one customer's lines
// inside a creator's section.
type SubGroup struct {
	Title      string
	OrderCount int
	Total      decimal.Decimal
	Items      []LineItem
}

// Section is a top-level grouping. Flat documents put items directly on
// the section; nested documents fill SubGroups instead.
type Section struct {
	Heading    string
	Subheading string
	OrderCount int
	Total      decimal.Decimal
	Items      []LineItem
	SubGroups  []SubGroup
}

// GroupedDocument is a printable invoice over grouped orders.
type GroupedDocument struct {
	Title       string
	PeriodLabel string
	GeneratedAt time.Time
	Sections    []Section
	OrderCount  int
	GrandTotal  decimal.Decimal
}

// ReportRow is one month of a customer's order report.
type ReportRow struct {
	Label      string
	OrderCount int
	Total      decimal.Decimal
}

// ReportDocument is the twelve-month order report for one customer.
type ReportDocument struct {
	Title        string
	CustomerName string
	GeneratedAt  time.Time
	Rows         []ReportRow
	OrderCount   int
	GrandTotal   decimal.Decimal
}

type Renderer interface {
	RenderGrouped(doc GroupedDocument) (string, error)
	RenderReport(doc ReportDocument) (string, error)
}

const documentCSS = `
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
      -webkit-font-smoothing: antialiased;
    }
    .document-card {
      background: #ffffff;
      max-width: 760px;
      margin: 0 auto;
      padding: 48px;
      box-shadow: 0 2px 5px rgba(0,0,0,0.04);
      border-radius: 4px;
    }
    .header {
      display: flex;
      justify-content: space-between;
      margin-bottom: 32px;
    }
    .header h1 { margin: 0; font-size: 22px; font-weight: 700; }
    .meta { text-align: right; color: #8792a2; font-size: 13px; }
    .section { margin-bottom: 28px; }
    .section-heading {
      font-size: 15px;
      font-weight: 700;
      border-bottom: 2px solid #e3e8ee;
      padding-bottom: 6px;
      margin-bottom: 10px;
    }
    .section-total { font-size: 14px; }
    .subgroup-title {
      font-size: 13px;
      font-weight: 600;
      color: #525f7a;
      margin: 12px 0 4px;
    }
    table { width: 100%; border-collapse: collapse; font-size: 13px; }
    th {
      text-align: left;
      text-transform: uppercase;
      font-size: 11px;
      color: #8792a2;
      letter-spacing: 0.3px;
      padding: 6px 4px;
      border-bottom: 1px solid #e3e8ee;
    }
    td { padding: 6px 4px; border-bottom: 1px solid #f0f3f7; }
    .num { text-align: right; }
    .subtotal td { font-weight: 600; border-bottom: none; }
    .grand-total {
      margin-top: 24px;
      text-align: right;
      font-size: 16px;
      font-weight: 700;
    }
    @media print {
      body { background: #ffffff; padding: 0; }
      .document-card { box-shadow: none; padding: 24px; }
    }
`

const lineItemTable = `
        <table>
          <thead>
            <tr><th>Date</th><th>Service</th><th>Party</th><th class="num">Qty</th><th class="num">Unit</th><th class="num">Total</th></tr>
          </thead>
          <tbody>
            {{range .Items}}
            <tr>
              <td>{{formatDate .Date}}</td>
              <td>{{.ServiceName}}</td>
              <td>{{.PartyName}}</td>
              <td class="num">{{.Quantity}}</td>
              <td class="num">{{formatMoney .UnitPrice}}</td>
              <td class="num">{{formatMoney .LineTotal}}</td>
            </tr>
            {{end}}
          </tbody>
        </table>
`

const groupedHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>` + documentCSS + `</style>
</head>
<body>
  <div class="document-card">
    <div class="header">
      <div><h1>{{.Title}}</h1></div>
      <div class="meta">
        {{if .PeriodLabel}}<div>{{.PeriodLabel}}</div>{{end}}
        <div>Generated {{formatDate .GeneratedAt}}</div>
      </div>
    </div>

    {{range .Sections}}
    <div class="section">
      <div class="section-heading">{{.Heading}}{{if .Subheading}} &middot; {{.Subheading}}{{end}}</div>

      {{if .SubGroups}}
        {{range .SubGroups}}
        <div class="subgroup-title">{{.Title}} &middot; {{.OrderCount}} orders &middot; {{formatMoney .Total}}</div>
        {{template "items" .}}
        {{end}}
      {{else}}
        {{template "items" .}}
      {{end}}

      <div class="grand-total section-total">Section total: {{formatMoney .Total}} ({{.OrderCount}} orders)</div>
    </div>
    {{end}}

    <div class="grand-total">Grand total: {{formatMoney .GrandTotal}} &middot; {{.OrderCount}} orders</div>
  </div>
</body>
</html>
`

const reportHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
  <style>` + documentCSS + `</style>
</head>
<body>
  <div class="document-card">
    <div class="header">
      <div><h1>{{.Title}}</h1></div>
      <div class="meta">
        <div>{{.CustomerName}}</div>
        <div>Generated {{formatDate .GeneratedAt}}</div>
      </div>
    </div>

    <table>
      <thead>
        <tr><th>Month</th><th class="num">Orders</th><th class="num">Total</th></tr>
      </thead>
      <tbody>
        {{range .Rows}}
        <tr>
          <td>{{.Label}}</td>
          <td class="num">{{.OrderCount}}</td>
          <td class="num">{{formatMoney .Total}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="grand-total">Total: {{formatMoney .GrandTotal}} &middot; {{.OrderCount}} orders</div>
  </div>
</body>
</html>
`

type HTMLRenderer struct {
	grouped *template.Template
	report  *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
	}
	grouped := template.Must(template.New("grouped").Funcs(funcs).Parse(groupedHTMLTemplate))
	template.Must(grouped.New("items").Parse(lineItemTable))
	return &HTMLRenderer{
		grouped: grouped,
		report:  template.Must(template.New("report").Funcs(funcs).Parse(reportHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderGrouped(doc GroupedDocument) (string, error) {
	var buf bytes.Buffer
	if err := r.grouped.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *HTMLRenderer) RenderReport(doc ReportDocument) (string, error) {
	var buf bytes.Buffer
	if err := r.report.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}
