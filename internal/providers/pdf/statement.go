package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// StatementData carries one customer's billing statement, already
// formatted: money fields are display strings, not numbers.
type StatementData struct {
	BusinessName    string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Period          string
	IssueDate       string

	Items []StatementItem

	PreviousCarryover string
	MonthTotal        string
	TotalAmount       string
	PaidAmount        string
	RemainingBalance  string
}

type StatementItem struct {
	Date        string
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.BusinessName, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Billing statement", props.Text{
			Size:  12,
			Align: align.Left,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New(data.CustomerName, props.Text{Style: fontstyle.Bold}),
			text.New(data.CustomerPhone, props.Text{Top: 5}),
			text.New(data.CustomerAddress, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Period: "+data.Period, props.Text{Align: align.Right}),
			text.New("Issued: "+data.IssueDate, props.Text{Top: 5, Align: align.Right}),
		),
	)

	// Table Header
	m.AddRow(10,
		text.NewCol(2, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(8,
			text.NewCol(2, item.Date, props.Text{Size: 9}),
			text.NewCol(4, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Month total", props.Text{Size: 9, Top: 4}),
		text.NewCol(2, data.MonthTotal, props.Text{Size: 9, Top: 4, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Previous balance", props.Text{Size: 9}),
		text.NewCol(2, data.PreviousCarryover, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Total", props.Text{Size: 9}),
		text.NewCol(2, data.TotalAmount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Paid", props.Text{Size: 9}),
		text.NewCol(2, data.PaidAmount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Balance due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.RemainingBalance, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
