package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/opsdesk/internal/billing/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/internal/config"
	customerdomain "github.com/smallbiznis/opsdesk/internal/customer/domain"
	"github.com/smallbiznis/opsdesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// generateConcurrency bounds how many customers are billed at once.
const generateConcurrency = 8

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	BillingCfg *config.BillingConfigHolder
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	billingCfg *config.BillingConfigHolder
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		billingCfg: p.BillingCfg,
		metrics:    p.Metrics,
	}
}

func (s *Service) GenerateMonthlyBills(ctx context.Context, month, year int) (domain.GenerateResult, error) {
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		return domain.GenerateResult{}, domain.ErrInvalidPeriod
	}

	var customerIDs []snowflake.ID
	if err := s.db.WithContext(ctx).Model(&customerdomain.Customer{}).
		Order("id ASC").Pluck("id", &customerIDs).Error; err != nil {
		return domain.GenerateResult{}, err
	}

	var upserted atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(generateConcurrency)
	for _, customerID := range customerIDs {
		customerID := customerID
		group.Go(func() error {
			if err := s.generateForCustomer(groupCtx, customerID, month, year); err != nil {
				return fmt.Errorf("generate cycle for customer %s: %w", customerID, err)
			}
			upserted.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return domain.GenerateResult{}, err
	}

	count := int(upserted.Load())
	if s.metrics != nil {
		s.metrics.RecordBillsGenerated(ctx, int64(count))
	}
	s.log.Info("monthly bills generated",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("cycles", count),
	)
	return domain.GenerateResult{Month: month, Year: year, CyclesUpserted: count}, nil
}

// generateForCustomer computes and upserts one customer's cycle inside its
// own transaction, so a failing customer never leaves partial writes.
func (s *Service) generateForCustomer(ctx context.Context, customerID snowflake.ID, month, year int) error {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		monthTotal, err := sumOrderTotals(tx, customerID, start, end)
		if err != nil {
			return err
		}

		carryover, err := previousRemaining(tx, customerID, month, year)
		if err != nil {
			return err
		}

		total := monthTotal.Add(carryover)

		var existing domain.BillingCycle
		err = tx.Where("customer_id = ? AND billing_month = ? AND billing_year = ?",
			customerID, month, year).First(&existing).Error
		switch {
		case err == nil:
			remaining := maxZero(total.Sub(existing.PaidAmount))
			return tx.Model(&domain.BillingCycle{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{
					"total_amount":       total,
					"previous_carryover": carryover,
					"remaining_balance":  remaining,
					"is_closed":          !remaining.IsPositive(),
					"updated_at":         s.clock.Now(),
				}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := s.clock.Now()
			cycle := domain.BillingCycle{
				ID:                s.genID.Generate(),
				CustomerID:        customerID,
				BillingMonth:      month,
				BillingYear:       year,
				TotalAmount:       total,
				PreviousCarryover: carryover,
				PaidAmount:        decimal.Zero,
				RemainingBalance:  maxZero(total),
				IsClosed:          !total.IsPositive(),
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			return tx.Create(&cycle).Error
		default:
			return err
		}
	})
}

// orderLine is the minimal slice of an order needed for a total: effective
// unit price plus quantity. Summing happens in Go to keep decimal
// arithmetic exact across database engines.
type orderLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

func sumOrderTotals(tx *gorm.DB, customerID snowflake.ID, start, end time.Time) (decimal.Decimal, error) {
	var lines []orderLine
	err := tx.Table("orders AS o").
		Select("COALESCE(csp.price, sv.price) AS unit_price, o.quantity").
		Joins("JOIN services sv ON sv.id = o.service_id").
		Joins("LEFT JOIN customer_service_prices csp ON csp.customer_id = o.customer_id AND csp.service_id = o.service_id").
		Where("o.customer_id = ? AND o.created_at >= ? AND o.created_at < ?", customerID, start, end).
		Scan(&lines).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total, nil
}

func previousRemaining(tx *gorm.DB, customerID snowflake.ID, month, year int) (decimal.Decimal, error) {
	prevMonth, prevYear := month-1, year
	if prevMonth < 1 {
		prevMonth, prevYear = 12, year-1
	}

	var prev domain.BillingCycle
	err := tx.Where("customer_id = ? AND billing_month = ? AND billing_year = ?",
		customerID, prevMonth, prevYear).First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return prev.RemainingBalance, nil
}

func (s *Service) RecordPayment(ctx context.Context, req domain.RecordPaymentRequest) (domain.Payment, error) {
	cycleID, err := parseID(req.BillingCycleID)
	if err != nil {
		return domain.Payment{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = "cash"
	}
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.clock.Now()
	}

	var payment domain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cycle domain.BillingCycle
		if err := tx.Where("id = ?", cycleID).First(&cycle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCycleNotFound
			}
			return err
		}
		if cycle.IsClosed {
			return domain.ErrCycleClosed
		}
		if req.Amount.GreaterThan(cycle.RemainingBalance) {
			return domain.ErrAmountExceedsBalance
		}

		var notes *string
		if trimmed := strings.TrimSpace(req.Notes); trimmed != "" {
			notes = &trimmed
		}
		payment = domain.Payment{
			ID:             s.genID.Generate(),
			BillingCycleID: cycle.ID,
			Amount:         req.Amount.Round(2),
			PaymentDate:    paymentDate.UTC(),
			PaymentMethod:  method,
			Notes:          notes,
			CreatedBy:      req.CreatedBy,
			CreatedAt:      s.clock.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		paid := cycle.PaidAmount.Add(payment.Amount)
		remaining := maxZero(cycle.TotalAmount.Sub(paid))
		return tx.Model(&domain.BillingCycle{}).
			Where("id = ?", cycle.ID).
			Updates(map[string]any{
				"paid_amount":       paid,
				"remaining_balance": remaining,
				"is_closed":         !remaining.IsPositive(),
				"updated_at":        s.clock.Now(),
			}).Error
	})
	if err != nil {
		return domain.Payment{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, payment.PaymentMethod)
	}
	s.log.Info("payment recorded",
		zap.String("billing_cycle_id", payment.BillingCycleID.String()),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

// summaryScan pairs a cycle with its customer's optional due day.
type summaryScan struct {
	domain.BillingCycle
	PaymentDueDay *int
}

func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	var scans []summaryScan
	err := s.db.WithContext(ctx).
		Table("billing_cycles AS bc").
		Select("bc.*, c.payment_due_day").
		Joins("JOIN customers c ON c.id = bc.customer_id").
		Scan(&scans).Error
	if err != nil {
		return domain.Summary{}, err
	}

	cfg := s.billingCfg.Get()
	now := s.clock.Now()

	summary := domain.Summary{
		TotalBilled:      decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	summary.Aging = make([]domain.AgingTotal, len(cfg.AgingBuckets))
	for i, bucket := range cfg.AgingBuckets {
		summary.Aging[i] = domain.AgingTotal{Label: bucket.Label, Outstanding: decimal.Zero}
	}

	for _, scan := range scans {
		summary.TotalBilled = summary.TotalBilled.Add(scan.TotalAmount)
		summary.TotalPaid = summary.TotalPaid.Add(scan.PaidAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(scan.RemainingBalance)

		if !scan.RemainingBalance.IsPositive() {
			continue
		}
		summary.OpenCycles++
		if isOverdue(scan, now, cfg.OverdueGraceDays) {
			summary.OverdueCycles++
		}

		age := int(now.Sub(scan.CreatedAt).Hours() / 24)
		for i, bucket := range cfg.AgingBuckets {
			if age < bucket.MinDays {
				continue
			}
			if bucket.MaxDays != nil && age > *bucket.MaxDays {
				continue
			}
			summary.Aging[i].Cycles++
			summary.Aging[i].Outstanding = summary.Aging[i].Outstanding.Add(scan.RemainingBalance)
			break
		}
	}
	return summary, nil
}

// isOverdue applies the due-day policy: when the customer has a payment
// due day, the cycle is overdue once that day in the cycle's own month has
// passed; otherwise an unpaid cycle goes overdue after the grace window.
func isOverdue(scan summaryScan, now time.Time, graceDays int) bool {
	if scan.PaymentDueDay != nil {
		due := dueDate(scan.BillingYear, scan.BillingMonth, *scan.PaymentDueDay)
		return now.After(due)
	}
	return now.Sub(scan.CreatedAt) > time.Duration(graceDays)*24*time.Hour
}

// dueDate clamps the configured day to the cycle month's last day, so a
// due day of 31 still works in February.
func dueDate(year, month, day int) time.Time {
	lastDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.UTC)
}

func (s *Service) CurrentMonthBills(ctx context.Context) ([]domain.CycleRow, error) {
	now := s.clock.Now()

	var rows []domain.CycleRow
	err := s.db.WithContext(ctx).
		Table("billing_cycles AS bc").
		Select("bc.*, c.name AS customer_name, c.phone AS customer_phone").
		Joins("JOIN customers c ON c.id = bc.customer_id").
		Where("bc.billing_month = ? AND bc.billing_year = ?", int(now.Month()), now.Year()).
		Order("c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) ListCycles(ctx context.Context) ([]domain.CycleRow, error) {
	var rows []domain.CycleRow
	err := s.db.WithContext(ctx).
		Table("billing_cycles AS bc").
		Select("bc.*, c.name AS customer_name, c.phone AS customer_phone").
		Joins("JOIN customers c ON c.id = bc.customer_id").
		Order("bc.billing_year DESC, bc.billing_month DESC, c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) ListPayments(ctx context.Context, billingCycleID string) ([]domain.Payment, error) {
	cycleID, err := parseID(billingCycleID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.BillingCycle{}).
		Where("id = ?", cycleID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrCycleNotFound
	}

	var payments []domain.Payment
	err = s.db.WithContext(ctx).
		Where("billing_cycle_id = ?", cycleID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Service) CustomerMonthlyOrders(ctx context.Context, customerID string) ([]domain.MonthlyOrderTotal, error) {
	id, err := parseID(customerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	type monthLine struct {
		UnitPrice decimal.Decimal
		Quantity  int
		CreatedAt time.Time
	}
	var lines []monthLine
	err = s.db.WithContext(ctx).
		Table("orders AS o").
		Select("COALESCE(csp.price, sv.price) AS unit_price, o.quantity, o.created_at").
		Joins("JOIN services sv ON sv.id = o.service_id").
		Joins("LEFT JOIN customer_service_prices csp ON csp.customer_id = o.customer_id AND csp.service_id = o.service_id").
		Where("o.customer_id = ? AND o.created_at >= ?", id, windowStart).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}

	totals := make([]domain.MonthlyOrderTotal, 12)
	index := make(map[[2]int]int, 12)
	cursor := windowStart
	for i := 0; i < 12; i++ {
		totals[i] = domain.MonthlyOrderTotal{
			Year:        cursor.Year(),
			Month:       int(cursor.Month()),
			TotalAmount: decimal.Zero,
		}
		index[[2]int{cursor.Year(), int(cursor.Month())}] = i
		cursor = cursor.AddDate(0, 1, 0)
	}

	for _, line := range lines {
		created := line.CreatedAt.UTC()
		i, ok := index[[2]int{created.Year(), int(created.Month())}]
		if !ok {
			continue
		}
		totals[i].OrderCount++
		totals[i].TotalAmount = totals[i].TotalAmount.
			Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return totals, nil
}

func maxZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
