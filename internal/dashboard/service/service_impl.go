package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/internal/dashboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultChartDays = 30

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

type statLine struct {
	UnitPrice  decimal.Decimal
	Quantity   int
	CustomerID snowflake.ID
	CreatedAt  time.Time
}

func (s *Service) orderLines(ctx context.Context, since *time.Time) ([]statLine, error) {
	query := s.db.WithContext(ctx).
		Table("orders AS o").
		Select("COALESCE(csp.price, sv.price) AS unit_price, o.quantity, o.customer_id, o.created_at").
		Joins("JOIN services sv ON sv.id = o.service_id").
		Joins("LEFT JOIN customer_service_prices csp ON csp.customer_id = o.customer_id AND csp.service_id = o.service_id")
	if since != nil {
		query = query.Where("o.created_at >= ?", since)
	}

	var lines []statLine
	if err := query.Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	lines, err := s.orderLines(ctx, nil)
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{
		Revenue:           decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	customers := make(map[snowflake.ID]struct{})
	for _, line := range lines {
		stats.Revenue = stats.Revenue.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		stats.OrderCount++
		customers[line.CustomerID] = struct{}{}
	}
	stats.DistinctCustomers = len(customers)
	if stats.OrderCount > 0 {
		stats.AverageOrderValue = stats.Revenue.
			Div(decimal.NewFromInt(int64(stats.OrderCount))).Round(2)
	}
	return stats, nil
}

func (s *Service) ChartData(ctx context.Context, days int) ([]domain.ChartPoint, error) {
	if days <= 0 {
		days = defaultChartDays
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowStart := today.AddDate(0, 0, -(days - 1))

	lines, err := s.orderLines(ctx, &windowStart)
	if err != nil {
		return nil, err
	}

	points := make([]domain.ChartPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		points[i] = domain.ChartPoint{Date: date, Revenue: decimal.Zero}
		index[date] = i
	}

	for _, line := range lines {
		date := line.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			continue
		}
		points[i].Revenue = points[i].Revenue.
			Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		points[i].OrderCount++
	}
	return points, nil
}
