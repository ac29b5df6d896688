package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/opsdesk/internal/clock"
	customerdomain "github.com/smallbiznis/opsdesk/internal/customer/domain"
	"github.com/smallbiznis/opsdesk/internal/observability/metrics"
	"github.com/smallbiznis/opsdesk/internal/order/domain"
	"github.com/smallbiznis/opsdesk/pkg/db/option"
	"github.com/smallbiznis/opsdesk/pkg/db/pagination"
	"github.com/smallbiznis/opsdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *metrics.Metrics
	orders  repository.Repository[domain.Order]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: p.Metrics,
		orders:  repository.ProvideStore[domain.Order](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	serviceID, err := parseID(req.ServiceID)
	if err != nil {
		return domain.Order{}, err
	}
	if req.Quantity <= 0 {
		return domain.Order{}, domain.ErrInvalidQuantity
	}

	var customerCount int64
	if err := s.db.WithContext(ctx).Model(&customerdomain.Customer{}).
		Where("id = ?", customerID).Count(&customerCount).Error; err != nil {
		return domain.Order{}, err
	}
	if customerCount == 0 {
		return domain.Order{}, domain.ErrCustomerNotFound
	}

	var serviceCount int64
	if err := s.db.WithContext(ctx).Table("services").
		Where("id = ?", serviceID).Count(&serviceCount).Error; err != nil {
		return domain.Order{}, err
	}
	if serviceCount == 0 {
		return domain.Order{}, domain.ErrServiceNotFound
	}

	var partyID *snowflake.ID
	if strings.TrimSpace(req.PartyID) != "" {
		id, err := parseID(req.PartyID)
		if err != nil {
			return domain.Order{}, err
		}
		var partyCount int64
		if err := s.db.WithContext(ctx).Model(&customerdomain.Party{}).
			Where("id = ? AND customer_id = ?", id, customerID).
			Count(&partyCount).Error; err != nil {
			return domain.Order{}, err
		}
		if partyCount == 0 {
			return domain.Order{}, domain.ErrPartyNotFound
		}
		partyID = &id
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		PartyID:    partyID,
		ServiceID:  serviceID,
		Quantity:   req.Quantity,
		CreatedBy:  req.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx)
	}
	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()),
	)
	return order, nil
}

// rowScan mirrors domain.Row for the enrichment query. The line total is
// computed in Go so decimal arithmetic stays off the database.
type rowScan struct {
	ID           snowflake.ID
	CustomerID   snowflake.ID
	CustomerName string
	PartyID      *snowflake.ID
	PartyName    *string
	ServiceID    snowflake.ID
	ServiceName  string
	Quantity     int
	UnitPrice    decimal.Decimal
	CreatedBy    snowflake.ID
	CreatorName  *string
	CreatedAt    time.Time
}

func (s *Service) List(ctx context.Context, req domain.ListOrdersRequest) ([]domain.Row, error) {
	query, err := s.filteredQuery(ctx, req)
	if err != nil {
		return nil, err
	}

	var scans []rowScan
	if err := query.Order("o.created_at ASC, o.id ASC").Scan(&scans).Error; err != nil {
		return nil, err
	}
	return toRows(scans), nil
}

func (s *Service) ListRecent(ctx context.Context, req domain.ListOrdersRequest) ([]domain.Row, *pagination.PageInfo, error) {
	query, err := s.filteredQuery(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	query = option.ApplyPagination("o.id", req.Page).Apply(query.Order("o.id DESC"))

	var scans []rowScan
	if err := query.Scan(&scans).Error; err != nil {
		return nil, nil, err
	}

	rows, page := pagination.BuildCursorPage(toRows(scans), req.Page.Limit(), func(r domain.Row) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: r.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	return rows, page, nil
}

func (s *Service) filteredQuery(ctx context.Context, req domain.ListOrdersRequest) (*gorm.DB, error) {
	query := s.enrichedQuery(ctx)

	if strings.TrimSpace(req.CustomerID) != "" {
		id, err := parseID(req.CustomerID)
		if err != nil {
			return nil, err
		}
		query = query.Where("o.customer_id = ?", id)
	}
	if strings.TrimSpace(req.CreatedBy) != "" {
		id, err := parseID(req.CreatedBy)
		if err != nil {
			return nil, err
		}
		query = query.Where("o.created_by = ?", id)
	}
	if req.From != nil {
		query = query.Where("o.created_at >= ?", req.From.UTC())
	}
	if req.To != nil {
		query = query.Where("o.created_at <= ?", req.To.UTC())
	}
	return query, nil
}

func toRows(scans []rowScan) []domain.Row {
	rows := make([]domain.Row, 0, len(scans))
	for _, scan := range scans {
		rows = append(rows, scan.toRow())
	}
	return rows
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Row, error) {
	orderID, err := parseID(id)
	if err != nil {
		return domain.Row{}, err
	}

	var scans []rowScan
	if err := s.enrichedQuery(ctx).Where("o.id = ?", orderID).Limit(1).Scan(&scans).Error; err != nil {
		return domain.Row{}, err
	}
	if len(scans) == 0 {
		return domain.Row{}, domain.ErrNotFound
	}
	return scans[0].toRow(), nil
}

func (s *Service) enrichedQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("orders AS o").
		Select(`o.id, o.customer_id, c.name AS customer_name,
			o.party_id, p.name AS party_name,
			o.service_id, sv.name AS service_name,
			o.quantity, COALESCE(csp.price, sv.price) AS unit_price,
			o.created_by, u.name AS creator_name, o.created_at`).
		Joins("JOIN customers c ON c.id = o.customer_id").
		Joins("JOIN services sv ON sv.id = o.service_id").
		Joins("LEFT JOIN parties p ON p.id = o.party_id").
		Joins("LEFT JOIN users u ON u.id = o.created_by").
		Joins("LEFT JOIN customer_service_prices csp ON csp.customer_id = o.customer_id AND csp.service_id = o.service_id")
}

func (r rowScan) toRow() domain.Row {
	creator := ""
	if r.CreatorName != nil {
		creator = *r.CreatorName
	}
	return domain.Row{
		ID:           r.ID,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		PartyID:      r.PartyID,
		PartyName:    r.PartyName,
		ServiceID:    r.ServiceID,
		ServiceName:  r.ServiceName,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		LineTotal:    r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity))),
		CreatedBy:    r.CreatedBy,
		CreatorName:  creator,
		CreatedAt:    r.CreatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
