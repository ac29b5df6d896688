package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/opsdesk/internal/catalog/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/pkg/db/option"
	"github.com/smallbiznis/opsdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	services repository.Repository[domain.Service]
	prices   repository.Repository[domain.CustomerServicePrice]
}

func New(p Params) domain.CatalogService {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("catalog.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		services: repository.ProvideStore[domain.Service](p.DB),
		prices:   repository.ProvideStore[domain.CustomerServicePrice](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceRequest) (domain.Service, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Service{}, domain.ErrInvalidName
	}
	if req.Price.IsNegative() {
		return domain.Service{}, domain.ErrInvalidPrice
	}

	now := s.clock.Now()
	svc := domain.Service{
		ID:        s.genID.Generate(),
		Name:      name,
		Price:     req.Price.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.services.Create(ctx, &svc); err != nil {
		return domain.Service{}, err
	}
	return svc, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Service, error) {
	items, err := s.services.Find(ctx, &domain.Service{}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}
	services := make([]domain.Service, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		services = append(services, *item)
	}
	return services, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Service, error) {
	serviceID, err := s.parseID(id)
	if err != nil {
		return domain.Service{}, err
	}
	item, err := s.services.FindOne(ctx, &domain.Service{ID: serviceID})
	if err != nil {
		return domain.Service{}, err
	}
	if item == nil {
		return domain.Service{}, domain.ErrNotFound
	}
	return *item, nil
}

// SetCustomerPrice inserts or replaces the override for the pair.
func (s *Service) SetCustomerPrice(ctx context.Context, req domain.SetCustomerPriceRequest) (domain.CustomerServicePrice, error) {
	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.CustomerServicePrice{}, err
	}
	svc, err := s.GetByID(ctx, req.ServiceID)
	if err != nil {
		return domain.CustomerServicePrice{}, err
	}
	if req.Price.IsNegative() {
		return domain.CustomerServicePrice{}, domain.ErrInvalidPrice
	}

	now := s.clock.Now()
	override := domain.CustomerServicePrice{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		ServiceID:  svc.ID,
		Price:      req.Price.Round(2),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "service_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&override).Error
	if err != nil {
		return domain.CustomerServicePrice{}, err
	}

	// On the conflict path the generated ID is discarded in favor of the
	// surviving row, so re-read before returning.
	stored, err := s.prices.FindOne(ctx, &domain.CustomerServicePrice{
		CustomerID: customerID,
		ServiceID:  svc.ID,
	})
	if err != nil {
		return domain.CustomerServicePrice{}, err
	}
	if stored == nil {
		return override, nil
	}
	return *stored, nil
}

func (s *Service) ListCustomerPrices(ctx context.Context, customerID string) ([]domain.CustomerServicePrice, error) {
	id, err := s.parseID(customerID)
	if err != nil {
		return nil, err
	}
	items, err := s.prices.Find(ctx, &domain.CustomerServicePrice{CustomerID: id})
	if err != nil {
		return nil, err
	}
	overrides := make([]domain.CustomerServicePrice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		overrides = append(overrides, *item)
	}
	return overrides, nil
}

func (s *Service) DeleteCustomerPrice(ctx context.Context, customerID, serviceID string) error {
	cid, err := s.parseID(customerID)
	if err != nil {
		return err
	}
	sid, err := s.parseID(serviceID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("customer_id = ? AND service_id = ?", cid, sid).
		Delete(&domain.CustomerServicePrice{}).Error
}

func (s *Service) EffectivePrice(ctx context.Context, customerID, serviceID snowflake.ID) (decimal.Decimal, error) {
	override, err := s.prices.FindOne(ctx, &domain.CustomerServicePrice{
		CustomerID: customerID,
		ServiceID:  serviceID,
	})
	if err != nil {
		return decimal.Zero, err
	}
	if override != nil {
		return override.Price, nil
	}

	svc, err := s.services.FindOne(ctx, &domain.Service{ID: serviceID})
	if err != nil {
		return decimal.Zero, err
	}
	if svc == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return svc.Price, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
