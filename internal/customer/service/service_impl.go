package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/opsdesk/internal/catalog/domain"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/internal/customer/domain"
	"github.com/smallbiznis/opsdesk/pkg/db/option"
	"github.com/smallbiznis/opsdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	customers repository.Repository[domain.Customer]
	parties   repository.Repository[domain.Party]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("customer.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		customers: repository.ProvideStore[domain.Customer](p.DB),
		parties:   repository.ProvideStore[domain.Party](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Customer{}, domain.ErrInvalidPhone
	}
	if req.PaymentDueDay != nil && (*req.PaymentDueDay < 1 || *req.PaymentDueDay > 31) {
		return domain.Customer{}, domain.ErrInvalidDueDay
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:            s.genID.Generate(),
		Name:          name,
		Phone:         phone,
		PaymentDueDay: req.PaymentDueDay,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if address := strings.TrimSpace(req.Address); address != "" {
		customer.Address = &address
	}

	if err := s.customers.Create(ctx, &customer); err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	items, err := s.customers.Find(ctx, &domain.Customer{}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := s.parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.customers.FindOne(ctx, &domain.Customer{ID: customerID})
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

// Update replaces the customer's profile fields. Passing no due day or a
// blank address clears the stored value.
func (s *Service) Update(ctx context.Context, id string, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Customer{}, domain.ErrInvalidPhone
	}
	if req.PaymentDueDay != nil && (*req.PaymentDueDay < 1 || *req.PaymentDueDay > 31) {
		return domain.Customer{}, domain.ErrInvalidDueDay
	}

	customer.Name = name
	customer.Phone = phone
	customer.PaymentDueDay = req.PaymentDueDay
	customer.Address = nil
	if address := strings.TrimSpace(req.Address); address != "" {
		customer.Address = &address
	}
	customer.UpdatedAt = s.clock.Now()

	err = s.customers.Update(ctx, customer.ID.String(), map[string]any{
		"name":            customer.Name,
		"phone":           customer.Phone,
		"address":         customer.Address,
		"payment_due_day": customer.PaymentDueDay,
		"updated_at":      customer.UpdatedAt,
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

// Delete removes a customer together with its parties and service price
// overrides in one transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&catalogdomain.CustomerServicePrice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&domain.Party{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", customer.ID).Delete(&domain.Customer{}).Error
	})
}

func (s *Service) CreateParty(ctx context.Context, req domain.CreatePartyRequest) (domain.Party, error) {
	customer, err := s.GetByID(ctx, req.CustomerID)
	if err != nil {
		return domain.Party{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Party{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	party := domain.Party{
		ID:         s.genID.Generate(),
		CustomerID: customer.ID,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.parties.Create(ctx, &party); err != nil {
		return domain.Party{}, err
	}
	return party, nil
}

func (s *Service) ListParties(ctx context.Context, customerID string) ([]domain.Party, error) {
	id, err := s.parseID(customerID)
	if err != nil {
		return nil, err
	}

	items, err := s.parties.Find(ctx, &domain.Party{CustomerID: id}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}

	parties := make([]domain.Party, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		parties = append(parties, *item)
	}
	return parties, nil
}

func (s *Service) DeleteParty(ctx context.Context, customerID, partyID string) error {
	cid, err := s.parseID(customerID)
	if err != nil {
		return err
	}
	pid, err := s.parseID(partyID)
	if err != nil {
		return err
	}

	party, err := s.parties.FindOne(ctx, &domain.Party{ID: pid, CustomerID: cid})
	if err != nil {
		return err
	}
	if party == nil {
		return domain.ErrPartyNotFound
	}
	return s.parties.Delete(ctx, party.ID.String())
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
