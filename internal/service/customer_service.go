package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const entityTypeCustomer = "customer"

// CustomerService manages customer records. Deletion is refused while the
// customer still has unresolved tickets.
type CustomerService struct {
	customers repository.CustomerRepository
	tickets   repository.TicketRepository
	evaluator *authz.Evaluator
	recorder  *AuditRecorder
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository, tickets repository.TicketRepository, evaluator *authz.Evaluator, recorder *AuditRecorder) *CustomerService {
	return &CustomerService{
		customers: customers,
		tickets:   tickets,
		evaluator: evaluator,
		recorder:  recorder,
	}
}

// CustomerInput describes a create/update payload.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Address string
	Notes   string
}

func validateCustomerInput(input CustomerInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("customer name required", nil)
	}
	return nil
}

// Create adds a customer record.
func (s *CustomerService) Create(ctx context.Context, actor Actor, input CustomerInput) (*domain.Customer, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionCreateCustomer); err != nil {
		return nil, err
	}
	if err := validateCustomerInput(input); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   strings.TrimSpace(input.Phone),
		Company: strings.TrimSpace(input.Company),
		Address: input.Address,
		Notes:   input.Notes,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeCustomer, customer.ID, domain.AuditActionCreate,
		nil, Snapshot(customer), actor.UserID, actor.SourceAddress)
	return customer, nil
}

// Update replaces the customer's details.
func (s *CustomerService) Update(ctx context.Context, actor Actor, customerID string, input CustomerInput) (*domain.Customer, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionUpdateCustomer); err != nil {
		return nil, err
	}
	if err := validateCustomerInput(input); err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	before := Snapshot(customer)
	customer.Name = strings.TrimSpace(input.Name)
	customer.Email = strings.ToLower(strings.TrimSpace(input.Email))
	customer.Phone = strings.TrimSpace(input.Phone)
	customer.Company = strings.TrimSpace(input.Company)
	customer.Address = input.Address
	customer.Notes = input.Notes
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.recorder.Record(ctx, entityTypeCustomer, customer.ID, domain.AuditActionUpdate,
		before, Snapshot(customer), actor.UserID, actor.SourceAddress)
	return customer, nil
}

// Delete removes a customer without open tickets.
func (s *CustomerService) Delete(ctx context.Context, actor Actor, customerID string) error {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionDeleteCustomer); err != nil {
		return err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return apperrors.MapError(err)
	}

	open, err := s.tickets.CountOpenForCustomer(ctx, customer.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if open > 0 {
		return apperrors.NewConflict(
			fmt.Sprintf("customer has %d unresolved ticket(s)", open), nil)
	}

	before := Snapshot(customer)
	if err := s.customers.Delete(ctx, customer.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.recorder.Record(ctx, entityTypeCustomer, customer.ID, domain.AuditActionDelete,
		before, nil, actor.UserID, actor.SourceAddress)
	return nil
}

// Get returns a customer along with its open ticket count.
func (s *CustomerService) Get(ctx context.Context, actor Actor, customerID string) (*domain.Customer, int, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewCustomers, domain.PermissionViewAllCustomers); err != nil {
		return nil, 0, err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	open, err := s.tickets.CountOpenForCustomer(ctx, customer.ID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return customer, open, nil
}

// List returns customers matching the filter.
func (s *CustomerService) List(ctx context.Context, actor Actor, filter repository.CustomerFilter) ([]domain.Customer, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewCustomers, domain.PermissionViewAllCustomers); err != nil {
		return nil, err
	}
	return s.customers.List(ctx, filter)
}
