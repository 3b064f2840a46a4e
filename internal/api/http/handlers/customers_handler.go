package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/api/respond"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// CustomersHandler serves customer record endpoints.
type CustomersHandler struct {
	service    *service.CustomerService
	pagination config.PaginationConfig
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService, pagination config.PaginationConfig) *CustomersHandler {
	return &CustomersHandler{service: customerService, pagination: pagination}
}

// Create POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.service.Create(c.Context(), actor, customerInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusCreated, "customer created", customerResponse(customer, nil))
}

// Update PUT /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	customer, err := h.service.Update(c.Context(), actor, c.Params("id"), customerInput(req))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "customer updated", customerResponse(customer, nil))
}

// Delete DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "customer deleted", nil)
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	customer, openTickets, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "", customerResponse(customer, &openTickets))
}

// List GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePage(c, h.pagination)
	customers, err := h.service.List(c.Context(), actor, repository.CustomerFilter{
		SearchTerm: optionalQuery(c, "q"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, customerResponse(&customers[i], nil))
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}

func customerInput(req dto.CustomerRequest) service.CustomerInput {
	return service.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		Notes:   req.Notes,
	}
}

func customerResponse(customer *domain.Customer, openTickets *int) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:          customer.ID,
		Name:        customer.Name,
		Email:       customer.Email,
		Phone:       customer.Phone,
		Company:     customer.Company,
		Address:     customer.Address,
		Notes:       customer.Notes,
		OpenTickets: openTickets,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}
