package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/api/respond"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// InstallationsHandler serves installation request endpoints.
type InstallationsHandler struct {
	service    *service.InstallationService
	pagination config.PaginationConfig
}

// NewInstallationsHandler constructs handler.
func NewInstallationsHandler(installationService *service.InstallationService, pagination config.PaginationConfig) *InstallationsHandler {
	return &InstallationsHandler{service: installationService, pagination: pagination}
}

// Create POST /installations.
func (h *InstallationsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateInstallationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CustomerID == "" {
		return apperrors.NewValidationError("customer_id required", nil)
	}

	request, err := h.service.Create(c.Context(), actor, service.InstallationCreateInput{
		CustomerID:  req.CustomerID,
		ItemID:      req.ItemID,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusCreated, "installation requested", installationResponse(request))
}

// Schedule POST /installations/:id/schedule.
func (h *InstallationsHandler) Schedule(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ScheduleInstallationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}

	request, err := h.service.Schedule(c.Context(), actor, c.Params("id"), req.TechnicianID, req.ScheduledFor)
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "installation scheduled", installationResponse(request))
}

// Complete POST /installations/:id/complete (multipart, photo required).
func (h *InstallationsHandler) Complete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return apperrors.NewValidationError("completion photo required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.MapError(err)
	}
	defer file.Close()

	request, err := h.service.Complete(c.Context(), actor, c.Params("id"), service.AttachmentInput{
		FileName:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes: fileHeader.Size,
		Content:   file,
	})
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "installation completed", installationResponse(request))
}

// Cancel POST /installations/:id/cancel.
func (h *InstallationsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	request, err := h.service.Cancel(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "installation cancelled", installationResponse(request))
}

// Get GET /installations/:id.
func (h *InstallationsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	request, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "", installationResponse(request))
}

// List GET /installations.
func (h *InstallationsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePage(c, h.pagination)
	filter := repository.InstallationFilter{
		CustomerID:   optionalQuery(c, "customer_id"),
		TechnicianID: optionalQuery(c, "technician_id"),
		Limit:        limit,
		Offset:       offset,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.InstallationStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}

	requests, err := h.service.List(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.InstallationResponse, 0, len(requests))
	for i := range requests {
		items = append(items, installationResponse(&requests[i]))
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}

func installationResponse(request *domain.InstallationRequest) dto.InstallationResponse {
	return dto.InstallationResponse{
		ID:            request.ID,
		RequestNumber: request.RequestNumber,
		CustomerID:    request.CustomerID,
		ItemID:        request.ItemID,
		Description:   request.Description,
		Status:        request.Status,
		TechnicianID:  request.TechnicianID,
		ScheduledFor:  request.ScheduledFor,
		CompletedAt:   request.CompletedAt,
		PhotoURL:      request.PhotoURL,
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
	}
}
