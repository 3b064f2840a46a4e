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

// TicketsHandler serves the ticket lifecycle endpoints.
type TicketsHandler struct {
	service    *service.TicketService
	pagination config.PaginationConfig
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, pagination config.PaginationConfig) *TicketsHandler {
	return &TicketsHandler{service: ticketService, pagination: pagination}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.Context(), actor, service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     domain.TicketCategory(strings.ToUpper(req.Category)),
		Priority:     domain.TicketPriority(strings.ToUpper(req.Priority)),
		CustomerID:   req.CustomerID,
		ItemID:       req.ItemID,
		SerialNumber: req.SerialNumber,
		DueDate:      req.DueDate,
	})
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusCreated, "ticket created", ticketSummary(ticket))
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}

	ticket, err := h.service.Assign(c.Context(), actor, c.Params("id"), req.AssigneeID, req.Note)
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "ticket assigned", ticketSummary(ticket))
}

// Start POST /tickets/:id/start.
func (h *TicketsHandler) Start(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Start(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "work started", ticketSummary(ticket))
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Resolve(c.Context(), actor, c.Params("id"), req.ResolutionNote)
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "ticket resolved", ticketSummary(ticket))
}

// Approve POST /tickets/:id/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Approve(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "resolution approved", ticketSummary(ticket))
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Close(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "ticket closed", ticketSummary(ticket))
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Reopen(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "ticket reopened", ticketSummary(ticket))
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.DeleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.service.Delete(c.Context(), actor, c.Params("id"), req.Reason); err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "ticket deleted", nil)
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.AddComment(c.Context(), actor, c.Params("id"), req.Body, req.Internal)
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusCreated, "comment added", commentResponse(comment))
}

// AddAttachment POST /tickets/:id/attachments (multipart).
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.MapError(err)
	}
	defer file.Close()

	att, err := h.service.AddAttachment(c.Context(), actor, c.Params("id"), service.AttachmentInput{
		FileName:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		SizeBytes: fileHeader.Size,
		Content:   file,
	})
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusCreated, "attachment uploaded", attachmentResponse(att))
}

// RemoveAttachment DELETE /tickets/:id/attachments/:attachmentID.
func (h *TicketsHandler) RemoveAttachment(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.RemoveAttachment(c.Context(), actor, c.Params("id"), c.Params("attachmentID")); err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "attachment removed", nil)
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	ticket, comments, attachments, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "", ticketDetail(ticket, comments, attachments))
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.Context(), actor, h.parseFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}

// Assignments GET /tickets/:id/assignments.
func (h *TicketsHandler) Assignments(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePage(c, h.pagination)
	records, err := h.service.ListAssignments(c.Context(), actor, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AssignmentResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.AssignmentResponse{
			ID:         record.ID,
			AssignerID: record.AssignerID,
			AssigneeID: record.AssigneeID,
			Note:       record.Note,
			CreatedAt:  record.CreatedAt,
		})
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}

func (h *TicketsHandler) parseFilter(c *fiber.Ctx) repository.TicketFilter {
	limit, offset := parsePage(c, h.pagination)
	filter := repository.TicketFilter{
		AssigneeID: optionalQuery(c, "assignee_id"),
		CustomerID: optionalQuery(c, "customer_id"),
		SearchTerm: optionalQuery(c, "q"),
		Limit:      limit,
		Offset:     offset,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		category := domain.TicketCategory(strings.ToUpper(categoryStr))
		filter.Category = &category
	}
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))
	return filter
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Title:        ticket.Title,
		Category:     ticket.Category,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		CreatorID:    ticket.CreatorID,
		AssigneeID:   ticket.AssigneeID,
		CustomerID:   ticket.CustomerID,
		DueDate:      ticket.DueDate,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.TicketComment, attachments []domain.TicketAttachment) dto.TicketDetail {
	commentItems := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentItems = append(commentItems, commentResponse(&comments[i]))
	}
	attachmentItems := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		attachmentItems = append(attachmentItems, attachmentResponse(&attachments[i]))
	}
	return dto.TicketDetail{
		TicketSummary:  ticketSummary(ticket),
		Description:    ticket.Description,
		SerialNumber:   ticket.SerialNumber,
		ItemID:         ticket.ItemID,
		ResolutionNote: ticket.ResolutionNote,
		ResolvedAt:     ticket.ResolvedAt,
		ClosedAt:       ticket.ClosedAt,
		Comments:       commentItems,
		Attachments:    attachmentItems,
	}
}

func commentResponse(comment *domain.TicketComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		Internal:  comment.Internal,
		CreatedAt: comment.CreatedAt,
	}
}

func attachmentResponse(att *domain.TicketAttachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        att.ID,
		FileName:  att.FileName,
		MimeType:  att.MimeType,
		SizeBytes: att.SizeBytes,
		URL:       att.PublicURL,
		CreatedAt: att.CreatedAt,
	}
}
