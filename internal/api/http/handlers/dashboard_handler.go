package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/api/respond"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

// DashboardHandler serves the overview summary and the activity log.
type DashboardHandler struct {
	dashboard  *service.DashboardService
	activity   *service.ActivityService
	pagination config.PaginationConfig
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService, activity *service.ActivityService, pagination config.PaginationConfig) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, activity: activity, pagination: pagination}
}

// Summary GET /dashboard.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	summary, err := h.dashboard.Summary(c.Context(), actor)
	if err != nil {
		return err
	}
	return respond.Success(c, fiber.StatusOK, "", summary)
}

// Activity GET /activity.
func (h *DashboardHandler) Activity(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	limit, offset := parsePage(c, h.pagination)
	filter := repository.AuditFilter{
		EntityType:  optionalQuery(c, "entity_type"),
		EntityID:    optionalQuery(c, "entity_id"),
		PerformedBy: optionalQuery(c, "performed_by"),
		From:        parseTime(c.Query("from")),
		To:          parseTime(c.Query("to")),
		Limit:       limit,
		Offset:      offset,
	}
	if actionStr := c.Query("action"); actionStr != "" {
		action := domain.AuditAction(actionStr)
		filter.Action = &action
	}

	entries, err := h.activity.List(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:            entry.ID,
			EntityType:    entry.EntityType,
			EntityID:      entry.EntityID,
			Action:        entry.Action,
			PreviousState: entry.PreviousState,
			NewState:      entry.NewState,
			PerformedBy:   entry.PerformedBy,
			SourceAddress: entry.SourceAddress,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return respond.Success(c, fiber.StatusOK, "", items)
}
