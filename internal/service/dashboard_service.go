package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/authz"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 30 * time.Second
)

// DashboardSummary aggregates counters for the overview screen.
type DashboardSummary struct {
	TicketsByStatus   map[domain.TicketStatus]int   `json:"tickets_by_status"`
	TicketsByPriority map[domain.TicketPriority]int `json:"tickets_by_priority"`
	OpenByAssignee    map[string]int                `json:"open_by_assignee"`
	LowStockItems     int                           `json:"low_stock_items"`
	GeneratedAt       time.Time                     `json:"generated_at"`
}

// DashboardService computes the summary, with a short Redis cache in front of
// the aggregate queries.
type DashboardService struct {
	tickets   repository.TicketRepository
	inventory repository.InventoryRepository
	evaluator *authz.Evaluator
	redis     *redis.Client
	logger    *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository, inventory repository.InventoryRepository, evaluator *authz.Evaluator, rdb *redis.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		tickets:   tickets,
		inventory: inventory,
		evaluator: evaluator,
		redis:     rdb,
		logger:    logger,
	}
}

// Summary returns the dashboard counters, serving from cache when fresh.
func (s *DashboardService) Summary(ctx context.Context, actor Actor) (*DashboardSummary, error) {
	if err := s.evaluator.Authorize(ctx, actor.RoleID, domain.PermissionViewDashboard); err != nil {
		return nil, err
	}

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var summary DashboardSummary
			if json.Unmarshal(cached, &summary) == nil {
				return &summary, nil
			}
		}
	}

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			if err := s.redis.Set(ctx, dashboardCacheKey, encoded, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardSummary, error) {
	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.tickets.CountByPriority(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byAssignee, err := s.tickets.CountOpenByAssignee(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	lowStock, err := s.inventory.CountLowStock(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &DashboardSummary{
		TicketsByStatus:   byStatus,
		TicketsByPriority: byPriority,
		OpenByAssignee:    byAssignee,
		LowStockItems:     lowStock,
		GeneratedAt:       time.Now(),
	}, nil
}
