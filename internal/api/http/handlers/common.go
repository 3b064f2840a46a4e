package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// actorFromContext builds the service-layer actor from the authenticated
// principal and the client address.
func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{
		UserID:        principal.User.ID,
		RoleID:        principal.User.RoleID,
		SourceAddress: c.IP(),
	}, nil
}

// parsePage extracts page/limit query values and converts them to
// limit/offset, applying the configured default and cap.
func parsePage(c *fiber.Ctx, cfg config.PaginationConfig) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	limit = parseInt(c.Query("limit"), cfg.DefaultLimit)
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	offset = (page - 1) * limit
	return limit, offset
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}
