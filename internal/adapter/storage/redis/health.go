package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// HealthCheck reports whether the dashboard cache answers. The service keeps
// working without it, but /health still shows it as degraded.
type HealthCheck struct {
	client goredis.UniversalClient
}

func NewHealthCheck(client goredis.UniversalClient) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("dashboard cache unreachable: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "dashboard_cache"
}
