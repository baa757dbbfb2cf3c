package http

import (
	"context"

	"github.com/axonect/quotacycle/internal/interfaces/http/handlers"
)

type allHandlers struct {
	jobHandler     *handlers.JobHandler
	failureHandler *handlers.FailureHandler
	cacheHandler   *handlers.CacheHandler
	healthHandler  *handlers.HealthHandler
}

func (c *Container) initHandlers() {
	u := c.ucs
	log := c.log.Named("http")

	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}

	c.hdlrs = &allHandlers{
		jobHandler:     handlers.NewJobHandler(u.renewal, u.reaper, u.notification, log),
		failureHandler: handlers.NewFailureHandler(u.listFailures, u.retryable, u.updateFailure, log),
		cacheHandler:   handlers.NewCacheHandler(u.manageCache, log),
		healthHandler:  handlers.NewHealthHandler(checks),
	}
}
