package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/axonect/quotacycle/internal/domain/notification"
	"github.com/axonect/quotacycle/internal/infrastructure/cache"
	"github.com/axonect/quotacycle/internal/infrastructure/config"
	"github.com/axonect/quotacycle/internal/infrastructure/messaging"
	"github.com/axonect/quotacycle/internal/infrastructure/metrics"
	"github.com/axonect/quotacycle/internal/infrastructure/scheduler"
	"github.com/axonect/quotacycle/internal/shared/logger"
)

const redisPingTimeout = 3 * time.Second

// Container wires infrastructure, repositories, use cases, handlers and the scheduler.
// Shutdown releases everything it opened except the database handle, which the caller owns.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	registry       *prometheus.Registry
	metrics        *metrics.JobMetrics
	referenceCache *cache.RedisReferenceCache
	sessionCache   *cache.RedisSessionCache
	publisher      notification.Publisher
	closePublisher func() error

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	schedulerManager *scheduler.SchedulerManager
}

func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	if err := c.initInfrastructure(); err != nil {
		c.release()
		return nil, err
	}
	c.initRepositories()
	c.initUseCases()
	c.initHandlers()
	if err := c.initScheduler(); err != nil {
		c.release()
		return nil, err
	}

	c.setupRoutes()
	return c, nil
}

func (c *Container) initInfrastructure() error {
	c.redis = redis.NewClient(&redis.Options{
		Addr:     c.cfg.Redis.GetAddr(),
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		// session writes tolerate an outage, so start anyway
		c.log.Warnw("redis not reachable at startup", "addr", c.cfg.Redis.GetAddr(), "error", err)
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = metrics.NewJobMetrics(c.registry)

	sc := c.cfg.SessionCache
	c.sessionCache = cache.NewRedisSessionCache(c.redis, cache.SessionCacheOptions{
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		Retries:      sc.Retries,
	}, c.log.Named("session-cache"))

	if rc := c.cfg.ReferenceCache; rc.Enabled {
		c.referenceCache = cache.NewRedisReferenceCache(c.redis, cache.ReferenceCacheOptions{
			Prefix: rc.Prefix,
			TTLs: map[cache.ReferenceKind]time.Duration{
				cache.KindPlan:     rc.PlanTTL,
				cache.KindTemplate: rc.TemplateTTL,
				cache.KindBucket:   rc.BucketTTL,
				cache.KindQOS:      rc.QOSTTL,
			},
		}, c.log.Named("reference-cache"))
	}

	publisher, closePublisher, err := messaging.NewPublisher(c.cfg.Notification, c.redis, c.log.Named("notification"))
	if err != nil {
		return err
	}
	c.publisher = publisher
	c.closePublisher = closePublisher
	return nil
}

func (c *Container) initScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	c.schedulerManager = manager

	if rc := c.cfg.Renewal; rc.Enabled {
		if err := manager.RegisterRenewalJob(scheduler.JobSchedule{Cron: rc.Cron, Timeout: rc.RunTimeout}, c.ucs.renewal); err != nil {
			return err
		}
	}
	if rc := c.cfg.Reaper; rc.Enabled {
		if err := manager.RegisterReaperJob(scheduler.JobSchedule{Cron: rc.Cron, Timeout: rc.RunTimeout}, c.ucs.reaper); err != nil {
			return err
		}
	}
	if nc := c.cfg.Notification; nc.Enabled {
		if err := manager.RegisterNotificationJob(scheduler.JobSchedule{Cron: nc.Cron, Timeout: nc.RunTimeout}, c.ucs.notification); err != nil {
			return err
		}
	}
	return nil
}

// Engine returns the configured gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// MetricsHandler serves the job metrics registry in the prometheus text format.
func (c *Container) MetricsHandler() nethttp.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Container) Scheduler() *scheduler.SchedulerManager {
	return c.schedulerManager
}

// Job returns the batch job registered under name (renewal, reaper or notification).
func (c *Container) Job(name string) (scheduler.BatchJob, bool) {
	switch name {
	case metrics.JobRenewal:
		return c.ucs.renewal, true
	case metrics.JobReaper:
		return c.ucs.reaper, true
	case metrics.JobNotification:
		return c.ucs.notification, true
	}
	return nil, false
}

// Shutdown stops the scheduler, then closes the publisher and redis client.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if c.schedulerManager != nil && c.schedulerManager.IsStarted() {
		done := make(chan error, 1)
		go func() { done <- c.schedulerManager.Stop() }()
		select {
		case err := <-done:
			errs = append(errs, err)
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("scheduler stop: %w", ctx.Err()))
		}
	}
	errs = append(errs, c.release())
	return errors.Join(errs...)
}

func (c *Container) release() error {
	var errs []error
	if c.closePublisher != nil {
		if err := c.closePublisher(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
		c.closePublisher = nil
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		c.redis = nil
	}
	return errors.Join(errs...)
}
