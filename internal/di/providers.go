package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"AstroSignal/internal/domain/repository"
	"AstroSignal/internal/handler/api"
	internalrepo "AstroSignal/internal/repository"
	"AstroSignal/internal/service/ratelimit"
	"AstroSignal/internal/services/ephemeris"
	"AstroSignal/internal/usecase"
	"AstroSignal/pkg/cache"
	pkgch "AstroSignal/pkg/clickhouse"
	"AstroSignal/pkg/config"
	xhttp "AstroSignal/pkg/http"
	"AstroSignal/pkg/http/middleware"
	pkgkafka "AstroSignal/pkg/kafka"
	applogger "AstroSignal/pkg/logger"
	"AstroSignal/pkg/metrics"
	"AstroSignal/pkg/queue"
	"AstroSignal/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder, or a no-op one when
// metrics are disabled.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return repository.NopMetrics{}
	}
	return metrics.New()
}

// ProvideClickHouseClient connects only when the clickhouse backend is selected.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Ephemeris.Backend != "clickhouse" {
		return nil, nil
	}
	ch := cfg.Ephemeris.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if ch.CreateSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, pkgch.EphemerisSchema(ch.Database, ch.Table)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return client, nil
}

// ProvideCacheStore builds the longitude cache; nil when caching is off.
func ProvideCacheStore(cfg *config.Config) (cache.Service, error) {
	c := cfg.Ephemeris.Cache
	if !c.Enabled {
		return nil, nil
	}
	switch c.Type {
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(c.Redis.Addr),
			cache.WithRedisPassword(c.Redis.Password),
			cache.WithRedisDB(c.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if c.Type == "layered" {
			return cache.NewLayeredCache(rc, 50_000, 10*time.Minute), nil
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(200_000)), nil
	}
}

// ProvideEphemerisProvider selects the backend and stacks the decorators:
// backend -> instrumented -> cached -> sidereal.
func ProvideEphemerisProvider(
	cfg *config.Config,
	ch *pkgch.Client,
	store cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) (repository.EphemerisProvider, error) {
	var (
		p    repository.EphemerisProvider
		name = cfg.Ephemeris.Backend
	)
	switch name {
	case "analytic":
		p = ephemeris.NewAnalytic()
	case "almanac":
		p = ephemeris.NewAlmanac(&cfg.Ephemeris, l.With("almanac"))
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("clickhouse backend selected without a client")
		}
		s := internalrepo.NewCHEphemerisStore(ch, cfg.Ephemeris.ClickHouse.Table, cfg.Ephemeris.ClickHouse.Tolerance)
		s.SetLogger(l.With("ephemeris-store"))
		p = s
	default:
		return nil, fmt.Errorf("unknown ephemeris backend %q", name)
	}

	p = ephemeris.NewInstrumented(p, name, m)
	if store != nil {
		p = ephemeris.NewCached(p, store,
			ephemeris.WithNamespace(name),
			ephemeris.WithTTL(cfg.Ephemeris.Cache.TTL),
			ephemeris.WithCacheLogger(l.With("ephemeris-cache")),
		)
	}
	if cfg.Ephemeris.Zodiac == "sidereal" {
		p = ephemeris.NewSidereal(p)
	}
	return p, nil
}

func ProvideParamsBuilder(cfg *config.Config) (*usecase.ParamsBuilder, error) {
	return usecase.NewParamsBuilder(cfg.Engine)
}

func ProvideTimelineUseCase(p repository.EphemerisProvider, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.TimelineUseCase {
	uc := usecase.NewTimelineUseCase(p, m)
	uc.SetLogger(l.With("timeline"))
	uc.SetMaxSamples(cfg.Engine.MaxSamples)
	return uc
}

func ProvideSnapshotUseCase(p repository.EphemerisProvider) *usecase.SnapshotUseCase {
	return usecase.NewSnapshotUseCase(p)
}

// ProvideRateLimiter returns nil when the API is not rate limited.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	rl := cfg.Server.RateLimit
	if !rl.Enabled {
		return nil
	}
	return ratelimit.New(rl.RPS, rl.Burst, 5*time.Minute)
}

func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	builder *usecase.ParamsBuilder,
	tl *usecase.TimelineUseCase,
	snap *usecase.SnapshotUseCase,
	limiter *ratelimit.Limiter,
) *api.TimelineEchoHandler {
	h := api.NewTimelineEchoHandler(l.With("api"), builder, tl, snap).WithOrigins(cfg.Server.CORSOrigins)
	if limiter != nil {
		h.WithRateLimit(middleware.RateLimit(limiter))
	}
	return h
}

// ProvideKafkaProducer creates a Kafka producer when the job worker is enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultPublisher wraps the producer for timeline results.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaTimelinePublisher(producer, cfg.Kafka.ResultTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l.With("kafka-consumer")),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTimelineHandler returns nil when there is nowhere to publish.
func ProvideKafkaTimelineHandler(
	cfg *config.Config,
	builder *usecase.ParamsBuilder,
	tl *usecase.TimelineUseCase,
	pub repository.ResultPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.KafkaTimelineHandler {
	if pub == nil {
		return nil
	}
	return usecase.NewKafkaTimelineHandler(cfg.Kafka.RequestTopic, builder, tl, pub, m, l.With("timeline-job"))
}

// ProvideJobRedis connects the Redis instance backing the job queue; nil when
// asynchronous jobs are off.
func ProvideJobRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Jobs.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Jobs.Redis.Addr,
		Password: cfg.Jobs.Redis.Password,
		DB:       cfg.Jobs.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("jobs redis: %w", err)
	}
	return client, nil
}

func ProvideJobQueue(cfg *config.Config, rc *redis.Client, l *applogger.Logger) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	return queue.NewRedisQueue(l.With("job-queue"), queue.Config{
		Workers:    cfg.Jobs.Workers,
		RetryLimit: cfg.Jobs.RetryLimit,
		RetryDelay: cfg.Jobs.RetryDelay,
		KeyPrefix:  cfg.Jobs.KeyPrefix + ":queue",
	}, rc)
}

func ProvideJobStore(cfg *config.Config, rc *redis.Client) *internalrepo.CacheJobStore {
	if rc == nil {
		return nil
	}
	return internalrepo.NewCacheJobStore(cache.NewRedisCacheFromClient(rc, cfg.Jobs.KeyPrefix), cfg.Jobs.ResultTTL)
}

// ProvideTimelineJobService registers the timeline job on the queue and marks
// dead-lettered jobs failed.
func ProvideTimelineJobService(
	builder *usecase.ParamsBuilder,
	tl *usecase.TimelineUseCase,
	q *queue.RedisQueue,
	store *internalrepo.CacheJobStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.TimelineJobService {
	if q == nil || store == nil {
		return nil
	}
	svc := usecase.NewTimelineJobService(builder, tl, q, store, m, l.With("timeline-job"))
	q.RegisterJob(svc)
	q.SetDeadLetterHook(svc.MarkFailed)
	return svc
}

func ProvideJobsHandler(l *applogger.Logger, svc *usecase.TimelineJobService, limiter *ratelimit.Limiter) *api.JobsEchoHandler {
	if svc == nil {
		return nil
	}
	h := api.NewJobsEchoHandler(l.With("api-jobs"), svc)
	if limiter != nil {
		h.WithRateLimit(middleware.RateLimit(limiter))
	}
	return h
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.TimelineEchoHandler,
	jobsHandler *api.JobsEchoHandler,
	jobQueue *queue.RedisQueue,
	jobRedis *redis.Client,
	consumer *pkgkafka.Consumer,
	jobs *usecase.KafkaTimelineHandler,
	pub repository.ResultPublisher,
	ch *pkgch.Client,
	store cache.Service,
	limiter *ratelimit.Limiter,
) *server.App {
	handlers := []xhttp.Handler{handler}
	if jobsHandler != nil {
		handlers = append(handlers, jobsHandler)
	}
	app := server.New(cfg, l, handlers...)
	if jobQueue != nil {
		app.AddWorker("redis job queue", jobQueue)
		app.OnClose("jobs redis", jobRedis.Close)
		app.AddCheck("jobs redis", func(ctx context.Context) error { return jobRedis.Ping(ctx).Err() })
	}
	if consumer != nil && jobs != nil {
		app.SetJobs(consumer, jobs)
	}
	if pub != nil {
		app.OnClose("kafka producer", pub.Close)
	}
	if ch != nil {
		app.AddCheck("clickhouse", ch.Health)
		app.OnClose("clickhouse", ch.Close)
	}
	if store != nil {
		app.OnClose("cache", store.Close)
	}
	if limiter != nil {
		app.SetSweeper(limiter.Run)
	}
	return app
}
