package di

import (
	"context"
	"fmt"
	"time"

	"OpenFOF/internal/catalog"
	"OpenFOF/internal/domain/repository"
	"OpenFOF/internal/domain/service"
	"OpenFOF/internal/handler/api"
	internalrepo "OpenFOF/internal/repository"
	"OpenFOF/internal/service/ratelimit"
	"OpenFOF/internal/services/projection"
	"OpenFOF/internal/usecase"
	"OpenFOF/pkg/cache"
	pkgch "OpenFOF/pkg/clickhouse"
	"OpenFOF/pkg/config"
	xhttp "OpenFOF/pkg/http"
	pkgkafka "OpenFOF/pkg/kafka"
	applogger "OpenFOF/pkg/logger"
	"OpenFOF/pkg/metrics"
)

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithClientID("openfof"),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the application logger. With Kafka enabled the error
// log collector ships aggregated entries to the logs topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
		Output:  cfg.Logger.Output,
		Service: "openfof",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logger.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			FlushInterval: cfg.Logger.Collector.FlushInterval,
			MaxEntries:    cfg.Logger.Collector.CountThreshold,
			Topic:         cfg.Kafka.LogsTopic,
			Publisher:     producer,
			MinLevel:      cfg.Logger.Collector.MinLevel,
		})
	}
	return l, l.RemoveCollector, nil
}

// ProvideCache creates the raw-series cache, or nil for backend "none".
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	newRedis := func() (*cache.RedisCache, error) {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	}

	var svc cache.Service
	switch cfg.Cache.Backend {
	case "none":
		return nil, func() {}, nil
	case "memory":
		svc = cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
			cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
			cache.WithMemoryCleanup(cfg.Cache.TTL),
		)
	case "redis":
		rc, err := newRedis()
		if err != nil {
			return nil, nil, err
		}
		svc = rc
	case "layered":
		rc, err := newRedis()
		if err != nil {
			return nil, nil, err
		}
		svc = cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
			cache.WithLayeredMemoryTTL(cfg.Cache.TTL/2),
		)
	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
	return svc, func() { _ = svc.Close() }, nil
}

// ProvidePriceStore opens the configured price backend and fronts it with
// the cache when one is configured.
func ProvidePriceStore(cfg *config.Config, l *applogger.Logger, m repository.Metrics, c cache.Service) (repository.PriceStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		store   repository.PriceStore
		cleanup = func() {}
	)
	switch cfg.Prices.Backend {
	case "csv":
		s := internalrepo.NewCSVPriceStore(cfg.Prices.CSVDir)
		s.SetLogger(l)
		s.SetMetrics(m)
		store = s
	case "sqlite":
		s, err := internalrepo.OpenSQLitePriceStore(ctx, cfg.Prices.SQLite.Path, cfg.Prices.SQLite.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite price store: %w", err)
		}
		s.SetLogger(l)
		s.SetMetrics(m)
		store, cleanup = s, func() { _ = s.Close() }
	case "clickhouse":
		s, client, err := openClickHouseStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s.SetLogger(l)
		s.SetMetrics(m)
		store, cleanup = s, func() { _ = client.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown prices backend: %s", cfg.Prices.Backend)
	}

	if c == nil {
		return store, cleanup, nil
	}
	cached := internalrepo.NewCachedPriceStore(store, c, cfg.Prices.Backend, cfg.Cache.TTL)
	cached.SetLogger(l)
	cached.SetMetrics(m)
	return cached, cleanup, nil
}

func openClickHouseStore(ctx context.Context, cfg *config.Config) (*internalrepo.CHPriceStore, *pkgch.Client, error) {
	chCfg := cfg.Prices.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(chCfg.Host),
		pkgch.WithPort(chCfg.Port),
		pkgch.WithDatabase(chCfg.Database),
		pkgch.WithCredentials(chCfg.User, chCfg.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(chCfg.UseHTTP),
		pkgch.WithTimeouts(chCfg.DialTimeout, chCfg.ReadTimeout, chCfg.WriteTimeout),
		pkgch.WithMaxExecutionTime(chCfg.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	store, err := internalrepo.NewCHPriceStore(client, chCfg.Table)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse price store: %w", err)
	}
	if err := client.EnsureDatabase(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if err := client.InitSchema(ctx, store.Schema()); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, client, nil
}

// ProvideEventPublisher publishes analytics events to Kafka, or returns nil
// when Kafka is disabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideCatalog loads the catalog file, or the built-in list when none is configured.
func ProvideCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

func ProvideAssetCatalog(c *catalog.Catalog) service.AssetCatalog { return c }

// ProvideProjectionEngine seeds the engine when analytics.seed is set.
func ProvideProjectionEngine(cfg *config.Config, l *applogger.Logger) *projection.Engine {
	opts := []projection.Option{projection.WithPaths(cfg.Analytics.Paths)}
	if cfg.Analytics.Seed != nil {
		opts = append(opts, projection.WithSeed(*cfg.Analytics.Seed))
		l.Info("projection engine seeded", applogger.Uint64("seed", *cfg.Analytics.Seed))
	}
	return projection.NewEngine(opts...)
}

func ProvidePortfolioAnalytics(
	cfg *config.Config,
	cat service.AssetCatalog,
	store repository.PriceStore,
	engine *projection.Engine,
	events repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PortfolioAnalytics {
	opts := []usecase.Option{
		usecase.WithMinOverlap(cfg.Analytics.MinOverlap),
		usecase.WithFillLimit(cfg.Analytics.FillLimit),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
	}
	if events != nil {
		opts = append(opts, usecase.WithEvents(events))
	}
	if cfg.Server.WriteTimeout > 0 {
		opts = append(opts, usecase.WithTimeout(cfg.Server.WriteTimeout))
	}
	return usecase.NewPortfolioAnalytics(cat, store, engine, opts...)
}

func ProvideAssetQueries(cat service.AssetCatalog) *usecase.AssetQueries {
	return usecase.NewAssetQueries(cat)
}

// ProvideHandlers lists every route group of the API.
func ProvideHandlers(l *applogger.Logger, assets *usecase.AssetQueries, analytics *usecase.PortfolioAnalytics) []xhttp.Handler {
	return []xhttp.Handler{
		api.NewHealthEchoHandler(),
		api.NewAssetsEchoHandler(l, assets, analytics),
		api.NewPortfolioEchoHandler(l, analytics),
	}
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

func ProvideHTTPServer(cfg *config.Config, handlers []xhttp.Handler, limiter *ratelimit.Limiter, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if limiter != nil {
		retry := time.Duration(float64(time.Second) / cfg.RateLimit.RPS)
		opts = append(opts, xhttp.WithRateLimit(limiter.Allow, retry))
	}
	return xhttp.NewServer(handlers, opts...)
}
