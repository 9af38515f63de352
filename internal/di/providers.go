package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/catalog"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/service/yahoo"
	"StockCast/internal/services/forecast"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
		Output:  cfg.Logger.Output,
		Service: "stockcast",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCache returns Redis fronted by an in-memory L1 when Redis is
// enabled and reachable, otherwise a plain in-memory cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) cache.Service {
	mem := func() cache.Service {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize), cache.WithMemoryDefaultTTL(cfg.Data.CacheTTL))
	}
	if !cfg.Cache.Redis.Enabled {
		return mem()
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 30*time.Second),
	)
	if err != nil {
		l.Warn("redis unavailable, using memory cache", applogger.String("addr", cfg.Cache.Redis.Addr), applogger.Error(err))
		return mem()
	}
	return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize))
}

// ProvideYahooClient creates the chart API client.
func ProvideYahooClient(cfg *config.Config) *yahoo.Client {
	c := yahoo.New(cfg.Data.BaseURL, cfg.Data.Range, cfg.Data.Interval,
		xhttp.WithTimeout(cfg.Data.Timeout),
		xhttp.WithHeader("User-Agent", cfg.Data.UserAgent),
	)
	c.SetRetry(cfg.Data.Retries, cfg.Data.Backoff)
	return c
}

// ProvideBarSource puts the cache in front of the provider.
func ProvideBarSource(client *yahoo.Client, c cache.Service, m *metrics.Recorder, l *applogger.Logger, cfg *config.Config) repository.BarSource {
	s := internalrepo.NewCachedBarSource(client, c, cfg.Data.CacheTTL, client.Range(), client.Interval())
	s.SetLogger(l)
	s.SetMetrics(m)
	return s
}

// ProvideForecastConfig maps the forecast section onto engine settings.
func ProvideForecastConfig(cfg *config.Config) forecast.Config {
	fc := forecast.DefaultConfig()
	f := cfg.Forecast
	fc.Folds = f.Folds
	fc.Rounds = f.Rounds
	fc.LearningRate = f.LearningRate
	fc.NumLeaves = f.NumLeaves
	fc.MinDataInLeaf = f.MinDataInLeaf
	fc.FeatureFraction = f.FeatureFraction
	fc.EarlyStoppingRounds = f.EarlyStoppingRounds
	fc.Seed = f.Seed
	fc.HorizonDays = f.HorizonDays
	fc.Decay = f.Decay
	fc.TopAttributions = f.TopAttributions
	if len(f.Features) > 0 {
		fc.Features = f.Features
	}
	return fc
}

// ProvideEngine creates the forecasting engine.
func ProvideEngine(fc forecast.Config, l *applogger.Logger, m *metrics.Recorder) *forecast.Engine {
	return forecast.NewEngine(fc, l, m)
}

// ProvideClickHouseArchive connects to ClickHouse and ensures the archive
// table. Returns nil when the archive is disabled.
func ProvideClickHouseArchive(cfg *config.Config, l *applogger.Logger) (*internalrepo.CHForecastArchive, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	table := cfg.ClickHouse.Table
	if cfg.ClickHouse.Database != "" {
		table = cfg.ClickHouse.Database + "." + table
	}
	archive, err := internalrepo.NewCHForecastArchive(client, table)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	archive.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cfg.ClickHouse.Database != "" {
		if err := client.InitSchema(ctx, []string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	if err := archive.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePredictUseCase wires the optional sinks into the predict flow.
func ProvidePredictUseCase(
	src repository.BarSource,
	engine *forecast.Engine,
	archive *internalrepo.CHForecastArchive,
	producer *pkgkafka.Producer,
	m *metrics.Recorder,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.PredictUseCase {
	var arch repository.ForecastArchive
	if archive != nil {
		arch = archive
	}
	var pub repository.ForecastPublisher
	if producer != nil {
		pub = internalrepo.NewKafkaForecastPublisher(producer, cfg.Kafka.Topic)
	}
	return usecase.NewPredictUseCase(src, engine, arch, pub, m, l, cfg.Forecast.ChartBars)
}

// ProvideSearchUseCase loads the embedded ticker catalog.
func ProvideSearchUseCase() (*usecase.SearchUseCase, error) {
	c, err := catalog.New()
	if err != nil {
		return nil, err
	}
	return usecase.NewSearchUseCase(c), nil
}

func ProvideCandlesUseCase(src repository.BarSource) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(src)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.PredictBurst, cfg.Server.PredictRate)
}

func ProvideHandler(
	l *applogger.Logger,
	predict *usecase.PredictUseCase,
	search *usecase.SearchUseCase,
	candles *usecase.CandlesUseCase,
	rl *ratelimit.Limiter,
) *api.ForecastEchoHandler {
	return api.NewForecastEchoHandler(l, predict, search, candles, rl)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.ForecastEchoHandler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
	)
}

// ProvideApp assembles the application and registers shutdown hooks.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	c cache.Service,
	archive *internalrepo.CHForecastArchive,
	producer *pkgkafka.Producer,
	rl *ratelimit.Limiter,
) *server.App {
	app := server.New(l, srv)

	if cfg.Logger.Collect.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logger.Collect.Interval,
			CountThreshold: cfg.Logger.Collect.CountThreshold,
			Topic:          cfg.Logger.Collect.Topic,
			Publisher:      producer,
		})
		app.OnShutdown("log collector", func() error {
			l.RemoveCollector()
			return nil
		})
	}

	app.Go(func(ctx context.Context) {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				rl.Prune()
			}
		}
	})

	app.OnShutdown("cache", c.Close)
	if archive != nil {
		app.OnShutdown("clickhouse", archive.Close)
	}
	if producer != nil {
		app.OnShutdown("kafka producer", producer.Close)
	}
	return app
}
