package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/lineart-prep/internal/analyzer"
	"github.com/anime-shed/lineart-prep/internal/config"
	"github.com/anime-shed/lineart-prep/internal/factory"
	"github.com/anime-shed/lineart-prep/internal/logger"
	"github.com/anime-shed/lineart-prep/internal/observer"
	"github.com/anime-shed/lineart-prep/internal/repository"
	"github.com/anime-shed/lineart-prep/internal/service"
	"github.com/anime-shed/lineart-prep/internal/storage"
	"github.com/anime-shed/lineart-prep/internal/transport"
)

// Option tweaks how the container builds the service
type Option func(*settings)

type settings struct {
	analyzerType factory.AnalyzerType
	serviceOpts  []service.Option
}

// WithAnalyzer selects the output analyzer
func WithAnalyzer(t factory.AnalyzerType) Option {
	return func(s *settings) {
		s.analyzerType = t
	}
}

// WithServiceOptions forwards extra options to the line-art service
func WithServiceOptions(opts ...service.Option) Option {
	return func(s *settings) {
		s.serviceOpts = append(s.serviceOpts, opts...)
	}
}

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageFetcher    storage.ImageFetcher
	blobStore       storage.ImageStore
	lineAnalyzer    analyzer.LineArtAnalyzer
	imageRepository repository.ImageRepository
	pool            *analyzer.WorkerPool
	events          *observer.EventPublisher
	metrics         *observer.MetricsObserver
	lineArtService  service.LineArtService
	handler         http.Handler
}

// NewContainerFromEnv loads configuration from the environment and builds
// the dependency graph
func NewContainerFromEnv(opts ...Option) (*Container, error) {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainer(cfg, opts...)
}

// NewContainer creates a new dependency injection container. The worker
// pool is started; call Close when done.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	s := settings{analyzerType: factory.StandardAnalyzer}
	for _, opt := range opts {
		opt(&s)
	}

	components := factory.NewComponentFactory(cfg)

	// Build dependency graph
	localStore, err := components.StorageFactory.CreateStore(factory.LocalStorage)
	if err != nil {
		return nil, err
	}
	imageFetcher := components.StorageFactory.CreateFetcher()

	var blobStore storage.ImageStore
	if cfg.AzureEnabled() {
		blobStore, err = components.StorageFactory.CreateStore(factory.AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure storage: %w", err)
		}
	}

	lineAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer(s.analyzerType)
	if err != nil {
		return nil, err
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	pool := analyzer.NewWorkerPool(cfg.Workers)
	pool.Start()

	imageRepository := repository.NewImageRepository(localStore, imageFetcher, blobStore)
	serviceOpts := append([]service.Option{service.WithProcessTimeout(cfg.ProcessTimeout)}, s.serviceOpts...)
	lineArtService := service.NewLineArtService(imageRepository, lineAnalyzer, pool, events, serviceOpts...)
	handler := transport.NewHandler(lineArtService, metrics, cfg)

	return &Container{
		config:          cfg,
		imageFetcher:    imageFetcher,
		blobStore:       blobStore,
		lineAnalyzer:    lineAnalyzer,
		imageRepository: imageRepository,
		pool:            pool,
		events:          events,
		metrics:         metrics,
		lineArtService:  lineArtService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the line-art service
func (c *Container) Service() service.LineArtService {
	return c.lineArtService
}

// Metrics returns the job counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close stops the worker pool
func (c *Container) Close() {
	c.pool.Close()
}
