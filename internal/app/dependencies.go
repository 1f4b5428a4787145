package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/admission"
	"github.com/vladislavdragonenkov/bookorders/internal/catalog"
	"github.com/vladislavdragonenkov/bookorders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/bookorders/internal/health"
	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
	"github.com/vladislavdragonenkov/bookorders/internal/service/ordering"
	"github.com/vladislavdragonenkov/bookorders/internal/storage/memory"
	"github.com/vladislavdragonenkov/bookorders/internal/storage/postgres"
	"github.com/vladislavdragonenkov/bookorders/internal/version"
)

// pingOrderID не выдаётся генератором идентификаторов.
const pingOrderID int64 = 0

// runtimeDependencies — собранный граф зависимостей одного процесса.
type runtimeDependencies struct {
	repo          domain.OrderRepository
	store         *postgres.Store
	catalogClient *catalog.HTTPClient
	events        eventPipeline
	service       *ordering.Service
	health        *healthcheck.Handler
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	repo, store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	catalogClient := catalog.NewHTTPClient(cfg.Catalog.BaseURL, nil)
	gateway := catalog.NewGateway(catalogClient, cfg.Catalog,
		catalog.WithLogger(logger.WithField("component", "catalog-gateway")),
		catalog.WithMetrics(metrics.NewCatalogMetrics()),
	)

	ids := admission.NewSequenceGenerator()
	logger.WithField("id_node", ids.Node()).Debug("order id generator initialized")
	engine := admission.NewEngine(ids)

	pipeline := initPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)

	service := ordering.NewService(gateway, engine, repo,
		ordering.WithLogger(logger.WithField("component", "order-service")),
		ordering.WithMetrics(metrics.NewOrderMetrics()),
		ordering.WithPublisher(pipeline.publisher),
	)

	deps := &runtimeDependencies{
		repo:          repo,
		store:         store,
		catalogClient: catalogClient,
		events:        pipeline,
		service:       service,
		health:        healthcheck.NewHandler(version.GetVersion()),
	}
	deps.registerHealthCheckers()
	return deps, nil
}

func (d *runtimeDependencies) registerHealthCheckers() {
	if d.store != nil {
		d.health.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", d.store.Ready))
	} else {
		d.health.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", repositoryPing(d.repo)))
	}
	// Без каталога сервис жив, но все заказы отклоняются.
	d.health.RegisterChecker("catalog", healthcheck.NewOptionalChecker("catalog", d.catalogClient.Ping))
}

// repositoryPing проверяет доступность хранилища чтением заведомо
// отсутствующего заказа: стоимость не зависит от числа заказов.
func repositoryPing(repo domain.OrderRepository) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := repo.Get(ctx, pingOrderID)
		if err == nil || errors.Is(err, domain.ErrOrderNotFound) {
			return nil
		}
		return err
	}
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	closeKafka(d.events.producer, logger)
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}

// initStorage выбирает хранилище заказов по cfg.StorageDriver.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.OrderRepository, *postgres.Store, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory order storage")
		return memory.NewOrderRepository(), nil, nil
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres storage requires %s", envPostgresDSN)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN, postgres.WithMaxConns(cfg.PostgresMaxConns))
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		if err := store.CheckSchema(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		logger.Info("using postgres order storage")
		return postgres.NewOrderRepository(store), store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
