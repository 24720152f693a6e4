package app

import (
	"context"
	"io"
	"log"
	"time"

	"catalogsync_api/config"
	amazonservices "catalogsync_api/internal/amazon/business/services"
	"catalogsync_api/internal/amazon/business/services/feeds"
	amazonstorage "catalogsync_api/internal/amazon/storage"
	"catalogsync_api/internal/catalog/app/web"
	"catalogsync_api/internal/catalog/app/web/handlers"
	"catalogsync_api/internal/catalog/business"
	"catalogsync_api/internal/catalog/storage/repositories"
	shopifyclients "catalogsync_api/internal/shopify/pkg/clients"
	"catalogsync_api/migrations/infrastructure"
	catalogmigrations "catalogsync_api/migrations/marketplaces/catalog"
	"catalogsync_api/pkg/dbconnect"
	"catalogsync_api/pkg/dbconnect/migration"
	"catalogsync_api/pkg/logger"
)

const startupSyncTimeout = 10 * time.Minute

type CatalogServer struct {
	dbconnect.Database
	cfg    *config.AppConfig
	log    logger.Logger
	writer io.Writer
}

func NewCatalogServer(connector dbconnect.Database, cfg *config.AppConfig, writer io.Writer) *CatalogServer {
	_log := logger.NewLogger(writer, "[CatalogServer]")
	return &CatalogServer{Database: connector, cfg: cfg, log: _log, writer: writer}
}

func (s *CatalogServer) Run(addr string) {
	db, err := s.Connect()
	if err != nil {
		s.log.FatalLog("Error connecting to PostgreSQL: %s", err)
	}

	migrationApply := []migration.MigrationInterface{
		&infrastructure.CreateMigrationsSchema{},
		&infrastructure.CreateMigrationsTable{},
		&catalogmigrations.CreateCatalogSchema{},
		&catalogmigrations.CreateProductsTable{},
		&catalogmigrations.CreateFeedSubmissionsTable{},
	}
	for _, _migration := range migrationApply {
		if err := _migration.UpMigration(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}
	s.log.Log("Catalog migrations applied successfully!")

	shopifyClient := shopifyclients.NewProductsClient(s.cfg.Shopify, s.writer)
	productRepo := repositories.NewProductRepository(db)

	syncService := business.NewSyncService(shopifyClient, productRepo, s.writer, business.Config{
		PageSize:          business.DefaultPageSize,
		RequestsPerSecond: business.DefaultRequestsPerSecond,
	})

	tokenService := amazonservices.NewTokenService(s.cfg.Amazon, s.writer)
	submissionRepo := amazonstorage.NewFeedSubmissionRepository(db)
	feedService := feeds.NewFeedService(s.cfg.Amazon, tokenService, submissionRepo, s.writer)

	s.runStartupSync(syncService)

	productHandler := handlers.NewProductHandler(s.Database)
	syncHandler := handlers.NewSyncHandler(s.Database, syncService)
	feedHandler := handlers.NewFeedHandler(s.Database, feedService, s.cfg.Amazon.SellerID)

	web.SetupRoutes(addr, productHandler, syncHandler, feedHandler)
}

// runStartupSync brings the local catalog up to date before the API surface
// comes up. A failed run is logged, not fatal: the service can still serve
// the stored state and retry via POST /api/sync.
func (s *CatalogServer) runStartupSync(syncService *business.SyncService) {
	ctx, cancel := context.WithTimeout(context.Background(), startupSyncTimeout)
	defer cancel()

	report, err := syncService.Run(ctx)
	if err != nil {
		s.log.Log("Startup sync stopped early: %s", err)
	}
	if report != nil {
		s.log.Log("Startup sync %s processed %d records", report.RunID, report.Total())
	}
}
