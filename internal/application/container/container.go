// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/AtRiskMedia/flexibuilder-go/internal/application/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/repositories"
	domainservices "github.com/AtRiskMedia/flexibuilder-go/internal/domain/services"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/caching/stores"
	schema "github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/generative"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/persistence/document"
	"github.com/AtRiskMedia/flexibuilder-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	EditorService *services.EditorService
	LayoutService *services.LayoutService
	ExportService *services.ExportService
	MediaService  *services.MediaService
	AuthService   *services.AuthService

	// Domain Services
	PanelService     *domainservices.PropertyPanelService
	IntegrityService *domainservices.DocumentIntegrityService

	// Infrastructure Dependencies
	Catalog     *widgets.Catalog
	Sessions    *stores.SessionsStore
	Broadcaster *messaging.PreviewBroadcaster
	DB          *database.DB
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// Options selects the optional parts of the container.
type Options struct {
	// InMemory skips the database; documents live only as long as the process.
	InMemory bool
	// Logger overrides the logger built from config.
	Logger *logging.ChanneledLogger
}

// NewLogger builds the channeled logger described by config.
func NewLogger() (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.OutputToFile = config.LogToFile
	cfg.LogDirectory = config.LogDir
	cfg.JSONFormat = config.LogJSON
	cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
	return logging.NewChanneledLogger(cfg)
}

// NewContainer creates and wires all singleton services
func NewContainer(opts Options) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	perfTracker.OnAlert(func(a *performance.Alert) {
		logger.Alert().Warn(a.Message, "operation", a.Operation, "actual", a.Actual, "threshold", a.Threshold, "severity", a.Severity)
	})

	c := &Container{
		Catalog:     widgets.Default(),
		Logger:      logger,
		PerfTracker: perfTracker,
	}

	var (
		docRepo   repositories.DocumentRepository
		pubRepo   repositories.PublicationRepository
		mediaRepo repositories.MediaRepository
	)
	if !opts.InMemory {
		db, err := database.NewConnectionWithLogger(config.DBDriver, config.DBDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", config.DBDriver, err)
		}
		creator := schema.NewTableCreator(db.Dialect)
		if err := creator.CreateSchema(db.DB); err != nil {
			db.Close()
			return nil, err
		}
		if err := creator.SeedInitialContent(db.DB, config.DefaultDocumentID); err != nil {
			db.Close()
			return nil, err
		}
		c.DB = db
		docRepo = document.NewDocumentRepository(db, logger)
		pubRepo = document.NewPublicationRepository(db, logger)
		mediaRepo = document.NewMediaRepository(db, logger)
	}

	c.Sessions = stores.NewSessionsStore(config.MaxSessions, logger)
	c.Broadcaster = messaging.NewPreviewBroadcaster(logger, config.PreviewPingInterval, config.PreviewWriteTimeout)
	c.PanelService = domainservices.NewPropertyPanelService(c.Catalog)
	c.IntegrityService = domainservices.NewDocumentIntegrityService(c.Catalog)

	c.EditorService = services.NewEditorService(c.Sessions, docRepo, c.Catalog, c.Broadcaster, logger, perfTracker, config.HistoryCapacity)

	lemur := generative.NewLemurProvider(config.AAIAPIKey, config.AAIFinalModel, config.AAIMaxTokens, c.Catalog, logger)
	c.LayoutService = services.NewLayoutService(c.EditorService, lemur, generative.HeuristicProvider{}, config.GenerationTimeout, logger, perfTracker)

	mailer, err := email.NewService(config.ResendAPIKey, config.PublishFromEmail, config.PublishFromName)
	if err != nil {
		logger.Startup().Info("Publish notices disabled", "reason", err.Error())
	}
	c.ExportService = services.NewExportService(c.EditorService, pubRepo, mailer, config.PublishNotifyEmail, config.PublicURL, logger, perfTracker)

	processor := media.NewImageProcessor(config.MediaDir, config.MediaURLPrefix, config.MediaMaxWidth, config.ThumbnailWidth, config.WebPQuality)
	c.MediaService = services.NewMediaService(processor, mediaRepo, docRepo, c.IntegrityService, config.MediaURLPrefix, config.MaxUploadSizeMB, logger, perfTracker)

	c.AuthService, err = services.NewAuthService(logger, perfTracker, config.EditorPasswordHash, config.JWTSecret, config.TokenTTL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the database connection and log files.
func (c *Container) Close() error {
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	if cerr := c.Logger.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
