package service

import (
	"context"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/gorm"

	"github.com/streamhub/streamhub/balances"
	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/db"
	"github.com/streamhub/streamhub/db/migrations"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/lnclient"
	"github.com/streamhub/streamhub/logger"
	"github.com/streamhub/streamhub/notifications"
	"github.com/streamhub/streamhub/pkg/version"
	"github.com/streamhub/streamhub/rates"
	"github.com/streamhub/streamhub/streams"
)

type service struct {
	cfg config.Config

	db               *gorm.DB
	lnClient         lnclient.LNClient
	streamsService   streams.StreamsService
	balancesSvc      balances.BalancesService
	ratesSvc         rates.RatesService
	notificationsSvc notifications.NotificationSink
	eventPublisher   events.EventPublisher
	ctx              context.Context
	appCancelFn      context.CancelFunc
}

func NewService(ctx context.Context) (*service, error) {
	// Load config from environment variables / .env file
	godotenv.Load(".env")
	appConfig := &config.AppConfig{}
	err := envconfig.Process("", appConfig)
	if err != nil {
		return nil, err
	}

	logger.Init(appConfig.LogLevel)
	logger.Logger.Info().Msg("Streamhub " + version.Tag)

	if appConfig.Workdir == "" {
		appConfig.Workdir = filepath.Join(xdg.DataHome, "/streamhub")
		logger.Logger.Info().Str("workdir", appConfig.Workdir).Msg("No workdir specified, using default")
	}
	// make sure workdir exists
	os.MkdirAll(appConfig.Workdir, os.ModePerm)

	if appConfig.LogToFile {
		err = logger.AddFileLogger(appConfig.Workdir)
		if err != nil {
			return nil, err
		}
	}

	var databaseUri = appConfig.DatabaseUri
	if !filepath.IsAbs(databaseUri) && databaseUri != ":memory:" {
		databaseUri = filepath.Join(appConfig.Workdir, databaseUri)
	}

	gormDB, err := db.NewDB(&db.Config{
		URI:        databaseUri,
		LogQueries: appConfig.LogDBQueries,
	})
	if err != nil {
		return nil, err
	}
	if err := migrations.Migrate(gormDB); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to migrate database")
		return nil, err
	}

	cfg, err := config.NewConfig(appConfig, gormDB)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create config")
		return nil, err
	}

	eventPublisher := events.NewEventPublisher()
	notificationsSvc := notifications.NewNotificationsService(eventPublisher)
	ratesSvc := rates.NewRatesService(cfg)

	svc := &service{
		cfg:              cfg,
		db:               gormDB,
		eventPublisher:   eventPublisher,
		notificationsSvc: notificationsSvc,
		ratesSvc:         ratesSvc,
		ctx:              ctx,
	}
	svc.streamsService = streams.NewStreamsService(ctx, gormDB, eventPublisher, notificationsSvc, ratesSvc)

	return svc, nil
}

func (svc *service) GetEventPublisher() events.EventPublisher {
	return svc.eventPublisher
}

func (svc *service) GetLNClient() lnclient.LNClient {
	return svc.lnClient
}

func (svc *service) GetStreamsService() streams.StreamsService {
	return svc.streamsService
}

func (svc *service) GetBalancesService() balances.BalancesService {
	return svc.balancesSvc
}

func (svc *service) GetRatesService() rates.RatesService {
	return svc.ratesSvc
}

func (svc *service) GetDB() *gorm.DB {
	return svc.db
}

func (svc *service) GetConfig() config.Config {
	return svc.cfg
}
