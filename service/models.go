package service

import (
	"gorm.io/gorm"

	"github.com/streamhub/streamhub/balances"
	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/lnclient"
	"github.com/streamhub/streamhub/rates"
	"github.com/streamhub/streamhub/streams"
)

type Service interface {
	StartApp() error
	Shutdown()

	GetEventPublisher() events.EventPublisher
	GetLNClient() lnclient.LNClient
	GetStreamsService() streams.StreamsService
	GetBalancesService() balances.BalancesService
	GetRatesService() rates.RatesService
	GetDB() *gorm.DB
	GetConfig() config.Config
}
