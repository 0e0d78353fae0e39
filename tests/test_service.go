package tests

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/streamhub/streamhub/db"
	"github.com/streamhub/streamhub/db/migrations"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/logger"
)

const MockLightningID = "02a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"
const MockPaymentHash = "5b61bd73f34f98c34e6c24eecd6b1b0e5cf24cb2ad1bc0f0e6a07e1bb1e48d2c"
const MockPaymentRequest = "lnbc10n1pn2s39pp55b61bd73f34f98c34e6c24eecd6b1b0e5cf24cb2ad1bc0qdqqcqzzsxqyz5vqsp5"

type TestService struct {
	DB             *gorm.DB
	EventPublisher events.EventPublisher
}

func CreateTestService(t *testing.T) (*TestService, error) {
	logger.Init("2")

	gormDB, err := db.NewDB(&db.Config{
		URI: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		return nil, err
	}
	if err := migrations.Migrate(gormDB); err != nil {
		return nil, err
	}

	return &TestService{
		DB:             gormDB,
		EventPublisher: events.NewEventPublisher(),
	}, nil
}

func (svc *TestService) Remove() {
	_ = db.Stop(svc.DB)
}
