package balances

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/streamhub/streamhub/lnclient"
	"github.com/streamhub/streamhub/logger"
)

const balancesRefreshInterval = time.Minute

// BalancesService caches the node's spendable channel balance so the stream
// scheduler can check the funds precondition without a node round trip on
// every part.
type BalancesService interface {
	CurrentSpendableBalance() int64
	Refresh()
	Start(ctx context.Context)
}

type balancesService struct {
	lnClient      lnclient.LNClient
	ctx           context.Context
	spendableMsat atomic.Int64
}

func NewBalancesService(ctx context.Context, lnClient lnclient.LNClient) *balancesService {
	svc := &balancesService{
		lnClient: lnClient,
		ctx:      ctx,
	}
	return svc
}

func (svc *balancesService) Start(ctx context.Context) {
	svc.ctx = ctx
	svc.sync()

	go func() {
		ticker := time.NewTicker(balancesRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				svc.sync()
			}
		}
	}()
}

func (svc *balancesService) CurrentSpendableBalance() int64 {
	return svc.spendableMsat.Load()
}

// Refresh triggers a re-sync without waiting for it.
func (svc *balancesService) Refresh() {
	go svc.sync()
}

func (svc *balancesService) sync() {
	balances, err := svc.lnClient.GetBalances(svc.ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to refresh balances")
		return
	}
	svc.spendableMsat.Store(balances.SpendableMsat)
	logger.Logger.Debug().Int64("spendable_msat", balances.SpendableMsat).Msg("Refreshed balances")
}
