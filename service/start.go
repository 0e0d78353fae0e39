package service

import (
	"context"
	"errors"

	"github.com/streamhub/streamhub/balances"
	"github.com/streamhub/streamhub/lnclient/lnd"
	"github.com/streamhub/streamhub/logger"
)

// StartApp connects to the node and resumes every stream the previous
// session left running.
func (svc *service) StartApp() error {
	if svc.lnClient != nil {
		return errors.New("app already started")
	}

	appCtx, cancelFn := context.WithCancel(svc.ctx)
	svc.appCancelFn = cancelFn

	env := svc.cfg.GetEnv()
	lnClient, err := lnd.NewLNDService(appCtx, env.LNDAddress, env.LNDCertFile, env.LNDCertHex, env.LNDMacaroonFile, env.LNDMacaroonHex)
	if err != nil {
		cancelFn()
		return err
	}
	svc.lnClient = lnClient

	svc.balancesSvc = balances.NewBalancesService(appCtx, lnClient)
	svc.balancesSvc.Start(appCtx)
	svc.ratesSvc.Start(appCtx)

	svc.streamsService.SetBackends(lnClient, svc.balancesSvc)

	// external payment activity invalidates the cached balance
	svc.eventPublisher.RegisterSubscriber(&balanceRefreshConsumer{balancesSvc: svc.balancesSvc})

	if err := svc.streamsService.LoadStreams(); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to load streams")
		return err
	}

	logger.Logger.Info().Msg("Streamhub started")
	return nil
}

// Shutdown pauses every timer without touching the durable statuses, so
// running streams resume on the next start, then releases the node.
func (svc *service) Shutdown() {
	svc.streamsService.PauseAllStreams(false)

	if svc.appCancelFn != nil {
		svc.appCancelFn()
	}
	if svc.lnClient != nil {
		if err := svc.lnClient.Shutdown(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shut down LN client")
		}
		svc.lnClient = nil
	}
	logger.Logger.Info().Msg("Streamhub exited")
}
