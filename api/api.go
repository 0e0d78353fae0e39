package api

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/db/queries"
	"github.com/streamhub/streamhub/logger"
	"github.com/streamhub/streamhub/pkg/version"
	"github.com/streamhub/streamhub/service"
	"github.com/streamhub/streamhub/streams"
)

type api struct {
	db  *gorm.DB
	cfg config.Config
	svc service.Service
}

func NewAPI(svc service.Service, gormDB *gorm.DB, cfg config.Config) *api {
	return &api{
		db:  gormDB,
		cfg: cfg,
		svc: svc,
	}
}

func (api *api) GetInfo(ctx context.Context) (*InfoResponse, error) {
	info := &InfoResponse{
		Version:  version.GetTag(),
		Network:  api.cfg.GetNetwork(),
		Currency: api.cfg.GetCurrency(),
	}

	// the cached alias keeps the info endpoint useful while the node is down
	info.NodeAlias, _ = api.cfg.Get(config.NodeAliasKey, "")

	lnClient := api.svc.GetLNClient()
	if lnClient != nil {
		nodeInfo, err := lnClient.GetInfo(ctx)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to fetch node info")
		} else {
			info.NodePubkey = nodeInfo.Pubkey
			info.BlockHeight = nodeInfo.BlockHeight
			if nodeInfo.Alias != "" {
				info.NodeAlias = nodeInfo.Alias
				if err := api.cfg.SetUpdate(config.NodeAliasKey, nodeInfo.Alias); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to cache node alias")
				}
			}
		}
	}

	return info, nil
}

// GetVersion reports the running build and, when the release feed is
// reachable, the newest published release.
func (api *api) GetVersion(ctx context.Context) *VersionResponse {
	resp := &VersionResponse{Version: version.GetTag()}
	latestRelease, err := version.CheckForUpdate(ctx)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to check for update")
		return resp
	}
	resp.LatestRelease = latestRelease
	return resp
}

func (api *api) UpdateSettings(req *UpdateSettingsRequest) error {
	if req.Currency != "" {
		if !slices.Contains(constants.GetCurrencies(), req.Currency) {
			return fmt.Errorf("unsupported currency: %s", req.Currency)
		}
		if err := api.cfg.SetCurrency(req.Currency); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to update currency")
			return err
		}
	}
	return nil
}

func (api *api) GetBalance() *BalanceResponse {
	return &BalanceResponse{
		SpendableMsat: api.svc.GetBalancesService().CurrentSpendableBalance(),
	}
}

// CreateStream stages and commits a new stream. The stream starts paused;
// scheduling is a separate, explicit call.
func (api *api) CreateStream(req *streams.PrepareStreamRequest) (*StreamResponse, error) {
	streamsSvc := api.svc.GetStreamsService()
	stream, err := streamsSvc.PrepareStream(req)
	if err != nil {
		return nil, err
	}
	if err := streamsSvc.AddStream(stream); err != nil {
		return nil, err
	}
	// once committed the registry owns the staged record, so respond from a
	// copy instead of reading it unlocked
	committed, err := streamsSvc.GetStream(stream.StreamID)
	if err != nil {
		return nil, err
	}
	return api.toStreamResponse(committed), nil
}

func (api *api) ListStreams() []StreamResponse {
	all := api.svc.GetStreamsService().ListStreams()
	result := make([]StreamResponse, 0, len(all))
	for i := range all {
		result = append(result, *api.toStreamResponse(&all[i]))
	}
	return result
}

func (api *api) GetStream(streamID string) (*StreamResponse, error) {
	stream, err := api.svc.GetStreamsService().GetStream(streamID)
	if err != nil {
		return nil, err
	}
	return api.toStreamResponse(stream), nil
}

func (api *api) UpdateStream(streamID string, req *streams.UpdateStreamRequest) (*StreamResponse, error) {
	streamsSvc := api.svc.GetStreamsService()
	if err := streamsSvc.UpdateStream(streamID, req); err != nil {
		return nil, err
	}
	return api.GetStream(streamID)
}

func (api *api) StartStream(streamID string, force bool) error {
	return api.svc.GetStreamsService().StartStream(streamID, force)
}

func (api *api) PauseStream(streamID string, persist bool) error {
	return api.svc.GetStreamsService().PauseStream(streamID, persist)
}

func (api *api) PauseAllStreams() {
	api.svc.GetStreamsService().PauseAllStreams(true)
}

func (api *api) FinishStream(streamID string) error {
	return api.svc.GetStreamsService().FinishStream(streamID)
}

func (api *api) toStreamResponse(stream *streams.Stream) *StreamResponse {
	totals := queries.GetStreamTotals(api.db, stream.StreamID)
	return &StreamResponse{
		Stream:        *stream,
		PartsRecorded: totals.PartsRecorded,
		TotalPaidMsat: totals.TotalPaidMsat,
	}
}
