package api

import (
	"context"

	"github.com/streamhub/streamhub/streams"
)

type API interface {
	GetInfo(ctx context.Context) (*InfoResponse, error)
	GetBalance() *BalanceResponse
	CreateStream(req *streams.PrepareStreamRequest) (*StreamResponse, error)
	ListStreams() []StreamResponse
	GetStream(streamID string) (*StreamResponse, error)
	UpdateStream(streamID string, req *streams.UpdateStreamRequest) (*StreamResponse, error)
	StartStream(streamID string, force bool) error
	PauseStream(streamID string, persist bool) error
	PauseAllStreams()
	FinishStream(streamID string) error
	GetVersion(ctx context.Context) *VersionResponse
	UpdateSettings(req *UpdateSettingsRequest) error
}

type InfoResponse struct {
	Version     string `json:"version"`
	Network     string `json:"network"`
	NodeAlias   string `json:"nodeAlias"`
	NodePubkey  string `json:"nodePubkey"`
	BlockHeight uint32 `json:"blockHeight"`
	Currency    string `json:"currency"`
}

type BalanceResponse struct {
	SpendableMsat int64 `json:"spendableMsat"`
}

type VersionResponse struct {
	Version       string `json:"version"`
	LatestRelease string `json:"latestRelease,omitempty"`
}

type UpdateSettingsRequest struct {
	Currency string `json:"currency"`
}

type StreamResponse struct {
	streams.Stream
	PartsRecorded int64  `json:"partsRecorded"`
	TotalPaidMsat uint64 `json:"totalPaidMsat"`
}

type StartStreamRequest struct {
	Force bool `json:"force"`
}

type PauseStreamRequest struct {
	Persist *bool `json:"persist"`
}
