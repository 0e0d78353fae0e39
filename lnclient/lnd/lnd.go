package lnd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/lnrpc"
	decodepay "github.com/nbd-wtf/ln-decodepay"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/streamhub/streamhub/lnclient"
	"github.com/streamhub/streamhub/lnclient/lnd/wrapper"
	"github.com/streamhub/streamhub/logger"
)

type LNDService struct {
	client   *wrapper.LNDWrapper
	nodeInfo *lnclient.NodeInfo
	cancel   context.CancelFunc
	ctx      context.Context
	logger   zerolog.Logger
}

func NewLNDService(ctx context.Context, lndAddress, lndCertFile, lndCertHex, lndMacaroonFile, lndMacaroonHex string) (result lnclient.LNClient, err error) {
	lndClient, err := wrapper.NewLNDclient(wrapper.LNDoptions{
		Address:      lndAddress,
		CertFile:     lndCertFile,
		CertHex:      lndCertHex,
		MacaroonFile: lndMacaroonFile,
		MacaroonHex:  lndMacaroonHex,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create new LND client")
		return nil, err
	}

	var nodeInfo *lnclient.NodeInfo
	maxRetries := 5
	for i := range maxRetries {
		nodeInfo, err = fetchNodeInfo(ctx, lndClient)
		if err == nil {
			break
		}
		logger.Logger.Error().Err(err).
			Int("iteration", i).
			Msg("Failed to connect to LND, retrying in 2s")

		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			logger.Logger.Error().Err(ctx.Err()).Msg("Context cancelled during LND connection retries")
			return nil, ctx.Err()
		}
	}

	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to connect to LND on final attempt, not attempting further retries")
		return nil, err
	}

	lndCtx, cancel := context.WithCancel(ctx)

	lndService := &LNDService{
		client:   lndClient,
		nodeInfo: nodeInfo,
		cancel:   cancel,
		ctx:      lndCtx,
		logger:   logger.Logger.With().Str("backend", "LND").Logger(),
	}

	lndService.logger.Info().
		Str("alias", nodeInfo.Alias).
		Str("pubkey", nodeInfo.Pubkey).
		Msg("Connected to LND")

	return lndService, nil
}

func fetchNodeInfo(ctx context.Context, client *wrapper.LNDWrapper) (*lnclient.NodeInfo, error) {
	resp, err := client.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return nil, classifyError(err)
	}
	network := ""
	if len(resp.Chains) > 0 {
		network = resp.Chains[0].Network
	}
	return &lnclient.NodeInfo{
		Alias:       resp.Alias,
		Pubkey:      resp.IdentityPubkey,
		Network:     network,
		BlockHeight: resp.BlockHeight,
	}, nil
}

// CreateInvoice mints the invoice on the local node. lnd cannot create an
// invoice on behalf of a remote node, so the destination must be ourselves;
// a remote destination needs a gateway backend that can reach the payee.
func (svc *LNDService) CreateInvoice(ctx context.Context, destination string, amountMsat int64, memo string) (*lnclient.Invoice, error) {
	if destination != "" && destination != svc.nodeInfo.Pubkey {
		return nil, lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_REJECTED,
			fmt.Errorf("lnd backend can only create invoices for its own node, got destination %s", destination))
	}

	resp, err := svc.client.AddInvoice(ctx, &lnrpc.Invoice{
		ValueMsat: amountMsat,
		Memo:      memo,
	})
	if err != nil {
		svc.logger.Error().Err(err).Str("memo", memo).Msg("Failed to create invoice")
		return nil, classifyError(err)
	}

	return &lnclient.Invoice{
		PaymentRequest: resp.PaymentRequest,
		PaymentHash:    fmt.Sprintf("%x", resp.RHash),
		AmountMsat:     amountMsat,
	}, nil
}

func (svc *LNDService) SendPayment(ctx context.Context, paymentRequest string) (*lnclient.PaymentReceipt, error) {
	paymentRequest = strings.ToLower(paymentRequest)
	bolt11, err := decodepay.Decodepay(paymentRequest)
	if err != nil {
		svc.logger.Error().Err(err).Str("bolt11", paymentRequest).Msg("Failed to decode bolt11 invoice")
		return nil, lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_REJECTED, err)
	}
	if time.Now().After(time.Unix(int64(bolt11.CreatedAt+bolt11.Expiry), 0)) {
		return nil, lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_REJECTED, errors.New("this invoice has expired"))
	}

	resp, err := svc.client.SendPaymentSync(ctx, &lnrpc.SendRequest{
		PaymentRequest: paymentRequest,
	})
	if err != nil {
		svc.logger.Error().Err(err).Str("payment_hash", bolt11.PaymentHash).Msg("Failed to send payment")
		return nil, classifyError(err)
	}
	if resp.PaymentError != "" {
		svc.logger.Error().Str("payment_error", resp.PaymentError).Str("payment_hash", bolt11.PaymentHash).Msg("Payment rejected")
		return nil, lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_REJECTED, errors.New(resp.PaymentError))
	}

	var feeMsat int64
	if resp.PaymentRoute != nil {
		feeMsat = resp.PaymentRoute.TotalFeesMsat
	}

	return &lnclient.PaymentReceipt{
		ReceiptID: fmt.Sprintf("%x", resp.PaymentHash),
		Preimage:  fmt.Sprintf("%x", resp.PaymentPreimage),
		FeeMsat:   feeMsat,
	}, nil
}

func (svc *LNDService) GetBalances(ctx context.Context) (*lnclient.Balances, error) {
	resp, err := svc.client.ChannelBalance(ctx, &lnrpc.ChannelBalanceRequest{})
	if err != nil {
		return nil, classifyError(err)
	}

	var spendableMsat, totalMsat int64
	if resp.LocalBalance != nil {
		spendableMsat = int64(resp.LocalBalance.Msat)
		totalMsat = int64(resp.LocalBalance.Msat)
	}
	if resp.UnsettledLocalBalance != nil {
		totalMsat += int64(resp.UnsettledLocalBalance.Msat)
	}

	return &lnclient.Balances{
		SpendableMsat: spendableMsat,
		TotalMsat:     totalMsat,
	}, nil
}

func (svc *LNDService) GetInfo(ctx context.Context) (*lnclient.NodeInfo, error) {
	return fetchNodeInfo(ctx, svc.client)
}

func (svc *LNDService) Shutdown() error {
	svc.logger.Info().Msg("Closing LND connection")
	svc.cancel()
	return svc.client.Close()
}

// classifyError buckets grpc failures into the coarse gateway classes the
// scheduler reacts to.
func classifyError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_OTHER, err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_OFFLINE, err)
	case codes.InvalidArgument, codes.FailedPrecondition, codes.PermissionDenied, codes.Unauthenticated:
		return lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_REJECTED, err)
	default:
		return lnclient.NewGatewayError(lnclient.GATEWAY_ERROR_OTHER, err)
	}
}
