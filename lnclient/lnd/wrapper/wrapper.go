package wrapper

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"os"

	"github.com/lightningnetwork/lnd/lnrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	macaroon "gopkg.in/macaroon.v2"
)

// LNDoptions holds the connection details for an lnd node. Cert and macaroon
// can each be given as a file path or directly as hex.
type LNDoptions struct {
	Address      string
	CertFile     string
	CertHex      string
	MacaroonFile string
	MacaroonHex  string
}

type LNDWrapper struct {
	conn   *grpc.ClientConn
	client lnrpc.LightningClient
}

func NewLNDclient(lndOptions LNDoptions) (*LNDWrapper, error) {
	if lndOptions.Address == "" {
		return nil, errors.New("lnd address is required")
	}

	macaroonHex, err := loadMacaroonHex(lndOptions)
	if err != nil {
		return nil, err
	}

	creds, err := loadTransportCredentials(lndOptions)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(
		lndOptions.Address,
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(&macaroonCredential{macaroonHex: macaroonHex}),
	)
	if err != nil {
		return nil, err
	}

	return &LNDWrapper{
		conn:   conn,
		client: lnrpc.NewLightningClient(conn),
	}, nil
}

func (wrapper *LNDWrapper) Close() error {
	return wrapper.conn.Close()
}

func (wrapper *LNDWrapper) GetInfo(ctx context.Context, req *lnrpc.GetInfoRequest, options ...grpc.CallOption) (*lnrpc.GetInfoResponse, error) {
	return wrapper.client.GetInfo(ctx, req, options...)
}

func (wrapper *LNDWrapper) AddInvoice(ctx context.Context, req *lnrpc.Invoice, options ...grpc.CallOption) (*lnrpc.AddInvoiceResponse, error) {
	return wrapper.client.AddInvoice(ctx, req, options...)
}

func (wrapper *LNDWrapper) SendPaymentSync(ctx context.Context, req *lnrpc.SendRequest, options ...grpc.CallOption) (*lnrpc.SendResponse, error) {
	return wrapper.client.SendPaymentSync(ctx, req, options...)
}

func (wrapper *LNDWrapper) ChannelBalance(ctx context.Context, req *lnrpc.ChannelBalanceRequest, options ...grpc.CallOption) (*lnrpc.ChannelBalanceResponse, error) {
	return wrapper.client.ChannelBalance(ctx, req, options...)
}

func loadMacaroonHex(lndOptions LNDoptions) (string, error) {
	if lndOptions.MacaroonHex != "" {
		return lndOptions.MacaroonHex, nil
	}
	if lndOptions.MacaroonFile == "" {
		return "", errors.New("lnd macaroon is required")
	}

	macaroonBytes, err := os.ReadFile(lndOptions.MacaroonFile)
	if err != nil {
		return "", err
	}
	// parse to fail early on a corrupt macaroon file
	mac := &macaroon.Macaroon{}
	if err := mac.UnmarshalBinary(macaroonBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(macaroonBytes), nil
}

func loadTransportCredentials(lndOptions LNDoptions) (credentials.TransportCredentials, error) {
	var certBytes []byte
	switch {
	case lndOptions.CertHex != "":
		var err error
		certBytes, err = hex.DecodeString(lndOptions.CertHex)
		if err != nil {
			return nil, err
		}
	case lndOptions.CertFile != "":
		var err error
		certBytes, err = os.ReadFile(lndOptions.CertFile)
		if err != nil {
			return nil, err
		}
	default:
		// no cert configured, trust the system pool
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}

	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(certBytes) {
		return nil, errors.New("failed to parse lnd TLS certificate")
	}
	return credentials.NewClientTLSFromCert(certPool, ""), nil
}

// macaroonCredential attaches the lnd macaroon to every RPC.
type macaroonCredential struct {
	macaroonHex string
}

func (c *macaroonCredential) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"macaroon": c.macaroonHex}, nil
}

func (c *macaroonCredential) RequireTransportSecurity() bool {
	return true
}
