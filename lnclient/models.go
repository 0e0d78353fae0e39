package lnclient

import (
	"context"
	"errors"
	"fmt"
)

// LNClient is the payment channel gateway the stream scheduler drives. Only
// the operations the scheduler needs are modeled; everything else the node
// can do stays behind the node's own API.
type LNClient interface {
	// CreateInvoice requests an invoice payable to destination, keyed by memo
	// so settled payments can be correlated back to their stream.
	CreateInvoice(ctx context.Context, destination string, amountMsat int64, memo string) (*Invoice, error)
	SendPayment(ctx context.Context, paymentRequest string) (*PaymentReceipt, error)
	GetBalances(ctx context.Context) (*Balances, error)
	GetInfo(ctx context.Context) (*NodeInfo, error)
	Shutdown() error
}

type Invoice struct {
	PaymentRequest string
	PaymentHash    string
	AmountMsat     int64
}

type PaymentReceipt struct {
	ReceiptID string // payment hash of the settled payment
	Preimage  string
	FeeMsat   int64
}

type Balances struct {
	SpendableMsat int64
	TotalMsat     int64
}

type NodeInfo struct {
	Alias       string
	Pubkey      string
	Network     string
	BlockHeight uint32
}

const (
	GATEWAY_ERROR_OFFLINE  = "offline"
	GATEWAY_ERROR_REJECTED = "rejected"
	GATEWAY_ERROR_OTHER    = "other"
)

// GatewayError wraps a node failure with a coarse class the scheduler can act
// on without knowing the transport.
type GatewayError struct {
	Class string
	Err   error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (%s): %v", e.Class, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func NewGatewayError(class string, err error) error {
	return &GatewayError{Class: class, Err: err}
}

// ErrorClass extracts the gateway class from err, defaulting to other.
func ErrorClass(err error) string {
	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Class
	}
	return GATEWAY_ERROR_OTHER
}
