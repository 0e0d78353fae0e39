package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/logger"
)

const ratesRefreshInterval = 5 * time.Minute

type RatesService interface {
	// FiatToMsat converts a fiat amount into msat at the cached rate.
	FiatToMsat(amountFiat float64, currency string) (int64, error)
	GetBitcoinRate(currency string) (float64, error)
	Start(ctx context.Context)
}

type ratesService struct {
	cfg config.Config

	ratesMtx  sync.Mutex
	rates     map[string]float64
	fetchedAt time.Time
}

func NewRatesService(cfg config.Config) *ratesService {
	return &ratesService{
		cfg:   cfg,
		rates: map[string]float64{},
	}
}

// Start fetches once and then keeps the cache warm in the background.
func (svc *ratesService) Start(ctx context.Context) {
	svc.refresh(ctx)

	go func() {
		ticker := time.NewTicker(ratesRefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				svc.refresh(ctx)
			}
		}
	}()
}

func (svc *ratesService) refresh(ctx context.Context) {
	url := strings.TrimSuffix(svc.cfg.GetMempoolApi(), "/") + "/v1/prices"

	client := &http.Client{
		Timeout: 30 * time.Second,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create price request")
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Logger.Error().Err(err).Str("url", url).Msg("Failed to fetch bitcoin prices")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Logger.Error().Str("status", resp.Status).Str("url", url).Msg("Bad status fetching bitcoin prices")
		return
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to read price response")
		return
	}

	var prices map[string]float64
	if err := json.Unmarshal(bodyBytes, &prices); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to parse price response")
		return
	}

	svc.ratesMtx.Lock()
	defer svc.ratesMtx.Unlock()
	for currency, price := range prices {
		if currency == "time" || price <= 0 {
			continue
		}
		svc.rates[currency] = price
	}
	svc.fetchedAt = time.Now()
	logger.Logger.Debug().Interface("rates", svc.rates).Msg("Refreshed bitcoin rates")
}

// GetBitcoinRate returns the cached fiat price of one bitcoin. A stale cache
// is served as-is: a slightly old rate beats failing the caller.
func (svc *ratesService) GetBitcoinRate(currency string) (float64, error) {
	svc.ratesMtx.Lock()
	defer svc.ratesMtx.Unlock()

	rate, found := svc.rates[currency]
	if !found {
		return 0, fmt.Errorf("no rate available for %s", currency)
	}
	return rate, nil
}

func (svc *ratesService) FiatToMsat(amountFiat float64, currency string) (int64, error) {
	rate, err := svc.GetBitcoinRate(currency)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(amountFiat / rate * constants.MSAT_PER_BTC)), nil
}
