package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/domain"
)

// SerpAPIClient queries Google Flights results through SerpAPI.
type SerpAPIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewSerpAPIClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *SerpAPIClient {
	return &SerpAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *SerpAPIClient) Name() string { return "serpapi" }

type serpAPIResponse struct {
	BestFlights []struct {
		Price float64 `json:"price"`
	} `json:"best_flights"`
}

func (c *SerpAPIClient) Quote(ctx context.Context, origin, dest, date string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", origin)
	params.Set("arrival_id", dest)
	params.Set("outbound_date", date)
	params.Set("currency", "MXN")
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + "/search?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("serpapi request failed", zap.String("origin", origin), zap.String("dest", dest), zap.Error(err))
		return decimal.Decimal{}, err
	}
	defer response.Body.Close()

	c.logger.Debug(
		"serpapi request complete",
		zap.String("origin", origin),
		zap.String("dest", dest),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return decimal.Decimal{}, fmt.Errorf("serpapi: status %d", response.StatusCode)
	}

	var payload serpAPIResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, err
	}
	if len(payload.BestFlights) == 0 || payload.BestFlights[0].Price <= 0 {
		return decimal.Decimal{}, domain.ErrNoQuote
	}
	return decimal.NewFromFloat(payload.BestFlights[0].Price).Round(2), nil
}
