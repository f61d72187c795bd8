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

// AviationstackClient is the secondary real source. Fare data is only present
// on some plans, so ErrNoQuote is the common answer and the resolver falls
// through to the next source.
type AviationstackClient struct {
	baseURL   string
	accessKey string
	client    *http.Client
	logger    *zap.Logger
}

func NewAviationstackClient(baseURL, accessKey string, timeout time.Duration, logger *zap.Logger) *AviationstackClient {
	return &AviationstackClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

func (c *AviationstackClient) Name() string { return "aviationstack" }

type aviationstackResponse struct {
	Data []struct {
		Price *float64 `json:"price"`
	} `json:"data"`
}

func (c *AviationstackClient) Quote(ctx context.Context, origin, dest, date string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("access_key", c.accessKey)
	params.Set("dep_iata", origin)
	params.Set("arr_iata", dest)
	params.Set("flight_date", date)
	endpoint := c.baseURL + "/v1/flights?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("aviationstack request failed", zap.String("origin", origin), zap.String("dest", dest), zap.Error(err))
		return decimal.Decimal{}, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return decimal.Decimal{}, fmt.Errorf("aviationstack: status %d", response.StatusCode)
	}

	var payload aviationstackResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, err
	}
	for _, flight := range payload.Data {
		if flight.Price != nil && *flight.Price > 0 {
			return decimal.NewFromFloat(*flight.Price).Round(2), nil
		}
	}
	return decimal.Decimal{}, domain.ErrNoQuote
}
