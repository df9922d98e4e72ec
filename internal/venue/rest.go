package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketstem/internal/asset"
	"marketstem/internal/depth"
	"marketstem/internal/marketdata"
	"marketstem/internal/stream"
)

// RESTSource is a Source backed by a venue gateway speaking the normalized
// JSON wire format over HTTP. One instance serves one venue.
type RESTSource struct {
	id         string
	baseURL    string
	httpClient *http.Client
	assets     *asset.Registry
	logger     *zap.Logger
}

func NewRESTSource(id, baseURL string, timeout time.Duration, assets *asset.Registry,
	logger *zap.Logger) *RESTSource {
	return &RESTSource{
		id:         id,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		assets:     assets,
		logger:     logger,
	}
}

func (c *RESTSource) ID() string { return c.id }

// Markets lists the venue's served markets. Symbols the registry cannot parse
// are skipped.
func (c *RESTSource) Markets(ctx context.Context) ([]*asset.Pair, error) {
	var result struct {
		Markets []string `json:"markets"`
	}
	if err := c.getJSON(ctx, "/markets", nil, &result); err != nil {
		return nil, err
	}

	markets := make([]*asset.Pair, 0, len(result.Markets))
	for _, symbol := range result.Markets {
		if market, ok := c.assets.ParsePair(symbol); ok {
			markets = append(markets, market)
		}
	}
	return markets, nil
}

func (c *RESTSource) Ticker(ctx context.Context, market *asset.Pair) (marketdata.Ticker, bool, error) {
	var result stream.TickerMessage
	if err := c.getJSON(ctx, "/ticker", marketQuery(market), &result); err != nil {
		return marketdata.Ticker{}, false, err
	}
	if result.Market == "" {
		return marketdata.Ticker{}, false, nil
	}

	result.Venue = c.id
	ticker, ok := stream.DecodeTicker(c.logger, c.assets, result)
	if !ok {
		return marketdata.Ticker{}, false, fmt.Errorf("undecodable ticker for %s", market)
	}
	return ticker, true, nil
}

func (c *RESTSource) Depth(ctx context.Context, market *asset.Pair) (*depth.Depth, bool, error) {
	var result stream.DepthMessage
	if err := c.getJSON(ctx, "/depth", marketQuery(market), &result); err != nil {
		return nil, false, err
	}
	if result.Market == "" {
		return nil, false, nil
	}

	builder := depth.NewBuilder(c.id, market)
	for _, level := range result.Bids {
		if err := builder.AddBidStrings(level[1], level[0]); err != nil {
			return nil, false, fmt.Errorf("bid level for %s: %w", market, err)
		}
	}
	for _, level := range result.Asks {
		if err := builder.AddAskStrings(level[1], level[0]); err != nil {
			return nil, false, fmt.Errorf("ask level for %s: %w", market, err)
		}
	}
	return builder.Build(), true, nil
}

func (c *RESTSource) Trades(ctx context.Context, market *asset.Pair, sinceID string) ([]marketdata.Trade, error) {
	query := marketQuery(market)
	if sinceID != "" {
		query.Set("since", sinceID)
	}

	var result struct {
		Trades []stream.TradeMessage `json:"trades"`
	}
	if err := c.getJSON(ctx, "/trades", query, &result); err != nil {
		return nil, err
	}

	trades := make([]marketdata.Trade, 0, len(result.Trades))
	for _, raw := range result.Trades {
		amount, err := decimal.NewFromString(raw.Amount)
		if err != nil {
			return nil, fmt.Errorf("trade amount for %s: %w", market, err)
		}
		price, err := decimal.NewFromString(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("trade price for %s: %w", market, err)
		}
		var ts time.Time
		if raw.Timestamp != 0 {
			ts = time.UnixMilli(raw.Timestamp)
		}
		trades = append(trades, marketdata.NewTrade(c.id, raw.TradeID, market, amount, price, ts))
	}
	return trades, nil
}

func (c *RESTSource) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("venue %s error: %s", c.id, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func marketQuery(market *asset.Pair) url.Values {
	query := url.Values{}
	query.Set("market", market.String())
	return query
}
