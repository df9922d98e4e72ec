package stream

// Wire formats for market data flowing over the feed WebSocket. Numeric
// fields travel as strings to preserve decimal precision; empty strings mark
// absent statistics.

// TickerMessage is one venue's ticker for a market, e.g. topic "ticker".
type TickerMessage struct {
	Topic     string `json:"topic"`     // Subscription topic, e.g. "ticker"
	Venue     string `json:"exchange"`  // Reporting venue identifier
	Market    string `json:"market"`    // Market symbol, e.g. "BTC_USD"
	Last      string `json:"last,omitempty"`
	Bid       string `json:"bid,omitempty"`
	Ask       string `json:"ask,omitempty"`
	High      string `json:"high,omitempty"`
	Low       string `json:"low,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Timestamp int64  `json:"ts"` // Milliseconds since epoch
}

// DepthMessage is a full order book snapshot. Each level is an
// [amount, price] string pair, matching the upstream feed layout.
type DepthMessage struct {
	Topic     string      `json:"topic"`
	Venue     string      `json:"exchange"`
	Market    string      `json:"market"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
	Timestamp int64       `json:"ts"`
}

// TradeMessage is a single public trade.
type TradeMessage struct {
	Topic     string `json:"topic"`
	Venue     string `json:"exchange"`
	Market    string `json:"market"`
	TradeID   string `json:"trade_id,omitempty"`
	Amount    string `json:"amount"`
	Price     string `json:"price"`
	Timestamp int64  `json:"ts"`
}
