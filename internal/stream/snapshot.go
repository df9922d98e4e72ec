package stream

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"marketstem/internal/aggregate"
	"marketstem/internal/depth"
	"marketstem/internal/marketdata"
)

// SnapshotMessage is the published form of an aggregate ticker snapshot.
type SnapshotMessage struct {
	Topic             string            `json:"topic"`
	Market            string            `json:"market"`
	VWAAsk            string            `json:"vwa_ask,omitempty"`
	VWABid            string            `json:"vwa_bid,omitempty"`
	VWALast           string            `json:"vwa_last,omitempty"`
	VWALastTrail      string            `json:"vwa_last_trail,omitempty"`
	Low               string            `json:"low,omitempty"`
	High              string            `json:"high,omitempty"`
	TotalVolume       string            `json:"total_volume"`
	VenueVolumes      map[string]string `json:"venue_volumes,omitempty"`
	AllMarketVolumes  map[string]string `json:"all_market_volumes,omitempty"`
	CrossMarketVolume string            `json:"cross_market_volume"`
	PriceTypeVolume   string            `json:"price_type_volume"`
	Timestamp         int64             `json:"ts"`
}

const TopicSnapshot = "aggregate_ticker"

// EncodeSnapshot serializes the snapshot for caching and pub/sub.
func EncodeSnapshot(snap aggregate.Snapshot) ([]byte, error) {
	msg := SnapshotMessage{
		Topic:             TopicSnapshot,
		Market:            snap.Market.String(),
		VWAAsk:            nullString(snap.VWAAsk),
		VWABid:            nullString(snap.VWABid),
		VWALast:           nullString(snap.VWALast),
		VWALastTrail:      nullString(snap.VWALast15Min),
		Low:               nullString(snap.Low),
		High:              nullString(snap.High),
		TotalVolume:       snap.TotalVolume.String(),
		CrossMarketVolume: snap.CrossMarketVolume.String(),
		PriceTypeVolume:   snap.PriceTypeVolume.String(),
		Timestamp:         snap.Timestamp.UnixMilli(),
	}
	if len(snap.VenueVolumes) > 0 {
		msg.VenueVolumes = make(map[string]string, len(snap.VenueVolumes))
		for venue, volume := range snap.VenueVolumes {
			msg.VenueVolumes[venue] = volume.String()
		}
	}
	if len(snap.AllMarketVolumes) > 0 {
		msg.AllMarketVolumes = make(map[string]string, len(snap.AllMarketVolumes))
		for market, volume := range snap.AllMarketVolumes {
			msg.AllMarketVolumes[market.String()] = volume.String()
		}
	}
	return json.Marshal(msg)
}

// EncodeDepth serializes a depth snapshot for pub/sub.
func EncodeDepth(d *depth.Depth) ([]byte, error) {
	msg := DepthMessage{
		Topic:     TopicDepth,
		Venue:     d.Venue(),
		Market:    d.Market().String(),
		Bids:      encodeLevels(d.Bids()),
		Asks:      encodeLevels(d.Asks()),
		Timestamp: d.Timestamp().UnixMilli(),
	}
	return json.Marshal(msg)
}

// EncodeTrade serializes a normalized trade for pub/sub.
func EncodeTrade(tr marketdata.Trade) ([]byte, error) {
	return json.Marshal(TradeMessage{
		Topic:     TopicTrade,
		Venue:     tr.Venue,
		Market:    tr.Market.String(),
		TradeID:   tr.ID,
		Amount:    tr.Amount.String(),
		Price:     tr.Price.String(),
		Timestamp: tr.Timestamp.UnixMilli(),
	})
}

func encodeLevels(orders []depth.Order) [][2]string {
	out := make([][2]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, [2]string{o.Amount.String(), o.Price.String()})
	}
	return out
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
