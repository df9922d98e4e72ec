package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketstem/internal/metrics"
	"marketstem/internal/stream"
)

type assetView struct {
	Symbol string `json:"symbol"`
	Type   string `json:"type"`
	Scale  int32  `json:"scale"`
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	assets := s.assets.Assets()
	out := make([]assetView, 0, len(assets))
	for _, a := range assets {
		out = append(out, assetView{Symbol: a.Symbol(), Type: a.Type().String(), Scale: a.Scale()})
	}
	s.writeJSON(w, map[string]interface{}{"assets": out})
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	markets := s.book.Markets()
	out := make([]string, 0, len(markets))
	for _, market := range markets {
		out = append(out, market.String())
	}
	s.writeJSON(w, map[string]interface{}{"markets": out})
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	market, ok := s.assets.ParsePair(mux.Vars(r)["market"])
	if !ok {
		http.Error(w, "unknown market symbol", http.StatusBadRequest)
		return
	}

	snap, _, ok := s.book.SnapshotEither(market)
	if !ok {
		http.Error(w, "no data for market", http.StatusNotFound)
		return
	}

	payload, err := stream.EncodeSnapshot(snap)
	if err != nil {
		s.logger.Error("failed to encode snapshot", zap.Error(err))
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		http.Error(w, "from and to are required", http.StatusBadRequest)
		return
	}

	amount := decimal.NewFromInt(1)
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}
		amount = parsed
	}

	rate, ok := s.resolver.RateBetween(from, to)
	if !ok {
		metrics.ConversionRequests.WithLabelValues("unresolved").Inc()
		http.Error(w, "no conversion path", http.StatusNotFound)
		return
	}
	metrics.ConversionRequests.WithLabelValues("resolved").Inc()

	s.writeJSON(w, map[string]interface{}{
		"from":      rate.From.Symbol(),
		"to":        rate.To.Symbol(),
		"rate":      rate.Rate.String(),
		"volume":    rate.Volume.String(),
		"amount":    amount.String(),
		"converted": rate.Convert(amount, s.assets.Asset(from)).String(),
	})
}

func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	venue := query.Get("venue")
	market, ok := s.assets.ParsePair(query.Get("market"))
	if venue == "" || !ok {
		http.Error(w, "venue and market are required", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(query.Get("amount"))
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	symbol := query.Get("asset")
	if symbol == "" {
		http.Error(w, "asset is required", http.StatusBadRequest)
		return
	}
	settlement := s.assets.Asset(symbol)
	if !market.Contains(settlement) {
		http.Error(w, "asset must be one side of the market", http.StatusBadRequest)
		return
	}

	acquired, ok := s.depths.SimulateSpend(venue, market, amount, settlement)
	if !ok {
		http.Error(w, "book cannot absorb the spend amount", http.StatusNotFound)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"venue":      venue,
		"market":     market.String(),
		"spend":      amount.String(),
		"settlement": settlement.Symbol(),
		"acquired":   acquired.String(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	healthy := true
	if s.db != nil && !s.db.IsHealthy(ctx) {
		healthy = false
	}
	if s.cache != nil && s.cache.Ping(ctx) != nil {
		healthy = false
	}

	if !healthy {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
		return
	}
	s.writeJSON(w, map[string]interface{}{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}
