package depth

import (
	"sync"

	"github.com/shopspring/decimal"

	"marketstem/internal/asset"
)

// Store keeps the latest depth snapshot per venue and market and answers the
// market-order simulation query against it.
type Store struct {
	globalMu sync.RWMutex
	venues   map[string]*venueDepths
}

type venueDepths struct {
	mu       sync.Mutex
	byMarket map[*asset.Pair]*Depth
}

func NewStore() *Store {
	return &Store{venues: make(map[string]*venueDepths)}
}

// Put replaces the stored snapshot for the depth's venue and market.
func (s *Store) Put(d *Depth) {
	// Fast path: lock the per-venue store only.
	s.globalMu.RLock()
	vd, ok := s.venues[d.venue]
	s.globalMu.RUnlock()

	if !ok {
		s.globalMu.Lock()
		if vd, ok = s.venues[d.venue]; !ok {
			vd = &venueDepths{byMarket: make(map[*asset.Pair]*Depth)}
			s.venues[d.venue] = vd
		}
		s.globalMu.Unlock()
	}

	vd.mu.Lock()
	vd.byMarket[d.market] = d
	vd.mu.Unlock()
}

// Get returns the latest snapshot for the venue and market, if any.
func (s *Store) Get(venue string, market *asset.Pair) (*Depth, bool) {
	s.globalMu.RLock()
	vd, ok := s.venues[venue]
	s.globalMu.RUnlock()
	if !ok {
		return nil, false
	}

	vd.mu.Lock()
	defer vd.mu.Unlock()
	d, ok := vd.byMarket[market]
	return d, ok
}

// Markets lists the markets with a stored snapshot for the venue.
func (s *Store) Markets(venue string) []*asset.Pair {
	s.globalMu.RLock()
	vd, ok := s.venues[venue]
	s.globalMu.RUnlock()
	if !ok {
		return nil
	}

	vd.mu.Lock()
	defer vd.mu.Unlock()
	out := make([]*asset.Pair, 0, len(vd.byMarket))
	for market := range vd.byMarket {
		out = append(out, market)
	}
	return out
}

// SimulateSpend runs the market-order simulation against the stored snapshot
// for the venue and market. ok is false when no snapshot exists or the book
// cannot absorb the spend amount.
func (s *Store) SimulateSpend(venue string, market *asset.Pair, amount decimal.Decimal,
	settlement *asset.Asset) (decimal.Decimal, bool) {
	d, ok := s.Get(venue, market)
	if !ok {
		return decimal.Decimal{}, false
	}
	return d.SimulateSpend(amount, settlement)
}

// CountAll returns the total number of stored snapshots across all venues.
func (s *Store) CountAll() int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	total := 0
	for _, vd := range s.venues {
		vd.mu.Lock()
		total += len(vd.byMarket)
		vd.mu.Unlock()
	}
	return total
}
