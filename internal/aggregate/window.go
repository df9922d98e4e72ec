package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"marketstem/internal/num"
)

// meanWindow maintains a trailing mean over a time window. One sample is
// admitted per successful volume-weighted last computation; samples older
// than the window drop out of the mean. Callers synchronize access (the
// owning MarketTicker holds its lock).
type meanWindow struct {
	window  time.Duration
	samples []windowSample
	now     func() time.Time
}

type windowSample struct {
	at  time.Time
	val decimal.Decimal
}

func newMeanWindow(window time.Duration) *meanWindow {
	return &meanWindow{window: window, now: time.Now}
}

func (w *meanWindow) add(v decimal.Decimal) {
	w.prune()
	w.samples = append(w.samples, windowSample{at: w.now(), val: v})
}

func (w *meanWindow) mean() (decimal.Decimal, bool) {
	w.prune()
	if len(w.samples) == 0 {
		return decimal.Decimal{}, false
	}
	sum := decimal.Zero
	for _, s := range w.samples {
		sum = sum.Add(s.val)
	}
	return num.Divide(sum, decimal.NewFromInt(int64(len(w.samples))), num.DivisionScale), true
}

func (w *meanWindow) prune() {
	cutoff := w.now().Add(-w.window)
	expired := 0
	for _, s := range w.samples {
		if s.at.After(cutoff) {
			break
		}
		expired++
	}
	if expired > 0 {
		w.samples = append(w.samples[:0], w.samples[expired:]...)
	}
}
