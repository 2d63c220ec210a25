package sla

import (
	"sort"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// ElapsedHours computes the active elapsed time between start and end in
// hours, subtracting the portions of hold intervals that overlap the window.
// An open-ended hold contributes up to end. The result is never negative;
// end before start yields 0 (clock skew is the caller's to log, not fatal).
//
// This is the only place elapsed-time arithmetic lives. Live queries pass
// now as end, recomputation of frozen metrics passes the freeze timestamp.
func ElapsedHours(start, end time.Time, holds []domain.HoldInterval) float64 {
	if !end.After(start) {
		return 0
	}
	total := end.Sub(start)
	for _, h := range NormalizeHolds(start, end, holds) {
		total -= h.End.Sub(h.Start)
	}
	if total < 0 {
		total = 0
	}
	return total.Hours()
}

// Window is a hold interval already clamped to the computation window.
type Window struct {
	Start time.Time
	End   time.Time
}

// NormalizeHolds clamps hold intervals to [start, end], resolves open-ended
// holds to end, drops empty windows and merges overlaps so no instant is
// subtracted twice.
func NormalizeHolds(start, end time.Time, holds []domain.HoldInterval) []Window {
	clipped := make([]Window, 0, len(holds))
	for _, h := range holds {
		hs := h.Start
		if hs.Before(start) {
			hs = start
		}
		he := end
		if h.End != nil && h.End.Before(end) {
			he = *h.End
		}
		if he.After(hs) {
			clipped = append(clipped, Window{Start: hs, End: he})
		}
	}
	if len(clipped) < 2 {
		return clipped
	}

	sort.Slice(clipped, func(i, j int) bool { return clipped[i].Start.Before(clipped[j].Start) })

	merged := clipped[:1]
	for _, h := range clipped[1:] {
		last := &merged[len(merged)-1]
		if !h.Start.After(last.End) {
			if h.End.After(last.End) {
				last.End = h.End
			}
			continue
		}
		merged = append(merged, h)
	}
	return merged
}
