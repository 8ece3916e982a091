package stitch

import (
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/nextbus-to-csv/nextbus"
)

// Defaults for the duplicate predicate and history bound.
const (
	DefaultWindowSeconds     = 3.0
	DefaultCoordinateEpsilon = 1e-7
	DefaultHistoryDepth      = 3
)

// Deduplicator filters near-duplicate vehicle reports and flags
// out-of-order ones. It owns a rolling per-vehicle history of the most
// recently accepted locations; the history lives for one processing run
// and is mutated only by Accept.
//
// Not safe for concurrent use; the pipeline is strictly sequential.
type Deduplicator struct {
	// WindowSeconds is the timestamp skew within which two otherwise
	// equal reports are considered the same data point.
	WindowSeconds float64
	// CoordinateEpsilon bounds the lat/lon difference of equal reports.
	CoordinateEpsilon float64
	// HistoryDepth caps the per-vehicle history. A single stale sample
	// from the feed must not be compared against an unbounded past.
	HistoryDepth int

	Warnings *WarningAggregator

	history map[int][]nextbus.VehicleLocation
}

// NewDeduplicator returns a Deduplicator with the default tolerances.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		WindowSeconds:     DefaultWindowSeconds,
		CoordinateEpsilon: DefaultCoordinateEpsilon,
		HistoryDepth:      DefaultHistoryDepth,
	}
}

// Accept decides whether loc is new information. It returns false for a
// near-duplicate of any history entry; otherwise it appends loc to the
// vehicle's history and returns true. queryTS is the timestamp of the
// batch being processed and only feeds the out-of-order warning.
func (d *Deduplicator) Accept(queryTS float64, loc nextbus.VehicleLocation) bool {
	if d.history == nil {
		d.history = map[int][]nextbus.VehicleLocation{}
	}
	prevs := d.history[loc.ID]

	for _, prev := range prevs {
		if d.sameReport(loc, prev) {
			return false
		}
	}

	if n := len(prevs); n > 0 && loc.Timestamp <= prevs[n-1].Timestamp {
		d.warnOutOfOrder(queryTS, loc)
	}

	prevs = append(prevs, loc)
	if len(prevs) > d.HistoryDepth {
		prevs = prevs[1:]
	}
	d.history[loc.ID] = prevs
	return true
}

// sameReport reports whether loc and prev describe the same underlying
// sample. A stationary vehicle (speed 0) may report an arbitrary
// heading, so heading only counts when the vehicle is moving.
func (d *Deduplicator) sameReport(loc, prev nextbus.VehicleLocation) bool {
	return math.Abs(loc.Timestamp-prev.Timestamp) < d.WindowSeconds &&
		loc.Route == prev.Route &&
		math.Abs(loc.Lat-prev.Lat) < d.CoordinateEpsilon &&
		math.Abs(loc.Lon-prev.Lon) < d.CoordinateEpsilon &&
		loc.Speed == prev.Speed &&
		(loc.Heading == prev.Heading || loc.Speed == 0)
}

func (d *Deduplicator) warnOutOfOrder(queryTS float64, loc nextbus.VehicleLocation) {
	log.Warnf(`Out of order timestamp at query %s: id="%d" routeTag="%s" dirTag="%s" lat="%.7f" lon="%.7f" secsSinceReport="%d" predictable="true" heading="%d" speedKmHr="%d"`,
		time.Unix(int64(queryTS), 0).Format("2006-01-02 15:04:05"),
		loc.ID, loc.Route, loc.DirString(), loc.Lat, loc.Lon,
		int64(queryTS-loc.Timestamp), loc.Heading, loc.Speed)
	if d.Warnings != nil {
		d.Warnings.Add(WarningOutOfOrderTimestamp, loc.Route)
	}
}
