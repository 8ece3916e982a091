package stitch

import (
	"sort"

	"github.com/theoremus-urban-solutions/nextbus-to-csv/nextbus"
)

// CollectBatches drives a framer over its whole input and decodes every
// body. This is the pipeline's one materialization point: batches arrive
// in capture order but must be replayed in query-timestamp order, so
// they are buffered here before SortBatches.
//
// A decode failure aborts the run. Bodies that yield no records (an
// <Error> element or an empty vehicle list) are counted against w when
// it is non-nil, as are error pages discarded by the framer.
func CollectBatches(fr *nextbus.Framer, w *WarningAggregator) ([]nextbus.QueryBatch, error) {
	if w != nil {
		fr.OnErrorPage = func(firstLine string) {
			w.Add(WarningErrorPage, firstLine)
		}
	}

	var batches []nextbus.QueryBatch
	for fr.Scan() {
		batch, err := nextbus.ParseBody(fr.Body())
		if err != nil {
			return nil, err
		}
		if batch == nil {
			if w != nil {
				w.Add(WarningErrorBatch, "")
			}
			continue
		}
		batches = append(batches, *batch)
	}
	if err := fr.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}

// SortBatches orders batches by query timestamp and each batch's records
// by the canonical field-wise key. This processing order is what the
// Deduplicator's out-of-order check is defined against.
func SortBatches(batches []nextbus.QueryBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].Timestamp < batches[j].Timestamp
	})
	for _, b := range batches {
		locs := b.Locations
		sort.SliceStable(locs, func(i, j int) bool {
			return locs[i].Less(locs[j])
		})
	}
}

// Stream is the pull-based sequence of accepted locations produced by
// replaying sorted batches through a Deduplicator.
type Stream struct {
	dedup   *Deduplicator
	batches []nextbus.QueryBatch
	batch   int
	next    int
	loc     nextbus.VehicleLocation
}

// NewStream returns a Stream over batches. The batches must already be
// ordered by SortBatches. The Deduplicator's history persists across
// streams created from it, matching one history per processing run.
func NewStream(dedup *Deduplicator, batches []nextbus.QueryBatch) *Stream {
	return &Stream{dedup: dedup, batches: batches}
}

// Scan advances to the next accepted location, skipping rejected
// duplicates. It returns false when every batch is exhausted.
func (s *Stream) Scan() bool {
	for s.batch < len(s.batches) {
		b := s.batches[s.batch]
		for s.next < len(b.Locations) {
			loc := b.Locations[s.next]
			s.next++
			if s.dedup.Accept(b.Timestamp, loc) {
				s.loc = loc
				return true
			}
		}
		s.batch++
		s.next = 0
	}
	return false
}

// Location returns the location found by the last call to Scan.
func (s *Stream) Location() nextbus.VehicleLocation {
	return s.loc
}

// Locations runs a framed input through the whole stitching pipeline and
// returns the accepted stream.
func Locations(fr *nextbus.Framer, dedup *Deduplicator) (*Stream, error) {
	batches, err := CollectBatches(fr, dedup.Warnings)
	if err != nil {
		return nil, err
	}
	SortBatches(batches)
	return NewStream(dedup, batches), nil
}
