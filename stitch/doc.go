// Package stitch reconciles decoded query batches into a single ordered
// stream of accepted vehicle locations.
//
// Batches are sorted by query timestamp and their records by a canonical
// field-wise key, then fed one record at a time through a Deduplicator
// that keeps a short rolling history per vehicle. Near-duplicate reports
// (NextBus server races skew timestamps by up to a few seconds) are
// rejected; stale out-of-order reports are accepted but flagged.
package stitch
