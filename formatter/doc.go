// Package formatter serializes accepted location streams.
//
// This package is organized into:
// - csv.go: the canonical CSV record stream and its inverse reader
// - gtfsrt.go: GTFS-Realtime VehiclePositions export (protobuf)
// - siri.go: SIRI VehicleMonitoring export (JSON)
//
// CSV serialization is done manually for precise control over the output
// format: the record stream uses no quoting or escaping.
package formatter
