// Package nextbus decodes archived captures of the NextBus
// vehicleLocations feed.
//
// The feed is polled periodically and the raw HTTP responses are appended
// to capture files. A capture is therefore a concatenation of response
// bodies, occasionally interleaved with HTML error pages and truncated
// retry fragments. The package frames that line stream into discrete
// bodies (Framer) and decodes each body into a query batch of vehicle
// locations with corrected absolute timestamps (ParseBody).
//
// The feed is not well-formed XML once truncation and concatenation are
// involved, so decoding is done line-by-line with strict shape checks
// rather than with an XML parser.
package nextbus
