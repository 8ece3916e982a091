// Package archive opens captured feed archives as plain line streams.
//
// The parsing core only ever sees lines; this package hides the storage
// variants a capture can live in: plain files, gzip or bzip2 compressed
// files, directories of such files, tar archives (extracted through an
// external tar process), and concatenations of any of the above.
//
// Every Source must be closed. Failures of an external extraction
// process are only observable at close time, so callers must check the
// Close error after draining or abandoning a stream.
package archive
