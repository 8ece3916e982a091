package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/nextbus-to-csv/nextbus"
)

// LocationStream is the pull-based record sequence the encoders consume.
// *stitch.Stream and *CSVReader both satisfy it.
type LocationStream interface {
	Scan() bool
	Location() nextbus.VehicleLocation
}

// CSVHeader is the header line of the record stream format.
var CSVHeader = strings.Join(nextbus.Fields, ",")

// EncodeCSV renders one record as a CSV line without a trailing newline.
// Field values contain no delimiter; nothing is quoted or escaped. An
// absent dir renders as an empty field.
func EncodeCSV(loc nextbus.VehicleLocation) string {
	return strings.Join([]string{
		strconv.FormatFloat(loc.Timestamp, 'f', -1, 64),
		strconv.Itoa(loc.ID),
		loc.Route,
		loc.DirString(),
		strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		strconv.FormatFloat(loc.Lon, 'f', -1, 64),
		strconv.Itoa(loc.Heading),
		strconv.Itoa(loc.Speed),
	}, ",")
}

// WriteCSV writes the header line followed by every record of s.
func WriteCSV(w io.Writer, s LocationStream) error {
	if _, err := io.WriteString(w, CSVHeader+"\n"); err != nil {
		return err
	}
	for s.Scan() {
		if _, err := io.WriteString(w, EncodeCSV(s.Location())+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// CSVReader decodes a record stream back into locations, performing the
// inverse type conversions. Header lines are skipped wherever they
// appear, so concatenated streams decode cleanly.
type CSVReader struct {
	lines nextbus.LineScanner
	loc   nextbus.VehicleLocation
	err   error
}

// NewCSVReader returns a CSVReader pulling from lines.
func NewCSVReader(lines nextbus.LineScanner) *CSVReader {
	return &CSVReader{lines: lines}
}

// Scan advances to the next record. It returns false at end of input or
// on the first decode failure; check Err afterwards.
func (r *CSVReader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.lines.Scan() {
		line := strings.TrimRight(r.lines.Text(), "\n")
		if line == CSVHeader {
			continue
		}
		loc, err := decodeCSVLine(line)
		if err != nil {
			r.err = err
			return false
		}
		r.loc = loc
		return true
	}
	r.err = r.lines.Err()
	return false
}

// Location returns the record found by the last call to Scan.
func (r *CSVReader) Location() nextbus.VehicleLocation {
	return r.loc
}

// Err returns the first error encountered while decoding.
func (r *CSVReader) Err() error {
	return r.err
}

func decodeCSVLine(line string) (nextbus.VehicleLocation, error) {
	var loc nextbus.VehicleLocation

	fields := strings.Split(line, ",")
	if len(fields) != len(nextbus.Fields) {
		return loc, fmt.Errorf("csv record has %d fields, want %d: %q", len(fields), len(nextbus.Fields), line)
	}

	ts, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return loc, fmt.Errorf("bad timestamp in %q: %w", line, err)
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return loc, fmt.Errorf("bad id in %q: %w", line, err)
	}
	lat, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return loc, fmt.Errorf("bad lat in %q: %w", line, err)
	}
	lon, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return loc, fmt.Errorf("bad lon in %q: %w", line, err)
	}
	heading, err := strconv.Atoi(fields[6])
	if err != nil {
		return loc, fmt.Errorf("bad heading in %q: %w", line, err)
	}
	speed, err := strconv.Atoi(fields[7])
	if err != nil {
		return loc, fmt.Errorf("bad speed in %q: %w", line, err)
	}

	loc = nextbus.VehicleLocation{
		Timestamp: ts,
		ID:        id,
		Route:     fields[2],
		Lat:       lat,
		Lon:       lon,
		Heading:   heading,
		Speed:     speed,
	}
	if fields[3] != "" {
		dir := fields[3]
		loc.Dir = &dir
	}
	return loc, nil
}
