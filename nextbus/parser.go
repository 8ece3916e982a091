package nextbus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HeaderMarker terminates the XML declaration line that opens every
// response body. Truncated retries can leave partial garbage on the same
// line, so bodies are matched on the suffix only.
const HeaderMarker = `<?xml version="1.0" encoding="utf-8" ?>`

var lastTimeRe = regexp.MustCompile(`^<lastTime time="([0-9]+)"/>$`)

// MalformedBodyError reports a structural validation failure in a framed
// body. It is fatal for the input source being processed.
type MalformedBodyError struct {
	Reason string
	Line   string
}

func (e *MalformedBodyError) Error() string {
	if e.Line == "" {
		return "malformed body: " + e.Reason
	}
	return fmt.Sprintf("malformed body: %s: %q", e.Reason, e.Line)
}

func malformed(reason, line string) error {
	return &MalformedBodyError{Reason: reason, Line: line}
}

// ParseBody decodes one framed body into a query batch.
//
// Only the segment from the last header line onward is authoritative;
// anything before it belongs to a truncated, retried capture. A body
// carrying an <Error> element, or one reporting no vehicles, yields
// (nil, nil). Timestamps on the returned locations are absolute epoch
// seconds, derived from the batch's lastTime and each vehicle's
// secsSinceReport.
func ParseBody(body []string) (*QueryBatch, error) {
	seg := lastHeaderSegment(body)
	if seg == nil {
		return nil, malformed("no header line", "")
	}
	if len(seg) < 3 {
		return nil, malformed("body too short", "")
	}

	open := strings.TrimSpace(seg[1])
	if !strings.HasPrefix(open, `<body copyright="`) || !strings.HasSuffix(open, `">`) {
		return nil, malformed("bad body element", seg[1])
	}
	if strings.TrimSpace(seg[len(seg)-1]) != "</body>" {
		return nil, malformed("missing closing body element", seg[len(seg)-1])
	}

	if strings.HasPrefix(strings.TrimSpace(seg[2]), `<Error shouldRetry="`) {
		if strings.TrimSpace(seg[len(seg)-2]) != "</Error>" {
			return nil, malformed("unterminated error element", seg[len(seg)-2])
		}
		return nil, nil
	}

	m := lastTimeRe.FindStringSubmatch(strings.TrimSpace(seg[len(seg)-2]))
	if m == nil {
		return nil, malformed("bad lastTime element", seg[len(seg)-2])
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, malformed("bad lastTime value", seg[len(seg)-2])
	}
	lastTime := float64(ms) / 1000.0

	seen := map[int]bool{}
	var locs []VehicleLocation
	for _, line := range seg[2 : len(seg)-2] {
		loc, err := parseVehicleLine(line)
		if err != nil {
			return nil, err
		}
		if seen[loc.ID] {
			return nil, malformed("duplicate vehicle id", line)
		}
		seen[loc.ID] = true
		locs = append(locs, loc)
	}
	if len(locs) == 0 {
		return nil, nil
	}

	// The smallest relative age is the freshest sample and pins the
	// batch's poll time.
	minRel := locs[0].Timestamp
	for _, loc := range locs[1:] {
		if loc.Timestamp < minRel {
			minRel = loc.Timestamp
		}
	}
	queryTS := lastTime + minRel
	for i := range locs {
		locs[i].Timestamp = queryTS - locs[i].Timestamp
	}
	return &QueryBatch{Timestamp: queryTS, Locations: locs}, nil
}

// lastHeaderSegment returns the suffix of body starting at the last line
// ending with HeaderMarker, or nil when no header line exists.
func lastHeaderSegment(body []string) []string {
	for i := len(body) - 1; i >= 0; i-- {
		if strings.HasSuffix(strings.TrimSpace(body[i]), HeaderMarker) {
			return body[i:]
		}
	}
	return nil
}

// parseVehicleLine decodes one <vehicle .../> line. The returned
// location's Timestamp holds the relative secsSinceReport value.
func parseVehicleLine(line string) (VehicleLocation, error) {
	var loc VehicleLocation

	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, `<vehicle id="`) || !strings.HasSuffix(t, `"/>`) {
		return loc, malformed("bad vehicle element", line)
	}

	attrs := map[string]string{}
	for _, attr := range strings.Fields(t[len("<vehicle ") : len(t)-len("/>")]) {
		parts := strings.Split(attr, "=")
		if len(parts) != 2 {
			return loc, malformed("bad attribute", line)
		}
		name, value := parts[0], parts[1]
		if _, dup := attrs[name]; dup {
			return loc, malformed("repeated attribute "+name, line)
		}
		if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
			return loc, malformed("unquoted attribute "+name, line)
		}
		attrs[name] = value[1 : len(value)-1]
	}

	for _, key := range []string{"secsSinceReport", "id", "routeTag", "lat", "lon", "heading", "speedKmHr"} {
		if _, ok := attrs[key]; !ok {
			return loc, malformed("missing attribute "+key, line)
		}
	}

	secs, err := strconv.Atoi(attrs["secsSinceReport"])
	if err != nil {
		return loc, malformed("bad secsSinceReport", line)
	}
	id, err := strconv.Atoi(attrs["id"])
	if err != nil {
		return loc, malformed("bad id", line)
	}
	lat, err := strconv.ParseFloat(attrs["lat"], 64)
	if err != nil {
		return loc, malformed("bad lat", line)
	}
	lon, err := strconv.ParseFloat(attrs["lon"], 64)
	if err != nil {
		return loc, malformed("bad lon", line)
	}
	heading, err := strconv.Atoi(attrs["heading"])
	if err != nil {
		return loc, malformed("bad heading", line)
	}
	speed, err := strconv.Atoi(attrs["speedKmHr"])
	if err != nil {
		return loc, malformed("bad speedKmHr", line)
	}

	loc = VehicleLocation{
		Timestamp: float64(secs),
		ID:        id,
		Route:     attrs["routeTag"],
		Lat:       lat,
		Lon:       lon,
		Heading:   heading,
		Speed:     speed,
	}
	if dir, ok := attrs["dirTag"]; ok {
		loc.Dir = &dir
	}
	return loc, nil
}
