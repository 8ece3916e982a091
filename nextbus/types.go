package nextbus

// Fields lists the record fields in canonical order. It is also the CSV
// header of the output format.
var Fields = []string{"timestamp", "id", "route", "dir", "lat", "lon", "heading", "speed"}

// VehicleLocation is one reported vehicle position. Timestamp is absolute
// epoch seconds; inside the parser it temporarily holds the feed-native
// secsSinceReport value until the batch's query time is known.
//
// Dir is nil when the feed omitted dirTag, which is distinct from an
// empty tag.
type VehicleLocation struct {
	Timestamp float64
	ID        int
	Route     string
	Dir       *string
	Lat       float64
	Lon       float64
	Heading   int
	Speed     int
}

// DirString returns the direction tag, or "" when absent.
func (l VehicleLocation) DirString() string {
	if l.Dir == nil {
		return ""
	}
	return *l.Dir
}

// Less orders locations field-wise: timestamp, id, route, dir, lat, lon,
// heading, speed. An absent dir orders before any present dir.
func (l VehicleLocation) Less(o VehicleLocation) bool {
	if l.Timestamp != o.Timestamp {
		return l.Timestamp < o.Timestamp
	}
	if l.ID != o.ID {
		return l.ID < o.ID
	}
	if l.Route != o.Route {
		return l.Route < o.Route
	}
	if (l.Dir == nil) != (o.Dir == nil) {
		return l.Dir == nil
	}
	if l.Dir != nil && *l.Dir != *o.Dir {
		return *l.Dir < *o.Dir
	}
	if l.Lat != o.Lat {
		return l.Lat < o.Lat
	}
	if l.Lon != o.Lon {
		return l.Lon < o.Lon
	}
	if l.Heading != o.Heading {
		return l.Heading < o.Heading
	}
	return l.Speed < o.Speed
}

// QueryBatch is the decoded result of one poll response: the absolute
// poll timestamp and the locations it reported. Vehicle IDs are unique
// within a batch.
type QueryBatch struct {
	Timestamp float64
	Locations []VehicleLocation
}
