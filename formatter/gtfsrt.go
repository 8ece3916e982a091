package formatter

import (
	"strconv"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// BuildVehiclePositions renders every record of s as one entity of a
// GTFS-Realtime FeedMessage. Unlike a live feed, the exported sequence
// can carry the same vehicle many times, so entity ids are positional.
// The feed header timestamp is the latest record timestamp.
func BuildVehiclePositions(s LocationStream) *gtfsrt.FeedMessage {
	feed := &gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsrt.FeedHeader_FULL_DATASET.Enum(),
		},
	}

	var latest uint64
	for i := 0; s.Scan(); i++ {
		loc := s.Location()
		ts := uint64(loc.Timestamp)
		if ts > latest {
			latest = ts
		}

		trip := &gtfsrt.TripDescriptor{
			RouteId: proto.String(loc.Route),
		}
		if loc.Dir != nil {
			trip.TripId = proto.String(*loc.Dir)
		}

		feed.Entity = append(feed.Entity, &gtfsrt.FeedEntity{
			Id: proto.String(strconv.Itoa(i + 1)),
			Vehicle: &gtfsrt.VehiclePosition{
				Trip: trip,
				Vehicle: &gtfsrt.VehicleDescriptor{
					Id: proto.String(strconv.Itoa(loc.ID)),
				},
				Position: &gtfsrt.Position{
					Latitude:  proto.Float32(float32(loc.Lat)),
					Longitude: proto.Float32(float32(loc.Lon)),
					Bearing:   proto.Float32(float32(loc.Heading)),
					Speed:     proto.Float32(float32(loc.Speed) / 3.6),
				},
				Timestamp: proto.Uint64(ts),
			},
		})
	}
	feed.Header.Timestamp = proto.Uint64(latest)
	return feed
}

// MarshalVehiclePositions serializes the feed to protobuf wire format.
func MarshalVehiclePositions(feed *gtfsrt.FeedMessage) ([]byte, error) {
	return proto.Marshal(feed)
}
