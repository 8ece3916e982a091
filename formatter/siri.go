package formatter

import (
	"encoding/json"
	"strconv"
	"time"
)

// SiriResponse is the top-level SIRI response structure
type SiriResponse struct {
	Siri SiriServiceDelivery `json:"Siri"`
}

// SiriServiceDelivery wraps the ServiceDelivery element
type SiriServiceDelivery struct {
	ServiceDelivery ServiceDelivery `json:"ServiceDelivery"`
}

// ServiceDelivery carries the VM delivery for this export
type ServiceDelivery struct {
	ResponseTimestamp         string                      `json:"ResponseTimestamp"`
	ProducerRef               string                      `json:"ProducerRef,omitempty"`
	VehicleMonitoringDelivery []VehicleMonitoringDelivery `json:"VehicleMonitoringDelivery"`
}

// VehicleMonitoringDelivery represents the VehicleMonitoring delivery
type VehicleMonitoringDelivery struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef         string          `json:"LineRef"`
	DirectionRef    string          `json:"DirectionRef,omitempty"`
	Monitored       bool            `json:"Monitored"`
	VehicleLocation SiriCoordinates `json:"VehicleLocation"`
	Bearing         *float64        `json:"Bearing,omitempty"`
	Velocity        *int            `json:"Velocity,omitempty"`
	VehicleRef      string          `json:"VehicleRef"`
}

// SiriCoordinates represents the geographical location of a vehicle
type SiriCoordinates struct {
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
}

// BuildVehicleMonitoring wraps every record of s in a SIRI-VM
// ServiceDelivery. ProducerRef is the producing agency's codespace and
// may be empty.
func BuildVehicleMonitoring(s LocationStream, producerRef string) *SiriResponse {
	var activity []VehicleActivityEntry
	var latest float64
	for s.Scan() {
		loc := s.Location()
		if loc.Timestamp > latest {
			latest = loc.Timestamp
		}
		lat, lon := loc.Lat, loc.Lon
		bearing := float64(loc.Heading)
		velocity := loc.Speed
		activity = append(activity, VehicleActivityEntry{
			RecordedAtTime: iso8601(loc.Timestamp),
			MonitoredVehicleJourney: MonitoredVehicleJourney{
				LineRef:         loc.Route,
				DirectionRef:    loc.DirString(),
				Monitored:       true,
				VehicleLocation: SiriCoordinates{Latitude: &lat, Longitude: &lon},
				Bearing:         &bearing,
				Velocity:        &velocity,
				VehicleRef:      strconv.Itoa(loc.ID),
			},
		})
	}

	return &SiriResponse{
		Siri: SiriServiceDelivery{
			ServiceDelivery: ServiceDelivery{
				ResponseTimestamp: iso8601(latest),
				ProducerRef:       producerRef,
				VehicleMonitoringDelivery: []VehicleMonitoringDelivery{{
					ResponseTimestamp: iso8601(latest),
					VehicleActivity:   activity,
				}},
			},
		},
	}
}

// MarshalVehicleMonitoring serializes a SIRI response to JSON
func MarshalVehicleMonitoring(res *SiriResponse) []byte {
	b, _ := json.Marshal(res)
	return b
}

func iso8601(epochSeconds float64) string {
	return time.Unix(int64(epochSeconds), 0).UTC().Format(time.RFC3339)
}
