package formatter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVehicleMonitoring(t *testing.T) {
	res := BuildVehicleMonitoring(&sliceStream{locs: sampleLocations()}, "NB")

	sd := res.Siri.ServiceDelivery
	assert.Equal(t, "NB", sd.ProducerRef)
	require.Len(t, sd.VehicleMonitoringDelivery, 1)

	vm := sd.VehicleMonitoringDelivery[0]
	assert.Equal(t, "2015-12-09T17:12:43Z", vm.ResponseTimestamp)
	require.Len(t, vm.VehicleActivity, 2)

	first := vm.VehicleActivity[0].MonitoredVehicleJourney
	assert.Equal(t, "55", first.LineRef)
	assert.Equal(t, "55_out", first.DirectionRef)
	assert.Equal(t, "1419", first.VehicleRef)
	assert.True(t, first.Monitored)
	require.NotNil(t, first.VehicleLocation.Latitude)
	assert.InDelta(t, 42.93346, *first.VehicleLocation.Latitude, 1e-9)
	require.NotNil(t, first.Velocity)
	assert.Equal(t, 32, *first.Velocity)
	assert.Equal(t, "2015-12-09T17:12:41Z", vm.VehicleActivity[0].RecordedAtTime)

	second := vm.VehicleActivity[1].MonitoredVehicleJourney
	assert.Equal(t, "", second.DirectionRef)
}

func TestMarshalVehicleMonitoringIsValidJSON(t *testing.T) {
	res := BuildVehicleMonitoring(&sliceStream{locs: sampleLocations()}, "")

	buf := MarshalVehicleMonitoring(res)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf, &decoded))
	assert.Contains(t, decoded, "Siri")
}
