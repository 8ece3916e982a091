package nextbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const copyrightLine = `<body copyright="All data copyright Agency 2015.">`

func vehicleLine(id, secs string) string {
	return `<vehicle id="` + id + `" routeTag="55" dirTag="55_out" lat="42.93346" lon="-85.62123" secsSinceReport="` + secs + `" predictable="true" heading="265" speedKmHr="32"/>`
}

func TestParseBodyWorkedExample(t *testing.T) {
	body := []string{
		`<?xml version="1.0" encoding="utf-8" ?>`,
		copyrightLine,
		vehicleLine("1419", "2"),
		`<lastTime time="5000"/>`,
		`</body>`,
	}

	batch, err := ParseBody(body)
	require.NoError(t, err)
	require.NotNil(t, batch)

	// lastTime 5000ms -> 5.0s; freshest sample is 2s old, so the poll
	// happened at 7.0 and the vehicle reported at 5.0.
	assert.Equal(t, 7.0, batch.Timestamp)
	require.Len(t, batch.Locations, 1)

	loc := batch.Locations[0]
	assert.Equal(t, 5.0, loc.Timestamp)
	assert.Equal(t, 1419, loc.ID)
	assert.Equal(t, "55", loc.Route)
	require.NotNil(t, loc.Dir)
	assert.Equal(t, "55_out", *loc.Dir)
	assert.Equal(t, 42.93346, loc.Lat)
	assert.Equal(t, -85.62123, loc.Lon)
	assert.Equal(t, 265, loc.Heading)
	assert.Equal(t, 32, loc.Speed)
}

func TestParseBodyQueryTimeFromFreshestSample(t *testing.T) {
	body := []string{
		`<?xml version="1.0" encoding="utf-8" ?>`,
		copyrightLine,
		vehicleLine("1", "30"),
		vehicleLine("2", "10"),
		`<lastTime time="100000"/>`,
		`</body>`,
	}

	batch, err := ParseBody(body)
	require.NoError(t, err)
	require.NotNil(t, batch)

	assert.Equal(t, 110.0, batch.Timestamp)
	assert.Equal(t, 80.0, batch.Locations[0].Timestamp)
	assert.Equal(t, 100.0, batch.Locations[1].Timestamp)
}

func TestParseBodyKeepsLastHeaderSegment(t *testing.T) {
	body := []string{
		`<?xml version="1.0" encoding="utf-8" ?>`,
		copyrightLine,
		vehicleLine("9", "1"),
		`truncated garbage<?xml version="1.0" encoding="utf-8" ?>`,
		copyrightLine,
		vehicleLine("1419", "2"),
		`<lastTime time="5000"/>`,
		`</body>`,
	}

	batch, err := ParseBody(body)
	require.NoError(t, err)
	require.NotNil(t, batch)
	require.Len(t, batch.Locations, 1)
	assert.Equal(t, 1419, batch.Locations[0].ID)
}

func TestParseBodyErrorBatch(t *testing.T) {
	body := []string{
		`<?xml version="1.0" encoding="utf-8" ?>`,
		copyrightLine,
		`<Error shouldRetry="true">`,
		`Agency temporarily unavailable.`,
		`</Error>`,
		`</body>`,
	}

	batch, err := ParseBody(body)
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestParseBodyEmptyBatch(t *testing.T) {
	body := []string{
		`<?xml version="1.0" encoding="utf-8" ?>`,
		copyrightLine,
		`<lastTime time="5000"/>`,
		`</body>`,
	}

	batch, err := ParseBody(body)
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestParseBodyDirTagOptional(t *testing.T) {
	body := []string{
		`<?xml version="1.0" encoding="utf-8" ?>`,
		copyrightLine,
		`<vehicle id="7" routeTag="6" lat="42.9" lon="-85.6" secsSinceReport="3" heading="90" speedKmHr="0"/>`,
		`<lastTime time="9000"/>`,
		`</body>`,
	}

	batch, err := ParseBody(body)
	require.NoError(t, err)
	require.Len(t, batch.Locations, 1)
	assert.Nil(t, batch.Locations[0].Dir)
	assert.Equal(t, "", batch.Locations[0].DirString())
}

func TestParseBodyMalformed(t *testing.T) {
	tests := []struct {
		name string
		body []string
	}{
		{
			name: "no header line",
			body: []string{copyrightLine, `</body>`},
		},
		{
			name: "bad body element",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				`<notbody>`,
				`<lastTime time="1"/>`,
				`</body>`,
			},
		},
		{
			name: "missing closing body",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				`<lastTime time="1"/>`,
			},
		},
		{
			name: "unterminated error element",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				`<Error shouldRetry="true">`,
				`no closing tag`,
				`</body>`,
			},
		},
		{
			name: "bad lastTime",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				vehicleLine("1", "2"),
				`<lastTime time="soon"/>`,
				`</body>`,
			},
		},
		{
			name: "duplicate vehicle id",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				vehicleLine("1419", "2"),
				vehicleLine("1419", "4"),
				`<lastTime time="5000"/>`,
				`</body>`,
			},
		},
		{
			name: "missing required attribute",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				`<vehicle id="7" routeTag="6" lat="42.9" lon="-85.6" heading="90" speedKmHr="0"/>`,
				`<lastTime time="9000"/>`,
				`</body>`,
			},
		},
		{
			name: "repeated attribute",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				`<vehicle id="7" id="7" routeTag="6" lat="42.9" lon="-85.6" secsSinceReport="3" heading="90" speedKmHr="0"/>`,
				`<lastTime time="9000"/>`,
				`</body>`,
			},
		},
		{
			name: "unquoted attribute value",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				`<vehicle id="7" routeTag=6" lat="42.9" lon="-85.6" secsSinceReport="3" heading="90" speedKmHr="0"/>`,
				`<lastTime time="9000"/>`,
				`</body>`,
			},
		},
		{
			name: "not a vehicle element",
			body: []string{
				`<?xml version="1.0" encoding="utf-8" ?>`,
				copyrightLine,
				`<pigeon id="7"/>`,
				`<lastTime time="9000"/>`,
				`</body>`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseBody(tt.body)
			require.Error(t, err)
			assert.Nil(t, batch)

			var mErr *MalformedBodyError
			assert.True(t, errors.As(err, &mErr), "expected MalformedBodyError, got %T", err)
		})
	}
}
