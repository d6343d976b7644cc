package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/types/trackpoint"
)

var track = trackpoint.Track{
	{Lon: -120.2, Lat: 38.5, Elevation: 3281},
	{Lon: -120.95, Lat: 40.7, Elevation: 0},
	{Lon: -126.453, Lat: 43.252, Elevation: 328},
}

func TestGeoJSON(t *testing.T) {
	f := GeoJSON("Kaniksu Loop", track)
	ls, ok := f.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, ls, 3)
	assert.Equal(t, orb.Point{-120.2, 38.5}, ls[0])
	assert.Equal(t, "Kaniksu Loop", f.Properties["name"])
	assert.Equal(t, 3, f.Properties["points"])

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"bbox":[-126.453,38.5,-120.2,43.252]`)
}

func TestGeoJSON_Empty(t *testing.T) {
	f := GeoJSON("", nil)
	assert.Nil(t, f.BBox)
	assert.Equal(t, 0, f.Properties["points"])
}

func TestBounds(t *testing.T) {
	assert.Equal(t, [2][2]float64{{-126.453, 38.5}, {-120.2, 43.252}}, Bounds(track))
}

func TestKML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, KML(&buf, measure.New(measure.Imperial), "Kaniksu Loop", track))
	out := buf.String()
	assert.Contains(t, out, "<kml")
	assert.Contains(t, out, "<name>Kaniksu Loop</name>")
	assert.Contains(t, out, "<LineString>")
	// 3281 ft is about 1000 m.
	assert.Contains(t, out, "-120.2,38.5,1000.")
	assert.Equal(t, 1, strings.Count(out, "<Placemark>"))
	assert.Contains(t, out, "<tessellate>")
	assert.NotContains(t, out, "altitudeMode")
}

func TestPolyline(t *testing.T) {
	// Reference from Google's encoded polyline algorithm documentation.
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", Polyline(track))

	got, err := DecodePolyline(Polyline(track))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, -126.453, got[2].Lon, 1e-5)
	assert.InDelta(t, 43.252, got[2].Lat, 1e-5)
}
