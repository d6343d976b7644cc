// Package export renders tracks for map clients.
package export

import (
	"io"

	"github.com/paulmach/orb/geojson"
	"github.com/trailimage/trailmap/geo/measure"
	"github.com/trailimage/trailmap/types/trackpoint"
	"github.com/twpayne/go-kml"
	"github.com/twpayne/go-polyline"
)

// GeoJSON is the track as a LineString feature with its bbox set.
func GeoJSON(name string, track trackpoint.Track) *geojson.Feature {
	f := geojson.NewFeature(track.LineString())
	if len(track) > 0 {
		f.BBox = geojson.NewBBox(track.Bound())
	}
	f.Properties["name"] = name
	f.Properties["points"] = len(track)
	return f
}

// Bounds is [[swLon, swLat], [neLon, neLat]].
func Bounds(track trackpoint.Track) [2][2]float64 {
	return track.MapBounds()
}

// KML writes a document holding one tessellated LineString placemark.
// Altitudes are meters.
func KML(w io.Writer, e measure.Engine, name string, track trackpoint.Track) error {
	coords := make([]kml.Coordinate, 0, len(track))
	for _, tp := range track {
		coords = append(coords, kml.Coordinate{
			Lon: tp.Lon,
			Lat: tp.Lat,
			Alt: e.Meters(tp.Elevation),
		})
	}
	doc := kml.KML(
		kml.Document(
			kml.Name(name),
			kml.Placemark(
				kml.Name(name),
				kml.LineString(
					kml.Tessellate(true),
					kml.Coordinates(coords...),
				),
			),
		),
	)
	return doc.WriteIndent(w, "", "  ")
}

// Polyline is the Google encoded polyline of the track, at the usual 1e5
// precision.
func Polyline(track trackpoint.Track) string {
	coords := make([][]float64, 0, len(track))
	for _, tp := range track {
		coords = append(coords, []float64{tp.Lat, tp.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of Polyline. Elevation and time are lost.
func DecodePolyline(s string) (trackpoint.Track, error) {
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	track := make(trackpoint.Track, 0, len(coords))
	for _, c := range coords {
		track = append(track, trackpoint.TrackPoint{Lon: c[1], Lat: c[0]})
	}
	return track, nil
}
