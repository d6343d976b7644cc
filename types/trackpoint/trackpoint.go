package trackpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/trailimage/trailmap/common"
)

// Positions of the fields in the compact array form of a TrackPoint.
const (
	LONGITUDE = iota
	LATITUDE
	ELEVATION
	TIME
	SPEED
)

var ErrInvalidTrackPoint = errors.New("invalid track point")

// TrackPoint is a single recorded GPS fix.
// On the wire it is the compact array [lon, lat, ele, time, speed].
type TrackPoint struct {
	Lon float64
	Lat float64
	// Elevation is whole feet, or whole meters on a metric engine. 0 when absent.
	Elevation int
	// Time is milliseconds since the Unix epoch. 0 when absent.
	Time int64
	// Speed is derived from the previous point, 0 until computed.
	Speed float64
}

func (tp TrackPoint) Point() orb.Point {
	return orb.Point{tp.Lon, tp.Lat}
}

func FromPoint(pt orb.Point) TrackPoint {
	return TrackPoint{Lon: pt.Lon(), Lat: pt.Lat()}
}

// Validate rejects non-finite or out of range coordinates.
func (tp TrackPoint) Validate() error {
	if !common.IsFinite(tp.Lon) || !common.IsFinite(tp.Lat) {
		return fmt.Errorf("%w: non-finite coordinate [%v, %v]", ErrInvalidTrackPoint, tp.Lon, tp.Lat)
	}
	if tp.Lat < -90 || tp.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidTrackPoint, tp.Lat)
	}
	if tp.Lon < -180 || tp.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidTrackPoint, tp.Lon)
	}
	if !common.IsFinite(tp.Speed) {
		return fmt.Errorf("%w: non-finite speed", ErrInvalidTrackPoint)
	}
	return nil
}

// MarshalJSON writes the compact array form. Coordinates are rounded to
// six decimal places and speed to two.
func (tp TrackPoint) MarshalJSON() ([]byte, error) {
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, 0, 64)
	b = append(b, '[')
	b = append(b, common.FixedString(tp.Lon, common.GPSPrecision6)...)
	b = append(b, ',')
	b = append(b, common.FixedString(tp.Lat, common.GPSPrecision6)...)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(tp.Elevation), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, tp.Time, 10)
	b = append(b, ',')
	b = append(b, common.FixedString(tp.Speed, common.GPSPrecision2)...)
	b = append(b, ']')
	return b, nil
}

// UnmarshalJSON accepts arrays of two to five numbers. Missing trailing
// fields are left zero.
func (tp *TrackPoint) UnmarshalJSON(data []byte) error {
	var fields []float64
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTrackPoint, err)
	}
	if len(fields) < 2 || len(fields) > 5 {
		return fmt.Errorf("%w: want 2 to 5 fields, got %d", ErrInvalidTrackPoint, len(fields))
	}
	*tp = TrackPoint{Lon: fields[LONGITUDE], Lat: fields[LATITUDE]}
	if len(fields) > ELEVATION {
		tp.Elevation = common.Round(fields[ELEVATION])
	}
	if len(fields) > TIME {
		tp.Time = int64(fields[TIME])
	}
	if len(fields) > SPEED {
		tp.Speed = fields[SPEED]
	}
	return tp.Validate()
}

// Track is a time ordered series of points.
type Track []TrackPoint

func (t Track) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(t))
	for _, tp := range t {
		ls = append(ls, tp.Point())
	}
	return ls
}

// Bound is the smallest box containing every point. An empty track has a
// zero bound.
func (t Track) Bound() orb.Bound {
	if len(t) == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{Min: t[0].Point(), Max: t[0].Point()}
	for _, tp := range t[1:] {
		b = b.Extend(tp.Point())
	}
	return b
}

// MapBounds is the bound as [[swLon, swLat], [neLon, neLat]], the shape map
// clients expect for fitting a view.
func (t Track) MapBounds() [2][2]float64 {
	b := t.Bound()
	return [2][2]float64{
		{b.Min.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Max.Lat()},
	}
}

// Clone returns a copy that shares no backing array with t.
func (t Track) Clone() Track {
	if t == nil {
		return nil
	}
	out := make(Track, len(t))
	copy(out, t)
	return out
}
