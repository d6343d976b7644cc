package measure

import (
	"math"
	"testing"

	"github.com/trailimage/trailmap/types/trackpoint"
)

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestEngine_WithUnits(t *testing.T) {
	e := New(Imperial)
	if e.EarthRadius() != RadiusMiles || e.ElevationConversion() != FeetPerMeter {
		t.Errorf("imperial engine has radius %v, conversion %v", e.EarthRadius(), e.ElevationConversion())
	}
	m := e.WithUnits(Metric)
	if m.EarthRadius() != RadiusKm || m.ElevationConversion() != 1 {
		t.Errorf("metric engine has radius %v, conversion %v", m.EarthRadius(), m.ElevationConversion())
	}
	if e.Units() != Imperial {
		t.Error("WithUnits must not modify the receiver")
	}
	var zero Engine
	if zero.EarthRadius() != RadiusMiles || zero.Units() != Imperial {
		t.Error("zero engine should be imperial")
	}
}

func TestEngine_Distance(t *testing.T) {
	e := New(Imperial)
	p := trackpoint.TrackPoint{Lon: -116.2, Lat: 43.6}
	if d := e.Distance(p, p); d != 0 {
		t.Errorf("distance to self should be 0, got %v", d)
	}

	equatorToPole := e.Distance(trackpoint.TrackPoint{Lon: 0, Lat: 0}, trackpoint.TrackPoint{Lon: 0, Lat: 90})
	if want := math.Pi * RadiusMiles / 2; !near(equatorToPole, want, 1e-6) {
		t.Errorf("equator to pole: want %v, got %v", want, equatorToPole)
	}
	if equatorToPole < 6200 || equatorToPole > 6230 {
		t.Errorf("equator to pole should be about 6,218 miles, got %v", equatorToPole)
	}

	km := e.WithUnits(Metric).Distance(trackpoint.TrackPoint{Lon: 0, Lat: 0}, trackpoint.TrackPoint{Lon: 0, Lat: 90})
	if want := math.Pi * RadiusKm / 2; !near(km, want, 1e-6) {
		t.Errorf("metric equator to pole: want %v, got %v", want, km)
	}
}

func TestEngine_Distance_Symmetric(t *testing.T) {
	e := New(Imperial)
	pts := []trackpoint.TrackPoint{
		{Lon: -116.2, Lat: 43.6},
		{Lon: -114.3, Lat: 44.1},
		{Lon: 2.35, Lat: 48.85},
		{Lon: 151.2, Lat: -33.9},
	}
	for i := range pts {
		for j := range pts {
			a, b := e.Distance(pts[i], pts[j]), e.Distance(pts[j], pts[i])
			if !near(a, b, 1e-9) {
				t.Errorf("distance not symmetric for %v, %v: %v != %v", pts[i], pts[j], a, b)
			}
			if a < 0 || math.IsNaN(a) {
				t.Errorf("distance must be non-negative, got %v", a)
			}
		}
	}
}

func TestEngine_Distance_Antipodal(t *testing.T) {
	e := New(Metric)
	d := e.Distance(trackpoint.TrackPoint{Lon: 0, Lat: 0}, trackpoint.TrackPoint{Lon: 180, Lat: 0})
	if math.IsNaN(d) {
		t.Fatal("antipodal distance is NaN")
	}
	if want := math.Pi * RadiusKm; !near(d, want, 1e-6) {
		t.Errorf("want %v, got %v", want, d)
	}
}

func TestPointToSegmentDistance(t *testing.T) {
	a := trackpoint.TrackPoint{Lon: 0, Lat: 0}
	b := trackpoint.TrackPoint{Lon: 2, Lat: 0}

	// Perpendicular foot inside the segment.
	if d := PointToSegmentDistance(trackpoint.TrackPoint{Lon: 1, Lat: 3}, a, b); !near(d, 9, 1e-12) {
		t.Errorf("want 9, got %v", d)
	}
	// Beyond b, clamped to b.
	if d := PointToSegmentDistance(trackpoint.TrackPoint{Lon: 5, Lat: 4}, a, b); !near(d, 25, 1e-12) {
		t.Errorf("want 25, got %v", d)
	}
	// Before a, clamped to a.
	if d := PointToSegmentDistance(trackpoint.TrackPoint{Lon: -3, Lat: 0}, a, b); !near(d, 9, 1e-12) {
		t.Errorf("want 9, got %v", d)
	}
	// Zero length segment.
	if d := PointToSegmentDistance(trackpoint.TrackPoint{Lon: 3, Lat: 4}, a, a); !near(d, 25, 1e-12) {
		t.Errorf("want 25, got %v", d)
	}
}

func TestEngine_Length(t *testing.T) {
	e := New(Imperial)
	if e.Length(nil) != 0 {
		t.Error("empty track length should be 0")
	}
	if e.Length(trackpoint.Track{{Lon: 1, Lat: 1}}) != 0 {
		t.Error("single point track length should be 0")
	}
	track := trackpoint.Track{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}, {Lon: 0, Lat: 2}}
	want := e.Distance(track[0], track[1]) + e.Distance(track[1], track[2])
	if got := e.Length(track); !near(got, want, 1e-9) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestDuration(t *testing.T) {
	if Duration(nil) != 0 || Duration(trackpoint.Track{{Time: 5}}) != 0 {
		t.Error("degenerate tracks have zero duration")
	}
	track := trackpoint.Track{{Time: 1000}, {Time: 5000}, {Time: 1000 + 90*60*1000}}
	if got := Duration(track); !near(got, 1.5, 1e-12) {
		t.Errorf("want 1.5 hours, got %v", got)
	}
}

func TestEngine_Speed(t *testing.T) {
	e := New(Imperial)
	p1 := trackpoint.TrackPoint{Lon: 0, Lat: 0, Time: 0}
	p2 := trackpoint.TrackPoint{Lon: 0, Lat: 1, Time: 60 * 60 * 1000}
	if got, want := e.Speed(p1, p2), e.Distance(p1, p2); !near(got, want, 1e-9) {
		t.Errorf("one hour apart: want %v, got %v", want, got)
	}
	if got := e.Speed(p2, p1); !near(got, e.Distance(p1, p2), 1e-9) {
		t.Errorf("speed should use absolute elapsed time, got %v", got)
	}

	same := p2
	same.Time = p1.Time
	if s := e.Speed(p1, same); s != 0 || math.IsInf(s, 0) {
		t.Errorf("zero elapsed time should give 0, got %v", s)
	}
	still := p1
	still.Time = 1000
	if s := e.Speed(p1, still); s != 0 {
		t.Errorf("zero distance should give 0, got %v", s)
	}
}

func TestEngine_WithSpeeds(t *testing.T) {
	e := New(Imperial)
	track := trackpoint.Track{
		{Lon: 0, Lat: 0, Time: 0, Speed: 99},
		{Lon: 0, Lat: 1, Time: 60 * 60 * 1000},
	}
	got := e.WithSpeeds(track)
	if got[0].Speed != 0 {
		t.Errorf("first point speed should be 0, got %v", got[0].Speed)
	}
	if !near(got[1].Speed, e.Distance(track[0], track[1]), 1e-9) {
		t.Errorf("unexpected speed %v", got[1].Speed)
	}
	if track[0].Speed != 99 || track[1].Speed != 0 {
		t.Error("input track was modified")
	}
}

func TestEngine_Elevation(t *testing.T) {
	if got := New(Imperial).Elevation(1000); got != 3281 {
		t.Errorf("want 3281 feet, got %d", got)
	}
	if got := New(Metric).Elevation(1000.4); got != 1000 {
		t.Errorf("want 1000 meters, got %d", got)
	}
	if got := New(Metric).Meters(1000); got != 1000 {
		t.Errorf("want 1000, got %v", got)
	}
}

func TestParseUnits(t *testing.T) {
	if u, err := ParseUnits("Metric"); err != nil || u != Metric {
		t.Errorf("want metric, got %v %v", u, err)
	}
	if u, err := ParseUnits(""); err != nil || u != Imperial {
		t.Errorf("empty should default to imperial, got %v %v", u, err)
	}
	if _, err := ParseUnits("furlongs"); err == nil {
		t.Error("want error for unknown units")
	}
}

func TestEngine_Distance_Triangle(t *testing.T) {
	e := New(Imperial)
	a := trackpoint.TrackPoint{Lon: -116.2, Lat: 43.6}
	b := trackpoint.TrackPoint{Lon: -114.3, Lat: 44.1}
	c := trackpoint.TrackPoint{Lon: -111.9, Lat: 40.8}
	if e.Distance(a, c) > e.Distance(a, b)+e.Distance(b, c)+1e-9 {
		t.Error("triangle inequality violated")
	}
}

func TestEngine_UnitsRoundTrip(t *testing.T) {
	e := New(Imperial).WithUnits(Metric).WithUnits(Imperial)
	if e.EarthRadius() != RadiusMiles {
		t.Errorf("want radius %v restored exactly, got %v", RadiusMiles, e.EarthRadius())
	}
	if e.ElevationConversion() != FeetPerMeter {
		t.Errorf("want conversion %v restored exactly, got %v", FeetPerMeter, e.ElevationConversion())
	}
}
