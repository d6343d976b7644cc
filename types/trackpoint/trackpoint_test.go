package trackpoint

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestTrackPoint_MarshalJSON(t *testing.T) {
	tp := TrackPoint{Lon: -116.123456789, Lat: 43.5, Elevation: 2750, Time: 1471710000000, Speed: 3.14159}
	b, err := json.Marshal(tp)
	if err != nil {
		t.Fatal(err)
	}
	want := `[-116.123457,43.5,2750,1471710000000,3.14]`
	if string(b) != want {
		t.Errorf("want %s, got %s", want, b)
	}
}

func TestTrackPoint_UnmarshalJSON(t *testing.T) {
	var tp TrackPoint
	if err := json.Unmarshal([]byte(`[-116.1,43.5,2750,1471710000000,3.5]`), &tp); err != nil {
		t.Fatal(err)
	}
	if tp.Lon != -116.1 || tp.Lat != 43.5 {
		t.Errorf("unexpected coordinates %v", tp.Point())
	}
	if tp.Elevation != 2750 {
		t.Errorf("want elevation 2750, got %d", tp.Elevation)
	}
	if tp.Time != 1471710000000 {
		t.Errorf("want time 1471710000000, got %d", tp.Time)
	}
	if tp.Speed != 3.5 {
		t.Errorf("want speed 3.5, got %v", tp.Speed)
	}
}

func TestTrackPoint_UnmarshalJSON_Short(t *testing.T) {
	var tp TrackPoint
	if err := json.Unmarshal([]byte(`[-116.1,43.5]`), &tp); err != nil {
		t.Fatal(err)
	}
	if tp.Elevation != 0 || tp.Time != 0 || tp.Speed != 0 {
		t.Errorf("missing fields should be zero, got %+v", tp)
	}
}

func TestTrackPoint_UnmarshalJSON_Invalid(t *testing.T) {
	for _, in := range []string{`[1]`, `[1,2,3,4,5,6]`, `{"lat":1}`, `[0,91]`, `[181,0]`} {
		var tp TrackPoint
		err := json.Unmarshal([]byte(in), &tp)
		if !errors.Is(err, ErrInvalidTrackPoint) {
			t.Errorf("%s: want ErrInvalidTrackPoint, got %v", in, err)
		}
	}
}

func TestTrackPoint_Validate(t *testing.T) {
	if err := (TrackPoint{Lon: math.NaN()}).Validate(); !errors.Is(err, ErrInvalidTrackPoint) {
		t.Errorf("NaN longitude should be invalid, got %v", err)
	}
	if err := (TrackPoint{Lon: 180, Lat: -90}).Validate(); err != nil {
		t.Errorf("boundary values are valid, got %v", err)
	}
}

func TestTrack_JSON(t *testing.T) {
	track := Track{
		{Lon: -116, Lat: 43, Elevation: 100, Time: 1000},
		{Lon: -116.5, Lat: 43.25, Elevation: 120, Time: 2000, Speed: 1.5},
	}
	b, err := json.Marshal(track)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `[[-116,43,100,1000,0],[-116.5,43.25,120,2000,1.5]]` {
		t.Errorf("unexpected encoding %s", b)
	}
	var got Track
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1] != track[1] {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestTrack_MapBounds(t *testing.T) {
	track := Track{{Lon: -116, Lat: 44}, {Lon: -115, Lat: 43}, {Lon: -117, Lat: 43.5}}
	got := track.MapBounds()
	want := [2][2]float64{{-117, 43}, {-115, 44}}
	if got != want {
		t.Errorf("want %v, got %v", want, got)
	}
	if (Track{}).MapBounds() != [2][2]float64{} {
		t.Error("empty track should have zero bounds")
	}
}

func TestTrack_Clone(t *testing.T) {
	track := Track{{Lon: 1, Lat: 1}}
	c := track.Clone()
	c[0].Lon = 2
	if track[0].Lon != 1 {
		t.Error("clone shares backing array")
	}
}
