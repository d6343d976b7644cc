package rgeo

import (
	"errors"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	srgeo "github.com/sams96/rgeo"
)

// ReverseGeocoder labels a point with the polygons containing it.
type ReverseGeocoder interface {
	ReverseGeocode(pt orb.Point) (srgeo.Location, error)
}

var (
	Countries10 = srgeo.Countries10
	Provinces10 = srgeo.Provinces10
)

// datasets cover country and state or province, enough to label a trip.
var datasets = []func() []byte{
	Countries10,
	Provinces10,
}

var (
	once    sync.Once
	r       ReverseGeocoder
	initErr error
)

// R returns the shared geocoder, loading its datasets on first use.
// Loading takes a few seconds.
func R() (ReverseGeocoder, error) {
	once.Do(func() {
		var rg *srgeo.Rgeo
		rg, initErr = srgeo.New(datasets...)
		if initErr == nil {
			r = rg
		}
	})
	return r, initErr
}

// Place is a human label for where a track happened.
type Place struct {
	Country  string `json:"country,omitempty"`
	Province string `json:"province,omitempty"`
}

// String is "Province, Country", or whichever is known.
func (p Place) String() string {
	parts := []string{}
	for _, s := range []string{p.Province, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

var ErrNoPlace = errors.New("rgeo: no place for point")

// Locate labels pt using the shared geocoder.
func Locate(pt orb.Point) (Place, error) {
	g, err := R()
	if err != nil {
		return Place{}, err
	}
	return LocateWith(g, pt)
}

func LocateWith(g ReverseGeocoder, pt orb.Point) (Place, error) {
	loc, err := g.ReverseGeocode(pt)
	if err != nil {
		return Place{}, err
	}
	p := Place{Country: loc.Country, Province: loc.Province}
	if p.Country == "" {
		p.Country = loc.CountryLong
	}
	if p == (Place{}) {
		return p, ErrNoPlace
	}
	return p, nil
}
