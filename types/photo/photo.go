// Package photo decodes geotagged photo summaries into map features.
package photo

import (
	"errors"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"
)

var ErrUnrecognized = errors.New("photo: unrecognized document")

// flickrTimeLayout is Flickr's datetaken format, in the camera's local time.
const flickrTimeLayout = "2006-01-02 15:04:05"

type Photo struct {
	ID      string
	Title   string
	Taken   time.Time
	Lon     float64
	Lat     float64
	Primary bool
}

func (p Photo) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func (p Photo) HasLocation() bool {
	return !(p.Lon == 0 && p.Lat == 0) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p Photo) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.Point())
	f.ID = p.ID
	f.Properties["id"] = p.ID
	f.Properties["title"] = p.Title
	if !p.Taken.IsZero() {
		f.Properties["taken"] = p.Taken.Format(time.RFC3339)
	}
	f.Properties["primary"] = p.Primary
	return f
}

type Photos []Photo

func (ps Photos) Features() []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Feature())
	}
	return out
}

func (ps Photos) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = ps.Features()
	return fc
}

// SortByTaken orders photos oldest first, untimed photos last.
func (ps Photos) SortByTaken() {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Taken.IsZero() != ps[j].Taken.IsZero() {
			return !ps[i].Taken.IsZero()
		}
		return ps[i].Taken.Before(ps[j].Taken)
	})
}

// Decode reads a GeoJSON FeatureCollection of points, a Flickr photoset
// response, or a bare JSON array of Flickr photo summaries. Photos without
// a location are skipped.
func Decode(data []byte) (Photos, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrUnrecognized
	}
	root := gjson.ParseBytes(data)
	switch {
	case root.Get("type").String() == "FeatureCollection":
		return fromFeatures(root.Get("features")), nil
	case root.Get("photoset.photo").IsArray():
		return fromSummaries(root.Get("photoset.photo")), nil
	case root.Get("photos.photo").IsArray():
		return fromSummaries(root.Get("photos.photo")), nil
	case root.IsArray():
		return fromSummaries(root), nil
	}
	return nil, ErrUnrecognized
}

func fromFeatures(features gjson.Result) Photos {
	out := Photos{}
	features.ForEach(func(_, f gjson.Result) bool {
		if f.Get("geometry.type").String() != "Point" {
			return true
		}
		coords := f.Get("geometry.coordinates").Array()
		if len(coords) < 2 {
			return true
		}
		id := f.Get("properties.id").String()
		if id == "" {
			id = f.Get("id").String()
		}
		p := Photo{
			ID:      id,
			Title:   f.Get("properties.title").String(),
			Lon:     coords[0].Float(),
			Lat:     coords[1].Float(),
			Primary: f.Get("properties.primary").Bool(),
		}
		if taken := f.Get("properties.taken"); taken.Exists() {
			p.Taken, _ = time.Parse(time.RFC3339, taken.String())
		}
		if p.HasLocation() {
			out = append(out, p)
		}
		return true
	})
	return out
}

func fromSummaries(summaries gjson.Result) Photos {
	out := Photos{}
	summaries.ForEach(func(_, s gjson.Result) bool {
		p := Photo{
			ID:    s.Get("id").String(),
			Title: s.Get("title").String(),
			Lon:   s.Get("longitude").Float(),
			Lat:   s.Get("latitude").Float(),
			// isprimary is "1" or "0".
			Primary: s.Get("isprimary").String() == "1" || s.Get("isprimary").Bool(),
		}
		if taken := s.Get("datetaken").String(); taken != "" {
			p.Taken, _ = time.Parse(flickrTimeLayout, taken)
		}
		if p.HasLocation() {
			out = append(out, p)
		}
		return true
	})
	return out
}
