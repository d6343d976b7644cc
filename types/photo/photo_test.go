package photo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailimage/trailmap/testing/testdata"
)

func TestDecode_Photoset(t *testing.T) {
	photos, err := Decode(testdata.MustRead(testdata.Source_FlickrPhotoset))
	require.NoError(t, err)
	require.Len(t, photos, 3, "the photo at 0,0 has no location")

	assert.Equal(t, "29090185640", photos[0].ID)
	assert.Equal(t, "Priest Lake from the ridge", photos[0].Title)
	assert.True(t, photos[0].Primary)
	assert.Equal(t, orb.Point{-116.545, 48.315}, photos[0].Point())
	assert.Equal(t, time.Date(2016, 8, 20, 10, 19, 55, 0, time.UTC), photos[0].Taken)

	// Numeric coordinates are accepted too.
	assert.Equal(t, orb.Point{-116.52, 48.336}, photos[1].Point())
	assert.False(t, photos[1].Primary)
}

func TestDecode_Array(t *testing.T) {
	photos, err := Decode([]byte(`[
		{"id": "1", "title": "one", "latitude": "43.6", "longitude": "-116.2"},
		{"id": "2", "title": "two"}
	]`))
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "1", photos[0].ID)
	assert.True(t, photos[0].Taken.IsZero())
}

func TestDecode_FeatureCollection_RoundTrip(t *testing.T) {
	photos, err := Decode(testdata.MustRead(testdata.Source_FlickrPhotoset))
	require.NoError(t, err)

	b, err := json.Marshal(photos.FeatureCollection())
	require.NoError(t, err)

	again, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, photos, again)
}

func TestDecode_Unrecognized(t *testing.T) {
	for _, in := range []string{`not json`, `{"stat": "fail"}`, `42`} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrUnrecognized, in)
	}
}

func TestPhotos_SortByTaken(t *testing.T) {
	ps := Photos{
		{ID: "untimed"},
		{ID: "late", Taken: time.Date(2016, 8, 21, 0, 0, 0, 0, time.UTC)},
		{ID: "early", Taken: time.Date(2016, 8, 20, 0, 0, 0, 0, time.UTC)},
	}
	ps.SortByTaken()
	assert.Equal(t, []string{"early", "late", "untimed"}, []string{ps[0].ID, ps[1].ID, ps[2].ID})
}
