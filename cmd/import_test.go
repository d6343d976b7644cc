package cmd

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/trailimage/trailmap/geo/export"
	"github.com/trailimage/trailmap/params"
	"github.com/trailimage/trailmap/testing/testdata"
)

func TestOpenInput_gzip(t *testing.T) {
	data := testdata.MustRead(testdata.Source_KaniksuLoop)
	dir := t.TempDir()

	plain := filepath.Join(dir, "track.gpx")
	if err := os.WriteFile(plain, data, 0600); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	gzw.Write(data)
	gzw.Close()
	zipped := filepath.Join(dir, "track.gpx.gz")
	if err := os.WriteFile(zipped, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{plain, zipped} {
		in, err := openInput(name)
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(in)
		in.Close()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s: read differs from the fixture", name)
		}
	}

	if _, err := openInput(filepath.Join(dir, "missing.gpx")); err == nil {
		t.Error("want error for a missing file")
	}
}

func TestRunSimplify(t *testing.T) {
	config := params.DefaultTestConfig(t.TempDir())
	data := testdata.MustRead(testdata.Source_KaniksuLoop)

	var out bytes.Buffer
	if err := runSimplify(&out, bytes.NewReader(data), config, "geojson"); err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(out.Bytes(), "geometry.type").String(); got != "LineString" {
		t.Errorf("want LineString, got %q", got)
	}
	if got := gjson.GetBytes(out.Bytes(), "properties.name").String(); got != "Day One" {
		t.Errorf("unexpected name %q", got)
	}

	out.Reset()
	if err := runSimplify(&out, bytes.NewReader(data), config, "polyline"); err != nil {
		t.Fatal(err)
	}
	track, err := export.DecodePolyline(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(track) < 2 {
		t.Errorf("polyline has %d points", len(track))
	}

	out.Reset()
	if err := runSimplify(&out, bytes.NewReader(data), config, "summary"); err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(out.Bytes(), "points").Int(); got != 8 {
		t.Errorf("want 8 points, got %d", got)
	}

	out.Reset()
	if err := runSimplify(&out, bytes.NewReader(data), config, "kml"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "<LineString>") {
		t.Error("kml has no LineString")
	}

	if err := runSimplify(io.Discard, bytes.NewReader(data), config, "svg"); err == nil {
		t.Error("want error for an unknown format")
	}
}

func TestLoadConfig_env(t *testing.T) {
	t.Setenv("TRAILMAP_UNITS", "metric")
	t.Setenv("TRAILMAP_PRIVACY_CENTER", "-116.5,48.3")
	t.Setenv("TRAILMAP_DATADIR", t.TempDir())
	initConfig()

	config, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.Units != "metric" {
		t.Errorf("want metric, got %q", config.Units)
	}
	if len(config.PrivacyCenter) != 2 || config.PrivacyCenter[0] != -116.5 || config.PrivacyCenter[1] != 48.3 {
		t.Errorf("unexpected privacy center %v", config.PrivacyCenter)
	}
	if !config.PrivacyZone().Enabled() {
		t.Error("privacy zone should be enabled")
	}
	if config.MaxPointDeviationFeet != params.DefaultMapConfig.MaxPointDeviationFeet {
		t.Errorf("unexpected tolerance %v", config.MaxPointDeviationFeet)
	}

	t.Setenv("TRAILMAP_UNITS", "furlongs")
	if _, err := loadConfig(); err == nil {
		t.Error("want error for unknown units")
	}
}
