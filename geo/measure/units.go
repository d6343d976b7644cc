package measure

import (
	"fmt"
	"strings"
)

type Units int

const (
	Imperial Units = iota
	Metric
)

func (u Units) String() string {
	if u == Metric {
		return "metric"
	}
	return "imperial"
}

// DistanceLabel names the unit distances are measured in.
func (u Units) DistanceLabel() string {
	if u == Metric {
		return "km"
	}
	return "miles"
}

// ElevationLabel names the unit elevations are measured in.
func (u Units) ElevationLabel() string {
	if u == Metric {
		return "m"
	}
	return "ft"
}

func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "imperial", "english", "miles":
		return Imperial, nil
	case "metric", "si", "km":
		return Metric, nil
	}
	return Imperial, fmt.Errorf("unknown units %q", s)
}
