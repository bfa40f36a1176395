package analyzer

import (
	"strconv"
	"strings"
)

type kmlTriple struct {
	lon, lat float64
	elev     *float64
}

// splitCoordinates parses a KML <coordinates> blob of whitespace- or
// newline-separated "lon,lat[,elev]" triples.
func splitCoordinates(raw string) []kmlTriple {
	var out []kmlTriple
	for _, tok := range strings.Fields(raw) {
		parts := strings.Split(tok, ",")
		if len(parts) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		t := kmlTriple{lon: lon, lat: lat}
		if len(parts) >= 3 {
			if e, err := strconv.ParseFloat(parts[2], 64); err == nil {
				t.elev = &e
			}
		}
		out = append(out, t)
	}
	return out
}
