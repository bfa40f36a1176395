package analyzer

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/chicogong/route-recorder/pkg/routemodel"
)

// Kind identifies a recognized route file format.
type Kind string

const (
	KindGPX Kind = "gpx"
	KindKML Kind = "kml"
)

// gpxDoc mirrors the subset of the GPX schema this analyzer reads:
// ordered track points with optional elevation and time.
type gpxDoc struct {
	XMLName xml.Name `xml:"gpx"`
	Tracks  []struct {
		Segments []struct {
			Points []struct {
				Lat  float64  `xml:"lat,attr"`
				Lon  float64  `xml:"lon,attr"`
				Ele  *float64 `xml:"ele"`
				Time *string  `xml:"time"`
			} `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

// kmlDoc mirrors the subset of KML this analyzer reads: the LineString
// coordinate list of each Placemark directly under Document, concatenated
// in document order, as "lon,lat[,ele]" triples separated by whitespace,
// with no per-point timestamps.
type kmlDoc struct {
	XMLName    xml.Name `xml:"kml"`
	Placemarks []struct {
		LineString struct {
			Coordinates string `xml:"coordinates"`
		} `xml:"LineString"`
	} `xml:"Document>Placemark"`
}

// Sniff peeks at a route file's root XML element to decide its kind
// without fully parsing it, mirroring a locate-then-invoke probe shape.
func Sniff(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ParseError("cannot open route file", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", ParseError("no recognizable root element", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "gpx":
			return KindGPX, nil
		case "kml":
			return KindKML, nil
		default:
			return "", ParseError(fmt.Sprintf("unrecognized root element %q", start.Name.Local), nil)
		}
	}
}

// parseFile dispatches to the GPX or KML point extractor based on kind.
func parseFile(path string, kind Kind) ([]routemodel.RoutePoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ParseError("cannot read route file", err)
	}

	switch kind {
	case KindGPX:
		return parseGPX(data)
	case KindKML:
		return parseKML(data)
	default:
		return nil, ParseError(fmt.Sprintf("unsupported kind %q", kind), nil)
	}
}

func parseGPX(data []byte) ([]routemodel.RoutePoint, error) {
	var doc gpxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, ParseError("malformed GPX document", err)
	}

	var points []routemodel.RoutePoint
	idx := 0
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				rp := routemodel.RoutePoint{
					Index: idx,
					Lat:   pt.Lat,
					Lon:   pt.Lon,
				}
				if pt.Ele != nil {
					rp.Elevation = pt.Ele
				}
				if pt.Time != nil {
					if t, err := time.Parse(time.RFC3339, *pt.Time); err == nil {
						rp.Timestamp = &t
					}
				}
				points = append(points, rp)
				idx++
			}
		}
	}

	return points, nil
}

func parseKML(data []byte) ([]routemodel.RoutePoint, error) {
	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, ParseError("malformed KML document", err)
	}

	var points []routemodel.RoutePoint
	idx := 0
	for _, pm := range doc.Placemarks {
		for _, triple := range splitCoordinates(pm.LineString.Coordinates) {
			points = append(points, routemodel.RoutePoint{
				Index:     idx,
				Lat:       triple.lat,
				Lon:       triple.lon,
				Elevation: triple.elev,
			})
			idx++
		}
	}

	return points, nil
}
