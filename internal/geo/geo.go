// Package geo places the scene on the globe. Scene points are stored in
// EPSG:3857 (web mercator) so that the SQL backends can keep them as plain
// WKB without spatial extensions.
package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/interborough/transit/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseOrigin parses "long,lat" into a GeoOrigin.
func ParseOrigin(coords string) (core.GeoOrigin, error) {
	parts := strings.Split(coords, ",")
	if len(parts) != 2 {
		return core.GeoOrigin{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.GeoOrigin{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.GeoOrigin{}, ErrInvalidCoordinates
	}
	if long < -180 || long > 180 || lat < -85.06 || lat > 85.06 {
		return core.GeoOrigin{}, ErrInvalidCoordinates
	}
	return core.GeoOrigin{Longitude: long, Latitude: lat}, nil
}

// Coords3857From4326 creates a web mercator point from a longitude and latitude
func Coords3857From4326(longitude, latitude float64) (geom.Point, error) {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(y, 0) {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}}), nil
}

// Projector maps scene coordinates onto web mercator around an origin. Scene
// X runs east, scene +Z (the North direction of travel) runs north and
// scene Y is elevation.
type Projector struct {
	origin core.GeoOrigin
	ox, oy float64
	// mercator meters per scene unit at the origin latitude
	scale float64
	unit  float64
}

// NewProjector anchors the scene origin at origin. unitMeters is the
// ground length of one scene unit.
func NewProjector(origin core.GeoOrigin, unitMeters float64) (*Projector, error) {
	p, err := Coords3857From4326(origin.Longitude, origin.Latitude)
	if err != nil {
		return nil, err
	}
	xy, ok := p.XY()
	if !ok {
		return nil, ErrInvalidCoordinates
	}
	if unitMeters <= 0 {
		unitMeters = 1
	}
	return &Projector{
		origin: origin,
		ox:     xy.X,
		oy:     xy.Y,
		scale:  unitMeters / math.Cos(origin.Latitude*math.Pi/180),
		unit:   unitMeters,
	}, nil
}

// Origin returns the anchor.
func (p *Projector) Origin() core.GeoOrigin {
	return p.origin
}

// Point converts a scene position to an XYZ web mercator point; Z is the
// elevation in meters.
func (p *Projector) Point(v core.Vector3) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   p.xy(v),
		Z:    float64(v.Y) * p.unit,
		Type: geom.DimXYZ,
	})
}

func (p *Projector) xy(v core.Vector3) geom.XY {
	return geom.XY{
		X: p.ox + float64(v.X)*p.scale,
		Y: p.oy + float64(v.Z)*p.scale,
	}
}

// LonLat converts a scene position to longitude and latitude.
func (p *Projector) LonLat(v core.Vector3) (float64, float64) {
	xy := p.xy(v)
	f := wgs84.EPSG().Transform(3857, 4326)
	lon, lat, _ := f(xy.X, xy.Y, 0)
	return lon, lat
}

// TrackLine is the centre line of a track slot running from -depth to +depth.
func (p *Projector) TrackLine(slot core.TrackSlot, depth float32) geom.LineString {
	a := p.xy(core.Vector3{X: slot.Offset, Z: -depth})
	b := p.xy(core.Vector3{X: slot.Offset, Z: depth})
	seq := geom.NewSequence([]float64{a.X, a.Y, b.X, b.Y}, geom.DimXY)
	return geom.NewLineString(seq)
}
