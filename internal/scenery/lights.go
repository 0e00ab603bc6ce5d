package scenery

import (
	"errors"
	"fmt"

	"github.com/interborough/transit/pkg/raster"
)

// ErrNoLightUnit is returned for ids that are neither a light unit nor an index into the unit table.
var ErrNoLightUnit = errors.New("no light unit")

// LightUnitFor maps an id to a light unit. A raw unit constant is used as-is,
// anything else indexes the unit table.
func LightUnitFor(id int) (raster.LightUnit, error) {
	if u := raster.LightUnit(id); id >= 0 && u.Valid() {
		return u, nil
	}
	if id < 0 || id >= len(raster.LightUnits) {
		return 0, fmt.Errorf("%w: %d", ErrNoLightUnit, id)
	}
	return raster.LightUnits[id], nil
}

// Spotlight holds the parameters of a fixed-function spotlight that also
// contributes ambient light.
type Spotlight struct {
	Position  [4]float32
	Direction [3]float32
	Cutoff    float32
	Exponent  float32
	Ambient   [4]float32
	Specular  [4]float32
	Diffuse   [4]float32
}

// Apply configures unit as a spotlight, then as an ambient light, then sets
// its colors, and enables it.
func (s Spotlight) Apply(r raster.Rasterizer, unit raster.LightUnit) {
	r.Light(unit, raster.Position, s.Position[:]...)
	r.Light(unit, raster.SpotDirection, s.Direction[:]...)
	r.Light(unit, raster.SpotCutoff, s.Cutoff)
	r.Light(unit, raster.SpotExponent, s.Exponent)
	r.Light(unit, raster.LinearAttenuation, 1)
	r.EnableLight(unit)

	r.Light(unit, raster.Position, s.Position[:]...)
	r.Light(unit, raster.SpotDirection, s.Direction[:]...)
	r.Light(unit, raster.Ambient, s.Ambient[:]...)
	r.EnableLight(unit)

	r.Light(unit, raster.Ambient, s.Ambient[:]...)
	r.Light(unit, raster.Specular, s.Specular[:]...)
	r.Light(unit, raster.Diffuse, s.Diffuse[:]...)
}
