package scenery

import (
	"github.com/interborough/transit/internal/geometry"
	"github.com/interborough/transit/pkg/raster"
)

// Rolling stock dimensions.
const (
	CarLength    = 2.0
	CarHeight    = 1.1
	CarWidth     = 1.0
	CarsPerTrain = 10
	CarSpacing   = CarLength * 1.2

	WheelBaseRadius = 0.08
	WheelTopRadius  = 0.06
	WheelLength     = 0.05
	WheelSlices     = 32
	WheelStacks     = 32

	wheelOffsetX = 0.5
	wheelOffsetY = 0.5
	bodyLift     = 0.04
)

// RollingStock emits wheels, cars and trains. Wheels are tessellated by the
// shared quadric.
type RollingStock struct {
	Quadric *geometry.Quadric
	Body    geometry.Material
	Prisms  geometry.Prisms
}

// NewRollingStock creates a builder with the default car body material.
func NewRollingStock(q *geometry.Quadric) *RollingStock {
	return &RollingStock{Quadric: q, Body: geometry.Solid(CarBody)}
}

// EmitWheel emits one tapered wheel turned to face the direction of travel.
func (s *RollingStock) EmitWheel(r raster.Rasterizer) error {
	var err error
	raster.Scope(r, func() {
		r.Rotate(90, 0, 1, 0)
		r.Color(DarkGray)
		err = s.Quadric.Cylinder(r, WheelBaseRadius, WheelTopRadius, WheelLength)
	})
	return err
}

// EmitCar emits one car body with a wheel at each corner.
// carIndex and trainIndex identify the car but do not change its geometry.
func (s *RollingStock) EmitCar(r raster.Rasterizer, carIndex, trainIndex int) error {
	raster.Scope(r, func() {
		r.Translate(0, bodyLift, 0)
		s.Prisms.Emit(r, CarWidth, CarHeight, CarLength, s.Body)
	})

	corners := [4][3]float32{
		{-wheelOffsetX, -wheelOffsetY, CarLength / 2},
		{wheelOffsetX, -wheelOffsetY, CarLength / 2},
		{-wheelOffsetX, -wheelOffsetY, -CarLength / 2},
		{wheelOffsetX, -wheelOffsetY, -CarLength / 2},
	}
	for _, c := range corners {
		var err error
		raster.Scope(r, func() {
			r.Translate(c[0], c[1], c[2])
			err = s.EmitWheel(r)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// EmitTrain chains CarsPerTrain cars along -Z, CarSpacing apart.
func (s *RollingStock) EmitTrain(r raster.Rasterizer, trainIndex int) error {
	var err error
	raster.Scope(r, func() {
		for i := 0; i < CarsPerTrain; i++ {
			if err = s.EmitCar(r, i, trainIndex); err != nil {
				return
			}
			r.Translate(0, 0, -CarSpacing)
		}
	})
	return err
}
