package instrec

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned bounding box in pixel coordinates of a frame.
// (X, Y) is the top-left corner.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectCorners creates rectangle from (xMin, yMin, xMax, yMax) corners.
// Inverted corners are kept as is and produce invalid rectangle.
func NewRectCorners(xMin, yMin, xMax, yMax float64) Rectangle {
	return Rectangle{
		X:      xMin,
		Y:      yMin,
		Width:  xMax - xMin,
		Height: yMax - yMin,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// XMax returns right edge
func (rect Rectangle) XMax() float64 {
	return rect.X + rect.Width
}

// YMax returns bottom edge
func (rect Rectangle) YMax() float64 {
	return rect.Y + rect.Height
}

// Area returns width*height. Could be negative for inverted rectangles
func (rect Rectangle) Area() float64 {
	return rect.Width * rect.Height
}

// Center returns center point of rectangle
func (rect Rectangle) Center() Point {
	return Point{
		X: rect.X + rect.Width/2.0,
		Y: rect.Y + rect.Height/2.0,
	}
}

// IsValid reports whether rectangle has finite coordinates and strictly positive size,
// i.e. x_min < x_max and y_min < y_max.
func (rect Rectangle) IsValid() bool {
	for _, v := range [4]float64{rect.X, rect.Y, rect.Width, rect.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return rect.Width > 0 && rect.Height > 0
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}
