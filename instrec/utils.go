package instrec

import "math"

// IoU calculates Intersection over Union between two rectangles.
// Invalid rectangles (see Rectangle.IsValid) always give 0, so a single broken
// detection can't poison matching. Result is in [0, 1]; 1 only for identical boxes.
func IoU(r1, r2 Rectangle) float64 {
	if !r1.IsValid() || !r2.IsValid() {
		return 0.0
	}
	xA := maxFloat64(r1.X, r2.X)
	yA := maxFloat64(r1.Y, r2.Y)
	xB := minFloat64(r1.XMax(), r2.XMax())
	yB := minFloat64(r1.YMax(), r2.YMax())

	interArea := maxFloat64(0, xB-xA) * maxFloat64(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}

	unionArea := r1.Area() + r2.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}
	iouVal := interArea / unionArea
	if math.IsNaN(iouVal) || math.IsInf(iouVal, 0) {
		return 0.0
	}
	return minFloat64(iouVal, 1.0)
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
