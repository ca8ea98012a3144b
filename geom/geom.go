// Package geom provides the coordinate math shared by the compositor, the
// interaction layer and the field layout editor.
//
// Two coordinate spaces are in play everywhere in the engine:
//
//   - raster pixels: the template's native resolution, which every render
//     and every export uses regardless of how the canvas is displayed
//   - display pixels: the CSS-constrained size the canvas is shown at
//
// Field positions are stored as percentages of the template dimensions so
// descriptors survive re-renders at any resolution. This package owns the
// conversions between all three representations, plus the measured text
// extent box used identically for hit-testing and for the selection
// affordance, so the two can never disagree.
package geom

// Point is a position or delta in a single coordinate space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width/height pair in pixels.
type Size struct {
	W, H float64
}

// Box is an axis-aligned rectangle anchored at its top-left corner.
type Box struct {
	X, Y, W, H float64
}

// Expand grows the box by px on the left and right and py on the top and
// bottom.
func (b Box) Expand(px, py float64) Box {
	return Box{X: b.X - px, Y: b.Y - py, W: b.W + 2*px, H: b.H + 2*py}
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// PercentToPixel resolves a percentage position (0-100 of each axis)
// against a canvas size.
func PercentToPixel(xPct, yPct float64, canvas Size) Point {
	return Point{X: xPct / 100 * canvas.W, Y: yPct / 100 * canvas.H}
}

// PixelToPercent converts an absolute pixel position back into percentages
// of the canvas size. Inverse of PercentToPixel.
func PixelToPercent(p Point, canvas Size) (xPct, yPct float64) {
	if canvas.W == 0 || canvas.H == 0 {
		return 0, 0
	}
	return p.X / canvas.W * 100, p.Y / canvas.H * 100
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Scale converts display-space coordinates into raster space. The canvas is
// rendered at native template resolution but displayed at a CSS-constrained
// size, so the factor is almost never 1 and must be applied to every
// pointer event before hit-testing or transform math.
type Scale struct {
	X, Y float64
}

// ScaleFor computes the display-to-raster scale factors. A zero display
// dimension yields a factor of 1 so an unconfigured viewport degrades to
// identity instead of producing NaNs.
func ScaleFor(raster, display Size) Scale {
	s := Scale{X: 1, Y: 1}
	if display.W > 0 {
		s.X = raster.W / display.W
	}
	if display.H > 0 {
		s.Y = raster.H / display.H
	}
	return s
}

// ToRaster converts a display-space point into raster space.
func (s Scale) ToRaster(p Point) Point {
	return Point{X: p.X * s.X, Y: p.Y * s.Y}
}
