package geom

import (
	"github.com/gogpu/gg/text"

	"github.com/frameflow/frameflow"
)

// Padding applied around the measured text extent. The selection affordance
// and the pointer hit target use different margins, but both derive from
// the same TextBox so they agree on the underlying extent.
const (
	// SelectionPadX and SelectionPadY grow the dashed selection rectangle.
	SelectionPadX = 10
	SelectionPadY = 5

	// HitPad grows the hit-test target so small text stays grabbable.
	HitPad = 20

	// HandleSize is the square move handle drawn at the selection's top-right.
	HandleSize = 20
)

// Measurer is the subset of a font face the geometry math needs. gg's
// text.Face satisfies it; tests substitute fixed-width stubs so geometry
// and interaction behavior can be verified without font files.
type Measurer interface {
	// Advance returns the horizontal advance of the text in pixels.
	Advance(text string) float64

	// Metrics returns the face metrics at its size.
	Metrics() text.Metrics
}

// MiddleBaseline returns the baseline y at which the glyph band's vertical
// midpoint sits at y. This reproduces a middle text baseline: glyphs span
// [baseline-ascent, baseline+descent], so centering that band on y puts the
// baseline at y + (ascent-descent)/2.
func MiddleBaseline(m Measurer, y float64) float64 {
	if m == nil {
		return y
	}
	met := m.Metrics()
	return y + (met.Ascent-met.Descent)/2
}

// AnchorX returns the left edge of a text run of width w whose anchor point
// x is interpreted per align.
func AnchorX(x, w float64, align frameflow.Alignment) float64 {
	switch align {
	case frameflow.AlignCenter:
		return x - w/2
	case frameflow.AlignRight:
		return x - w
	default:
		return x
	}
}

// TextBox returns the extent box of a text run anchored at pos. The height
// is the styled font size (not the face line height) and the box is
// vertically centered on pos.Y, matching how the text itself is drawn with
// a middle baseline. A nil Measurer yields a zero-width box.
func TextBox(m Measurer, value string, size float64, align frameflow.Alignment, pos Point) Box {
	var w float64
	if m != nil {
		w = m.Advance(value)
	}
	return Box{
		X: AnchorX(pos.X, w, align),
		Y: pos.Y - size/2,
		W: w,
		H: size,
	}
}
