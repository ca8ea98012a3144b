// Package render implements the compositor: the pure function that turns
// one Request into one raster frame at the template's native resolution.
package render

import (
	"math"

	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/assets"
	"github.com/frameflow/frameflow/geom"
)

// Advisory UI ranges for the photo controls. These mirror the slider
// affordances of the participant editor; the engine itself does not clamp,
// so embedders with different affordances can exceed them.
const (
	ScaleMin     = 0.5
	ScaleMax     = 3.0
	RotationMin  = -180.0
	RotationMax  = 180.0
	RotationStep = 5.0
)

// PhotoTransform positions the participant photo inside a photo-frame
// template. Offset is in raster pixels relative to the canvas center.
// Mutated only by the interaction layer; reset whenever a new photo loads.
type PhotoTransform struct {
	Scale    float64
	Rotation float64 // degrees, clockwise
	Offset   geom.Point
}

// DefaultPhotoTransform is the state applied to a freshly loaded photo.
func DefaultPhotoTransform() PhotoTransform {
	return PhotoTransform{Scale: 1}
}

// NormalizedRotation folds Rotation into (-180, 180] for display.
func (t PhotoTransform) NormalizedRotation() float64 {
	return NormalizeRotation(t.Rotation)
}

// NormalizeRotation folds an angle in degrees into (-180, 180].
func NormalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r > 180 {
		r -= 360
	} else if r <= -180 {
		r += 360
	}
	return r
}

// StyleOverride is a participant's transient restyling of one field. Zero
// values mean "keep the descriptor's setting". Overrides never persist back
// into the descriptor.
type StyleOverride struct {
	FontFamily string
	FontSize   float64
	Color      string
}

// Overrides is the session-scoped participant state layered over a document
// campaign's persisted descriptors: text values, style overrides,
// accumulated drag offsets, and the active selection. One writer (the
// interaction layer or the host UI) mutates it; the compositor only reads.
type Overrides struct {
	Values  map[string]string
	Styles  map[string]StyleOverride
	Offsets map[string]geom.Point

	// Active is the selected field id, or "" for no selection.
	Active string
}

// NewOverrides seeds session state from the descriptor list: every field
// starts at its default value and the first field starts selected.
func NewOverrides(fields []frameflow.TextField) *Overrides {
	o := &Overrides{
		Values:  make(map[string]string, len(fields)),
		Styles:  make(map[string]StyleOverride, len(fields)),
		Offsets: make(map[string]geom.Point, len(fields)),
	}
	for _, f := range fields {
		o.Values[f.ID] = f.DefaultValue
	}
	if len(fields) > 0 {
		o.Active = fields[0].ID
	}
	return o
}

// EffectiveValue returns the participant's value for the field, falling
// back to the descriptor default.
func (o *Overrides) EffectiveValue(f *frameflow.TextField) string {
	if o != nil {
		if v, ok := o.Values[f.ID]; ok {
			return v
		}
	}
	return f.DefaultValue
}

// EffectiveStyle resolves the font family, size and color for the field,
// override first, descriptor second.
func (o *Overrides) EffectiveStyle(f *frameflow.TextField) (family string, size float64, color string) {
	family, size, color = f.FontFamily, f.FontSize, f.Color
	if o == nil {
		return family, size, color
	}
	s := o.Styles[f.ID]
	if s.FontFamily != "" {
		family = s.FontFamily
	}
	if s.FontSize > 0 {
		size = s.FontSize
	}
	if s.Color != "" {
		color = s.Color
	}
	return family, size, color
}

// Offset returns the accumulated drag offset for the field.
func (o *Overrides) Offset(id string) geom.Point {
	if o == nil {
		return geom.Point{}
	}
	return o.Offsets[id]
}

// AddOffset accumulates a drag delta into the field's position override.
func (o *Overrides) AddOffset(id string, delta geom.Point) {
	o.Offsets[id] = o.Offsets[id].Add(delta)
}

// SetValue replaces the participant value for a field.
func (o *Overrides) SetValue(id, value string) {
	o.Values[id] = value
}

// MergeStyle folds non-zero fields of s into the field's style override.
func (o *Overrides) MergeStyle(id string, s StyleOverride) {
	cur := o.Styles[id]
	if s.FontFamily != "" {
		cur.FontFamily = s.FontFamily
	}
	if s.FontSize > 0 {
		cur.FontSize = s.FontSize
	}
	if s.Color != "" {
		cur.Color = s.Color
	}
	o.Styles[id] = cur
}

// Clone returns a deep copy. The bulk exporter snapshots the session state
// so per-item value substitution cannot leak back into the live session.
func (o *Overrides) Clone() *Overrides {
	if o == nil {
		return nil
	}
	c := &Overrides{
		Values:  make(map[string]string, len(o.Values)),
		Styles:  make(map[string]StyleOverride, len(o.Styles)),
		Offsets: make(map[string]geom.Point, len(o.Offsets)),
		Active:  o.Active,
	}
	for k, v := range o.Values {
		c.Values[k] = v
	}
	for k, v := range o.Styles {
		c.Styles[k] = v
	}
	for k, v := range o.Offsets {
		c.Offsets[k] = v
	}
	return c
}

// FallbackCanvasDim is the square canvas used while the template asset has
// not finished decoding.
const FallbackCanvasDim = 1080

// Request is the complete, self-contained input to one compositing pass.
// Together with the font registry's load state it fully determines the
// output frame.
type Request struct {
	Campaign *frameflow.Campaign

	// Template is the decoded frame/background raster. While nil the
	// compositor draws a labeled placeholder at FallbackCanvasDim.
	Template *assets.Image

	// Photo and Transform apply to photo-frame campaigns only.
	Photo     *assets.Image
	Transform PhotoTransform

	// Overrides applies to document campaigns only; nil renders defaults.
	Overrides *Overrides

	// ShowSelection enables the dashed affordance around the active field.
	// Export captures always force it off.
	ShowSelection bool
}

// CanvasSize returns the raster dimensions the frame will be rendered at:
// the template's native resolution, or the fallback square while the
// template is still loading.
func (r Request) CanvasSize() geom.Size {
	if r.Template == nil {
		return geom.Size{W: FallbackCanvasDim, H: FallbackCanvasDim}
	}
	return geom.Size{W: float64(r.Template.Width()), H: float64(r.Template.Height())}
}
