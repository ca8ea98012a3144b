// Package interact translates pointer input on the displayed preview into
// edits of the session's photo transform and field offsets.
//
// The controller works in raster coordinates. Pointer positions arrive in
// display pixels and are normalized on entry with the scale set via
// SetDisplaySize, so a drag started at one zoom level and continued at
// another accumulates consistently. Hit-testing measures text with the same
// faces the compositor draws with, so what looks selectable is selectable.
package interact

import (
	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/geom"
	"github.com/frameflow/frameflow/render"
)

// State is the controller's drag state.
type State int

const (
	// StateIdle means no pointer interaction is in progress.
	StateIdle State = iota
	// StateDraggingPhoto means the participant photo is being repositioned.
	StateDraggingPhoto
	// StateDraggingField means a text field is being repositioned.
	StateDraggingField
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraggingPhoto:
		return "dragging-photo"
	case StateDraggingField:
		return "dragging-field"
	}
	return "unknown"
}

// FaceFunc resolves the measurer for a field's current style, nil when the
// face is not loaded yet. It must measure exactly as the compositor draws.
type FaceFunc func(f *frameflow.TextField, ov *render.Overrides) geom.Measurer

// Controller drives one editing session's pointer interaction. It mutates
// the Overrides and PhotoTransform it was constructed with; the host
// re-renders after any call that reports a change.
//
// Not safe for concurrent use. Pointer events arrive on a single UI
// goroutine.
type Controller struct {
	campaign  *frameflow.Campaign
	overrides *render.Overrides
	transform *render.PhotoTransform
	face      FaceFunc

	canvas geom.Size
	scale  geom.Scale

	state      State
	dragField  string
	dragOrigin geom.Point // pointer at grab minus photo offset, raster px
	last       geom.Point // previous pointer position, raster px
}

// NewController creates a controller editing ov and t for campaign. The
// canvas is the raster size of the composited frame; until SetDisplaySize
// is called, display and raster coordinates are taken as identical.
func NewController(campaign *frameflow.Campaign, ov *render.Overrides, t *render.PhotoTransform, canvas geom.Size, face FaceFunc) *Controller {
	return &Controller{
		campaign:  campaign,
		overrides: ov,
		transform: t,
		face:      face,
		canvas:    canvas,
		scale:     geom.ScaleFor(canvas, canvas),
	}
}

// SetDisplaySize records the size the preview is currently displayed at.
// Safe to call mid-drag: positions are normalized per event.
func (c *Controller) SetDisplaySize(display geom.Size) {
	c.scale = geom.ScaleFor(c.canvas, display)
}

// State returns the current drag state.
func (c *Controller) State() State { return c.state }

// ActiveField returns the selected field's id, empty when none.
func (c *Controller) ActiveField() string {
	if c.overrides == nil {
		return ""
	}
	return c.overrides.Active
}

// PointerDown handles a press at p in display pixels. For document
// campaigns it hit-tests the fields topmost first, selecting the hit field
// and starting a field drag, or clearing the selection on a miss. For
// photo-frame campaigns any press grabs the photo. Returns true when the
// frame needs re-rendering.
func (c *Controller) PointerDown(p geom.Point) bool {
	rp := c.scale.ToRaster(p)

	switch c.campaign.Kind {
	case frameflow.KindDocument:
		id := c.hitField(rp)
		changed := c.overrides.Active != id
		c.overrides.Active = id
		if id != "" {
			c.state = StateDraggingField
			c.dragField = id
			c.last = rp
		}
		return changed

	case frameflow.KindPhotoFrame:
		c.state = StateDraggingPhoto
		c.dragOrigin = rp.Sub(c.transform.Offset)
		return false
	}
	return false
}

// PointerMove handles motion to p in display pixels. Returns true when the
// frame needs re-rendering.
func (c *Controller) PointerMove(p geom.Point) bool {
	rp := c.scale.ToRaster(p)

	switch c.state {
	case StateDraggingPhoto:
		// Absolute: offset is always pointer minus grab origin, so no
		// error accumulates over a long drag.
		c.transform.Offset = rp.Sub(c.dragOrigin)
		return true

	case StateDraggingField:
		// Incremental: each event contributes its delta, so the offset
		// composes with whatever the field already had.
		c.overrides.AddOffset(c.dragField, rp.Sub(c.last))
		c.last = rp
		return true
	}
	return false
}

// PointerUp ends any drag in progress. The selection survives: the field
// stays active for subsequent styling until a miss press clears it.
func (c *Controller) PointerUp() {
	c.state = StateIdle
	c.dragField = ""
}

// PhotoLoaded resets the transform for a freshly loaded photo and cancels
// any drag in progress.
func (c *Controller) PhotoLoaded() {
	*c.transform = render.DefaultPhotoTransform()
	c.state = StateIdle
}

// SetPhotoScale sets the photo zoom. Values are applied as-is; hosts bind
// their slider to [render.ScaleMin, render.ScaleMax].
func (c *Controller) SetPhotoScale(v float64) {
	c.transform.Scale = v
}

// SetPhotoRotation sets the photo rotation in degrees, folded into the
// canonical (-180, 180] range.
func (c *Controller) SetPhotoRotation(deg float64) {
	c.transform.Rotation = render.NormalizeRotation(deg)
}

// hitField returns the topmost field whose padded extent or move handle
// contains p, in raster pixels. Fields later in declaration order draw on
// top, so they are tested first.
func (c *Controller) hitField(p geom.Point) string {
	for i := len(c.campaign.Fields) - 1; i >= 0; i-- {
		f := &c.campaign.Fields[i]
		m := c.face(f, c.overrides)
		if m == nil {
			continue
		}
		_, size, _ := c.overrides.EffectiveStyle(f)
		value := c.overrides.EffectiveValue(f)
		pos := geom.PercentToPixel(f.X, f.Y, c.canvas).Add(c.overrides.Offset(f.ID))

		extent := geom.TextBox(m, value, size, f.Align, pos)
		if extent.Expand(geom.HitPad, geom.HitPad).Contains(p) {
			return f.ID
		}

		handle := geom.Box{
			X: extent.X + extent.W,
			Y: pos.Y - size/2 - 25,
			W: geom.HandleSize,
			H: geom.HandleSize,
		}
		if handle.Contains(p) {
			return f.ID
		}
	}
	return ""
}
