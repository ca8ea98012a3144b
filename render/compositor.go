package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/assets"
	"github.com/frameflow/frameflow/geom"
)

// Sentinel errors for the render package.
var (
	// ErrNilCampaign is returned when a Request carries no campaign.
	ErrNilCampaign = errors.New("render: nil campaign")
)

// Colors and captions of the composited frame. The watermark caption is a
// product constant: free-tier campaigns always carry it and participants
// cannot disable it.
const (
	baseFill         = "#f3f4f6"
	placeholderColor = "#9ca3af"
	selectionColor   = "#3b82f6"

	photoPlaceholderCaption = "Ajoutez une photo"
	templatePendingCaption  = "Chargement du visuel..."
	watermarkCaption        = "Créé avec FrameFlow"

	placeholderFontSize = 40
	watermarkFontSize   = 20
	watermarkMargin     = 20
)

// Compositor renders Requests onto offscreen contexts. It holds the font
// registry the session's text is resolved against; given identical Request
// contents and identical font-load state, Render is deterministic.
type Compositor struct {
	fonts *assets.FontRegistry
}

// NewCompositor creates a compositor drawing with faces from fonts.
func NewCompositor(fonts *assets.FontRegistry) *Compositor {
	return &Compositor{fonts: fonts}
}

// Fonts returns the registry the compositor resolves faces against.
func (c *Compositor) Fonts() *assets.FontRegistry { return c.fonts }

// FieldFace returns the face a field would currently be drawn with, after
// applying any style override. The interaction layer uses it so hit-testing
// measures text exactly as the compositor draws it.
func (c *Compositor) FieldFace(f *frameflow.TextField, ov *Overrides) text.Face {
	family, size, _ := ov.EffectiveStyle(f)
	return c.fonts.Face(family, size)
}

// Render draws one frame for the request and returns the context holding
// it. The canvas is always the template's native resolution so exports do
// not depend on how the preview is displayed.
//
// Draw order is fixed and significant: base fill, photo or background,
// frame overlay or text fields (declaration order), selection affordance,
// watermark. Later draws occlude earlier ones and the watermark is always
// topmost.
func (c *Compositor) Render(req Request) (*gg.Context, error) {
	if req.Campaign == nil {
		return nil, ErrNilCampaign
	}

	canvas := req.CanvasSize()
	dc := gg.NewContext(int(canvas.W), int(canvas.H))

	dc.SetHexColor(baseFill)
	dc.DrawRectangle(0, 0, canvas.W, canvas.H)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("render: base fill: %w", err)
	}

	if req.Template == nil {
		// Degrade to a labeled placeholder rather than failing; the host
		// re-renders when the decode completes.
		frameflow.Logger().Warn("rendering placeholder: template not loaded",
			"campaign", req.Campaign.ID)
		c.drawCenteredCaption(dc, canvas, templatePendingCaption)
	} else {
		switch req.Campaign.Kind {
		case frameflow.KindPhotoFrame:
			c.drawPhotoFrame(dc, canvas, req)
		case frameflow.KindDocument:
			c.drawDocument(dc, canvas, req)
		default:
			return nil, fmt.Errorf("render: unknown campaign kind %v", req.Campaign.Kind)
		}
	}

	if req.Campaign.Tier == frameflow.TierFree {
		c.drawWatermark(dc, canvas)
	}

	return dc, nil
}

// drawPhotoFrame draws the participant photo under the frame overlay. The
// frame always wins compositing order: it is the overlay, the photo is the
// background.
func (c *Compositor) drawPhotoFrame(dc *gg.Context, canvas geom.Size, req Request) {
	if req.Photo != nil {
		c.drawPhoto(dc, canvas, req.Photo, req.Transform)
	} else {
		c.drawCenteredCaption(dc, canvas, photoPlaceholderCaption)
	}

	dc.DrawImageEx(req.Template.Buf(), gg.DrawImageOptions{
		X: 0, Y: 0,
		DstWidth:  canvas.W,
		DstHeight: canvas.H,
	})
}

// drawPhoto applies the fixed transform order translate → rotate → scale.
// The photo fills the canvas width while preserving aspect ratio: portrait
// photos are width-constrained, landscape photos height-constrained.
//
// gg's DrawImage maps axis-aligned rectangles only, so rotation is applied
// by resampling the photo bitmap (imaging.Rotate expands the bounds around
// the center), then drawing the result centered at the translated origin.
// For a uniform scale about the photo center this is equivalent to the
// matrix order above.
func (c *Compositor) drawPhoto(dc *gg.Context, canvas geom.Size, photo *assets.Image, t PhotoTransform) {
	aspect := photo.Aspect()
	drawW, drawH := canvas.W, canvas.W
	if aspect > 1 {
		drawH = canvas.W / aspect
	} else {
		drawW = canvas.W * aspect
	}

	sw := int(math.Round(drawW * t.Scale))
	sh := int(math.Round(drawH * t.Scale))
	if sw < 1 || sh < 1 {
		return
	}

	img := imaging.Resize(photo.Std(), sw, sh, imaging.Lanczos)
	if t.Rotation != 0 {
		// imaging rotates counter-clockwise; screen-space rotation is
		// clockwise with y pointing down.
		img = imaging.Rotate(img, -t.Rotation, color.Transparent)
	}

	b := img.Bounds()
	cx := canvas.W/2 + t.Offset.X
	cy := canvas.H/2 + t.Offset.Y
	dc.DrawImage(gg.ImageBufFromImage(img), cx-float64(b.Dx())/2, cy-float64(b.Dy())/2)
}

// drawDocument draws the background full-bleed, then every field in
// declaration order. Values are drawn verbatim: no wrapping, truncation or
// overflow handling, so long strings may extend past the canvas bounds.
func (c *Compositor) drawDocument(dc *gg.Context, canvas geom.Size, req Request) {
	dc.DrawImageEx(req.Template.Buf(), gg.DrawImageOptions{
		X: 0, Y: 0,
		DstWidth:  canvas.W,
		DstHeight: canvas.H,
	})

	ov := req.Overrides
	for i := range req.Campaign.Fields {
		f := &req.Campaign.Fields[i]
		family, size, colorHex := ov.EffectiveStyle(f)
		face := c.fonts.Face(family, size)
		value := ov.EffectiveValue(f)

		pos := geom.PercentToPixel(f.X, f.Y, canvas).Add(ov.Offset(f.ID))

		if face == nil {
			frameflow.Logger().Debug("skipping field: no face available",
				"field", f.ID, "family", family)
		} else if value != "" {
			dc.SetFont(face)
			dc.SetHexColor(colorHex)
			x := geom.AnchorX(pos.X, face.Advance(value), f.Align)
			dc.DrawString(value, x, geom.MiddleBaseline(face, pos.Y))
		}

		if req.ShowSelection && face != nil && ov != nil && ov.Active == f.ID {
			c.drawSelection(dc, face, value, size, f.Align, pos)
		}
	}
}

// drawSelection draws the dashed affordance around the active field's
// measured extent, plus the move handle above its top-right corner. Purely
// a UI affordance; export captures suppress it.
func (c *Compositor) drawSelection(dc *gg.Context, face text.Face, value string, size float64, align frameflow.Alignment, pos geom.Point) {
	extent := geom.TextBox(face, value, size, align, pos)
	box := extent.Expand(geom.SelectionPadX, geom.SelectionPadY)

	dc.SetHexColor(selectionColor)
	dc.SetLineWidth(3)
	dc.SetDash(6, 4)
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	_ = dc.Stroke()
	dc.ClearDash()

	handleX := extent.X + extent.W
	handleY := pos.Y - size/2 - 25
	dc.DrawRectangle(handleX, handleY, geom.HandleSize, geom.HandleSize)
	_ = dc.Fill()

	dc.SetHexColor("#ffffff")
	dc.DrawCircle(extent.X+extent.W+10, pos.Y-size/2-15, 3)
	_ = dc.Fill()
}

// drawCenteredCaption draws a gray caption at the canvas center, used for
// the missing-photo and template-pending placeholders.
func (c *Compositor) drawCenteredCaption(dc *gg.Context, canvas geom.Size, caption string) {
	face := c.fonts.Face("", placeholderFontSize)
	if face == nil {
		return
	}
	dc.SetFont(face)
	dc.SetHexColor(placeholderColor)
	x := canvas.W/2 - face.Advance(caption)/2
	dc.DrawString(caption, x, canvas.H/2)
}

// drawWatermark draws the free-tier caption in the bottom-right corner,
// after all other content.
func (c *Compositor) drawWatermark(dc *gg.Context, canvas geom.Size) {
	face := c.fonts.Face("", watermarkFontSize)
	if face == nil {
		frameflow.Logger().Warn("watermark skipped: no fallback font loaded")
		return
	}
	dc.SetFont(face)
	dc.SetRGBA(1, 1, 1, 0.7)
	x := canvas.W - watermarkMargin - face.Advance(watermarkCaption)
	dc.DrawString(watermarkCaption, x, canvas.H-watermarkMargin)
}
