package interact

import (
	"testing"

	"github.com/gogpu/gg/text"

	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/geom"
	"github.com/frameflow/frameflow/render"
)

// stubMeasurer advances 10px per rune, so extents are predictable without
// font files.
type stubMeasurer struct{}

func (stubMeasurer) Advance(s string) float64 { return float64(10 * len([]rune(s))) }
func (stubMeasurer) Metrics() text.Metrics    { return text.Metrics{Ascent: 30, Descent: 10} }

func stubFace(*frameflow.TextField, *render.Overrides) geom.Measurer { return stubMeasurer{} }

func documentFixture() (*frameflow.Campaign, *render.Overrides, *Controller) {
	campaign := &frameflow.Campaign{
		ID:   "doc",
		Kind: frameflow.KindDocument,
		Fields: []frameflow.TextField{
			{ID: "f1", DefaultValue: "Jean", X: 50, Y: 50, FontSize: 40, Align: frameflow.AlignCenter},
			{ID: "f2", DefaultValue: "Invité", X: 50, Y: 50, FontSize: 40, Align: frameflow.AlignCenter},
		},
	}
	ov := render.NewOverrides(campaign.Fields)
	ov.Active = ""
	t := render.DefaultPhotoTransform()
	ctrl := NewController(campaign, ov, &t, geom.Size{W: 1000, H: 1000}, stubFace)
	return campaign, ov, ctrl
}

func photoFixture() (*render.PhotoTransform, *Controller) {
	campaign := &frameflow.Campaign{ID: "photo", Kind: frameflow.KindPhotoFrame}
	ov := render.NewOverrides(nil)
	t := render.DefaultPhotoTransform()
	ctrl := NewController(campaign, ov, &t, geom.Size{W: 1000, H: 1000}, stubFace)
	return &t, ctrl
}

func TestPointerDownSelectsField(t *testing.T) {
	_, ov, ctrl := documentFixture()

	if !ctrl.PointerDown(geom.Pt(500, 500)) {
		t.Error("selection change not reported")
	}
	if ctrl.State() != StateDraggingField {
		t.Errorf("state = %v, want dragging-field", ctrl.State())
	}
	// Both fields overlap at (50%,50%): the later declaration draws on
	// top, so the later declaration wins the hit.
	if ov.Active != "f2" {
		t.Errorf("active = %q, want topmost field f2", ov.Active)
	}
}

func TestPointerDownMissDeselects(t *testing.T) {
	_, ov, ctrl := documentFixture()
	ov.Active = "f1"

	if !ctrl.PointerDown(geom.Pt(100, 100)) {
		t.Error("deselection not reported")
	}
	if ov.Active != "" {
		t.Errorf("active = %q after miss, want empty", ov.Active)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("state = %v after miss, want idle", ctrl.State())
	}
}

func TestPointerDownHitPadding(t *testing.T) {
	_, ov, ctrl := documentFixture()

	// "Invité" at 10px/rune centered on (500,500): extent x [470,530],
	// y [480,520]; the 20px pad keeps (460,470) inside the target.
	if !ctrl.PointerDown(geom.Pt(460, 470)) {
		t.Fatal("press inside padded extent not handled")
	}
	if ov.Active != "f2" {
		t.Errorf("active = %q", ov.Active)
	}

	ctrl.PointerUp()
	if ctrl.PointerDown(geom.Pt(440, 450)); ov.Active != "" {
		t.Error("press outside padded extent still selected a field")
	}
}

func TestPointerDownMoveHandle(t *testing.T) {
	_, ov, ctrl := documentFixture()

	// f2's handle sits at x [530,550], y [455,475]; (545,457) is inside
	// the handle but above the padded extent.
	ctrl.PointerDown(geom.Pt(545, 457))
	if ov.Active != "f2" {
		t.Errorf("active = %q, want f2 via move handle", ov.Active)
	}
	if ctrl.State() != StateDraggingField {
		t.Errorf("state = %v", ctrl.State())
	}
}

func TestFieldDragAccumulatesDeltas(t *testing.T) {
	_, ov, ctrl := documentFixture()

	ctrl.PointerDown(geom.Pt(500, 500))
	ctrl.PointerMove(geom.Pt(510, 505))
	ctrl.PointerMove(geom.Pt(520, 495))
	ctrl.PointerUp()

	if got := ov.Offset("f2"); got != geom.Pt(20, -5) {
		t.Errorf("offset after drag = %v, want (20,-5)", got)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("state after release = %v", ctrl.State())
	}
	// Selection survives the release for subsequent styling.
	if ov.Active != "f2" {
		t.Errorf("active cleared on release: %q", ov.Active)
	}

	// A second drag composes with the stored offset.
	ctrl.PointerDown(geom.Pt(520, 495))
	ctrl.PointerMove(geom.Pt(530, 495))
	ctrl.PointerUp()
	if got := ov.Offset("f2"); got != geom.Pt(30, -5) {
		t.Errorf("offset after second drag = %v, want (30,-5)", got)
	}
}

func TestPhotoDragAbsoluteOffset(t *testing.T) {
	tr, ctrl := photoFixture()
	tr.Offset = geom.Pt(5, 5)

	ctrl.PointerDown(geom.Pt(100, 100))
	if ctrl.State() != StateDraggingPhoto {
		t.Fatalf("state = %v", ctrl.State())
	}
	ctrl.PointerMove(geom.Pt(150, 130))
	if tr.Offset != geom.Pt(55, 35) {
		t.Errorf("offset = %v, want (55,35)", tr.Offset)
	}
	// Absolute positioning: the final offset depends only on the last
	// pointer position, not on the path.
	ctrl.PointerMove(geom.Pt(90, 210))
	ctrl.PointerMove(geom.Pt(160, 160))
	if tr.Offset != geom.Pt(65, 65) {
		t.Errorf("offset = %v, want (65,65)", tr.Offset)
	}
	ctrl.PointerUp()
	if ctrl.State() != StateIdle {
		t.Errorf("state after release = %v", ctrl.State())
	}
}

func TestDisplayNormalization(t *testing.T) {
	_, ov, ctrl := documentFixture()
	// Canvas 1000x1000 shown at 500x500: display coordinates are halved.
	ctrl.SetDisplaySize(geom.Size{W: 500, H: 500})

	ctrl.PointerDown(geom.Pt(250, 250))
	if ov.Active != "f2" {
		t.Fatalf("active = %q, want f2 at display center", ov.Active)
	}
	ctrl.PointerMove(geom.Pt(255, 250))
	ctrl.PointerUp()
	if got := ov.Offset("f2"); got != geom.Pt(10, 0) {
		t.Errorf("offset = %v, want display delta doubled to (10,0)", got)
	}
}

func TestDisplayResizeMidDrag(t *testing.T) {
	_, ov, ctrl := documentFixture()

	ctrl.PointerDown(geom.Pt(500, 500))
	ctrl.PointerMove(geom.Pt(510, 500))
	// The preview is resized mid-drag; subsequent events normalize with
	// the new factor against the new display positions.
	ctrl.SetDisplaySize(geom.Size{W: 500, H: 500})
	ctrl.PointerMove(geom.Pt(260, 250))
	ctrl.PointerUp()

	// 10px raster from the first move, then (520,500)-(510,500) raster
	// from the second.
	if got := ov.Offset("f2"); got != geom.Pt(20, 0) {
		t.Errorf("offset = %v, want (20,0)", got)
	}
}

func TestMoveWhileIdleIsIgnored(t *testing.T) {
	_, ov, ctrl := documentFixture()
	if ctrl.PointerMove(geom.Pt(500, 500)) {
		t.Error("move without a press reported a change")
	}
	if got := ov.Offset("f1"); got != (geom.Point{}) {
		t.Errorf("offset mutated while idle: %v", got)
	}
}

func TestPhotoLoadedResetsTransform(t *testing.T) {
	tr, ctrl := photoFixture()
	ctrl.SetPhotoScale(2)
	ctrl.SetPhotoRotation(45)
	ctrl.PointerDown(geom.Pt(100, 100))

	ctrl.PhotoLoaded()
	if *tr != render.DefaultPhotoTransform() {
		t.Errorf("transform = %+v after new photo", *tr)
	}
	if ctrl.State() != StateIdle {
		t.Errorf("state = %v after new photo", ctrl.State())
	}
}

func TestSetPhotoRotationNormalizes(t *testing.T) {
	tr, ctrl := photoFixture()
	ctrl.SetPhotoRotation(270)
	if tr.Rotation != -90 {
		t.Errorf("rotation = %v, want -90", tr.Rotation)
	}
	ctrl.SetPhotoRotation(-180)
	if tr.Rotation != 180 {
		t.Errorf("rotation = %v, want 180", tr.Rotation)
	}
	ctrl.SetPhotoScale(2.5)
}
