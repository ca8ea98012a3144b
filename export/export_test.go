package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strconv"
	"testing"

	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/assets"
	"github.com/frameflow/frameflow/render"
)

type memSaver struct {
	files map[string][]byte
}

func newMemSaver() *memSaver { return &memSaver{files: make(map[string][]byte)} }

func (m *memSaver) Save(name string, data []byte) error {
	m.files[name] = data
	return nil
}

type failSaver struct{}

func (failSaver) Save(string, []byte) error { return errors.New("disk full") }

func whiteTemplate(w, h int) *assets.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return assets.FromImage(img)
}

func photoRequest() render.Request {
	return render.Request{
		Campaign: &frameflow.Campaign{
			ID:    "c1",
			Kind:  frameflow.KindPhotoFrame,
			Title: "Fête des voisins",
			Tier:  frameflow.TierPremium,
		},
		Template: whiteTemplate(64, 64),
	}
}

func documentRequest() render.Request {
	campaign := &frameflow.Campaign{
		ID:    "c2",
		Kind:  frameflow.KindDocument,
		Title: "Diplôme des bénévoles",
		Tier:  frameflow.TierPremium,
		Fields: []frameflow.TextField{
			{ID: "f1", DefaultValue: "Nom", X: 50, Y: 50, FontFamily: "Inter", FontSize: 40,
				Color: "#000000", Align: frameflow.AlignCenter},
		},
	}
	return render.Request{
		Campaign:  campaign,
		Template:  whiteTemplate(64, 64),
		Overrides: render.NewOverrides(campaign.Fields),
	}
}

func newTestExporter(saver Saver, opts ...Option) *Exporter {
	comp := render.NewCompositor(assets.NewFontRegistry())
	return NewExporter(comp, saver, opts...)
}

func TestExportImage(t *testing.T) {
	saver := newMemSaver()
	var completed []string
	e := newTestExporter(saver, WithOnComplete(func(id string) {
		completed = append(completed, id)
	}))

	if err := e.ExportImage(photoRequest()); err != nil {
		t.Fatalf("ExportImage: %v", err)
	}

	data, ok := saver.files["document-c1.png"]
	if !ok {
		t.Fatalf("artifact missing, saved: %v", keys(saver.files))
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("artifact is not a png: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("artifact size = %dx%d, want template resolution", cfg.Width, cfg.Height)
	}
	if len(completed) != 1 || completed[0] != "c1" {
		t.Errorf("completions = %v, want [c1]", completed)
	}
}

// Export captures must not include the selection affordance, even when the
// preview currently shows it.
func TestExportImageSuppressesSelection(t *testing.T) {
	saver := newMemSaver()
	e := newTestExporter(saver)

	req := documentRequest()
	req.ShowSelection = true

	var captured render.Request
	e.capture = func(r render.Request) ([]byte, error) {
		captured = r
		return []byte("png"), nil
	}
	if err := e.ExportImage(req); err != nil {
		t.Fatalf("ExportImage: %v", err)
	}
	if captured.ShowSelection {
		t.Error("selection affordance not suppressed for capture")
	}
}

func TestExportBulkSuppressesSelection(t *testing.T) {
	e := newTestExporter(newMemSaver())

	req := documentRequest()
	req.ShowSelection = true

	shown := false
	e.capture = func(r render.Request) ([]byte, error) {
		shown = shown || r.ShowSelection
		return []byte("png"), nil
	}
	job := BulkJob{Request: req, FieldID: "f1", Values: []string{"Anna", "Bruno"}}
	if err := e.ExportBulk(job); err != nil {
		t.Fatalf("ExportBulk: %v", err)
	}
	if shown {
		t.Error("selection affordance not suppressed for bulk captures")
	}
}

// mediaBox extracts the first /MediaBox width and height from a PDF. Page
// dictionaries are written uncompressed, so a plain scan finds them.
var mediaBoxRe = regexp.MustCompile(`/MediaBox \[0 0 ([0-9.]+) ([0-9.]+)\]`)

func mediaBox(t *testing.T, data []byte) (w, h float64) {
	t.Helper()
	m := mediaBoxRe.FindSubmatch(data)
	if m == nil {
		t.Fatal("no MediaBox in pdf output")
	}
	w, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		t.Fatalf("parse MediaBox width: %v", err)
	}
	h, err = strconv.ParseFloat(string(m[2]), 64)
	if err != nil {
		t.Fatalf("parse MediaBox height: %v", err)
	}
	return w, h
}

func TestExportPDFDocumentOnly(t *testing.T) {
	e := newTestExporter(newMemSaver())
	if err := e.ExportPDF(photoRequest()); !errors.Is(err, ErrPDFUnsupported) {
		t.Fatalf("err = %v, want ErrPDFUnsupported", err)
	}
}

func TestExportPDF(t *testing.T) {
	saver := newMemSaver()
	completions := 0
	e := newTestExporter(saver, WithOnComplete(func(string) { completions++ }))

	if err := e.ExportPDF(documentRequest()); err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	data, ok := saver.files["document-c2.pdf"]
	if !ok {
		t.Fatalf("artifact missing, saved: %v", keys(saver.files))
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("artifact does not start with a pdf header")
	}
	if w, h := mediaBox(t, data); w != 64 || h != 64 {
		t.Errorf("page = %vx%v pt, want 64x64", w, h)
	}
	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
}

// A frame wider than tall must produce a landscape page sized exactly to
// the bitmap, not its transpose.
func TestExportPDFLandscapePageSize(t *testing.T) {
	saver := newMemSaver()
	e := newTestExporter(saver)

	req := documentRequest()
	req.Template = whiteTemplate(200, 100)
	if err := e.ExportPDF(req); err != nil {
		t.Fatalf("ExportPDF: %v", err)
	}
	if w, h := mediaBox(t, saver.files["document-c2.pdf"]); w != 200 || h != 100 {
		t.Errorf("page = %vx%v pt, want 200x100", w, h)
	}
}

func TestExportBulk(t *testing.T) {
	saver := newMemSaver()
	var completed []string
	e := newTestExporter(saver, WithOnComplete(func(id string) {
		completed = append(completed, id)
	}))

	var progress [][2]int
	yields := 0
	job := BulkJob{
		Request: documentRequest(),
		FieldID: "f1",
		Values:  []string{"Jean Dupont", "", "Élodie", "Jean Dupont"},
		OnProgress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
		Yield: func() { yields++ },
	}
	if err := e.ExportBulk(job); err != nil {
		t.Fatalf("ExportBulk: %v", err)
	}

	data, ok := saver.files["Diplôme_des_bénévoles_batch.zip"]
	if !ok {
		t.Fatalf("archive missing, saved: %v", keys(saver.files))
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("artifact is not a zip: %v", err)
	}

	want := []string{"Jean_Dupont.png", "Elodie.png", "Jean_Dupont_2.png"}
	if len(zr.File) != len(want) {
		t.Fatalf("archive holds %d entries, want %d", len(zr.File), len(want))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, f.Name, want[i])
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", f.Name, err)
		}
		if _, err := png.DecodeConfig(rc); err != nil {
			t.Errorf("entry %q is not a png: %v", f.Name, err)
		}
		rc.Close()
	}

	// Blank values are dropped before the batch starts, so progress runs
	// over three frames and only climbs.
	wantProgress := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(progress) != len(wantProgress) {
		t.Fatalf("progress = %v, want %v", progress, wantProgress)
	}
	for i := range wantProgress {
		if progress[i] != wantProgress[i] {
			t.Errorf("progress[%d] = %v, want %v", i, progress[i], wantProgress[i])
		}
	}
	if yields != 2 {
		t.Errorf("yields = %d, want one between each pair of frames", yields)
	}
	// One archive, one completion.
	if len(completed) != 1 || completed[0] != "c2" {
		t.Errorf("completions = %v, want [c2]", completed)
	}
}

func TestBulkJobPreview(t *testing.T) {
	job := BulkJob{
		Request: documentRequest(),
		FieldID: "f1",
		Values:  []string{"Anna", "", "Bruno"},
	}

	req, err := job.Preview(1)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if v := req.Overrides.Values["f1"]; v != "Bruno" {
		t.Errorf("preview value = %q, want blank-skipping index", v)
	}
	if req.Overrides.Active != "" {
		t.Error("preview carries a selection")
	}
	if v := job.Request.Overrides.Values["f1"]; v != "Nom" {
		t.Errorf("preview mutated the session: %q", v)
	}

	if _, err := job.Preview(2); err == nil {
		t.Error("out-of-range preview did not fail")
	}
}

func TestExportBulkDoesNotMutateSession(t *testing.T) {
	e := newTestExporter(newMemSaver())
	req := documentRequest()
	job := BulkJob{Request: req, FieldID: "f1", Values: []string{"Anna", "Bruno"}}
	if err := e.ExportBulk(job); err != nil {
		t.Fatalf("ExportBulk: %v", err)
	}
	if v := req.Overrides.Values["f1"]; v != "Nom" {
		t.Errorf("session value mutated by bulk export: %q", v)
	}
}

func TestExportBulkNoValues(t *testing.T) {
	saver := newMemSaver()
	completions := 0
	e := newTestExporter(saver, WithOnComplete(func(string) { completions++ }))

	err := e.ExportBulk(BulkJob{Request: documentRequest(), FieldID: "f1", Values: []string{"", ""}})
	if !errors.Is(err, ErrNoValues) {
		t.Fatalf("err = %v, want ErrNoValues", err)
	}
	if len(saver.files) != 0 || completions != 0 {
		t.Error("empty batch produced artifacts or completions")
	}
}

// A mid-batch failure aborts the whole archive: progress resets, nothing is
// saved and no completion fires.
func TestExportBulkFailFast(t *testing.T) {
	saver := newMemSaver()
	completions := 0
	e := newTestExporter(saver, WithOnComplete(func(string) { completions++ }))

	calls := 0
	e.capture = func(render.Request) ([]byte, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("decode failed")
		}
		return []byte("png"), nil
	}

	var progress [][2]int
	err := e.ExportBulk(BulkJob{
		Request: documentRequest(),
		FieldID: "f1",
		Values:  []string{"Anna", "Bruno", "Chloé"},
		OnProgress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
	})
	if err == nil {
		t.Fatal("expected a bulk failure")
	}
	if calls != 2 {
		t.Errorf("capture called %d times after failure, want fail-fast at 2", calls)
	}
	if len(progress) == 0 || progress[len(progress)-1] != [2]int{0, 3} {
		t.Errorf("progress = %v, want final reset to (0,3)", progress)
	}
	if len(saver.files) != 0 {
		t.Errorf("failed batch saved artifacts: %v", keys(saver.files))
	}
	if completions != 0 {
		t.Errorf("completions = %d after failure, want 0", completions)
	}
}

func TestExportBulkSaveFailure(t *testing.T) {
	completions := 0
	e := newTestExporter(failSaver{}, WithOnComplete(func(string) { completions++ }))
	err := e.ExportBulk(BulkJob{Request: documentRequest(), FieldID: "f1", Values: []string{"Anna"}})
	if err == nil {
		t.Fatal("expected save failure to propagate")
	}
	if completions != 0 {
		t.Error("completion fired despite save failure")
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
