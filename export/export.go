// Package export captures finished frames as shareable artifacts: a single
// PNG, a single-page PDF, or a zip archive of bulk-personalized PNGs.
//
// Every capture re-renders from the session state with the selection
// affordance suppressed, so editing chrome can never leak into an artifact.
// Artifacts reach their destination through the Saver interface; hosts
// plug in a directory, an object store, or a browser download shim.
package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/render"
)

// Sentinel errors for the export package.
var (
	// ErrPDFUnsupported is returned when a PDF is requested for a
	// campaign kind other than document.
	ErrPDFUnsupported = errors.New("export: pdf export is limited to document campaigns")

	// ErrNoValues is returned when a bulk job carries no usable
	// personalization values.
	ErrNoValues = errors.New("export: bulk job has no values")
)

// jpegQuality matches the preview-to-PDF capture quality.
const jpegQuality = 95

// Saver persists a finished artifact under a filename.
type Saver interface {
	Save(name string, data []byte) error
}

// DirSaver writes artifacts into a directory.
type DirSaver struct {
	Dir string
}

func (d DirSaver) Save(name string, data []byte) error {
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// CompleteFunc is notified after each successful export with the campaign
// id. Hosts use it to record usage; a bulk archive counts once regardless
// of how many frames it contains.
type CompleteFunc func(campaignID string)

// Option configures an Exporter.
type Option func(*Exporter)

// WithOnComplete registers the completion callback.
func WithOnComplete(fn CompleteFunc) Option {
	return func(e *Exporter) { e.onComplete = fn }
}

// Exporter renders session state into artifacts.
type Exporter struct {
	comp       *render.Compositor
	saver      Saver
	onComplete CompleteFunc

	// capture is swapped in tests to inject failures.
	capture func(req render.Request) ([]byte, error)
}

// NewExporter creates an exporter drawing with comp and persisting through
// saver.
func NewExporter(comp *render.Compositor, saver Saver, opts ...Option) *Exporter {
	e := &Exporter{comp: comp, saver: saver}
	e.capture = e.capturePNG
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// capturePNG renders one frame without editing chrome and encodes it.
func (e *Exporter) capturePNG(req render.Request) ([]byte, error) {
	req.ShowSelection = false
	dc, err := e.comp.Render(req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("export: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) complete(campaignID string) {
	if e.onComplete != nil {
		e.onComplete(campaignID)
	}
}

// ExportImage captures the current frame as document-<campaign id>.png.
func (e *Exporter) ExportImage(req render.Request) error {
	if req.Campaign == nil {
		return render.ErrNilCampaign
	}
	req.ShowSelection = false
	data, err := e.capture(req)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("document-%s.png", req.Campaign.ID)
	if err := e.saver.Save(name, data); err != nil {
		return err
	}
	frameflow.Logger().Info("image exported", "campaign", req.Campaign.ID, "file", name)
	e.complete(req.Campaign.ID)
	return nil
}

// ExportPDF captures the current frame as a single-page PDF sized to the
// frame, document-<campaign id>.pdf. The page is landscape when the frame
// is wider than tall. Only document campaigns export to PDF.
func (e *Exporter) ExportPDF(req render.Request) error {
	if req.Campaign == nil {
		return render.ErrNilCampaign
	}
	if req.Campaign.Kind != frameflow.KindDocument {
		return ErrPDFUnsupported
	}

	req.ShowSelection = false
	dc, err := e.comp.Render(req)
	if err != nil {
		return err
	}

	// JPEG keeps large photographic backgrounds compact inside the PDF.
	var img bytes.Buffer
	if err := dc.EncodeJPEG(&img, jpegQuality); err != nil {
		return fmt.Errorf("export: encode jpeg: %w", err)
	}

	w, h := float64(dc.Width()), float64(dc.Height())
	// fpdf takes the page size in portrait convention and swaps the axes
	// itself for landscape orientation.
	orientation, size := "P", fpdf.SizeType{Wd: w, Ht: h}
	if w > h {
		orientation, size = "L", fpdf.SizeType{Wd: h, Ht: w}
	}
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           size,
	})
	doc.AddPage()
	doc.RegisterImageOptionsReader("frame", fpdf.ImageOptions{ImageType: "JPG"}, &img)
	doc.ImageOptions("frame", 0, 0, w, h, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return fmt.Errorf("export: build pdf: %w", err)
	}

	name := fmt.Sprintf("document-%s.pdf", req.Campaign.ID)
	if err := e.saver.Save(name, out.Bytes()); err != nil {
		return err
	}
	frameflow.Logger().Info("pdf exported", "campaign", req.Campaign.ID, "file", name)
	e.complete(req.Campaign.ID)
	return nil
}

// BulkJob describes a batch personalization: one PNG per value, with the
// value substituted into the target field.
type BulkJob struct {
	// Request is the session state each frame starts from. Its overrides
	// are cloned per value, never mutated.
	Request render.Request

	// FieldID is the field each value is substituted into.
	FieldID string

	// Values holds one personalization value per frame. Blank values are
	// skipped.
	Values []string

	// OnProgress, when set, is called after each captured frame with the
	// number of frames done and the total.
	OnProgress func(done, total int)

	// Yield, when set, is called between frames so a UI host can repaint
	// during a long batch.
	Yield func()
}

// Preview returns the request for the i'th usable value, so hosts can step
// through a batch before committing to the archive.
func (j BulkJob) Preview(i int) (render.Request, error) {
	n := 0
	for _, v := range j.Values {
		if v == "" {
			continue
		}
		if n == i {
			req := j.Request
			req.Overrides = j.Request.Overrides.Clone()
			if req.Overrides == nil && req.Campaign != nil {
				req.Overrides = render.NewOverrides(req.Campaign.Fields)
			}
			if req.Overrides != nil {
				req.Overrides.SetValue(j.FieldID, v)
				req.Overrides.Active = ""
			}
			return req, nil
		}
		n++
	}
	return render.Request{}, fmt.Errorf("export: preview index %d out of range (%d values)", i, n)
}

// ExportBulk renders one frame per value and saves them as a single zip
// archive named after the campaign title. Entry names are derived from the
// values; colliding names get a numeric suffix. Any failure aborts the
// whole batch: progress is reset, nothing is saved and the completion
// callback does not fire.
func (e *Exporter) ExportBulk(job BulkJob) error {
	if job.Request.Campaign == nil {
		return render.ErrNilCampaign
	}
	job.Request.ShowSelection = false

	values := make([]string, 0, len(job.Values))
	for _, v := range job.Values {
		if v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return ErrNoValues
	}

	total := len(values)
	progress := func(done int) {
		if job.OnProgress != nil {
			job.OnProgress(done, total)
		}
	}
	abort := func(err error) error {
		progress(0)
		return err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int, total)

	for i, value := range values {
		req := job.Request
		req.Overrides = job.Request.Overrides.Clone()
		if req.Overrides == nil {
			req.Overrides = render.NewOverrides(req.Campaign.Fields)
		}
		req.Overrides.SetValue(job.FieldID, value)
		req.Overrides.Active = ""

		data, err := e.capture(req)
		if err != nil {
			return abort(fmt.Errorf("export: bulk frame %d (%q): %w", i+1, value, err))
		}

		name := entryName(value)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}

		f, err := zw.Create(name + ".png")
		if err != nil {
			return abort(fmt.Errorf("export: zip entry %q: %w", name, err))
		}
		if _, err := f.Write(data); err != nil {
			return abort(fmt.Errorf("export: zip entry %q: %w", name, err))
		}

		progress(i + 1)
		if job.Yield != nil && i < total-1 {
			job.Yield()
		}
	}

	if err := zw.Close(); err != nil {
		return abort(fmt.Errorf("export: close archive: %w", err))
	}

	name := archiveName(job.Request.Campaign.Title)
	if err := e.saver.Save(name, buf.Bytes()); err != nil {
		return abort(err)
	}
	frameflow.Logger().Info("bulk archive exported",
		"campaign", job.Request.Campaign.ID, "file", name, "frames", total)
	e.complete(job.Request.Campaign.ID)
	return nil
}
