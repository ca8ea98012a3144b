// Package editor implements the creator-side layout editor for document
// templates: adding, restyling, dragging and removing text fields on a
// displayed preview of the background.
//
// The editor mutates descriptor positions, unlike the participant
// interaction layer which only accumulates session offsets. Positions stay
// stored as percentages, so a layout authored on a small preview renders
// identically at the template's native resolution.
package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/geom"
)

// Defaults for a freshly added field.
const (
	defaultLabel      = "Nouveau Champ"
	defaultValue      = "Texte ici"
	defaultFontFamily = "Inter"
	defaultFontSize   = 40
	defaultColor      = "#000000"
)

// referenceDim is the canvas width the descriptor font sizes are authored
// against; the preview scales them down from it.
const referenceDim = 1080

// minPreviewFontSize keeps text legible on small previews.
const minPreviewFontSize = 12

// ChangeFunc receives the full field list after every mutation. The slice
// is a copy; the host persists it as the campaign's new configuration.
type ChangeFunc func(fields []frameflow.TextField)

// Option configures an Editor.
type Option func(*Editor)

// WithOnChange registers the mutation callback.
func WithOnChange(fn ChangeFunc) Option {
	return func(e *Editor) { e.onChange = fn }
}

// withIDSource replaces field id generation in tests.
func withIDSource(fn func() string) Option {
	return func(e *Editor) { e.newID = fn }
}

// Editor edits one template's field list against a displayed preview.
// Not safe for concurrent use.
type Editor struct {
	fields   []frameflow.TextField
	selected string
	display  geom.Size
	onChange ChangeFunc
	newID    func() string

	dragID   string
	dragGrab geom.Point // pointer minus field position at grab, display px
}

// NewEditor creates an editor over a copy of fields, previewed at display
// size.
func NewEditor(fields []frameflow.TextField, display geom.Size, opts ...Option) *Editor {
	e := &Editor{
		fields:  append([]frameflow.TextField(nil), fields...),
		display: display,
		newID:   func() string { return fmt.Sprintf("field_%s", uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetDisplaySize records the preview's current display size.
func (e *Editor) SetDisplaySize(display geom.Size) { e.display = display }

// Fields returns a copy of the current field list in declaration order.
func (e *Editor) Fields() []frameflow.TextField {
	return append([]frameflow.TextField(nil), e.fields...)
}

// Selected returns the selected field's id, empty when none.
func (e *Editor) Selected() string { return e.selected }

// Select marks a field as selected; an unknown id clears the selection.
func (e *Editor) Select(id string) {
	if e.find(id) == nil {
		e.selected = ""
		return
	}
	e.selected = id
}

// AddField appends a new field at the canvas center with default styling,
// selects it and returns it.
func (e *Editor) AddField() frameflow.TextField {
	f := frameflow.TextField{
		ID:           e.newID(),
		Label:        defaultLabel,
		DefaultValue: defaultValue,
		X:            50,
		Y:            50,
		FontFamily:   defaultFontFamily,
		FontSize:     defaultFontSize,
		Color:        defaultColor,
		Align:        frameflow.AlignCenter,
	}
	e.fields = append(e.fields, f)
	e.selected = f.ID
	e.changed()
	return f
}

// UpdateField applies fn to the field and reports whether it exists. The id
// is restored afterwards so fields cannot be re-keyed.
func (e *Editor) UpdateField(id string, fn func(*frameflow.TextField)) bool {
	f := e.find(id)
	if f == nil {
		return false
	}
	fn(f)
	f.ID = id
	e.changed()
	return true
}

// RemoveField deletes the field, clearing the selection if it was selected.
func (e *Editor) RemoveField(id string) bool {
	for i := range e.fields {
		if e.fields[i].ID == id {
			e.fields = append(e.fields[:i], e.fields[i+1:]...)
			if e.selected == id {
				e.selected = ""
			}
			if e.dragID == id {
				e.dragID = ""
			}
			e.changed()
			return true
		}
	}
	return false
}

// StartDrag grabs a field at p in display pixels and selects it. The grab
// point is remembered so the field does not jump to the pointer.
func (e *Editor) StartDrag(id string, p geom.Point) bool {
	f := e.find(id)
	if f == nil {
		return false
	}
	e.selected = id
	e.dragID = id
	e.dragGrab = p.Sub(e.fieldDisplayPos(f))
	return true
}

// Drag moves the grabbed field to follow p, clamped to the preview bounds,
// and writes the position back as percentages.
func (e *Editor) Drag(p geom.Point) bool {
	f := e.find(e.dragID)
	if f == nil {
		return false
	}
	pos := p.Sub(e.dragGrab)
	pos.X = geom.Clamp(pos.X, 0, e.display.W)
	pos.Y = geom.Clamp(pos.Y, 0, e.display.H)
	f.X, f.Y = geom.PixelToPercent(pos, e.display)
	e.changed()
	return true
}

// EndDrag releases the grabbed field, keeping it selected.
func (e *Editor) EndDrag() { e.dragID = "" }

// PreviewFontSize returns the size a field's text is displayed at on the
// preview: the descriptor size scaled to the preview width, floored so
// small previews stay readable.
func (e *Editor) PreviewFontSize(f *frameflow.TextField) float64 {
	size := f.FontSize
	if e.display.W > 0 {
		size = f.FontSize * e.display.W / referenceDim
	}
	if size < minPreviewFontSize {
		return minPreviewFontSize
	}
	return size
}

func (e *Editor) fieldDisplayPos(f *frameflow.TextField) geom.Point {
	return geom.PercentToPixel(f.X, f.Y, e.display)
}

func (e *Editor) find(id string) *frameflow.TextField {
	if id == "" {
		return nil
	}
	for i := range e.fields {
		if e.fields[i].ID == id {
			return &e.fields[i]
		}
	}
	return nil
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange(e.Fields())
	}
}
