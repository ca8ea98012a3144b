package assets

import (
	"fmt"
	"os"
	"sync"

	"github.com/gogpu/gg/text"

	"github.com/frameflow/frameflow"
)

// DefaultFamilies is the curated list offered to creators: a mix of serif,
// sans-serif, display and handwriting faces.
var DefaultFamilies = []string{
	"Inter",
	"Montserrat",
	"Roboto",
	"Lato",
	"Poppins",
	"Oswald",
	"Playfair Display",
	"Merriweather",
	"Lora",
	"Great Vibes",
	"Dancing Script",
	"Pacifico",
	"Courier New",
}

// FontRegistry maps font family names to loaded FontSources and tracks
// readiness per family. Text rendered before a family finishes loading uses
// the fallback source; subscribers are notified exactly once when a family
// transitions to ready, so hosts re-render once per font instead of polling.
//
// FontRegistry is safe for concurrent use; loads may complete on background
// goroutines while renders read faces.
type FontRegistry struct {
	mu       sync.Mutex
	sources  map[string]*text.FontSource
	fallback *text.FontSource
	waiters  map[string][]func()
}

// NewFontRegistry creates an empty registry.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{
		sources: make(map[string]*text.FontSource),
		waiters: make(map[string][]func()),
	}
}

// SetFallback sets the source used for families that are not (yet) loaded.
func (r *FontRegistry) SetFallback(src *text.FontSource) {
	r.mu.Lock()
	r.fallback = src
	r.mu.Unlock()
}

// Register makes a family ready and fires its pending subscribers.
func (r *FontRegistry) Register(family string, src *text.FontSource) {
	r.mu.Lock()
	r.sources[family] = src
	pending := r.waiters[family]
	delete(r.waiters, family)
	r.mu.Unlock()

	// Fire outside the lock: subscribers typically trigger a re-render,
	// which reads faces from this registry.
	for _, fn := range pending {
		fn()
	}
}

// LoadFile loads a TTF/OTF file and registers it under family.
func (r *FontRegistry) LoadFile(family, path string) error {
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return fmt.Errorf("assets: load font %q: %w", family, err)
	}
	r.Register(family, src)
	return nil
}

// LoadFileAsync loads a font off the caller's goroutine. On success the
// family becomes ready and subscribers fire; on failure the family stays
// unready (renders keep using the fallback) and the error is logged.
func (r *FontRegistry) LoadFileAsync(family, path string) {
	go func() {
		if err := r.LoadFile(family, path); err != nil {
			frameflow.Logger().Warn("font load failed",
				"family", family, "path", path, "error", err)
		}
	}()
}

// Ready reports whether the family has finished loading.
func (r *FontRegistry) Ready(family string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sources[family]
	return ok
}

// Subscribe registers fn to run when family becomes ready. If the family is
// already ready, fn runs immediately. Each subscription fires at most once.
func (r *FontRegistry) Subscribe(family string, fn func()) {
	r.mu.Lock()
	if _, ok := r.sources[family]; ok {
		r.mu.Unlock()
		fn()
		return
	}
	r.waiters[family] = append(r.waiters[family], fn)
	r.mu.Unlock()
}

// Face returns a face for the family at the given pixel size, falling back
// to the fallback source while the family is loading. Returns nil when
// neither is available; callers skip text drawing in that case.
func (r *FontRegistry) Face(family string, size float64) text.Face {
	r.mu.Lock()
	src, ok := r.sources[family]
	if !ok {
		src = r.fallback
	}
	r.mu.Unlock()

	if src == nil {
		return nil
	}
	return src.Face(size)
}

// Close releases every loaded source, including the fallback.
func (r *FontRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for _, src := range r.sources {
		if err := src.Close(); err != nil && first == nil {
			first = err
		}
	}
	if r.fallback != nil {
		if err := r.fallback.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.sources = make(map[string]*text.FontSource)
	r.fallback = nil
	return first
}

// FindSystemFont returns the path of an installed TTF font, or "" if none
// of the well-known locations exist. Used by the demo CLI and by tests that
// need a real face (TTC collections are not supported).
func FindSystemFont() string {
	candidates := []string{
		// Windows
		"C:\\Windows\\Fonts\\arial.ttf",
		"C:\\Windows\\Fonts\\calibri.ttf",
		"C:\\Windows\\Fonts\\segoeui.ttf",
		// macOS
		"/Library/Fonts/Arial.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"/System/Library/Fonts/Supplemental/Courier New.ttf",
		"/System/Library/Fonts/Monaco.ttf",
		// Linux
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
