package assets

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/frameflow/frameflow"
)

// LoadFunc opens the raw bytes of an asset. The host supplies it: a file
// open, an HTTP fetch, an object-store read. It is called off the UI
// goroutine.
type LoadFunc func(ctx context.Context) (io.ReadCloser, error)

// DecodeAsync decodes an asset off the caller's goroutine and delivers the
// result through done. The compositor must not render a layer whose raster
// has not arrived; hosts typically re-render from the done callback, which
// gives exactly one redraw per completed load.
//
// done is invoked from the decoding goroutine. Hosts with a single UI
// goroutine should forward it onto their event loop.
func DecodeAsync(ctx context.Context, open LoadFunc, done func(*Image, error)) {
	go func() {
		img, err := decodeOne(ctx, open)
		if err != nil {
			frameflow.Logger().Warn("asset decode failed", slog.Any("error", err))
		}
		done(img, err)
	}()
}

func decodeOne(ctx context.Context, open LoadFunc) (*Image, error) {
	rc, err := open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	// Read fully first so a slow source cannot stall mid-decode holding
	// partial codec state.
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(raw))
}
