// Package surface implements the tiled canvas that sits between a
// pixel-producing backend and an instruction sink: a 2-D grid of 64x64
// tiles covering a W x H canvas, dispatching draw rectangles to the tiles
// they overlap and driving per-tile flush in row-major order.
//
// Surface serializes every operation that touches mutable state behind a
// single mutex, grounded on a disk-tile-store-style field layout
// (mutex-guarded maps sitting beside atomically-updated counters, with a
// comment stating exactly what the lock covers).
package surface

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dvagner/tilesurface/internal/proto"
	"github.com/dvagner/tilesurface/internal/tile"
)

// ErrSizeLimitExceeded is returned by Resize when the requested dimensions
// exceed the surface's configured maximum. State is left unchanged.
var ErrSizeLimitExceeded = errors.New("surface: requested size exceeds configured maximum")

// FlushObserver optionally receives a report after each Flush call,
// regardless of whether the flush emitted any instructions. Implementations
// must be safe for concurrent use, since several Surfaces may share one
// observer. internal/telemetry.ProgressBar implements this interface
// structurally, without either package importing the other.
type FlushObserver interface {
	ObserveFlush(layerLabel string, tilesFlushed, tilesTotal int, dur time.Duration)
}

// Limits bounds the canvas dimensions a Surface will accept on alloc or
// resize.
type Limits struct {
	MaxWidth  int
	MaxHeight int
}

// DefaultLimits matches common remote-desktop display bounds; callers
// needing larger canvases (multi-monitor layers) should pass their own
// Limits to Alloc.
var DefaultLimits = Limits{MaxWidth: 8192, MaxHeight: 8192}

// Surface is a grid of tiles presenting a W x H canvas to drawing callers.
// Every mutable field except client, sink, and layer (established at
// construction and never reassigned) is guarded by mu; every method that
// reads or writes such a field acquires mu on entry and releases it on
// every exit path, including error returns.
type Surface struct {
	mu sync.Mutex

	width, height int
	rows, cols    int
	grid          []*tile.Tile // row-major, len == rows*cols

	contentDirty bool
	sizeDirty    bool

	limits Limits

	observer FlushObserver
	label    string

	// Immutable for the surface's lifetime; never guarded by mu.
	client *log.Logger
	sink   proto.Sink
	layer  proto.Layer
}

// SetObserver registers obs to receive a report after every Flush call.
// Pass nil to stop reporting. label identifies this surface in reports when
// several surfaces share one observer (e.g. one progress bar across
// multiple layers).
func (s *Surface) SetObserver(obs FlushObserver, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = obs
	s.label = label
}

// Alloc constructs a grid of ceil(H/64) x ceil(W/64) tiles with correct
// origins. sizeDirty starts true (a size instruction is owed on the first
// flush) and contentDirty starts false. client may be nil, in which case
// the package-level default logger is used for advisory logging from the
// placeholder operations.
func Alloc(client *log.Logger, sink proto.Sink, layer proto.Layer, w, h int, limits Limits) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("surface: dimensions must be positive, got %dx%d", w, h)
	}
	if w > limits.MaxWidth || h > limits.MaxHeight {
		return nil, ErrSizeLimitExceeded
	}

	if client == nil {
		client = log.Default()
	}

	s := &Surface{
		width:     w,
		height:    h,
		sizeDirty: true,
		limits:    limits,
		client:    client,
		sink:      sink,
		layer:     layer,
	}
	s.rows, s.cols = gridDims(w, h)
	s.grid = make([]*tile.Tile, s.rows*s.cols)
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			s.grid[r*s.cols+c] = tile.New(c*tile.Size, r*tile.Size)
		}
	}
	return s, nil
}

// gridDims returns the row/column count covering a w x h canvas with
// tile.Size tiles.
func gridDims(w, h int) (rows, cols int) {
	cols = (w + tile.Size - 1) / tile.Size
	rows = (h + tile.Size - 1) / tile.Size
	return rows, cols
}

// Free releases every tile's backing buffer to the shared pool. It does not
// free the layer identity, which outlives individual surfaces. The Surface
// must not be used after Free.
func (s *Surface) Free() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.grid {
		if t != nil {
			t.Release()
		}
	}
	s.grid = nil
}

// Dimensions returns the current canvas size.
func (s *Surface) Dimensions() (w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// at returns the tile at grid position (r, c). Caller must hold mu.
func (s *Surface) at(r, c int) *tile.Tile {
	return s.grid[r*s.cols+c]
}

// Resize changes the canvas dimensions. It rejects oversized requests with
// ErrSizeLimitExceeded, leaving state unchanged. Otherwise, for every
// (row, col) in the union of the old and new grids: tiles present in both
// are transferred as-is (preserving dirty state and pixel contents), tiles
// only in the new grid are freshly allocated (clean), and tiles only in the
// old grid are released back to the pool. contentDirty is not forced by a
// resize; preserved tiles keep whatever dirty state they already had.
func (s *Surface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("surface: dimensions must be positive, got %dx%d", w, h)
	}
	if w > s.limits.MaxWidth || h > s.limits.MaxHeight {
		return ErrSizeLimitExceeded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newRows, newCols := gridDims(w, h)
	newGrid := make([]*tile.Tile, newRows*newCols)

	for r := 0; r < newRows; r++ {
		for c := 0; c < newCols; c++ {
			if r < s.rows && c < s.cols {
				newGrid[r*newCols+c] = s.at(r, c)
			} else {
				newGrid[r*newCols+c] = tile.New(c*tile.Size, r*tile.Size)
			}
		}
	}

	// Release tiles that existed in the old grid but fall outside the new
	// one.
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			if r >= newRows || c >= newCols {
				s.at(r, c).Release()
			}
		}
	}

	s.grid = newGrid
	s.rows, s.cols = newRows, newCols
	s.width, s.height = w, h
	s.sizeDirty = true
	return nil
}

// Draw writes src into the canvas at (x, y). If (x, y) lies outside the
// canvas, Draw is a silent no-op. Otherwise it computes the inclusive
// tile-row/column range the source rectangle overlaps, clips that range to
// the grid, and dispatches Tile.Put to every tile in it. contentDirty is set
// unconditionally (a Draw call is an attempt to write, even if every
// touched tile turns out byte-identical and reports itself clean).
func (s *Surface) Draw(x, y int, src proto.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}

	w, h, stride := src.Width(), src.Height(), src.Stride()
	if w <= 0 || h <= 0 {
		return
	}

	rowStart := y / tile.Size
	rowEnd := (y + h - 1) / tile.Size
	colStart := x / tile.Size
	colEnd := (x + w - 1) / tile.Size

	if rowStart < 0 {
		rowStart = 0
	}
	if colStart < 0 {
		colStart = 0
	}
	if rowEnd >= s.rows {
		rowEnd = s.rows - 1
	}
	if colEnd >= s.cols {
		colEnd = s.cols - 1
	}

	pix := src.Pix()
	for r := rowStart; r <= rowEnd; r++ {
		for c := colStart; c <= colEnd; c++ {
			s.at(r, c).Put(x, y, pix, w, h, stride)
		}
	}

	s.contentDirty = true
}

// Flush synchronizes the remote view: if sizeDirty, it emits a size
// instruction and clears the flag; if contentDirty, it walks every tile in
// row-major order invoking Tile.Flush, then clears contentDirty. Dirty
// tiles are encountered in deterministic order given a deterministic draw
// sequence, so the emitted instruction sequence is itself deterministic.
//
// On the first sink error encountered, Flush stops walking tiles and
// returns the wrapped error; contentDirty is left set so a subsequent
// Flush retries the remaining (and already-flushed, now-clean) tiles.
func (s *Surface) Flush() error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sizeDirty {
		if err := s.sink.Size(s.layer, s.width, s.height); err != nil {
			return fmt.Errorf("surface: emitting size instruction: %w", err)
		}
		s.sizeDirty = false
	}

	flushed := 0
	if s.contentDirty {
		for _, t := range s.grid {
			if t.Dirty() {
				flushed++
			}
			if err := t.Flush(s.sink, s.layer); err != nil {
				return fmt.Errorf("surface: flushing tile at %v: %w", originOf(t), err)
			}
		}
		s.contentDirty = false
	}

	if s.observer != nil {
		s.observer.ObserveFlush(s.label, flushed, len(s.grid), time.Since(start))
	}

	return nil
}

func originOf(t *tile.Tile) [2]int {
	x, y := t.Origin()
	return [2]int{x, y}
}

// ResyncUser emits the last-transmitted (old-page) image of every tile to a
// late-joining user's sink, without altering any tile's state. Used when a
// new viewer attaches mid-session and needs the current picture before
// incremental updates resume. This is the per-tile Dup contract of spec.md
// §4.A applied across the whole grid; the surface-level Dup placeholder in
// placeholder.go is a distinct, unspecified operation (see DESIGN.md).
func (s *Surface) ResyncUser(sink proto.Sink, layer proto.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.grid {
		if err := t.Dup(sink, layer); err != nil {
			return fmt.Errorf("surface: dup of tile at %v: %w", originOf(t), err)
		}
	}
	return nil
}
