// Package tile implements the fixed-size dirty-tracking cell described in
// the surface encoder: a 64x64 RGBA region holding two interleaved pages
// (the last-transmitted "old" snapshot and the pending "new" write target)
// plus a dirty flag set the first time a write changes a byte relative to
// the old page.
//
// A Tile never references the Surface that owns it; Surface dispatches
// writes into the tiles it owns and drives their flush, per tile_test.go
// and the surface package's grid logic.
package tile

import "github.com/dvagner/tilesurface/internal/proto"

const (
	// Size is the fixed tile edge length in pixels, both width and height.
	Size = 64

	// bytesPerPixel is the wire-visible pixel format: 32-bit RGB24 with an
	// unused alpha byte, per the surface encoder's data model.
	bytesPerPixel = 4

	// rowSize is the byte length of a single page row.
	rowSize = Size * bytesPerPixel

	// stride is the byte distance between rows of the *same* page inside
	// the interleaved buffer: one row of the other page sits between them.
	stride = 2 * rowSize

	// bufferSize is the total byte length of a tile's two interleaved pages:
	// Size rows per page, stride bytes apart, two pages interleaved.
	bufferSize = Size * stride
)

// Tile is a fixed 64x64 RGBA cell with two interleaved page buffers. Page p's
// row r starts at byte offset p*rowSize + r*stride, so the two pages'
// corresponding rows sit in adjacent cache lines rather than in two
// far-apart allocations — the access pattern a Put/Flush cycle touches for
// comparison is the same set of cache lines the write just touched.
type Tile struct {
	x, y        int
	buffer      []byte
	currentPage int // 0 or 1: which interleaved half holds the new (pending) page
	dirty       bool
}

// New allocates a zero-initialized tile anchored at (x, y) in canvas
// coordinates. x and y should be multiples of Size, though Tile itself does
// not enforce tile alignment — that invariant belongs to the Surface that
// assigns tile origins.
func New(x, y int) *Tile {
	return &Tile{
		x:      x,
		y:      y,
		buffer: newTileBuffer(),
	}
}

// Origin returns the tile's upper-left pixel position in canvas coordinates.
func (t *Tile) Origin() (x, y int) { return t.x, t.y }

// Dirty reports whether Put has observed any byte difference between the
// old and new pages since the last Flush.
func (t *Tile) Dirty() bool { return t.dirty }

// rowOffset returns the byte offset of row r of the given page within the
// tile's interleaved buffer.
func rowOffset(page, r int) int {
	return page*rowSize + r*stride
}

// Put writes the overlap of the source rectangle [srcX, srcX+bufW) x
// [srcY, srcY+bufH) with the tile's footprint [t.x, t.x+Size) x
// [t.y, t.y+Size) into the new page. srcStride is the byte distance between
// rows in buf; each pixel is 4 bytes. If the overlap is empty, Put is a
// no-op and touches neither page.
//
// While copying each overlap row into the new page, if the tile is not yet
// dirty, the new row is compared against the corresponding old row over the
// same overlap width; dirty is set on the first difference found. Once
// dirty, the comparison is skipped for the remainder of the call (and for
// any later call in the same cycle) — the byte copy still happens in full.
func (t *Tile) Put(srcX, srcY int, buf []byte, bufW, bufH, srcStride int) {
	left, top := t.x, t.y
	right, bottom := left+Size, top+Size

	maxLeft, maxTop := srcX, srcY
	maxRight, maxBottom := maxLeft+bufW, maxTop+bufH

	if maxLeft > left {
		left = maxLeft
	}
	if maxTop > top {
		top = maxTop
	}
	if maxRight < right {
		right = maxRight
	}
	if maxBottom < bottom {
		bottom = maxBottom
	}

	width := right - left
	height := bottom - top
	if width <= 0 || height <= 0 {
		return
	}

	srcOffX := left - srcX
	srcOffY := top - srcY
	dstX := left - t.x
	dstY := top - t.y

	rowBytes := width * bytesPerPixel
	src := buf[srcOffY*srcStride+srcOffX*bytesPerPixel:]

	newBase := rowOffset(t.currentPage, dstY) + dstX*bytesPerPixel
	oldBase := rowOffset(1-t.currentPage, dstY) + dstX*bytesPerPixel

	for i := 0; i < height; i++ {
		srcRow := src[i*srcStride : i*srcStride+rowBytes]
		newRow := t.buffer[newBase+i*stride : newBase+i*stride+rowBytes]
		copy(newRow, srcRow)

		if !t.dirty {
			oldRow := t.buffer[oldBase+i*stride : oldBase+i*stride+rowBytes]
			t.dirty = !bytesEqual(oldRow, newRow)
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// newPageImage returns a proto.Image view over one of the tile's two pages,
// without copying pixel data. Because pages are row-interleaved, the view's
// Stride() is the full interleaved stride (it must skip the other page's
// row between each of this page's rows); Pix() spans only as far as the
// last row actually needs.
func (t *Tile) newPageImage(page int) proto.Image {
	base := rowOffset(page, 0)
	span := (Size-1)*stride + rowSize
	return pageImage{
		pix:    t.buffer[base : base+span],
		stride: stride,
	}
}

// Flush transmits the tile if dirty: it copies the new page over the old
// page for the full tile footprint, emits a stream-PNG instruction carrying
// the new page at the tile's origin with composite-over semantics, toggles
// currentPage, and clears dirty. If the tile is not dirty, Flush is a no-op
// that returns nil.
func (t *Tile) Flush(sink proto.Sink, layer proto.Layer) error {
	if !t.dirty {
		return nil
	}

	newBase := rowOffset(t.currentPage, 0)
	oldBase := rowOffset(1-t.currentPage, 0)
	for r := 0; r < Size; r++ {
		copy(
			t.buffer[oldBase+r*stride:oldBase+r*stride+rowSize],
			t.buffer[newBase+r*stride:newBase+r*stride+rowSize],
		)
	}

	img := t.newPageImage(t.currentPage)
	if err := sink.StreamPNG(proto.CompositeOver, layer, t.x, t.y, img); err != nil {
		return err
	}

	t.currentPage = 1 - t.currentPage
	t.dirty = false
	return nil
}

// Dup emits the same stream-PNG instruction Flush would, but for the old
// (last-transmitted) page, targeted at a late-joining user's sink. It does
// not alter tile state.
func (t *Tile) Dup(sink proto.Sink, layer proto.Layer) error {
	img := t.newPageImage(1 - t.currentPage)
	return sink.StreamPNG(proto.CompositeOver, layer, t.x, t.y, img)
}

// Release returns the tile's backing buffer to the shared pool. The tile
// must not be used after Release; Surface.Resize and Surface.Free call this
// on every tile dropped from the grid.
func (t *Tile) Release() {
	putTileBuffer(t.buffer)
	t.buffer = nil
}

// pageImage is a read-only proto.Image view over one page of a tile's
// interleaved buffer.
type pageImage struct {
	pix    []byte
	stride int
}

func (p pageImage) Pix() []byte { return p.pix }
func (p pageImage) Width() int  { return Size }
func (p pageImage) Height() int { return Size }
func (p pageImage) Stride() int { return p.stride }
