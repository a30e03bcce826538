// Package proto sketches the external collaborators the surface encoder
// depends on but never implements: a pixel-rectangle view (Image), a
// composite operator, an opaque per-layer identity, and the byte-oriented
// instruction sink that a real wire-protocol framing layer would provide.
//
// These are intentionally narrow, matching the small boundary interfaces
// internal/tile and internal/encode expose internally: the core only ever
// calls through them, and owns none of their concrete implementations.
package proto

// Image is a read-only view over a pixel rectangle in 32-bit-per-pixel
// format (RGB24 or ARGB; this module does not interpret alpha for
// compositing). Implementations must not assume Stride() == Width()*4.
type Image interface {
	Pix() []byte
	Width() int
	Height() int
	Stride() int
}

// CompositeOp identifies a Porter-Duff compositing operator. Only
// CompositeOver is used on the tile emission path; the others are declared
// for interface completeness with real protocol framing layers and are not
// otherwise interpreted by this module.
type CompositeOp int

const (
	CompositeOver CompositeOp = iota
	CompositeIn
	CompositeOut
	CompositeAtop
	CompositeXor
)

// Layer is an opaque handle identifying a target drawing surface on the
// wire. The core never dereferences it beyond passing it through to a Sink
// call.
type Layer interface {
	ID() int
}

// IntLayer is the simplest Layer implementation: a bare integer identity,
// useful for tests, demo CLIs, and any caller that doesn't need a richer
// layer object.
type IntLayer int

func (l IntLayer) ID() int { return int(l) }

// Sink is an ordered byte-instruction stream accepting the semantic
// primitives the surface encoder needs: a size announcement, emitted when a
// surface's dimensions change, and a PNG-stream image update, emitted per
// dirty tile on flush (and, via Dup, for late-joining viewers).
//
// Sink implementations own their own error/retry semantics; a returned
// error here simply means "this instruction did not make it onto the wire"
// and the caller (Surface/Tile) propagates it without retrying.
type Sink interface {
	// Size emits a size-change instruction for layer.
	Size(layer Layer, w, h int) error

	// StreamPNG emits a PNG-encoded image update for img at (x, y) on
	// layer, composited with op.
	StreamPNG(op CompositeOp, layer Layer, x, y int, img Image) error
}
