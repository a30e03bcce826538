package proto

import "sync"

// SizeCall records a single Sink.Size invocation.
type SizeCall struct {
	Layer  Layer
	Width  int
	Height int
}

// StreamPNGCall records a single Sink.StreamPNG invocation. Pix is copied
// out of the Image at call time, since Image implementations (tile pages in
// particular) are reused across cycles and must not be retained past the
// call per the concurrency model's resource policy.
type StreamPNGCall struct {
	Op     CompositeOp
	Layer  Layer
	X, Y   int
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// RecordingSink is an in-memory Sink that appends every call it receives,
// for use in tests and demo CLIs that need to assert on the instruction
// sequence a flush produces: a mutex-guarded in-memory collection with no
// other collaborators.
type RecordingSink struct {
	mu         sync.Mutex
	sizes      []SizeCall
	streamPNGs []StreamPNGCall
}

// NewRecordingSink returns an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Size(layer Layer, w, h int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizes = append(s.sizes, SizeCall{Layer: layer, Width: w, Height: h})
	return nil
}

func (s *RecordingSink) StreamPNG(op CompositeOp, layer Layer, x, y int, img Image) error {
	pix := make([]byte, len(img.Pix()))
	copy(pix, img.Pix())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamPNGs = append(s.streamPNGs, StreamPNGCall{
		Op: op, Layer: layer, X: x, Y: y,
		Width: img.Width(), Height: img.Height(), Stride: img.Stride(),
		Pix: pix,
	})
	return nil
}

// Sizes returns a copy of the recorded Size calls, in order.
func (s *RecordingSink) Sizes() []SizeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SizeCall, len(s.sizes))
	copy(out, s.sizes)
	return out
}

// StreamPNGs returns a copy of the recorded StreamPNG calls, in order.
func (s *RecordingSink) StreamPNGs() []StreamPNGCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StreamPNGCall, len(s.streamPNGs))
	copy(out, s.streamPNGs)
	return out
}

// Reset clears all recorded calls.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizes = nil
	s.streamPNGs = nil
}
