// Package filesink provides a reference proto.Sink that writes each
// emitted instruction to a directory on disk as a small image file plus a
// size marker — useful for a demo CLI to show a session's emitted
// instruction stream without a real wire-protocol transport.
//
// A dedicated goroutine encodes and writes tile images, so StreamPNG only
// copies the pixels and queues them; it blocks only while the 64-entry
// queue is full. Size writes its small marker file synchronously in the
// caller. A WaitGroup-backed Close lets the caller block until every
// pending tile write has completed. Tile images are encoded with the
// internal/encode package.
package filesink

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dvagner/tilesurface/internal/encode"
	"github.com/dvagner/tilesurface/internal/proto"
)

// writeRequest is sent from StreamPNG to the dedicated I/O goroutine.
type writeRequest struct {
	layerID int
	x, y    int
	width   int
	height  int
	stride  int
	pix     []byte
}

// Sink is a proto.Sink that spills every instruction to files under dir,
// encoding tile images with enc.
type Sink struct {
	dir     string
	enc     encode.Encoder
	verbose bool

	ioCh      chan writeRequest
	ioWg      sync.WaitGroup
	closeOnce sync.Once

	sizeCount   atomic.Int64
	streamCount atomic.Int64
	byteCount   atomic.Int64
}

// New creates a Sink that writes into dir (created if necessary), encoding
// tile images with the named format ("png", "jpeg", "webp") at the given
// quality (ignored by formats that don't use it).
func New(dir, format string, quality int, verbose bool) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filesink: creating %s: %w", dir, err)
	}

	enc, err := encode.NewEncoder(format, quality)
	if err != nil {
		return nil, fmt.Errorf("filesink: %w", err)
	}

	s := &Sink{
		dir:     dir,
		enc:     enc,
		verbose: verbose,
		ioCh:    make(chan writeRequest, 64),
	}
	s.ioWg.Add(1)
	go s.ioLoop()
	return s, nil
}

// Size writes a marker file recording the surface's new dimensions.
func (s *Sink) Size(layer proto.Layer, w, h int) error {
	s.sizeCount.Add(1)
	path := filepath.Join(s.dir, fmt.Sprintf("layer-%d.size", layer.ID()))
	content := fmt.Sprintf("%d %d\n", w, h)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("filesink: writing size marker: %w", err)
	}
	if s.verbose {
		log.Printf("filesink: layer %d size -> %dx%d", layer.ID(), w, h)
	}
	return nil
}

// StreamPNG queues the tile image for asynchronous encode-and-write. The
// pixel buffer is copied before queuing, since the Image (a tile page) must
// not be retained past the call.
func (s *Sink) StreamPNG(_ proto.CompositeOp, layer proto.Layer, x, y int, img proto.Image) error {
	pix := make([]byte, len(img.Pix()))
	copy(pix, img.Pix())

	s.ioCh <- writeRequest{
		layerID: layer.ID(),
		x:       x,
		y:       y,
		width:   img.Width(),
		height:  img.Height(),
		stride:  img.Stride(),
		pix:     pix,
	}
	return nil
}

func (s *Sink) ioLoop() {
	defer s.ioWg.Done()
	for req := range s.ioCh {
		if err := s.writeOne(req); err != nil {
			log.Printf("WARNING: filesink: write error: %v", err)
			continue
		}
	}
}

func (s *Sink) writeOne(req writeRequest) error {
	raw := proto.NewRawImage(req.pix, req.width, req.height, req.stride)
	rgba := proto.ToRGBA(raw)

	data, err := s.enc.Encode(rgba)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("layer-%d-tile-%d-%d%s", req.layerID, req.x, req.y, s.enc.FileExtension())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return err
	}

	s.streamCount.Add(1)
	s.byteCount.Add(int64(len(data)))
	return nil
}

// Close drains pending writes and stops the I/O goroutine. Safe to call
// more than once.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		close(s.ioCh)
		s.ioWg.Wait()
	})
}

// Stats returns the number of size/stream instructions processed and total
// bytes written, for the demo CLI's summary output.
func (s *Sink) Stats() (sizes, streams int64, bytes int64) {
	return s.sizeCount.Load(), s.streamCount.Load(), s.byteCount.Load()
}
